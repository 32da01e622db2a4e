package models

import "encoding/json"

// RuleDomain selects which classification axis a rule belongs to.
type RuleDomain string

const (
	DomainCategory   RuleDomain = "CATEGORY"
	DomainEntityType RuleDomain = "ENTITY_TYPE"
	DomainScope      RuleDomain = "SCOPE"
)

// ProposalStatus marks a declaration-scoped category rule that has been put
// forward for promotion to global scope.
type ProposalStatus string

const (
	ProposalNone          ProposalStatus = "NONE"
	ProposalPendingGlobal ProposalStatus = "PENDING_GLOBAL"
)

// Rule is a named, prioritized decision record for one domain. A nil
// DeclarationID makes the rule global; otherwise it applies only within that
// declaration. Names are unique within their scope. Lower priority is
// evaluated first.
type Rule struct {
	RuleID        string     `json:"ruleID"`
	Domain        RuleDomain `json:"domain"`
	Name          string     `json:"name"`
	Priority      int        `json:"priority"`
	IsActive      bool       `json:"isActive"`
	DeclarationID *string    `json:"declarationID,omitempty"`

	// Exactly one of these carries the rule's result, depending on Domain.
	ResultPointID    *string          `json:"resultPointID,omitempty"`
	ResultEntityType EntityType       `json:"resultEntityType,omitempty"`
	ResultScope      TransactionScope `json:"resultScope,omitempty"`

	// Conditions is the persisted condition tree, legacy or nested shape.
	Conditions json.RawMessage `json:"conditions"`

	ProposalStatus ProposalStatus `json:"proposalStatus"`
	AuditFields
}

// IsGlobal reports whether the rule applies across all declarations.
func (r *Rule) IsGlobal() bool {
	return r.DeclarationID == nil
}
