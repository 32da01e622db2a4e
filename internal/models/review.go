package models

import (
	"encoding/json"
	"time"
)

// ReviewStatus is the state of a review-queue entry.
type ReviewStatus string

const (
	ReviewPending  ReviewStatus = "PENDING_REVIEW"
	ReviewResolved ReviewStatus = "RESOLVED"
	ReviewProposed ReviewStatus = "NEW_RULE_PROPOSED"
)

// ReviewEntry is the single queue record a transaction may hold while it is
// unresolved in the Category domain.
type ReviewEntry struct {
	ReviewID       string          `json:"reviewID"`
	TransactionID  string          `json:"transactionID"` // One entry per transaction
	Status         ReviewStatus    `json:"status"`
	AssignedUserID string          `json:"assignedUserID"`
	ResolutionDate *time.Time      `json:"resolutionDate,omitempty"`
	ResolvedPoint  string          `json:"resolvedPoint,omitempty"` // Point name, kept for audit
	RuleProposal   json.RawMessage `json:"ruleProposal,omitempty"`
	AuditFields
}

// RuleProposal is the payload stored on a NEW_RULE_PROPOSED entry so an admin
// can later finalize it into a real rule.
type RuleProposal struct {
	ResolvedPointID   string `json:"resolvedPointID"`
	ResolvedPointName string `json:"resolvedPointName"`
	Notes             string `json:"notes"`
	SampleDescription string `json:"sampleDescription"`
	SampleAmount      string `json:"sampleAmount"`
}
