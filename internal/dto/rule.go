package dto

import (
	"encoding/json"
	"time"

	"github.com/araratsoft/tax_declaration_app/internal/models"
)

// CreateRuleRequest defines the data needed to create a classification rule.
// Exactly one result field is used, picked by Domain.
type CreateRuleRequest struct {
	Domain           string          `json:"domain" binding:"required,oneof=CATEGORY ENTITY_TYPE SCOPE"`
	Name             string          `json:"name" binding:"required"`
	Priority         int             `json:"priority" binding:"required,min=1"`
	DeclarationID    *string         `json:"declarationID"` // Optional, nil means global
	Conditions       json.RawMessage `json:"conditions" binding:"required"`
	ResultPointID    *string         `json:"resultPointID"`    // CATEGORY rules
	ResultEntityType string          `json:"resultEntityType"` // ENTITY_TYPE rules
	ResultScope      string          `json:"resultScope"`      // SCOPE rules
	IsActive         *bool           `json:"isActive"`         // Optional, defaults to true
}

// UpdateRuleRequest defines the data allowed for updating a rule.
// Use pointers to distinguish between zero-value updates and fields not provided.
type UpdateRuleRequest struct {
	Name             *string         `json:"name"`
	Priority         *int            `json:"priority"`
	IsActive         *bool           `json:"isActive"`
	Conditions       json.RawMessage `json:"conditions"`
	ResultPointID    *string         `json:"resultPointID"`
	ResultEntityType string          `json:"resultEntityType"`
	ResultScope      string          `json:"resultScope"`
}

// RuleResponse defines the data returned for a rule.
type RuleResponse struct {
	RuleID           string          `json:"ruleID"`
	Domain           string          `json:"domain"`
	Name             string          `json:"name"`
	Priority         int             `json:"priority"`
	IsActive         bool            `json:"isActive"`
	DeclarationID    *string         `json:"declarationID,omitempty"`
	Conditions       json.RawMessage `json:"conditions"`
	ResultPointID    *string         `json:"resultPointID,omitempty"`
	ResultEntityType string          `json:"resultEntityType,omitempty"`
	ResultScope      string          `json:"resultScope,omitempty"`
	ProposalStatus   string          `json:"proposalStatus"`
	CreatedAt        time.Time       `json:"createdAt"`
	CreatedBy        string          `json:"createdBy"`
	LastUpdatedAt    time.Time       `json:"lastUpdatedAt"`
	LastUpdatedBy    string          `json:"lastUpdatedBy"`
}

// ToRuleResponse converts a models.Rule to RuleResponse DTO
func ToRuleResponse(rule *models.Rule) RuleResponse {
	return RuleResponse{
		RuleID:           rule.RuleID,
		Domain:           string(rule.Domain),
		Name:             rule.Name,
		Priority:         rule.Priority,
		IsActive:         rule.IsActive,
		DeclarationID:    rule.DeclarationID,
		Conditions:       rule.Conditions,
		ResultPointID:    rule.ResultPointID,
		ResultEntityType: string(rule.ResultEntityType),
		ResultScope:      string(rule.ResultScope),
		ProposalStatus:   string(rule.ProposalStatus),
		CreatedAt:        rule.CreatedAt,
		CreatedBy:        rule.CreatedBy,
		LastUpdatedAt:    rule.LastUpdatedAt,
		LastUpdatedBy:    rule.LastUpdatedBy,
	}
}

// ToListRuleResponse converts a slice of models.Rule to a slice of RuleResponse DTOs
func ToListRuleResponse(rules []models.Rule) []RuleResponse {
	res := make([]RuleResponse, len(rules))
	for i := range rules {
		res[i] = ToRuleResponse(&rules[i])
	}
	return res
}
