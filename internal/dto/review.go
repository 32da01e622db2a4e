package dto

import (
	"encoding/json"
	"time"

	"github.com/araratsoft/tax_declaration_app/internal/models"
)

// ResolveReviewRequest defines the data needed to close a review entry by
// hand. Setting ProposeRule captures the decision for later rule creation.
type ResolveReviewRequest struct {
	ResolvedPointID string `json:"resolvedPointID" binding:"required"`
	ProposeRule     bool   `json:"proposeRule"`
	Notes           string `json:"notes"`
}

// FinalizeProposalRequest defines the data needed to turn a captured proposal
// into a real category rule. Zero values fall back to a generated name and a
// default priority; a nil DeclarationID creates the rule globally.
type FinalizeProposalRequest struct {
	Name          string  `json:"name"`
	Priority      int     `json:"priority" binding:"omitempty,min=1"`
	DeclarationID *string `json:"declarationID"`
}

// ReviewEntryResponse defines the data returned for a review-queue entry.
type ReviewEntryResponse struct {
	ReviewID       string          `json:"reviewID"`
	TransactionID  string          `json:"transactionID"`
	Status         string          `json:"status"`
	AssignedUserID string          `json:"assignedUserID"`
	ResolutionDate *time.Time      `json:"resolutionDate,omitempty"`
	ResolvedPoint  string          `json:"resolvedPoint,omitempty"`
	RuleProposal   json.RawMessage `json:"ruleProposal,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
	LastUpdatedAt  time.Time       `json:"lastUpdatedAt"`
}

// ToReviewEntryResponse converts a models.ReviewEntry to its DTO
func ToReviewEntryResponse(entry *models.ReviewEntry) ReviewEntryResponse {
	return ReviewEntryResponse{
		ReviewID:       entry.ReviewID,
		TransactionID:  entry.TransactionID,
		Status:         string(entry.Status),
		AssignedUserID: entry.AssignedUserID,
		ResolutionDate: entry.ResolutionDate,
		ResolvedPoint:  entry.ResolvedPoint,
		RuleProposal:   entry.RuleProposal,
		CreatedAt:      entry.CreatedAt,
		LastUpdatedAt:  entry.LastUpdatedAt,
	}
}

// ToListReviewEntryResponse converts a slice of models.ReviewEntry to DTOs
func ToListReviewEntryResponse(entries []models.ReviewEntry) []ReviewEntryResponse {
	res := make([]ReviewEntryResponse, len(entries))
	for i := range entries {
		res[i] = ToReviewEntryResponse(&entries[i])
	}
	return res
}
