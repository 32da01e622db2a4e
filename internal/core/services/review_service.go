package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/araratsoft/tax_declaration_app/internal/apperrors"
	"github.com/araratsoft/tax_declaration_app/internal/core/ports"
	"github.com/araratsoft/tax_declaration_app/internal/core/rules"
	"github.com/araratsoft/tax_declaration_app/internal/dto"
	"github.com/araratsoft/tax_declaration_app/internal/models"
)

// ReviewService owns the manual review queue for transactions the category
// engine could not classify. Each transaction has at most one queue entry for
// its whole lifetime; runs flip its status instead of inserting duplicates.
type ReviewService struct {
	reviewRepo ports.ReviewQueueRepository
	txnRepo    ports.TransactionRepository
	pointRepo  ports.DeclarationPointRepository
	ruleRepo   ports.RuleRepository
	logger     *slog.Logger
}

// NewReviewService creates a new ReviewService.
func NewReviewService(
	reviewRepo ports.ReviewQueueRepository,
	txnRepo ports.TransactionRepository,
	pointRepo ports.DeclarationPointRepository,
	ruleRepo ports.RuleRepository,
	logger *slog.Logger,
) *ReviewService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReviewService{
		reviewRepo: reviewRepo,
		txnRepo:    txnRepo,
		pointRepo:  pointRepo,
		ruleRepo:   ruleRepo,
		logger:     logger,
	}
}

// Reconcile synchronizes the queue with the outcome of a category run.
// Matched transactions with an open entry get it resolved; unmatched
// transactions without an entry get a fresh PENDING_REVIEW one assigned to
// whoever triggered the run. Entries a human already resolved are never
// reopened. It returns how many entries were created and how many cleared.
func (s *ReviewService) Reconcile(ctx context.Context, matchedIDs, unmatchedIDs []string, mode RunMode, assignedUserID string) (created, cleared int, err error) {
	all := make([]string, 0, len(matchedIDs)+len(unmatchedIDs))
	all = append(all, matchedIDs...)
	all = append(all, unmatchedIDs...)
	if len(all) == 0 {
		return 0, 0, nil
	}

	entries, err := s.reviewRepo.ListEntriesByTransactionIDs(ctx, all)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to load review entries: %w", err)
	}

	now := time.Now()
	for _, txnID := range matchedIDs {
		entry, ok := entries[txnID]
		if !ok {
			continue
		}
		if entry.Status != models.ReviewPending && entry.Status != models.ReviewProposed {
			continue
		}
		entry.Status = models.ReviewResolved
		entry.ResolutionDate = &now
		entry.LastUpdatedAt = now
		entry.LastUpdatedBy = assignedUserID
		if err := s.reviewRepo.UpdateEntry(ctx, entry); err != nil {
			return created, cleared, fmt.Errorf("failed to resolve review entry %s: %w", entry.ReviewID, err)
		}
		cleared++
	}

	for _, txnID := range unmatchedIDs {
		entry, ok := entries[txnID]
		if !ok {
			fresh := &models.ReviewEntry{
				ReviewID:       uuid.NewString(),
				TransactionID:  txnID,
				Status:         models.ReviewPending,
				AssignedUserID: assignedUserID,
			}
			fresh.CreatedAt = now
			fresh.CreatedBy = assignedUserID
			fresh.LastUpdatedAt = now
			fresh.LastUpdatedBy = assignedUserID
			if err := s.reviewRepo.SaveEntry(ctx, fresh); err != nil {
				return created, cleared, fmt.Errorf("failed to queue transaction %s for review: %w", txnID, err)
			}
			created++
			continue
		}
		// A full run retests proposals against the current rule set; a
		// still-unmatched proposal goes back to pending. Pending runs leave
		// proposals alone.
		if entry.Status == models.ReviewProposed && mode == RunModeFull {
			entry.Status = models.ReviewPending
			entry.ResolutionDate = nil
			entry.LastUpdatedAt = now
			entry.LastUpdatedBy = assignedUserID
			if err := s.reviewRepo.UpdateEntry(ctx, entry); err != nil {
				return created, cleared, fmt.Errorf("failed to reopen review entry %s: %w", entry.ReviewID, err)
			}
		}
	}
	return created, cleared, nil
}

// ListQueue returns review entries, optionally filtered by status.
func (s *ReviewService) ListQueue(ctx context.Context, declarationID string, status models.ReviewStatus) ([]models.ReviewEntry, error) {
	entries, err := s.reviewRepo.ListEntries(ctx, declarationID, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list review queue: %w", err)
	}
	return entries, nil
}

// GetEntry returns a single review entry by ID.
func (s *ReviewService) GetEntry(ctx context.Context, reviewID string) (*models.ReviewEntry, error) {
	entry, err := s.reviewRepo.FindEntryByID(ctx, reviewID)
	if err != nil {
		return nil, fmt.Errorf("failed to find review entry: %w", err)
	}
	return entry, nil
}

// Resolve closes a queue entry by hand: the reviewer assigns the transaction
// a declaration point and may additionally capture the decision as a rule
// proposal for later promotion.
func (s *ReviewService) Resolve(ctx context.Context, reviewID string, req dto.ResolveReviewRequest, userID string) (*models.ReviewEntry, error) {
	entry, err := s.reviewRepo.FindEntryByID(ctx, reviewID)
	if err != nil {
		return nil, fmt.Errorf("failed to find review entry: %w", err)
	}
	if entry.Status == models.ReviewResolved {
		return nil, fmt.Errorf("%w: review entry is already resolved", apperrors.ErrValidation)
	}

	point, err := s.pointRepo.FindPointByID(ctx, req.ResolvedPointID)
	if err != nil {
		return nil, fmt.Errorf("failed to find declaration point: %w", err)
	}
	if point.IsAutoFilled {
		return nil, fmt.Errorf("%w: auto-filled declaration points cannot be assigned manually", apperrors.ErrValidation)
	}

	txn, err := s.txnRepo.FindTransactionByID(ctx, entry.TransactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to find reviewed transaction: %w", err)
	}
	if err := s.txnRepo.SetCategory(ctx, txn.TransactionID, point.DeclarationPointID, userID); err != nil {
		return nil, fmt.Errorf("failed to categorize transaction: %w", err)
	}

	now := time.Now()
	entry.Status = models.ReviewResolved
	entry.ResolvedPoint = point.Name
	entry.ResolutionDate = &now
	entry.LastUpdatedAt = now
	entry.LastUpdatedBy = userID
	if req.ProposeRule {
		proposal := models.RuleProposal{
			ResolvedPointID:   point.DeclarationPointID,
			ResolvedPointName: point.Name,
			Notes:             req.Notes,
			SampleDescription: txn.Description,
			SampleAmount:      txn.Amount.String(),
		}
		raw, err := json.Marshal(proposal)
		if err != nil {
			return nil, fmt.Errorf("failed to encode rule proposal: %w", err)
		}
		entry.Status = models.ReviewProposed
		entry.RuleProposal = raw
	}
	if err := s.reviewRepo.UpdateEntry(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to update review entry: %w", err)
	}

	s.logger.Info("Review entry resolved",
		slog.String("review_id", entry.ReviewID),
		slog.String("transaction_id", entry.TransactionID),
		slog.String("status", string(entry.Status)),
	)
	return entry, nil
}

// FinalizeProposal turns a captured rule proposal into a real category rule
// seeded with a keyword condition over the sample description, then closes
// the entry. The rule is declaration-scoped unless the request says global.
func (s *ReviewService) FinalizeProposal(ctx context.Context, reviewID string, req dto.FinalizeProposalRequest, userID string) (*models.Rule, error) {
	entry, err := s.reviewRepo.FindEntryByID(ctx, reviewID)
	if err != nil {
		return nil, fmt.Errorf("failed to find review entry: %w", err)
	}
	if entry.Status != models.ReviewProposed {
		return nil, fmt.Errorf("%w: review entry has no pending rule proposal", apperrors.ErrValidation)
	}

	var proposal models.RuleProposal
	if err := json.Unmarshal(entry.RuleProposal, &proposal); err != nil {
		return nil, fmt.Errorf("%w: stored rule proposal is malformed", apperrors.ErrValidation)
	}

	tree := rules.Tree{
		RootLogic: rules.LogicAnd,
		Groups: []rules.Group{{
			Logic: rules.LogicAnd,
			Checks: []rules.Check{{
				Field: "description",
				Type:  rules.OpContainsKeyword,
				Value: proposal.SampleDescription,
			}},
		}},
	}
	conditions, err := json.Marshal(tree)
	if err != nil {
		return nil, fmt.Errorf("failed to encode rule conditions: %w", err)
	}

	name := req.Name
	if name == "" {
		name = fmt.Sprintf("AUTO: %s", proposal.ResolvedPointName)
	}
	priority := req.Priority
	if priority == 0 {
		priority = 50
	}
	pointID := proposal.ResolvedPointID
	now := time.Now()
	rule := &models.Rule{
		RuleID:         uuid.NewString(),
		Domain:         models.DomainCategory,
		Name:           name,
		Priority:       priority,
		IsActive:       true,
		DeclarationID:  req.DeclarationID,
		ResultPointID:  &pointID,
		Conditions:     conditions,
		ProposalStatus: models.ProposalNone,
	}
	rule.CreatedAt = now
	rule.CreatedBy = userID
	rule.LastUpdatedAt = now
	rule.LastUpdatedBy = userID
	if err := s.ruleRepo.SaveRule(ctx, rule); err != nil {
		return nil, fmt.Errorf("failed to save proposed rule: %w", err)
	}

	entry.Status = models.ReviewResolved
	entry.ResolutionDate = &now
	entry.LastUpdatedAt = now
	entry.LastUpdatedBy = userID
	if err := s.reviewRepo.UpdateEntry(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to close review entry: %w", err)
	}

	s.logger.Info("Rule created from proposal",
		slog.String("review_id", entry.ReviewID),
		slog.String("rule_id", rule.RuleID),
		slog.String("rule_name", rule.Name),
	)
	return rule, nil
}
