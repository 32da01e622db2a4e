package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/araratsoft/tax_declaration_app/internal/apperrors"
	"github.com/araratsoft/tax_declaration_app/internal/core/ports"
	"github.com/araratsoft/tax_declaration_app/internal/core/rules"
	"github.com/araratsoft/tax_declaration_app/internal/models"
)

// RunMode selects which transactions a classification run re-evaluates.
type RunMode string

const (
	// RunModeFull re-evaluates every candidate transaction; used after rules
	// change.
	RunModeFull RunMode = "FULL"
	// RunModePending re-evaluates only transactions still undetermined in the
	// domain (plus, for Category, those sitting in the review queue); used
	// after new statements arrive. It never touches anything else, so
	// manually resolved decisions stay closed.
	RunModePending RunMode = "PENDING"
)

// RunSummary is what a run reports back to its caller. Individual rule or
// condition failures are never surfaced here; they degrade to "did not match".
type RunSummary struct {
	Matched      int `json:"matched"`
	NewUnmatched int `json:"newUnmatched"`
	Cleared      int `json:"cleared"`
}

// ClassificationService runs the three classification drivers. One run
// processes one declaration's candidate transactions to completion: compute
// all results in memory first, then apply them as a single batch.
type ClassificationService struct {
	txnRepo  ports.TransactionRepository
	ruleRepo ports.RuleRepository
	declRepo ports.DeclarationRepository
	rateSvc  *ExchangeRateService
	review   *ReviewService

	// scopeFallbackLocal defaults unmatched Scope-domain transactions to
	// LOCAL instead of leaving them undetermined. Kept configurable because
	// the two non-category domains historically disagreed on this.
	scopeFallbackLocal bool
	logger             *slog.Logger
}

// NewClassificationService creates a new ClassificationService.
func NewClassificationService(
	txnRepo ports.TransactionRepository,
	ruleRepo ports.RuleRepository,
	declRepo ports.DeclarationRepository,
	rateSvc *ExchangeRateService,
	review *ReviewService,
	scopeFallbackLocal bool,
	logger *slog.Logger,
) *ClassificationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ClassificationService{
		txnRepo:            txnRepo,
		ruleRepo:           ruleRepo,
		declRepo:           declRepo,
		rateSvc:            rateSvc,
		review:             review,
		scopeFallbackLocal: scopeFallbackLocal,
		logger:             logger,
	}
}

type matchResult struct {
	txn  models.Transaction
	rule *models.Rule
}

// RunAnalysis classifies the declaration's candidate transactions in one
// domain. First matching rule wins; rule order is total (priority, then
// name), so the outcome is deterministic and re-running full mode is
// idempotent.
func (s *ClassificationService) RunAnalysis(ctx context.Context, declarationID string, domain models.RuleDomain, mode RunMode, triggeredBy string) (*RunSummary, error) {
	switch domain {
	case models.DomainCategory, models.DomainEntityType, models.DomainScope:
	default:
		return nil, fmt.Errorf("%w: unknown classification domain %q", apperrors.ErrValidation, domain)
	}
	if mode != RunModeFull && mode != RunModePending {
		return nil, fmt.Errorf("%w: unknown run mode %q", apperrors.ErrValidation, mode)
	}

	logger := s.logger.With(
		slog.String("declaration_id", declarationID),
		slog.String("domain", string(domain)),
		slog.String("mode", string(mode)),
	)

	declaration, err := s.declRepo.FindDeclarationByID(ctx, declarationID)
	if err != nil {
		return nil, fmt.Errorf("failed to load declaration for analysis: %w", err)
	}
	statements, err := s.declRepo.ListStatements(ctx, declarationID)
	if err != nil {
		return nil, fmt.Errorf("failed to load statements for analysis: %w", err)
	}
	statementByID := make(map[string]*models.Statement, len(statements))
	for i := range statements {
		statementByID[statements[i].StatementID] = &statements[i]
	}

	activeRules, err := s.ruleRepo.ListActiveRules(ctx, domain, declarationID)
	if err != nil {
		return nil, fmt.Errorf("failed to load rules for analysis: %w", err)
	}
	logger.Info("Loaded active rules", slog.Int("count", len(activeRules)))

	filter := ports.TransactionFilter{
		DeclarationID: declarationID,
		IncomeOnly:    true,
	}
	if mode == RunModePending {
		filter.UndeterminedIn = domain
		filter.IncludeQueued = domain == models.DomainCategory
	}
	candidates, err := s.txnRepo.ListTransactions(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions for analysis: %w", err)
	}
	logger.Info("Loaded candidate transactions", slog.Int("count", len(candidates)))

	rateSet, err := s.prefetchRates(ctx, candidates)
	if err != nil {
		return nil, fmt.Errorf("failed to prefetch exchange rates: %w", err)
	}

	// Compute phase: no writes happen until every candidate is decided.
	matcher := rules.NewMatcher(rules.NewEvaluator(rateSet, logger), logger)
	var matches []matchResult
	var unmatched []models.Transaction
	for i := range candidates {
		txn := candidates[i]
		sub := rules.Subject{
			Txn:         &txn,
			Statement:   statementByID[txn.StatementID],
			Declaration: declaration,
		}
		var winner *models.Rule
		for j := range activeRules {
			if matcher.Matches(sub, &activeRules[j]) {
				winner = &activeRules[j]
				break
			}
		}
		if winner != nil {
			matches = append(matches, matchResult{txn: txn, rule: winner})
		} else {
			unmatched = append(unmatched, txn)
		}
	}

	// Reduce phase: one atomic batch write of everything that changed.
	updates := s.buildUpdates(domain, matches, unmatched, triggeredBy)
	if len(updates) > 0 {
		if err := s.txnRepo.ApplyClassifications(ctx, updates); err != nil {
			return nil, fmt.Errorf("failed to apply classifications: %w", err)
		}
	}

	summary := &RunSummary{Matched: len(matches), NewUnmatched: len(unmatched)}
	if domain == models.DomainCategory {
		matchedIDs := make([]string, len(matches))
		for i, m := range matches {
			matchedIDs[i] = m.txn.TransactionID
		}
		unmatchedIDs := make([]string, len(unmatched))
		for i, txn := range unmatched {
			unmatchedIDs[i] = txn.TransactionID
		}
		created, cleared, err := s.review.Reconcile(ctx, matchedIDs, unmatchedIDs, mode, triggeredBy)
		if err != nil {
			return nil, fmt.Errorf("failed to reconcile review queue: %w", err)
		}
		summary.NewUnmatched = created
		summary.Cleared = cleared
	}

	logger.Info("Analysis run complete",
		slog.Int("matched", summary.Matched),
		slog.Int("new_unmatched", summary.NewUnmatched),
		slog.Int("cleared", summary.Cleared),
	)
	return summary, nil
}

// buildUpdates turns match results into write-backs, skipping transactions
// whose classification would not change.
func (s *ClassificationService) buildUpdates(domain models.RuleDomain, matches []matchResult, unmatched []models.Transaction, updatedBy string) []ports.ClassificationUpdate {
	var updates []ports.ClassificationUpdate
	for _, m := range matches {
		switch domain {
		case models.DomainCategory:
			ruleID := m.rule.RuleID
			updates = append(updates, ports.ClassificationUpdate{
				TransactionID: m.txn.TransactionID,
				Domain:        domain,
				MatchedRuleID: &ruleID,
				PointID:       m.rule.ResultPointID,
				UpdatedBy:     updatedBy,
			})
		case models.DomainEntityType:
			if m.txn.EntityType != m.rule.ResultEntityType {
				updates = append(updates, ports.ClassificationUpdate{
					TransactionID: m.txn.TransactionID,
					Domain:        domain,
					EntityType:    m.rule.ResultEntityType,
					UpdatedBy:     updatedBy,
				})
			}
		case models.DomainScope:
			if m.txn.Scope != m.rule.ResultScope {
				updates = append(updates, ports.ClassificationUpdate{
					TransactionID: m.txn.TransactionID,
					Domain:        domain,
					Scope:         m.rule.ResultScope,
					UpdatedBy:     updatedBy,
				})
			}
		}
	}

	// Explicit fallback policy, not a rule match: undetermined Scope
	// transactions that failed every rule default to LOCAL when enabled.
	if domain == models.DomainScope && s.scopeFallbackLocal {
		for _, txn := range unmatched {
			if txn.Scope == models.ScopeUndetermined {
				updates = append(updates, ports.ClassificationUpdate{
					TransactionID: txn.TransactionID,
					Domain:        domain,
					Scope:         models.ScopeLocal,
					UpdatedBy:     updatedBy,
				})
			}
		}
	}
	return updates
}

// prefetchRates bulk-loads every exchange rate the batch could need into a
// run-scoped cache, so evaluation never goes back to the store per row.
func (s *ClassificationService) prefetchRates(ctx context.Context, txns []models.Transaction) (*rules.RateSet, error) {
	local := s.rateSvc.LocalCurrency()
	seen := make(map[string]struct{})
	var currencies []string
	var until time.Time
	for _, txn := range txns {
		code := strings.ToUpper(txn.Currency)
		if code == local {
			continue
		}
		if _, ok := seen[code]; !ok {
			seen[code] = struct{}{}
			currencies = append(currencies, code)
		}
		if txn.TransactionDate.After(until) {
			until = txn.TransactionDate
		}
	}
	return s.rateSvc.PrefetchRateSet(ctx, currencies, until)
}
