package ports

import (
	"context"
	"time"

	"github.com/araratsoft/tax_declaration_app/internal/models"
)

// TransactionFilter narrows candidate selection for a classification run.
type TransactionFilter struct {
	DeclarationID string
	// IncomeOnly excludes expense transactions; all three drivers set it.
	IncomeOnly bool
	// UndeterminedIn limits to transactions still undetermined in the given
	// domain. Empty means no such filter (full-mode runs).
	UndeterminedIn models.RuleDomain
	// IncludeQueued additionally includes transactions that hold an open
	// review-queue entry (Category pending-only runs).
	IncludeQueued bool
}

// ClassificationUpdate is one computed write-back for a transaction in one
// domain. Updates for a run are applied as a single batch.
type ClassificationUpdate struct {
	TransactionID string
	Domain        models.RuleDomain
	MatchedRuleID *string
	PointID       *string
	EntityType    models.EntityType
	Scope         models.TransactionScope
	UpdatedBy     string
}

// TransactionRepository defines persistence operations for Transactions.
type TransactionRepository interface {
	SaveTransactions(ctx context.Context, txns []models.Transaction) error
	FindTransactionByID(ctx context.Context, transactionID string) (*models.Transaction, error)
	ListTransactions(ctx context.Context, filter TransactionFilter) ([]models.Transaction, error)
	// ApplyClassifications writes all computed classification changes of one
	// run atomically.
	ApplyClassifications(ctx context.Context, updates []ClassificationUpdate) error
	// SetCategory records a manual category resolution for one transaction.
	SetCategory(ctx context.Context, transactionID, pointID, updatedBy string) error
}

// RuleRepository defines persistence operations for Rules across all domains.
type RuleRepository interface {
	// SaveRule creates a rule; a name collision within the rule's scope is
	// rejected with apperrors.ErrDuplicate.
	SaveRule(ctx context.Context, rule *models.Rule) error
	UpdateRule(ctx context.Context, rule *models.Rule) error
	DeleteRule(ctx context.Context, ruleID string) error
	FindRuleByID(ctx context.Context, ruleID string) (*models.Rule, error)
	// ListActiveRules returns active global rules unioned with active rules
	// scoped to the declaration, ordered by priority then name.
	ListActiveRules(ctx context.Context, domain models.RuleDomain, declarationID string) ([]models.Rule, error)
	ListRules(ctx context.Context, domain models.RuleDomain, declarationID *string) ([]models.Rule, error)
	ListProposedRules(ctx context.Context) ([]models.Rule, error)
}

// ExchangeRateRepository defines persistence operations for ExchangeRates.
type ExchangeRateRepository interface {
	UpsertExchangeRate(ctx context.Context, rate *models.ExchangeRate) error
	// ListRatesForCurrencies returns all published rates for the given
	// currencies up to and including the given day, for batch prefetch.
	ListRatesForCurrencies(ctx context.Context, currencies []string, until time.Time) ([]models.ExchangeRate, error)
}

// ReviewQueueRepository defines persistence operations for review entries.
type ReviewQueueRepository interface {
	SaveEntry(ctx context.Context, entry *models.ReviewEntry) error
	UpdateEntry(ctx context.Context, entry *models.ReviewEntry) error
	FindEntryByID(ctx context.Context, reviewID string) (*models.ReviewEntry, error)
	FindEntryByTransactionID(ctx context.Context, transactionID string) (*models.ReviewEntry, error)
	ListEntriesByTransactionIDs(ctx context.Context, transactionIDs []string) (map[string]*models.ReviewEntry, error)
	// ListEntries filters by declaration and optionally by status ("" = all).
	ListEntries(ctx context.Context, declarationID string, status models.ReviewStatus) ([]models.ReviewEntry, error)
}

// DeclarationRepository defines persistence operations for Declarations,
// their Statements and report aggregation.
type DeclarationRepository interface {
	SaveDeclaration(ctx context.Context, declaration *models.Declaration) error
	FindDeclarationByID(ctx context.Context, declarationID string) (*models.Declaration, error)
	FindDeclarationByName(ctx context.Context, name string) (*models.Declaration, error)
	ListDeclarations(ctx context.Context) ([]models.Declaration, error)
	SaveStatement(ctx context.Context, statement *models.Statement) error
	ListStatements(ctx context.Context, declarationID string) ([]models.Statement, error)
	// AggregatePointTotals sums classified transactions per declaration point.
	AggregatePointTotals(ctx context.Context, declarationID string) ([]models.PointTotal, error)
}

// DeclarationPointRepository defines persistence operations for the
// declaration-point reference data.
type DeclarationPointRepository interface {
	SavePoint(ctx context.Context, point *models.DeclarationPoint) error
	FindPointByID(ctx context.Context, pointID string) (*models.DeclarationPoint, error)
	ListPoints(ctx context.Context) ([]models.DeclarationPoint, error)
}
