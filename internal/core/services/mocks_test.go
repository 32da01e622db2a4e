package services_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/araratsoft/tax_declaration_app/internal/core/ports"
	"github.com/araratsoft/tax_declaration_app/internal/models"
)

// --- Mock TransactionRepository ---
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) SaveTransactions(ctx context.Context, txns []models.Transaction) error {
	args := m.Called(ctx, txns)
	return args.Error(0)
}

func (m *MockTransactionRepository) FindTransactionByID(ctx context.Context, transactionID string) (*models.Transaction, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) ListTransactions(ctx context.Context, filter ports.TransactionFilter) ([]models.Transaction, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) ApplyClassifications(ctx context.Context, updates []ports.ClassificationUpdate) error {
	args := m.Called(ctx, updates)
	return args.Error(0)
}

func (m *MockTransactionRepository) SetCategory(ctx context.Context, transactionID, pointID, updatedBy string) error {
	args := m.Called(ctx, transactionID, pointID, updatedBy)
	return args.Error(0)
}

// --- Mock RuleRepository ---
type MockRuleRepository struct {
	mock.Mock
}

func (m *MockRuleRepository) SaveRule(ctx context.Context, rule *models.Rule) error {
	args := m.Called(ctx, rule)
	return args.Error(0)
}

func (m *MockRuleRepository) UpdateRule(ctx context.Context, rule *models.Rule) error {
	args := m.Called(ctx, rule)
	return args.Error(0)
}

func (m *MockRuleRepository) DeleteRule(ctx context.Context, ruleID string) error {
	args := m.Called(ctx, ruleID)
	return args.Error(0)
}

func (m *MockRuleRepository) FindRuleByID(ctx context.Context, ruleID string) (*models.Rule, error) {
	args := m.Called(ctx, ruleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Rule), args.Error(1)
}

func (m *MockRuleRepository) ListActiveRules(ctx context.Context, domain models.RuleDomain, declarationID string) ([]models.Rule, error) {
	args := m.Called(ctx, domain, declarationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Rule), args.Error(1)
}

func (m *MockRuleRepository) ListRules(ctx context.Context, domain models.RuleDomain, declarationID *string) ([]models.Rule, error) {
	args := m.Called(ctx, domain, declarationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Rule), args.Error(1)
}

func (m *MockRuleRepository) ListProposedRules(ctx context.Context) ([]models.Rule, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Rule), args.Error(1)
}

// --- Mock ExchangeRateRepository ---
type MockExchangeRateRepository struct {
	mock.Mock
}

func (m *MockExchangeRateRepository) UpsertExchangeRate(ctx context.Context, rate *models.ExchangeRate) error {
	args := m.Called(ctx, rate)
	return args.Error(0)
}

func (m *MockExchangeRateRepository) ListRatesForCurrencies(ctx context.Context, currencies []string, until time.Time) ([]models.ExchangeRate, error) {
	args := m.Called(ctx, currencies, until)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ExchangeRate), args.Error(1)
}

// --- Mock ReviewQueueRepository ---
type MockReviewQueueRepository struct {
	mock.Mock
}

func (m *MockReviewQueueRepository) SaveEntry(ctx context.Context, entry *models.ReviewEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockReviewQueueRepository) UpdateEntry(ctx context.Context, entry *models.ReviewEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockReviewQueueRepository) FindEntryByID(ctx context.Context, reviewID string) (*models.ReviewEntry, error) {
	args := m.Called(ctx, reviewID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ReviewEntry), args.Error(1)
}

func (m *MockReviewQueueRepository) FindEntryByTransactionID(ctx context.Context, transactionID string) (*models.ReviewEntry, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ReviewEntry), args.Error(1)
}

func (m *MockReviewQueueRepository) ListEntriesByTransactionIDs(ctx context.Context, transactionIDs []string) (map[string]*models.ReviewEntry, error) {
	args := m.Called(ctx, transactionIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]*models.ReviewEntry), args.Error(1)
}

func (m *MockReviewQueueRepository) ListEntries(ctx context.Context, declarationID string, status models.ReviewStatus) ([]models.ReviewEntry, error) {
	args := m.Called(ctx, declarationID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ReviewEntry), args.Error(1)
}

// --- Mock DeclarationRepository ---
type MockDeclarationRepository struct {
	mock.Mock
}

func (m *MockDeclarationRepository) SaveDeclaration(ctx context.Context, declaration *models.Declaration) error {
	args := m.Called(ctx, declaration)
	return args.Error(0)
}

func (m *MockDeclarationRepository) FindDeclarationByID(ctx context.Context, declarationID string) (*models.Declaration, error) {
	args := m.Called(ctx, declarationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Declaration), args.Error(1)
}

func (m *MockDeclarationRepository) FindDeclarationByName(ctx context.Context, name string) (*models.Declaration, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Declaration), args.Error(1)
}

func (m *MockDeclarationRepository) ListDeclarations(ctx context.Context) ([]models.Declaration, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Declaration), args.Error(1)
}

func (m *MockDeclarationRepository) SaveStatement(ctx context.Context, statement *models.Statement) error {
	args := m.Called(ctx, statement)
	return args.Error(0)
}

func (m *MockDeclarationRepository) ListStatements(ctx context.Context, declarationID string) ([]models.Statement, error) {
	args := m.Called(ctx, declarationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Statement), args.Error(1)
}

func (m *MockDeclarationRepository) AggregatePointTotals(ctx context.Context, declarationID string) ([]models.PointTotal, error) {
	args := m.Called(ctx, declarationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PointTotal), args.Error(1)
}

// --- Mock DeclarationPointRepository ---
type MockDeclarationPointRepository struct {
	mock.Mock
}

func (m *MockDeclarationPointRepository) SavePoint(ctx context.Context, point *models.DeclarationPoint) error {
	args := m.Called(ctx, point)
	return args.Error(0)
}

func (m *MockDeclarationPointRepository) FindPointByID(ctx context.Context, pointID string) (*models.DeclarationPoint, error) {
	args := m.Called(ctx, pointID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DeclarationPoint), args.Error(1)
}

func (m *MockDeclarationPointRepository) ListPoints(ctx context.Context) ([]models.DeclarationPoint, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.DeclarationPoint), args.Error(1)
}
