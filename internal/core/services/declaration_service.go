package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/araratsoft/tax_declaration_app/internal/apperrors"
	"github.com/araratsoft/tax_declaration_app/internal/core/ports"
	"github.com/araratsoft/tax_declaration_app/internal/dto"
	"github.com/araratsoft/tax_declaration_app/internal/models"
)

// DeclarationService manages declarations, their imported statements and the
// aggregated declaration report.
type DeclarationService struct {
	declRepo ports.DeclarationRepository
	txnRepo  ports.TransactionRepository
	logger   *slog.Logger
}

// NewDeclarationService creates a new DeclarationService.
func NewDeclarationService(declRepo ports.DeclarationRepository, txnRepo ports.TransactionRepository, logger *slog.Logger) *DeclarationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DeclarationService{declRepo: declRepo, txnRepo: txnRepo, logger: logger}
}

// CreateDeclaration opens a new filing period. Names are unique.
func (s *DeclarationService) CreateDeclaration(ctx context.Context, req dto.CreateDeclarationRequest, creatorUserID string) (*models.Declaration, error) {
	periodStart, err := time.Parse("2006-01-02", req.TaxPeriodStart)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid tax period start, expected YYYY-MM-DD", apperrors.ErrValidation)
	}
	periodEnd, err := time.Parse("2006-01-02", req.TaxPeriodEnd)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid tax period end, expected YYYY-MM-DD", apperrors.ErrValidation)
	}
	if periodEnd.Before(periodStart) {
		return nil, fmt.Errorf("%w: tax period end precedes its start", apperrors.ErrValidation)
	}

	now := time.Now()
	declaration := &models.Declaration{
		DeclarationID:   uuid.NewString(),
		Name:            strings.TrimSpace(req.Name),
		TaxPeriodStart:  periodStart,
		TaxPeriodEnd:    periodEnd,
		ClientReference: req.ClientReference,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Status:          models.DeclarationDraft,
	}
	declaration.CreatedAt = now
	declaration.CreatedBy = creatorUserID
	declaration.LastUpdatedAt = now
	declaration.LastUpdatedBy = creatorUserID
	if err := s.declRepo.SaveDeclaration(ctx, declaration); err != nil {
		return nil, fmt.Errorf("failed to save declaration: %w", err)
	}
	s.logger.Info("Declaration created",
		slog.String("declaration_id", declaration.DeclarationID),
		slog.String("name", declaration.Name),
	)
	return declaration, nil
}

// GetOrCreateDeclaration finds a declaration by name or opens a fresh one,
// so statement imports can always name their target period.
func (s *DeclarationService) GetOrCreateDeclaration(ctx context.Context, req dto.CreateDeclarationRequest, creatorUserID string) (*models.Declaration, error) {
	existing, err := s.declRepo.FindDeclarationByName(ctx, strings.TrimSpace(req.Name))
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up declaration by name: %w", err)
	}
	return s.CreateDeclaration(ctx, req, creatorUserID)
}

// GetDeclarationByID returns a single declaration.
func (s *DeclarationService) GetDeclarationByID(ctx context.Context, declarationID string) (*models.Declaration, error) {
	declaration, err := s.declRepo.FindDeclarationByID(ctx, declarationID)
	if err != nil {
		return nil, fmt.Errorf("failed to find declaration: %w", err)
	}
	return declaration, nil
}

// ListDeclarations returns all declarations.
func (s *DeclarationService) ListDeclarations(ctx context.Context) ([]models.Declaration, error) {
	list, err := s.declRepo.ListDeclarations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list declarations: %w", err)
	}
	return list, nil
}

// ImportStatement records one statement and its already-normalized
// transaction rows under a declaration. Amounts arrive signed; they are
// stored as absolute values with the direction on IsExpense, and the three
// classification fields start undetermined.
func (s *DeclarationService) ImportStatement(ctx context.Context, declarationID string, req dto.ImportStatementRequest, creatorUserID string) (*models.Statement, int, error) {
	if _, err := s.declRepo.FindDeclarationByID(ctx, declarationID); err != nil {
		return nil, 0, fmt.Errorf("failed to find declaration for import: %w", err)
	}

	now := time.Now()
	statement := &models.Statement{
		StatementID:   uuid.NewString(),
		DeclarationID: declarationID,
		FileName:      req.FileName,
		BankName:      req.BankName,
		UploadDate:    now,
		Status:        "PROCESSED",
	}
	statement.CreatedAt = now
	statement.CreatedBy = creatorUserID
	statement.LastUpdatedAt = now
	statement.LastUpdatedBy = creatorUserID

	txns := make([]models.Transaction, 0, len(req.Transactions))
	for i, row := range req.Transactions {
		amount, err := decimal.NewFromString(row.Amount)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: row %d has an invalid amount", apperrors.ErrValidation, i)
		}
		txnDate, err := time.Parse("2006-01-02", row.TransactionDate)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: row %d has an invalid transaction date", apperrors.ErrValidation, i)
		}
		var provisionDate *time.Time
		if row.ProvisionDate != "" {
			parsed, err := time.Parse("2006-01-02", row.ProvisionDate)
			if err != nil {
				return nil, 0, fmt.Errorf("%w: row %d has an invalid provision date", apperrors.ErrValidation, i)
			}
			provisionDate = &parsed
		}

		txn := models.Transaction{
			TransactionID:   uuid.NewString(),
			StatementID:     statement.StatementID,
			TransactionDate: txnDate,
			ProvisionDate:   provisionDate,
			Amount:          amount.Abs(),
			Currency:        strings.ToUpper(row.Currency),
			Description:     row.Description,
			Sender:          row.Sender,
			SenderAccount:   row.SenderAccount,
			IsExpense:       amount.IsNegative(),
			EntityType:      models.EntityUndetermined,
			Scope:           models.ScopeUndetermined,
		}
		txn.CreatedAt = now
		txn.CreatedBy = creatorUserID
		txn.LastUpdatedAt = now
		txn.LastUpdatedBy = creatorUserID
		txns = append(txns, txn)
	}

	if err := s.declRepo.SaveStatement(ctx, statement); err != nil {
		return nil, 0, fmt.Errorf("failed to save statement: %w", err)
	}
	if err := s.txnRepo.SaveTransactions(ctx, txns); err != nil {
		return nil, 0, fmt.Errorf("failed to save imported transactions: %w", err)
	}

	s.logger.Info("Statement imported",
		slog.String("declaration_id", declarationID),
		slog.String("statement_id", statement.StatementID),
		slog.Int("transactions", len(txns)),
	)
	return statement, len(txns), nil
}

// ListStatements returns all statements of a declaration.
func (s *DeclarationService) ListStatements(ctx context.Context, declarationID string) ([]models.Statement, error) {
	list, err := s.declRepo.ListStatements(ctx, declarationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list statements: %w", err)
	}
	return list, nil
}

// ListTransactions returns a declaration's transactions, optionally income
// only.
func (s *DeclarationService) ListTransactions(ctx context.Context, declarationID string, incomeOnly bool) ([]models.Transaction, error) {
	list, err := s.txnRepo.ListTransactions(ctx, ports.TransactionFilter{
		DeclarationID: declarationID,
		IncomeOnly:    incomeOnly,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return list, nil
}

// GetReport aggregates a declaration's classified transactions per
// declaration point.
func (s *DeclarationService) GetReport(ctx context.Context, declarationID string) ([]models.PointTotal, error) {
	if _, err := s.declRepo.FindDeclarationByID(ctx, declarationID); err != nil {
		return nil, fmt.Errorf("failed to find declaration for report: %w", err)
	}
	totals, err := s.declRepo.AggregatePointTotals(ctx, declarationID)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate declaration report: %w", err)
	}
	return totals, nil
}
