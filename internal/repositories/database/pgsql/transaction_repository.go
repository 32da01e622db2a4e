package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/araratsoft/tax_declaration_app/internal/apperrors"
	"github.com/araratsoft/tax_declaration_app/internal/core/ports"
	"github.com/araratsoft/tax_declaration_app/internal/models"
)

type PgxTransactionRepository struct {
	BaseRepository
}

// NewTransactionRepository creates a new repository for transaction data.
func NewTransactionRepository(pool *pgxpool.Pool) ports.TransactionRepository {
	return &PgxTransactionRepository{BaseRepository{Pool: pool}}
}

var _ ports.TransactionRepository = (*PgxTransactionRepository)(nil)

const transactionColumns = `
	transaction_id, statement_id, transaction_date, provision_date, amount,
	currency, description, sender, sender_account, is_expense,
	matched_rule_id, declaration_point_id, entity_type, scope,
	created_at, created_by, last_updated_at, last_updated_by`

func scanTransaction(row pgx.Row) (*models.Transaction, error) {
	var txn models.Transaction
	err := row.Scan(
		&txn.TransactionID,
		&txn.StatementID,
		&txn.TransactionDate,
		&txn.ProvisionDate,
		&txn.Amount,
		&txn.Currency,
		&txn.Description,
		&txn.Sender,
		&txn.SenderAccount,
		&txn.IsExpense,
		&txn.MatchedRuleID,
		&txn.DeclarationPointID,
		&txn.EntityType,
		&txn.Scope,
		&txn.CreatedAt,
		&txn.CreatedBy,
		&txn.LastUpdatedAt,
		&txn.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

// SaveTransactions bulk-inserts imported transactions in one database
// transaction.
func (r *PgxTransactionRepository) SaveTransactions(ctx context.Context, txns []models.Transaction) error {
	if len(txns) == 0 {
		return nil
	}

	query := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18);
	`
	batch := &pgx.Batch{}
	for _, txn := range txns {
		batch.Queue(query,
			txn.TransactionID,
			txn.StatementID,
			txn.TransactionDate,
			txn.ProvisionDate,
			txn.Amount,
			txn.Currency,
			txn.Description,
			txn.Sender,
			txn.SenderAccount,
			txn.IsExpense,
			txn.MatchedRuleID,
			txn.DeclarationPointID,
			txn.EntityType,
			txn.Scope,
			txn.CreatedAt,
			txn.CreatedBy,
			txn.LastUpdatedAt,
			txn.LastUpdatedBy,
		)
	}

	results := r.Pool.SendBatch(ctx, batch)
	defer results.Close()
	for range txns {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to insert transactions: %w", err)
		}
	}
	return nil
}

// FindTransactionByID retrieves a transaction by its ID.
func (r *PgxTransactionRepository) FindTransactionByID(ctx context.Context, transactionID string) (*models.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE transaction_id = $1;`
	txn, err := scanTransaction(r.Pool.QueryRow(ctx, query, transactionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find transaction by ID %s: %w", transactionID, err)
	}
	return txn, nil
}

// ListTransactions returns a declaration's transactions narrowed by the
// filter, in stable order.
func (r *PgxTransactionRepository) ListTransactions(ctx context.Context, filter ports.TransactionFilter) ([]models.Transaction, error) {
	query := `
		SELECT t.transaction_id, t.statement_id, t.transaction_date, t.provision_date, t.amount,
			t.currency, t.description, t.sender, t.sender_account, t.is_expense,
			t.matched_rule_id, t.declaration_point_id, t.entity_type, t.scope,
			t.created_at, t.created_by, t.last_updated_at, t.last_updated_by
		FROM transactions t
		JOIN statements s ON s.statement_id = t.statement_id
		WHERE s.declaration_id = $1`
	if filter.IncomeOnly {
		query += ` AND NOT t.is_expense`
	}
	switch filter.UndeterminedIn {
	case models.DomainCategory:
		if filter.IncludeQueued {
			query += ` AND (t.declaration_point_id IS NULL
				OR EXISTS (
					SELECT 1 FROM review_queue q
					WHERE q.transaction_id = t.transaction_id AND q.status <> 'RESOLVED'
				))`
		} else {
			query += ` AND t.declaration_point_id IS NULL`
		}
	case models.DomainEntityType:
		query += ` AND t.entity_type = 'UNDETERMINED'`
	case models.DomainScope:
		query += ` AND t.scope = 'UNDETERMINED'`
	}
	query += ` ORDER BY t.transaction_date, t.transaction_id;`

	rows, err := r.Pool.Query(ctx, query, filter.DeclarationID)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var txns []models.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction row: %w", err)
		}
		txns = append(txns, *txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction rows: %w", err)
	}
	return txns, nil
}

// ApplyClassifications writes all computed classification changes of one run
// atomically.
func (r *PgxTransactionRepository) ApplyClassifications(ctx context.Context, updates []ports.ClassificationUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx) //nolint:errcheck

	for _, u := range updates {
		var query string
		var args []any
		switch u.Domain {
		case models.DomainCategory:
			query = `UPDATE transactions
				SET declaration_point_id = $2, matched_rule_id = $3, last_updated_at = now(), last_updated_by = $4
				WHERE transaction_id = $1;`
			args = []any{u.TransactionID, u.PointID, u.MatchedRuleID, u.UpdatedBy}
		case models.DomainEntityType:
			query = `UPDATE transactions
				SET entity_type = $2, last_updated_at = now(), last_updated_by = $3
				WHERE transaction_id = $1;`
			args = []any{u.TransactionID, u.EntityType, u.UpdatedBy}
		case models.DomainScope:
			query = `UPDATE transactions
				SET scope = $2, last_updated_at = now(), last_updated_by = $3
				WHERE transaction_id = $1;`
			args = []any{u.TransactionID, u.Scope, u.UpdatedBy}
		default:
			return fmt.Errorf("%w: unknown classification domain %q", apperrors.ErrValidation, u.Domain)
		}
		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to apply classification for transaction %s: %w", u.TransactionID, err)
		}
	}
	return r.Commit(ctx, tx)
}

// SetCategory records a manual category resolution. The matched rule link is
// cleared because the value no longer comes from a rule.
func (r *PgxTransactionRepository) SetCategory(ctx context.Context, transactionID, pointID, updatedBy string) error {
	query := `UPDATE transactions
		SET declaration_point_id = $2, matched_rule_id = NULL, last_updated_at = now(), last_updated_by = $3
		WHERE transaction_id = $1;`
	tag, err := r.Pool.Exec(ctx, query, transactionID, pointID, updatedBy)
	if err != nil {
		return fmt.Errorf("failed to set category for transaction %s: %w", transactionID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
