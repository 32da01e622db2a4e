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

type PgxReviewQueueRepository struct {
	BaseRepository
}

// NewReviewQueueRepository creates a new repository for review queue data.
func NewReviewQueueRepository(pool *pgxpool.Pool) ports.ReviewQueueRepository {
	return &PgxReviewQueueRepository{BaseRepository{Pool: pool}}
}

var _ ports.ReviewQueueRepository = (*PgxReviewQueueRepository)(nil)

const reviewColumns = `
	review_id, transaction_id, status, assigned_user_id, resolution_date,
	resolved_point, rule_proposal, created_at, created_by, last_updated_at, last_updated_by`

func scanReviewEntry(row pgx.Row) (*models.ReviewEntry, error) {
	var entry models.ReviewEntry
	err := row.Scan(
		&entry.ReviewID,
		&entry.TransactionID,
		&entry.Status,
		&entry.AssignedUserID,
		&entry.ResolutionDate,
		&entry.ResolvedPoint,
		&entry.RuleProposal,
		&entry.CreatedAt,
		&entry.CreatedBy,
		&entry.LastUpdatedAt,
		&entry.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// SaveEntry inserts a review entry. The table enforces one entry per
// transaction, so a second insert for the same transaction is a duplicate.
func (r *PgxReviewQueueRepository) SaveEntry(ctx context.Context, entry *models.ReviewEntry) error {
	query := `
		INSERT INTO review_queue (` + reviewColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	_, err := r.Pool.Exec(ctx, query,
		entry.ReviewID,
		entry.TransactionID,
		entry.Status,
		entry.AssignedUserID,
		entry.ResolutionDate,
		entry.ResolvedPoint,
		entry.RuleProposal,
		entry.CreatedAt,
		entry.CreatedBy,
		entry.LastUpdatedAt,
		entry.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: transaction %s is already queued for review", apperrors.ErrDuplicate, entry.TransactionID)
		}
		return fmt.Errorf("failed to save review entry %s: %w", entry.ReviewID, err)
	}
	return nil
}

// UpdateEntry rewrites a review entry's mutable fields.
func (r *PgxReviewQueueRepository) UpdateEntry(ctx context.Context, entry *models.ReviewEntry) error {
	query := `
		UPDATE review_queue
		SET status = $2, assigned_user_id = $3, resolution_date = $4,
			resolved_point = $5, rule_proposal = $6, last_updated_at = $7, last_updated_by = $8
		WHERE review_id = $1;
	`
	tag, err := r.Pool.Exec(ctx, query,
		entry.ReviewID,
		entry.Status,
		entry.AssignedUserID,
		entry.ResolutionDate,
		entry.ResolvedPoint,
		entry.RuleProposal,
		entry.LastUpdatedAt,
		entry.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update review entry %s: %w", entry.ReviewID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// FindEntryByID retrieves a review entry by its ID.
func (r *PgxReviewQueueRepository) FindEntryByID(ctx context.Context, reviewID string) (*models.ReviewEntry, error) {
	query := `SELECT ` + reviewColumns + ` FROM review_queue WHERE review_id = $1;`
	entry, err := scanReviewEntry(r.Pool.QueryRow(ctx, query, reviewID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find review entry by ID %s: %w", reviewID, err)
	}
	return entry, nil
}

// FindEntryByTransactionID retrieves the review entry of one transaction.
func (r *PgxReviewQueueRepository) FindEntryByTransactionID(ctx context.Context, transactionID string) (*models.ReviewEntry, error) {
	query := `SELECT ` + reviewColumns + ` FROM review_queue WHERE transaction_id = $1;`
	entry, err := scanReviewEntry(r.Pool.QueryRow(ctx, query, transactionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find review entry for transaction %s: %w", transactionID, err)
	}
	return entry, nil
}

// ListEntriesByTransactionIDs batch-fetches entries keyed by transaction ID.
func (r *PgxReviewQueueRepository) ListEntriesByTransactionIDs(ctx context.Context, transactionIDs []string) (map[string]*models.ReviewEntry, error) {
	if len(transactionIDs) == 0 {
		return map[string]*models.ReviewEntry{}, nil
	}

	query := `SELECT ` + reviewColumns + ` FROM review_queue WHERE transaction_id = ANY($1);`
	rows, err := r.Pool.Query(ctx, query, transactionIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query review entries by transaction IDs: %w", err)
	}
	defer rows.Close()

	entries := make(map[string]*models.ReviewEntry)
	for rows.Next() {
		entry, err := scanReviewEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan review entry row during batch fetch: %w", err)
		}
		entries[entry.TransactionID] = entry
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating review entry rows during batch fetch: %w", err)
	}
	return entries, nil
}

// ListEntries returns entries for one declaration, optionally filtered by
// status.
func (r *PgxReviewQueueRepository) ListEntries(ctx context.Context, declarationID string, status models.ReviewStatus) ([]models.ReviewEntry, error) {
	query := `
		SELECT q.review_id, q.transaction_id, q.status, q.assigned_user_id, q.resolution_date,
			q.resolved_point, q.rule_proposal, q.created_at, q.created_by, q.last_updated_at, q.last_updated_by
		FROM review_queue q
		JOIN transactions t ON t.transaction_id = q.transaction_id
		JOIN statements s ON s.statement_id = t.statement_id
		WHERE s.declaration_id = $1`
	args := []any{declarationID}
	if status != "" {
		query += ` AND q.status = $2`
		args = append(args, status)
	}
	query += ` ORDER BY q.created_at, q.review_id;`

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query review entries: %w", err)
	}
	defer rows.Close()

	var entries []models.ReviewEntry
	for rows.Next() {
		entry, err := scanReviewEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan review entry row: %w", err)
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating review entry rows: %w", err)
	}
	return entries, nil
}
