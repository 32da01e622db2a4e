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

type PgxDeclarationRepository struct {
	BaseRepository
}

// NewDeclarationRepository creates a new repository for declaration data.
func NewDeclarationRepository(pool *pgxpool.Pool) ports.DeclarationRepository {
	return &PgxDeclarationRepository{BaseRepository{Pool: pool}}
}

var _ ports.DeclarationRepository = (*PgxDeclarationRepository)(nil)

const declarationColumns = `
	declaration_id, name, tax_period_start, tax_period_end, client_reference,
	first_name, last_name, status, created_at, created_by, last_updated_at, last_updated_by`

func scanDeclaration(row pgx.Row) (*models.Declaration, error) {
	var d models.Declaration
	err := row.Scan(
		&d.DeclarationID,
		&d.Name,
		&d.TaxPeriodStart,
		&d.TaxPeriodEnd,
		&d.ClientReference,
		&d.FirstName,
		&d.LastName,
		&d.Status,
		&d.CreatedAt,
		&d.CreatedBy,
		&d.LastUpdatedAt,
		&d.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// SaveDeclaration inserts a new declaration. Names are unique.
func (r *PgxDeclarationRepository) SaveDeclaration(ctx context.Context, declaration *models.Declaration) error {
	query := `
		INSERT INTO declarations (` + declarationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	_, err := r.Pool.Exec(ctx, query,
		declaration.DeclarationID,
		declaration.Name,
		declaration.TaxPeriodStart,
		declaration.TaxPeriodEnd,
		declaration.ClientReference,
		declaration.FirstName,
		declaration.LastName,
		declaration.Status,
		declaration.CreatedAt,
		declaration.CreatedBy,
		declaration.LastUpdatedAt,
		declaration.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: declaration named %q already exists", apperrors.ErrDuplicate, declaration.Name)
		}
		return fmt.Errorf("failed to save declaration %s: %w", declaration.DeclarationID, err)
	}
	return nil
}

// FindDeclarationByID retrieves a declaration by its ID.
func (r *PgxDeclarationRepository) FindDeclarationByID(ctx context.Context, declarationID string) (*models.Declaration, error) {
	query := `SELECT ` + declarationColumns + ` FROM declarations WHERE declaration_id = $1;`
	declaration, err := scanDeclaration(r.Pool.QueryRow(ctx, query, declarationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find declaration by ID %s: %w", declarationID, err)
	}
	return declaration, nil
}

// FindDeclarationByName retrieves a declaration by its unique name.
func (r *PgxDeclarationRepository) FindDeclarationByName(ctx context.Context, name string) (*models.Declaration, error) {
	query := `SELECT ` + declarationColumns + ` FROM declarations WHERE name = $1;`
	declaration, err := scanDeclaration(r.Pool.QueryRow(ctx, query, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find declaration by name %q: %w", name, err)
	}
	return declaration, nil
}

// ListDeclarations returns all declarations, most recent first.
func (r *PgxDeclarationRepository) ListDeclarations(ctx context.Context) ([]models.Declaration, error) {
	query := `SELECT ` + declarationColumns + ` FROM declarations ORDER BY created_at DESC;`
	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query declarations: %w", err)
	}
	defer rows.Close()

	var declarations []models.Declaration
	for rows.Next() {
		declaration, err := scanDeclaration(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan declaration row: %w", err)
		}
		declarations = append(declarations, *declaration)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating declaration rows: %w", err)
	}
	return declarations, nil
}

// SaveStatement inserts a new statement.
func (r *PgxDeclarationRepository) SaveStatement(ctx context.Context, statement *models.Statement) error {
	query := `
		INSERT INTO statements (statement_id, declaration_id, file_name, bank_name, upload_date, status, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	_, err := r.Pool.Exec(ctx, query,
		statement.StatementID,
		statement.DeclarationID,
		statement.FileName,
		statement.BankName,
		statement.UploadDate,
		statement.Status,
		statement.CreatedAt,
		statement.CreatedBy,
		statement.LastUpdatedAt,
		statement.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to save statement %s: %w", statement.StatementID, err)
	}
	return nil
}

// ListStatements returns all statements of a declaration.
func (r *PgxDeclarationRepository) ListStatements(ctx context.Context, declarationID string) ([]models.Statement, error) {
	query := `
		SELECT statement_id, declaration_id, file_name, bank_name, upload_date, status, created_at, created_by, last_updated_at, last_updated_by
		FROM statements
		WHERE declaration_id = $1
		ORDER BY upload_date, statement_id;
	`
	rows, err := r.Pool.Query(ctx, query, declarationID)
	if err != nil {
		return nil, fmt.Errorf("failed to query statements: %w", err)
	}
	defer rows.Close()

	var statements []models.Statement
	for rows.Next() {
		var st models.Statement
		err := rows.Scan(
			&st.StatementID,
			&st.DeclarationID,
			&st.FileName,
			&st.BankName,
			&st.UploadDate,
			&st.Status,
			&st.CreatedAt,
			&st.CreatedBy,
			&st.LastUpdatedAt,
			&st.LastUpdatedBy,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan statement row: %w", err)
		}
		statements = append(statements, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating statement rows: %w", err)
	}
	return statements, nil
}

// AggregatePointTotals sums classified income transactions per declaration
// point for the report view.
func (r *PgxDeclarationRepository) AggregatePointTotals(ctx context.Context, declarationID string) ([]models.PointTotal, error) {
	query := `
		SELECT p.name, p.is_income, COALESCE(SUM(t.amount), 0), COUNT(t.transaction_id)
		FROM transactions t
		JOIN statements s ON s.statement_id = t.statement_id
		JOIN declaration_points p ON p.declaration_point_id = t.declaration_point_id
		WHERE s.declaration_id = $1
		GROUP BY p.name, p.is_income
		ORDER BY p.name;
	`
	rows, err := r.Pool.Query(ctx, query, declarationID)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate point totals: %w", err)
	}
	defer rows.Close()

	var totals []models.PointTotal
	for rows.Next() {
		var t models.PointTotal
		if err := rows.Scan(&t.PointName, &t.IsIncome, &t.TotalAmount, &t.TransactionCount); err != nil {
			return nil, fmt.Errorf("failed to scan point total row: %w", err)
		}
		totals = append(totals, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating point total rows: %w", err)
	}
	return totals, nil
}
