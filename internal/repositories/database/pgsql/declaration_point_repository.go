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

type PgxDeclarationPointRepository struct {
	BaseRepository
}

// NewDeclarationPointRepository creates a new repository for declaration point data.
func NewDeclarationPointRepository(pool *pgxpool.Pool) ports.DeclarationPointRepository {
	return &PgxDeclarationPointRepository{BaseRepository{Pool: pool}}
}

var _ ports.DeclarationPointRepository = (*PgxDeclarationPointRepository)(nil)

const pointColumns = `
	declaration_point_id, name, description, is_income, is_auto_filled,
	created_at, created_by, last_updated_at, last_updated_by`

func scanPoint(row pgx.Row) (*models.DeclarationPoint, error) {
	var p models.DeclarationPoint
	err := row.Scan(
		&p.DeclarationPointID,
		&p.Name,
		&p.Description,
		&p.IsIncome,
		&p.IsAutoFilled,
		&p.CreatedAt,
		&p.CreatedBy,
		&p.LastUpdatedAt,
		&p.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// SavePoint inserts a new declaration point. Names are unique.
func (r *PgxDeclarationPointRepository) SavePoint(ctx context.Context, point *models.DeclarationPoint) error {
	query := `
		INSERT INTO declaration_points (` + pointColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	_, err := r.Pool.Exec(ctx, query,
		point.DeclarationPointID,
		point.Name,
		point.Description,
		point.IsIncome,
		point.IsAutoFilled,
		point.CreatedAt,
		point.CreatedBy,
		point.LastUpdatedAt,
		point.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: declaration point named %q already exists", apperrors.ErrDuplicate, point.Name)
		}
		return fmt.Errorf("failed to save declaration point %s: %w", point.DeclarationPointID, err)
	}
	return nil
}

// FindPointByID retrieves a declaration point by its ID.
func (r *PgxDeclarationPointRepository) FindPointByID(ctx context.Context, pointID string) (*models.DeclarationPoint, error) {
	query := `SELECT ` + pointColumns + ` FROM declaration_points WHERE declaration_point_id = $1;`
	point, err := scanPoint(r.Pool.QueryRow(ctx, query, pointID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find declaration point by ID %s: %w", pointID, err)
	}
	return point, nil
}

// ListPoints returns all declaration points ordered by name.
func (r *PgxDeclarationPointRepository) ListPoints(ctx context.Context) ([]models.DeclarationPoint, error) {
	query := `SELECT ` + pointColumns + ` FROM declaration_points ORDER BY name;`
	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query declaration points: %w", err)
	}
	defer rows.Close()

	var points []models.DeclarationPoint
	for rows.Next() {
		point, err := scanPoint(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan declaration point row: %w", err)
		}
		points = append(points, *point)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating declaration point rows: %w", err)
	}
	return points, nil
}
