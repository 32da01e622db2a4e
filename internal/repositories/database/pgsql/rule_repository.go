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

type PgxRuleRepository struct {
	BaseRepository
}

// NewRuleRepository creates a new repository for rule data.
func NewRuleRepository(pool *pgxpool.Pool) ports.RuleRepository {
	return &PgxRuleRepository{BaseRepository{Pool: pool}}
}

var _ ports.RuleRepository = (*PgxRuleRepository)(nil)

const ruleColumns = `
	rule_id, domain, rule_name, priority, is_active, declaration_id,
	result_point_id, result_entity_type, result_scope, conditions,
	proposal_status, created_at, created_by, last_updated_at, last_updated_by`

func scanRule(row pgx.Row) (*models.Rule, error) {
	var rule models.Rule
	err := row.Scan(
		&rule.RuleID,
		&rule.Domain,
		&rule.Name,
		&rule.Priority,
		&rule.IsActive,
		&rule.DeclarationID,
		&rule.ResultPointID,
		&rule.ResultEntityType,
		&rule.ResultScope,
		&rule.Conditions,
		&rule.ProposalStatus,
		&rule.CreatedAt,
		&rule.CreatedBy,
		&rule.LastUpdatedAt,
		&rule.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &rule, nil
}

// SaveRule inserts a new rule. A name collision within the rule's scope is
// reported as ErrDuplicate.
func (r *PgxRuleRepository) SaveRule(ctx context.Context, rule *models.Rule) error {
	query := `
		INSERT INTO rules (` + ruleColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15);
	`
	_, err := r.Pool.Exec(ctx, query,
		rule.RuleID,
		rule.Domain,
		rule.Name,
		rule.Priority,
		rule.IsActive,
		rule.DeclarationID,
		rule.ResultPointID,
		rule.ResultEntityType,
		rule.ResultScope,
		rule.Conditions,
		rule.ProposalStatus,
		rule.CreatedAt,
		rule.CreatedBy,
		rule.LastUpdatedAt,
		rule.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: rule named %q already exists in this scope", apperrors.ErrDuplicate, rule.Name)
		}
		return fmt.Errorf("failed to save rule %s: %w", rule.RuleID, err)
	}
	return nil
}

// UpdateRule rewrites a rule's mutable fields.
func (r *PgxRuleRepository) UpdateRule(ctx context.Context, rule *models.Rule) error {
	query := `
		UPDATE rules
		SET rule_name = $2, priority = $3, is_active = $4, declaration_id = $5,
			result_point_id = $6, result_entity_type = $7, result_scope = $8,
			conditions = $9, proposal_status = $10, last_updated_at = $11, last_updated_by = $12
		WHERE rule_id = $1;
	`
	tag, err := r.Pool.Exec(ctx, query,
		rule.RuleID,
		rule.Name,
		rule.Priority,
		rule.IsActive,
		rule.DeclarationID,
		rule.ResultPointID,
		rule.ResultEntityType,
		rule.ResultScope,
		rule.Conditions,
		rule.ProposalStatus,
		rule.LastUpdatedAt,
		rule.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: rule named %q already exists in this scope", apperrors.ErrDuplicate, rule.Name)
		}
		return fmt.Errorf("failed to update rule %s: %w", rule.RuleID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeleteRule removes a rule. Transactions referencing it keep their values;
// the foreign key nulls the link.
func (r *PgxRuleRepository) DeleteRule(ctx context.Context, ruleID string) error {
	tag, err := r.Pool.Exec(ctx, `DELETE FROM rules WHERE rule_id = $1;`, ruleID)
	if err != nil {
		return fmt.Errorf("failed to delete rule %s: %w", ruleID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// FindRuleByID retrieves a rule by its ID.
func (r *PgxRuleRepository) FindRuleByID(ctx context.Context, ruleID string) (*models.Rule, error) {
	query := `SELECT ` + ruleColumns + ` FROM rules WHERE rule_id = $1;`
	rule, err := scanRule(r.Pool.QueryRow(ctx, query, ruleID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find rule by ID %s: %w", ruleID, err)
	}
	return rule, nil
}

// ListActiveRules returns active global rules unioned with active rules
// scoped to the declaration. The ordering here is what makes first-match-wins
// deterministic, so it is total: priority, then name.
func (r *PgxRuleRepository) ListActiveRules(ctx context.Context, domain models.RuleDomain, declarationID string) ([]models.Rule, error) {
	query := `
		SELECT ` + ruleColumns + `
		FROM rules
		WHERE domain = $1 AND is_active AND (declaration_id IS NULL OR declaration_id = $2)
		ORDER BY priority, rule_name;
	`
	return r.queryRules(ctx, query, domain, declarationID)
}

// ListRules returns all rules in a domain, optionally narrowed to one
// declaration's scope (global rules included either way).
func (r *PgxRuleRepository) ListRules(ctx context.Context, domain models.RuleDomain, declarationID *string) ([]models.Rule, error) {
	if declarationID != nil {
		query := `
			SELECT ` + ruleColumns + `
			FROM rules
			WHERE domain = $1 AND (declaration_id IS NULL OR declaration_id = $2)
			ORDER BY priority, rule_name;
		`
		return r.queryRules(ctx, query, domain, *declarationID)
	}
	query := `
		SELECT ` + ruleColumns + `
		FROM rules
		WHERE domain = $1
		ORDER BY priority, rule_name;
	`
	return r.queryRules(ctx, query, domain)
}

// ListProposedRules returns rules awaiting a promotion decision.
func (r *PgxRuleRepository) ListProposedRules(ctx context.Context) ([]models.Rule, error) {
	query := `
		SELECT ` + ruleColumns + `
		FROM rules
		WHERE proposal_status = 'PENDING_GLOBAL'
		ORDER BY last_updated_at DESC;
	`
	return r.queryRules(ctx, query)
}

func (r *PgxRuleRepository) queryRules(ctx context.Context, query string, args ...any) ([]models.Rule, error) {
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query rules: %w", err)
	}
	defer rows.Close()

	var rules []models.Rule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan rule row: %w", err)
		}
		rules = append(rules, *rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rule rows: %w", err)
	}
	return rules, nil
}
