package services

import (
	"context"
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

// RuleService manages classification rules across all three domains,
// including the promotion workflow that lifts a declaration-scoped category
// rule to global scope.
type RuleService struct {
	ruleRepo  ports.RuleRepository
	pointRepo ports.DeclarationPointRepository
	logger    *slog.Logger
}

// NewRuleService creates a new RuleService.
func NewRuleService(ruleRepo ports.RuleRepository, pointRepo ports.DeclarationPointRepository, logger *slog.Logger) *RuleService {
	if logger == nil {
		logger = slog.Default()
	}
	return &RuleService{ruleRepo: ruleRepo, pointRepo: pointRepo, logger: logger}
}

// CreateRule validates and persists a new rule. Conditions must parse (in
// either wire shape) and the result field matching the domain must be set;
// name collisions within the same scope surface as ErrDuplicate.
func (s *RuleService) CreateRule(ctx context.Context, req dto.CreateRuleRequest, creatorUserID string) (*models.Rule, error) {
	domain := models.RuleDomain(req.Domain)
	rule := &models.Rule{
		RuleID:         uuid.NewString(),
		Domain:         domain,
		Name:           req.Name,
		Priority:       req.Priority,
		IsActive:       true,
		DeclarationID:  req.DeclarationID,
		Conditions:     req.Conditions,
		ProposalStatus: models.ProposalNone,
	}
	if req.IsActive != nil {
		rule.IsActive = *req.IsActive
	}
	if err := s.applyResult(ctx, rule, req.ResultPointID, req.ResultEntityType, req.ResultScope); err != nil {
		return nil, err
	}
	if _, err := rules.ParseTree(rule.Conditions); err != nil {
		return nil, fmt.Errorf("%w: conditions do not parse: %s", apperrors.ErrValidation, err.Error())
	}

	now := time.Now()
	rule.CreatedAt = now
	rule.CreatedBy = creatorUserID
	rule.LastUpdatedAt = now
	rule.LastUpdatedBy = creatorUserID
	if err := s.ruleRepo.SaveRule(ctx, rule); err != nil {
		return nil, fmt.Errorf("failed to save rule: %w", err)
	}
	s.logger.Info("Rule created",
		slog.String("rule_id", rule.RuleID),
		slog.String("domain", string(rule.Domain)),
		slog.String("rule_name", rule.Name),
	)
	return rule, nil
}

// UpdateRule applies a partial update to an existing rule. The domain is
// fixed at creation and cannot change.
func (s *RuleService) UpdateRule(ctx context.Context, ruleID string, req dto.UpdateRuleRequest, updaterUserID string) (*models.Rule, error) {
	rule, err := s.ruleRepo.FindRuleByID(ctx, ruleID)
	if err != nil {
		return nil, fmt.Errorf("failed to find rule: %w", err)
	}

	if req.Name != nil {
		rule.Name = *req.Name
	}
	if req.Priority != nil {
		rule.Priority = *req.Priority
	}
	if req.IsActive != nil {
		rule.IsActive = *req.IsActive
	}
	if req.Conditions != nil {
		if _, err := rules.ParseTree(req.Conditions); err != nil {
			return nil, fmt.Errorf("%w: conditions do not parse: %s", apperrors.ErrValidation, err.Error())
		}
		rule.Conditions = req.Conditions
	}
	if req.ResultPointID != nil || req.ResultEntityType != "" || req.ResultScope != "" {
		if err := s.applyResult(ctx, rule, req.ResultPointID, req.ResultEntityType, req.ResultScope); err != nil {
			return nil, err
		}
	}

	rule.LastUpdatedAt = time.Now()
	rule.LastUpdatedBy = updaterUserID
	if err := s.ruleRepo.UpdateRule(ctx, rule); err != nil {
		return nil, fmt.Errorf("failed to update rule: %w", err)
	}
	return rule, nil
}

// applyResult validates and sets the domain-specific result field.
func (s *RuleService) applyResult(ctx context.Context, rule *models.Rule, pointID *string, entityType, scope string) error {
	switch rule.Domain {
	case models.DomainCategory:
		if pointID == nil || *pointID == "" {
			return fmt.Errorf("%w: category rules require a result declaration point", apperrors.ErrValidation)
		}
		point, err := s.pointRepo.FindPointByID(ctx, *pointID)
		if err != nil {
			return fmt.Errorf("failed to find result declaration point: %w", err)
		}
		if point.IsAutoFilled {
			return fmt.Errorf("%w: auto-filled declaration points cannot be rule targets", apperrors.ErrValidation)
		}
		rule.ResultPointID = pointID
	case models.DomainEntityType:
		et := models.EntityType(entityType)
		if et != models.EntityIndividual && et != models.EntityLegal {
			return fmt.Errorf("%w: entity type rules must resolve to INDIVIDUAL or LEGAL", apperrors.ErrValidation)
		}
		rule.ResultEntityType = et
	case models.DomainScope:
		sc := models.TransactionScope(scope)
		if sc != models.ScopeLocal && sc != models.ScopeInternational {
			return fmt.Errorf("%w: scope rules must resolve to LOCAL or INTERNATIONAL", apperrors.ErrValidation)
		}
		rule.ResultScope = sc
	default:
		return fmt.Errorf("%w: unknown rule domain %q", apperrors.ErrValidation, rule.Domain)
	}
	return nil
}

// GetRuleByID returns a single rule.
func (s *RuleService) GetRuleByID(ctx context.Context, ruleID string) (*models.Rule, error) {
	rule, err := s.ruleRepo.FindRuleByID(ctx, ruleID)
	if err != nil {
		return nil, fmt.Errorf("failed to find rule: %w", err)
	}
	return rule, nil
}

// ListRules returns rules in a domain, optionally narrowed to one
// declaration's scope.
func (s *RuleService) ListRules(ctx context.Context, domain models.RuleDomain, declarationID *string) ([]models.Rule, error) {
	list, err := s.ruleRepo.ListRules(ctx, domain, declarationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rules: %w", err)
	}
	return list, nil
}

// DeleteRule removes a rule permanently. Transactions it already classified
// keep their values; only future runs are affected.
func (s *RuleService) DeleteRule(ctx context.Context, ruleID string) error {
	if err := s.ruleRepo.DeleteRule(ctx, ruleID); err != nil {
		return fmt.Errorf("failed to delete rule: %w", err)
	}
	return nil
}

// ProposeGlobal flags a declaration-scoped category rule for promotion.
func (s *RuleService) ProposeGlobal(ctx context.Context, ruleID string, userID string) (*models.Rule, error) {
	rule, err := s.ruleRepo.FindRuleByID(ctx, ruleID)
	if err != nil {
		return nil, fmt.Errorf("failed to find rule: %w", err)
	}
	if rule.IsGlobal() {
		return nil, fmt.Errorf("%w: rule is already global", apperrors.ErrValidation)
	}
	if rule.Domain != models.DomainCategory {
		return nil, fmt.Errorf("%w: only category rules can be proposed for promotion", apperrors.ErrValidation)
	}
	rule.ProposalStatus = models.ProposalPendingGlobal
	rule.LastUpdatedAt = time.Now()
	rule.LastUpdatedBy = userID
	if err := s.ruleRepo.UpdateRule(ctx, rule); err != nil {
		return nil, fmt.Errorf("failed to flag rule for promotion: %w", err)
	}
	return rule, nil
}

// ListProposedRules returns rules awaiting a promotion decision.
func (s *RuleService) ListProposedRules(ctx context.Context) ([]models.Rule, error) {
	list, err := s.ruleRepo.ListProposedRules(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list proposed rules: %w", err)
	}
	return list, nil
}

// PromoteToGlobal lifts a proposed rule out of its declaration scope. The
// global namespace may already hold the name, in which case the repository
// reports ErrDuplicate and the rule stays scoped.
func (s *RuleService) PromoteToGlobal(ctx context.Context, ruleID string, userID string) (*models.Rule, error) {
	rule, err := s.ruleRepo.FindRuleByID(ctx, ruleID)
	if err != nil {
		return nil, fmt.Errorf("failed to find rule: %w", err)
	}
	if rule.ProposalStatus != models.ProposalPendingGlobal {
		return nil, fmt.Errorf("%w: rule is not proposed for promotion", apperrors.ErrValidation)
	}
	rule.DeclarationID = nil
	rule.ProposalStatus = models.ProposalNone
	rule.LastUpdatedAt = time.Now()
	rule.LastUpdatedBy = userID
	if err := s.ruleRepo.UpdateRule(ctx, rule); err != nil {
		return nil, fmt.Errorf("failed to promote rule: %w", err)
	}
	s.logger.Info("Rule promoted to global scope",
		slog.String("rule_id", rule.RuleID),
		slog.String("rule_name", rule.Name),
	)
	return rule, nil
}

// RejectProposal clears the promotion flag, leaving the rule scoped.
func (s *RuleService) RejectProposal(ctx context.Context, ruleID string, userID string) (*models.Rule, error) {
	rule, err := s.ruleRepo.FindRuleByID(ctx, ruleID)
	if err != nil {
		return nil, fmt.Errorf("failed to find rule: %w", err)
	}
	if rule.ProposalStatus != models.ProposalPendingGlobal {
		return nil, fmt.Errorf("%w: rule is not proposed for promotion", apperrors.ErrValidation)
	}
	rule.ProposalStatus = models.ProposalNone
	rule.LastUpdatedAt = time.Now()
	rule.LastUpdatedBy = userID
	if err := s.ruleRepo.UpdateRule(ctx, rule); err != nil {
		return nil, fmt.Errorf("failed to reject rule proposal: %w", err)
	}
	return rule, nil
}
