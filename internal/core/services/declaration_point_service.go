package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/araratsoft/tax_declaration_app/internal/core/ports"
	"github.com/araratsoft/tax_declaration_app/internal/dto"
	"github.com/araratsoft/tax_declaration_app/internal/models"
)

// DeclarationPointService manages the declaration-point reference data rules
// and manual review resolve against.
type DeclarationPointService struct {
	pointRepo ports.DeclarationPointRepository
	logger    *slog.Logger
}

// NewDeclarationPointService creates a new DeclarationPointService.
func NewDeclarationPointService(pointRepo ports.DeclarationPointRepository, logger *slog.Logger) *DeclarationPointService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DeclarationPointService{pointRepo: pointRepo, logger: logger}
}

// CreatePoint adds a declaration point. Names are unique.
func (s *DeclarationPointService) CreatePoint(ctx context.Context, req dto.CreateDeclarationPointRequest, creatorUserID string) (*models.DeclarationPoint, error) {
	now := time.Now()
	point := &models.DeclarationPoint{
		DeclarationPointID: uuid.NewString(),
		Name:               req.Name,
		Description:        req.Description,
		IsIncome:           req.IsIncome,
		IsAutoFilled:       req.IsAutoFilled,
	}
	point.CreatedAt = now
	point.CreatedBy = creatorUserID
	point.LastUpdatedAt = now
	point.LastUpdatedBy = creatorUserID
	if err := s.pointRepo.SavePoint(ctx, point); err != nil {
		return nil, fmt.Errorf("failed to save declaration point: %w", err)
	}
	return point, nil
}

// GetPointByID returns a single declaration point.
func (s *DeclarationPointService) GetPointByID(ctx context.Context, pointID string) (*models.DeclarationPoint, error) {
	point, err := s.pointRepo.FindPointByID(ctx, pointID)
	if err != nil {
		return nil, fmt.Errorf("failed to find declaration point: %w", err)
	}
	return point, nil
}

// ListPoints returns all declaration points.
func (s *DeclarationPointService) ListPoints(ctx context.Context) ([]models.DeclarationPoint, error) {
	list, err := s.pointRepo.ListPoints(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list declaration points: %w", err)
	}
	return list, nil
}
