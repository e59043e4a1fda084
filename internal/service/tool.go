package service

import (
	"context"
	"fmt"

	"toolpool-backend/internal/domain"
	"toolpool-backend/internal/logger"
	"toolpool-backend/internal/repository"
)

type toolService struct {
	toolRepo repository.ToolRepository
	tierSvc  TierService
}

func NewToolService(toolRepo repository.ToolRepository, tierSvc TierService) ToolService {
	return &toolService{toolRepo: toolRepo, tierSvc: tierSvc}
}

func (s *toolService) AddTool(ctx context.Context, tool *domain.Tool) error {
	if err := validateTool(tool); err != nil {
		return err
	}
	tool.Available = true
	if err := s.toolRepo.Create(ctx, tool); err != nil {
		return err
	}
	s.recalculateTier(ctx, tool.OwnerID)
	logger.Info("Tool added", "tool_id", tool.ID, "owner_id", tool.OwnerID)
	return nil
}

func (s *toolService) GetTool(ctx context.Context, id int32) (*domain.Tool, error) {
	return s.toolRepo.GetByID(ctx, id)
}

func (s *toolService) UpdateTool(ctx context.Context, ownerID int32, tool *domain.Tool) error {
	existing, err := s.toolRepo.GetByID(ctx, tool.ID)
	if err != nil {
		return err
	}
	if existing.OwnerID != ownerID {
		return fmt.Errorf("%w: not the tool owner", domain.ErrAuthorizationDenied)
	}
	if err := validateTool(tool); err != nil {
		return err
	}
	tool.OwnerID = existing.OwnerID
	if err := s.toolRepo.Update(ctx, tool); err != nil {
		return err
	}
	// Availability toggles feed the tier waiver count.
	s.recalculateTier(ctx, ownerID)
	return nil
}

func (s *toolService) DeleteTool(ctx context.Context, ownerID, toolID int32) error {
	existing, err := s.toolRepo.GetByID(ctx, toolID)
	if err != nil {
		return err
	}
	if existing.OwnerID != ownerID {
		return fmt.Errorf("%w: not the tool owner", domain.ErrAuthorizationDenied)
	}
	if err := s.toolRepo.SoftDelete(ctx, toolID); err != nil {
		return err
	}
	s.recalculateTier(ctx, ownerID)
	logger.Info("Tool deleted", "tool_id", toolID, "owner_id", ownerID)
	return nil
}

func (s *toolService) ListMyTools(ctx context.Context, ownerID int32, page, pageSize int32) ([]domain.Tool, int32, error) {
	return s.toolRepo.ListByOwner(ctx, ownerID, page, pageSize)
}

func (s *toolService) SearchTools(ctx context.Context, query, category string, maxDailyRate int32, page, pageSize int32) ([]domain.Tool, int32, error) {
	return s.toolRepo.Search(ctx, query, category, maxDailyRate, page, pageSize)
}

// recalculateTier keeps the owner's waiver tier in step with their listings.
// Failures here never fail the tool operation itself.
func (s *toolService) recalculateTier(ctx context.Context, ownerID int32) {
	if _, err := s.tierSvc.RecalculateForUser(ctx, ownerID); err != nil {
		logger.Error("Tier recalculation failed after tool change", "owner_id", ownerID, "error", err)
	}
}

func validateTool(tool *domain.Tool) error {
	if tool.Name == "" {
		return fmt.Errorf("%w: tool name is required", domain.ErrValidationFailed)
	}
	if tool.DailyRateCents <= 0 {
		return fmt.Errorf("%w: daily rate must be positive", domain.ErrValidationFailed)
	}
	if tool.AssessedValueCents < 0 {
		return fmt.Errorf("%w: assessed value cannot be negative", domain.ErrValidationFailed)
	}
	switch tool.Condition {
	case domain.ToolConditionExcellent, domain.ToolConditionGood,
		domain.ToolConditionAcceptable, domain.ToolConditionWorn:
	default:
		return fmt.Errorf("%w: unknown tool condition %q", domain.ErrValidationFailed, tool.Condition)
	}
	return nil
}
