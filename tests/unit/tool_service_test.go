package unit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"toolpool-backend/internal/domain"
	"toolpool-backend/internal/service"
	"toolpool-backend/internal/utils"
)

func TestToolService_AddTool(t *testing.T) {
	toolRepo := new(MockToolRepo)
	tierSvc := new(MockTierService)
	svc := service.NewToolService(toolRepo, tierSvc)

	ctx := context.Background()

	t.Run("Success recalculates owner tier", func(t *testing.T) {
		tool := &domain.Tool{
			OwnerID:        5,
			Name:           "Angle Grinder",
			Category:       "power",
			Condition:      domain.ToolConditionGood,
			DailyRateCents: 500,
		}
		toolRepo.On("Create", ctx, tool).Return(nil)
		tierSvc.On("RecalculateForUser", ctx, int32(5)).Return(utils.TierResult{
			EffectiveTier: domain.TierBasic,
			GrantedBy:     domain.TierGrantedByToolWaiver,
			Action:        utils.TierActionUpgradedToBasicFree,
		}, nil)

		err := svc.AddTool(ctx, tool)
		assert.NoError(t, err)
		assert.True(t, tool.Available)
		tierSvc.AssertCalled(t, "RecalculateForUser", ctx, int32(5))
	})

	t.Run("Invalid condition rejected", func(t *testing.T) {
		err := svc.AddTool(ctx, &domain.Tool{
			OwnerID:        5,
			Name:           "Mystery",
			Condition:      "RUSTY",
			DailyRateCents: 100,
		})
		assert.ErrorIs(t, err, domain.ErrValidationFailed)
	})

	t.Run("Tier failure does not fail the add", func(t *testing.T) {
		tool := &domain.Tool{
			OwnerID:        6,
			Name:           "Ladder",
			Condition:      domain.ToolConditionAcceptable,
			DailyRateCents: 300,
		}
		toolRepo.On("Create", ctx, tool).Return(nil)
		tierSvc.On("RecalculateForUser", ctx, int32(6)).Return(utils.TierResult{}, assert.AnError)

		err := svc.AddTool(ctx, tool)
		assert.NoError(t, err)
	})
}

func TestToolService_DeleteTool(t *testing.T) {
	ctx := context.Background()

	t.Run("Owner deletes and tier is recomputed", func(t *testing.T) {
		toolRepo := new(MockToolRepo)
		tierSvc := new(MockTierService)
		svc := service.NewToolService(toolRepo, tierSvc)

		toolRepo.On("GetByID", ctx, int32(3)).Return(&domain.Tool{ID: 3, OwnerID: 5}, nil)
		toolRepo.On("SoftDelete", ctx, int32(3)).Return(nil)
		tierSvc.On("RecalculateForUser", ctx, int32(5)).Return(utils.TierResult{
			EffectiveTier: domain.TierNone,
			GrantedBy:     domain.TierGrantedByToolWaiver,
			Action:        utils.TierActionDowngradedNoTools,
		}, nil)

		err := svc.DeleteTool(ctx, int32(5), int32(3))
		assert.NoError(t, err)
		toolRepo.AssertCalled(t, "SoftDelete", ctx, int32(3))
	})

	t.Run("Non-owner denied", func(t *testing.T) {
		toolRepo := new(MockToolRepo)
		tierSvc := new(MockTierService)
		svc := service.NewToolService(toolRepo, tierSvc)

		toolRepo.On("GetByID", ctx, int32(3)).Return(&domain.Tool{ID: 3, OwnerID: 5}, nil)

		err := svc.DeleteTool(ctx, int32(9), int32(3))
		assert.ErrorIs(t, err, domain.ErrAuthorizationDenied)
		toolRepo.AssertNotCalled(t, "SoftDelete", mock.Anything, mock.Anything)
	})
}

func TestToolService_UpdateTool(t *testing.T) {
	ctx := context.Background()
	toolRepo := new(MockToolRepo)
	tierSvc := new(MockTierService)
	svc := service.NewToolService(toolRepo, tierSvc)

	existing := &domain.Tool{ID: 3, OwnerID: 5, Name: "Drill", Condition: domain.ToolConditionGood, DailyRateCents: 400}

	t.Run("Owner cannot be reassigned", func(t *testing.T) {
		toolRepo.On("GetByID", ctx, int32(3)).Return(existing, nil)
		updated := &domain.Tool{ID: 3, OwnerID: 42, Name: "Drill", Category: "power",
			Condition: domain.ToolConditionWorn, DailyRateCents: 350, Available: false}
		toolRepo.On("Update", ctx, updated).Return(nil)
		tierSvc.On("RecalculateForUser", ctx, int32(5)).Return(utils.TierResult{}, nil)

		err := svc.UpdateTool(ctx, int32(5), updated)
		assert.NoError(t, err)
		assert.Equal(t, int32(5), updated.OwnerID)
	})
}
