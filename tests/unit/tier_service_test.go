package unit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"toolpool-backend/internal/domain"
	"toolpool-backend/internal/service"
)

func TestTierService_RecalculateForUser(t *testing.T) {
	ctx := context.Background()

	t.Run("Three tools grant the free standard waiver", func(t *testing.T) {
		userRepo := new(MockUserRepo)
		toolRepo := new(MockToolRepo)
		svc := service.NewTierService(userRepo, toolRepo)

		userRepo.On("GetByID", ctx, int32(5)).Return(&domain.User{
			ID: 5, Tier: domain.TierNone, TierGrantedBy: domain.TierGrantedByToolWaiver,
		}, nil)
		toolRepo.On("CountAvailableByOwner", ctx, int32(5)).Return(int32(3), nil)
		userRepo.On("UpdateTier", ctx, int32(5), domain.TierStandard, domain.TierGrantedByToolWaiver, int32(3)).Return(nil)

		res, err := svc.RecalculateForUser(ctx, int32(5))
		assert.NoError(t, err)
		assert.Equal(t, domain.TierStandard, res.EffectiveTier)
		assert.True(t, res.IsFreeWaiver)
	})

	t.Run("Paid PRO survives listing three tools", func(t *testing.T) {
		userRepo := new(MockUserRepo)
		toolRepo := new(MockToolRepo)
		svc := service.NewTierService(userRepo, toolRepo)

		userRepo.On("GetByID", ctx, int32(5)).Return(&domain.User{
			ID: 5, Tier: domain.TierPro, TierGrantedBy: domain.TierGrantedByPayment,
		}, nil)
		toolRepo.On("CountAvailableByOwner", ctx, int32(5)).Return(int32(3), nil)
		userRepo.On("UpdateTier", ctx, int32(5), domain.TierPro, domain.TierGrantedByPayment, int32(3)).Return(nil)

		res, err := svc.RecalculateForUser(ctx, int32(5))
		assert.NoError(t, err)
		assert.Equal(t, domain.TierPro, res.EffectiveTier)
		assert.Equal(t, domain.TierGrantedByPayment, res.GrantedBy)
	})

	t.Run("Waiver collapses when the last tool goes", func(t *testing.T) {
		userRepo := new(MockUserRepo)
		toolRepo := new(MockToolRepo)
		svc := service.NewTierService(userRepo, toolRepo)

		userRepo.On("GetByID", ctx, int32(5)).Return(&domain.User{
			ID: 5, Tier: domain.TierStandard, TierGrantedBy: domain.TierGrantedByToolWaiver,
		}, nil)
		toolRepo.On("CountAvailableByOwner", ctx, int32(5)).Return(int32(0), nil)
		userRepo.On("UpdateTier", ctx, int32(5), domain.TierNone, domain.TierGrantedByToolWaiver, int32(0)).Return(nil)

		res, err := svc.RecalculateForUser(ctx, int32(5))
		assert.NoError(t, err)
		assert.Equal(t, domain.TierNone, res.EffectiveTier)
	})
}

func TestTierService_ApplyAndRevokePaidTier(t *testing.T) {
	ctx := context.Background()

	t.Run("ApplyPaidTier stamps payment provenance", func(t *testing.T) {
		userRepo := new(MockUserRepo)
		toolRepo := new(MockToolRepo)
		svc := service.NewTierService(userRepo, toolRepo)

		userRepo.On("GetByID", ctx, int32(5)).Return(&domain.User{
			ID: 5, Tier: domain.TierBasic, TierGrantedBy: domain.TierGrantedByToolWaiver, AvailableToolCount: 1,
		}, nil)
		userRepo.On("UpdateTier", ctx, int32(5), domain.TierPro, domain.TierGrantedByPayment, int32(1)).Return(nil)

		err := svc.ApplyPaidTier(ctx, int32(5), domain.TierPro)
		assert.NoError(t, err)
	})

	t.Run("ApplyPaidTier rejects non-subscription tiers", func(t *testing.T) {
		userRepo := new(MockUserRepo)
		toolRepo := new(MockToolRepo)
		svc := service.NewTierService(userRepo, toolRepo)

		err := svc.ApplyPaidTier(ctx, int32(5), domain.TierNone)
		assert.ErrorIs(t, err, domain.ErrValidationFailed)
		userRepo.AssertNotCalled(t, "UpdateTier", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("RevokePaidTier falls back to the tool waiver", func(t *testing.T) {
		userRepo := new(MockUserRepo)
		toolRepo := new(MockToolRepo)
		svc := service.NewTierService(userRepo, toolRepo)

		userRepo.On("GetByID", ctx, int32(5)).Return(&domain.User{
			ID: 5, Tier: domain.TierPro, TierGrantedBy: domain.TierGrantedByPayment,
		}, nil)
		toolRepo.On("CountAvailableByOwner", ctx, int32(5)).Return(int32(3), nil)
		userRepo.On("UpdateTier", ctx, int32(5), domain.TierStandard, domain.TierGrantedByToolWaiver, int32(3)).Return(nil)

		res, err := svc.RevokePaidTier(ctx, int32(5))
		assert.NoError(t, err)
		assert.Equal(t, domain.TierStandard, res.EffectiveTier)
		assert.True(t, res.IsFreeWaiver)
	})
}
