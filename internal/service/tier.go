package service

import (
	"context"
	"fmt"

	"toolpool-backend/internal/domain"
	"toolpool-backend/internal/logger"
	"toolpool-backend/internal/repository"
	"toolpool-backend/internal/utils"
)

type tierService struct {
	userRepo repository.UserRepository
	toolRepo repository.ToolRepository
}

func NewTierService(userRepo repository.UserRepository, toolRepo repository.ToolRepository) TierService {
	return &tierService{userRepo: userRepo, toolRepo: toolRepo}
}

func (s *tierService) RecalculateForUser(ctx context.Context, userID int32) (utils.TierResult, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return utils.TierResult{}, err
	}

	count, err := s.toolRepo.CountAvailableByOwner(ctx, userID)
	if err != nil {
		return utils.TierResult{}, fmt.Errorf("counting tools for user %d: %w", userID, err)
	}

	res := utils.ComputeEffectiveTier(user.Tier, user.TierGrantedBy, count)
	if res.EffectiveTier != user.Tier || res.GrantedBy != user.TierGrantedBy || count != user.AvailableToolCount {
		if err := s.userRepo.UpdateTier(ctx, userID, res.EffectiveTier, res.GrantedBy, count); err != nil {
			return utils.TierResult{}, err
		}
	}

	logger.Info("Tier recalculated",
		"user_id", userID,
		"tier", res.EffectiveTier,
		"granted_by", res.GrantedBy,
		"tool_count", count,
		"action", res.Action)
	return res, nil
}

func (s *tierService) ApplyPaidTier(ctx context.Context, userID int32, tier domain.Tier) error {
	switch tier {
	case domain.TierBasic, domain.TierStandard, domain.TierPro:
	default:
		return fmt.Errorf("%w: %q is not a paid tier", domain.ErrValidationFailed, tier)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.userRepo.UpdateTier(ctx, userID, tier, domain.TierGrantedByPayment, user.AvailableToolCount); err != nil {
		return err
	}
	logger.Info("Paid tier applied", "user_id", userID, "tier", tier)
	return nil
}

func (s *tierService) RevokePaidTier(ctx context.Context, userID int32) (utils.TierResult, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return utils.TierResult{}, err
	}

	count, err := s.toolRepo.CountAvailableByOwner(ctx, userID)
	if err != nil {
		return utils.TierResult{}, fmt.Errorf("counting tools for user %d: %w", userID, err)
	}

	// The paid subscription is gone; whatever remains is tool-count based.
	res := utils.ComputeEffectiveTier(domain.TierNone, domain.TierGrantedByToolWaiver, count)
	if err := s.userRepo.UpdateTier(ctx, userID, res.EffectiveTier, res.GrantedBy, count); err != nil {
		return utils.TierResult{}, err
	}

	logger.Info("Paid tier revoked",
		"user_id", userID,
		"previous_tier", user.Tier,
		"tier", res.EffectiveTier,
		"action", res.Action)
	return res, nil
}
