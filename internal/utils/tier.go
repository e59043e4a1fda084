package utils

import "toolpool-backend/internal/domain"

type TierAction string

const (
	TierActionNoChange                TierAction = "no_change"
	TierActionUpgradedToStandardFree  TierAction = "upgraded_to_standard_free"
	TierActionUpgradedToBasicFree     TierAction = "upgraded_to_basic_free"
	TierActionDowngradedNoTools       TierAction = "downgraded_no_tools"
	TierActionPaidSubscription        TierAction = "paid_subscription"
)

// TierResult is the outcome of a tier recalculation. Action is recorded for
// audit logging; IsFreeWaiver marks a tier held because of listed tools
// rather than payment.
type TierResult struct {
	EffectiveTier domain.Tier
	GrantedBy     domain.TierGrantedBy
	Action        TierAction
	IsFreeWaiver  bool
}

// ComputeEffectiveTier reconciles the user's current tier with the number of
// tools they have listed and available. Pure and deterministic; callers run
// it after every tool create/delete/availability change and after every
// subscription webhook event, then persist the result.
//
// Precedence:
//  1. 3+ tools grants STANDARD, unless STANDARD or PRO is already held.
//     A paid grant keeps its payment provenance even when the waiver
//     raises the level.
//  2. 1+ tools grants BASIC, only over NONE or FREE.
//  3. 0 tools reverts a waiver-granted tier to NONE; a paid tier is never
//     downgraded by tool count alone.
func ComputeEffectiveTier(current domain.Tier, grantedBy domain.TierGrantedBy, ownedAvailableToolCount int32) TierResult {
	paid := grantedBy == domain.TierGrantedByPayment && isSubscriptionTier(current)

	switch {
	case ownedAvailableToolCount >= 3:
		if current == domain.TierStandard || current == domain.TierPro {
			if paid {
				return TierResult{current, grantedBy, TierActionPaidSubscription, false}
			}
			return TierResult{current, grantedBy, TierActionNoChange, true}
		}
		if paid {
			// The waiver lifts a paid BASIC to STANDARD but payment
			// provenance survives, so delisting later falls back to the
			// subscription instead of NONE.
			return TierResult{domain.TierStandard, domain.TierGrantedByPayment, TierActionUpgradedToStandardFree, true}
		}
		return TierResult{domain.TierStandard, domain.TierGrantedByToolWaiver, TierActionUpgradedToStandardFree, true}

	case ownedAvailableToolCount >= 1:
		if current == domain.TierNone || current == domain.TierFree {
			return TierResult{domain.TierBasic, domain.TierGrantedByToolWaiver, TierActionUpgradedToBasicFree, true}
		}
		if paid {
			return TierResult{current, grantedBy, TierActionPaidSubscription, false}
		}
		return TierResult{current, grantedBy, TierActionNoChange, true}

	default:
		if paid {
			return TierResult{current, grantedBy, TierActionPaidSubscription, false}
		}
		if current == domain.TierBasic || current == domain.TierStandard {
			return TierResult{domain.TierNone, domain.TierGrantedByToolWaiver, TierActionDowngradedNoTools, false}
		}
		return TierResult{current, grantedBy, TierActionNoChange, false}
	}
}

func isSubscriptionTier(t domain.Tier) bool {
	switch t {
	case domain.TierBasic, domain.TierStandard, domain.TierPro:
		return true
	}
	return false
}
