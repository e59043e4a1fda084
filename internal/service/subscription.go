package service

import (
	"context"
	"encoding/json"
	"fmt"

	"toolpool-backend/internal/domain"
	"toolpool-backend/internal/logger"
	"toolpool-backend/internal/payment"
	"toolpool-backend/internal/repository"
)

// Monthly subscription prices per paid tier.
var tierPriceCents = map[domain.Tier]int32{
	domain.TierBasic:    500,
	domain.TierStandard: 1200,
	domain.TierPro:      2500,
}

type SubscriptionParams struct {
	CheckoutSuccessURL string
	CheckoutCancelURL  string
}

type subscriptionService struct {
	userRepo  repository.UserRepository
	tierSvc   TierService
	rentalSvc RentalService
	payments  payment.Provider
	params    SubscriptionParams
}

func NewSubscriptionService(
	userRepo repository.UserRepository,
	tierSvc TierService,
	rentalSvc RentalService,
	payments payment.Provider,
	params SubscriptionParams,
) SubscriptionService {
	return &subscriptionService{
		userRepo:  userRepo,
		tierSvc:   tierSvc,
		rentalSvc: rentalSvc,
		payments:  payments,
		params:    params,
	}
}

func (s *subscriptionService) CreateSubscriptionCheckout(ctx context.Context, userID int32, tier domain.Tier) (string, error) {
	price, ok := tierPriceCents[tier]
	if !ok {
		return "", fmt.Errorf("%w: %s is not a purchasable tier", domain.ErrValidationFailed, tier)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}

	session, err := s.payments.CreateCheckout(ctx, payment.CheckoutParams{
		CustomerID: user.PaymentCustomerID,
		Mode:       payment.CheckoutModeSubscription,
		LineItems: []payment.LineItem{
			{Name: fmt.Sprintf("ToolPool %s membership", tier), AmountCents: price, Quantity: 1},
		},
		SuccessURL: s.params.CheckoutSuccessURL,
		CancelURL:  s.params.CheckoutCancelURL,
		Metadata: map[string]string{
			"user_id": fmt.Sprintf("%d", userID),
			"tier":    string(tier),
		},
	})
	if err != nil {
		return "", err
	}

	logger.Info("Subscription checkout created", "user_id", userID, "tier", tier)
	return session.URL, nil
}

// HandleWebhookEvent dispatches a signature-verified processor event. Events
// the service does not recognize are acknowledged and dropped so the
// processor stops redelivering them.
func (s *subscriptionService) HandleWebhookEvent(ctx context.Context, ev *payment.Event) error {
	switch ev.Type {
	case payment.EventCheckoutCompleted:
		var data payment.CheckoutCompletedData
		if err := json.Unmarshal(ev.Data, &data); err != nil {
			return fmt.Errorf("%w: malformed checkout payload: %v", domain.ErrValidationFailed, err)
		}
		return s.handleCheckoutCompleted(ctx, &data)

	case payment.EventSubscriptionUpdated:
		var data payment.SubscriptionData
		if err := json.Unmarshal(ev.Data, &data); err != nil {
			return fmt.Errorf("%w: malformed subscription payload: %v", domain.ErrValidationFailed, err)
		}
		return s.handleSubscriptionUpdated(ctx, &data)

	case payment.EventSubscriptionCancelled:
		var data payment.SubscriptionData
		if err := json.Unmarshal(ev.Data, &data); err != nil {
			return fmt.Errorf("%w: malformed subscription payload: %v", domain.ErrValidationFailed, err)
		}
		return s.handleSubscriptionCancelled(ctx, &data)

	default:
		logger.Info("Ignoring unhandled webhook event", "event_id", ev.ID, "type", ev.Type)
		return nil
	}
}

func (s *subscriptionService) handleCheckoutCompleted(ctx context.Context, data *payment.CheckoutCompletedData) error {
	if data.Mode == payment.CheckoutModePayment {
		return s.rentalSvc.HandleCheckoutCompleted(ctx, data.PaymentIntentRef)
	}

	// Subscription checkout: grant the purchased tier.
	user, err := s.resolveUser(ctx, data.CustomerID, data.Metadata)
	if err != nil {
		return err
	}
	if user.PaymentCustomerID == "" && data.CustomerID != "" {
		if err := s.userRepo.SetPaymentCustomerID(ctx, user.ID, data.CustomerID); err != nil {
			logger.Error("Failed to store payment customer id", "user_id", user.ID, "error", err)
		}
	}

	tier := domain.Tier(data.Metadata["tier"])
	if _, ok := tierPriceCents[tier]; !ok {
		return fmt.Errorf("%w: checkout metadata names unknown tier %q", domain.ErrValidationFailed, tier)
	}
	return s.tierSvc.ApplyPaidTier(ctx, user.ID, tier)
}

func (s *subscriptionService) handleSubscriptionUpdated(ctx context.Context, data *payment.SubscriptionData) error {
	user, err := s.userRepo.GetByPaymentCustomerID(ctx, data.CustomerID)
	if err != nil {
		return err
	}

	tier := domain.Tier(data.Tier)
	if _, ok := tierPriceCents[tier]; !ok {
		return fmt.Errorf("%w: subscription names unknown tier %q", domain.ErrValidationFailed, tier)
	}
	if data.Status != "active" {
		logger.Info("Subscription no longer active, revoking paid tier",
			"user_id", user.ID, "status", data.Status)
		_, err := s.tierSvc.RevokePaidTier(ctx, user.ID)
		return err
	}
	return s.tierSvc.ApplyPaidTier(ctx, user.ID, tier)
}

func (s *subscriptionService) handleSubscriptionCancelled(ctx context.Context, data *payment.SubscriptionData) error {
	user, err := s.userRepo.GetByPaymentCustomerID(ctx, data.CustomerID)
	if err != nil {
		return err
	}
	result, err := s.tierSvc.RevokePaidTier(ctx, user.ID)
	if err != nil {
		return err
	}
	logger.Info("Subscription cancelled",
		"user_id", user.ID, "effective_tier", result.EffectiveTier, "granted_by", result.GrantedBy)
	return nil
}

// resolveUser finds the subscriber by processor customer id, falling back to
// the user_id metadata stamped on the checkout session for first-time buyers.
func (s *subscriptionService) resolveUser(ctx context.Context, customerID string, metadata map[string]string) (*domain.User, error) {
	if customerID != "" {
		user, err := s.userRepo.GetByPaymentCustomerID(ctx, customerID)
		if err == nil {
			return user, nil
		}
	}
	idStr := metadata["user_id"]
	if idStr == "" {
		return nil, fmt.Errorf("%w: checkout has no resolvable user", domain.ErrValidationFailed)
	}
	var id int32
	if _, err := fmt.Sscanf(idStr, "%d", &id); err != nil {
		return nil, fmt.Errorf("%w: malformed user_id metadata %q", domain.ErrValidationFailed, idStr)
	}
	return s.userRepo.GetByID(ctx, id)
}
