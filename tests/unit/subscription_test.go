package unit

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"toolpool-backend/internal/domain"
	"toolpool-backend/internal/payment"
	"toolpool-backend/internal/service"
	"toolpool-backend/internal/utils"
)

func newSubscriptionFixture() (*MockUserRepo, *MockTierService, *MockRentalRepo, *MockPaymentProvider, service.SubscriptionService, service.RentalService) {
	userRepo := new(MockUserRepo)
	tierSvc := new(MockTierService)
	rentalRepo := new(MockRentalRepo)
	toolRepo := new(MockToolRepo)
	noteRepo := new(MockNotificationRepo)
	emailSvc := new(MockEmailService)
	payments := new(MockPaymentProvider)

	rentalSvc := service.NewRentalService(rentalRepo, toolRepo, userRepo, noteRepo, emailSvc, payments, service.RentalParams{
		DepositCents: 5000, ClaimWindowDays: 7, MaxDurationDays: 30,
	})
	subSvc := service.NewSubscriptionService(userRepo, tierSvc, rentalSvc, payments, service.SubscriptionParams{
		CheckoutSuccessURL: "https://toolpool.test/subscription/success",
		CheckoutCancelURL:  "https://toolpool.test/subscription/cancel",
	})
	return userRepo, tierSvc, rentalRepo, payments, subSvc, rentalSvc
}

func TestSubscriptionService_CreateSubscriptionCheckout(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		userRepo, _, _, payments, svc, _ := newSubscriptionFixture()

		userRepo.On("GetByID", ctx, int32(5)).Return(&domain.User{ID: 5, PaymentCustomerID: "cus_1"}, nil)
		payments.On("CreateCheckout", ctx, mock.MatchedBy(func(p payment.CheckoutParams) bool {
			return p.Mode == payment.CheckoutModeSubscription && p.Metadata["tier"] == "PRO"
		})).Return(&payment.CheckoutSession{ID: "cs_9", URL: "https://pay.test/cs_9"}, nil)

		url, err := svc.CreateSubscriptionCheckout(ctx, int32(5), domain.TierPro)
		assert.NoError(t, err)
		assert.Equal(t, "https://pay.test/cs_9", url)
	})

	t.Run("NONE is not purchasable", func(t *testing.T) {
		_, _, _, payments, svc, _ := newSubscriptionFixture()

		_, err := svc.CreateSubscriptionCheckout(ctx, int32(5), domain.TierNone)
		assert.ErrorIs(t, err, domain.ErrValidationFailed)
		payments.AssertNotCalled(t, "CreateCheckout", mock.Anything, mock.Anything)
	})
}

func TestSubscriptionService_HandleWebhookEvent(t *testing.T) {
	ctx := context.Background()

	t.Run("Payment-mode checkout routes to the rental flow", func(t *testing.T) {
		_, tierSvc, rentalRepo, _, svc, _ := newSubscriptionFixture()

		data, _ := json.Marshal(payment.CheckoutCompletedData{
			PaymentIntentRef: "pi_7",
			Mode:             payment.CheckoutModePayment,
		})
		rentalRepo.On("GetByPaymentRef", ctx, "pi_7").Return(&domain.Rental{ID: 7, Status: domain.RentalStatusPendingPayment}, nil)
		rentalRepo.On("MarkPaid", ctx, int32(7), mock.AnythingOfType("time.Time")).Return(false, nil)

		err := svc.HandleWebhookEvent(ctx, &payment.Event{ID: "evt_1", Type: payment.EventCheckoutCompleted, Data: data})
		assert.NoError(t, err)
		tierSvc.AssertNotCalled(t, "ApplyPaidTier", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Subscription-mode checkout grants the paid tier", func(t *testing.T) {
		userRepo, tierSvc, _, _, svc, _ := newSubscriptionFixture()

		data, _ := json.Marshal(payment.CheckoutCompletedData{
			CustomerID: "cus_1",
			Mode:       payment.CheckoutModeSubscription,
			Metadata:   map[string]string{"user_id": "5", "tier": "STANDARD"},
		})
		userRepo.On("GetByPaymentCustomerID", ctx, "cus_1").Return(&domain.User{ID: 5, PaymentCustomerID: "cus_1"}, nil)
		tierSvc.On("ApplyPaidTier", ctx, int32(5), domain.TierStandard).Return(nil)

		err := svc.HandleWebhookEvent(ctx, &payment.Event{ID: "evt_2", Type: payment.EventCheckoutCompleted, Data: data})
		assert.NoError(t, err)
		tierSvc.AssertCalled(t, "ApplyPaidTier", ctx, int32(5), domain.TierStandard)
	})

	t.Run("First-time buyer resolved via metadata", func(t *testing.T) {
		userRepo, tierSvc, _, _, svc, _ := newSubscriptionFixture()

		data, _ := json.Marshal(payment.CheckoutCompletedData{
			CustomerID: "cus_new",
			Mode:       payment.CheckoutModeSubscription,
			Metadata:   map[string]string{"user_id": "8", "tier": "BASIC"},
		})
		userRepo.On("GetByPaymentCustomerID", ctx, "cus_new").Return(nil, domain.ErrNotFound)
		userRepo.On("GetByID", ctx, int32(8)).Return(&domain.User{ID: 8}, nil)
		userRepo.On("SetPaymentCustomerID", ctx, int32(8), "cus_new").Return(nil)
		tierSvc.On("ApplyPaidTier", ctx, int32(8), domain.TierBasic).Return(nil)

		err := svc.HandleWebhookEvent(ctx, &payment.Event{ID: "evt_3", Type: payment.EventCheckoutCompleted, Data: data})
		assert.NoError(t, err)
	})

	t.Run("Cancellation revokes the paid tier", func(t *testing.T) {
		userRepo, tierSvc, _, _, svc, _ := newSubscriptionFixture()

		data, _ := json.Marshal(payment.SubscriptionData{CustomerID: "cus_1", Status: "canceled", Tier: "PRO"})
		userRepo.On("GetByPaymentCustomerID", ctx, "cus_1").Return(&domain.User{ID: 5}, nil)
		tierSvc.On("RevokePaidTier", ctx, int32(5)).Return(utils.TierResult{
			EffectiveTier: domain.TierBasic,
			GrantedBy:     domain.TierGrantedByToolWaiver,
		}, nil)

		err := svc.HandleWebhookEvent(ctx, &payment.Event{ID: "evt_4", Type: payment.EventSubscriptionCancelled, Data: data})
		assert.NoError(t, err)
		tierSvc.AssertCalled(t, "RevokePaidTier", ctx, int32(5))
	})

	t.Run("Unknown event types are acknowledged", func(t *testing.T) {
		_, tierSvc, _, _, svc, _ := newSubscriptionFixture()

		err := svc.HandleWebhookEvent(ctx, &payment.Event{ID: "evt_5", Type: "invoice.created"})
		assert.NoError(t, err)
		tierSvc.AssertNotCalled(t, "ApplyPaidTier", mock.Anything, mock.Anything, mock.Anything)
	})
}
