// Package payment wraps the hosted payment processor behind a narrow
// interface: hosted checkout sessions, refunds, payout transfers, and signed
// webhook events. Nothing else in the codebase talks to the processor
// directly.
package payment

import (
	"context"
	"encoding/json"
)

type CheckoutMode string

const (
	CheckoutModePayment      CheckoutMode = "payment"
	CheckoutModeSubscription CheckoutMode = "subscription"
)

type LineItem struct {
	Name        string `json:"name"`
	AmountCents int32  `json:"amount_cents"`
	Quantity    int32  `json:"quantity"`
}

type CheckoutParams struct {
	CustomerID string
	Mode       CheckoutMode
	LineItems  []LineItem
	SuccessURL string
	CancelURL  string
	Metadata   map[string]string
}

type CheckoutSession struct {
	ID               string `json:"id"`
	URL              string `json:"url"`
	PaymentIntentRef string `json:"payment_intent"`
}

// Provider is the payment collaborator contract. Refund and Transfer are
// not retractable once issued; implementations attach idempotency keys so a
// framework-level retry cannot double-charge.
type Provider interface {
	CreateCheckout(ctx context.Context, params CheckoutParams) (*CheckoutSession, error)
	Refund(ctx context.Context, paymentRef, reason string, amountCents int32) (string, error)
	Transfer(ctx context.Context, amountCents int32, destinationAccount, sourceRef string) (string, error)
	RetrieveSubscriptionStatus(ctx context.Context, customerID string) (string, error)
}

// Webhook event types delivered by the processor.
const (
	EventCheckoutCompleted     = "checkout.session.completed"
	EventSubscriptionUpdated   = "customer.subscription.updated"
	EventSubscriptionCancelled = "customer.subscription.deleted"
)

type Event struct {
	ID   string          `json:"id"`
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// CheckoutCompletedData is the payload of a checkout.session.completed event.
type CheckoutCompletedData struct {
	SessionID        string            `json:"session_id"`
	PaymentIntentRef string            `json:"payment_intent"`
	CustomerID       string            `json:"customer"`
	Mode             CheckoutMode      `json:"mode"`
	Metadata         map[string]string `json:"metadata"`
}

// SubscriptionData is the payload of a subscription lifecycle event.
type SubscriptionData struct {
	SubscriptionID string `json:"subscription_id"`
	CustomerID     string `json:"customer"`
	Status         string `json:"status"`
	Tier           string `json:"tier"`
}
