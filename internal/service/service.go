package service

import (
	"context"
	"time"

	"toolpool-backend/internal/domain"
	"toolpool-backend/internal/payment"
	"toolpool-backend/internal/utils"
)

type AuthService interface {
	Signup(ctx context.Context, email, username, phone, password string) (*domain.User, error)
	VerifyEmail(ctx context.Context, token string) error
	Login(ctx context.Context, email, password string) (string, string, error) // access, refresh
	RefreshToken(ctx context.Context, refresh string) (string, string, error)
}

type TierService interface {
	// RecalculateForUser recomputes the effective tier from the live tool
	// count and persists it when it changed.
	RecalculateForUser(ctx context.Context, userID int32) (utils.TierResult, error)
	// ApplyPaidTier sets a payment-granted tier, overriding any waiver.
	ApplyPaidTier(ctx context.Context, userID int32, tier domain.Tier) error
	// RevokePaidTier drops payment provenance and falls back to whatever the
	// tool count justifies.
	RevokePaidTier(ctx context.Context, userID int32) (utils.TierResult, error)
}

type ToolService interface {
	AddTool(ctx context.Context, tool *domain.Tool) error
	GetTool(ctx context.Context, id int32) (*domain.Tool, error)
	UpdateTool(ctx context.Context, ownerID int32, tool *domain.Tool) error
	DeleteTool(ctx context.Context, ownerID, toolID int32) error
	ListMyTools(ctx context.Context, ownerID int32, page, pageSize int32) ([]domain.Tool, int32, error)
	SearchTools(ctx context.Context, query, category string, maxDailyRate int32, page, pageSize int32) ([]domain.Tool, int32, error)
}

type RentalService interface {
	// CreateRentalRequest validates tier and dates, snapshots pricing, creates
	// the rental in PENDING_PAYMENT and returns it with the checkout URL.
	CreateRentalRequest(ctx context.Context, renterID, toolID int32, startDate, endDate string) (*domain.Rental, string, error)
	// HandleCheckoutCompleted is driven by the verified payment webhook.
	HandleCheckoutCompleted(ctx context.Context, paymentRef string) error
	AcceptRental(ctx context.Context, ownerID, rentalID int32) (*domain.Rental, error)
	RejectRental(ctx context.Context, ownerID, rentalID int32, reason string) (*domain.Rental, error)
	MarkReturned(ctx context.Context, callerID, rentalID int32) (*domain.Rental, error)
	FileDepositClaim(ctx context.Context, ownerID, rentalID int32, reason string) (*domain.Rental, error)
	ResolveDepositClaim(ctx context.Context, adminID, rentalID int32, forfeit bool, notes string) (*domain.Rental, error)
	// ReleaseExpiredDeposits is the scheduled sweep for claim windows that
	// lapsed without a claim. Returns the number of deposits released.
	ReleaseExpiredDeposits(ctx context.Context, now time.Time) (int, error)
	GetRental(ctx context.Context, userID, rentalID int32) (*domain.Rental, error)
	ListRentals(ctx context.Context, renterID int32, status string, page, pageSize int32) ([]domain.Rental, int32, error)
	ListLendings(ctx context.Context, ownerID int32, status string, page, pageSize int32) ([]domain.Rental, int32, error)
}

type SubscriptionService interface {
	CreateSubscriptionCheckout(ctx context.Context, userID int32, tier domain.Tier) (string, error)
	// HandleWebhookEvent dispatches a signature-verified processor event.
	HandleWebhookEvent(ctx context.Context, ev *payment.Event) error
}

type RequestBoardService interface {
	CreateRequest(ctx context.Context, req *domain.ToolRequest) error
	ToggleUpvote(ctx context.Context, requestID, userID int32) (bool, int32, error)
	SetStatus(ctx context.Context, adminID, requestID int32, status domain.ToolRequestStatus) error
	ListRequests(ctx context.Context, status string, page, pageSize int32) ([]domain.ToolRequest, int32, error)
}

type NotificationService interface {
	GetNotifications(ctx context.Context, userID int32, page, pageSize int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, userID, notificationID int32) error
}

type EmailService interface {
	SendVerificationEmail(ctx context.Context, email, username, token string) error

	// Rental notifications
	SendRentalRequestNotification(ctx context.Context, ownerEmail, renterName, toolName string) error
	SendRentalAcceptedNotification(ctx context.Context, renterEmail, toolName, ownerName string) error
	SendRentalRejectedNotification(ctx context.Context, renterEmail, toolName, reason string) error
	SendReturnConfirmation(ctx context.Context, renterEmail, toolName string, claimWindowEndsOn time.Time) error
	SendOverdueReminder(ctx context.Context, renterEmail, toolName, endDate string) error

	// Deposit notifications
	SendDepositClaimNotification(ctx context.Context, renterEmail, toolName, reason string) error
	SendDepositReleasedNotification(ctx context.Context, renterEmail, toolName string) error
	SendDepositResolutionNotification(ctx context.Context, email, toolName, outcome string) error

	// Operator alerts
	SendTransferFailedAlert(ctx context.Context, adminEmail string, rentalID int32, reason string) error
}
