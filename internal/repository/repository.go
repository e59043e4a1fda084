package repository

import (
	"context"
	"time"

	"toolpool-backend/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int32) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByPaymentCustomerID(ctx context.Context, customerID string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	UpdateTier(ctx context.Context, userID int32, tier domain.Tier, grantedBy domain.TierGrantedBy, toolCount int32) error
	SetEmailVerified(ctx context.Context, userID int32) error
	SetPaymentCustomerID(ctx context.Context, userID int32, customerID string) error
}

type ToolRepository interface {
	Create(ctx context.Context, tool *domain.Tool) error
	GetByID(ctx context.Context, id int32) (*domain.Tool, error)
	Update(ctx context.Context, tool *domain.Tool) error
	SoftDelete(ctx context.Context, id int32) error
	ListByOwner(ctx context.Context, ownerID int32, page, pageSize int32) ([]domain.Tool, int32, error)
	Search(ctx context.Context, query, category string, maxDailyRate int32, page, pageSize int32) ([]domain.Tool, int32, error)
	// CountAvailableByOwner recomputes the owner's listed-and-available tool
	// count from the tools table, the source of truth for tier waivers.
	CountAvailableByOwner(ctx context.Context, ownerID int32) (int32, error)
}

// RentalRepository persists rentals. All state transitions are conditional
// updates: the expected current status is part of the WHERE clause and the
// boolean result reports whether the row matched, so concurrent commands
// cannot both win a transition.
type RentalRepository interface {
	Create(ctx context.Context, rental *domain.Rental) error
	GetByID(ctx context.Context, id int32) (*domain.Rental, error)
	GetByPaymentRef(ctx context.Context, paymentRef string) (*domain.Rental, error)

	// MarkPaid moves PENDING_PAYMENT to PENDING_APPROVAL and the deposit from
	// NONE to HELD.
	MarkPaid(ctx context.Context, id int32, paidOn time.Time) (bool, error)
	// Accept moves PENDING_APPROVAL to ACTIVE.
	Accept(ctx context.Context, id int32, acceptedOn time.Time) (bool, error)
	// RecordTransferResult stores the payout transfer outcome after an accept.
	RecordTransferResult(ctx context.Context, id int32, transferRef string, failed bool) error
	// Reject moves PENDING_APPROVAL to REJECTED and records the refund.
	Reject(ctx context.Context, id int32, reason, refundRef string, rejectedOn time.Time) (bool, error)
	// MarkReturned moves ACTIVE to COMPLETED and the deposit from HELD to
	// PENDING_RELEASE, opening the claim window.
	MarkReturned(ctx context.Context, id int32, returnedOn time.Time, claimWindowEndsOn time.Time) (bool, error)
	// FileClaim moves the deposit from PENDING_RELEASE to CLAIMED while the
	// claim window is still open.
	FileClaim(ctx context.Context, id int32, reason string, claimedOn time.Time) (bool, error)
	// ResolveClaim moves the deposit from CLAIMED to FORFEITED or REFUNDED.
	ResolveClaim(ctx context.Context, id int32, outcome domain.DepositStatus, adminNotes, paymentRef string, resolvedOn time.Time) (bool, error)
	// ReleaseDeposit moves the deposit from PENDING_RELEASE to RELEASED once
	// the claim window has passed.
	ReleaseDeposit(ctx context.Context, id int32, refundRef string, releasedOn time.Time) (bool, error)

	ListExpiredDeposits(ctx context.Context, now time.Time) ([]domain.Rental, error)
	ListByRenter(ctx context.Context, renterID int32, status string, page, pageSize int32) ([]domain.Rental, int32, error)
	ListByOwner(ctx context.Context, ownerID int32, status string, page, pageSize int32) ([]domain.Rental, int32, error)
}

type ToolRequestRepository interface {
	Create(ctx context.Context, req *domain.ToolRequest) error
	GetByID(ctx context.Context, id int32) (*domain.ToolRequest, error)
	List(ctx context.Context, status string, page, pageSize int32) ([]domain.ToolRequest, int32, error)
	// SetStatus transitions OPEN to the given status; no other transitions.
	SetStatus(ctx context.Context, id int32, status domain.ToolRequestStatus) (bool, error)
	// ToggleUpvote inserts or deletes the (request, user) pair and adjusts
	// upvote_count atomically in the same transaction. Returns whether the
	// upvote now exists and the resulting count.
	ToggleUpvote(ctx context.Context, requestID, userID int32) (bool, int32, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, note *domain.Notification) error
	List(ctx context.Context, userID int32, limit, offset int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, id, userID int32) error
}
