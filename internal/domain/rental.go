package domain

import "time"

type RentalStatus string

const (
	// Every created rental starts in PENDING_PAYMENT. The checkout-completed
	// webhook is the only path into PENDING_APPROVAL.
	RentalStatusPendingPayment  RentalStatus = "PENDING_PAYMENT"
	RentalStatusPendingApproval RentalStatus = "PENDING_APPROVAL"
	RentalStatusActive          RentalStatus = "ACTIVE"
	RentalStatusCompleted       RentalStatus = "COMPLETED"
	RentalStatusRejected        RentalStatus = "REJECTED"
)

type DepositStatus string

const (
	DepositStatusNone           DepositStatus = "NONE"
	DepositStatusHeld           DepositStatus = "HELD"
	DepositStatusPendingRelease DepositStatus = "PENDING_RELEASE"
	DepositStatusReleased       DepositStatus = "RELEASED"
	DepositStatusClaimed        DepositStatus = "CLAIMED"
	DepositStatusForfeited      DepositStatus = "FORFEITED"
	DepositStatusRefunded       DepositStatus = "REFUNDED"
)

// DepositStatusTerminal reports whether no further deposit mutation is
// permitted.
func DepositStatusTerminal(s DepositStatus) bool {
	switch s {
	case DepositStatusReleased, DepositStatusForfeited, DepositStatusRefunded:
		return true
	}
	return false
}

type Rental struct {
	ID       int32 `json:"id"`
	ToolID   int32 `json:"tool_id"`
	RenterID int32 `json:"renter_id"`
	OwnerID  int32 `json:"owner_id"`

	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date"`
	DurationDays int32  `json:"duration_days"`

	// Price snapshot captured from the tool when the rental is created.
	// All cost calculations use these snapshots, not live tool prices.
	DailyRateCents  int32 `json:"daily_rate_cents"`
	RentalCostCents int32 `json:"rental_cost_cents"`
	DepositCents    int32 `json:"deposit_cents"`
	TotalCostCents  int32 `json:"total_cost_cents"`

	Status        RentalStatus  `json:"status"`
	DepositStatus DepositStatus `json:"deposit_status"`

	PaymentIntentRef  string     `json:"payment_intent_ref,omitempty"`
	RefundRef         string     `json:"refund_ref,omitempty"`
	TransferRef       string     `json:"transfer_ref,omitempty"`
	DepositRefundRef  string     `json:"deposit_refund_ref,omitempty"`
	TransferFailed    bool       `json:"transfer_failed"` // surfaced for operator retry
	Overdue           bool       `json:"overdue"`         // set by the nightly sweep, cleared never
	RejectionReason   string     `json:"rejection_reason,omitempty"`
	ClaimReason       string     `json:"claim_reason,omitempty"`
	AdminNotes        string     `json:"admin_notes,omitempty"`
	ClaimWindowEndsOn *time.Time `json:"claim_window_ends_on,omitempty"`

	PaidOn     *time.Time `json:"paid_on,omitempty"`
	AcceptedOn *time.Time `json:"accepted_on,omitempty"`
	RejectedOn *time.Time `json:"rejected_on,omitempty"`
	ReturnedOn *time.Time `json:"returned_on,omitempty"`
	ClaimedOn  *time.Time `json:"claimed_on,omitempty"`
	ReleasedOn *time.Time `json:"released_on,omitempty"`
	ResolvedOn *time.Time `json:"resolved_on,omitempty"`

	CreatedOn string `json:"created_on"`
	UpdatedOn string `json:"updated_on"`
}
