package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"toolpool-backend/internal/domain"
	"toolpool-backend/internal/logger"
	"toolpool-backend/internal/payment"
	"toolpool-backend/internal/repository"
	"toolpool-backend/internal/utils"
)

// RentalParams carries the rental lifecycle settings from config.
type RentalParams struct {
	DepositCents       int32
	ClaimWindowDays    int
	MaxDurationDays    int32
	CheckoutSuccessURL string
	CheckoutCancelURL  string
	AdminEmail         string
}

type rentalService struct {
	rentalRepo repository.RentalRepository
	toolRepo   repository.ToolRepository
	userRepo   repository.UserRepository
	noteRepo   repository.NotificationRepository
	emailSvc   EmailService
	payments   payment.Provider
	params     RentalParams
}

func NewRentalService(
	rentalRepo repository.RentalRepository,
	toolRepo repository.ToolRepository,
	userRepo repository.UserRepository,
	noteRepo repository.NotificationRepository,
	emailSvc EmailService,
	payments payment.Provider,
	params RentalParams,
) RentalService {
	return &rentalService{
		rentalRepo: rentalRepo,
		toolRepo:   toolRepo,
		userRepo:   userRepo,
		noteRepo:   noteRepo,
		emailSvc:   emailSvc,
		payments:   payments,
		params:     params,
	}
}

func (s *rentalService) CreateRentalRequest(ctx context.Context, renterID, toolID int32, startDateStr, endDateStr string) (*domain.Rental, string, error) {
	renter, err := s.userRepo.GetByID(ctx, renterID)
	if err != nil {
		return nil, "", err
	}
	if !renter.CanBorrow() {
		return nil, "", fmt.Errorf("%w: tier %s does not permit borrowing", domain.ErrAuthorizationDenied, renter.Tier)
	}

	tool, err := s.toolRepo.GetByID(ctx, toolID)
	if err != nil {
		return nil, "", err
	}
	if !tool.Available {
		return nil, "", fmt.Errorf("%w: tool is not available", domain.ErrPreconditionFailed)
	}
	if tool.OwnerID == renterID {
		return nil, "", fmt.Errorf("%w: cannot rent your own tool", domain.ErrValidationFailed)
	}

	start, err := utils.ParseDate(startDateStr)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", domain.ErrValidationFailed, err)
	}
	end, err := utils.ParseDate(endDateStr)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", domain.ErrValidationFailed, err)
	}
	if err := utils.ValidateRentalDates(start, end, time.Now().UTC(), s.params.MaxDurationDays); err != nil {
		return nil, "", fmt.Errorf("%w: %v", domain.ErrValidationFailed, err)
	}

	days := utils.DurationDays(start, end)
	rentalCost := utils.CalculateRentalCost(tool.DailyRateCents, days)
	totalCost := rentalCost + s.params.DepositCents

	session, err := s.payments.CreateCheckout(ctx, payment.CheckoutParams{
		CustomerID: renter.PaymentCustomerID,
		Mode:       payment.CheckoutModePayment,
		LineItems: []payment.LineItem{
			{Name: fmt.Sprintf("Rental: %s (%d days)", tool.Name, days), AmountCents: rentalCost, Quantity: 1},
			{Name: "Refundable deposit", AmountCents: s.params.DepositCents, Quantity: 1},
		},
		SuccessURL: s.params.CheckoutSuccessURL,
		CancelURL:  s.params.CheckoutCancelURL,
		Metadata: map[string]string{
			"tool_id":   fmt.Sprintf("%d", toolID),
			"renter_id": fmt.Sprintf("%d", renterID),
		},
	})
	if err != nil {
		return nil, "", err
	}

	rental := &domain.Rental{
		ToolID:           toolID,
		RenterID:         renterID,
		OwnerID:          tool.OwnerID,
		StartDate:        startDateStr,
		EndDate:          endDateStr,
		DurationDays:     days,
		DailyRateCents:   tool.DailyRateCents,
		RentalCostCents:  rentalCost,
		DepositCents:     s.params.DepositCents,
		TotalCostCents:   totalCost,
		Status:           domain.RentalStatusPendingPayment,
		DepositStatus:    domain.DepositStatusNone,
		PaymentIntentRef: session.PaymentIntentRef,
	}
	if err := s.rentalRepo.Create(ctx, rental); err != nil {
		return nil, "", err
	}

	logger.Info("Rental request created",
		"rental_id", rental.ID, "tool_id", toolID, "renter_id", renterID,
		"total_cost_cents", totalCost)
	return rental, session.URL, nil
}

// HandleCheckoutCompleted moves a paid rental into the owner's approval
// queue. Redelivered webhooks are absorbed: a rental already past
// PENDING_PAYMENT is left alone.
func (s *rentalService) HandleCheckoutCompleted(ctx context.Context, paymentRef string) error {
	rt, err := s.rentalRepo.GetByPaymentRef(ctx, paymentRef)
	if err != nil {
		return err
	}

	ok, err := s.rentalRepo.MarkPaid(ctx, rt.ID, time.Now().UTC())
	if err != nil {
		return err
	}
	if !ok {
		logger.Info("Checkout webhook redelivered, rental already paid", "rental_id", rt.ID)
		return nil
	}

	// Notify owner
	owner, _ := s.userRepo.GetByID(ctx, rt.OwnerID)
	renter, _ := s.userRepo.GetByID(ctx, rt.RenterID)
	tool, _ := s.toolRepo.GetByID(ctx, rt.ToolID)
	if owner != nil && renter != nil && tool != nil {
		_ = s.emailSvc.SendRentalRequestNotification(ctx, owner.Email, renter.Username, tool.Name)
		_ = s.noteRepo.Create(ctx, &domain.Notification{
			UserID:  owner.ID,
			Title:   "New Rental Request",
			Message: fmt.Sprintf("%s requested to rent %s", renter.Username, tool.Name),
			Attributes: map[string]string{
				"type":      "RENTAL_REQUEST",
				"rental_id": fmt.Sprintf("%d", rt.ID),
			},
		})
	}
	return nil
}

func (s *rentalService) AcceptRental(ctx context.Context, ownerID, rentalID int32) (*domain.Rental, error) {
	rt, err := s.rentalRepo.GetByID(ctx, rentalID)
	if err != nil {
		return nil, err
	}
	if rt.OwnerID != ownerID {
		return nil, fmt.Errorf("%w: not the tool owner", domain.ErrAuthorizationDenied)
	}
	if rt.Status != domain.RentalStatusPendingApproval {
		return nil, fmt.Errorf("%w: rental is %s, not pending approval", domain.ErrPreconditionFailed, rt.Status)
	}

	owner, err := s.userRepo.GetByID(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if owner.PayoutAccountID == "" {
		return nil, fmt.Errorf("%w: no payout account configured", domain.ErrPreconditionFailed)
	}

	ok, err := s.rentalRepo.Accept(ctx, rentalID, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: rental is no longer pending approval", domain.ErrPreconditionFailed)
	}

	// Payout transfer is best-effort: a failure is recorded for operator
	// retry and does not undo the acceptance.
	transferRef, err := s.payments.Transfer(ctx, rt.RentalCostCents, owner.PayoutAccountID, rt.PaymentIntentRef)
	if err != nil {
		logger.Error("Payout transfer failed, flagged for reconciliation",
			"rental_id", rentalID, "owner_id", ownerID, "error", err)
		if recErr := s.rentalRepo.RecordTransferResult(ctx, rentalID, "", true); recErr != nil {
			logger.Error("Failed to record transfer failure", "rental_id", rentalID, "error", recErr)
		}
		if s.params.AdminEmail != "" {
			_ = s.emailSvc.SendTransferFailedAlert(ctx, s.params.AdminEmail, rentalID, err.Error())
		}
	} else {
		if recErr := s.rentalRepo.RecordTransferResult(ctx, rentalID, transferRef, false); recErr != nil {
			logger.Error("Failed to record transfer result", "rental_id", rentalID, "error", recErr)
		}
	}

	// Notify renter
	renter, _ := s.userRepo.GetByID(ctx, rt.RenterID)
	tool, _ := s.toolRepo.GetByID(ctx, rt.ToolID)
	if renter != nil && tool != nil {
		_ = s.emailSvc.SendRentalAcceptedNotification(ctx, renter.Email, tool.Name, owner.Username)
		_ = s.noteRepo.Create(ctx, &domain.Notification{
			UserID:  renter.ID,
			Title:   "Rental Accepted",
			Message: fmt.Sprintf("Your rental request for %s was accepted", tool.Name),
			Attributes: map[string]string{
				"type":      "RENTAL_ACCEPTED",
				"rental_id": fmt.Sprintf("%d", rentalID),
			},
		})
	}

	return s.rentalRepo.GetByID(ctx, rentalID)
}

func (s *rentalService) RejectRental(ctx context.Context, ownerID, rentalID int32, reason string) (*domain.Rental, error) {
	rt, err := s.rentalRepo.GetByID(ctx, rentalID)
	if err != nil {
		return nil, err
	}
	if rt.OwnerID != ownerID {
		return nil, fmt.Errorf("%w: not the tool owner", domain.ErrAuthorizationDenied)
	}
	if rt.Status != domain.RentalStatusPendingApproval {
		return nil, fmt.Errorf("%w: rental is %s, not pending approval", domain.ErrPreconditionFailed, rt.Status)
	}

	// The full refund is a hard precondition: if it fails the rejection
	// fails and must be retried.
	refundRef, err := s.payments.Refund(ctx, rt.PaymentIntentRef, reason, rt.TotalCostCents)
	if err != nil {
		return nil, fmt.Errorf("refund before reject: %w", err)
	}

	ok, err := s.rentalRepo.Reject(ctx, rentalID, reason, refundRef, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if !ok {
		// Refund already went out but the rental moved on concurrently.
		logger.Error("Refund issued but reject lost the race, needs reconciliation",
			"rental_id", rentalID, "refund_ref", refundRef)
		return nil, fmt.Errorf("%w: rental is no longer pending approval", domain.ErrPreconditionFailed)
	}

	// Notify renter
	renter, _ := s.userRepo.GetByID(ctx, rt.RenterID)
	tool, _ := s.toolRepo.GetByID(ctx, rt.ToolID)
	if renter != nil && tool != nil {
		_ = s.emailSvc.SendRentalRejectedNotification(ctx, renter.Email, tool.Name, reason)
		_ = s.noteRepo.Create(ctx, &domain.Notification{
			UserID:  renter.ID,
			Title:   "Rental Rejected",
			Message: fmt.Sprintf("Your rental request for %s was rejected", tool.Name),
			Attributes: map[string]string{
				"type":      "RENTAL_REJECTED",
				"rental_id": fmt.Sprintf("%d", rentalID),
			},
		})
	}

	return s.rentalRepo.GetByID(ctx, rentalID)
}

func (s *rentalService) MarkReturned(ctx context.Context, callerID, rentalID int32) (*domain.Rental, error) {
	rt, err := s.rentalRepo.GetByID(ctx, rentalID)
	if err != nil {
		return nil, err
	}
	if rt.OwnerID != callerID && rt.RenterID != callerID {
		return nil, fmt.Errorf("%w: not a party to this rental", domain.ErrAuthorizationDenied)
	}
	if rt.Status != domain.RentalStatusActive {
		return nil, fmt.Errorf("%w: rental is %s, not active", domain.ErrPreconditionFailed, rt.Status)
	}

	now := time.Now().UTC()
	windowEnd := now.AddDate(0, 0, s.params.ClaimWindowDays)
	ok, err := s.rentalRepo.MarkReturned(ctx, rentalID, now, windowEnd)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: rental is no longer active", domain.ErrPreconditionFailed)
	}

	renter, _ := s.userRepo.GetByID(ctx, rt.RenterID)
	tool, _ := s.toolRepo.GetByID(ctx, rt.ToolID)
	if renter != nil && tool != nil {
		_ = s.emailSvc.SendReturnConfirmation(ctx, renter.Email, tool.Name, windowEnd)
	}

	return s.rentalRepo.GetByID(ctx, rentalID)
}

func (s *rentalService) FileDepositClaim(ctx context.Context, ownerID, rentalID int32, reason string) (*domain.Rental, error) {
	if reason == "" {
		return nil, fmt.Errorf("%w: claim reason is required", domain.ErrValidationFailed)
	}

	rt, err := s.rentalRepo.GetByID(ctx, rentalID)
	if err != nil {
		return nil, err
	}
	if rt.OwnerID != ownerID {
		return nil, fmt.Errorf("%w: not the tool owner", domain.ErrAuthorizationDenied)
	}
	if domain.DepositStatusTerminal(rt.DepositStatus) {
		return nil, fmt.Errorf("%w: deposit already settled as %s", domain.ErrPreconditionFailed, rt.DepositStatus)
	}

	ok, err := s.rentalRepo.FileClaim(ctx, rentalID, reason, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: claim window is closed or deposit not pending release", domain.ErrPreconditionFailed)
	}

	renter, _ := s.userRepo.GetByID(ctx, rt.RenterID)
	tool, _ := s.toolRepo.GetByID(ctx, rt.ToolID)
	if renter != nil && tool != nil {
		_ = s.emailSvc.SendDepositClaimNotification(ctx, renter.Email, tool.Name, reason)
		_ = s.noteRepo.Create(ctx, &domain.Notification{
			UserID:  renter.ID,
			Title:   "Deposit Claim Filed",
			Message: fmt.Sprintf("The owner filed a deposit claim for %s", tool.Name),
			Attributes: map[string]string{
				"type":      "DEPOSIT_CLAIM",
				"rental_id": fmt.Sprintf("%d", rentalID),
			},
		})
	}

	return s.rentalRepo.GetByID(ctx, rentalID)
}

func (s *rentalService) ResolveDepositClaim(ctx context.Context, adminID, rentalID int32, forfeit bool, notes string) (*domain.Rental, error) {
	admin, err := s.userRepo.GetByID(ctx, adminID)
	if err != nil {
		return nil, err
	}
	if !admin.IsAdmin {
		return nil, fmt.Errorf("%w: administrator role required", domain.ErrAuthorizationDenied)
	}

	rt, err := s.rentalRepo.GetByID(ctx, rentalID)
	if err != nil {
		return nil, err
	}
	if rt.DepositStatus != domain.DepositStatusClaimed {
		return nil, fmt.Errorf("%w: deposit is %s, not claimed", domain.ErrPreconditionFailed, rt.DepositStatus)
	}

	// The payment movement is a hard precondition for either outcome.
	var outcome domain.DepositStatus
	var paymentRef string
	if forfeit {
		owner, err := s.userRepo.GetByID(ctx, rt.OwnerID)
		if err != nil {
			return nil, err
		}
		if owner.PayoutAccountID == "" {
			return nil, fmt.Errorf("%w: owner has no payout account configured", domain.ErrPreconditionFailed)
		}
		paymentRef, err = s.payments.Transfer(ctx, rt.DepositCents, owner.PayoutAccountID, rt.PaymentIntentRef)
		if err != nil {
			return nil, fmt.Errorf("deposit forfeit transfer: %w", err)
		}
		outcome = domain.DepositStatusForfeited
	} else {
		var err error
		paymentRef, err = s.payments.Refund(ctx, rt.PaymentIntentRef, "deposit claim denied", rt.DepositCents)
		if err != nil {
			return nil, fmt.Errorf("deposit refund: %w", err)
		}
		outcome = domain.DepositStatusRefunded
	}

	ok, err := s.rentalRepo.ResolveClaim(ctx, rentalID, outcome, notes, paymentRef, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if !ok {
		logger.Error("Deposit moved but resolve lost the race, needs reconciliation",
			"rental_id", rentalID, "outcome", outcome, "payment_ref", paymentRef)
		return nil, fmt.Errorf("%w: deposit is no longer claimed", domain.ErrPreconditionFailed)
	}

	renter, _ := s.userRepo.GetByID(ctx, rt.RenterID)
	owner, _ := s.userRepo.GetByID(ctx, rt.OwnerID)
	tool, _ := s.toolRepo.GetByID(ctx, rt.ToolID)
	if renter != nil && owner != nil && tool != nil {
		_ = s.emailSvc.SendDepositResolutionNotification(ctx, renter.Email, tool.Name, string(outcome))
		_ = s.emailSvc.SendDepositResolutionNotification(ctx, owner.Email, tool.Name, string(outcome))
	}

	return s.rentalRepo.GetByID(ctx, rentalID)
}

// ReleaseExpiredDeposits refunds deposits whose claim window lapsed without
// a claim. Driven by the scheduler; also invoked lazily from GetRental.
func (s *rentalService) ReleaseExpiredDeposits(ctx context.Context, now time.Time) (int, error) {
	expired, err := s.rentalRepo.ListExpiredDeposits(ctx, now)
	if err != nil {
		return 0, err
	}

	released := 0
	for i := range expired {
		rt := &expired[i]
		if err := s.releaseDeposit(ctx, rt, now); err != nil {
			logger.Error("Failed to release deposit", "rental_id", rt.ID, "error", err)
			continue
		}
		released++
	}
	return released, nil
}

func (s *rentalService) releaseDeposit(ctx context.Context, rt *domain.Rental, now time.Time) error {
	refundRef, err := s.payments.Refund(ctx, rt.PaymentIntentRef, "claim window lapsed", rt.DepositCents)
	if err != nil {
		return err
	}

	ok, err := s.rentalRepo.ReleaseDeposit(ctx, rt.ID, refundRef, now)
	if err != nil {
		return err
	}
	if !ok {
		// A claim slipped in between the sweep's read and this write.
		logger.Error("Deposit refund issued but release lost the race, needs reconciliation",
			"rental_id", rt.ID, "refund_ref", refundRef)
		return fmt.Errorf("%w: deposit no longer pending release", domain.ErrPreconditionFailed)
	}

	renter, _ := s.userRepo.GetByID(ctx, rt.RenterID)
	tool, _ := s.toolRepo.GetByID(ctx, rt.ToolID)
	if renter != nil && tool != nil {
		_ = s.emailSvc.SendDepositReleasedNotification(ctx, renter.Email, tool.Name)
	}
	logger.Info("Deposit released", "rental_id", rt.ID, "deposit_cents", rt.DepositCents)
	return nil
}

func (s *rentalService) GetRental(ctx context.Context, userID, rentalID int32) (*domain.Rental, error) {
	rt, err := s.rentalRepo.GetByID(ctx, rentalID)
	if err != nil {
		return nil, err
	}
	if rt.RenterID != userID && rt.OwnerID != userID {
		return nil, fmt.Errorf("%w: not a party to this rental", domain.ErrAuthorizationDenied)
	}

	// Lazy claim-window check so a read observes the release even between
	// sweep runs.
	now := time.Now().UTC()
	if rt.DepositStatus == domain.DepositStatusPendingRelease &&
		rt.ClaimWindowEndsOn != nil && rt.ClaimWindowEndsOn.Before(now) {
		if err := s.releaseDeposit(ctx, rt, now); err != nil && !errors.Is(err, domain.ErrPreconditionFailed) {
			logger.Error("Lazy deposit release failed", "rental_id", rt.ID, "error", err)
		} else {
			return s.rentalRepo.GetByID(ctx, rentalID)
		}
	}
	return rt, nil
}

func (s *rentalService) ListRentals(ctx context.Context, renterID int32, status string, page, pageSize int32) ([]domain.Rental, int32, error) {
	return s.rentalRepo.ListByRenter(ctx, renterID, status, page, pageSize)
}

func (s *rentalService) ListLendings(ctx context.Context, ownerID int32, status string, page, pageSize int32) ([]domain.Rental, int32, error) {
	return s.rentalRepo.ListByOwner(ctx, ownerID, status, page, pageSize)
}
