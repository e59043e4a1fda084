package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"toolpool-backend/internal/domain"
	"toolpool-backend/internal/repository"
)

type rentalRepository struct {
	db *sql.DB
}

func NewRentalRepository(db *sql.DB) repository.RentalRepository {
	return &rentalRepository{db: db}
}

const rentalColumns = `id, tool_id, renter_id, owner_id, start_date, end_date, duration_days,
	daily_rate_cents, rental_cost_cents, deposit_cents, total_cost_cents,
	status, deposit_status, payment_intent_ref, refund_ref, transfer_ref, deposit_refund_ref,
	transfer_failed, overdue, rejection_reason, claim_reason, admin_notes, claim_window_ends_on,
	paid_on, accepted_on, rejected_on, returned_on, claimed_on, released_on, resolved_on,
	created_on, updated_on`

func (r *rentalRepository) Create(ctx context.Context, rt *domain.Rental) error {
	query := `INSERT INTO rentals (tool_id, renter_id, owner_id, start_date, end_date, duration_days,
	          daily_rate_cents, rental_cost_cents, deposit_cents, total_cost_cents,
	          status, deposit_status, payment_intent_ref, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15) RETURNING id`
	return r.db.QueryRowContext(ctx, query, rt.ToolID, rt.RenterID, rt.OwnerID,
		rt.StartDate, rt.EndDate, rt.DurationDays,
		rt.DailyRateCents, rt.RentalCostCents, rt.DepositCents, rt.TotalCostCents,
		rt.Status, rt.DepositStatus, rt.PaymentIntentRef, time.Now(), time.Now()).Scan(&rt.ID)
}

func scanRental(s interface{ Scan(...any) error }) (*domain.Rental, error) {
	rt := &domain.Rental{}
	err := s.Scan(&rt.ID, &rt.ToolID, &rt.RenterID, &rt.OwnerID, &rt.StartDate, &rt.EndDate, &rt.DurationDays,
		&rt.DailyRateCents, &rt.RentalCostCents, &rt.DepositCents, &rt.TotalCostCents,
		&rt.Status, &rt.DepositStatus, &rt.PaymentIntentRef, &rt.RefundRef, &rt.TransferRef, &rt.DepositRefundRef,
		&rt.TransferFailed, &rt.Overdue, &rt.RejectionReason, &rt.ClaimReason, &rt.AdminNotes, &rt.ClaimWindowEndsOn,
		&rt.PaidOn, &rt.AcceptedOn, &rt.RejectedOn, &rt.ReturnedOn, &rt.ClaimedOn, &rt.ReleasedOn, &rt.ResolvedOn,
		&rt.CreatedOn, &rt.UpdatedOn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return rt, nil
}

func (r *rentalRepository) GetByID(ctx context.Context, id int32) (*domain.Rental, error) {
	query := `SELECT ` + rentalColumns + ` FROM rentals WHERE id = $1`
	return scanRental(r.db.QueryRowContext(ctx, query, id))
}

func (r *rentalRepository) GetByPaymentRef(ctx context.Context, paymentRef string) (*domain.Rental, error) {
	query := `SELECT ` + rentalColumns + ` FROM rentals WHERE payment_intent_ref = $1`
	return scanRental(r.db.QueryRowContext(ctx, query, paymentRef))
}

// condExec runs a conditional update and reports whether a row matched.
func (r *rentalRepository) condExec(ctx context.Context, query string, args ...any) (bool, error) {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *rentalRepository) MarkPaid(ctx context.Context, id int32, paidOn time.Time) (bool, error) {
	query := `UPDATE rentals SET status=$1, deposit_status=$2, paid_on=$3, updated_on=$3
	          WHERE id=$4 AND status=$5 AND deposit_status=$6`
	return r.condExec(ctx, query, domain.RentalStatusPendingApproval, domain.DepositStatusHeld,
		paidOn, id, domain.RentalStatusPendingPayment, domain.DepositStatusNone)
}

func (r *rentalRepository) Accept(ctx context.Context, id int32, acceptedOn time.Time) (bool, error) {
	query := `UPDATE rentals SET status=$1, accepted_on=$2, updated_on=$2
	          WHERE id=$3 AND status=$4`
	return r.condExec(ctx, query, domain.RentalStatusActive, acceptedOn,
		id, domain.RentalStatusPendingApproval)
}

func (r *rentalRepository) RecordTransferResult(ctx context.Context, id int32, transferRef string, failed bool) error {
	query := `UPDATE rentals SET transfer_ref=$1, transfer_failed=$2, updated_on=$3 WHERE id=$4`
	_, err := r.db.ExecContext(ctx, query, transferRef, failed, time.Now(), id)
	return err
}

func (r *rentalRepository) Reject(ctx context.Context, id int32, reason, refundRef string, rejectedOn time.Time) (bool, error) {
	query := `UPDATE rentals SET status=$1, rejection_reason=$2, refund_ref=$3, deposit_status=$4, rejected_on=$5, updated_on=$5
	          WHERE id=$6 AND status=$7`
	return r.condExec(ctx, query, domain.RentalStatusRejected, reason, refundRef,
		domain.DepositStatusRefunded, rejectedOn, id, domain.RentalStatusPendingApproval)
}

func (r *rentalRepository) MarkReturned(ctx context.Context, id int32, returnedOn, claimWindowEndsOn time.Time) (bool, error) {
	query := `UPDATE rentals SET status=$1, deposit_status=$2, returned_on=$3, claim_window_ends_on=$4, updated_on=$3
	          WHERE id=$5 AND status=$6 AND deposit_status=$7`
	return r.condExec(ctx, query, domain.RentalStatusCompleted, domain.DepositStatusPendingRelease,
		returnedOn, claimWindowEndsOn, id, domain.RentalStatusActive, domain.DepositStatusHeld)
}

func (r *rentalRepository) FileClaim(ctx context.Context, id int32, reason string, claimedOn time.Time) (bool, error) {
	query := `UPDATE rentals SET deposit_status=$1, claim_reason=$2, claimed_on=$3, updated_on=$3
	          WHERE id=$4 AND deposit_status=$5 AND claim_window_ends_on >= $3`
	return r.condExec(ctx, query, domain.DepositStatusClaimed, reason, claimedOn,
		id, domain.DepositStatusPendingRelease)
}

func (r *rentalRepository) ResolveClaim(ctx context.Context, id int32, outcome domain.DepositStatus, adminNotes, paymentRef string, resolvedOn time.Time) (bool, error) {
	if outcome != domain.DepositStatusForfeited && outcome != domain.DepositStatusRefunded {
		return false, fmt.Errorf("invalid claim outcome %q", outcome)
	}
	var query string
	if outcome == domain.DepositStatusForfeited {
		query = `UPDATE rentals SET deposit_status=$1, admin_notes=$2, transfer_ref=$3, resolved_on=$4, updated_on=$4
		         WHERE id=$5 AND deposit_status=$6`
	} else {
		query = `UPDATE rentals SET deposit_status=$1, admin_notes=$2, deposit_refund_ref=$3, resolved_on=$4, updated_on=$4
		         WHERE id=$5 AND deposit_status=$6`
	}
	return r.condExec(ctx, query, outcome, adminNotes, paymentRef, resolvedOn,
		id, domain.DepositStatusClaimed)
}

func (r *rentalRepository) ReleaseDeposit(ctx context.Context, id int32, refundRef string, releasedOn time.Time) (bool, error) {
	query := `UPDATE rentals SET deposit_status=$1, deposit_refund_ref=$2, released_on=$3, updated_on=$3
	          WHERE id=$4 AND deposit_status=$5 AND claim_window_ends_on < $3`
	return r.condExec(ctx, query, domain.DepositStatusReleased, refundRef, releasedOn,
		id, domain.DepositStatusPendingRelease)
}

func (r *rentalRepository) ListExpiredDeposits(ctx context.Context, now time.Time) ([]domain.Rental, error) {
	query := `SELECT ` + rentalColumns + ` FROM rentals
	          WHERE deposit_status = $1 AND claim_window_ends_on < $2 ORDER BY claim_window_ends_on`
	rows, err := r.db.QueryContext(ctx, query, domain.DepositStatusPendingRelease, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rentals []domain.Rental
	for rows.Next() {
		rt, err := scanRental(rows)
		if err != nil {
			return nil, err
		}
		rentals = append(rentals, *rt)
	}
	return rentals, rows.Err()
}

func (r *rentalRepository) ListByRenter(ctx context.Context, renterID int32, status string, page, pageSize int32) ([]domain.Rental, int32, error) {
	return r.list(ctx, "renter_id", renterID, status, page, pageSize)
}

func (r *rentalRepository) ListByOwner(ctx context.Context, ownerID int32, status string, page, pageSize int32) ([]domain.Rental, int32, error) {
	return r.list(ctx, "owner_id", ownerID, status, page, pageSize)
}

func (r *rentalRepository) list(ctx context.Context, partyColumn string, partyID int32, status string, page, pageSize int32) ([]domain.Rental, int32, error) {
	offset := (page - 1) * pageSize
	sqlStr := `SELECT ` + rentalColumns + ` FROM rentals WHERE ` + partyColumn + ` = $1`

	args := []interface{}{partyID}
	argIdx := 2
	if status != "" {
		sqlStr += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, status)
		argIdx++
	}

	var count int32
	countSQL := "SELECT count(*) FROM (" + sqlStr + ") as sub"
	if err := r.db.QueryRowContext(ctx, countSQL, args...).Scan(&count); err != nil {
		return nil, 0, err
	}

	sqlStr += fmt.Sprintf(" ORDER BY created_on DESC LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, pageSize, offset)

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var rentals []domain.Rental
	for rows.Next() {
		rt, err := scanRental(rows)
		if err != nil {
			return nil, 0, err
		}
		rentals = append(rentals, *rt)
	}
	return rentals, count, rows.Err()
}
