package jobs

import (
	"context"
	"time"

	"toolpool-backend/internal/logger"
)

// ReleaseExpiredDeposits refunds deposits whose claim window passed without a
// claim being filed.
func (jr *JobRunner) ReleaseExpiredDeposits() {
	jr.runWithRecovery("ReleaseExpiredDeposits", func() {
		ctx := context.Background()

		released, err := jr.services.Rental.ReleaseExpiredDeposits(ctx, time.Now().UTC())
		if err != nil {
			logger.Error("Failed to release expired deposits", "error", err)
			return
		}
		logger.Info("Released expired deposits", "count", released)
	})
}

// MarkOverdueRentals flags active rentals past their end date and reminds
// the renter to arrange the return. The rental stays ACTIVE; only the
// overdue marker is set, the state machine advances when the return is
// recorded.
func (jr *JobRunner) MarkOverdueRentals() {
	jr.runWithRecovery("MarkOverdueRentals", func() {
		ctx := context.Background()

		query := `
			WITH flagged AS (
				UPDATE rentals
				SET overdue = TRUE,
				    updated_on = NOW()
				WHERE status = 'ACTIVE'
				  AND overdue = FALSE
				  AND end_date < $1
				RETURNING id, renter_id, tool_id, end_date
			)
			SELECT f.id, f.end_date, u.email, t.name
			FROM flagged f
			JOIN users u ON u.id = f.renter_id
			JOIN tools t ON t.id = f.tool_id
		`

		rows, err := jr.db.QueryContext(ctx, query, time.Now().UTC().Format("2006-01-02"))
		if err != nil {
			logger.Error("Failed to mark overdue rentals", "error", err)
			return
		}
		defer rows.Close()

		count := 0
		for rows.Next() {
			var id int32
			var endDate, renterEmail, toolName string
			if err := rows.Scan(&id, &endDate, &renterEmail, &toolName); err != nil {
				logger.Error("Failed to scan overdue rental", "error", err)
				continue
			}
			count++
			if err := jr.services.Email.SendOverdueReminder(ctx, renterEmail, toolName, endDate); err != nil {
				logger.Error("Failed to send overdue reminder",
					"rental_id", id, "error", err)
			}
			logger.Debug("Marked rental as overdue",
				"rental_id", id, "end_date", endDate)
		}
		if err := rows.Err(); err != nil {
			logger.Error("Error iterating overdue rentals", "error", err)
			return
		}

		logger.Info("Marked rentals as overdue", "count", count)
	})
}

// CleanupRateLimiter evicts counters that have been idle long enough that
// their budget is fully refilled anyway.
func (jr *JobRunner) CleanupRateLimiter() {
	jr.runWithRecovery("CleanupRateLimiter", func() {
		if jr.limiter == nil {
			return
		}
		jr.limiter.Cleanup(10 * time.Minute)
	})
}
