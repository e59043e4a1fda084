package utils

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// ParseDate converts a yyyy-mm-dd formatted string into a UTC time.
func ParseDate(dateStr string) (time.Time, error) {
	t, err := time.Parse(dateLayout, dateStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected yyyy-mm-dd", dateStr)
	}
	return t, nil
}

// DurationDays returns the number of chargeable days between start and end.
// The end date is the return date and is not charged, so 01-01 to 01-20 is
// 19 days.
func DurationDays(start, end time.Time) int32 {
	return int32(end.Sub(start).Hours() / 24)
}

// ValidateRentalDates enforces the booking window rules: the range must lie
// strictly in the future, end must be after start, and the span must not
// exceed maxDays.
func ValidateRentalDates(start, end, now time.Time, maxDays int32) error {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if !start.After(today) {
		return fmt.Errorf("start date must be in the future")
	}
	if !end.After(start) {
		return fmt.Errorf("end date must be after start date")
	}
	if DurationDays(start, end) > maxDays {
		return fmt.Errorf("rental duration exceeds %d days", maxDays)
	}
	return nil
}

// CalculateRentalCost computes the rental portion of the charge from the
// daily rate snapshot.
func CalculateRentalCost(dailyRateCents, durationDays int32) int32 {
	return dailyRateCents * durationDays
}
