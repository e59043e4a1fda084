package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDurationDays(t *testing.T) {
	start, _ := ParseDate("2099-01-01")
	end, _ := ParseDate("2099-01-20")
	assert.Equal(t, int32(19), DurationDays(start, end))

	end, _ = ParseDate("2099-02-05")
	assert.Equal(t, int32(35), DurationDays(start, end))
}

func TestValidateRentalDates(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

	t.Run("NineteenDaysOK", func(t *testing.T) {
		start, _ := ParseDate("2099-01-01")
		end, _ := ParseDate("2099-01-20")
		assert.NoError(t, ValidateRentalDates(start, end, now, 30))
	})

	t.Run("ThirtyFiveDaysRejected", func(t *testing.T) {
		start, _ := ParseDate("2099-01-01")
		end, _ := ParseDate("2099-02-05")
		err := ValidateRentalDates(start, end, now, 30)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "exceeds 30 days")
	})

	t.Run("PastStartRejected", func(t *testing.T) {
		start, _ := ParseDate("2026-08-31")
		end, _ := ParseDate("2026-09-10")
		assert.Error(t, ValidateRentalDates(start, end, now, 30))
	})

	t.Run("TodayStartRejected", func(t *testing.T) {
		start, _ := ParseDate("2026-09-01")
		end, _ := ParseDate("2026-09-10")
		assert.Error(t, ValidateRentalDates(start, end, now, 30))
	})

	t.Run("EndNotAfterStartRejected", func(t *testing.T) {
		start, _ := ParseDate("2099-01-10")
		end, _ := ParseDate("2099-01-10")
		assert.Error(t, ValidateRentalDates(start, end, now, 30))
	})
}

func TestCalculateRentalCost(t *testing.T) {
	assert.Equal(t, int32(19000), CalculateRentalCost(1000, 19))
	assert.Equal(t, int32(0), CalculateRentalCost(1000, 0))
}

func TestParseDate_Invalid(t *testing.T) {
	_, err := ParseDate("01/02/2099")
	assert.Error(t, err)
}
