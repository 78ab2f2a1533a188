package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestDaysActive(t *testing.T) {
	effective := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 0, DaysActive(effective, effective))
	assert.Equal(t, 45, DaysActive(effective, effective.AddDate(0, 0, 45)))

	// A lapse recorded before the effective date clamps to zero.
	assert.Equal(t, 0, DaysActive(effective, effective.AddDate(0, 0, -3)))
}

func TestClawbackInsideGraceWindow(t *testing.T) {
	original := decimal.RequireFromString("562.50")

	amount, early := Clawback(original, 10)
	assert.True(t, early)
	assert.Equal(t, "562.5", amount.String())

	// Day 30 is still inside the window.
	amount, early = Clawback(original, GraceDays)
	assert.True(t, early)
	assert.Equal(t, "562.5", amount.String())
}

func TestClawbackVestingTaper(t *testing.T) {
	original := decimal.RequireFromString("562.50")

	// 45 days is one vested month: (562.50 / 9) * 8 = 500.00.
	amount, early := Clawback(original, 45)
	assert.False(t, early)
	assert.Equal(t, "500", amount.String())

	// 100 days is three vested months: (562.50 / 9) * 6 = 375.00.
	amount, early = Clawback(original, 100)
	assert.False(t, early)
	assert.Equal(t, "375", amount.String())
}

func TestClawbackFullyVested(t *testing.T) {
	original := decimal.RequireFromString("900.00")

	amount, early := Clawback(original, 270)
	assert.False(t, early)
	assert.True(t, amount.IsZero())

	amount, _ = Clawback(original, 4000)
	assert.True(t, amount.IsZero())
}

func TestClawbackMonotonicDecrease(t *testing.T) {
	original := decimal.RequireFromString("812.33")

	previous := original.Add(decimal.NewFromInt(1))
	for days := 0; days <= 300; days += 5 {
		amount, _ := Clawback(original, days)
		if amount.GreaterThan(previous) {
			t.Fatalf("debt grew from %s to %s at day %d", previous.String(), amount.String(), days)
		}
		previous = amount
	}
}
