package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	// GraceDays is the chargeback window: a lapse at or inside it claws
	// back the full commission.
	GraceDays = 30

	// VestingMonths is the taper length after the grace window.
	VestingMonths = 9
)

// DaysActive counts whole days a policy was in force, never negative.
func DaysActive(effectiveDate, lapseDate time.Time) int {
	days := int(lapseDate.Sub(effectiveDate).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// Clawback applies the vesting curve to an original commission amount.
// Inside the grace window the full amount is owed; after it the debt
// tapers linearly to zero over nine 30-day months.
func Clawback(originalCommission decimal.Decimal, daysActive int) (decimal.Decimal, bool) {
	if daysActive <= GraceDays {
		return originalCommission.Round(2), true
	}

	monthsActive := daysActive / 30
	if monthsActive > VestingMonths {
		monthsActive = VestingMonths
	}
	remaining := VestingMonths - monthsActive
	if remaining <= 0 {
		return decimal.Zero, false
	}

	perMonth := originalCommission.Div(decimal.NewFromInt(VestingMonths))
	return perMonth.Mul(decimal.NewFromInt(int64(remaining))).Round(2), false
}
