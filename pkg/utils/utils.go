package utils

import (
	"time"

	"github.com/shopspring/decimal"
)

// RepaidAmount derives the repaid portion of a loan.
// Formula: initialAmount - remainingAmount. The remaining amount is not
// clamped to the initial amount, so a negative result is possible.
func RepaidAmount(initial, remaining decimal.Decimal) decimal.Decimal {
	return initial.Sub(remaining).Round(2)
}

// StatusForRemaining maps a remaining amount to the entry status:
// Cleared iff remaining <= 0, Unpaid otherwise.
func StatusForRemaining(remaining decimal.Decimal) string {
	if remaining.LessThanOrEqual(decimal.Zero) {
		return "Cleared"
	}
	return "Unpaid"
}

// ReminderDue reports whether a reminder should go out, given the time of the
// last notification (nil means never notified) and the minimum interval
// between reminders.
func ReminderDue(lastNotifiedAt *time.Time, interval time.Duration, now time.Time) bool {
	if lastNotifiedAt == nil {
		return true
	}
	return now.Sub(*lastNotifiedAt) >= interval
}

// DecimalFromFloat converts float64 to decimal.Decimal
func DecimalFromFloat(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

// DecimalFromString converts string to decimal.Decimal
func DecimalFromString(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(s)
}
