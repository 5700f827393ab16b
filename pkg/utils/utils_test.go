package utils

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestRepaidAmount(t *testing.T) {
	tests := []struct {
		name      string
		initial   string
		remaining string
		want      string
	}{
		{"nothing repaid", "1000", "1000", "0"},
		{"partially repaid", "1000", "300", "700"},
		{"fully repaid", "1000", "0", "1000"},
		{"rounds to two places", "100.555", "0.001", "100.55"},
		{"overpaid goes negative", "100", "150", "-50"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			initial, _ := decimal.NewFromString(tt.initial)
			remaining, _ := decimal.NewFromString(tt.remaining)
			want, _ := decimal.NewFromString(tt.want)
			assert.True(t, RepaidAmount(initial, remaining).Equal(want))
		})
	}
}

func TestStatusForRemaining(t *testing.T) {
	assert.Equal(t, "Unpaid", StatusForRemaining(decimal.NewFromInt(1)))
	assert.Equal(t, "Unpaid", StatusForRemaining(decimal.NewFromFloat(0.01)))
	assert.Equal(t, "Cleared", StatusForRemaining(decimal.Zero))
	assert.Equal(t, "Cleared", StatusForRemaining(decimal.NewFromInt(-5)))
}

func TestReminderDue(t *testing.T) {
	now := time.Now()
	interval := 168 * time.Hour

	assert.True(t, ReminderDue(nil, interval, now))

	stale := now.Add(-200 * time.Hour)
	assert.True(t, ReminderDue(&stale, interval, now))

	exact := now.Add(-interval)
	assert.True(t, ReminderDue(&exact, interval, now))

	recent := now.Add(-time.Hour)
	assert.False(t, ReminderDue(&recent, interval, now))
}

func TestDecimalFromString(t *testing.T) {
	d, err := DecimalFromString("123.45")
	assert.NoError(t, err)
	assert.True(t, d.Equal(decimal.NewFromFloat(123.45)))

	_, err = DecimalFromString("not-a-number")
	assert.Error(t, err)
}
