package money

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestPeriodicPayment(t *testing.T) {
	tests := []struct {
		name      string
		principal decimal.Decimal
		rate      decimal.Decimal
		periods   int
		expected  decimal.Decimal
	}{
		{
			name:      "zero rate splits principal evenly",
			principal: decimal.NewFromInt(1200),
			rate:      decimal.Zero,
			periods:   12,
			expected:  decimal.NewFromInt(100),
		},
		{
			name:      "single period at 12% annual",
			principal: decimal.NewFromInt(1000),
			rate:      decimal.NewFromInt(12),
			periods:   1,
			expected:  decimal.NewFromInt(1010), // 1000 * 0.01 * 1.01 / 0.01
		},
		{
			name:      "zero rate with uneven division rounds to cents",
			principal: decimal.NewFromInt(1000),
			rate:      decimal.Zero,
			periods:   3,
			expected:  decimal.RequireFromString("333.33"),
		},
		{
			name:      "12% annual over 12 months",
			principal: decimal.NewFromInt(1200),
			rate:      decimal.NewFromInt(12),
			periods:   12,
			expected:  decimal.RequireFromString("106.62"),
		},
		{
			name:      "two periods at 12% annual",
			principal: decimal.NewFromInt(1000),
			rate:      decimal.NewFromInt(12),
			periods:   2,
			expected:  decimal.RequireFromString("507.51"), // 1000 * 0.01 * 1.0201 / 0.0201
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := PeriodicPayment(tt.principal, tt.rate, tt.periods)
			assert.True(t, result.Equal(tt.expected),
				"expected %v, got %v", tt.expected, result)
		})
	}
}

func TestPeriodicPaymentIsAlwaysPositive(t *testing.T) {
	for _, periods := range []int{1, 6, 12, 60, 360} {
		for _, rate := range []string{"0", "0.5", "5", "12", "24.75", "100"} {
			payment := PeriodicPayment(
				decimal.RequireFromString("2500.00"),
				decimal.RequireFromString(rate),
				periods,
			)
			assert.True(t, payment.GreaterThan(decimal.Zero),
				"rate=%s periods=%d yielded %v", rate, periods, payment)
		}
	}
}

func TestDueDate(t *testing.T) {
	requestDate := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		k        int
		expected time.Time
	}{
		{1, time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)},
		{2, time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)},
		{12, time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, DueDate(requestDate, tt.k))
	}
}

func TestDueDatesStrictlyIncrease(t *testing.T) {
	requestDate := time.Date(2024, time.January, 31, 0, 0, 0, 0, time.UTC)

	prev := requestDate
	for k := 1; k <= 24; k++ {
		due := DueDate(requestDate, k)
		assert.True(t, due.After(prev), "installment %d due %v not after %v", k, due, prev)
		prev = due
	}
}
