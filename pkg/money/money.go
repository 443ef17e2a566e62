package money

import (
	"time"

	"github.com/shopspring/decimal"
)

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
	twelve  = decimal.NewFromInt(12)
)

// PeriodicPayment calculates the fixed payment of an amortizing loan.
// The nominal annual rate is a percentage (e.g. 12 means 12% per year) and is
// compounded monthly: i = rate / 100 / 12. With a zero rate the principal is
// split evenly across the term. The result is rounded to 2 decimal places,
// half away from zero. Callers guarantee periods > 0.
//
// All arithmetic stays in decimal so the compound factor never passes through
// binary floating point.
func PeriodicPayment(principal, annualRatePercent decimal.Decimal, periods int) decimal.Decimal {
	n := decimal.NewFromInt(int64(periods))

	rate := annualRatePercent.Div(hundred).Div(twelve)
	if rate.IsZero() {
		return principal.Div(n).Round(2)
	}

	// A = P * i * (1+i)^n / ((1+i)^n - 1)
	factor := one.Add(rate).Pow(n)
	payment := principal.Mul(rate).Mul(factor).Div(factor.Sub(one))

	return payment.Round(2)
}

// DueDate returns the due date of the k-th installment (1-indexed): k calendar
// months after the loan's request date.
func DueDate(requestDate time.Time, k int) time.Time {
	return requestDate.AddDate(0, k, 0)
}
