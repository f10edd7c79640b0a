// Package loan implements the EMI and reducing-balance amortization
// engine. Interest accrues each month only on the outstanding balance; the
// final installment is overridden to zero the balance exactly, absorbing
// all accumulated rounding drift in one place.
package loan

import (
	"github.com/opspay/payroll-backend-go/internal/pkg/money"
	"github.com/shopspring/decimal"

	domain "github.com/opspay/payroll-backend-go/internal/domain/loan"
)

var (
	one           = decimal.NewFromInt(1)
	monthsPerYear = decimal.NewFromInt(12)
)

// CalculateEMI returns the fixed monthly installment for a reducing-balance
// loan. A zero rate is a distinct path: the annuity formula divides by zero
// there, so the EMI falls back to exact division of principal by tenure.
func CalculateEMI(principal money.Amount, annualRatePct decimal.Decimal, tenureMonths int) (money.Amount, error) {
	if principal <= 0 {
		return 0, domain.ErrInvalidPrincipal
	}
	if tenureMonths < 1 {
		return 0, domain.ErrInvalidTenure
	}
	if annualRatePct.IsZero() {
		return money.DivRound(principal, int64(tenureMonths)), nil
	}

	// EMI = P * r * (1+r)^n / ((1+r)^n - 1), r = monthly rate
	r := annualRatePct.Div(monthsPerYear).Div(decimal.NewFromInt(100))
	factor := one.Add(r).Pow(decimal.NewFromInt(int64(tenureMonths)))
	emi := decimal.NewFromInt(int64(principal)).Mul(r).Mul(factor).Div(factor.Sub(one))
	return money.Amount(emi.Round(0).IntPart()), nil
}

// Installment is one month of an amortization schedule.
type Installment struct {
	Month     int // 1-based
	EMI       money.Amount
	Interest  money.Amount
	Principal money.Amount
	Balance   money.Amount // outstanding after this installment
}

// GenerateSchedule produces the full reducing-balance schedule. By
// construction the principal components sum to the original principal and
// the final balance is exactly zero: the last installment's principal is
// overridden to the remaining balance and its EMI recomputed.
func GenerateSchedule(principal money.Amount, annualRatePct decimal.Decimal, tenureMonths int) ([]Installment, error) {
	emi, err := CalculateEMI(principal, annualRatePct, tenureMonths)
	if err != nil {
		return nil, err
	}

	monthlyRatePct := annualRatePct.Div(monthsPerYear)
	schedule := make([]Installment, 0, tenureMonths)
	balance := principal

	for month := 1; month <= tenureMonths; month++ {
		interest := money.Percent(balance, monthlyRatePct)
		principalComponent := emi - interest
		installmentEMI := emi

		if month == tenureMonths || principalComponent >= balance {
			// Final installment: absorb all rounding drift.
			principalComponent = balance
			installmentEMI = principalComponent + interest
		}

		balance -= principalComponent
		schedule = append(schedule, Installment{
			Month:     month,
			EMI:       installmentEMI,
			Interest:  interest,
			Principal: principalComponent,
			Balance:   balance,
		})

		if balance == 0 {
			break
		}
	}

	return schedule, nil
}

// TotalInterest sums the interest column of a schedule.
func TotalInterest(schedule []Installment) money.Amount {
	var total money.Amount
	for _, inst := range schedule {
		total += inst.Interest
	}
	return total
}
