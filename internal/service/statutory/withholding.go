package statutory

import (
	"fmt"

	"github.com/opspay/payroll-backend-go/internal/pkg/money"
	"github.com/shopspring/decimal"
)

// Regime selects the withholding slab set.
type Regime string

const (
	RegimeOld Regime = "OLD"
	RegimeNew Regime = "NEW"
)

// WHSlab is one progressive marginal-rate band. UpTo == 0 marks the
// open-ended top band.
type WHSlab struct {
	UpTo    money.Amount
	RatePct decimal.Decimal
}

type regimePolicy struct {
	standardDeduction money.Amount
	slabs             []WHSlab
	rebateThreshold   money.Amount
	rebateCap         money.Amount
}

var cessRate = decimal.NewFromInt(4)

var regimePolicies = map[Regime]regimePolicy{
	RegimeOld: {
		standardDeduction: money.FromRupees(50000),
		slabs: []WHSlab{
			{UpTo: money.FromRupees(250000), RatePct: decimal.Zero},
			{UpTo: money.FromRupees(500000), RatePct: decimal.NewFromInt(5)},
			{UpTo: money.FromRupees(1000000), RatePct: decimal.NewFromInt(20)},
			{UpTo: 0, RatePct: decimal.NewFromInt(30)},
		},
		rebateThreshold: money.FromRupees(500000),
		rebateCap:       money.FromRupees(12500),
	},
	RegimeNew: {
		standardDeduction: 0,
		slabs: []WHSlab{
			{UpTo: money.FromRupees(300000), RatePct: decimal.Zero},
			{UpTo: money.FromRupees(600000), RatePct: decimal.NewFromInt(5)},
			{UpTo: money.FromRupees(900000), RatePct: decimal.NewFromInt(10)},
			{UpTo: money.FromRupees(1200000), RatePct: decimal.NewFromInt(15)},
			{UpTo: money.FromRupees(1500000), RatePct: decimal.NewFromInt(20)},
			{UpTo: 0, RatePct: decimal.NewFromInt(30)},
		},
		rebateThreshold: money.FromRupees(700000),
		rebateCap:       money.FromRupees(25000),
	},
}

// WithholdingResult breaks down the monthly withholding projection.
type WithholdingResult struct {
	AnnualizedIncome money.Amount
	TaxableIncome    money.Amount
	AnnualTax        money.Amount // after rebate, before cess
	Rebate           money.Amount
	Cess             money.Amount
	Monthly          money.Amount
}

// MonthlyWithholding projects this month's gross to an annual income,
// applies the regime's marginal slabs, threshold rebate and cess, and
// spreads the liability over the months remaining in the fiscal year.
// It is meant to be re-evaluated every month as actual income emerges,
// not computed once annually.
func MonthlyWithholding(monthlyGross money.Amount, regime Regime, monthsRemaining int) (WithholdingResult, error) {
	policy, ok := regimePolicies[regime]
	if !ok {
		return WithholdingResult{}, fmt.Errorf("unknown tax regime %q", regime)
	}
	if monthsRemaining < 1 || monthsRemaining > 12 {
		return WithholdingResult{}, fmt.Errorf("months remaining must be within 1..12, got %d", monthsRemaining)
	}

	annual := monthlyGross * 12
	taxable := annual - policy.standardDeduction
	if taxable < 0 {
		taxable = 0
	}

	tax := marginalTax(taxable, policy.slabs)

	var rebate money.Amount
	if taxable <= policy.rebateThreshold {
		rebate = money.Min(tax, policy.rebateCap)
		tax -= rebate
	}

	cess := money.Percent(tax, cessRate)
	total := tax + cess

	return WithholdingResult{
		AnnualizedIncome: annual,
		TaxableIncome:    taxable,
		AnnualTax:        tax,
		Rebate:           rebate,
		Cess:             cess,
		Monthly:          money.DivRound(total, int64(monthsRemaining)),
	}, nil
}

// marginalTax walks the progressive bands, taxing only the slice of income
// inside each band. Each band's tax rounds independently.
func marginalTax(taxable money.Amount, slabs []WHSlab) money.Amount {
	var total money.Amount
	var lower money.Amount
	for _, slab := range slabs {
		if taxable <= lower {
			break
		}
		upper := slab.UpTo
		if upper == 0 || taxable < upper {
			upper = taxable
		}
		total += money.Percent(upper-lower, slab.RatePct)
		lower = slab.UpTo
		if lower == 0 {
			break
		}
	}
	return total
}
