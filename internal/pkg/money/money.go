// Package money implements monetary arithmetic on minor currency units
// (paise). Amounts are plain int64 paise; any step that can produce a
// fraction (percentages, division) goes through decimal and is rounded to a
// whole paisa immediately, never deferred.
package money

import "github.com/shopspring/decimal"

// Amount is a monetary value in paise.
type Amount int64

var hundred = decimal.NewFromInt(100)

// FromRupees converts whole rupees to paise.
func FromRupees(r int64) Amount {
	return Amount(r * 100)
}

// Percent applies a percentage rate to base and rounds to the nearest paisa
// (half away from zero).
func Percent(base Amount, ratePct decimal.Decimal) Amount {
	d := decimal.NewFromInt(int64(base)).Mul(ratePct).Div(hundred)
	return Amount(d.Round(0).IntPart())
}

// DivRound divides a by n, rounding to the nearest paisa.
func DivRound(a Amount, n int64) Amount {
	d := decimal.NewFromInt(int64(a)).Div(decimal.NewFromInt(n))
	return Amount(d.Round(0).IntPart())
}

func Min(a, b Amount) Amount {
	if a < b {
		return a
	}
	return b
}

// Rupees returns the amount as a decimal rupee value, for display only.
func (a Amount) Rupees() decimal.Decimal {
	return decimal.NewFromInt(int64(a)).Div(hundred)
}
