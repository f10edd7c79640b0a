package statutory

import (
	"testing"

	"github.com/opspay/payroll-backend-go/internal/pkg/money"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonthlyWithholding_NewRegimeRebateZeroesTax(t *testing.T) {
	// 50,000/month annualizes to 600,000, inside the 700,000 rebate window.
	got, err := MonthlyWithholding(money.FromRupees(50000), RegimeNew, 12)
	require.NoError(t, err)

	assert.Equal(t, money.FromRupees(600000), got.AnnualizedIncome)
	assert.Equal(t, money.FromRupees(600000), got.TaxableIncome)
	assert.Equal(t, money.FromRupees(15000), got.Rebate)
	assert.Equal(t, money.Amount(0), got.AnnualTax)
	assert.Equal(t, money.Amount(0), got.Cess)
	assert.Equal(t, money.Amount(0), got.Monthly)
}

func TestMonthlyWithholding_NewRegimeMarginalBands(t *testing.T) {
	// 100,000/month: annual 1,200,000, tax 15,000 + 30,000 + 45,000 = 90,000.
	got, err := MonthlyWithholding(money.FromRupees(100000), RegimeNew, 12)
	require.NoError(t, err)

	assert.Equal(t, money.FromRupees(90000), got.AnnualTax)
	assert.Equal(t, money.Amount(0), got.Rebate)
	assert.Equal(t, money.FromRupees(3600), got.Cess)
	assert.Equal(t, money.FromRupees(7800), got.Monthly)
}

func TestMonthlyWithholding_OldRegimeStandardDeduction(t *testing.T) {
	// 100,000/month: annual 1,200,000, taxable 1,150,000 after the 50,000
	// standard deduction. Tax 12,500 + 100,000 + 45,000 = 157,500.
	got, err := MonthlyWithholding(money.FromRupees(100000), RegimeOld, 12)
	require.NoError(t, err)

	assert.Equal(t, money.FromRupees(1150000), got.TaxableIncome)
	assert.Equal(t, money.FromRupees(157500), got.AnnualTax)
	assert.Equal(t, money.FromRupees(6300), got.Cess)
	assert.Equal(t, money.FromRupees(13650), got.Monthly)
}

func TestMonthlyWithholding_OldRegimeRebate(t *testing.T) {
	// Taxable 490,000 is under the 500,000 threshold: 12,000 tax, fully
	// rebated.
	got, err := MonthlyWithholding(money.FromRupees(45000), RegimeOld, 12)
	require.NoError(t, err)

	assert.Equal(t, money.FromRupees(490000), got.TaxableIncome)
	assert.Equal(t, money.FromRupees(12000), got.Rebate)
	assert.Equal(t, money.Amount(0), got.Monthly)
}

func TestMonthlyWithholding_SpreadsOverMonthsRemaining(t *testing.T) {
	full, err := MonthlyWithholding(money.FromRupees(100000), RegimeNew, 12)
	require.NoError(t, err)

	half, err := MonthlyWithholding(money.FromRupees(100000), RegimeNew, 6)
	require.NoError(t, err)

	assert.Equal(t, full.AnnualTax, half.AnnualTax)
	assert.Equal(t, money.FromRupees(15600), half.Monthly)

	jan, err := MonthlyWithholding(money.FromRupees(100000), RegimeNew, 1)
	require.NoError(t, err)
	assert.Equal(t, full.AnnualTax+full.Cess, jan.Monthly)
}

func TestMonthlyWithholding_InvalidInput(t *testing.T) {
	_, err := MonthlyWithholding(money.FromRupees(50000), Regime("FLAT"), 12)
	assert.Error(t, err)

	_, err = MonthlyWithholding(money.FromRupees(50000), RegimeNew, 0)
	assert.Error(t, err)

	_, err = MonthlyWithholding(money.FromRupees(50000), RegimeNew, 13)
	assert.Error(t, err)
}

func TestMonthlyWithholding_ZeroIncome(t *testing.T) {
	got, err := MonthlyWithholding(0, RegimeOld, 12)
	require.NoError(t, err)

	assert.Equal(t, money.Amount(0), got.TaxableIncome)
	assert.Equal(t, money.Amount(0), got.Monthly)
}
