package loan

import (
	"testing"

	domain "github.com/opspay/payroll-backend-go/internal/domain/loan"
	"github.com/opspay/payroll-backend-go/internal/pkg/money"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateEMI(t *testing.T) {
	// 100,000 at 12% over 12 months: the textbook annuity comes to 8,884.88,
	// which rounds to 888,488 paise.
	emi, err := CalculateEMI(money.FromRupees(100000), decimal.NewFromInt(12), 12)
	require.NoError(t, err)
	assert.Equal(t, money.Amount(888488), emi)
}

func TestCalculateEMI_ZeroRate(t *testing.T) {
	emi, err := CalculateEMI(money.Amount(1000000), decimal.Zero, 3)
	require.NoError(t, err)
	assert.Equal(t, money.Amount(333333), emi)
}

func TestCalculateEMI_InvalidInput(t *testing.T) {
	_, err := CalculateEMI(0, decimal.NewFromInt(12), 12)
	assert.ErrorIs(t, err, domain.ErrInvalidPrincipal)

	_, err = CalculateEMI(-1, decimal.NewFromInt(12), 12)
	assert.ErrorIs(t, err, domain.ErrInvalidPrincipal)

	_, err = CalculateEMI(money.FromRupees(100000), decimal.NewFromInt(12), 0)
	assert.ErrorIs(t, err, domain.ErrInvalidTenure)
}

func TestGenerateSchedule_PrincipalSumsExactly(t *testing.T) {
	principal := money.FromRupees(100000)
	schedule, err := GenerateSchedule(principal, decimal.NewFromInt(12), 12)
	require.NoError(t, err)
	require.Len(t, schedule, 12)

	var principalSum money.Amount
	for _, inst := range schedule {
		principalSum += inst.Principal
		assert.Equal(t, inst.Interest+inst.Principal, inst.EMI)
	}
	assert.Equal(t, principal, principalSum)
	assert.Equal(t, money.Amount(0), schedule[len(schedule)-1].Balance)
}

func TestGenerateSchedule_FinalInstallmentAbsorbsDrift(t *testing.T) {
	schedule, err := GenerateSchedule(money.FromRupees(100000), decimal.NewFromInt(12), 12)
	require.NoError(t, err)

	// Every installment but the last carries the fixed EMI; the last one
	// clears whatever balance the rounding left.
	for _, inst := range schedule[:len(schedule)-1] {
		assert.Equal(t, money.Amount(888488), inst.EMI)
	}
	last := schedule[len(schedule)-1]
	assert.Equal(t, last.Principal+last.Interest, last.EMI)
	assert.Equal(t, money.Amount(0), last.Balance)
}

func TestGenerateSchedule_InterestDeclinesMonthly(t *testing.T) {
	schedule, err := GenerateSchedule(money.FromRupees(100000), decimal.NewFromInt(12), 12)
	require.NoError(t, err)

	// First month's interest is 1% of the full principal.
	assert.Equal(t, money.Amount(100000), schedule[0].Interest)
	for i := 1; i < len(schedule); i++ {
		assert.Less(t, int64(schedule[i].Interest), int64(schedule[i-1].Interest))
	}
}

func TestGenerateSchedule_ZeroRate(t *testing.T) {
	schedule, err := GenerateSchedule(money.Amount(1000000), decimal.Zero, 3)
	require.NoError(t, err)
	require.Len(t, schedule, 3)

	assert.Equal(t, money.Amount(333333), schedule[0].Principal)
	assert.Equal(t, money.Amount(333333), schedule[1].Principal)
	assert.Equal(t, money.Amount(333334), schedule[2].Principal)
	assert.Equal(t, money.Amount(0), TotalInterest(schedule))
	assert.Equal(t, money.Amount(0), schedule[2].Balance)
}

func TestGenerateSchedule_SingleMonth(t *testing.T) {
	schedule, err := GenerateSchedule(money.FromRupees(10000), decimal.NewFromInt(12), 1)
	require.NoError(t, err)
	require.Len(t, schedule, 1)

	// One month of interest at 1% on the full principal, plus the principal.
	assert.Equal(t, money.FromRupees(10000), schedule[0].Principal)
	assert.Equal(t, money.Amount(10000), schedule[0].Interest)
	assert.Equal(t, money.Amount(0), schedule[0].Balance)
}
