package statutory

import (
	"testing"

	"github.com/opspay/payroll-backend-go/internal/pkg/money"
	"github.com/stretchr/testify/assert"
)

func TestLookupProfessionalTax_KnownRegions(t *testing.T) {
	tables := DefaultTaxTables()

	tests := []struct {
		name   string
		region string
		gross  money.Amount
		want   money.Amount
	}{
		{"KA below threshold", "KA", money.FromRupees(20000), 0},
		{"KA above threshold", "KA", money.FromRupees(30000), money.FromRupees(200)},
		{"MH exempt band", "MH", money.FromRupees(7000), 0},
		{"MH middle band", "MH", money.FromRupees(8000), money.FromRupees(175)},
		{"MH top band", "MH", money.FromRupees(50000), money.FromRupees(200)},
		{"WB second band", "WB", money.FromRupees(12000), money.FromRupees(110)},
		{"TN fourth band", "TN", money.FromRupees(50000), money.FromRupees(690)},
		{"TN top band", "TN", money.FromRupees(100000), money.FromRupees(1250)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tables.LookupProfessionalTax(tt.region, tt.gross)
			assert.True(t, got.Configured)
			assert.Equal(t, tt.want, got.Amount)
		})
	}
}

func TestLookupProfessionalTax_UnconfiguredRegion(t *testing.T) {
	tables := DefaultTaxTables()

	got := tables.LookupProfessionalTax("DL", money.FromRupees(50000))

	// Not configured is distinct from a configured zero-tax band.
	assert.False(t, got.Configured)
	assert.Equal(t, money.Amount(0), got.Amount)
}

func TestLookupProfessionalTax_BandBoundaryIsInclusive(t *testing.T) {
	tables := DefaultTaxTables()

	atBoundary := tables.LookupProfessionalTax("MH", money.FromRupees(7500))
	assert.Equal(t, money.Amount(0), atBoundary.Amount)

	justAbove := tables.LookupProfessionalTax("MH", money.FromRupees(7500)+1)
	assert.Equal(t, money.FromRupees(175), justAbove.Amount)
}

func TestNewTaxTables_SortsSlabs(t *testing.T) {
	tables := NewTaxTables(map[string][]PTSlab{
		"XX": {
			{GrossUpTo: 0, Tax: money.FromRupees(300)},
			{GrossUpTo: money.FromRupees(20000), Tax: money.FromRupees(100)},
			{GrossUpTo: money.FromRupees(10000), Tax: 0},
		},
	})

	assert.Equal(t, money.Amount(0), tables.LookupProfessionalTax("XX", money.FromRupees(5000)).Amount)
	assert.Equal(t, money.FromRupees(100), tables.LookupProfessionalTax("XX", money.FromRupees(15000)).Amount)
	assert.Equal(t, money.FromRupees(300), tables.LookupProfessionalTax("XX", money.FromRupees(25000)).Amount)
}
