package statutory

import (
	"sort"

	"github.com/opspay/payroll-backend-go/internal/pkg/money"
)

// PTSlab maps a gross salary band to a flat monthly tax. GrossUpTo == 0
// marks the open-ended top band.
type PTSlab struct {
	GrossUpTo money.Amount
	Tax       money.Amount
}

// TaxTables holds per-region professional tax slabs. Regional rates change
// independently of code releases, so the tables are data: construct with
// DefaultTaxTables and override regions as notifications land.
type TaxTables struct {
	regions map[string][]PTSlab
}

func NewTaxTables(regions map[string][]PTSlab) TaxTables {
	normalized := make(map[string][]PTSlab, len(regions))
	for region, slabs := range regions {
		s := make([]PTSlab, len(slabs))
		copy(s, slabs)
		// Keep bounded slabs ordered, open-ended band last.
		sort.SliceStable(s, func(i, j int) bool {
			if s[i].GrossUpTo == 0 {
				return false
			}
			if s[j].GrossUpTo == 0 {
				return true
			}
			return s[i].GrossUpTo < s[j].GrossUpTo
		})
		normalized[region] = s
	}
	return TaxTables{regions: normalized}
}

// DefaultTaxTables returns the slab tables in force for the states this
// payroll currently serves.
func DefaultTaxTables() TaxTables {
	return NewTaxTables(map[string][]PTSlab{
		"KA": {
			{GrossUpTo: money.FromRupees(24999), Tax: 0},
			{GrossUpTo: 0, Tax: money.FromRupees(200)},
		},
		"MH": {
			{GrossUpTo: money.FromRupees(7500), Tax: 0},
			{GrossUpTo: money.FromRupees(10000), Tax: money.FromRupees(175)},
			{GrossUpTo: 0, Tax: money.FromRupees(200)},
		},
		"WB": {
			{GrossUpTo: money.FromRupees(10000), Tax: 0},
			{GrossUpTo: money.FromRupees(15000), Tax: money.FromRupees(110)},
			{GrossUpTo: money.FromRupees(25000), Tax: money.FromRupees(130)},
			{GrossUpTo: money.FromRupees(40000), Tax: money.FromRupees(150)},
			{GrossUpTo: 0, Tax: money.FromRupees(200)},
		},
		"TN": {
			{GrossUpTo: money.FromRupees(21000), Tax: 0},
			{GrossUpTo: money.FromRupees(30000), Tax: money.FromRupees(135)},
			{GrossUpTo: money.FromRupees(45000), Tax: money.FromRupees(315)},
			{GrossUpTo: money.FromRupees(60000), Tax: money.FromRupees(690)},
			{GrossUpTo: money.FromRupees(75000), Tax: money.FromRupees(1025)},
			{GrossUpTo: 0, Tax: money.FromRupees(1250)},
		},
	})
}

// PTResult distinguishes "no policy configured for this region" from a
// configured zero-tax band, so callers can log the former.
type PTResult struct {
	Configured bool
	Amount     money.Amount
}

// LookupProfessionalTax resolves the monthly professional tax for a region
// and gross salary. An unknown region is not an error.
func (t TaxTables) LookupProfessionalTax(region string, gross money.Amount) PTResult {
	slabs, ok := t.regions[region]
	if !ok || len(slabs) == 0 {
		return PTResult{Configured: false}
	}
	for _, slab := range slabs {
		if slab.GrossUpTo == 0 || gross <= slab.GrossUpTo {
			return PTResult{Configured: true, Amount: slab.Tax}
		}
	}
	// All bands bounded and gross above the last: the top band applies.
	return PTResult{Configured: true, Amount: slabs[len(slabs)-1].Tax}
}
