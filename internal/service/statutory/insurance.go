package statutory

import (
	"github.com/opspay/payroll-backend-go/internal/pkg/money"
	"github.com/shopspring/decimal"
)

// ESI applies only while monthly gross stays at or under the ceiling.
var esiGrossCeiling = money.FromRupees(21000)

var (
	esiEmployeeRate = decimal.RequireFromString("0.75")
	esiEmployerRate = decimal.RequireFromString("3.25")
)

// ESIContribution is the employee state insurance breakdown. Applicable is
// a hard gate: callers must not read zero contributions as "applicable at
// 0%".
type ESIContribution struct {
	Applicable bool
	Employee   money.Amount
	Employer   money.Amount
}

// CalculateInsurance computes ESI contributions on post-LOP gross salary.
// Gross exactly at the ceiling is still applicable; one paisa above is not.
func CalculateInsurance(gross money.Amount) ESIContribution {
	if gross > esiGrossCeiling {
		return ESIContribution{Applicable: false}
	}
	return ESIContribution{
		Applicable: true,
		Employee:   money.Percent(gross, esiEmployeeRate),
		Employer:   money.Percent(gross, esiEmployerRate),
	}
}
