package employee

import (
	"context"
	"time"
)

type EmployeeRepository interface {
	GetByID(ctx context.Context, id string) (Employee, error)
	ListActive(ctx context.Context) ([]Employee, error)
}

type SalaryStructureRepository interface {
	Create(ctx context.Context, structure SalaryStructure) (SalaryStructure, error)

	// GetActiveForEmployee returns the single structure whose
	// [effective_from, effective_to) window covers at.
	GetActiveForEmployee(ctx context.Context, employeeID string, at time.Time) (SalaryStructure, error)
}
