package response

import (
	"errors"
	"net/http"

	"github.com/opspay/payroll-backend-go/internal/domain/employee"
	"github.com/opspay/payroll-backend-go/internal/domain/loan"
	"github.com/opspay/payroll-backend-go/internal/domain/payroll"
	"github.com/opspay/payroll-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	// Payroll domain errors
	switch {
	case errors.Is(err, payroll.ErrRunNotFound):
		NotFound(w, "Payroll run not found")
	case errors.Is(err, payroll.ErrRunAlreadyExists):
		Conflict(w, "A payroll run already exists for this period")
	case errors.Is(err, payroll.ErrRunNotRetryable):
		Conflict(w, "Only failed runs can be retried")
	case errors.Is(err, payroll.ErrRecordNotFound):
		NotFound(w, "Payroll record not found")
	case errors.Is(err, payroll.ErrInvalidPeriod):
		BadRequest(w, "Invalid payroll period", nil)

	// Employee domain errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, employee.ErrSalaryStructureNotFound):
		NotFound(w, "Salary structure not found")
	case errors.Is(err, employee.ErrStructureOverlap):
		Conflict(w, "Salary structure overlaps an existing one")

	// Loan domain errors
	case errors.Is(err, loan.ErrLoanNotFound):
		NotFound(w, "Loan not found")
	case errors.Is(err, loan.ErrLoanClosed):
		Conflict(w, "Loan is already closed")
	case errors.Is(err, loan.ErrInvalidPrincipal):
		BadRequest(w, "Invalid loan principal", nil)
	case errors.Is(err, loan.ErrInvalidTenure):
		BadRequest(w, "Invalid loan tenure", nil)

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
