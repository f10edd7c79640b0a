package loan

import "errors"

var (
	ErrLoanNotFound      = errors.New("loan not found")
	ErrLoanClosed        = errors.New("loan is already closed")
	ErrDeductionNotFound = errors.New("loan deduction not found")
	ErrInvalidTenure     = errors.New("loan tenure must be at least one month")
	ErrInvalidPrincipal  = errors.New("loan principal must be positive")
)
