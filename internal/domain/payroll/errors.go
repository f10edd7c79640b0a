package payroll

import "errors"

var (
	ErrRunNotFound          = errors.New("payroll run not found")
	ErrRunAlreadyExists     = errors.New("payroll run already exists for this period")
	ErrRunNotRetryable      = errors.New("payroll run is not in a failed state")
	ErrRecordNotFound       = errors.New("payroll record not found")
	ErrInvalidPeriod        = errors.New("invalid payroll period")
	ErrAttendanceNotLocked  = errors.New("attendance is not locked for this period")
	ErrMalformedAttendance  = errors.New("malformed attendance summary")
	ErrNoCompliantStructure = errors.New("no active compliant salary structure")
)
