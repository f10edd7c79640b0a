package attendance

import "time"

// DayStatus enum
type DayStatus string

const (
	StatusPresent     DayStatus = "PRESENT"
	StatusPaidLeave   DayStatus = "PAID_LEAVE"
	StatusUnpaidLeave DayStatus = "UNPAID_LEAVE"
	StatusAbsent      DayStatus = "ABSENT"
	StatusHoliday     DayStatus = "HOLIDAY"
)

// Day is one attendance row for one employee.
type Day struct {
	ID         string
	EmployeeID string
	Date       time.Time
	Status     DayStatus
}

// PeriodLock marks a (month, year) as closed for edits. Payroll validation
// refuses to run against an unlocked period.
type PeriodLock struct {
	Month    int
	Year     int
	LockedAt time.Time
	LockedBy string
}
