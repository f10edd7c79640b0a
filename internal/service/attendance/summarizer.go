// Package attendance reduces daily attendance rows into the per-month day
// counts the payroll calculator consumes.
package attendance

import (
	"context"
	"fmt"
	"time"

	domainAttendance "github.com/opspay/payroll-backend-go/internal/domain/attendance"
	"github.com/opspay/payroll-backend-go/internal/domain/payroll"
)

type Summarizer struct {
	attendanceRepo domainAttendance.AttendanceRepository
}

func NewSummarizer(attendanceRepo domainAttendance.AttendanceRepository) *Summarizer {
	return &Summarizer{attendanceRepo: attendanceRepo}
}

// Summarize turns one employee's daily rows for (month, year) into
// working/paid/loss-of-pay day counts. Working days are the weekdays of
// the month minus recorded holidays; unpaid leave and absences count as
// loss of pay.
func (s *Summarizer) Summarize(ctx context.Context, employeeID string, month, year int) (payroll.AttendanceSummary, error) {
	days, err := s.attendanceRepo.ListForPeriod(ctx, employeeID, month, year)
	if err != nil {
		return payroll.AttendanceSummary{}, fmt.Errorf("failed to list attendance for employee %s: %w", employeeID, err)
	}

	working := weekdaysInMonth(month, year)
	lop := 0
	for _, day := range days {
		switch day.Status {
		case domainAttendance.StatusUnpaidLeave, domainAttendance.StatusAbsent:
			lop++
		case domainAttendance.StatusHoliday:
			if isWeekday(day.Date) {
				working--
			}
		}
	}

	if lop > working {
		lop = working
	}

	return payroll.AttendanceSummary{
		EmployeeID:  employeeID,
		WorkingDays: working,
		PaidDays:    working - lop,
		LOPDays:     lop,
	}, nil
}

func weekdaysInMonth(month, year int) int {
	count := 0
	day := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	for day.Month() == time.Month(month) {
		if isWeekday(day) {
			count++
		}
		day = day.AddDate(0, 0, 1)
	}
	return count
}

func isWeekday(t time.Time) bool {
	return t.Weekday() != time.Saturday && t.Weekday() != time.Sunday
}
