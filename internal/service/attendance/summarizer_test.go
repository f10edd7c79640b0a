package attendance

import (
	"context"
	"errors"
	"testing"
	"time"

	domainAttendance "github.com/opspay/payroll-backend-go/internal/domain/attendance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAttendanceRepo struct {
	days map[string][]domainAttendance.Day
	err  error
}

func (f *fakeAttendanceRepo) ListForPeriod(ctx context.Context, employeeID string, month, year int) ([]domainAttendance.Day, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.days[employeeID], nil
}

func (f *fakeAttendanceRepo) IsLocked(ctx context.Context, month, year int) (bool, error) {
	return true, nil
}

func (f *fakeAttendanceRepo) Lock(ctx context.Context, month, year int, lockedBy string) error {
	return nil
}

func day(employeeID string, date time.Time, status domainAttendance.DayStatus) domainAttendance.Day {
	return domainAttendance.Day{EmployeeID: employeeID, Date: date, Status: status}
}

func TestSummarize(t *testing.T) {
	// January 2026 has 22 weekdays. The 26th is a Monday.
	repo := &fakeAttendanceRepo{days: map[string][]domainAttendance.Day{
		"emp-1": {
			day("emp-1", time.Date(2026, 1, 26, 0, 0, 0, 0, time.UTC), domainAttendance.StatusHoliday),
			day("emp-1", time.Date(2026, 1, 7, 0, 0, 0, 0, time.UTC), domainAttendance.StatusUnpaidLeave),
			day("emp-1", time.Date(2026, 1, 8, 0, 0, 0, 0, time.UTC), domainAttendance.StatusUnpaidLeave),
			day("emp-1", time.Date(2026, 1, 9, 0, 0, 0, 0, time.UTC), domainAttendance.StatusAbsent),
			day("emp-1", time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC), domainAttendance.StatusPresent),
			day("emp-1", time.Date(2026, 1, 13, 0, 0, 0, 0, time.UTC), domainAttendance.StatusPaidLeave),
		},
	}}

	summary, err := NewSummarizer(repo).Summarize(context.Background(), "emp-1", 1, 2026)
	require.NoError(t, err)

	assert.Equal(t, "emp-1", summary.EmployeeID)
	assert.Equal(t, 21, summary.WorkingDays)
	assert.Equal(t, 3, summary.LOPDays)
	assert.Equal(t, 18, summary.PaidDays)
}

func TestSummarize_WeekendHolidayDoesNotReduceWorkingDays(t *testing.T) {
	// January 4th 2026 is a Sunday; it was never a working day.
	repo := &fakeAttendanceRepo{days: map[string][]domainAttendance.Day{
		"emp-1": {
			day("emp-1", time.Date(2026, 1, 4, 0, 0, 0, 0, time.UTC), domainAttendance.StatusHoliday),
		},
	}}

	summary, err := NewSummarizer(repo).Summarize(context.Background(), "emp-1", 1, 2026)
	require.NoError(t, err)

	assert.Equal(t, 22, summary.WorkingDays)
	assert.Equal(t, 0, summary.LOPDays)
}

func TestSummarize_NoRows(t *testing.T) {
	// Absence of daily rows means full presence, not full absence.
	repo := &fakeAttendanceRepo{days: map[string][]domainAttendance.Day{}}

	summary, err := NewSummarizer(repo).Summarize(context.Background(), "emp-9", 1, 2026)
	require.NoError(t, err)

	assert.Equal(t, 22, summary.WorkingDays)
	assert.Equal(t, 22, summary.PaidDays)
	assert.Equal(t, 0, summary.LOPDays)
}

func TestSummarize_LOPClampedToWorkingDays(t *testing.T) {
	days := make([]domainAttendance.Day, 0, 31)
	for d := 1; d <= 31; d++ {
		days = append(days, day("emp-1", time.Date(2026, 1, d, 0, 0, 0, 0, time.UTC), domainAttendance.StatusAbsent))
	}
	repo := &fakeAttendanceRepo{days: map[string][]domainAttendance.Day{"emp-1": days}}

	summary, err := NewSummarizer(repo).Summarize(context.Background(), "emp-1", 1, 2026)
	require.NoError(t, err)

	assert.Equal(t, 22, summary.WorkingDays)
	assert.Equal(t, 22, summary.LOPDays)
	assert.Equal(t, 0, summary.PaidDays)
}

func TestSummarize_RepoError(t *testing.T) {
	repo := &fakeAttendanceRepo{err: errors.New("connection refused")}

	_, err := NewSummarizer(repo).Summarize(context.Background(), "emp-1", 1, 2026)
	assert.Error(t, err)
}
