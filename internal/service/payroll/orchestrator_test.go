package payroll

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	domainAttendance "github.com/opspay/payroll-backend-go/internal/domain/attendance"
	"github.com/opspay/payroll-backend-go/internal/domain/employee"
	"github.com/opspay/payroll-backend-go/internal/domain/expense"
	domainLoan "github.com/opspay/payroll-backend-go/internal/domain/loan"
	"github.com/opspay/payroll-backend-go/internal/domain/payroll"
	"github.com/opspay/payroll-backend-go/internal/pkg/money"
	"github.com/opspay/payroll-backend-go/internal/pkg/queue"
	attendanceService "github.com/opspay/payroll-backend-go/internal/service/attendance"
	"github.com/opspay/payroll-backend-go/internal/service/statutory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---- fakes ----

type fakeTxManager struct{}

func (fakeTxManager) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeRunRepo struct {
	mu   sync.Mutex
	runs map[string]*payroll.PayrollRun
}

func (f *fakeRunRepo) Create(ctx context.Context, month, year int) (payroll.PayrollRun, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.runs {
		if r.Month == month && r.Year == year {
			return payroll.PayrollRun{}, payroll.ErrRunAlreadyExists
		}
	}
	run := &payroll.PayrollRun{
		ID:           fmt.Sprintf("run-%d", len(f.runs)+1),
		Month:        month,
		Year:         year,
		Status:       payroll.RunStatusPending,
		CurrentStage: payroll.StageValidation,
	}
	f.runs[run.ID] = run
	return *run, nil
}

func (f *fakeRunRepo) GetByID(ctx context.Context, id string) (payroll.PayrollRun, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	run, ok := f.runs[id]
	if !ok {
		return payroll.PayrollRun{}, payroll.ErrRunNotFound
	}
	return *run, nil
}

func (f *fakeRunRepo) GetByPeriod(ctx context.Context, month, year int) (payroll.PayrollRun, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.runs {
		if r.Month == month && r.Year == year {
			return *r, nil
		}
	}
	return payroll.PayrollRun{}, payroll.ErrRunNotFound
}

func (f *fakeRunRepo) EnterStage(ctx context.Context, id string, stage payroll.RunStage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	run, ok := f.runs[id]
	if !ok {
		return payroll.ErrRunNotFound
	}
	run.Status = payroll.RunStatusProcessing
	run.CurrentStage = stage
	run.Errors = nil
	return nil
}

func (f *fakeRunRepo) UpdateCounts(ctx context.Context, id string, total, processed, succeeded, errored int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	run := f.runs[id]
	run.TotalEmployees = total
	run.Processed = processed
	run.Succeeded = succeeded
	run.Errored = errored
	return nil
}

func (f *fakeRunRepo) MarkFailed(ctx context.Context, id string, errs []payroll.RunError) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	run := f.runs[id]
	run.Status = payroll.RunStatusFailed
	run.Errors = errs
	return nil
}

func (f *fakeRunRepo) MarkCompleted(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	run := f.runs[id]
	run.Status = payroll.RunStatusCompleted
	now := time.Now()
	run.CompletedAt = &now
	return nil
}

type fakeRecordRepo struct {
	mu      sync.Mutex
	records map[string]payroll.PayrollRecord // runID/employeeID
}

func recordKey(runID, employeeID string) string { return runID + "/" + employeeID }

func (f *fakeRecordRepo) Upsert(ctx context.Context, record payroll.PayrollRecord) (payroll.PayrollRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := recordKey(record.RunID, record.EmployeeID)
	if existing, ok := f.records[key]; ok {
		record.ID = existing.ID
	} else {
		record.ID = "rec-" + record.EmployeeID
	}
	f.records[key] = record
	return record, nil
}

func (f *fakeRecordRepo) GetByRunAndEmployee(ctx context.Context, runID, employeeID string) (payroll.PayrollRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	record, ok := f.records[recordKey(runID, employeeID)]
	if !ok {
		return payroll.PayrollRecord{}, payroll.ErrRecordNotFound
	}
	return record, nil
}

func (f *fakeRecordRepo) ListByRun(ctx context.Context, runID string) ([]payroll.PayrollRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var records []payroll.PayrollRecord
	for _, r := range f.records {
		if r.RunID == runID {
			records = append(records, r)
		}
	}
	sort.Slice(records, func(i, j int) bool { return records[i].EmployeeID < records[j].EmployeeID })
	return records, nil
}

func (f *fakeRecordRepo) MarkVerifiedByRun(ctx context.Context, runID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for key, r := range f.records {
		if r.RunID == runID && r.Status == payroll.RecordStatusCalculated {
			r.Status = payroll.RecordStatusVerified
			f.records[key] = r
			count++
		}
	}
	return count, nil
}

type fakeEmployeeRepo struct {
	employees []employee.Employee
}

func (f *fakeEmployeeRepo) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	for _, e := range f.employees {
		if e.ID == id {
			return e, nil
		}
	}
	return employee.Employee{}, employee.ErrEmployeeNotFound
}

func (f *fakeEmployeeRepo) ListActive(ctx context.Context) ([]employee.Employee, error) {
	var active []employee.Employee
	for _, e := range f.employees {
		if e.IsActive {
			active = append(active, e)
		}
	}
	return active, nil
}

type fakeStructureRepo struct {
	structures map[string]employee.SalaryStructure
}

func (f *fakeStructureRepo) Create(ctx context.Context, s employee.SalaryStructure) (employee.SalaryStructure, error) {
	f.structures[s.EmployeeID] = s
	return s, nil
}

func (f *fakeStructureRepo) GetActiveForEmployee(ctx context.Context, employeeID string, at time.Time) (employee.SalaryStructure, error) {
	s, ok := f.structures[employeeID]
	if !ok {
		return employee.SalaryStructure{}, employee.ErrSalaryStructureNotFound
	}
	return s, nil
}

type fakeAttendanceRepo struct {
	locked bool
	days   map[string][]domainAttendance.Day
}

func (f *fakeAttendanceRepo) ListForPeriod(ctx context.Context, employeeID string, month, year int) ([]domainAttendance.Day, error) {
	return f.days[employeeID], nil
}

func (f *fakeAttendanceRepo) IsLocked(ctx context.Context, month, year int) (bool, error) {
	return f.locked, nil
}

func (f *fakeAttendanceRepo) Lock(ctx context.Context, month, year int, lockedBy string) error {
	f.locked = true
	return nil
}

type fakeLoanRepo struct {
	mu         sync.Mutex
	deductions []domainLoan.LoanDeduction
}

func (f *fakeLoanRepo) GetByID(ctx context.Context, id string) (domainLoan.EmployeeLoan, error) {
	return domainLoan.EmployeeLoan{}, domainLoan.ErrLoanNotFound
}

func (f *fakeLoanRepo) DeductionsForCycle(ctx context.Context, employeeID string, month, year int) ([]domainLoan.LoanDeduction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domainLoan.LoanDeduction
	for _, d := range f.deductions {
		if d.EmployeeID == employeeID && d.Month == month && d.Year == year {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeLoanRepo) ApplyDeduction(ctx context.Context, deductionID, payrollRecordID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, d := range f.deductions {
		if d.ID == deductionID {
			if d.Status != domainLoan.DeductionStatusScheduled {
				return domainLoan.ErrDeductionNotFound
			}
			f.deductions[i].Status = domainLoan.DeductionStatusDeducted
			f.deductions[i].PayrollRecordID = &payrollRecordID
			return nil
		}
	}
	return domainLoan.ErrDeductionNotFound
}

type fakeExpenseRepo struct {
	mu     sync.Mutex
	claims []expense.Claim
}

func (f *fakeExpenseRepo) ForCycle(ctx context.Context, employeeID, runID string) ([]expense.Claim, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []expense.Claim
	for _, c := range f.claims {
		if c.EmployeeID != employeeID {
			continue
		}
		if (c.Status == expense.ClaimStatusApproved && c.PayrollRecordID == nil) || c.PayrollRecordID != nil {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeExpenseRepo) MarkReimbursed(ctx context.Context, ids []string, payrollRecordID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range ids {
		for i, c := range f.claims {
			if c.ID == id && c.Status == expense.ClaimStatusApproved {
				f.claims[i].Status = expense.ClaimStatusReimbursed
				f.claims[i].PayrollRecordID = &payrollRecordID
			}
		}
	}
	return nil
}

type fakeNotifier struct {
	mu       sync.Mutex
	notified []string
	failFor  map[string]bool
}

func (f *fakeNotifier) PayslipReady(ctx context.Context, employeeID, employeeEmail string, month, year int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failFor[employeeID] {
		return fmt.Errorf("no channel for %s", employeeID)
	}
	f.notified = append(f.notified, employeeID)
	return nil
}

type fakeQueue struct {
	mu   sync.Mutex
	jobs []queue.Job
}

func (f *fakeQueue) Enqueue(ctx context.Context, job queue.Job) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.jobs {
		if existing.DedupeKey == job.DedupeKey && existing.Status == queue.StatusPending {
			return nil
		}
	}
	job.Status = queue.StatusPending
	f.jobs = append(f.jobs, job)
	return nil
}

func (f *fakeQueue) Status(ctx context.Context, dedupeKey string) (queue.Status, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.jobs) - 1; i >= 0; i-- {
		if f.jobs[i].DedupeKey == dedupeKey {
			return f.jobs[i].Status, nil
		}
	}
	return "", queue.ErrJobNotFound
}

func (f *fakeQueue) CancelPending(ctx context.Context, runID string) error {
	return nil
}

func (f *fakeQueue) lastJob() (queue.Job, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.jobs) == 0 {
		return queue.Job{}, false
	}
	return f.jobs[len(f.jobs)-1], true
}

// ---- harness ----

type harness struct {
	orch       *Orchestrator
	runRepo    *fakeRunRepo
	recordRepo *fakeRecordRepo
	employees  *fakeEmployeeRepo
	structures *fakeStructureRepo
	attendance *fakeAttendanceRepo
	loans      *fakeLoanRepo
	expenses   *fakeExpenseRepo
	notifier   *fakeNotifier
	q          *fakeQueue
}

func newHarness() *harness {
	employees := &fakeEmployeeRepo{employees: []employee.Employee{
		{ID: "emp-a", Name: "Asha", Email: "asha@example.com", Region: "KA", TaxRegime: employee.TaxRegimeNew, IsActive: true},
		{ID: "emp-b", Name: "Bilal", Email: "bilal@example.com", Region: "KA", TaxRegime: employee.TaxRegimeNew, IsActive: true},
		{ID: "emp-gone", Name: "Left", Email: "left@example.com", Region: "KA", TaxRegime: employee.TaxRegimeNew, IsActive: false},
	}}
	structure := employee.SalaryStructure{
		BasicPay:    money.FromRupees(30000),
		HRA:         money.FromRupees(10000),
		Allowances:  money.FromRupees(10000),
		IsCompliant: true,
	}
	sa, sb := structure, structure
	sa.EmployeeID = "emp-a"
	sb.EmployeeID = "emp-b"
	structures := &fakeStructureRepo{structures: map[string]employee.SalaryStructure{
		"emp-a": sa,
		"emp-b": sb,
	}}
	attendanceRepo := &fakeAttendanceRepo{locked: true, days: map[string][]domainAttendance.Day{}}
	loans := &fakeLoanRepo{deductions: []domainLoan.LoanDeduction{
		{
			ID: "ded-1", LoanID: "loan-1", EmployeeID: "emp-a", Month: 1, Year: 2026,
			EMI: 888488, InterestComponent: 100000, PrincipalComponent: 788488,
			Status: domainLoan.DeductionStatusScheduled,
		},
	}}
	expenses := &fakeExpenseRepo{claims: []expense.Claim{
		{ID: "claim-1", EmployeeID: "emp-a", Amount: money.FromRupees(1000), Status: expense.ClaimStatusApproved},
	}}
	notifier := &fakeNotifier{failFor: map[string]bool{}}
	q := &fakeQueue{}
	runRepo := &fakeRunRepo{runs: map[string]*payroll.PayrollRun{}}
	recordRepo := &fakeRecordRepo{records: map[string]payroll.PayrollRecord{}}

	orch := NewOrchestrator(
		fakeTxManager{},
		runRepo,
		recordRepo,
		employees,
		structures,
		attendanceRepo,
		loans,
		expenses,
		notifier,
		q,
		attendanceService.NewSummarizer(attendanceRepo),
		NewCalculator(statutory.DefaultTaxTables()),
	)
	return &harness{
		orch:       orch,
		runRepo:    runRepo,
		recordRepo: recordRepo,
		employees:  employees,
		structures: structures,
		attendance: attendanceRepo,
		loans:      loans,
		expenses:   expenses,
		notifier:   notifier,
		q:          q,
	}
}

func stageJob(t *testing.T, runID string, month, year int, stage payroll.RunStage) queue.Job {
	t.Helper()
	payload, err := json.Marshal(StagePayload{RunID: runID, Month: month, Year: year})
	require.NoError(t, err)
	return queue.Job{
		ID:        "job-" + string(stage),
		Type:      stageJobTypes[stage],
		DedupeKey: DedupeKey(runID, stage),
		RunID:     runID,
		Payload:   payload,
	}
}

func (h *harness) createRun(t *testing.T) payroll.PayrollRun {
	t.Helper()
	run, err := h.runRepo.Create(context.Background(), 1, 2026)
	require.NoError(t, err)
	return run
}

// ---- tests ----

func TestHandleValidation_UnlockedAttendanceFailsRun(t *testing.T) {
	h := newHarness()
	h.attendance.locked = false
	run := h.createRun(t)

	err := h.orch.HandleValidation(context.Background(), stageJob(t, run.ID, 1, 2026, payroll.StageValidation))
	require.NoError(t, err)

	got, _ := h.runRepo.GetByID(context.Background(), run.ID)
	assert.Equal(t, payroll.RunStatusFailed, got.Status)
	require.Len(t, got.Errors, 1)
	assert.Contains(t, got.Errors[0].Message, "not locked")
	assert.Empty(t, h.q.jobs)
}

func TestHandleValidation_AdvancesToCalculation(t *testing.T) {
	h := newHarness()
	run := h.createRun(t)

	err := h.orch.HandleValidation(context.Background(), stageJob(t, run.ID, 1, 2026, payroll.StageValidation))
	require.NoError(t, err)

	got, _ := h.runRepo.GetByID(context.Background(), run.ID)
	assert.Equal(t, 2, got.TotalEmployees)
	assert.Equal(t, 2, got.Succeeded)
	assert.Equal(t, 0, got.Errored)

	next, ok := h.q.lastJob()
	require.True(t, ok)
	assert.Equal(t, JobTypeCalculation, next.Type)
	assert.Equal(t, DedupeKey(run.ID, payroll.StageCalculation), next.DedupeKey)
}

func TestHandleValidation_NonCompliantStructureFailsRun(t *testing.T) {
	h := newHarness()
	bad := h.structures.structures["emp-b"]
	bad.IsCompliant = false
	h.structures.structures["emp-b"] = bad
	run := h.createRun(t)

	err := h.orch.HandleValidation(context.Background(), stageJob(t, run.ID, 1, 2026, payroll.StageValidation))
	require.NoError(t, err)

	got, _ := h.runRepo.GetByID(context.Background(), run.ID)
	assert.Equal(t, payroll.RunStatusFailed, got.Status)
	require.Len(t, got.Errors, 1)
	assert.Equal(t, "emp-b", got.Errors[0].EmployeeID)
	assert.Equal(t, 1, got.Errored)
	assert.Empty(t, h.q.jobs)
}

func TestHandleCalculation_WritesRecordsAndAdvances(t *testing.T) {
	h := newHarness()
	run := h.createRun(t)

	err := h.orch.HandleCalculation(context.Background(), stageJob(t, run.ID, 1, 2026, payroll.StageCalculation))
	require.NoError(t, err)

	got, _ := h.runRepo.GetByID(context.Background(), run.ID)
	assert.Equal(t, 2, got.Processed)
	assert.Equal(t, 2, got.Succeeded)

	// Full presence in January 2026: gross 5,000,000; PF 180,000 on basic,
	// PT 20,000 for KA, no ESI, withholding fully rebated.
	recA, err := h.recordRepo.GetByRunAndEmployee(context.Background(), run.ID, "emp-a")
	require.NoError(t, err)
	assert.Equal(t, money.Amount(5000000), recA.GrossSalary)
	assert.Equal(t, money.Amount(4800000), recA.NetSalary)
	assert.Equal(t, money.Amount(888488), recA.LoanDeductionTotal)
	assert.Equal(t, money.FromRupees(1000), recA.ReimbursementTotal)
	assert.Equal(t, money.Amount(4800000-888488+100000), recA.NetPayable)

	recB, err := h.recordRepo.GetByRunAndEmployee(context.Background(), run.ID, "emp-b")
	require.NoError(t, err)
	assert.Equal(t, money.Amount(0), recB.LoanDeductionTotal)
	assert.Equal(t, recB.NetSalary, recB.NetPayable)

	// Side effects committed: deduction applied, claim reimbursed.
	assert.Equal(t, domainLoan.DeductionStatusDeducted, h.loans.deductions[0].Status)
	require.NotNil(t, h.loans.deductions[0].PayrollRecordID)
	assert.Equal(t, "rec-emp-a", *h.loans.deductions[0].PayrollRecordID)
	assert.Equal(t, expense.ClaimStatusReimbursed, h.expenses.claims[0].Status)

	next, ok := h.q.lastJob()
	require.True(t, ok)
	assert.Equal(t, JobTypeStatutory, next.Type)
}

func TestHandleCalculation_ReExecutionIsIdempotent(t *testing.T) {
	h := newHarness()
	run := h.createRun(t)
	job := stageJob(t, run.ID, 1, 2026, payroll.StageCalculation)

	require.NoError(t, h.orch.HandleCalculation(context.Background(), job))
	first, err := h.recordRepo.GetByRunAndEmployee(context.Background(), run.ID, "emp-a")
	require.NoError(t, err)

	// A redelivered job recomputes against already-applied side effects and
	// must land on byte-identical amounts.
	require.NoError(t, h.orch.HandleCalculation(context.Background(), job))
	second, err := h.recordRepo.GetByRunAndEmployee(context.Background(), run.ID, "emp-a")
	require.NoError(t, err)

	assert.Equal(t, first.LoanDeductionTotal, second.LoanDeductionTotal)
	assert.Equal(t, first.ReimbursementTotal, second.ReimbursementTotal)
	assert.Equal(t, first.NetPayable, second.NetPayable)
	assert.Equal(t, first.ID, second.ID)
}

func TestHandleCalculation_MissingStructureFailsRun(t *testing.T) {
	h := newHarness()
	delete(h.structures.structures, "emp-a")
	run := h.createRun(t)

	err := h.orch.HandleCalculation(context.Background(), stageJob(t, run.ID, 1, 2026, payroll.StageCalculation))
	require.NoError(t, err)

	got, _ := h.runRepo.GetByID(context.Background(), run.ID)
	assert.Equal(t, payroll.RunStatusFailed, got.Status)
	require.Len(t, got.Errors, 1)
	assert.Equal(t, "emp-a", got.Errors[0].EmployeeID)

	// The other employee's record committed before the run failed.
	_, err = h.recordRepo.GetByRunAndEmployee(context.Background(), run.ID, "emp-b")
	assert.NoError(t, err)

	// No advancement past a failed stage.
	for _, j := range h.q.jobs {
		assert.NotEqual(t, JobTypeStatutory, j.Type)
	}
}

func TestHandleStatutory_Advances(t *testing.T) {
	h := newHarness()
	run := h.createRun(t)
	require.NoError(t, h.orch.HandleCalculation(context.Background(), stageJob(t, run.ID, 1, 2026, payroll.StageCalculation)))

	err := h.orch.HandleStatutory(context.Background(), stageJob(t, run.ID, 1, 2026, payroll.StageStatutory))
	require.NoError(t, err)

	next, ok := h.q.lastJob()
	require.True(t, ok)
	assert.Equal(t, JobTypeFinalization, next.Type)
}

func TestHandleFinalization_CompletesRunAndNotifies(t *testing.T) {
	h := newHarness()
	run := h.createRun(t)
	require.NoError(t, h.orch.HandleCalculation(context.Background(), stageJob(t, run.ID, 1, 2026, payroll.StageCalculation)))

	err := h.orch.HandleFinalization(context.Background(), stageJob(t, run.ID, 1, 2026, payroll.StageFinalization))
	require.NoError(t, err)

	got, _ := h.runRepo.GetByID(context.Background(), run.ID)
	assert.Equal(t, payroll.RunStatusCompleted, got.Status)
	require.NotNil(t, got.CompletedAt)

	recA, _ := h.recordRepo.GetByRunAndEmployee(context.Background(), run.ID, "emp-a")
	assert.Equal(t, payroll.RecordStatusVerified, recA.Status)

	sort.Strings(h.notifier.notified)
	assert.Equal(t, []string{"emp-a", "emp-b"}, h.notifier.notified)
}

func TestHandleFinalization_NotificationFailureDoesNotFailRun(t *testing.T) {
	h := newHarness()
	h.notifier.failFor["emp-a"] = true
	run := h.createRun(t)
	require.NoError(t, h.orch.HandleCalculation(context.Background(), stageJob(t, run.ID, 1, 2026, payroll.StageCalculation)))

	err := h.orch.HandleFinalization(context.Background(), stageJob(t, run.ID, 1, 2026, payroll.StageFinalization))
	require.NoError(t, err)

	got, _ := h.runRepo.GetByID(context.Background(), run.ID)
	assert.Equal(t, payroll.RunStatusCompleted, got.Status)
	assert.Equal(t, []string{"emp-b"}, h.notifier.notified)
}

func TestEnqueueStage_DeduplicatesPendingStage(t *testing.T) {
	h := newHarness()
	run := h.createRun(t)

	require.NoError(t, h.orch.EnqueueStage(context.Background(), run.ID, 1, 2026, payroll.StageValidation))
	require.NoError(t, h.orch.EnqueueStage(context.Background(), run.ID, 1, 2026, payroll.StageValidation))

	assert.Len(t, h.q.jobs, 1)
}

func TestFiscalMonthsRemaining(t *testing.T) {
	// April opens the fiscal year, March closes it.
	assert.Equal(t, 12, fiscalMonthsRemaining(4))
	assert.Equal(t, 7, fiscalMonthsRemaining(9))
	assert.Equal(t, 4, fiscalMonthsRemaining(12))
	assert.Equal(t, 3, fiscalMonthsRemaining(1))
	assert.Equal(t, 1, fiscalMonthsRemaining(3))
}
