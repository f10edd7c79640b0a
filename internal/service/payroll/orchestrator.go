package payroll

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	domainAttendance "github.com/opspay/payroll-backend-go/internal/domain/attendance"
	"github.com/opspay/payroll-backend-go/internal/domain/employee"
	"github.com/opspay/payroll-backend-go/internal/domain/expense"
	domainLoan "github.com/opspay/payroll-backend-go/internal/domain/loan"
	"github.com/opspay/payroll-backend-go/internal/domain/notification"
	"github.com/opspay/payroll-backend-go/internal/domain/payroll"
	"github.com/opspay/payroll-backend-go/internal/pkg/database"
	"github.com/opspay/payroll-backend-go/internal/pkg/queue"
	attendanceService "github.com/opspay/payroll-backend-go/internal/service/attendance"
	"github.com/opspay/payroll-backend-go/internal/service/statutory"
)

// Job types, one per stage.
const (
	JobTypeValidation   = "payroll_validation"
	JobTypeCalculation  = "payroll_calculation"
	JobTypeStatutory    = "payroll_statutory"
	JobTypeFinalization = "payroll_finalization"
)

var stageJobTypes = map[payroll.RunStage]string{
	payroll.StageValidation:   JobTypeValidation,
	payroll.StageCalculation:  JobTypeCalculation,
	payroll.StageStatutory:    JobTypeStatutory,
	payroll.StageFinalization: JobTypeFinalization,
}

// StagePayload is the wire form of one stage job.
type StagePayload struct {
	RunID string `json:"run_id"`
	Month int    `json:"month"`
	Year  int    `json:"year"`
}

// DedupeKey derives the deterministic job identity for (run, stage), so
// enqueueing a stage twice while one is pending collapses to a no-op.
func DedupeKey(runID string, stage payroll.RunStage) string {
	return fmt.Sprintf("payroll:%s:%s", runID, strings.ToLower(string(stage)))
}

// Orchestrator drives a payroll run through its four chained stages. Each
// stage executes as an independent queued job; a stage enqueues its
// successor only when its own work fully succeeded.
type Orchestrator struct {
	txm            database.TxManager
	runRepo        payroll.RunRepository
	recordRepo     payroll.RecordRepository
	employeeRepo   employee.EmployeeRepository
	structureRepo  employee.SalaryStructureRepository
	attendanceRepo domainAttendance.AttendanceRepository
	loanRepo       domainLoan.LoanRepository
	expenseRepo    expense.ClaimRepository
	notifier       notification.Notifier
	q              queue.Queue
	summarizer     *attendanceService.Summarizer
	calc           *Calculator

	// Workers bounds the per-employee parallelism of the calculation
	// stage. Run aggregates are accumulated under a mutex and written
	// once by the stage handler.
	Workers int
}

func NewOrchestrator(
	txm database.TxManager,
	runRepo payroll.RunRepository,
	recordRepo payroll.RecordRepository,
	employeeRepo employee.EmployeeRepository,
	structureRepo employee.SalaryStructureRepository,
	attendanceRepo domainAttendance.AttendanceRepository,
	loanRepo domainLoan.LoanRepository,
	expenseRepo expense.ClaimRepository,
	notifier notification.Notifier,
	q queue.Queue,
	summarizer *attendanceService.Summarizer,
	calc *Calculator,
) *Orchestrator {
	return &Orchestrator{
		txm:            txm,
		runRepo:        runRepo,
		recordRepo:     recordRepo,
		employeeRepo:   employeeRepo,
		structureRepo:  structureRepo,
		attendanceRepo: attendanceRepo,
		loanRepo:       loanRepo,
		expenseRepo:    expenseRepo,
		notifier:       notifier,
		q:              q,
		summarizer:     summarizer,
		calc:           calc,
		Workers:        4,
	}
}

// Register binds the stage handlers to the worker. Handlers share one
// signature and are dispatched by job type; the on-dead hook marks the run
// failed once retries are exhausted.
func (o *Orchestrator) Register(w *queue.Worker) {
	handlers := map[payroll.RunStage]queue.Handler{
		payroll.StageValidation:   o.HandleValidation,
		payroll.StageCalculation:  o.HandleCalculation,
		payroll.StageStatutory:    o.HandleStatutory,
		payroll.StageFinalization: o.HandleFinalization,
	}
	for stage, handler := range handlers {
		w.Register(stageJobTypes[stage], handler)
	}
	w.OnDead(func(ctx context.Context, job queue.Job, lastError string) {
		if job.RunID == "" {
			return
		}
		err := o.runRepo.MarkFailed(ctx, job.RunID, []payroll.RunError{
			{Message: fmt.Sprintf("%s exhausted retries: %s", job.Type, lastError)},
		})
		if err != nil {
			slog.Error("failed to mark run failed after dead job", "run_id", job.RunID, "error", err)
		}
	})
}

// EnqueueStage enqueues one stage job under its deterministic identity.
func (o *Orchestrator) EnqueueStage(ctx context.Context, runID string, month, year int, stage payroll.RunStage) error {
	payload, err := json.Marshal(StagePayload{RunID: runID, Month: month, Year: year})
	if err != nil {
		return fmt.Errorf("failed to marshal stage payload: %w", err)
	}
	return o.q.Enqueue(ctx, queue.Job{
		Type:      stageJobTypes[stage],
		DedupeKey: DedupeKey(runID, stage),
		RunID:     runID,
		Payload:   payload,
	})
}

func (o *Orchestrator) enterStage(ctx context.Context, job queue.Job, stage payroll.RunStage) (StagePayload, error) {
	var p StagePayload
	if err := json.Unmarshal(job.Payload, &p); err != nil {
		return StagePayload{}, fmt.Errorf("failed to decode stage payload: %w", err)
	}
	if err := o.runRepo.EnterStage(ctx, p.RunID, stage); err != nil {
		return StagePayload{}, err
	}
	slog.Info("payroll stage started", "run_id", p.RunID, "stage", stage, "month", p.Month, "year", p.Year)
	return p, nil
}

func (o *Orchestrator) advance(ctx context.Context, p StagePayload, from payroll.RunStage) error {
	next, ok := from.Next()
	if !ok {
		return nil
	}
	return o.EnqueueStage(ctx, p.RunID, p.Month, p.Year, next)
}

// HandleValidation checks that payroll may calculate at all: the period's
// attendance must be locked, and every active employee must have exactly
// one active compliant salary structure. Any violation fails the run with
// zero side effects.
func (o *Orchestrator) HandleValidation(ctx context.Context, job queue.Job) error {
	p, err := o.enterStage(ctx, job, payroll.StageValidation)
	if err != nil {
		return err
	}

	locked, err := o.attendanceRepo.IsLocked(ctx, p.Month, p.Year)
	if err != nil {
		return fmt.Errorf("failed to check attendance lock: %w", err)
	}
	if !locked {
		return o.runRepo.MarkFailed(ctx, p.RunID, []payroll.RunError{
			{Message: payroll.ErrAttendanceNotLocked.Error()},
		})
	}

	employees, err := o.employeeRepo.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("failed to list active employees: %w", err)
	}

	periodStart := time.Date(p.Year, time.Month(p.Month), 1, 0, 0, 0, 0, time.UTC)
	var errs []payroll.RunError
	for _, emp := range employees {
		structure, err := o.structureRepo.GetActiveForEmployee(ctx, emp.ID, periodStart)
		if err != nil {
			errs = append(errs, payroll.RunError{EmployeeID: emp.ID, Message: payroll.ErrNoCompliantStructure.Error()})
			continue
		}
		if !structure.IsCompliant {
			errs = append(errs, payroll.RunError{EmployeeID: emp.ID, Message: "active salary structure is not compliant"})
		}
	}

	if err := o.runRepo.UpdateCounts(ctx, p.RunID, len(employees), len(employees), len(employees)-len(errs), len(errs)); err != nil {
		return err
	}
	if len(errs) > 0 {
		return o.runRepo.MarkFailed(ctx, p.RunID, errs)
	}
	return o.advance(ctx, p, payroll.StageValidation)
}

// HandleCalculation computes and upserts one payroll record per active
// employee. Per-employee work runs on a bounded worker pool; each
// employee's record write, loan deduction and expense reimbursement commit
// in a single transaction. Any per-employee error fails the run after the
// loop, leaving the other employees' committed records in place.
func (o *Orchestrator) HandleCalculation(ctx context.Context, job queue.Job) error {
	p, err := o.enterStage(ctx, job, payroll.StageCalculation)
	if err != nil {
		return err
	}

	employees, err := o.employeeRepo.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("failed to list active employees: %w", err)
	}

	workers := o.Workers
	if workers < 1 {
		workers = 1
	}

	var (
		mu        sync.Mutex
		wg        sync.WaitGroup
		processed int
		succeeded int
		errs      []payroll.RunError
	)

	jobs := make(chan employee.Employee)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for emp := range jobs {
				empErr := o.processEmployee(ctx, p, emp)
				mu.Lock()
				processed++
				if empErr != nil {
					errs = append(errs, payroll.RunError{EmployeeID: emp.ID, Message: empErr.Error()})
				} else {
					succeeded++
				}
				mu.Unlock()
			}
		}()
	}
	for _, emp := range employees {
		jobs <- emp
	}
	close(jobs)
	wg.Wait()

	sort.Slice(errs, func(i, j int) bool { return errs[i].EmployeeID < errs[j].EmployeeID })

	if err := o.runRepo.UpdateCounts(ctx, p.RunID, len(employees), processed, succeeded, len(errs)); err != nil {
		return err
	}
	if len(errs) > 0 {
		// Partial payroll is never issued: any calculation error blocks
		// the statutory and finalization stages.
		return o.runRepo.MarkFailed(ctx, p.RunID, errs)
	}
	return o.advance(ctx, p, payroll.StageCalculation)
}

// processEmployee runs the pure calculation and commits the record with
// its loan and expense side effects atomically.
func (o *Orchestrator) processEmployee(ctx context.Context, p StagePayload, emp employee.Employee) error {
	periodStart := time.Date(p.Year, time.Month(p.Month), 1, 0, 0, 0, 0, time.UTC)
	structure, err := o.structureRepo.GetActiveForEmployee(ctx, emp.ID, periodStart)
	if err != nil {
		return fmt.Errorf("salary structure: %w", err)
	}

	summary, err := o.summarizer.Summarize(ctx, emp.ID, p.Month, p.Year)
	if err != nil {
		return fmt.Errorf("attendance summary: %w", err)
	}

	record, err := o.calc.Compute(CalculationInput{
		Structure:       structure,
		Attendance:      summary,
		Region:          emp.Region,
		TaxRegime:       statutory.Regime(emp.TaxRegime),
		MonthsRemaining: fiscalMonthsRemaining(p.Month),
	})
	if err != nil {
		return err
	}
	if !record.PTConfigured {
		slog.Warn("no professional tax table configured for region",
			"employee_id", emp.ID, "region", emp.Region)
	}

	record.RunID = p.RunID
	record.Month = p.Month
	record.Year = p.Year

	return o.txm.WithinTransaction(ctx, func(txCtx context.Context) error {
		deductions, err := o.loanRepo.DeductionsForCycle(txCtx, emp.ID, p.Month, p.Year)
		if err != nil {
			return fmt.Errorf("loan deductions: %w", err)
		}
		claims, err := o.expenseRepo.ForCycle(txCtx, emp.ID, p.RunID)
		if err != nil {
			return fmt.Errorf("expense claims: %w", err)
		}

		for _, d := range deductions {
			record.LoanDeductionTotal += d.EMI
		}
		for _, c := range claims {
			record.ReimbursementTotal += c.Amount
		}
		record.NetPayable = record.NetSalary - record.LoanDeductionTotal + record.ReimbursementTotal

		saved, err := o.recordRepo.Upsert(txCtx, record)
		if err != nil {
			return fmt.Errorf("upsert payroll record: %w", err)
		}

		for _, d := range deductions {
			if d.Status != domainLoan.DeductionStatusScheduled {
				continue
			}
			if err := o.loanRepo.ApplyDeduction(txCtx, d.ID, saved.ID); err != nil {
				return fmt.Errorf("apply loan deduction: %w", err)
			}
		}

		var claimIDs []string
		for _, c := range claims {
			if c.Status == expense.ClaimStatusApproved {
				claimIDs = append(claimIDs, c.ID)
			}
		}
		if len(claimIDs) > 0 {
			if err := o.expenseRepo.MarkReimbursed(txCtx, claimIDs, saved.ID); err != nil {
				return fmt.Errorf("mark claims reimbursed: %w", err)
			}
		}
		return nil
	})
}

// HandleStatutory is the regulatory filing stage. Filing artifact
// generation lives with the reporting collaborator; this stage aggregates
// the run's statutory totals for the filing log and always advances.
func (o *Orchestrator) HandleStatutory(ctx context.Context, job queue.Job) error {
	p, err := o.enterStage(ctx, job, payroll.StageStatutory)
	if err != nil {
		return err
	}

	records, err := o.recordRepo.ListByRun(ctx, p.RunID)
	if err != nil {
		return fmt.Errorf("failed to list records for run: %w", err)
	}

	var pfEmployee, pfEmployer, esiEmployee, esiEmployer, pt, withholding int64
	for _, r := range records {
		pfEmployee += int64(r.PFEmployee)
		pfEmployer += int64(r.PFEmployer)
		esiEmployee += int64(r.ESIEmployee)
		esiEmployer += int64(r.ESIEmployer)
		pt += int64(r.ProfessionalTax)
		withholding += int64(r.WithholdingTax)
	}
	slog.Info("statutory filing summary",
		"run_id", p.RunID,
		"records", len(records),
		"pf_employee", pfEmployee,
		"pf_employer", pfEmployer,
		"esi_employee", esiEmployee,
		"esi_employer", esiEmployer,
		"professional_tax", pt,
		"withholding_tax", withholding,
	)

	return o.advance(ctx, p, payroll.StageStatutory)
}

// HandleFinalization verifies the run's records, completes the run and
// notifies each employee with a valid contact address. One employee's
// notification failure never fails the others or the run.
func (o *Orchestrator) HandleFinalization(ctx context.Context, job queue.Job) error {
	p, err := o.enterStage(ctx, job, payroll.StageFinalization)
	if err != nil {
		return err
	}

	verified, err := o.recordRepo.MarkVerifiedByRun(ctx, p.RunID)
	if err != nil {
		return fmt.Errorf("failed to verify records: %w", err)
	}

	if err := o.runRepo.MarkCompleted(ctx, p.RunID); err != nil {
		return err
	}
	slog.Info("payroll run completed", "run_id", p.RunID, "verified_records", verified)

	records, err := o.recordRepo.ListByRun(ctx, p.RunID)
	if err != nil {
		return fmt.Errorf("failed to list records for notification: %w", err)
	}
	for _, record := range records {
		emp, err := o.employeeRepo.GetByID(ctx, record.EmployeeID)
		if err != nil {
			slog.Warn("payslip notification skipped", "employee_id", record.EmployeeID, "error", err)
			continue
		}
		if err := o.notifier.PayslipReady(ctx, emp.ID, emp.Email, p.Month, p.Year); err != nil {
			slog.Warn("payslip notification failed", "employee_id", emp.ID, "error", err)
		}
	}
	return nil
}

// fiscalMonthsRemaining counts the months left in the April-March fiscal
// year, including the given month.
func fiscalMonthsRemaining(month int) int {
	if month >= 4 {
		return 16 - month
	}
	return 4 - month
}
