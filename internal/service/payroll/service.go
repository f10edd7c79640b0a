package payroll

import (
	"context"
	"errors"
	"fmt"

	"github.com/opspay/payroll-backend-go/internal/domain/payroll"
)

// PayrollService is the surface the triggering collaborator calls: it
// creates runs, exposes run state for polling and re-enqueues failed
// stages. All stage execution happens through the queue.
type PayrollService struct {
	runRepo      payroll.RunRepository
	recordRepo   payroll.RecordRepository
	orchestrator *Orchestrator
}

func NewPayrollService(runRepo payroll.RunRepository, recordRepo payroll.RecordRepository, orchestrator *Orchestrator) *PayrollService {
	return &PayrollService{
		runRepo:      runRepo,
		recordRepo:   recordRepo,
		orchestrator: orchestrator,
	}
}

// CreateRun creates the (month, year) run and enqueues its validation
// stage. At most one run exists per period.
func (s *PayrollService) CreateRun(ctx context.Context, req payroll.CreateRunRequest) (payroll.RunResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.RunResponse{}, err
	}

	run, err := s.runRepo.Create(ctx, req.Month, req.Year)
	if err != nil {
		return payroll.RunResponse{}, err
	}

	if err := s.orchestrator.EnqueueStage(ctx, run.ID, run.Month, run.Year, payroll.StageValidation); err != nil {
		return payroll.RunResponse{}, fmt.Errorf("failed to enqueue validation stage: %w", err)
	}

	return payroll.ToRunResponse(run), nil
}

// EnsureRunForPeriod creates and triggers the period's run if absent; used
// by the scheduler. An existing run is left untouched.
func (s *PayrollService) EnsureRunForPeriod(ctx context.Context, month, year int) error {
	if _, err := s.runRepo.GetByPeriod(ctx, month, year); err == nil {
		return nil
	} else if !errors.Is(err, payroll.ErrRunNotFound) {
		return err
	}

	_, err := s.CreateRun(ctx, payroll.CreateRunRequest{Month: month, Year: year})
	if errors.Is(err, payroll.ErrRunAlreadyExists) {
		// Lost the race to a concurrent trigger; the run exists, done.
		return nil
	}
	return err
}

// GetRun returns the run's status, stage, counters and error list.
func (s *PayrollService) GetRun(ctx context.Context, id string) (payroll.RunResponse, error) {
	run, err := s.runRepo.GetByID(ctx, id)
	if err != nil {
		return payroll.RunResponse{}, err
	}
	return payroll.ToRunResponse(run), nil
}

// ListRecords returns the run's payroll records.
func (s *PayrollService) ListRecords(ctx context.Context, runID string) ([]payroll.RecordResponse, error) {
	if _, err := s.runRepo.GetByID(ctx, runID); err != nil {
		return nil, err
	}
	records, err := s.recordRepo.ListByRun(ctx, runID)
	if err != nil {
		return nil, err
	}
	return payroll.ToRecordResponses(records), nil
}

// RetryRun re-enqueues the stage a failed run stopped at. The dedupe key
// makes this a no-op while a job for that stage is still active.
func (s *PayrollService) RetryRun(ctx context.Context, id string) (payroll.RunResponse, error) {
	run, err := s.runRepo.GetByID(ctx, id)
	if err != nil {
		return payroll.RunResponse{}, err
	}
	if run.Status != payroll.RunStatusFailed {
		return payroll.RunResponse{}, payroll.ErrRunNotRetryable
	}

	if err := s.orchestrator.EnqueueStage(ctx, run.ID, run.Month, run.Year, run.CurrentStage); err != nil {
		return payroll.RunResponse{}, fmt.Errorf("failed to re-enqueue stage: %w", err)
	}
	return payroll.ToRunResponse(run), nil
}
