package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/opspay/payroll-backend-go/internal/config"
	appHTTP "github.com/opspay/payroll-backend-go/internal/handler/http"
	"github.com/opspay/payroll-backend-go/internal/pkg/cron"
	"github.com/opspay/payroll-backend-go/internal/pkg/database"
	"github.com/opspay/payroll-backend-go/internal/pkg/queue"
	"github.com/opspay/payroll-backend-go/internal/repository/postgresql"
	attendanceService "github.com/opspay/payroll-backend-go/internal/service/attendance"
	loanService "github.com/opspay/payroll-backend-go/internal/service/loan"
	notificationService "github.com/opspay/payroll-backend-go/internal/service/notification"
	payrollService "github.com/opspay/payroll-backend-go/internal/service/payroll"
	"github.com/opspay/payroll-backend-go/internal/service/statutory"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	dsn := cfg.DatabaseURL()
	db, err := database.NewPostgreSQLDB(dsn)
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		return
	}
	defer db.Close()

	txManager := postgresql.NewTxManager(db)
	runRepo := postgresql.NewPayrollRunRepository(db)
	recordRepo := postgresql.NewPayrollRecordRepository(db)
	employeeRepo := postgresql.NewEmployeeRepository(db)
	structureRepo := postgresql.NewSalaryStructureRepository(db)
	attendanceRepo := postgresql.NewAttendanceRepository(db)
	loanRepo := postgresql.NewLoanRepository(db)
	expenseRepo := postgresql.NewExpenseClaimRepository(db)
	notificationRepo := postgresql.NewNotificationRepository(db)
	jobQueueRepo := postgresql.NewJobQueueRepository(db)

	summarizer := attendanceService.NewSummarizer(attendanceRepo)
	calculator := payrollService.NewCalculator(statutory.DefaultTaxTables())
	notifier := notificationService.NewNotificationService(notificationRepo)
	loanSvc := loanService.NewLoanService(loanRepo)

	orchestrator := payrollService.NewOrchestrator(
		txManager,
		runRepo,
		recordRepo,
		employeeRepo,
		structureRepo,
		attendanceRepo,
		loanRepo,
		expenseRepo,
		notifier,
		jobQueueRepo,
		summarizer,
		calculator,
	)
	orchestrator.Workers = cfg.Payroll.Workers

	payrollSvc := payrollService.NewPayrollService(runRepo, recordRepo, orchestrator)

	worker := queue.NewWorker(jobQueueRepo)
	worker.BatchSize = cfg.Queue.BatchSize
	worker.PollInterval = cfg.Queue.PollInterval
	worker.LockTimeout = cfg.Queue.LockTimeout
	worker.MaxAttempts = cfg.Queue.MaxAttempts
	worker.InitialBackoff = cfg.Queue.InitialBackoff
	worker.MaxBackoff = cfg.Queue.MaxBackoff
	orchestrator.Register(worker)

	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()
	go worker.Run(workerCtx)

	scheduler := cron.NewScheduler()
	if cfg.Payroll.AutoTriggerInterval > 0 {
		scheduler.AddJob("payroll-auto-trigger", cfg.Payroll.AutoTriggerInterval, func(ctx context.Context) error {
			now := time.Now().UTC()
			return payrollSvc.EnsureRunForPeriod(ctx, int(now.Month()), now.Year())
		})
	}
	scheduler.Start()
	defer scheduler.Stop()

	payrollHandler := appHTTP.NewPayrollHandler(payrollSvc)
	loanHandler := appHTTP.NewLoanHandler(loanSvc)
	notificationHandler := appHTTP.NewNotificationHandler(notifier)

	router := appHTTP.NewRouter(cfg, payrollHandler, loanHandler, notificationHandler)

	addr := fmt.Sprintf(":%d", cfg.App.Port)
	fmt.Println("Starting server on", addr)
	if err := http.ListenAndServe(addr, router); err != nil {
		fmt.Println("Server error:", err)
	}
}
