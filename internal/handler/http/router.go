package http

import (
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/opspay/payroll-backend-go/internal/config"
)

func NewRouter(cfg *config.Config, payrollHandler PayrollHandler, loanHandler LoanHandler, notificationHandler NotificationHandler) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", cfg.App.Name),
		slog.String("env", cfg.App.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.App.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/healthz"))

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/payroll/runs", func(r chi.Router) {
			r.Post("/", payrollHandler.CreateRun)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", payrollHandler.GetRun)
				r.Get("/records", payrollHandler.ListRecords)
				r.Post("/retry", payrollHandler.RetryRun)
			})
		})

		r.Route("/loans", func(r chi.Router) {
			r.Get("/{id}/schedule", loanHandler.GetSchedule)
		})

		r.Route("/employees/{employeeID}/notifications", func(r chi.Router) {
			r.Get("/", notificationHandler.ListForEmployee)
		})
		r.Put("/notifications/{id}/read", notificationHandler.MarkRead)
	})
	return r
}
