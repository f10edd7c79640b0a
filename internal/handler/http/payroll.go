package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/opspay/payroll-backend-go/internal/domain/payroll"
	"github.com/opspay/payroll-backend-go/internal/handler/http/response"
	payrollService "github.com/opspay/payroll-backend-go/internal/service/payroll"
)

type PayrollHandler interface {
	CreateRun(w http.ResponseWriter, r *http.Request)
	GetRun(w http.ResponseWriter, r *http.Request)
	ListRecords(w http.ResponseWriter, r *http.Request)
	RetryRun(w http.ResponseWriter, r *http.Request)
}

type payrollHandlerImpl struct {
	payrollService *payrollService.PayrollService
}

func NewPayrollHandler(svc *payrollService.PayrollService) PayrollHandler {
	return &payrollHandlerImpl{payrollService: svc}
}

func (h *payrollHandlerImpl) CreateRun(w http.ResponseWriter, r *http.Request) {
	var req payroll.CreateRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.payrollService.CreateRun(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Accepted(w, "Payroll run started", result)
}

func (h *payrollHandlerImpl) GetRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	result, err := h.payrollService.GetRun(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *payrollHandlerImpl) ListRecords(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	result, err := h.payrollService.ListRecords(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *payrollHandlerImpl) RetryRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	result, err := h.payrollService.RetryRun(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Accepted(w, "Payroll run retry enqueued", result)
}
