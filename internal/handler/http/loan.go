package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/opspay/payroll-backend-go/internal/handler/http/response"
	loanService "github.com/opspay/payroll-backend-go/internal/service/loan"
)

type LoanHandler interface {
	GetSchedule(w http.ResponseWriter, r *http.Request)
}

type loanHandlerImpl struct {
	loanService *loanService.LoanService
}

func NewLoanHandler(svc *loanService.LoanService) LoanHandler {
	return &loanHandlerImpl{loanService: svc}
}

type installmentResponse struct {
	Month     int   `json:"month"`
	EMI       int64 `json:"emi"`
	Interest  int64 `json:"interest"`
	Principal int64 `json:"principal"`
	Balance   int64 `json:"balance"`
}

type scheduleResponse struct {
	LoanID           string                `json:"loan_id"`
	EmployeeID       string                `json:"employee_id"`
	Principal        int64                 `json:"principal"`
	AnnualRatePct    string                `json:"annual_rate_pct"`
	TenureMonths     int                   `json:"tenure_months"`
	EMI              int64                 `json:"emi"`
	RemainingBalance int64                 `json:"remaining_balance"`
	Status           string                `json:"status"`
	Schedule         []installmentResponse `json:"schedule"`
}

func (h *loanHandlerImpl) GetSchedule(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	l, schedule, err := h.loanService.PreviewSchedule(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	resp := scheduleResponse{
		LoanID:           l.ID,
		EmployeeID:       l.EmployeeID,
		Principal:        int64(l.Principal),
		AnnualRatePct:    l.AnnualRatePct.String(),
		TenureMonths:     l.TenureMonths,
		EMI:              int64(l.EMI),
		RemainingBalance: int64(l.RemainingBalance),
		Status:           string(l.Status),
		Schedule:         make([]installmentResponse, 0, len(schedule)),
	}
	for _, inst := range schedule {
		resp.Schedule = append(resp.Schedule, installmentResponse{
			Month:     inst.Month,
			EMI:       int64(inst.EMI),
			Interest:  int64(inst.Interest),
			Principal: int64(inst.Principal),
			Balance:   int64(inst.Balance),
		})
	}

	response.Success(w, resp)
}
