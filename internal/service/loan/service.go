package loan

import (
	"context"

	domain "github.com/opspay/payroll-backend-go/internal/domain/loan"
)

type LoanService struct {
	loanRepo domain.LoanRepository
}

func NewLoanService(loanRepo domain.LoanRepository) *LoanService {
	return &LoanService{loanRepo: loanRepo}
}

// PreviewSchedule regenerates the full amortization schedule for an
// existing loan from its original terms.
func (s *LoanService) PreviewSchedule(ctx context.Context, loanID string) (domain.EmployeeLoan, []Installment, error) {
	l, err := s.loanRepo.GetByID(ctx, loanID)
	if err != nil {
		return domain.EmployeeLoan{}, nil, err
	}

	schedule, err := GenerateSchedule(l.Principal, l.AnnualRatePct, l.TenureMonths)
	if err != nil {
		return domain.EmployeeLoan{}, nil, err
	}
	return l, schedule, nil
}
