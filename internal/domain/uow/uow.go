package uow

import (
	"context"

	"loansyncro/internal/domain/loan"
	"loansyncro/internal/domain/repayment"
)

// Repos are bound to the surrounding transaction.
type Repos struct {
	Loans      loan.Repository
	Repayments repayment.Repository
}

type UnitOfWork interface {
	// lock the loan row first, then pass it in; loan.ErrNotFound if absent
	WithinLoanTx(ctx context.Context, loanID string, fn func(r Repos, l *loan.Loan) error) error
}
