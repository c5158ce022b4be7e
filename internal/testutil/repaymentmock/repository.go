package repaymentmock

import (
	"context"

	domain "loansyncro/internal/domain/repayment"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
type Repo struct {
	CreateFn        func(ctx context.Context, r *domain.Repayment) error
	ListByLoanIDFn  func(ctx context.Context, loanID string) ([]domain.Repayment, error)
	ListByLoanIDsFn func(ctx context.Context, loanIDs []string) ([]domain.Repayment, error)
}

func (m *Repo) Create(ctx context.Context, r *domain.Repayment) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, r)
	}
	return nil
}

func (m *Repo) ListByLoanID(ctx context.Context, loanID string) ([]domain.Repayment, error) {
	if m.ListByLoanIDFn != nil {
		return m.ListByLoanIDFn(ctx, loanID)
	}
	return nil, context.Canceled
}

func (m *Repo) ListByLoanIDs(ctx context.Context, loanIDs []string) ([]domain.Repayment, error) {
	if m.ListByLoanIDsFn != nil {
		return m.ListByLoanIDsFn(ctx, loanIDs)
	}
	return nil, context.Canceled
}
