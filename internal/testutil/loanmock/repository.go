package loanmock

import (
	"context"

	domain "loansyncro/internal/domain/loan"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
// Writes default to no-ops; reads default to context.Canceled.
type Repo struct {
	CreateFn               func(ctx context.Context, l *domain.Loan) error
	GetByLoanIDFn          func(ctx context.Context, loanID string) (*domain.Loan, error)
	GetByLoanIDForUpdateFn func(ctx context.Context, loanID string) (*domain.Loan, error)
	ListByUserIDFn         func(ctx context.Context, userID string) ([]domain.Loan, error)
	UpdateDetailsFn        func(ctx context.Context, l *domain.Loan) error
	UpdateStatusFn         func(ctx context.Context, l *domain.Loan) error
	DeleteFn               func(ctx context.Context, l *domain.Loan, deletedBy string) error
}

func (m *Repo) Create(ctx context.Context, l *domain.Loan) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, l)
	}
	return nil
}

func (m *Repo) GetByLoanID(ctx context.Context, loanID string) (*domain.Loan, error) {
	if m.GetByLoanIDFn != nil {
		return m.GetByLoanIDFn(ctx, loanID)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByLoanIDForUpdate(ctx context.Context, loanID string) (*domain.Loan, error) {
	if m.GetByLoanIDForUpdateFn != nil {
		return m.GetByLoanIDForUpdateFn(ctx, loanID)
	}
	return nil, context.Canceled
}

func (m *Repo) ListByUserID(ctx context.Context, userID string) ([]domain.Loan, error) {
	if m.ListByUserIDFn != nil {
		return m.ListByUserIDFn(ctx, userID)
	}
	return nil, context.Canceled
}

func (m *Repo) UpdateDetails(ctx context.Context, l *domain.Loan) error {
	if m.UpdateDetailsFn != nil {
		return m.UpdateDetailsFn(ctx, l)
	}
	return nil
}

func (m *Repo) UpdateStatus(ctx context.Context, l *domain.Loan) error {
	if m.UpdateStatusFn != nil {
		return m.UpdateStatusFn(ctx, l)
	}
	return nil
}

func (m *Repo) Delete(ctx context.Context, l *domain.Loan, deletedBy string) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, l, deletedBy)
	}
	return nil
}
