package repayment

import "context"

// List methods return rows newest payment_date first.
type Repository interface {
	Create(ctx context.Context, r *Repayment) error

	ListByLoanID(ctx context.Context, loanID string) ([]Repayment, error)

	// Union over several loans, e.g. every loan a user owns.
	ListByLoanIDs(ctx context.Context, loanIDs []string) ([]Repayment, error)
}
