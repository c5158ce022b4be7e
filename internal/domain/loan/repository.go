package loan

import "context"

// Lookups return ErrNotFound when the loan is absent or soft-deleted.
type Repository interface {
	Create(ctx context.Context, l *Loan) error
	GetByLoanID(ctx context.Context, loanID string) (*Loan, error)
	// Row-locking read; only meaningful inside a transaction.
	GetByLoanIDForUpdate(ctx context.Context, loanID string) (*Loan, error)
	// Owner's loans in insertion order.
	ListByUserID(ctx context.Context, userID string) ([]Loan, error)
	// Writes the user-editable columns and the derived amounts, never
	// status. ErrNotFound when no live row matches.
	UpdateDetails(ctx context.Context, l *Loan) error
	// Writes only the status column.
	UpdateStatus(ctx context.Context, l *Loan) error
	Delete(ctx context.Context, l *Loan, deletedBy string) error
}
