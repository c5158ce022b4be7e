package loan

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"loansyncro/internal/domain/apperr"
	"loansyncro/internal/domain/loan"
	"loansyncro/internal/domain/notification"
	"loansyncro/internal/domain/uow"
	"loansyncro/pkg/id"
)

// StatusReconciler re-derives a loan's status from its repayments and
// returns the stored result.
type StatusReconciler interface {
	RecomputeStatus(ctx context.Context, loanID string) (loan.Status, error)
}

type Usecase struct {
	repo       loan.Repository
	tx         uow.UnitOfWork
	notifier   notification.Publisher
	reconciler StatusReconciler
}

// NewUsecase: notifier and reconciler may be nil.
func NewUsecase(r loan.Repository, tx uow.UnitOfWork, n notification.Publisher, rec StatusReconciler) *Usecase {
	return &Usecase{repo: r, tx: tx, notifier: n, reconciler: rec}
}

func (u *Usecase) Create(ctx context.Context, userID string, in CreateLoanInput) (*LoanDTO, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, apperr.Invalid("title is required")
	}
	if in.StartDate.IsZero() {
		return nil, apperr.Invalid("start_date is required")
	}

	l := &loan.Loan{
		LoanID:       id.NewID32(),
		UserID:       userID,
		Title:        title,
		Amount:       in.Amount,
		InterestRate: in.InterestRate,
		TermMonths:   in.TermMonths,
		StartDate:    in.StartDate.UTC(),
		Description:  in.Description,
		Status:       loan.StatusActive,
	}
	if err := l.ApplyTerms(); err != nil {
		return nil, err
	}
	if err := u.repo.Create(ctx, l); err != nil {
		return nil, apperr.Dependency("create loan", err)
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now().UTC()
	}

	notification.Send(ctx, u.notifier, notification.LoanCreated(notification.LoanFacts{
		Title:        l.Title,
		Amount:       l.Amount,
		InterestRate: l.InterestRate,
		TermMonths:   l.TermMonths,
		StartDate:    l.StartDate,
		Status:       string(l.Status),
	}))
	return toDTO(l), nil
}

// Get returns the loan after re-running the status recompute, so a
// repayment whose recompute was interrupted is still reflected.
func (u *Usecase) Get(ctx context.Context, userID, loanID string) (*LoanDTO, error) {
	l, err := u.owned(ctx, userID, loanID)
	if err != nil {
		return nil, err
	}
	if u.reconciler != nil {
		status, err := u.reconciler.RecomputeStatus(ctx, l.LoanID)
		if err != nil {
			log.Printf("loan %s: status recompute failed: %v", l.LoanID, err)
		} else {
			l.Status = status
		}
	}
	return toDTO(l), nil
}

func (u *Usecase) List(ctx context.Context, userID string) ([]LoanDTO, error) {
	loans, err := u.repo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, apperr.Dependency("list loans", err)
	}
	out := make([]LoanDTO, 0, len(loans))
	for i := range loans {
		out = append(out, *toDTO(&loans[i]))
	}
	return out, nil
}

// Update merges the provided fields and recomputes the derived amounts from
// the merged terms. The loan row stays locked from read to write; status is
// left to the repayment recompute.
func (u *Usecase) Update(ctx context.Context, userID, loanID string, in UpdateLoanInput) (*LoanDTO, error) {
	var out *LoanDTO
	err := u.tx.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *loan.Loan) error {
		if !l.OwnedBy(userID) {
			return apperr.New(apperr.ErrForbidden, "not authorized to access this loan")
		}
		if err := in.mergeInto(l); err != nil {
			return err
		}
		if err := r.Loans.UpdateDetails(ctx, l); err != nil {
			return err
		}
		out = toDTO(l)
		return nil
	})
	var ae *apperr.Error
	switch {
	case err == nil:
		return out, nil
	case errors.As(err, &ae):
		return nil, err
	case errors.Is(err, loan.ErrNotFound):
		return nil, apperr.New(apperr.ErrNotFound, "loan not found")
	default:
		return nil, apperr.Dependency("update loan", err)
	}
}

// Delete soft-deletes the loan. Its repayments stay in place.
func (u *Usecase) Delete(ctx context.Context, userID, loanID string) (*DeletedDTO, error) {
	l, err := u.owned(ctx, userID, loanID)
	if err != nil {
		return nil, err
	}
	if err := u.repo.Delete(ctx, l, userID); err != nil {
		if errors.Is(err, loan.ErrNotFound) {
			return nil, apperr.New(apperr.ErrNotFound, "loan not found")
		}
		return nil, apperr.Dependency("delete loan", err)
	}
	return &DeletedDTO{Message: "Loan deleted successfully"}, nil
}

// owned loads a loan and checks it belongs to userID.
func (u *Usecase) owned(ctx context.Context, userID, loanID string) (*loan.Loan, error) {
	l, err := u.repo.GetByLoanID(ctx, loanID)
	switch {
	case errors.Is(err, loan.ErrNotFound):
		return nil, apperr.New(apperr.ErrNotFound, "loan not found")
	case err != nil:
		return nil, apperr.Dependency("load loan", err)
	}
	if !l.OwnedBy(userID) {
		return nil, apperr.New(apperr.ErrForbidden, "not authorized to access this loan")
	}
	return l, nil
}
