package repayment

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"loansyncro/internal/domain/apperr"
	domainLoan "loansyncro/internal/domain/loan"
	"loansyncro/internal/domain/notification"
	domainRepayment "loansyncro/internal/domain/repayment"
	"loansyncro/internal/domain/uow"
	"loansyncro/pkg/id"
)

type Usecase struct {
	loanRepo      domainLoan.Repository
	repaymentRepo domainRepayment.Repository
	uow           uow.UnitOfWork
	notifier      notification.Publisher
}

// NewUsecase: pass both repos and a UoW for tx flows. notifier may be nil.
func NewUsecase(loans domainLoan.Repository, repayments domainRepayment.Repository, tx uow.UnitOfWork, n notification.Publisher) *Usecase {
	return &Usecase{loanRepo: loans, repaymentRepo: repayments, uow: tx, notifier: n}
}

// settlement is what a repayment transaction learned about its loan.
type settlement struct {
	title       string
	totalPaid   decimal.Decimal
	outstanding decimal.Decimal
	paidOff     bool
}

// Create records a repayment against one of the caller's loans and
// recomputes the loan's status in the same transaction. Notifications go
// out after commit.
func (u *Usecase) Create(ctx context.Context, userID string, in CreateRepaymentInput) (*RepaymentDTO, error) {
	if in.LoanID == "" {
		return nil, apperr.Invalid("loan_id is required")
	}
	if math.IsNaN(in.Amount) || math.IsInf(in.Amount, 0) {
		return nil, apperr.Invalid("amount must be greater than 0")
	}
	// checked after rounding so a sub-cent amount is never stored as 0.00
	amount := domainLoan.Cents(in.Amount)
	if amount <= 0 {
		return nil, apperr.Invalid("amount must be greater than 0")
	}
	if in.PaymentDate.IsZero() {
		return nil, apperr.Invalid("payment_date is required")
	}

	var (
		rp *domainRepayment.Repayment
		st settlement
	)
	err := u.uow.WithinLoanTx(ctx, in.LoanID, func(r uow.Repos, l *domainLoan.Loan) error {
		if !l.OwnedBy(userID) {
			return apperr.New(apperr.ErrForbidden, "not authorized to add repayments to this loan")
		}

		rp = &domainRepayment.Repayment{
			RepaymentID: id.NewID32(),
			LoanID:      l.LoanID,
			UserID:      userID,
			Amount:      amount,
			PaymentDate: in.PaymentDate.UTC(),
			Notes:       in.Notes,
		}
		if err := r.Repayments.Create(ctx, rp); err != nil {
			return err
		}

		var err error
		st, err = reconcile(ctx, r, l)
		return err
	})
	if err != nil {
		return nil, u.translate(err, "record repayment")
	}
	if rp.CreatedAt.IsZero() {
		rp.CreatedAt = time.Now().UTC()
	}

	notification.Send(ctx, u.notifier, notification.RepaymentReceived(
		st.title, rp.Amount, st.totalPaid.InexactFloat64(), st.outstanding.InexactFloat64()))
	if st.paidOff {
		notification.Send(ctx, u.notifier, notification.LoanPaidOff(st.title))
	}

	dto := toDTO(rp)
	return &dto, nil
}

// RecomputeStatus re-derives the loan's status from all of its repayments
// and stores it when it changed. Running it repeatedly is harmless.
func (u *Usecase) RecomputeStatus(ctx context.Context, loanID string) (domainLoan.Status, error) {
	var (
		status domainLoan.Status
		st     settlement
	)
	err := u.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *domainLoan.Loan) error {
		var err error
		st, err = reconcile(ctx, r, l)
		status = l.Status
		return err
	})
	if err != nil {
		return "", u.translate(err, "recompute loan status")
	}
	if st.paidOff {
		notification.Send(ctx, u.notifier, notification.LoanPaidOff(st.title))
	}
	return status, nil
}

func (u *Usecase) ListForLoan(ctx context.Context, userID, loanID string) ([]RepaymentDTO, error) {
	l, err := u.loanRepo.GetByLoanID(ctx, loanID)
	if err != nil {
		return nil, u.translate(err, "load loan")
	}
	if !l.OwnedBy(userID) {
		return nil, apperr.New(apperr.ErrForbidden, "not authorized to access this loan")
	}
	rs, err := u.repaymentRepo.ListByLoanID(ctx, loanID)
	if err != nil {
		return nil, apperr.Dependency("list repayments", err)
	}
	domainRepayment.SortNewestFirst(rs)
	return toDTOs(rs), nil
}

// ListForUser returns repayments across every loan the caller currently
// owns, newest first. Repayments of deleted loans are not included.
func (u *Usecase) ListForUser(ctx context.Context, userID string) ([]RepaymentDTO, error) {
	_, rs, err := u.holdings(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toDTOs(rs), nil
}

func (u *Usecase) Summary(ctx context.Context, userID string) (*SummaryDTO, error) {
	loans, rs, err := u.holdings(ctx, userID)
	if err != nil {
		return nil, err
	}

	borrowed, payable := decimal.Zero, decimal.Zero
	for _, l := range loans {
		borrowed = borrowed.Add(decimal.NewFromFloat(l.Amount))
		payable = payable.Add(decimal.NewFromFloat(l.TotalAmount))
	}
	repaid := domainRepayment.Total(rs)
	outstanding := decimal.Max(decimal.Zero, payable.Sub(repaid))

	return &SummaryDTO{
		TotalLoans:        len(loans),
		TotalBorrowed:     borrowed.InexactFloat64(),
		TotalRepaid:       repaid.InexactFloat64(),
		OutstandingAmount: outstanding.InexactFloat64(),
	}, nil
}

// holdings loads the caller's loans and all repayments made against them.
func (u *Usecase) holdings(ctx context.Context, userID string) ([]domainLoan.Loan, []domainRepayment.Repayment, error) {
	loans, err := u.loanRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, nil, apperr.Dependency("list loans", err)
	}
	if len(loans) == 0 {
		return loans, nil, nil
	}
	ids := make([]string, 0, len(loans))
	for _, l := range loans {
		ids = append(ids, l.LoanID)
	}
	rs, err := u.repaymentRepo.ListByLoanIDs(ctx, ids)
	if err != nil {
		return nil, nil, apperr.Dependency("list repayments", err)
	}
	domainRepayment.SortNewestFirst(rs)
	return loans, rs, nil
}

// reconcile sums the loan's repayments and persists a status change.
// paidOff is set only on a stored transition into paid.
func reconcile(ctx context.Context, r uow.Repos, l *domainLoan.Loan) (settlement, error) {
	rs, err := r.Repayments.ListByLoanID(ctx, l.LoanID)
	if err != nil {
		return settlement{}, err
	}
	total := domainRepayment.Total(rs)
	st := settlement{
		title:       l.Title,
		totalPaid:   total,
		outstanding: decimal.Max(decimal.Zero, decimal.NewFromFloat(l.TotalAmount).Sub(total)),
	}
	if l.ReconcileStatus(total) {
		if err := r.Loans.UpdateStatus(ctx, l); err != nil {
			return settlement{}, err
		}
		st.paidOff = l.Status == domainLoan.StatusPaid
	}
	return st, nil
}

// translate maps store errors onto error kinds; kinds pass through.
func (u *Usecase) translate(err error, op string) error {
	var ae *apperr.Error
	switch {
	case errors.As(err, &ae):
		return err
	case errors.Is(err, domainLoan.ErrNotFound):
		return apperr.New(apperr.ErrNotFound, "loan not found")
	default:
		return apperr.Dependency(op, err)
	}
}
