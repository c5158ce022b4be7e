package gormrepo

import (
	"context"
	"errors"
	"testing"

	loanDomain "loansyncro/internal/domain/loan"
	"loansyncro/internal/domain/repayment"
	"loansyncro/internal/domain/uow"
)

func TestGormUoW_WithinLoanTx_Commit(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	guow := NewGormUoW(db)
	loanRepo := NewLoanRepository(db)

	seed := makeLoan(alice)
	if err := loanRepo.Create(ctx, seed); err != nil {
		t.Fatalf("seed loan: %v", err)
	}

	if err := guow.WithinLoanTx(ctx, seed.LoanID, func(r uow.Repos, l *loanDomain.Loan) error {
		if l == nil || l.LoanID != seed.LoanID || l.Status != loanDomain.StatusActive {
			t.Fatalf("unexpected loan passed to fn: %+v", l)
		}
		if err := r.Repayments.Create(ctx, makeRepayment(l, l.TotalAmount, "2024-12-01")); err != nil {
			return err
		}
		rs, err := r.Repayments.ListByLoanID(ctx, l.LoanID)
		if err != nil {
			return err
		}
		if !l.ReconcileStatus(repayment.Total(rs)) {
			t.Fatalf("expected a status change")
		}
		return r.Loans.UpdateStatus(ctx, l)
	}); err != nil {
		t.Fatalf("WithinLoanTx commit err: %v", err)
	}

	got, err := loanRepo.GetByLoanID(ctx, seed.LoanID)
	if err != nil {
		t.Fatalf("GetByLoanID post-commit: %v", err)
	}
	if got.Status != loanDomain.StatusPaid {
		t.Fatalf("loan status not updated, got=%s", got.Status)
	}
}

func TestGormUoW_WithinLoanTx_Rollback(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	guow := NewGormUoW(db)
	loanRepo := NewLoanRepository(db)
	payRepo := NewRepaymentRepository(db)

	seed := makeLoan(alice)
	if err := loanRepo.Create(ctx, seed); err != nil {
		t.Fatalf("seed loan: %v", err)
	}

	sentinel := errors.New("stop")
	_ = guow.WithinLoanTx(ctx, seed.LoanID, func(r uow.Repos, l *loanDomain.Loan) error {
		if err := r.Repayments.Create(ctx, makeRepayment(l, l.TotalAmount, "2024-12-01")); err != nil {
			return err
		}
		l.Status = loanDomain.StatusPaid
		if err := r.Loans.UpdateStatus(ctx, l); err != nil {
			return err
		}
		return sentinel // force rollback
	})

	got, err := loanRepo.GetByLoanID(ctx, seed.LoanID)
	if err != nil {
		t.Fatalf("post-rollback GetByLoanID: %v", err)
	}
	if got.Status != loanDomain.StatusActive {
		t.Fatalf("expected active after rollback, got %s", got.Status)
	}
	if rs, _ := payRepo.ListByLoanID(ctx, seed.LoanID); len(rs) != 0 {
		t.Fatalf("expected repayment absent after rollback, got %d", len(rs))
	}
}

func TestGormUoW_WithinLoanTx_LoanNotFound(t *testing.T) {
	guow := NewGormUoW(openTestDB(t))

	err := guow.WithinLoanTx(context.Background(), "ffffffffffffffffffffffffffffffff", func(r uow.Repos, l *loanDomain.Loan) error {
		t.Fatalf("callback should not be called when loan missing")
		return nil
	})
	if !errors.Is(err, loanDomain.ErrNotFound) {
		t.Fatalf("want loan.ErrNotFound, got %v", err)
	}
}
