package memstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"loansyncro/internal/domain/loan"
	"loansyncro/internal/domain/repayment"
)

func TestLoans_CopiesAndSoftDelete(t *testing.T) {
	s := New()
	ctx := context.Background()
	l := &loan.Loan{LoanID: "L1", UserID: "U1", Title: "Car"}
	if err := s.Loans().Create(ctx, l); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if l.ID == 0 || l.Status != loan.StatusActive {
		t.Fatalf("Create should assign id and default status: %+v", l)
	}

	got, _ := s.Loans().GetByLoanID(ctx, "L1")
	got.Title = "mutated"
	again, _ := s.Loans().GetByLoanID(ctx, "L1")
	if again.Title != "Car" {
		t.Fatalf("stored row aliased by caller")
	}

	if err := s.Loans().Delete(ctx, again, "U1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Loans().GetByLoanID(ctx, "L1"); !errors.Is(err, loan.ErrNotFound) {
		t.Fatalf("deleted loan visible: %v", err)
	}
}

func TestRepayments_NewestFirst(t *testing.T) {
	s := New()
	ctx := context.Background()
	for _, d := range []string{"2024-01-01", "2024-03-01", "2024-02-01"} {
		pd, _ := time.Parse("2006-01-02", d)
		_ = s.Repayments().Create(ctx, &repayment.Repayment{LoanID: "L1", PaymentDate: pd})
	}
	rs, _ := s.Repayments().ListByLoanID(ctx, "L1")
	if len(rs) != 3 || rs[0].PaymentDate.Month() != time.March || rs[2].PaymentDate.Month() != time.January {
		t.Fatalf("unexpected order: %+v", rs)
	}
}
