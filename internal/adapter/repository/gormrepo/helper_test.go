package gormrepo

import (
	"testing"
	"time"

	loanDomain "loansyncro/internal/domain/loan"
	repaymentDomain "loansyncro/internal/domain/repayment"
	"loansyncro/pkg/id"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// openTestDB creates an in-memory sqlite DB with the full schema.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	// every connection to :memory: is a fresh database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func day(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

func makeLoan(userID string) *loanDomain.Loan {
	l := &loanDomain.Loan{
		LoanID:       id.NewID32(),
		UserID:       userID,
		Title:        "Car",
		Amount:       10000,
		InterestRate: 12,
		TermMonths:   12,
		StartDate:    day("2024-01-01"),
		Status:       loanDomain.StatusActive,
	}
	if err := l.ApplyTerms(); err != nil {
		panic(err)
	}
	return l
}

func makeRepayment(l *loanDomain.Loan, amount float64, paid string) *repaymentDomain.Repayment {
	return &repaymentDomain.Repayment{
		RepaymentID: id.NewID32(),
		LoanID:      l.LoanID,
		UserID:      l.UserID,
		Amount:      amount,
		PaymentDate: day(paid),
	}
}
