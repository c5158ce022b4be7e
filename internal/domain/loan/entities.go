package loan

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("loan not found")
)

type Status string

const (
	StatusActive Status = "active"
	StatusPaid   Status = "paid"
	// StatusDefaulted is reserved for clients; nothing transitions a loan into it.
	StatusDefaulted Status = "defaulted"
)

// Table: loans
type Loan struct {
	// Internal numeric PK
	ID uint64 `gorm:"primaryKey;column:id"`
	// Public identifier (32-char lowercase hex)
	LoanID         string         `gorm:"column:loan_id;size:32;not null;uniqueIndex:ux_loans_loan_id"`
	UserID         string         `gorm:"column:user_id;size:32;not null;index:idx_loans_user"`
	Title          string         `gorm:"column:title;size:255;not null"`
	Amount         float64        `gorm:"column:amount;type:decimal(18,2);not null"`
	InterestRate   float64        `gorm:"column:interest_rate;type:decimal(8,4);not null"`
	TermMonths     int            `gorm:"column:term_months;not null"`
	StartDate      time.Time      `gorm:"column:start_date;not null"`
	Description    string         `gorm:"column:description;type:text"`
	TotalAmount    float64        `gorm:"column:total_amount;type:decimal(18,2);not null"`
	MonthlyPayment float64        `gorm:"column:monthly_payment;type:decimal(18,2);not null"`
	Status         Status         `gorm:"column:status;size:16;not null;default:'active'"`
	CreatedAt      time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time      `gorm:"column:updated_at;autoUpdateTime"`
	DeletedAt      gorm.DeletedAt `gorm:"column:deleted_at;index"`
	DeletedBy      string         `gorm:"column:deleted_by;size:32"`
}

func (Loan) TableName() string { return "loans" }

func (l *Loan) Terms() Terms {
	return Terms{Principal: l.Amount, AnnualRatePercent: l.InterestRate, TermMonths: l.TermMonths}
}

// ApplyTerms recomputes MonthlyPayment and TotalAmount from the current
// amount, rate and term. Derived values are stored at cent precision.
func (l *Loan) ApplyTerms() error {
	s, err := Amortize(l.Terms())
	if err != nil {
		return err
	}
	l.MonthlyPayment = Cents(s.MonthlyPayment)
	l.TotalAmount = Cents(s.TotalAmount)
	return nil
}

// ReconcileStatus derives the status from the sum of all repayments and
// reports whether it changed. A zero total leaves the status untouched.
func (l *Loan) ReconcileStatus(totalRepaid decimal.Decimal) bool {
	next := l.Status
	switch {
	case totalRepaid.GreaterThanOrEqual(decimal.NewFromFloat(l.TotalAmount)):
		next = StatusPaid
	case totalRepaid.IsPositive():
		next = StatusActive
	}
	if next == l.Status {
		return false
	}
	l.Status = next
	return true
}

func (l *Loan) OwnedBy(userID string) bool { return l.UserID == userID }

func Cents(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
