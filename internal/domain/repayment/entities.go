package repayment

import (
	"errors"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound = errors.New("repayment not found")
)

// Table: repayments. Rows are immutable once written.
type Repayment struct {
	// Internal numeric PK
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	// Public identifier (32-char lowercase hex)
	RepaymentID string `gorm:"column:repayment_id;size:32;not null;uniqueIndex:ux_repayments_repayment_id"`
	// Public loan id; kept after the loan is deleted
	LoanID      string    `gorm:"column:loan_id;size:32;not null;index:idx_repayments_loan"`
	UserID      string    `gorm:"column:user_id;size:32;not null;index:idx_repayments_user"`
	Amount      float64   `gorm:"column:amount;type:decimal(18,2);not null"`
	PaymentDate time.Time `gorm:"column:payment_date;not null"`
	Notes       string    `gorm:"column:notes;type:text"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Repayment) TableName() string { return "repayments" }

// Total sums repayment amounts without float accumulation error.
func Total(rs []Repayment) decimal.Decimal {
	sum := decimal.Zero
	for _, r := range rs {
		sum = sum.Add(decimal.NewFromFloat(r.Amount))
	}
	return sum
}

// SortNewestFirst orders by payment date descending; ties keep insertion order.
func SortNewestFirst(rs []Repayment) {
	sort.SliceStable(rs, func(i, j int) bool {
		return rs[i].PaymentDate.After(rs[j].PaymentDate)
	})
}
