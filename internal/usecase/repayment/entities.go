package repayment

import (
	"time"

	"loansyncro/internal/domain/repayment"
)

type CreateRepaymentInput struct {
	LoanID      string
	Amount      float64
	PaymentDate time.Time
	Notes       string
}

type RepaymentDTO struct {
	ID          string    `json:"id"`
	LoanID      string    `json:"loan_id"`
	UserID      string    `json:"user_id"`
	Amount      float64   `json:"amount"`
	PaymentDate time.Time `json:"payment_date"`
	Notes       string    `json:"notes"`
	CreatedAt   time.Time `json:"created_at"`
}

// SummaryDTO is derived on every request, never stored.
type SummaryDTO struct {
	TotalLoans        int        `json:"total_loans"`
	TotalBorrowed     float64    `json:"total_borrowed"`
	TotalRepaid       float64    `json:"total_repaid"`
	OutstandingAmount float64    `json:"outstanding_amount"`
	NextPaymentDue    *time.Time `json:"next_payment_due"`
}

func toDTO(r *repayment.Repayment) RepaymentDTO {
	return RepaymentDTO{
		ID:          r.RepaymentID,
		LoanID:      r.LoanID,
		UserID:      r.UserID,
		Amount:      r.Amount,
		PaymentDate: r.PaymentDate,
		Notes:       r.Notes,
		CreatedAt:   r.CreatedAt,
	}
}

func toDTOs(rs []repayment.Repayment) []RepaymentDTO {
	out := make([]RepaymentDTO, 0, len(rs))
	for i := range rs {
		out = append(out, toDTO(&rs[i]))
	}
	return out
}
