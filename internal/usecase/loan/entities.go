package loan

import (
	"strings"
	"time"

	"loansyncro/internal/domain/apperr"
	"loansyncro/internal/domain/loan"
)

type CreateLoanInput struct {
	Title        string
	Amount       float64
	InterestRate float64 // annual, percent
	TermMonths   int
	StartDate    time.Time
	Description  string
}

// UpdateLoanInput is a partial update; nil fields keep their stored value.
type UpdateLoanInput struct {
	Title        *string
	Amount       *float64
	InterestRate *float64
	TermMonths   *int
	StartDate    *time.Time
	Description  *string
}

func (in UpdateLoanInput) touchesTerms() bool {
	return in.Amount != nil || in.InterestRate != nil || in.TermMonths != nil
}

// mergeInto copies the provided fields onto l and re-derives the amounts
// when a term changed. l is left partly merged on error.
func (in UpdateLoanInput) mergeInto(l *loan.Loan) error {
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return apperr.Invalid("title must not be empty")
		}
		l.Title = title
	}
	if in.Amount != nil {
		l.Amount = *in.Amount
	}
	if in.InterestRate != nil {
		l.InterestRate = *in.InterestRate
	}
	if in.TermMonths != nil {
		l.TermMonths = *in.TermMonths
	}
	if in.StartDate != nil {
		l.StartDate = in.StartDate.UTC()
	}
	if in.Description != nil {
		l.Description = *in.Description
	}
	if in.touchesTerms() {
		return l.ApplyTerms()
	}
	return nil
}

type LoanDTO struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	Title          string    `json:"title"`
	Amount         float64   `json:"amount"`
	InterestRate   float64   `json:"interest_rate"`
	TermMonths     int       `json:"term_months"`
	StartDate      time.Time `json:"start_date"`
	Description    string    `json:"description"`
	CreatedAt      time.Time `json:"created_at"`
	TotalAmount    float64   `json:"total_amount"`
	MonthlyPayment float64   `json:"monthly_payment"`
	Status         string    `json:"status"`
}

type DeletedDTO struct {
	Message string `json:"message"`
}

func toDTO(l *loan.Loan) *LoanDTO {
	return &LoanDTO{
		ID:             l.LoanID,
		UserID:         l.UserID,
		Title:          l.Title,
		Amount:         l.Amount,
		InterestRate:   l.InterestRate,
		TermMonths:     l.TermMonths,
		StartDate:      l.StartDate,
		Description:    l.Description,
		CreatedAt:      l.CreatedAt,
		TotalAmount:    l.TotalAmount,
		MonthlyPayment: l.MonthlyPayment,
		Status:         string(l.Status),
	}
}
