package loan

import (
	"math"

	"loansyncro/internal/domain/apperr"
)

// Terms are the inputs of the annuity formula.
type Terms struct {
	Principal         float64
	AnnualRatePercent float64
	TermMonths        int
}

type Schedule struct {
	MonthlyPayment float64
	TotalAmount    float64
}

// Amortize computes the fixed monthly payment and total payable for a
// fully amortizing loan. A zero rate falls back to straight-line repayment.
func Amortize(t Terms) (Schedule, error) {
	if err := t.Validate(); err != nil {
		return Schedule{}, err
	}

	n := float64(t.TermMonths)
	r := t.AnnualRatePercent / 100 / 12

	payment := t.Principal / n
	if r > 0 {
		// growth == 1 only when r is below float precision
		if growth := math.Pow(1+r, n); growth > 1 {
			payment = t.Principal * r * growth / (growth - 1)
		}
	}
	total := payment * n
	if !finite(payment) || !finite(total) {
		return Schedule{}, apperr.Invalid("loan terms are out of range: the repayment amount cannot be computed")
	}
	return Schedule{MonthlyPayment: payment, TotalAmount: total}, nil
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

func (t Terms) Validate() error {
	switch {
	case math.IsNaN(t.Principal) || math.IsInf(t.Principal, 0) || t.Principal <= 0:
		return apperr.Invalid("amount must be greater than 0")
	case math.IsNaN(t.AnnualRatePercent) || math.IsInf(t.AnnualRatePercent, 0) || t.AnnualRatePercent < 0:
		return apperr.Invalid("interest_rate must be greater than or equal to 0")
	case t.TermMonths <= 0:
		return apperr.Invalid("term_months must be greater than 0")
	}
	return nil
}
