package gormrepo

import (
	"context"

	repaymentDomain "loansyncro/internal/domain/repayment"

	"gorm.io/gorm"
)

type RepaymentRepository struct{ db *gorm.DB }

func NewRepaymentRepository(db *gorm.DB) *RepaymentRepository {
	return &RepaymentRepository{db: db}
}

func (r *RepaymentRepository) Create(ctx context.Context, p *repaymentDomain.Repayment) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *RepaymentRepository) ListByLoanID(ctx context.Context, loanID string) ([]repaymentDomain.Repayment, error) {
	var out []repaymentDomain.Repayment
	res := r.db.WithContext(ctx).
		Where("loan_id = ?", loanID).
		Order("payment_date DESC, id ASC").
		Find(&out)
	return out, res.Error
}

func (r *RepaymentRepository) ListByLoanIDs(ctx context.Context, loanIDs []string) ([]repaymentDomain.Repayment, error) {
	if len(loanIDs) == 0 {
		return nil, nil
	}
	var out []repaymentDomain.Repayment
	res := r.db.WithContext(ctx).
		Where("loan_id IN ?", loanIDs).
		Order("payment_date DESC, id ASC").
		Find(&out)
	return out, res.Error
}
