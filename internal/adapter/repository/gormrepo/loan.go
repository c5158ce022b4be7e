package gormrepo

import (
	"context"
	"errors"

	loanDomain "loansyncro/internal/domain/loan"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LoanRepository struct{ db *gorm.DB }

func NewLoanRepository(db *gorm.DB) *LoanRepository { return &LoanRepository{db: db} }

func (r *LoanRepository) Create(ctx context.Context, l *loanDomain.Loan) error {
	return r.db.WithContext(ctx).Create(l).Error
}

// detailColumns are the columns an owner edit may change. status belongs to
// the repayment recompute and is never part of this list.
var detailColumns = []string{
	"title", "amount", "interest_rate", "term_months", "start_date",
	"description", "total_amount", "monthly_payment", "updated_at",
}

func (r *LoanRepository) UpdateDetails(ctx context.Context, l *loanDomain.Loan) error {
	res := r.db.WithContext(ctx).Model(l).Select(detailColumns).Updates(l)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return loanDomain.ErrNotFound
	}
	return nil
}

func (r *LoanRepository) UpdateStatus(ctx context.Context, l *loanDomain.Loan) error {
	res := r.db.WithContext(ctx).Model(l).Update("status", l.Status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return loanDomain.ErrNotFound
	}
	return nil
}

func (r *LoanRepository) GetByLoanID(ctx context.Context, loanID string) (*loanDomain.Loan, error) {
	var out loanDomain.Loan
	res := r.db.WithContext(ctx).Where("loan_id = ?", loanID).First(&out)
	if err := notFound(res.Error, loanDomain.ErrNotFound); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *LoanRepository) GetByLoanIDForUpdate(ctx context.Context, loanID string) (*loanDomain.Loan, error) {
	q := r.db.WithContext(ctx)
	// sqlite has no row locks; its single writer already serializes us
	if q.Dialector.Name() != "sqlite" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var out loanDomain.Loan
	res := q.Where("loan_id = ?", loanID).First(&out)
	if err := notFound(res.Error, loanDomain.ErrNotFound); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *LoanRepository) ListByUserID(ctx context.Context, userID string) ([]loanDomain.Loan, error) {
	var out []loanDomain.Loan
	res := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&out)
	return out, res.Error
}

// Delete soft-deletes the loan and records who did it. Repayments are left alone.
func (r *LoanRepository) Delete(ctx context.Context, l *loanDomain.Loan, deletedBy string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(l).Update("deleted_by", deletedBy).Error; err != nil {
			return err
		}
		res := tx.Delete(l)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return loanDomain.ErrNotFound
		}
		l.DeletedBy = deletedBy
		return nil
	})
}

func notFound(err, domainErr error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domainErr
	}
	return err
}
