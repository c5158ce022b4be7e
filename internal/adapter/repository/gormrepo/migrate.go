package gormrepo

import (
	"loansyncro/internal/domain/loan"
	"loansyncro/internal/domain/repayment"
	"loansyncro/internal/domain/user"

	"gorm.io/gorm"
)

// Models lists every table the service owns, in creation order.
func Models() []any {
	return []any{&user.User{}, &loan.Loan{}, &repayment.Repayment{}}
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}
