package gormrepo

import (
	"context"
	"errors"

	userDomain "loansyncro/internal/domain/user"

	"gorm.io/gorm"
)

type UserRepository struct{ db *gorm.DB }

func NewUserRepository(db *gorm.DB) *UserRepository { return &UserRepository{db: db} }

func (r *UserRepository) Create(ctx context.Context, u *userDomain.User) error {
	u.Email = userDomain.NormalizeEmail(u.Email)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&userDomain.User{}).Where("email = ?", u.Email).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return userDomain.ErrEmailTaken
		}
		err := tx.Create(u).Error
		// lost a race against a concurrent insert of the same email
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return userDomain.ErrEmailTaken
		}
		return err
	})
}

func (r *UserRepository) GetByUserID(ctx context.Context, userID string) (*userDomain.User, error) {
	var out userDomain.User
	res := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&out)
	if err := notFound(res.Error, userDomain.ErrNotFound); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*userDomain.User, error) {
	var out userDomain.User
	res := r.db.WithContext(ctx).Where("email = ?", userDomain.NormalizeEmail(email)).First(&out)
	if err := notFound(res.Error, userDomain.ErrNotFound); err != nil {
		return nil, err
	}
	return &out, nil
}
