package user

import "context"

type Repository interface {
	// Create fails with ErrEmailTaken when the email is already in use.
	Create(ctx context.Context, u *User) error
	GetByUserID(ctx context.Context, userID string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
}
