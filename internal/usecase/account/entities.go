package account

import (
	"time"

	"loansyncro/internal/domain/user"
)

type RegisterInput struct {
	Email    string
	Password string
	FullName string
}

type LoginInput struct {
	Email    string
	Password string
}

type UserDTO struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	CreatedAt time.Time `json:"created_at"`
}

type TokenDTO struct {
	AccessToken string  `json:"access_token"`
	TokenType   string  `json:"token_type"`
	ExpiresIn   int64   `json:"expires_in"` // seconds
	User        UserDTO `json:"user"`
}

func toDTO(u *user.User) *UserDTO {
	return &UserDTO{ID: u.UserID, Email: u.Email, FullName: u.FullName, CreatedAt: u.CreatedAt}
}
