package user

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrNotFound   = errors.New("user not found")
	ErrEmailTaken = errors.New("email already registered")
)

// Table: users
type User struct {
	ID           uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	UserID       string    `gorm:"column:user_id;size:32;not null;uniqueIndex:ux_users_user_id"`
	Email        string    `gorm:"column:email;size:255;not null;uniqueIndex:ux_users_email"`
	FullName     string    `gorm:"column:full_name;size:255"`
	PasswordHash string    `gorm:"column:password_hash;size:255"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (User) TableName() string { return "users" }

// Identity is what a verified bearer token tells us about the caller.
type Identity struct {
	ID       string
	Email    string
	FullName string
}

func NormalizeEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
