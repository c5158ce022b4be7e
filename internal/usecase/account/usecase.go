package account

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"loansyncro/internal/domain/apperr"
	"loansyncro/internal/domain/user"
	"loansyncro/pkg/id"
)

const MinPasswordLen = 8

type TokenIssuer interface {
	Issue(id user.Identity) (token string, expiresAt time.Time, err error)
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

type Usecase struct {
	users  user.Repository
	tokens TokenIssuer
	hasher PasswordHasher
	now    func() time.Time
}

func NewUsecase(users user.Repository, tokens TokenIssuer, hasher PasswordHasher) *Usecase {
	return &Usecase{users: users, tokens: tokens, hasher: hasher, now: time.Now}
}

func (u *Usecase) Register(ctx context.Context, in RegisterInput) (*UserDTO, error) {
	email := user.NormalizeEmail(in.Email)
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return nil, apperr.Invalid("email is not a valid address")
	}
	if len(in.Password) < MinPasswordLen {
		return nil, apperr.Invalid("password must be at least %d characters", MinPasswordLen)
	}

	hash, err := u.hasher.Hash(in.Password)
	if err != nil {
		return nil, apperr.Dependency("hash password", err)
	}
	usr := &user.User{
		UserID:       id.NewID32(),
		Email:        email,
		FullName:     strings.TrimSpace(in.FullName),
		PasswordHash: hash,
	}
	if err := u.users.Create(ctx, usr); err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			return nil, apperr.New(apperr.ErrConflict, "email already registered")
		}
		return nil, apperr.Dependency("create user", err)
	}
	return toDTO(usr), nil
}

// Login checks the password and issues a bearer token. Unknown emails and
// wrong passwords fail the same way.
func (u *Usecase) Login(ctx context.Context, in LoginInput) (*TokenDTO, error) {
	bad := apperr.New(apperr.ErrUnauthorized, "incorrect email or password")

	usr, err := u.users.GetByEmail(ctx, in.Email)
	switch {
	case errors.Is(err, user.ErrNotFound):
		return nil, bad
	case err != nil:
		return nil, apperr.Dependency("load user", err)
	}
	if usr.PasswordHash == "" || u.hasher.Compare(usr.PasswordHash, in.Password) != nil {
		return nil, bad
	}

	tok, exp, err := u.tokens.Issue(user.Identity{ID: usr.UserID, Email: usr.Email, FullName: usr.FullName})
	if err != nil {
		return nil, apperr.Dependency("issue token", err)
	}
	return &TokenDTO{
		AccessToken: tok,
		TokenType:   "bearer",
		ExpiresIn:   int64(exp.Sub(u.now()).Seconds()),
		User:        *toDTO(usr),
	}, nil
}

func (u *Usecase) Me(ctx context.Context, userID string) (*UserDTO, error) {
	usr, err := u.users.GetByUserID(ctx, userID)
	switch {
	case errors.Is(err, user.ErrNotFound):
		return nil, apperr.New(apperr.ErrNotFound, "user not found")
	case err != nil:
		return nil, apperr.Dependency("load user", err)
	}
	return toDTO(usr), nil
}

// Provision resolves a verified token identity to a stored user, creating
// the profile the first time the identity is seen.
func (u *Usecase) Provision(ctx context.Context, ident user.Identity) (user.Identity, error) {
	if ident.ID == "" {
		return user.Identity{}, apperr.New(apperr.ErrUnauthorized, "token has no subject")
	}
	usr, err := u.users.GetByUserID(ctx, ident.ID)
	if err == nil {
		return user.Identity{ID: usr.UserID, Email: usr.Email, FullName: usr.FullName}, nil
	}
	if !errors.Is(err, user.ErrNotFound) {
		return user.Identity{}, apperr.Dependency("load user", err)
	}

	if ident.Email == "" {
		return user.Identity{}, apperr.New(apperr.ErrUnauthorized, "token has no email")
	}
	usr = &user.User{UserID: ident.ID, Email: ident.Email, FullName: ident.FullName}
	if err := u.users.Create(ctx, usr); err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			return user.Identity{}, apperr.New(apperr.ErrUnauthorized, "token subject does not match the account for this email")
		}
		return user.Identity{}, apperr.Dependency("provision user", err)
	}
	return user.Identity{ID: usr.UserID, Email: usr.Email, FullName: usr.FullName}, nil
}
