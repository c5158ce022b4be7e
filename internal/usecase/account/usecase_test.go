package account

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"loansyncro/internal/domain/apperr"
	"loansyncro/internal/domain/user"
	"loansyncro/internal/testutil/memstore"
)

// plainHasher keeps tests fast; bcrypt is covered in infrastructure/auth.
type plainHasher struct{}

func (plainHasher) Hash(p string) (string, error) { return "h:" + p, nil }
func (plainHasher) Compare(h, p string) error {
	if h != "h:"+p {
		return errors.New("mismatch")
	}
	return nil
}

type stubIssuer struct {
	exp time.Time
	err error
	got user.Identity
}

func (s *stubIssuer) Issue(id user.Identity) (string, time.Time, error) {
	s.got = id
	return "tok-" + id.ID, s.exp, s.err
}

func newUsecase() (*Usecase, *stubIssuer, *memstore.Store) {
	store := memstore.New()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	iss := &stubIssuer{exp: now.Add(30 * time.Minute)}
	uc := NewUsecase(store.Users(), iss, plainHasher{})
	uc.now = func() time.Time { return now }
	return uc, iss, store
}

func TestRegisterAndLogin(t *testing.T) {
	uc, iss, _ := newUsecase()
	ctx := context.Background()

	u, err := uc.Register(ctx, RegisterInput{Email: " Ann@Example.com", Password: "s3cret-pass", FullName: "Ann Lee "})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if len(u.ID) != 32 || u.Email != "ann@example.com" || u.FullName != "Ann Lee" {
		t.Fatalf("unexpected user: %+v", u)
	}

	tok, err := uc.Login(ctx, LoginInput{Email: "ann@example.com", Password: "s3cret-pass"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if tok.AccessToken != "tok-"+u.ID || tok.TokenType != "bearer" || tok.ExpiresIn != 1800 {
		t.Fatalf("unexpected token: %+v", tok)
	}
	if iss.got.Email != "ann@example.com" || iss.got.FullName != "Ann Lee" {
		t.Fatalf("issuer got %+v", iss.got)
	}
}

func TestRegister_Rejections(t *testing.T) {
	uc, _, _ := newUsecase()
	ctx := context.Background()

	if _, err := uc.Register(ctx, RegisterInput{Email: "not-an-email", Password: "longenough"}); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Fatalf("bad email: want ErrInvalidInput, got %v", err)
	}
	if _, err := uc.Register(ctx, RegisterInput{Email: "a@b.co", Password: "short"}); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Fatalf("short password: want ErrInvalidInput, got %v", err)
	}
	if _, err := uc.Register(ctx, RegisterInput{Email: "a@b.co", Password: strings.Repeat("x", 8)}); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if _, err := uc.Register(ctx, RegisterInput{Email: "A@B.co", Password: strings.Repeat("y", 8)}); !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("duplicate: want ErrConflict, got %v", err)
	}
}

func TestLogin_Failures(t *testing.T) {
	uc, iss, _ := newUsecase()
	ctx := context.Background()
	_, _ = uc.Register(ctx, RegisterInput{Email: "ann@example.com", Password: "s3cret-pass"})

	for name, in := range map[string]LoginInput{
		"unknown email":  {Email: "bob@example.com", Password: "s3cret-pass"},
		"wrong password": {Email: "ann@example.com", Password: "nope-nope"},
	} {
		_, err := uc.Login(ctx, in)
		if !errors.Is(err, apperr.ErrUnauthorized) {
			t.Fatalf("%s: want ErrUnauthorized, got %v", name, err)
		}
		if apperr.Detail(err) != "incorrect email or password" {
			t.Fatalf("%s: detail leaks which part failed: %q", name, apperr.Detail(err))
		}
	}

	iss.err = errors.New("kms down")
	if _, err := uc.Login(ctx, LoginInput{Email: "ann@example.com", Password: "s3cret-pass"}); !errors.Is(err, apperr.ErrDependency) {
		t.Fatalf("issuer failure: want ErrDependency, got %v", err)
	}
}

func TestProvision_FirstSightCreatesProfile(t *testing.T) {
	uc, _, store := newUsecase()
	ctx := context.Background()
	ident := user.Identity{ID: "cccccccccccccccccccccccccccccccc", Email: "cam@example.com", FullName: "Cam"}

	got, err := uc.Provision(ctx, ident)
	if err != nil || got != ident {
		t.Fatalf("Provision: %+v, %v", got, err)
	}
	if _, err := store.Users().GetByUserID(ctx, ident.ID); err != nil {
		t.Fatalf("profile not stored: %v", err)
	}

	// second sight returns the stored profile, not the token's claims
	again, err := uc.Provision(ctx, user.Identity{ID: ident.ID, Email: "cam@example.com", FullName: "Renamed"})
	if err != nil || again.FullName != "Cam" {
		t.Fatalf("second Provision: %+v, %v", again, err)
	}

	me, err := uc.Me(ctx, ident.ID)
	if err != nil || me.Email != "cam@example.com" {
		t.Fatalf("Me: %+v, %v", me, err)
	}
}

func TestProvision_Rejections(t *testing.T) {
	uc, _, _ := newUsecase()
	ctx := context.Background()
	reg, _ := uc.Register(ctx, RegisterInput{Email: "ann@example.com", Password: "s3cret-pass"})

	if _, err := uc.Provision(ctx, user.Identity{}); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Fatalf("no subject: want ErrUnauthorized, got %v", err)
	}
	if _, err := uc.Provision(ctx, user.Identity{ID: "dddddddddddddddddddddddddddddddd"}); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Fatalf("no email: want ErrUnauthorized, got %v", err)
	}
	// a different subject claiming an existing account's email
	_, err := uc.Provision(ctx, user.Identity{ID: "eeeeeeeeeeeeeeeeeeeeeeeeeeeeeeee", Email: reg.Email})
	if !errors.Is(err, apperr.ErrUnauthorized) {
		t.Fatalf("email clash: want ErrUnauthorized, got %v", err)
	}
}

func TestMe_NotFound(t *testing.T) {
	uc, _, _ := newUsecase()
	if _, err := uc.Me(context.Background(), "nobody"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}
