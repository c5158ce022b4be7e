package http

import (
	"context"
	"encoding/json"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"loansyncro/internal/adapter/middleware"
	"loansyncro/internal/domain/user"
	"loansyncro/internal/infrastructure/auth"
	"loansyncro/internal/testutil/memstore"
	"loansyncro/internal/testutil/notifymock"
	"loansyncro/internal/usecase/account"
	loanuc "loansyncro/internal/usecase/loan"
	"loansyncro/internal/usecase/repayment"
)

type app struct {
	e      *echo.Echo
	tokens *auth.TokenService
}

func newApp(t *testing.T) *app {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	s := memstore.New()
	notes := &notifymock.Recorder{}
	tokens := auth.NewTokenService(testSecret, time.Hour)
	accounts := account.NewUsecase(s.Users(), tokens, &auth.BcryptHasher{Cost: bcrypt.MinCost})
	repUC := repayment.NewUsecase(s.Loans(), s.Repayments(), s, notes)
	loanUC := loanuc.NewUsecase(s.Loans(), s, notes, repUC)

	e := echo.New()
	e.Validator = NewValidator()
	Register(e, Handlers{
		Health:     NewHandler(Check{Name: "redis", Ping: func(ctx context.Context) error { return rdb.Ping(ctx).Err() }}),
		Accounts:   NewAccountHandler(accounts),
		Loans:      NewLoanHandler(loanUC),
		Repayments: NewRepaymentHandler(repUC),
	}, middleware.Auth(tokens, accounts), middleware.Idempotency(rdb, time.Minute))
	return &app{e: e, tokens: tokens}
}

func (a *app) do(method, path, token string, body any, hdr map[string]string) *httptest.ResponseRecorder {
	var req *stdhttp.Request
	if body == nil {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, mustJSON(body))
	}
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func (a *app) login(t *testing.T, email string) string {
	t.Helper()
	creds := map[string]any{"email": email, "password": "s3cretpass"}
	if rec := a.do(stdhttp.MethodPost, "/auth/register", "", creds, nil); rec.Code != stdhttp.StatusCreated {
		t.Fatalf("register %s: %d %s", email, rec.Code, rec.Body.String())
	}
	rec := a.do(stdhttp.MethodPost, "/auth/login", "", creds, nil)
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("login %s: %d %s", email, rec.Code, rec.Body.String())
	}
	var tok account.TokenDTO
	_ = json.Unmarshal(rec.Body.Bytes(), &tok)
	return tok.AccessToken
}

func TestRouter_HealthIsPublic(t *testing.T) {
	a := newApp(t)
	rec := a.do(stdhttp.MethodGet, "/health", "", nil, nil)
	if rec.Code != stdhttp.StatusOK || !strings.Contains(rec.Body.String(), `"redis":"up"`) {
		t.Fatalf("health = %d %s", rec.Code, rec.Body.String())
	}
}

func TestRouter_RequiresBearer(t *testing.T) {
	a := newApp(t)
	for _, p := range []string{"/loans", "/repayments", "/repayments/summary", "/users/me"} {
		if rec := a.do(stdhttp.MethodGet, p, "", nil, nil); rec.Code != stdhttp.StatusUnauthorized {
			t.Fatalf("%s without token = %d, want 401", p, rec.Code)
		}
		if rec := a.do(stdhttp.MethodGet, p, "garbage", nil, nil); rec.Code != stdhttp.StatusUnauthorized {
			t.Fatalf("%s with bad token = %d, want 401", p, rec.Code)
		}
	}
}

func TestRouter_LoanLifecycle(t *testing.T) {
	a := newApp(t)
	ann := a.login(t, "ann@example.com")
	ben := a.login(t, "ben@example.com")

	rec := a.do(stdhttp.MethodPost, "/loans", ann, map[string]any{
		"title": "Laptop", "amount": 1200, "interest_rate": 0, "term_months": 12, "start_date": "2025-01-01",
	}, nil)
	if rec.Code != stdhttp.StatusCreated {
		t.Fatalf("create loan: %d %s", rec.Code, rec.Body.String())
	}
	var l loanuc.LoanDTO
	_ = json.Unmarshal(rec.Body.Bytes(), &l)

	if rec := a.do(stdhttp.MethodGet, "/loans/"+l.ID, ben, nil, nil); rec.Code != stdhttp.StatusForbidden {
		t.Fatalf("ben reads ann's loan = %d, want 403", rec.Code)
	}
	if rec := a.do(stdhttp.MethodPost, "/repayments", ben, map[string]any{"loan_id": l.ID, "amount": 1200, "payment_date": "2025-02-01"}, nil); rec.Code != stdhttp.StatusForbidden {
		t.Fatalf("ben pays ann's loan = %d, want 403", rec.Code)
	}

	for _, d := range []string{"2025-01-01", "2025-03-01", "2025-02-01"} {
		if rec := a.do(stdhttp.MethodPost, "/repayments", ann, map[string]any{"loan_id": l.ID, "amount": 400, "payment_date": d}, nil); rec.Code != stdhttp.StatusCreated {
			t.Fatalf("repay %s: %d %s", d, rec.Code, rec.Body.String())
		}
	}

	rec = a.do(stdhttp.MethodGet, "/loans/"+l.ID, ann, nil, nil)
	if !strings.Contains(rec.Body.String(), `"status":"paid"`) {
		t.Fatalf("loan should be paid: %s", rec.Body.String())
	}

	rec = a.do(stdhttp.MethodGet, "/repayments/loan/"+l.ID, ann, nil, nil)
	var rs []repayment.RepaymentDTO
	_ = json.Unmarshal(rec.Body.Bytes(), &rs)
	if len(rs) != 3 || rs[0].PaymentDate.Format("2006-01-02") != "2025-03-01" || rs[2].PaymentDate.Format("2006-01-02") != "2025-01-01" {
		t.Fatalf("unexpected order: %+v", rs)
	}

	rec = a.do(stdhttp.MethodGet, "/repayments/summary", ann, nil, nil)
	var s repayment.SummaryDTO
	_ = json.Unmarshal(rec.Body.Bytes(), &s)
	if s.TotalLoans != 1 || s.TotalRepaid != 1200 || s.OutstandingAmount != 0 {
		t.Fatalf("unexpected summary: %+v", s)
	}

	if rec := a.do(stdhttp.MethodDelete, "/loans/"+l.ID, ann, nil, nil); rec.Code != stdhttp.StatusOK {
		t.Fatalf("delete: %d", rec.Code)
	}
	if rec := a.do(stdhttp.MethodGet, "/loans/"+l.ID, ann, nil, nil); rec.Code != stdhttp.StatusNotFound {
		t.Fatalf("deleted loan = %d, want 404", rec.Code)
	}
}

func TestRouter_IdempotentCreate(t *testing.T) {
	a := newApp(t)
	ann := a.login(t, "ann@example.com")
	body := map[string]any{"title": "Bike", "amount": 500, "interest_rate": 5, "term_months": 6, "start_date": "2025-01-01"}
	hdr := map[string]string{
		middleware.HeaderIdempotencyKey: "3f9a6a1b-3d54-4fbe-8b3a-6b3e8d6b2c88",
		middleware.HeaderRequestAt:      time.Now().UTC().Format(time.RFC3339),
	}

	first := a.do(stdhttp.MethodPost, "/loans", ann, body, hdr)
	second := a.do(stdhttp.MethodPost, "/loans", ann, body, hdr)
	if first.Code != stdhttp.StatusCreated || second.Code != stdhttp.StatusCreated {
		t.Fatalf("codes = %d / %d", first.Code, second.Code)
	}
	if first.Body.String() != second.Body.String() {
		t.Fatalf("replay differs:\n%s\n%s", first.Body.String(), second.Body.String())
	}

	rec := a.do(stdhttp.MethodGet, "/loans", ann, nil, nil)
	var loans []loanuc.LoanDTO
	_ = json.Unmarshal(rec.Body.Bytes(), &loans)
	if len(loans) != 1 {
		t.Fatalf("loans = %d, want 1", len(loans))
	}
}

func TestRouter_FirstSightProvisioning(t *testing.T) {
	a := newApp(t)
	// token minted elsewhere for a user this service has never stored
	tok, _, err := a.tokens.Issue(identity("cccccccccccccccccccccccccccccccc", "carl@example.com"))
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	rec := a.do(stdhttp.MethodGet, "/users/me", tok, nil, nil)
	if rec.Code != stdhttp.StatusOK || !strings.Contains(rec.Body.String(), "carl@example.com") {
		t.Fatalf("me = %d %s", rec.Code, rec.Body.String())
	}
}

func identity(id, email string) user.Identity { return user.Identity{ID: id, Email: email} }
