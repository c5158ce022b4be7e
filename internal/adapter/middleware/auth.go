package middleware

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"loansyncro/internal/domain/apperr"
	"loansyncro/internal/domain/user"
)

const ContextUserKey = "auth.user"

type TokenVerifier interface {
	Verify(raw string) (user.Identity, error)
}

// IdentityResolver maps a verified identity onto a stored user,
// provisioning one on first sight.
type IdentityResolver interface {
	Provision(ctx context.Context, id user.Identity) (user.Identity, error)
}

// Auth requires "Authorization: Bearer <token>" and stores the resolved
// identity on the context under ContextUserKey.
func Auth(v TokenVerifier, r IdentityResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := bearer(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				return unauthorized(c, "missing or invalid Authorization header")
			}
			ident, err := v.Verify(raw)
			if err != nil {
				return unauthorized(c, "invalid token")
			}
			if r != nil {
				resolved, err := r.Provision(c.Request().Context(), ident)
				switch {
				case errors.Is(err, apperr.ErrUnauthorized):
					return unauthorized(c, apperr.Detail(err))
				case err != nil:
					log.Printf("auth: resolve identity %s: %v", ident.ID, err)
					return c.JSON(http.StatusInternalServerError, map[string]string{
						"error": "internal server error",
						"kind":  apperr.Kind(err),
					})
				}
				ident = resolved
			}
			c.Set(ContextUserKey, ident)
			return next(c)
		}
	}
}

func CurrentUser(c echo.Context) (user.Identity, bool) {
	u, ok := c.Get(ContextUserKey).(user.Identity)
	return u, ok && u.ID != ""
}

// CurrentUserID is "" outside an authenticated route.
func CurrentUserID(c echo.Context) string {
	u, _ := CurrentUser(c)
	return u.ID
}

func bearer(h string) (string, bool) {
	scheme, tok, ok := strings.Cut(strings.TrimSpace(h), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	tok = strings.TrimSpace(tok)
	return tok, tok != ""
}

func unauthorized(c echo.Context, msg string) error {
	c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
	return c.JSON(http.StatusUnauthorized, map[string]string{"error": msg, "kind": "unauthorized"})
}
