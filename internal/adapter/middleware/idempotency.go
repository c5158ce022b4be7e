package middleware

import (
	"bytes"
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

const (
	HeaderIdempotencyKey = "Idempotency-Key"
	HeaderRequestAt      = "X-Request-At"
	HeaderReplayed       = "Idempotent-Replayed"

	// How long we hold the "in-progress" lock before it must be refreshed by finishing the handler.
	provisionalLockTTL = 60 * time.Second
	// Allowed client/server clock skew for X-Request-At (in UTC).
	maxClockSkew = 10 * time.Minute
	storeTimeout = 2 * time.Second
)

type respRecorder struct {
	w    http.ResponseWriter
	buf  bytes.Buffer
	code int
}

func (r *respRecorder) Header() http.Header { return r.w.Header() }
func (r *respRecorder) Write(b []byte) (int, error) {
	r.buf.Write(b)
	return r.w.Write(b)
}
func (r *respRecorder) WriteHeader(statusCode int) { r.code = statusCode; r.w.WriteHeader(statusCode) }

// Idempotency replays the stored response of a mutating request retried with
// the same Idempotency-Key. Requests without the header pass straight through.
// Keys are scoped to method, request path and caller, so it must run after Auth.
// X-Request-At is epoch seconds or milliseconds, or RFC3339 with a zone.
func Idempotency(rdb *redis.Client, ttl time.Duration) echo.MiddlewareFunc {
	store := idempStore{rdb: rdb, ttl: ttl}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			switch req.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				return next(c)
			}

			ir, err := readIdempRequest(req, time.Now().UTC())
			switch {
			case errors.Is(err, errNoIdempotencyKey):
				return next(c)
			case err != nil:
				return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
			}

			// the concrete path, so /loans/A and /loans/B never share a key
			key := store.key(req.Method, req.URL.Path, callerScope(c), ir.id)
			ctx, cancel := context.WithTimeout(req.Context(), storeTimeout)
			defer cancel()

			claimed, err := store.reserve(ctx, key, ir.pending())
			if err != nil {
				return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "idempotency store unavailable"})
			}
			if !claimed {
				return replay(ctx, c, store, key, ir)
			}

			rec := &respRecorder{w: c.Response().Writer, code: http.StatusOK}
			c.Response().Writer = rec
			if err := next(c); err != nil {
				c.Error(err)
			}

			// server errors are not final; free the key so the client can retry
			if rec.code >= http.StatusInternalServerError {
				if err := store.release(context.Background(), key); err != nil {
					log.Printf("idempotency: release %s: %v", key, err)
				}
				return nil
			}
			if err := store.finish(context.Background(), key, ir.done(rec.code, rec.buf.Bytes())); err != nil {
				log.Printf("idempotency: save %s: %v", key, err)
			}
			return nil
		}
	}
}

// replay answers a request whose key is already taken.
func replay(ctx context.Context, c echo.Context, store idempStore, key string, ir idempRequest) error {
	cur, found, err := store.lookup(ctx, key)
	if err != nil {
		log.Printf("idempotency: load %s: %v", key, err)
	}
	if found && cur.BodySHA256 != ir.bodySum {
		return c.JSON(http.StatusConflict, map[string]string{"error": "Idempotency-Key reused with different body"})
	}
	if found && cur.final() {
		c.Response().Header().Set(HeaderReplayed, "true")
		return c.Blob(cur.Code, echo.MIMEApplicationJSON, cur.Body)
	}
	return c.JSON(http.StatusConflict, map[string]string{"error": "request is already in progress"})
}

func callerScope(c echo.Context) string {
	if id := CurrentUserID(c); id != "" {
		return id
	}
	return "anonymous"
}
