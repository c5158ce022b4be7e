package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const idempKeyPrefix = "idemp:loansyncro"

var errNoIdempotencyKey = errors.New("no Idempotency-Key")

type idempEntry struct {
	InProgress  bool      `json:"in_progress"`
	Code        int       `json:"code"`
	Body        []byte    `json:"body"`
	BodySHA256  string    `json:"body_sha256"`
	RequestID   string    `json:"request_id"`
	RequestAtMS int64     `json:"request_at_ms"`
	CreatedAt   time.Time `json:"created_at"`
}

func (e idempEntry) final() bool { return !e.InProgress && e.Code != 0 }

// idempRequest is what the middleware needs from an incoming keyed request.
type idempRequest struct {
	id      string
	at      time.Time
	bodySum string
}

// readIdempRequest checks the idempotency headers and hashes the body,
// leaving req.Body readable for the handler. errNoIdempotencyKey means the
// request is not keyed at all.
func readIdempRequest(req *http.Request, now time.Time) (idempRequest, error) {
	id := strings.TrimSpace(req.Header.Get(HeaderIdempotencyKey))
	if id == "" {
		return idempRequest{}, errNoIdempotencyKey
	}
	if !validIdempotencyKey(id) {
		return idempRequest{}, errors.New("invalid Idempotency-Key format")
	}
	at, err := requestTime(req.Header.Get(HeaderRequestAt))
	if err != nil {
		return idempRequest{}, err
	}
	if d := now.Sub(at); d > maxClockSkew || d < -maxClockSkew {
		return idempRequest{}, errors.New("X-Request-At too skewed")
	}

	var body []byte
	if req.Body != nil {
		body, _ = io.ReadAll(req.Body)
	}
	req.Body = io.NopCloser(bytes.NewReader(body))
	sum := sha256.Sum256(body)

	return idempRequest{id: id, at: at, bodySum: hex.EncodeToString(sum[:])}, nil
}

func (r idempRequest) pending() idempEntry {
	return idempEntry{
		InProgress:  true,
		BodySHA256:  r.bodySum,
		RequestID:   r.id,
		RequestAtMS: r.at.UnixMilli(),
		CreatedAt:   time.Now().UTC(),
	}
}

func (r idempRequest) done(code int, body []byte) idempEntry {
	e := r.pending()
	e.InProgress = false
	e.Code = code
	e.Body = body
	return e
}

// validIdempotencyKey accepts a lowercase UUID (v1-v5) or 32 lowercase hex
// characters.
func validIdempotencyKey(id string) bool {
	if id != strings.ToLower(id) {
		return false
	}
	switch len(id) {
	case 32:
		_, err := hex.DecodeString(id)
		return err == nil
	case 36:
		u, err := uuid.Parse(id)
		return err == nil && u.Version() >= 1 && u.Version() <= 5
	}
	return false
}

// requestTime parses X-Request-At. Epoch values above 1e12 are taken as
// milliseconds. Timestamps without a zone are rejected.
func requestTime(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, errors.New("missing X-Request-At")
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		if n > 1e12 {
			return time.UnixMilli(n).UTC(), nil
		}
		return time.Unix(n, 0).UTC(), nil
	}
	// RFC3339Nano also accepts values without fractional seconds
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, errors.New("X-Request-At must be epoch (s/ms) or RFC3339 with timezone")
	}
	return t.UTC(), nil
}

// idempStore keeps one entry per keyed request in redis. An entry is
// written in-progress with a short TTL, then replaced by the final response
// under the configured TTL.
type idempStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func (s idempStore) key(method, path, caller, id string) string {
	return strings.Join([]string{idempKeyPrefix, strings.ToLower(method), path, caller, id}, ":")
}

// reserve reports false when the key is already taken.
func (s idempStore) reserve(ctx context.Context, key string, e idempEntry) (bool, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return false, err
	}
	return s.rdb.SetNX(ctx, key, payload, provisionalLockTTL).Result()
}

// lookup reports found=false when the key expired after reserve lost.
func (s idempStore) lookup(ctx context.Context, key string) (idempEntry, bool, error) {
	var e idempEntry
	raw, err := s.rdb.Get(ctx, key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return e, false, nil
	case err != nil:
		return e, false, err
	}
	if err := json.Unmarshal(raw, &e); err != nil {
		return e, false, err
	}
	return e, true, nil
}

func (s idempStore) finish(ctx context.Context, key string, e idempEntry) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, key, payload, s.ttl).Err()
}

func (s idempStore) release(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, key).Err()
}
