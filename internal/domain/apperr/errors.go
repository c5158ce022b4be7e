package apperr

import (
	"errors"
	"fmt"
)

// Error kinds. Every error leaving a usecase wraps exactly one of these.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
	ErrConflict     = errors.New("conflict")
	ErrDependency   = errors.New("dependency failure")
)

// Error carries a kind plus a human-readable detail, and optionally the
// underlying cause (store or network error).
type Error struct {
	Kind   error
	Detail string
	Cause  error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Detail + ": " + e.Cause.Error()
	}
	return e.Detail
}

func (e *Error) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Kind, e.Cause}
	}
	return []error{e.Kind}
}

func New(kind error, detail string) error { return &Error{Kind: kind, Detail: detail} }

func Newf(kind error, format string, a ...any) error {
	return &Error{Kind: kind, Detail: fmt.Sprintf(format, a...)}
}

func Invalid(format string, a ...any) error { return Newf(ErrInvalidInput, format, a...) }

// Dependency wraps a store/notifier failure. A nil cause yields nil.
func Dependency(detail string, cause error) error {
	if cause == nil {
		return nil
	}
	return &Error{Kind: ErrDependency, Detail: detail, Cause: cause}
}

// Kind returns the stable, machine-readable name of err's kind.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrConflict):
		return "conflict"
	default:
		return "dependency"
	}
}

// Detail returns the message safe to show to callers. Dependency causes are
// never exposed.
func Detail(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Detail
	}
	if errors.Is(err, ErrDependency) || Kind(err) == "dependency" {
		return "internal server error"
	}
	return err.Error()
}
