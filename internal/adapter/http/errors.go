package http

import (
	"errors"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"loansyncro/internal/domain/apperr"
)

type ErrorResponse struct {
	Error   string       `json:"error"`
	Kind    string       `json:"kind,omitempty"`
	Details []FieldError `json:"details,omitempty"`
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, apperr.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperr.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, apperr.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, apperr.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError maps a usecase error to its status and body.
func respondError(c echo.Context, err error) error {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Printf("%s %s: %v", c.Request().Method, c.Path(), err)
	}
	return c.JSON(status, ErrorResponse{Error: apperr.Detail(err), Kind: apperr.Kind(err)})
}

// decode binds and validates the request body; a non-nil result is the 400
// payload to send back.
func decode(c echo.Context, req any) *ErrorResponse {
	if err := c.Bind(req); err != nil {
		return &ErrorResponse{Error: "invalid body", Kind: "invalid_input"}
	}
	if err := c.Validate(req); err != nil {
		return &ErrorResponse{Error: "validation failed", Kind: "invalid_input", Details: ToFieldErrors(err)}
	}
	return nil
}
