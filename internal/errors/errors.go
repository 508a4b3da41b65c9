package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ===========================================================================
// Application errors
// Sentinel errors mapped to HTTP status codes. Services wrap these with
// context via Wrap(); handlers translate them with StatusCode()/ErrorCode().
// ===========================================================================

var (
	// ErrNotFound resource does not exist
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput request payload failed validation
	ErrInvalidInput = errors.New("invalid input")

	// ErrDuplicateEntry unique constraint violation
	ErrDuplicateEntry = errors.New("duplicate entry")

	// ErrConflict concurrent update conflict
	ErrConflict = errors.New("conflict")

	// ErrInternal internal server error
	ErrInternal = errors.New("internal server error")

	// ErrExternal upstream service failure (messaging gateway, centrifugo)
	ErrExternal = errors.New("external service error")

	// ErrTimeout request timed out
	ErrTimeout = errors.New("timeout")
)

// AppError carries a user-facing message alongside the wrapped sentinel.
type AppError struct {
	Err        error
	Message    string
	Code       string
	StatusCode int
}

func (e *AppError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Err.Error()
}

// Unwrap supports errors.Is/As on the wrapped sentinel.
func (e *AppError) Unwrap() error {
	return e.Err
}

// New builds an AppError from a sentinel error.
func New(err error, message string) *AppError {
	return &AppError{
		Err:        err,
		Message:    message,
		StatusCode: StatusCode(err),
		Code:       ErrorCode(err),
	}
}

// Wrap adds context while keeping the error chain intact.
func Wrap(err error, message string) error {
	return fmt.Errorf("%s: %w", message, err)
}

// StatusCode maps an error to an HTTP status code.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrDuplicateEntry):
		return http.StatusConflict
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, ErrExternal):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// ErrorCode maps an error to a machine-readable code string.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, ErrInvalidInput):
		return "INVALID_INPUT"
	case errors.Is(err, ErrDuplicateEntry):
		return "DUPLICATE_ENTRY"
	case errors.Is(err, ErrConflict):
		return "CONFLICT"
	case errors.Is(err, ErrTimeout):
		return "TIMEOUT"
	case errors.Is(err, ErrExternal):
		return "EXTERNAL_ERROR"
	default:
		return "INTERNAL_ERROR"
	}
}

// Is re-exports errors.Is for call sites that alias this package.
func Is(err, target error) bool {
	return errors.Is(err, target)
}
