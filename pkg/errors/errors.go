package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode classifies an application error. Every category is terminal to
// the caller; retry policy belongs to the transport layer.
type ErrorCode int

const (
	ErrUnauthenticated ErrorCode = iota + 1000
	ErrTokenExpired
	ErrForbidden
	ErrNotFound
	ErrConflict
	ErrValidation
	ErrInternal
)

// StatusTokenExpired mirrors the non-standard status the original API used
// so clients can tell "re-authenticate" apart from a plain 401.
const StatusTokenExpired = 498

// AppError represents an application error
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// StatusCode maps the error category to an HTTP status.
func (e *AppError) StatusCode() int {
	switch e.Code {
	case ErrUnauthenticated:
		return http.StatusUnauthorized
	case ErrTokenExpired:
		return StatusTokenExpired
	case ErrForbidden:
		return http.StatusForbidden
	case ErrNotFound:
		return http.StatusNotFound
	case ErrConflict:
		return http.StatusConflict
	case ErrValidation:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// Error constructors
func Unauthenticated(message string, err error) *AppError {
	if message == "" {
		message = "could not validate credentials"
	}
	return &AppError{Code: ErrUnauthenticated, Message: message, Err: err}
}

func TokenExpired(err error) *AppError {
	return &AppError{Code: ErrTokenExpired, Message: "the authentication token has expired", Err: err}
}

func Forbidden(message string, err error) *AppError {
	if message == "" {
		message = "permission denied"
	}
	return &AppError{Code: ErrForbidden, Message: message, Err: err}
}

func NotFound(resource string, err error) *AppError {
	return &AppError{Code: ErrNotFound, Message: fmt.Sprintf("%s not found", resource), Err: err}
}

func Conflict(message string, err error) *AppError {
	return &AppError{Code: ErrConflict, Message: message, Err: err}
}

func Validation(message string, err error) *AppError {
	return &AppError{Code: ErrValidation, Message: message, Err: err}
}

func Internal(err error) *AppError {
	return &AppError{Code: ErrInternal, Message: "internal server error", Err: err}
}

// AsAppError unwraps err to the first AppError in its chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// Is reports whether err carries the given error code.
func Is(err error, code ErrorCode) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}
