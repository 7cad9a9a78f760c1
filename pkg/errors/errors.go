package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel causes. Every AppError built by the constructors below wraps one of
// these, so callers can errors.Is without inspecting codes.
var (
	ErrNotFound     = errors.New("resource not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrBadRequest   = errors.New("bad request")
	ErrInternal     = errors.New("internal server error")
	ErrValidation   = errors.New("validation error")
	ErrUnavailable  = errors.New("service unavailable")
	ErrTooLarge     = errors.New("payload too large")
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("invalid token")
)

// Machine-readable codes sent in the error envelope.
const (
	CodeNotFound     = "NOT_FOUND"
	CodeConflict     = "CONFLICT"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeBadRequest   = "BAD_REQUEST"
	CodeInternal     = "INTERNAL_ERROR"
	CodeValidation   = "VALIDATION_ERROR"
	CodeUnavailable  = "SERVICE_UNAVAILABLE"
	CodeTooLarge     = "PAYLOAD_TOO_LARGE"
	CodeTokenExpired = "TOKEN_EXPIRED"
	CodeTokenInvalid = "TOKEN_INVALID"
)

// AppError is an error with an HTTP status and an envelope code.
type AppError struct {
	Err        error             `json:"-"`
	Message    string            `json:"message"`
	Code       string            `json:"code"`
	StatusCode int               `json:"status_code"`
	Details    map[string]string `json:"details,omitempty"`
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

// New creates an AppError without a cause.
func New(code string, message string, statusCode int) *AppError {
	return Wrap(nil, code, message, statusCode)
}

// Wrap attaches code, message and status to err.
func Wrap(err error, code string, message string, statusCode int) *AppError {
	return &AppError{
		Err:        err,
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
	}
}

// WithDetails sets per-field details, e.g. validation failures.
func (e *AppError) WithDetails(details map[string]string) *AppError {
	e.Details = details
	return e
}

func NotFound(resource string) *AppError {
	return Wrap(ErrNotFound, CodeNotFound, fmt.Sprintf("%s not found", resource), http.StatusNotFound)
}

func Conflict(message string) *AppError {
	return Wrap(ErrConflict, CodeConflict, message, http.StatusConflict)
}

func Unauthorized(message string) *AppError {
	return Wrap(ErrUnauthorized, CodeUnauthorized, message, http.StatusUnauthorized)
}

func BadRequest(message string) *AppError {
	return Wrap(ErrBadRequest, CodeBadRequest, message, http.StatusBadRequest)
}

// BadRequestFrom keeps the cause in the chain so callers can still errors.Is on it.
func BadRequestFrom(err error) *AppError {
	return Wrap(err, CodeBadRequest, err.Error(), http.StatusBadRequest)
}

func TooLarge(limit int64) *AppError {
	return Wrap(ErrTooLarge, CodeTooLarge, fmt.Sprintf("upload exceeds %d bytes", limit), http.StatusRequestEntityTooLarge)
}

func Internal(message string) *AppError {
	return Wrap(ErrInternal, CodeInternal, message, http.StatusInternalServerError)
}

func Unavailable(message string) *AppError {
	return Wrap(ErrUnavailable, CodeUnavailable, message, http.StatusServiceUnavailable)
}

func Validation(details map[string]string) *AppError {
	return Wrap(ErrValidation, CodeValidation, "validation failed", http.StatusBadRequest).WithDetails(details)
}

func TokenExpired() *AppError {
	return Wrap(ErrTokenExpired, CodeTokenExpired, "token has expired", http.StatusUnauthorized)
}

func TokenInvalid() *AppError {
	return Wrap(ErrTokenInvalid, CodeTokenInvalid, "invalid token", http.StatusUnauthorized)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}
