// Package apperror defines the error taxonomy shared by the repository layer,
// the quiz runner, and the HTTP controllers. Callers classify errors with
// errors.Is against the exported sentinels.
package apperror

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound: a referenced owner/forum/post does not exist. Never retried.
	ErrNotFound = errors.New("not found")
	// ErrValidation: a required field is missing or empty. Never retried.
	ErrValidation = errors.New("validation failed")
	// ErrConflict: uniqueness violation on email/google_id during creation.
	// The caller may retry reconciliation once; the retry finds the row the
	// racing caller created.
	ErrConflict = errors.New("conflict")
	// ErrTransient: connection or timeout failure against the backing store.
	// Idempotent operations are safe to retry with backoff.
	ErrTransient = errors.New("transient storage failure")
	// ErrUpstream: the external scoring process returned malformed output or a
	// non-zero exit. Propagated as-is, never converted to an empty success.
	ErrUpstream = errors.New("upstream process failure")
)

// AppError carries a human-readable message alongside the sentinel kind.
type AppError struct {
	Err     error
	Message string
	Field   string // optional: the field that caused a validation failure
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource string, id any) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s %v not found", resource, id),
	}
}

func Validation(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

func Conflict(message string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: message,
	}
}

func Transient(op string, cause error) *AppError {
	return &AppError{
		Err:     ErrTransient,
		Message: fmt.Sprintf("%s: %v", op, cause),
	}
}

func Upstream(message string) *AppError {
	return &AppError{
		Err:     ErrUpstream,
		Message: message,
	}
}
