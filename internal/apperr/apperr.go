// Package apperr defines the error kinds spec.md §7 names, each carrying
// the HTTP status and a caller-safe public message, mirroring the
// reference service's handlers.APIError/RespondError pattern but as
// concrete error types the domain layer can return directly instead of
// reaching for the HTTP layer to know about status codes.
package apperr

import "net/http"

// AuthError is a generic, information-leak-free authentication failure.
// Every AuthError must render an identical public message regardless of
// cause (unknown switch vs. wrong token) per spec.md §4.4.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string { return e.Message }
func (e *AuthError) Status() int   { return http.StatusUnauthorized }

func NewAuthError(message string) *AuthError {
	return &AuthError{Message: message}
}

// ValidationError carries a field-level message for a malformed request.
type ValidationError struct {
	Message string
	Details any
}

func (e *ValidationError) Error() string { return e.Message }
func (e *ValidationError) Status() int   { return http.StatusBadRequest }

func NewValidationError(message string, details any) *ValidationError {
	return &ValidationError{Message: message, Details: details}
}

// NotFoundError is only used for non-sensitive lookups (spec.md §7) — never
// for the check-in path, where a missing switch must look like a bad token.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }
func (e *NotFoundError) Status() int   { return http.StatusNotFound }

func NewNotFoundError(message string) *NotFoundError {
	return &NotFoundError{Message: message}
}

// TransientStoreError wraps a Store failure the caller should retry (the
// scheduler retries on its own next tick; HTTP callers see a generic 500).
type TransientStoreError struct {
	Message string
	Cause   error
}

func (e *TransientStoreError) Error() string { return e.Message }
func (e *TransientStoreError) Status() int   { return http.StatusInternalServerError }
func (e *TransientStoreError) Unwrap() error { return e.Cause }

func NewTransientStoreError(cause error) *TransientStoreError {
	return &TransientStoreError{Message: "internal error", Cause: cause}
}

// StatusCoder is implemented by every apperr type, each reporting the HTTP
// status for its kind.
type StatusCoder interface {
	error
	Status() int
}
