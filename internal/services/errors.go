package services

import (
	"errors"
	"fmt"
	"time"
)

// Machine-readable error codes shared with the HTTP layer
const (
	CodeValidation   = "VALIDATION_ERROR"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
	CodeNotFound     = "NOT_FOUND"
	CodeConflict     = "CONFLICT"
	CodeRateLimited  = "RATE_LIMITED"
	CodeInternal     = "INTERNAL_ERROR"
)

// ValidationError reports malformed input. It is always returned before any write.
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a ValidationError with a formatted message
func NewValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// AuthError means the caller could not be authenticated
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}

// ForbiddenError means the caller is authenticated but lacks permission
type ForbiddenError struct {
	Message string
}

func (e *ForbiddenError) Error() string {
	return e.Message
}

// NotFoundError names the kind of record that does not exist
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// ConflictError reports a uniqueness violation
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

// RateLimitError represents a rate limit exceeded error
type RateLimitError struct {
	Message    string
	RetryAfter time.Time
	Type       string // "email" or "ip"
}

func (e *RateLimitError) Error() string {
	return e.Message
}

// ErrorCode returns the machine code for err, CodeInternal for unknown errors
func ErrorCode(err error) string {
	var (
		validationErr *ValidationError
		authErr       *AuthError
		forbiddenErr  *ForbiddenError
		notFoundErr   *NotFoundError
		conflictErr   *ConflictError
		rateLimitErr  *RateLimitError
	)

	switch {
	case errors.As(err, &validationErr):
		return CodeValidation
	case errors.As(err, &authErr):
		return CodeUnauthorized
	case errors.As(err, &forbiddenErr):
		return CodeForbidden
	case errors.As(err, &notFoundErr):
		return CodeNotFound
	case errors.As(err, &conflictErr):
		return CodeConflict
	case errors.As(err, &rateLimitErr):
		return CodeRateLimited
	default:
		return CodeInternal
	}
}
