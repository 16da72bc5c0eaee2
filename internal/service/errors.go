package service

import (
	"errors"
	"fmt"
)

// Common service errors
var (
	// ErrNotFound is returned when an operation targets a non-existent record
	ErrNotFound = errors.New("complaint not found")

	// ErrInvalidStatus is returned when a status value is outside the enum
	ErrInvalidStatus = errors.New("invalid status value")

	// ErrIntegrity is returned when the store reports a duplicate complaint
	// number. This should be unreachable given the transactional allocator;
	// if observed it indicates a concurrency-discipline bug and must be
	// surfaced, never silently retried.
	ErrIntegrity = errors.New("complaint number integrity violation")

	// ErrStorage is returned when the underlying store or filesystem fails
	ErrStorage = errors.New("storage error")
)

// ValidationError reports a rejected input field before any mutation occurs
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

// NewValidationError builds a field-level validation error
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidationError reports whether err is a field validation failure
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
