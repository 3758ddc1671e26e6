// Package domain defines the core business entities and errors.
package domain

import (
	"errors"
	"fmt"
)

// Common domain errors used across the application. The specific sentinels
// all wrap ErrValidation so callers can match either the broad class or the
// exact failure.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = fmt.Errorf("%w: invalid ID", ErrValidation)

	// ErrInvalidEmail is returned when an email address is malformed.
	ErrInvalidEmail = fmt.Errorf("%w: invalid email format", ErrValidation)

	// ErrEmptyContent is returned when required content is empty.
	ErrEmptyContent = fmt.Errorf("%w: content cannot be empty", ErrValidation)

	// ErrInvalidRole is returned when a membership role is not valid.
	ErrInvalidRole = fmt.Errorf("%w: invalid membership role", ErrValidation)

	// ErrInvalidPriority is returned when a task priority is not valid.
	ErrInvalidPriority = fmt.Errorf("%w: invalid task priority", ErrValidation)

	// ErrInvalidStatus is returned when a task status is not valid.
	ErrInvalidStatus = fmt.Errorf("%w: invalid task status", ErrValidation)
)

// ValidationError wraps ErrValidation with the field that failed and why.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	return "validation failed for " + e.Field + ": " + e.Message
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError creates a new ValidationError wrapping ErrValidation
// unless a more specific sentinel is provided.
func NewValidationError(field, message string, err error) *ValidationError {
	if err == nil {
		err = ErrValidation
	}
	return &ValidationError{Field: field, Message: message, Err: err}
}
