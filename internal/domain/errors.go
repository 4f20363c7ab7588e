package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound signals that an entity does not exist under the calling
// owner's scope. Repositories that report "absent" as a nil row do not
// use it; it exists for callers that need a hard failure.
type ErrNotFound struct {
	Entity string
	ID     string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found with ID: %s", e.Entity, e.ID)
}

// ErrDuplicateKey is returned when a write collides with a unique
// constraint on a non-upsert path. Callers branch on the type, never on
// the driver message.
type ErrDuplicateKey struct {
	Entity     string
	Constraint string
}

func (e *ErrDuplicateKey) Error() string {
	if e.Constraint != "" {
		return fmt.Sprintf("%s already exists (constraint %s)", e.Entity, e.Constraint)
	}
	return fmt.Sprintf("%s already exists", e.Entity)
}

// IsDuplicateKey reports whether err is (or wraps) an ErrDuplicateKey.
func IsDuplicateKey(err error) bool {
	var dup *ErrDuplicateKey
	return errors.As(err, &dup)
}

// ValidationError represents an error that occurs due to invalid input or parameters
type ValidationError struct {
	Message string
}

// Error implements the error interface
func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s", e.Message)
}

// NewValidationError creates a new validation error with the given message
func NewValidationError(message string) error {
	return ValidationError{
		Message: message,
	}
}
