package models

import (
	"errors"
	"fmt"
)

// Application-wide standard errors
var (
	ErrNotFound        = errors.New("resource not found")
	ErrTaskNotFound    = fmt.Errorf("task %w", ErrNotFound)
	ErrContentNotFound = fmt.Errorf("content %w", ErrNotFound)

	ErrContentAlreadyApproved = errors.New("content is already approved")

	ErrUnauthorized = errors.New("unauthorized")
	ErrInternal     = errors.New("internal server error")
)

// ValidationError describes a rejected input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation error: " + e.Message
	}
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
}

// NewValidationError creates a ValidationError for the given field.
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}
