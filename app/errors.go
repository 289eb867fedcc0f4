package app

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a subscription or delivery does not exist.
var ErrNotFound = errors.New("not found")

// ErrForbidden is returned when a record exists but belongs to another
// tenant. The HTTP boundary collapses it with ErrNotFound so existence is
// not leaked across tenants.
var ErrForbidden = errors.New("forbidden")

// ValidationError describes a rejected field on subscription create/update.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func validationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
