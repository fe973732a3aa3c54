// Package apperror defines the error taxonomy shared by services and transports.
package apperror

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthenticated is returned when the request carries no valid identity.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrForbidden is returned when the identity is valid but lacks admin privilege.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound is returned when a referenced id or slug does not resolve.
	ErrNotFound = errors.New("not found")

	// ErrPersistence is returned when the underlying store call failed.
	ErrPersistence = errors.New("persistence failure")

	// ErrInvalidTransition is returned when an order status move is not allowed.
	ErrInvalidTransition = errors.New("invalid status transition")
)

// ValidationError describes missing or malformed input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// Validation builds a *ValidationError for the given field.
func Validation(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// IsValidation reports whether err wraps a *ValidationError.
func IsValidation(err error) bool {
	var vErr *ValidationError
	return errors.As(err, &vErr)
}

// NotFound wraps ErrNotFound with the kind and key of the missing record.
func NotFound(kind string, key any) error {
	return fmt.Errorf("%s %v: %w", kind, key, ErrNotFound)
}

// Persistence wraps a store failure as ErrPersistence. Errors that already
// belong to the taxonomy are returned unchanged.
func Persistence(op string, err error) error {
	if err == nil {
		return nil
	}
	if IsValidation(err) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrPersistence) ||
		errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrUnauthenticated) ||
		errors.Is(err, ErrInvalidTransition) {
		return err
	}
	return fmt.Errorf("%s: %w: %w", op, ErrPersistence, err)
}
