package app

import (
	"errors"
	"fmt"
)

var (
	ErrAuthRequired       = errors.New("authentication required")
	ErrForbidden          = errors.New("only the teacher can do this")
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailExists        = errors.New("a user with this email already exists")
)

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// ErrConflict is returned when a concurrent write won the race for the same row.
var ErrConflict = errors.New("conflicting concurrent write")
