package model

import (
	"errors"
	"fmt"
)

// ErrValidation is the sentinel wrapped by every ValidationError.
var ErrValidation = errors.New("invalid parameters")

// ValidationError reports a parameter rejected before an engine is built.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrValidation, e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
