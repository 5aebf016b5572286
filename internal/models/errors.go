package models

import "fmt"

// ValidationError rejects malformed ticker input before any I/O occurs.
// It is the only pipeline error reported to callers with detail; everything
// else degrades internally or surfaces as an opaque failure.
type ValidationError struct {
	Input  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid ticker %q: %s", e.Input, e.Reason)
}

// NewValidationError creates a ValidationError for the given raw input.
func NewValidationError(input, reason string) *ValidationError {
	return &ValidationError{Input: input, Reason: reason}
}
