package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidInput is the sentinel matched by every precondition violation.
var ErrInvalidInput = errors.New("invalid input")

// InvalidInputError describes which impact parameter was rejected and why.
// Field is empty when the combination of inputs, not a single value, is at fault.
type InvalidInputError struct {
	Field  string
	Value  any
	Reason string
}

func newInvalidInput(field string, value any, reason string) *InvalidInputError {
	return &InvalidInputError{Field: field, Value: value, Reason: reason}
}

func (e *InvalidInputError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", ErrInvalidInput, e.Reason)
	}
	return fmt.Sprintf("%s: %s %s (got %v)", ErrInvalidInput, e.Field, e.Reason, e.Value)
}

// Is reports ErrInvalidInput as a match so callers can use errors.Is.
func (e *InvalidInputError) Is(target error) bool {
	return target == ErrInvalidInput
}
