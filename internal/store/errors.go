package store

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a referenced agent, job, or threat does not
// exist.
var ErrNotFound = errors.New("not found")

// ValidationError marks a missing or malformed required field. Handlers map
// it to a 400 response.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

// Required builds the validation error for an absent required field.
func Required(field string) *ValidationError {
	return &ValidationError{Field: field, Reason: "is required"}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
