// Package application holds the domain services behind the HTTP adapter.
package application

import (
	"errors"
	"fmt"
)

// ErrInvalidCredentials is returned by Login for a wrong email or password.
// The two cases are deliberately indistinguishable.
var ErrInvalidCredentials = errors.New("invalid email or password")

// ValidationError reports a missing or unacceptable input field. The HTTP
// adapter maps it to a 400 response; Message is safe to show to users.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func newValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
