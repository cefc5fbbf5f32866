package otp

import (
	"errors"
	"fmt"
)

// Failure kinds. Test with errors.Is.
var (
	ErrNotFound = errors.New("otp not found")
	ErrMismatch = errors.New("otp mismatch")
	ErrExpired  = errors.New("otp expired")
	ErrDelivery = errors.New("otp delivery failed")
)

// Error is returned by Manager operations; Kind is one of the Err* values.
type Error struct {
	Kind  error
	Email string
	Cause error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s for %s: %v", e.Kind, e.Email, e.Cause)
	}
	return fmt.Sprintf("%s for %s", e.Kind, e.Email)
}

func (e *Error) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Kind, e.Cause}
	}
	return []error{e.Kind}
}

func newError(kind error, email string, cause error) *Error {
	return &Error{Kind: kind, Email: email, Cause: cause}
}
