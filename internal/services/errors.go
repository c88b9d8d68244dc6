package services

import "errors"

// ErrInvalidCredentials is returned for any login failure: unknown email,
// account without a credential, or wrong password. Deliberately a single
// sentinel so callers cannot tell which field was wrong.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrEmailTaken is returned when signup races or repeats an existing email.
var ErrEmailTaken = errors.New("email is already taken")

// ErrSlugTaken is returned when link creation loses the slug namespace.
var ErrSlugTaken = errors.New("slug is already taken")

// ValidationError carries per-field messages for a rejected form
// submission. It is recovered at the handler boundary and re-rendered on
// the originating form with a 200-class response.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return "validation failed"
}

func newValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string]string)}
}

func (e *ValidationError) add(field, message string) {
	if _, exists := e.Fields[field]; !exists {
		e.Fields[field] = message
	}
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}
