// Package apperror holds the error types shared between the storage layer,
// the services and the HTTP error normalizer.
package apperror

import (
	"errors"
	"strings"
)

// ErrDuplicateKey is returned by repositories when a write violates a
// unique constraint of the store.
var ErrDuplicateKey = errors.New("duplicate key")

// Error is an error that carries the HTTP status and the client-facing
// message it should be reported with.
type Error struct {
	Status  int
	Message string
}

// New creates an Error with the given status and message.
func New(status int, message string) *Error {
	return &Error{Status: status, Message: message}
}

func (e *Error) Error() string {
	return e.Message
}

// FieldError describes one invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError collects every invalid field of a request.
type ValidationError struct {
	Fields []FieldError
}

// Invalid builds a ValidationError for a single field.
func Invalid(field, message string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}
