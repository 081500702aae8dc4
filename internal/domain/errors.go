package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors. Adapters wrap these so transports can map them with
// errors.Is without knowing where they came from.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrValidation    = errors.New("validation error")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrConflict      = errors.New("conflict")
	ErrRetryable     = errors.New("retryable")
)

// ErrWordsLinked: a word already belongs to a multi-word phrase and must be
// unlinked first.
var ErrWordsLinked = fmt.Errorf("words already linked: %w", ErrConflict)

type FieldError struct {
	Field   string
	Message string
}

// ValidationError collects every rejected field of one input.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		parts[i] = fe.Field + ": " + fe.Message
	}
	return "validation: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Has reports whether field was rejected.
func (e *ValidationError) Has(field string) bool {
	for _, fe := range e.Errors {
		if fe.Field == field {
			return true
		}
	}
	return false
}

func NewValidationError(field, message string) *ValidationError {
	return NewValidationErrors([]FieldError{{Field: field, Message: message}})
}

func NewValidationErrors(errs []FieldError) *ValidationError {
	return &ValidationError{Errors: errs}
}
