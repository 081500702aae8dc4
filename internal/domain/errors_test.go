package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestValidationError_SingleField(t *testing.T) {
	t.Parallel()

	err := NewValidationError("word_ids", "required")

	if got := err.Error(); got != "validation: word_ids: required" {
		t.Fatalf("unexpected Error(): %q", got)
	}
	if !errors.Is(err, ErrValidation) {
		t.Fatal("errors.Is(err, ErrValidation) = false")
	}
}

func TestValidationError_MultipleFields(t *testing.T) {
	t.Parallel()

	err := NewValidationErrors([]FieldError{
		{Field: "language_id", Message: "required"},
		{Field: "phrases", Message: "at least one required"},
	})

	if got := err.Error(); got != "validation: language_id: required; phrases: at least one required" {
		t.Fatalf("unexpected Error(): %q", got)
	}
	if !err.Has("phrases") || err.Has("user_id") {
		t.Fatal("Has() reports the wrong fields")
	}
	if !errors.Is(err, ErrValidation) {
		t.Fatal("errors.Is(err, ErrValidation) = false")
	}
	if len(err.Errors) != 2 {
		t.Fatalf("expected 2 field errors, got %d", len(err.Errors))
	}
}

func TestErrWordsLinked_IsConflict(t *testing.T) {
	t.Parallel()

	wrapped := fmt.Errorf("link words: %w", ErrWordsLinked)
	if !errors.Is(wrapped, ErrConflict) {
		t.Fatal("ErrWordsLinked should unwrap to ErrConflict")
	}
	if errors.Is(wrapped, ErrNotFound) {
		t.Fatal("ErrWordsLinked should not match ErrNotFound")
	}
}

func TestSentinelErrors_AreDistinct(t *testing.T) {
	t.Parallel()

	sentinels := []error{
		ErrNotFound, ErrAlreadyExists, ErrValidation,
		ErrUnauthorized, ErrConflict, ErrRetryable,
	}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j && errors.Is(a, b) {
				t.Errorf("sentinel errors %d and %d should not match", i, j)
			}
		}
	}
}
