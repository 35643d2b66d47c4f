package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrUpstreamParse marks an LLM reply that could not be decoded.
	// It never leaves the classifier as a returned error.
	ErrUpstreamParse = errors.New("upstream parse error")
	// ErrRemoteService marks a failed call to the LLM provider or the RAG service.
	ErrRemoteService = errors.New("remote service error")
	// ErrStoreUnavailable marks a failed document store operation.
	ErrStoreUnavailable = errors.New("store unavailable")
)

type ValidationError struct {
	Field  string
	Reason string
}

func NewValidationError(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("invalid %q: %s", e.Field, e.Reason)
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func Remote(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrRemoteService, err)
}

func Store(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
}
