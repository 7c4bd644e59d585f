// Package apperr holds the error taxonomy shared by the engine packages.
//
// Pure components (schedule building, signal evaluation, aggregation) only
// return *ValidationError, and only for malformed input. A failing verdict is
// a normal return value. Services wrap repository I/O failures in
// *StoreUnavailableError so callers can pick their own retry policy.
package apperr

import (
	"errors"
	"fmt"
)

// ValidationError reports malformed schedule or date input. Not retryable.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation: " + e.Message
	}
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Message)
}

// Validation creates a ValidationError for field.
func Validation(field, format string, args ...any) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: fmt.Sprintf(format, args...),
	}
}

// StoreUnavailableError wraps an I/O failure against the persistent store
// or the durable queue list.
type StoreUnavailableError struct {
	Op  string
	Err error
}

func (e *StoreUnavailableError) Error() string {
	return fmt.Sprintf("store unavailable (%s): %v", e.Op, e.Err)
}

func (e *StoreUnavailableError) Unwrap() error {
	return e.Err
}

// StoreUnavailable wraps err. A nil err stays nil.
func StoreUnavailable(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreUnavailableError{Op: op, Err: err}
}

// IsValidation reports whether err is or wraps a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsStoreUnavailable reports whether err is or wraps a *StoreUnavailableError.
func IsStoreUnavailable(err error) bool {
	var se *StoreUnavailableError
	return errors.As(err, &se)
}
