package models

import (
	"errors"
	"fmt"
)

// Custom errors
var (
	ErrNotFound       = errors.New("record not found")
	ErrDuplicateKey   = errors.New("duplicate key violation")
	ErrMissingData    = errors.New("nothing to score yet")
	ErrDeadlinePassed = NewValidationError("deadline_passed", "predictions are closed for this race")
)

// ValidationError describes rejected input at the application boundary
type ValidationError struct {
	Code    string
	Message string
}

// NewValidationError creates a validation error with a stable code
func NewValidationError(code, message string) *ValidationError {
	return &ValidationError{Code: code, Message: message}
}

func (e *ValidationError) Error() string {
	return e.Message
}

// UpsertError wraps a rejected datastore write
type UpsertError struct {
	Table string
	Key   string
	Err   error
}

func (e *UpsertError) Error() string {
	return fmt.Sprintf("upsert into %s (%s) failed: %v", e.Table, e.Key, e.Err)
}

func (e *UpsertError) Unwrap() error {
	return e.Err
}
