package persistence

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("persistence: not found")
	// ErrConstraintViolation is returned when a write breaks a schema
	// constraint, such as an unknown employee reference.
	ErrConstraintViolation = errors.New("persistence: constraint violation")
)

// StoreError wraps an underlying driver failure. Callers treat it as an
// unrecoverable store problem: the operation is logged and aborted with
// no state change.
type StoreError struct {
	Op  string
	Err error
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("persistence: %s: %v", e.Op, e.Err)
}

// Unwrap exposes the underlying driver error.
func (e *StoreError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// WrapStoreError annotates a driver error, passing sentinel errors
// through untouched so errors.Is checks keep working.
func WrapStoreError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrConstraintViolation) {
		return err
	}
	return &StoreError{Op: op, Err: err}
}
