package persistence

import (
	"errors"
	"fmt"
	"testing"
)

func TestWrapStoreErrorPassesSentinelsThrough(t *testing.T) {
	if err := WrapStoreError("get client", ErrNotFound); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	wrapped := fmt.Errorf("query: %w", ErrConstraintViolation)
	if err := WrapStoreError("create client", wrapped); !errors.Is(err, ErrConstraintViolation) {
		t.Fatalf("expected ErrConstraintViolation, got %v", err)
	}
}

func TestWrapStoreErrorWrapsDriverFailures(t *testing.T) {
	driverErr := errors.New("database is locked")
	err := WrapStoreError("list events", driverErr)

	var storeErr *StoreError
	if !errors.As(err, &storeErr) {
		t.Fatalf("expected StoreError, got %T", err)
	}
	if storeErr.Op != "list events" {
		t.Fatalf("Op = %q", storeErr.Op)
	}
	if !errors.Is(err, driverErr) {
		t.Fatal("wrapped error should unwrap to the driver error")
	}
}

func TestWrapStoreErrorNil(t *testing.T) {
	if err := WrapStoreError("noop", nil); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}
