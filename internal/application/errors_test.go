package application

import (
	"errors"
	"fmt"
	"testing"
)

func TestValidationError(t *testing.T) {
	vErr := &ValidationError{}
	if vErr.HasErrors() {
		t.Fatal("fresh ValidationError should have no errors")
	}

	vErr.add("full_name", "full name is required")
	vErr.add("source", "unknown client source")

	if !vErr.HasErrors() {
		t.Fatal("HasErrors should report recorded fields")
	}
	if len(vErr.FieldErrors) != 2 {
		t.Fatalf("FieldErrors = %v", vErr.FieldErrors)
	}
	if vErr.Error() != "validation failed" {
		t.Fatalf("Error() = %q", vErr.Error())
	}
}

func TestErrorKind(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{err: nil, want: ""},
		{err: ErrUnauthorized, want: "unauthorized"},
		{err: ErrNotFound, want: "not_found"},
		{err: ErrInvalidCredentials, want: "invalid_credentials"},
		{err: ErrSessionExpired, want: "session_expired"},
		{err: ErrInvalidTransition, want: "invalid_transition"},
		{err: fmt.Errorf("wrapping: %w", ErrNotFound), want: "not_found"},
		{err: &ValidationError{FieldErrors: map[string]string{"title": "required"}}, want: "validation"},
		{err: errors.New("boom"), want: "unexpected"},
	}

	for _, tc := range cases {
		if got := ErrorKind(tc.err); got != tc.want {
			t.Fatalf("ErrorKind(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}
