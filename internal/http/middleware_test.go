package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/example/agency-crm/internal/application"
)

type validatorStub struct {
	principal application.Principal
	err       error
	gotToken  string
}

func (v *validatorStub) ValidateSession(ctx context.Context, token string) (application.Principal, error) {
	v.gotToken = token
	if v.err != nil {
		return application.Principal{}, v.err
	}
	return v.principal, nil
}

func TestRequireSessionInjectsPrincipal(t *testing.T) {
	validator := &validatorStub{principal: application.Principal{ProfileID: "emp-1", Role: application.RoleEmployee}}

	var captured application.Principal
	var ok bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured, ok = PrincipalFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	handler := RequireSession(validator, nil)(next)

	req := httptest.NewRequest(http.MethodGet, "/clients", nil)
	req.Header.Set("Authorization", "Bearer token-1")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d", rec.Code)
	}
	if !ok || captured.ProfileID != "emp-1" {
		t.Fatalf("principal = %+v, ok = %v", captured, ok)
	}
	if validator.gotToken != "token-1" {
		t.Fatalf("token = %q", validator.gotToken)
	}
}

func TestRequireSessionAcceptsCookie(t *testing.T) {
	validator := &validatorStub{principal: application.Principal{ProfileID: "emp-1"}}
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	handler := RequireSession(validator, nil)(next)

	req := httptest.NewRequest(http.MethodGet, "/clients", nil)
	req.AddCookie(&http.Cookie{Name: "session_token", Value: "cookie-token"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d", rec.Code)
	}
	if validator.gotToken != "cookie-token" {
		t.Fatalf("token = %q", validator.gotToken)
	}
}

func TestRequireSessionRejections(t *testing.T) {
	cases := []struct {
		name       string
		token      string
		err        error
		wantStatus int
	}{
		{name: "missing token", token: "", wantStatus: http.StatusUnauthorized},
		{name: "unknown token", token: "ghost", err: application.ErrUnauthorized, wantStatus: http.StatusUnauthorized},
		{name: "expired session", token: "old", err: application.ErrSessionExpired, wantStatus: http.StatusUnauthorized},
		{name: "validator failure", token: "boom", err: context.DeadlineExceeded, wantStatus: http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			validator := &validatorStub{err: tc.err}
			nextCalled := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				nextCalled = true
			})
			handler := RequireSession(validator, nil)(next)

			req := httptest.NewRequest(http.MethodGet, "/clients", nil)
			if tc.token != "" {
				req.Header.Set("Authorization", "Bearer "+tc.token)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tc.wantStatus)
			}
			if nextCalled {
				t.Fatal("next handler must not run")
			}
		})
	}
}

func TestRequestLoggerAttachesContextLogger(t *testing.T) {
	var seen bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = LoggerFromContext(r.Context()) != nil
		w.WriteHeader(http.StatusOK)
	})
	handler := RequestLogger(nil)(next)

	req := httptest.NewRequest(http.MethodGet, "/clients", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if !seen {
		t.Fatal("request logger not attached to context")
	}
}
