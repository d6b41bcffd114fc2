package testfixtures

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/agency-crm/internal/application"
	"github.com/example/agency-crm/internal/civiltime"
)

func identityNormalizer() *civiltime.Normalizer {
	return civiltime.NewNormalizer(func(time.Time) int {
		return -civiltime.FixedOffsetMinutes
	})
}

func TestEnvironmentWiresClientLifecycle(t *testing.T) {
	env := NewEnvironment(2, identityNormalizer(), nil)
	ctx := context.Background()

	profiles := env.Roster.Profiles()
	if len(profiles) != 3 {
		t.Fatalf("roster size = %d, want owner plus two employees", len(profiles))
	}

	employee := profiles[1]
	principal := application.Principal{ProfileID: employee.ID, FullName: employee.FullName, Role: employee.Role}

	created, err := env.ClientService.CreateClient(ctx, application.CreateClientParams{
		Principal: principal,
		Input:     application.ClientInput{FullName: "Иванов Иван"},
	})
	if err != nil {
		t.Fatalf("CreateClient returned error: %v", err)
	}
	if created.EmployeeID != employee.ID {
		t.Fatalf("EmployeeID = %q", created.EmployeeID)
	}

	listed, err := env.ClientService.ListClients(ctx, principal)
	if err != nil {
		t.Fatalf("ListClients returned error: %v", err)
	}
	if len(listed) != 1 || listed[0].ID != created.ID {
		t.Fatalf("listed = %+v", listed)
	}
}

func TestEnvironmentLoginRoundTrip(t *testing.T) {
	env := NewEnvironment(1, identityNormalizer(), nil)
	ctx := context.Background()

	owner := env.Roster.Profiles()[0]
	result, err := env.AuthService.Login(ctx, owner.FullName, "123")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}

	principal, err := env.AuthService.ValidateSession(ctx, result.Session.Token)
	if err != nil {
		t.Fatalf("ValidateSession returned error: %v", err)
	}
	if principal.ProfileID != owner.ID {
		t.Fatalf("ProfileID = %q", principal.ProfileID)
	}

	// Session validation honors the deterministic clock.
	env.Clock.Advance(25 * time.Hour)
	if _, err := env.AuthService.ValidateSession(ctx, result.Session.Token); !errors.Is(err, application.ErrSessionExpired) {
		t.Fatalf("expired validation error = %v", err)
	}
}

func TestFixtureStatusMarkersStayConsistent(t *testing.T) {
	completed := NewClientFixture(WithClientStatus(application.StatusCompleted))
	if completed.CompletionDate == nil || completed.CancellationReason != nil {
		t.Fatalf("completed fixture markers = %+v", completed)
	}

	cancelled := NewClientFixture(WithClientStatus(application.StatusCancelled))
	if cancelled.CancellationReason == nil || cancelled.CompletionDate != nil {
		t.Fatalf("cancelled fixture markers = %+v", cancelled)
	}

	fresh := NewClientFixture()
	if fresh.Status != application.StatusNew || fresh.CompletionDate != nil || fresh.CancellationReason != nil {
		t.Fatalf("fresh fixture = %+v", fresh)
	}
}

func TestStoredClientConversion(t *testing.T) {
	client := NewClientFixture(WithClientStatus(application.StatusCancelled))
	stored := StoredClient(client)

	if stored.ID != client.ID || stored.Status != string(client.Status) {
		t.Fatalf("stored = %+v", stored)
	}
	if stored.CancellationReason == nil || *stored.CancellationReason != *client.CancellationReason {
		t.Fatalf("reason = %v", stored.CancellationReason)
	}
}
