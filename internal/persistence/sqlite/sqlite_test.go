package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/agency-crm/internal/persistence"
)

func newTestPool(t *testing.T) *ConnectionPool {
	t.Helper()

	pool, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { pool.Close() })

	if err := Migrate(context.Background(), pool); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return pool
}

func seedProfile(t *testing.T, pool *ConnectionPool, id, name, role string) {
	t.Helper()
	repo := NewProfileRepository(pool)
	err := repo.UpsertProfile(context.Background(), persistence.Profile{
		ID:        id,
		FullName:  name,
		Role:      role,
		CreatedAt: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("UpsertProfile(%s): %v", id, err)
	}
}

func TestProfileRepository(t *testing.T) {
	pool := newTestPool(t)
	repo := NewProfileRepository(pool)
	ctx := context.Background()

	seedProfile(t, pool, "own-1", "Александр Широков", "owner")
	seedProfile(t, pool, "emp-1", "Наталья", "employee")

	profile, err := repo.GetProfile(ctx, "emp-1")
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if profile.FullName != "Наталья" || profile.Role != "employee" {
		t.Fatalf("profile = %+v", profile)
	}

	// Upsert replaces the existing row.
	seedProfile(t, pool, "emp-1", "Наталья Петрова", "employee")
	profile, err = repo.GetProfile(ctx, "emp-1")
	if err != nil {
		t.Fatalf("GetProfile after upsert: %v", err)
	}
	if profile.FullName != "Наталья Петрова" {
		t.Fatalf("upsert did not replace full_name: %+v", profile)
	}

	profiles, err := repo.ListProfiles(ctx)
	if err != nil {
		t.Fatalf("ListProfiles: %v", err)
	}
	if len(profiles) != 2 {
		t.Fatalf("ListProfiles length = %d", len(profiles))
	}

	if _, err := repo.GetProfile(ctx, "missing"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestClientRepositoryRoundTrip(t *testing.T) {
	pool := newTestPool(t)
	repo := NewClientRepository(pool)
	ctx := context.Background()

	seedProfile(t, pool, "emp-1", "Наталья", "employee")

	birth := time.Date(1990, time.May, 14, 0, 0, 0, 0, time.UTC)
	phone := "79181234567"
	referral := "Сергей"
	info := "ищет двушку в центре"
	notes := "первый звонок прошёл"
	next := time.Date(2024, time.April, 10, 9, 0, 0, 0, time.UTC)
	created := time.Date(2024, time.April, 2, 12, 0, 0, 0, time.UTC)

	client := persistence.Client{
		ID:            "client-1",
		EmployeeID:    "emp-1",
		FullName:      "Иванов Иван",
		BirthDate:     &birth,
		Phone:         &phone,
		ContactDate:   created,
		Source:        "referral",
		ReferralName:  &referral,
		InitialInfo:   &info,
		ProgressNotes: &notes,
		NextContact:   &next,
		Status:        "new",
		CreatedAt:     created,
		UpdatedAt:     created,
	}

	if _, err := repo.CreateClient(ctx, client); err != nil {
		t.Fatalf("CreateClient: %v", err)
	}

	got, err := repo.GetClient(ctx, "client-1")
	if err != nil {
		t.Fatalf("GetClient: %v", err)
	}
	if got.FullName != client.FullName || got.Source != client.Source || got.Status != client.Status {
		t.Fatalf("scalar fields diverged: %+v", got)
	}
	if got.BirthDate == nil || !got.BirthDate.Equal(birth) {
		t.Fatalf("BirthDate = %v", got.BirthDate)
	}
	if got.Phone == nil || *got.Phone != phone {
		t.Fatalf("Phone = %v", got.Phone)
	}
	if got.NextContact == nil || !got.NextContact.Equal(next) {
		t.Fatalf("NextContact = %v", got.NextContact)
	}
	if got.CompletionDate != nil || got.CancellationReason != nil {
		t.Fatalf("fresh client carries terminal markers: %+v", got)
	}

	// Transition to cancelled: reason set, then cleared on reopen.
	reason := "бюджет не сошёлся"
	got.Status = "cancelled"
	got.CancellationReason = &reason
	got.UpdatedAt = created.Add(time.Hour)
	if _, err := repo.UpdateClient(ctx, got); err != nil {
		t.Fatalf("UpdateClient: %v", err)
	}

	got, err = repo.GetClient(ctx, "client-1")
	if err != nil {
		t.Fatalf("GetClient: %v", err)
	}
	if got.CancellationReason == nil || *got.CancellationReason != reason {
		t.Fatalf("CancellationReason = %v", got.CancellationReason)
	}

	got.Status = "in_progress"
	got.CancellationReason = nil
	if _, err := repo.UpdateClient(ctx, got); err != nil {
		t.Fatalf("UpdateClient: %v", err)
	}
	got, err = repo.GetClient(ctx, "client-1")
	if err != nil {
		t.Fatalf("GetClient: %v", err)
	}
	if got.CancellationReason != nil {
		t.Fatal("nil pointer should clear cancellation_reason")
	}
}

func TestClientRepositoryConstraints(t *testing.T) {
	pool := newTestPool(t)
	repo := NewClientRepository(pool)
	ctx := context.Background()

	now := time.Date(2024, time.April, 2, 12, 0, 0, 0, time.UTC)
	client := persistence.Client{
		ID:          "client-1",
		EmployeeID:  "ghost",
		FullName:    "X",
		ContactDate: now,
		Source:      "personal",
		Status:      "new",
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if _, err := repo.CreateClient(ctx, client); !errors.Is(err, persistence.ErrConstraintViolation) {
		t.Fatalf("unknown employee: expected ErrConstraintViolation, got %v", err)
	}

	seedProfile(t, pool, "emp-1", "Наталья", "employee")
	client.EmployeeID = "emp-1"
	client.Status = "archived"
	if _, err := repo.CreateClient(ctx, client); !errors.Is(err, persistence.ErrConstraintViolation) {
		t.Fatalf("unknown status: expected ErrConstraintViolation, got %v", err)
	}

	if _, err := repo.UpdateClient(ctx, persistence.Client{
		ID:          "missing",
		EmployeeID:  "emp-1",
		FullName:    "X",
		ContactDate: now,
		Source:      "personal",
		Status:      "new",
		UpdatedAt:   now,
	}); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestClientRepositoryListFilter(t *testing.T) {
	pool := newTestPool(t)
	repo := NewClientRepository(pool)
	ctx := context.Background()

	seedProfile(t, pool, "emp-1", "Наталья", "employee")
	seedProfile(t, pool, "emp-2", "Михаил", "employee")

	base := time.Date(2024, time.April, 2, 12, 0, 0, 0, time.UTC)
	for i, spec := range []struct {
		id       string
		employee string
	}{
		{id: "a", employee: "emp-1"},
		{id: "b", employee: "emp-2"},
		{id: "c", employee: "emp-1"},
	} {
		created := base.Add(time.Duration(i) * time.Minute)
		_, err := repo.CreateClient(ctx, persistence.Client{
			ID:          spec.id,
			EmployeeID:  spec.employee,
			FullName:    spec.id,
			ContactDate: created,
			Source:      "personal",
			Status:      "new",
			CreatedAt:   created,
			UpdatedAt:   created,
		})
		if err != nil {
			t.Fatalf("CreateClient(%s): %v", spec.id, err)
		}
	}

	own, err := repo.ListClients(ctx, persistence.ClientFilter{EmployeeID: "emp-1"})
	if err != nil {
		t.Fatalf("ListClients: %v", err)
	}
	if len(own) != 2 || own[0].ID != "a" || own[1].ID != "c" {
		t.Fatalf("filtered listing = %+v", own)
	}

	all, err := repo.ListClients(ctx, persistence.ClientFilter{})
	if err != nil {
		t.Fatalf("ListClients: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("unfiltered listing length = %d", len(all))
	}
}

func TestEventRepository(t *testing.T) {
	pool := newTestPool(t)
	repo := NewEventRepository(pool)
	ctx := context.Background()

	seedProfile(t, pool, "emp-1", "Наталья", "employee")
	seedProfile(t, pool, "emp-2", "Михаил", "employee")

	base := time.Date(2024, time.April, 5, 10, 0, 0, 0, time.UTC)
	desc := "встреча в офисе"
	events := []persistence.CalendarEvent{
		{ID: "late", EmployeeID: "emp-1", Title: "B", StartTime: base.Add(2 * time.Hour), MeetingType: "office", CreatedAt: base, UpdatedAt: base},
		{ID: "early", EmployeeID: "emp-1", Title: "A", Description: &desc, StartTime: base, MeetingType: "online", CreatedAt: base, UpdatedAt: base},
		{ID: "other", EmployeeID: "emp-2", Title: "C", StartTime: base.Add(time.Hour), MeetingType: "online_office", CreatedAt: base, UpdatedAt: base},
	}
	for _, event := range events {
		if _, err := repo.CreateEvent(ctx, event); err != nil {
			t.Fatalf("CreateEvent(%s): %v", event.ID, err)
		}
	}

	own, err := repo.ListEvents(ctx, persistence.EventFilter{EmployeeID: "emp-1"})
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if len(own) != 2 || own[0].ID != "early" || own[1].ID != "late" {
		t.Fatalf("listing = %+v", own)
	}
	if own[0].Description == nil || *own[0].Description != desc {
		t.Fatalf("Description = %v", own[0].Description)
	}

	updated := own[1]
	updated.Title = "B rescheduled"
	updated.StartTime = base.Add(3 * time.Hour)
	if _, err := repo.UpdateEvent(ctx, updated); err != nil {
		t.Fatalf("UpdateEvent: %v", err)
	}
	got, err := repo.GetEvent(ctx, "late")
	if err != nil {
		t.Fatalf("GetEvent: %v", err)
	}
	if got.Title != "B rescheduled" || !got.StartTime.Equal(base.Add(3*time.Hour)) {
		t.Fatalf("updated event = %+v", got)
	}

	if err := repo.DeleteEvent(ctx, "late"); err != nil {
		t.Fatalf("DeleteEvent: %v", err)
	}
	if err := repo.DeleteEvent(ctx, "late"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on repeated delete, got %v", err)
	}
	if _, err := repo.GetEvent(ctx, "late"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSessionRepository(t *testing.T) {
	pool := newTestPool(t)
	repo := NewSessionRepository(pool)
	ctx := context.Background()

	seedProfile(t, pool, "emp-1", "Наталья", "employee")

	now := time.Date(2024, time.April, 2, 12, 0, 0, 0, time.UTC)
	live := persistence.Session{Token: "live", ProfileID: "emp-1", ExpiresAt: now.Add(time.Hour), CreatedAt: now}
	stale := persistence.Session{Token: "stale", ProfileID: "emp-1", ExpiresAt: now.Add(-time.Hour), CreatedAt: now.Add(-2 * time.Hour)}

	for _, session := range []persistence.Session{live, stale} {
		if _, err := repo.CreateSession(ctx, session); err != nil {
			t.Fatalf("CreateSession(%s): %v", session.Token, err)
		}
	}

	got, err := repo.GetSession(ctx, "live")
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if got.ProfileID != "emp-1" || !got.ExpiresAt.Equal(live.ExpiresAt) {
		t.Fatalf("session = %+v", got)
	}

	if err := repo.DeleteExpiredSessions(ctx, now); err != nil {
		t.Fatalf("DeleteExpiredSessions: %v", err)
	}
	if _, err := repo.GetSession(ctx, "stale"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("stale session should be swept, got %v", err)
	}
	if _, err := repo.GetSession(ctx, "live"); err != nil {
		t.Fatalf("live session should survive the sweep: %v", err)
	}

	if err := repo.DeleteSession(ctx, "live"); err != nil {
		t.Fatalf("DeleteSession: %v", err)
	}
	if err := repo.DeleteSession(ctx, "live"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
