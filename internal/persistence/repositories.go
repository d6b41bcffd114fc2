package persistence

import (
	"context"
	"time"
)

// ClientFilter narrows client queries.
type ClientFilter struct {
	// EmployeeID restricts results to a single employee when non-empty.
	EmployeeID string
}

// EventFilter narrows calendar event queries.
type EventFilter struct {
	// EmployeeID restricts results to a single employee when non-empty.
	EmployeeID string
}

// ProfileRepository exposes roster account storage.
type ProfileRepository interface {
	UpsertProfile(ctx context.Context, profile Profile) error
	GetProfile(ctx context.Context, id string) (Profile, error)
	ListProfiles(ctx context.Context) ([]Profile, error)
}

// ClientRepository exposes CRUD operations for clients. Clients are
// never hard-deleted; no delete operation is offered.
type ClientRepository interface {
	CreateClient(ctx context.Context, client Client) (Client, error)
	UpdateClient(ctx context.Context, client Client) (Client, error)
	GetClient(ctx context.Context, id string) (Client, error)
	ListClients(ctx context.Context, filter ClientFilter) ([]Client, error)
}

// EventRepository exposes CRUD operations for calendar events.
type EventRepository interface {
	CreateEvent(ctx context.Context, event CalendarEvent) (CalendarEvent, error)
	UpdateEvent(ctx context.Context, event CalendarEvent) (CalendarEvent, error)
	GetEvent(ctx context.Context, id string) (CalendarEvent, error)
	ListEvents(ctx context.Context, filter EventFilter) ([]CalendarEvent, error)
	DeleteEvent(ctx context.Context, id string) error
}

// SessionRepository stores issued login sessions.
type SessionRepository interface {
	CreateSession(ctx context.Context, session Session) (Session, error)
	GetSession(ctx context.Context, token string) (Session, error)
	DeleteSession(ctx context.Context, token string) error
	DeleteExpiredSessions(ctx context.Context, reference time.Time) error
}
