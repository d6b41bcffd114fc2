package testfixtures

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/example/agency-crm/internal/application"
	"github.com/example/agency-crm/internal/civiltime"
)

// MemoryClientRepository is an in-memory application.ClientRepository
// for wiring tests.
type MemoryClientRepository struct {
	mu      sync.Mutex
	stored  map[string]application.Client
	ordered []string
}

// NewMemoryClientRepository returns an empty repository.
func NewMemoryClientRepository() *MemoryClientRepository {
	return &MemoryClientRepository{stored: make(map[string]application.Client)}
}

func (r *MemoryClientRepository) CreateClient(ctx context.Context, client application.Client) (application.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stored[client.ID] = client
	r.ordered = append(r.ordered, client.ID)
	return client, nil
}

func (r *MemoryClientRepository) UpdateClient(ctx context.Context, client application.Client) (application.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.stored[client.ID]; !ok {
		return application.Client{}, application.ErrNotFound
	}
	r.stored[client.ID] = client
	return client, nil
}

func (r *MemoryClientRepository) GetClient(ctx context.Context, id string) (application.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	client, ok := r.stored[id]
	if !ok {
		return application.Client{}, application.ErrNotFound
	}
	return client, nil
}

func (r *MemoryClientRepository) ListClients(ctx context.Context, employeeID string) ([]application.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	clients := make([]application.Client, 0, len(r.ordered))
	for _, id := range r.ordered {
		client := r.stored[id]
		if employeeID != "" && client.EmployeeID != employeeID {
			continue
		}
		clients = append(clients, client)
	}
	return clients, nil
}

// MemoryEventRepository is an in-memory application.EventRepository for
// wiring tests.
type MemoryEventRepository struct {
	mu     sync.Mutex
	stored map[string]application.CalendarEvent
}

// NewMemoryEventRepository returns an empty repository.
func NewMemoryEventRepository() *MemoryEventRepository {
	return &MemoryEventRepository{stored: make(map[string]application.CalendarEvent)}
}

func (r *MemoryEventRepository) CreateEvent(ctx context.Context, event application.CalendarEvent) (application.CalendarEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stored[event.ID] = event
	return event, nil
}

func (r *MemoryEventRepository) UpdateEvent(ctx context.Context, event application.CalendarEvent) (application.CalendarEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.stored[event.ID]; !ok {
		return application.CalendarEvent{}, application.ErrNotFound
	}
	r.stored[event.ID] = event
	return event, nil
}

func (r *MemoryEventRepository) GetEvent(ctx context.Context, id string) (application.CalendarEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	event, ok := r.stored[id]
	if !ok {
		return application.CalendarEvent{}, application.ErrNotFound
	}
	return event, nil
}

func (r *MemoryEventRepository) ListEvents(ctx context.Context, employeeID string) ([]application.CalendarEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	events := make([]application.CalendarEvent, 0, len(r.stored))
	for _, event := range r.stored {
		if employeeID != "" && event.EmployeeID != employeeID {
			continue
		}
		events = append(events, event)
	}
	sort.Slice(events, func(i, j int) bool {
		if events[i].StartTime.Equal(events[j].StartTime) {
			return events[i].ID < events[j].ID
		}
		return events[i].StartTime.Before(events[j].StartTime)
	})
	return events, nil
}

func (r *MemoryEventRepository) DeleteEvent(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.stored[id]; !ok {
		return application.ErrNotFound
	}
	delete(r.stored, id)
	return nil
}

// MemorySessionRepository is an in-memory application.SessionRepository
// for wiring tests.
type MemorySessionRepository struct {
	mu     sync.Mutex
	stored map[string]application.Session
}

// NewMemorySessionRepository returns an empty repository.
func NewMemorySessionRepository() *MemorySessionRepository {
	return &MemorySessionRepository{stored: make(map[string]application.Session)}
}

func (r *MemorySessionRepository) CreateSession(ctx context.Context, session application.Session) (application.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stored[session.Token] = session
	return session, nil
}

func (r *MemorySessionRepository) GetSession(ctx context.Context, token string) (application.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.stored[token]
	if !ok {
		return application.Session{}, application.ErrNotFound
	}
	return session, nil
}

func (r *MemorySessionRepository) DeleteSession(ctx context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.stored[token]; !ok {
		return application.ErrNotFound
	}
	delete(r.stored, token)
	return nil
}

func (r *MemorySessionRepository) DeleteExpiredSessions(ctx context.Context, reference time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for token, session := range r.stored {
		if !session.ExpiresAt.After(reference) {
			delete(r.stored, token)
		}
	}
	return nil
}

// Environment bundles fully wired services over in-memory storage for
// end-to-end style tests.
type Environment struct {
	Clock    *Clock
	IDs      *IDGenerator
	Roster   *application.Roster
	Clients  *MemoryClientRepository
	Events   *MemoryEventRepository
	Sessions *MemorySessionRepository

	ClientService *application.ClientService
	EventService  *application.SchedulerService
	AuthService   *application.AuthService
	StatsService  *application.StatisticsService
}

// NewEnvironment wires every service against shared in-memory storage,
// a deterministic clock, and a roster with one owner and the given
// number of employees. A nil normalizer falls back to the process-local
// zone; tests that assert on stored times should inject one with a
// fixed viewer offset.
func NewEnvironment(employees int, normalizer *civiltime.Normalizer, logger *slog.Logger) *Environment {
	env := &Environment{
		Clock:    NewClock(time.Time{}),
		IDs:      NewIDGenerator("fixture"),
		Roster:   NewRosterFixture(employees),
		Clients:  NewMemoryClientRepository(),
		Events:   NewMemoryEventRepository(),
		Sessions: NewMemorySessionRepository(),
	}

	env.ClientService = application.NewClientService(env.Clients, env.Roster, env.IDs.NextFunc(), env.Clock.NowFunc(), logger)
	env.EventService = application.NewSchedulerService(env.Events, env.Roster, normalizer, env.IDs.NextFunc(), env.Clock.NowFunc(), logger)
	env.AuthService = application.NewAuthService(env.Roster, env.Sessions, env.IDs.NextFunc(), env.Clock.NowFunc(), 0, logger)
	env.StatsService = application.NewStatisticsService(env.Clients, env.Events, env.Roster, env.Clock.NowFunc(), logger)
	return env
}
