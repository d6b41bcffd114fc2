package reminder

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/example/agency-crm/internal/application"
)

type clientRepoStub struct {
	clients []application.Client
	err     error
}

func (s *clientRepoStub) CreateClient(ctx context.Context, client application.Client) (application.Client, error) {
	return client, nil
}

func (s *clientRepoStub) UpdateClient(ctx context.Context, client application.Client) (application.Client, error) {
	return client, nil
}

func (s *clientRepoStub) GetClient(ctx context.Context, id string) (application.Client, error) {
	return application.Client{}, application.ErrNotFound
}

func (s *clientRepoStub) ListClients(ctx context.Context, employeeID string) ([]application.Client, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.clients, nil
}

type notifierStub struct {
	mu        sync.Mutex
	err       error
	reminders []Reminder
}

func (n *notifierStub) Notify(ctx context.Context, reminder Reminder) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.reminders = append(n.reminders, reminder)
	return nil
}

func timePtr(t time.Time) *time.Time {
	return &t
}

func TestScanNotifiesWithinWindow(t *testing.T) {
	now := time.Date(2024, time.April, 2, 10, 0, 0, 0, time.UTC)
	repo := &clientRepoStub{clients: []application.Client{
		{ID: "due", FullName: "Иванов Иван", EmployeeID: "emp-1", NextContact: timePtr(now.Add(3 * time.Minute))},
		{ID: "edge", FullName: "Петров Пётр", EmployeeID: "emp-1", NextContact: timePtr(now.Add(5 * time.Minute))},
		{ID: "far", NextContact: timePtr(now.Add(10 * time.Minute))},
		{ID: "past", NextContact: timePtr(now.Add(-time.Minute))},
		{ID: "none"},
	}}
	notifier := &notifierStub{}
	scanner := NewScanner(repo, notifier, nil, WithClock(func() time.Time { return now }))

	emitted, err := scanner.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	if emitted != 2 {
		t.Fatalf("emitted = %d, want 2", emitted)
	}
	if len(notifier.reminders) != 2 {
		t.Fatalf("reminders = %d, want 2", len(notifier.reminders))
	}

	first := notifier.reminders[0]
	if first.ClientID != "due" || first.ClientName != "Иванов Иван" || first.EmployeeID != "emp-1" {
		t.Fatalf("reminder = %+v", first)
	}
	if first.Remaining != 3*time.Minute {
		t.Fatalf("Remaining = %v", first.Remaining)
	}
}

func TestScanDeduplicatesAcrossScans(t *testing.T) {
	now := time.Date(2024, time.April, 2, 10, 0, 0, 0, time.UTC)
	repo := &clientRepoStub{clients: []application.Client{
		{ID: "due", FullName: "Иванов", NextContact: timePtr(now.Add(4 * time.Minute))},
	}}
	notifier := &notifierStub{}

	current := now
	scanner := NewScanner(repo, notifier, nil, WithClock(func() time.Time { return current }))

	for i := 0; i < 3; i++ {
		if _, err := scanner.Scan(context.Background()); err != nil {
			t.Fatalf("Scan %d returned error: %v", i, err)
		}
		current = current.Add(time.Minute)
	}

	if len(notifier.reminders) != 1 {
		t.Fatalf("reminders = %d, want 1", len(notifier.reminders))
	}
}

func TestScanNotifiesAgainForRescheduledContact(t *testing.T) {
	now := time.Date(2024, time.April, 2, 10, 0, 0, 0, time.UTC)
	repo := &clientRepoStub{clients: []application.Client{
		{ID: "due", FullName: "Иванов", NextContact: timePtr(now.Add(2 * time.Minute))},
	}}
	notifier := &notifierStub{}
	scanner := NewScanner(repo, notifier, nil, WithClock(func() time.Time { return now }))

	if _, err := scanner.Scan(context.Background()); err != nil {
		t.Fatalf("first Scan returned error: %v", err)
	}

	// Moving the contact forward makes it a fresh reminder.
	repo.clients[0].NextContact = timePtr(now.Add(4 * time.Minute))
	if _, err := scanner.Scan(context.Background()); err != nil {
		t.Fatalf("second Scan returned error: %v", err)
	}

	if len(notifier.reminders) != 2 {
		t.Fatalf("reminders = %d, want 2", len(notifier.reminders))
	}
}

func TestScanDeliveryFailureDoesNotMarkEmitted(t *testing.T) {
	now := time.Date(2024, time.April, 2, 10, 0, 0, 0, time.UTC)
	repo := &clientRepoStub{clients: []application.Client{
		{ID: "due", FullName: "Иванов", NextContact: timePtr(now.Add(2 * time.Minute))},
	}}
	notifier := &notifierStub{err: errors.New("smtp down")}
	scanner := NewScanner(repo, notifier, nil, WithClock(func() time.Time { return now }))

	emitted, err := scanner.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	if emitted != 0 {
		t.Fatalf("emitted = %d, want 0", emitted)
	}
}

func TestScanPropagatesRepositoryError(t *testing.T) {
	repo := &clientRepoStub{err: errors.New("database locked")}
	scanner := NewScanner(repo, &notifierStub{}, nil)

	if _, err := scanner.Scan(context.Background()); err == nil {
		t.Fatal("Scan returned nil error")
	}
}

func TestDedupCacheExpiry(t *testing.T) {
	current := time.Date(2024, time.April, 2, 10, 0, 0, 0, time.UTC)
	cache := newDedupCache(2*time.Minute, 8, func() time.Time { return current })

	if !cache.MarkOnce("key") {
		t.Fatal("first MarkOnce = false")
	}
	if cache.MarkOnce("key") {
		t.Fatal("second MarkOnce = true before expiry")
	}

	current = current.Add(3 * time.Minute)
	if !cache.MarkOnce("key") {
		t.Fatal("MarkOnce = false after expiry")
	}
}

func TestDedupCacheEvictsAtCapacity(t *testing.T) {
	now := time.Date(2024, time.April, 2, 10, 0, 0, 0, time.UTC)
	cache := newDedupCache(time.Hour, 2, func() time.Time { return now })

	cache.MarkOnce("a")
	cache.MarkOnce("b")
	cache.MarkOnce("c")

	if len(cache.entries) > 2 {
		t.Fatalf("entries = %d, want at most 2", len(cache.entries))
	}
}
