// Package reminder scans clients for imminent next-contact dates and
// notifies about each one exactly once.
package reminder

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/example/agency-crm/internal/application"
)

// DefaultWindow bounds how far ahead of a next-contact date a reminder
// fires.
const DefaultWindow = 5 * time.Minute

// Reminder describes one due next-contact notification.
type Reminder struct {
	ClientID   string
	ClientName string
	EmployeeID string
	// NextContact is the stored contact instant the reminder refers to.
	NextContact time.Time
	// Remaining is the time left until NextContact at scan time.
	Remaining time.Duration
}

// Notifier delivers a single reminder. Implementations must tolerate
// concurrent calls.
type Notifier interface {
	Notify(ctx context.Context, reminder Reminder) error
}

// LogNotifier writes reminders to the structured log. It is the default
// delivery channel.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier builds a notifier writing to logger, falling back to
// slog.Default when logger is nil.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(ctx context.Context, reminder Reminder) error {
	n.logger.InfoContext(ctx, "next contact reminder",
		"client_id", reminder.ClientID,
		"client_name", reminder.ClientName,
		"employee_id", reminder.EmployeeID,
		"next_contact", reminder.NextContact.Format(time.RFC3339),
		"remaining", reminder.Remaining.String(),
	)
	return nil
}

// Scanner periodically walks the client roster and emits reminders for
// contacts falling due within the window.
type Scanner struct {
	clients  application.ClientRepository
	notifier Notifier
	logger   *slog.Logger
	now      func() time.Time
	window   time.Duration
	seen     *dedupCache
	cron     *cron.Cron
}

// Option customizes a Scanner.
type Option func(*Scanner)

// WithClock overrides the scanner's time source.
func WithClock(now func() time.Time) Option {
	return func(s *Scanner) {
		if now != nil {
			s.now = now
		}
	}
}

// WithWindow overrides the look-ahead window.
func WithWindow(window time.Duration) Option {
	return func(s *Scanner) {
		if window > 0 {
			s.window = window
		}
	}
}

// NewScanner builds a scanner over the given repository. A nil notifier
// falls back to logging; a nil logger falls back to slog.Default.
func NewScanner(clients application.ClientRepository, notifier Notifier, logger *slog.Logger, opts ...Option) *Scanner {
	if logger == nil {
		logger = slog.Default()
	}
	if notifier == nil {
		notifier = NewLogNotifier(logger)
	}

	s := &Scanner{
		clients:  clients,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
		window:   DefaultWindow,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Entries outlive the window slightly so a contact stays deduplicated
	// across the scan that sees it expire.
	s.seen = newDedupCache(s.window+time.Minute, 1024, s.now)
	return s
}

// Scan walks every client once and notifies for each due next contact
// not already reported. It returns the number of reminders emitted.
func (s *Scanner) Scan(ctx context.Context) (int, error) {
	clients, err := s.clients.ListClients(ctx, "")
	if err != nil {
		s.logger.ErrorContext(ctx, "reminder scan failed", "error", err)
		return 0, err
	}

	now := s.now()
	emitted := 0
	for _, client := range clients {
		if client.NextContact == nil {
			continue
		}
		remaining := client.NextContact.Sub(now)
		if remaining <= 0 || remaining > s.window {
			continue
		}

		key := client.ID + "|" + client.NextContact.UTC().Format(time.RFC3339Nano)
		if !s.seen.MarkOnce(key) {
			continue
		}

		reminder := Reminder{
			ClientID:    client.ID,
			ClientName:  client.FullName,
			EmployeeID:  client.EmployeeID,
			NextContact: *client.NextContact,
			Remaining:   remaining,
		}
		if err := s.notifier.Notify(ctx, reminder); err != nil {
			s.logger.ErrorContext(ctx, "reminder delivery failed",
				"client_id", client.ID, "error", err)
			continue
		}
		emitted++
	}
	return emitted, nil
}

// Start schedules a scan every minute until Stop is called. Calling
// Start twice is a no-op.
func (s *Scanner) Start(ctx context.Context) error {
	if s.cron != nil {
		return nil
	}

	c := cron.New()
	_, err := c.AddFunc("@every 1m", func() {
		if _, err := s.Scan(ctx); err != nil {
			s.logger.ErrorContext(ctx, "scheduled reminder scan failed", "error", err)
		}
	})
	if err != nil {
		return err
	}

	s.cron = c
	c.Start()
	return nil
}

// Stop halts the periodic scan and waits for a running scan to finish.
func (s *Scanner) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
	s.cron = nil
}
