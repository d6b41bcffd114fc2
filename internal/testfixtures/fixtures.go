package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/agency-crm/internal/application"
	"github.com/example/agency-crm/internal/persistence"
)

var (
	profileCounter uint64
	clientCounter  uint64
	eventCounter   uint64
	sessionCounter uint64
)

var referenceTime = time.Date(2024, time.April, 2, 10, 0, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by
// fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// ----------------------------- Profiles -----------------------------

// ProfileOption configures a generated profile fixture.
type ProfileOption func(*application.Profile)

// NewProfileFixture returns a deterministic employee profile.
func NewProfileFixture(opts ...ProfileOption) application.Profile {
	idx := atomic.AddUint64(&profileCounter, 1)
	profile := application.Profile{
		ID:       fmt.Sprintf("profile-%03d", idx),
		FullName: fmt.Sprintf("Сотрудник %03d", idx),
		Role:     application.RoleEmployee,
	}
	for _, opt := range opts {
		opt(&profile)
	}
	return profile
}

// WithProfileID overrides the generated profile id.
func WithProfileID(id string) ProfileOption {
	return func(p *application.Profile) {
		p.ID = id
	}
}

// WithProfileName overrides the generated display name.
func WithProfileName(name string) ProfileOption {
	return func(p *application.Profile) {
		p.FullName = name
	}
}

// WithOwnerRole marks the profile as the agency owner.
func WithOwnerRole() ProfileOption {
	return func(p *application.Profile) {
		p.Role = application.RoleOwner
	}
}

// NewRosterFixture builds a roster holding one owner and the supplied
// number of employees, all sharing the password "123".
func NewRosterFixture(employees int) *application.Roster {
	entries := []application.RosterEntry{{
		Profile:  NewProfileFixture(WithOwnerRole(), WithProfileName("Владелец агентства")),
		Password: "123",
	}}
	for i := 0; i < employees; i++ {
		entries = append(entries, application.RosterEntry{
			Profile:  NewProfileFixture(),
			Password: "123",
		})
	}
	return application.NewRoster(entries)
}

// ----------------------------- Clients -----------------------------

// ClientOption configures a generated client fixture.
type ClientOption func(*application.Client)

// NewClientFixture returns a deterministic client in the initial
// pipeline state, bound to a generated employee id unless overridden.
func NewClientFixture(opts ...ClientOption) application.Client {
	idx := atomic.AddUint64(&clientCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	client := application.Client{
		ID:          fmt.Sprintf("client-%03d", idx),
		EmployeeID:  fmt.Sprintf("profile-%03d", idx),
		FullName:    fmt.Sprintf("Клиент %03d", idx),
		ContactDate: created,
		Source:      application.SourcePersonal,
		Status:      application.StatusNew,
		CreatedAt:   created,
		UpdatedAt:   created,
	}
	for _, opt := range opts {
		opt(&client)
	}
	return client
}

// WithClientID overrides the generated client id.
func WithClientID(id string) ClientOption {
	return func(c *application.Client) {
		c.ID = id
	}
}

// WithClientEmployee binds the client to the given employee.
func WithClientEmployee(employeeID string) ClientOption {
	return func(c *application.Client) {
		c.EmployeeID = employeeID
	}
}

// WithClientName overrides the generated full name.
func WithClientName(name string) ClientOption {
	return func(c *application.Client) {
		c.FullName = name
	}
}

// WithClientStatus sets the pipeline state. The completion and
// cancellation markers are aligned so the record stays consistent.
func WithClientStatus(status application.ClientStatus) ClientOption {
	return func(c *application.Client) {
		c.Status = status
		c.CompletionDate = nil
		c.CancellationReason = nil
		switch status {
		case application.StatusCompleted:
			done := c.UpdatedAt
			c.CompletionDate = &done
		case application.StatusCancelled:
			reason := "не актуально"
			c.CancellationReason = &reason
		}
	}
}

// WithNextContact sets the next-contact instant.
func WithNextContact(t time.Time) ClientOption {
	return func(c *application.Client) {
		c.NextContact = &t
	}
}

// ----------------------------- Events -----------------------------

// EventOption configures a generated calendar event fixture.
type EventOption func(*application.CalendarEvent)

// NewEventFixture returns a deterministic office meeting one hour after
// the reference time, bound to a generated employee id.
func NewEventFixture(opts ...EventOption) application.CalendarEvent {
	idx := atomic.AddUint64(&eventCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	event := application.CalendarEvent{
		ID:          fmt.Sprintf("event-%03d", idx),
		EmployeeID:  fmt.Sprintf("profile-%03d", idx),
		Title:       fmt.Sprintf("Встреча %03d", idx),
		StartTime:   created.Add(time.Hour),
		MeetingType: application.MeetingOffice,
		CreatedAt:   created,
		UpdatedAt:   created,
	}
	for _, opt := range opts {
		opt(&event)
	}
	return event
}

// WithEventID overrides the generated event id.
func WithEventID(id string) EventOption {
	return func(e *application.CalendarEvent) {
		e.ID = id
	}
}

// WithEventEmployee binds the event to the given employee.
func WithEventEmployee(employeeID string) EventOption {
	return func(e *application.CalendarEvent) {
		e.EmployeeID = employeeID
	}
}

// WithEventStart sets the meeting start instant.
func WithEventStart(t time.Time) EventOption {
	return func(e *application.CalendarEvent) {
		e.StartTime = t
	}
}

// WithEventClient links the event to a client record.
func WithEventClient(clientID string) EventOption {
	return func(e *application.CalendarEvent) {
		e.ClientID = &clientID
	}
}

// ----------------------------- Sessions -----------------------------

// SessionOption configures a generated session fixture.
type SessionOption func(*application.Session)

// NewSessionFixture returns a session valid for a day from the
// reference time.
func NewSessionFixture(opts ...SessionOption) application.Session {
	idx := atomic.AddUint64(&sessionCounter, 1)
	session := application.Session{
		Token:     fmt.Sprintf("token-%03d", idx),
		ProfileID: fmt.Sprintf("profile-%03d", idx),
		ExpiresAt: referenceTime.Add(24 * time.Hour),
		CreatedAt: referenceTime,
	}
	for _, opt := range opts {
		opt(&session)
	}
	return session
}

// WithSessionProfile binds the session to the given profile.
func WithSessionProfile(profileID string) SessionOption {
	return func(s *application.Session) {
		s.ProfileID = profileID
	}
}

// WithSessionExpiry sets the expiry instant.
func WithSessionExpiry(t time.Time) SessionOption {
	return func(s *application.Session) {
		s.ExpiresAt = t
	}
}

// ----------------------------- Conversion -----------------------------

// StoredClient converts an application client into its persistence form.
func StoredClient(client application.Client) persistence.Client {
	return persistence.Client{
		ID:                 client.ID,
		EmployeeID:         client.EmployeeID,
		FullName:           client.FullName,
		BirthDate:          client.BirthDate,
		Phone:              client.Phone,
		ContactDate:        client.ContactDate,
		Source:             string(client.Source),
		ReferralName:       client.ReferralName,
		InitialInfo:        client.InitialInfo,
		ProgressNotes:      client.ProgressNotes,
		NextContact:        client.NextContact,
		Status:             string(client.Status),
		CompletionDate:     client.CompletionDate,
		CancellationReason: client.CancellationReason,
		CreatedAt:          client.CreatedAt,
		UpdatedAt:          client.UpdatedAt,
	}
}

// StoredEvent converts an application event into its persistence form.
func StoredEvent(event application.CalendarEvent) persistence.CalendarEvent {
	return persistence.CalendarEvent{
		ID:          event.ID,
		EmployeeID:  event.EmployeeID,
		ClientID:    event.ClientID,
		Title:       event.Title,
		Description: event.Description,
		StartTime:   event.StartTime,
		MeetingType: string(event.MeetingType),
		CreatedAt:   event.CreatedAt,
		UpdatedAt:   event.UpdatedAt,
	}
}
