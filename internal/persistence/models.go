package persistence

import "time"

// Profile represents a roster account, either the owner or an employee.
type Profile struct {
	ID        string
	FullName  string
	Role      string
	CreatedAt time.Time
}

// Client represents a CRM client record owned by an employee.
type Client struct {
	ID                 string
	EmployeeID         string
	FullName           string
	BirthDate          *time.Time
	Phone              *string
	ContactDate        time.Time
	Source             string
	ReferralName       *string
	InitialInfo        *string
	ProgressNotes      *string
	NextContact        *time.Time
	Status             string
	CompletionDate     *time.Time
	CancellationReason *string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// CalendarEvent represents a scheduled meeting stored in persistence.
// StartTime is kept normalized to the agency's fixed civil zone.
type CalendarEvent struct {
	ID          string
	EmployeeID  string
	ClientID    *string
	Title       string
	Description *string
	StartTime   time.Time
	MeetingType string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Session represents an issued login session persisted across restarts.
type Session struct {
	Token     string
	ProfileID string
	ExpiresAt time.Time
	CreatedAt time.Time
}
