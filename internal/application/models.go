package application

import "time"

// Role identifies the access level of a roster account.
type Role string

const (
	// RoleOwner sees every employee's clients and events and can act on
	// their behalf.
	RoleOwner Role = "owner"
	// RoleEmployee is scoped to records bound to the employee's own id.
	RoleEmployee Role = "employee"
)

// ClientStatus enumerates the client pipeline states.
type ClientStatus string

const (
	StatusNew        ClientStatus = "new"
	StatusInProgress ClientStatus = "in_progress"
	StatusCompleted  ClientStatus = "completed"
	StatusCancelled  ClientStatus = "cancelled"
)

// ValidStatus reports whether the value names a known pipeline state.
func ValidStatus(s ClientStatus) bool {
	switch s {
	case StatusNew, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Source enumerates how a client reached the agency.
type Source string

const (
	SourceSocial   Source = "social"
	SourceReferral Source = "referral"
	SourcePersonal Source = "personal"
)

// ValidSource reports whether the value names a known client source.
func ValidSource(s Source) bool {
	switch s {
	case SourceSocial, SourceReferral, SourcePersonal:
		return true
	}
	return false
}

// MeetingType enumerates how a meeting is held.
type MeetingType string

const (
	MeetingOnline       MeetingType = "online"
	MeetingOffice       MeetingType = "office"
	MeetingOnlineOffice MeetingType = "online_office"
)

// ValidMeetingType reports whether the value names a known meeting type.
func ValidMeetingType(m MeetingType) bool {
	switch m {
	case MeetingOnline, MeetingOffice, MeetingOnlineOffice:
		return true
	}
	return false
}

// Principal represents the authenticated account invoking a service method.
type Principal struct {
	ProfileID string
	FullName  string
	Role      Role
}

// IsOwner reports whether the principal holds the owner role.
func (p Principal) IsOwner() bool {
	return p.Role == RoleOwner
}

// Profile represents a roster account.
type Profile struct {
	ID        string
	FullName  string
	Role      Role
	CreatedAt time.Time
}

// Client represents a CRM client record exposed by the services.
type Client struct {
	ID                 string
	EmployeeID         string
	FullName           string
	BirthDate          *time.Time
	Phone              *string
	ContactDate        time.Time
	Source             Source
	ReferralName       *string
	InitialInfo        *string
	ProgressNotes      *string
	NextContact        *time.Time
	Status             ClientStatus
	CompletionDate     *time.Time
	CancellationReason *string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// CalendarEvent represents a scheduled meeting. StartTime is held in the
// fixed civil zone representation used by persistence.
type CalendarEvent struct {
	ID          string
	EmployeeID  string
	ClientID    *string
	Title       string
	Description *string
	StartTime   time.Time
	MeetingType MeetingType
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Session represents an issued login session.
type Session struct {
	Token     string
	ProfileID string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// ClientInput captures caller provided fields for client creation.
type ClientInput struct {
	// EmployeeID is honored only for owner-submitted records; employees
	// always create clients bound to themselves.
	EmployeeID    string
	FullName      string
	BirthDate     *time.Time
	Phone         *string
	Source        Source
	ReferralName  *string
	InitialInfo   *string
	ProgressNotes *string
	NextContact   *time.Time
}

// ClientPatch captures a partial client update. Nil fields preserve the
// stored value; a pointer to the zero value clears the field.
type ClientPatch struct {
	FullName      *string
	BirthDate     *time.Time
	Phone         *string
	Source        *Source
	ReferralName  *string
	InitialInfo   *string
	ProgressNotes *string
	NextContact   *time.Time
	Status        *ClientStatus
}

// CreateClientParams wraps the data required to create a client.
type CreateClientParams struct {
	Principal Principal
	Input     ClientInput
}

// UpdateClientParams wraps the data required to update a client.
type UpdateClientParams struct {
	Principal Principal
	ClientID  string
	Patch     ClientPatch
}

// TransitionParams wraps the data required to move a client through the
// status pipeline.
type TransitionParams struct {
	Principal Principal
	ClientID  string
	NewStatus ClientStatus
	// Reason is required when entering the cancelled state.
	Reason string
}

// ClientQuery narrows an in-memory client listing.
type ClientQuery struct {
	Status ClientStatus
	Search string
}

// EventInput captures caller provided fields for event creation.
type EventInput struct {
	// EmployeeID must name a roster employee when the owner submits the
	// event; employees always schedule for themselves.
	EmployeeID  string
	ClientID    *string
	Title       string
	Description *string
	// StartTime is the wall-clock instant as entered by the caller; the
	// service normalizes it to the fixed civil zone before persisting.
	StartTime   time.Time
	MeetingType MeetingType
}

// EventPatch captures a partial event update. Nil fields preserve the
// stored value.
type EventPatch struct {
	EmployeeID  *string
	ClientID    *string
	Title       *string
	Description *string
	StartTime   *time.Time
	MeetingType *MeetingType
}

// CreateEventParams wraps the data required to create a calendar event.
type CreateEventParams struct {
	Principal Principal
	Input     EventInput
}

// UpdateEventParams wraps the data required to update a calendar event.
type UpdateEventParams struct {
	Principal Principal
	EventID   string
	Patch     EventPatch
}
