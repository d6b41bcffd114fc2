package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/example/agency-crm/internal/civiltime"
)

// TitleSeparator joins the employee name and the meeting title when the
// owner schedules on an employee's behalf.
const TitleSeparator = " - "

// EventRepository captures the persistence interactions needed by the scheduler.
type EventRepository interface {
	CreateEvent(ctx context.Context, event CalendarEvent) (CalendarEvent, error)
	UpdateEvent(ctx context.Context, event CalendarEvent) (CalendarEvent, error)
	GetEvent(ctx context.Context, id string) (CalendarEvent, error)
	// ListEvents returns events for one employee, or every event when
	// employeeID is empty.
	ListEvents(ctx context.Context, employeeID string) ([]CalendarEvent, error)
	DeleteEvent(ctx context.Context, id string) error
}

// SchedulerService manages calendar events per employee, including the
// owner's cross-employee view and title rewriting.
type SchedulerService struct {
	events      EventRepository
	directory   EmployeeDirectory
	normalizer  *civiltime.Normalizer
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewSchedulerService wires dependencies for calendar operations.
func NewSchedulerService(events EventRepository, directory EmployeeDirectory, normalizer *civiltime.Normalizer, idGenerator func() string, now func() time.Time, logger *slog.Logger) *SchedulerService {
	if normalizer == nil {
		normalizer = civiltime.NewNormalizer(nil)
	}
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &SchedulerService{
		events:      events,
		directory:   directory,
		normalizer:  normalizer,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *SchedulerService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "SchedulerService", operation, attrs...)
}

// ListEvents returns the events visible to the principal sorted by start
// time ascending: the owner sees every employee's events, an employee
// only their own.
func (s *SchedulerService) ListEvents(ctx context.Context, principal Principal) ([]CalendarEvent, error) {
	if s == nil {
		return nil, fmt.Errorf("SchedulerService is nil")
	}
	if s.events == nil {
		return nil, fmt.Errorf("event repository not configured")
	}

	employeeID := principal.ProfileID
	if principal.IsOwner() {
		employeeID = ""
	}

	events, err := s.events.ListEvents(ctx, employeeID)
	if err != nil {
		return nil, mapClientRepoError(err)
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].StartTime.Before(events[j].StartTime)
	})
	return events, nil
}

// CreateEvent validates the request, normalizes the start time to the
// fixed civil zone, and persists the event. When the owner schedules on
// behalf of an employee the title is rewritten with the employee's name.
func (s *SchedulerService) CreateEvent(ctx context.Context, params CreateEventParams) (event CalendarEvent, err error) {
	if s == nil {
		err = fmt.Errorf("SchedulerService is nil")
		return
	}

	principal := params.Principal
	input := params.Input

	logger := s.loggerWith(ctx, "CreateEvent", "actor_id", principal.ProfileID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "event creation failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("event_id", event.ID).InfoContext(ctx, "event created")
	}()

	vErr := &ValidationError{}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		vErr.add("title", "title is required")
	}
	if input.StartTime.IsZero() {
		vErr.add("start_time", "start time is required")
	}

	meetingType := input.MeetingType
	if meetingType == "" {
		meetingType = MeetingOffice
	}
	if !ValidMeetingType(meetingType) {
		vErr.add("meeting_type", "unknown meeting type")
	}

	employeeID := principal.ProfileID
	if principal.IsOwner() {
		employeeID = strings.TrimSpace(input.EmployeeID)
		if employeeID == "" {
			vErr.add("employee_id", "employee is required")
		} else {
			employee, dirErr := s.lookupEmployee(ctx, employeeID)
			if dirErr != nil {
				if errors.Is(dirErr, ErrNotFound) {
					vErr.add("employee_id", "employee does not exist")
				} else {
					err = dirErr
					return
				}
			} else {
				title = PrefixTitle(employee.FullName, title)
			}
		}
	}

	if vErr.HasErrors() {
		err = vErr
		return
	}

	now := s.now()
	event = CalendarEvent{
		ID:          s.idGenerator(),
		EmployeeID:  employeeID,
		ClientID:    input.ClientID,
		Title:       title,
		Description: input.Description,
		StartTime:   s.normalizer.Store(input.StartTime),
		MeetingType: meetingType,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if s.events == nil {
		return
	}

	event, err = s.events.CreateEvent(ctx, event)
	if err != nil {
		event = CalendarEvent{}
		err = mapClientRepoError(err)
	}
	return
}

// UpdateEvent merges the patch onto the stored event, re-normalizing the
// start time and re-applying the owner title prefix when needed.
func (s *SchedulerService) UpdateEvent(ctx context.Context, params UpdateEventParams) (event CalendarEvent, err error) {
	if s == nil {
		err = fmt.Errorf("SchedulerService is nil")
		return
	}
	if s.events == nil {
		err = fmt.Errorf("event repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "UpdateEvent",
		"actor_id", params.Principal.ProfileID,
		"event_id", params.EventID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "event update failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "event updated")
	}()

	existing, err := s.events.GetEvent(ctx, params.EventID)
	if err != nil {
		err = mapClientRepoError(err)
		return
	}

	principal := params.Principal
	if err = authorizeEventMutation(principal, existing); err != nil {
		return
	}

	patch := params.Patch
	vErr := &ValidationError{}

	updated := existing
	if patch.EmployeeID != nil && principal.IsOwner() {
		updated.EmployeeID = strings.TrimSpace(*patch.EmployeeID)
		if updated.EmployeeID == "" {
			vErr.add("employee_id", "employee is required")
		}
	}
	if patch.Title != nil {
		updated.Title = strings.TrimSpace(*patch.Title)
		if updated.Title == "" {
			vErr.add("title", "title is required")
		}
	}
	if patch.MeetingType != nil {
		if !ValidMeetingType(*patch.MeetingType) {
			vErr.add("meeting_type", "unknown meeting type")
		}
		updated.MeetingType = *patch.MeetingType
	}
	if patch.ClientID != nil {
		updated.ClientID = optionalString(*patch.ClientID)
	}
	if patch.Description != nil {
		updated.Description = optionalString(*patch.Description)
	}
	if patch.StartTime != nil {
		if patch.StartTime.IsZero() {
			vErr.add("start_time", "start time is required")
		}
		updated.StartTime = s.normalizer.Store(*patch.StartTime)
	}

	if vErr.HasErrors() {
		err = vErr
		return
	}

	if principal.IsOwner() {
		employee, dirErr := s.lookupEmployee(ctx, updated.EmployeeID)
		if dirErr != nil {
			if errors.Is(dirErr, ErrNotFound) {
				vErr.add("employee_id", "employee does not exist")
				err = vErr
			} else {
				err = dirErr
			}
			return
		}
		updated.Title = PrefixTitle(employee.FullName, updated.Title)
	}

	updated.UpdatedAt = s.now()

	event, err = s.events.UpdateEvent(ctx, updated)
	if err != nil {
		event = CalendarEvent{}
		err = mapClientRepoError(err)
	}
	return
}

// DeleteEvent removes an event by id. The interactive confirmation lives
// in the presentation layer; the operation itself is unconditional.
func (s *SchedulerService) DeleteEvent(ctx context.Context, principal Principal, eventID string) error {
	if s == nil {
		return fmt.Errorf("SchedulerService is nil")
	}
	if s.events == nil {
		return fmt.Errorf("event repository not configured")
	}

	logger := s.loggerWith(ctx, "DeleteEvent",
		"actor_id", principal.ProfileID,
		"event_id", eventID,
	)

	existing, err := s.events.GetEvent(ctx, eventID)
	if err != nil {
		err = mapClientRepoError(err)
		logger.ErrorContext(ctx, "event deletion failed", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	if err := authorizeEventMutation(principal, existing); err != nil {
		logger.ErrorContext(ctx, "event deletion failed", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	if err := s.events.DeleteEvent(ctx, eventID); err != nil {
		err = mapClientRepoError(err)
		logger.ErrorContext(ctx, "event deletion failed", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	logger.InfoContext(ctx, "event deleted")
	return nil
}

// DisplayTime converts a stored event instant back to the fixed-zone
// civil reading used for rendering.
func (s *SchedulerService) DisplayTime(t time.Time) time.Time {
	return s.normalizer.Display(t)
}

func (s *SchedulerService) lookupEmployee(ctx context.Context, id string) (Profile, error) {
	if s.directory == nil {
		return Profile{}, ErrNotFound
	}
	return s.directory.GetEmployee(ctx, id)
}

// PrefixTitle rewrites a meeting title as "<employee> - <title>". The
// rewrite is idempotent: a title that already carries a prefix keeps only
// the text after the first separator. A title legitimately containing
// " - " is therefore mis-split; the behavior is kept as the agency's
// users know it rather than silently corrected.
func PrefixTitle(employeeName, title string) string {
	base := title
	if parts := strings.Split(title, TitleSeparator); len(parts) > 1 {
		base = parts[1]
	}
	return employeeName + TitleSeparator + base
}

func authorizeEventMutation(principal Principal, event CalendarEvent) error {
	if principal.IsOwner() || event.EmployeeID == principal.ProfileID {
		return nil
	}
	return ErrUnauthorized
}
