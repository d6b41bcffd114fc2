package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/example/agency-crm/internal/persistence"
)

// EventRepository implements persistence.EventRepository using SQLite.
type EventRepository struct {
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewEventRepository creates a new SQLite calendar event repository.
func NewEventRepository(pool *ConnectionPool) *EventRepository {
	return &EventRepository{
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

const eventColumns = `id, employee_id, client_id, title, description, start_time,
	meeting_type, created_at, updated_at`

// CreateEvent inserts a new calendar event.
func (r *EventRepository) CreateEvent(ctx context.Context, event persistence.CalendarEvent) (persistence.CalendarEvent, error) {
	if event.ID == "" || event.EmployeeID == "" {
		return persistence.CalendarEvent{}, persistence.ErrConstraintViolation
	}

	query := `
		INSERT INTO calendar_events (` + eventColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.helper.Exec(ctx, query,
		event.ID,
		event.EmployeeID,
		encodeNullString(event.ClientID),
		event.Title,
		encodeNullString(event.Description),
		encodeTime(event.StartTime),
		event.MeetingType,
		encodeTime(event.CreatedAt),
		encodeTime(event.UpdatedAt),
	)
	if err != nil {
		return persistence.CalendarEvent{}, r.mapper.MapError("create event", err)
	}
	return event, nil
}

// UpdateEvent replaces every mutable column of an existing event.
func (r *EventRepository) UpdateEvent(ctx context.Context, event persistence.CalendarEvent) (persistence.CalendarEvent, error) {
	query := `
		UPDATE calendar_events
		SET employee_id = ?, client_id = ?, title = ?, description = ?,
			start_time = ?, meeting_type = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.helper.Exec(ctx, query,
		event.EmployeeID,
		encodeNullString(event.ClientID),
		event.Title,
		encodeNullString(event.Description),
		encodeTime(event.StartTime),
		event.MeetingType,
		encodeTime(event.UpdatedAt),
		event.ID,
	)
	if err != nil {
		return persistence.CalendarEvent{}, r.mapper.MapError("update event", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return persistence.CalendarEvent{}, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.CalendarEvent{}, persistence.ErrNotFound
	}
	return event, nil
}

// GetEvent retrieves an event by id.
func (r *EventRepository) GetEvent(ctx context.Context, id string) (persistence.CalendarEvent, error) {
	if id == "" {
		return persistence.CalendarEvent{}, persistence.ErrNotFound
	}

	query := `SELECT ` + eventColumns + ` FROM calendar_events WHERE id = ?`

	event, err := scanEvent(r.helper.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.CalendarEvent{}, persistence.ErrNotFound
		}
		return persistence.CalendarEvent{}, r.mapper.MapError("get event", err)
	}
	return event, nil
}

// ListEvents returns events ordered by start time, optionally restricted
// to one employee.
func (r *EventRepository) ListEvents(ctx context.Context, filter persistence.EventFilter) ([]persistence.CalendarEvent, error) {
	query := `SELECT ` + eventColumns + ` FROM calendar_events`
	var args []any
	if filter.EmployeeID != "" {
		query += ` WHERE employee_id = ?`
		args = append(args, filter.EmployeeID)
	}
	query += ` ORDER BY start_time ASC, id ASC`

	rows, err := r.helper.Query(ctx, query, args...)
	if err != nil {
		return nil, r.mapper.MapError("list events", err)
	}
	defer rows.Close()

	var events []persistence.CalendarEvent
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, r.mapper.MapError("list events", err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError("list events", err)
	}

	return events, nil
}

// DeleteEvent removes an event by id.
func (r *EventRepository) DeleteEvent(ctx context.Context, id string) error {
	if id == "" {
		return persistence.ErrNotFound
	}

	result, err := r.helper.Exec(ctx, `DELETE FROM calendar_events WHERE id = ?`, id)
	if err != nil {
		return r.mapper.MapError("delete event", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

func scanEvent(row rowScanner) (persistence.CalendarEvent, error) {
	var event persistence.CalendarEvent
	var clientID, description sql.NullString
	var startTime, createdAt, updatedAt string

	err := row.Scan(
		&event.ID,
		&event.EmployeeID,
		&clientID,
		&event.Title,
		&description,
		&startTime,
		&event.MeetingType,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return persistence.CalendarEvent{}, err
	}

	if event.StartTime, err = decodeTime("start_time", startTime); err != nil {
		return persistence.CalendarEvent{}, err
	}
	if event.CreatedAt, err = decodeTime("created_at", createdAt); err != nil {
		return persistence.CalendarEvent{}, err
	}
	if event.UpdatedAt, err = decodeTime("updated_at", updatedAt); err != nil {
		return persistence.CalendarEvent{}, err
	}

	event.ClientID = decodeNullString(clientID)
	event.Description = decodeNullString(description)

	return event, nil
}
