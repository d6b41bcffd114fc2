package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/example/agency-crm/internal/persistence"
)

// SessionRepository implements persistence.SessionRepository using SQLite.
type SessionRepository struct {
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewSessionRepository creates a new SQLite session repository.
func NewSessionRepository(pool *ConnectionPool) *SessionRepository {
	return &SessionRepository{
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

// CreateSession inserts a new login session.
func (r *SessionRepository) CreateSession(ctx context.Context, session persistence.Session) (persistence.Session, error) {
	if session.Token == "" || session.ProfileID == "" {
		return persistence.Session{}, persistence.ErrConstraintViolation
	}

	query := `
		INSERT INTO sessions (token, profile_id, expires_at, created_at)
		VALUES (?, ?, ?, ?)
	`

	_, err := r.helper.Exec(ctx, query,
		session.Token,
		session.ProfileID,
		encodeTime(session.ExpiresAt),
		encodeTime(session.CreatedAt),
	)
	if err != nil {
		return persistence.Session{}, r.mapper.MapError("create session", err)
	}
	return session, nil
}

// GetSession retrieves a session by token.
func (r *SessionRepository) GetSession(ctx context.Context, token string) (persistence.Session, error) {
	if token == "" {
		return persistence.Session{}, persistence.ErrNotFound
	}

	query := `
		SELECT token, profile_id, expires_at, created_at
		FROM sessions
		WHERE token = ?
	`

	var session persistence.Session
	var expiresAt, createdAt string

	err := r.helper.QueryRow(ctx, query, token).Scan(
		&session.Token,
		&session.ProfileID,
		&expiresAt,
		&createdAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Session{}, persistence.ErrNotFound
		}
		return persistence.Session{}, r.mapper.MapError("get session", err)
	}

	if session.ExpiresAt, err = decodeTime("expires_at", expiresAt); err != nil {
		return persistence.Session{}, err
	}
	if session.CreatedAt, err = decodeTime("created_at", createdAt); err != nil {
		return persistence.Session{}, err
	}
	return session, nil
}

// DeleteSession removes a session by token.
func (r *SessionRepository) DeleteSession(ctx context.Context, token string) error {
	if token == "" {
		return persistence.ErrNotFound
	}

	result, err := r.helper.Exec(ctx, `DELETE FROM sessions WHERE token = ?`, token)
	if err != nil {
		return r.mapper.MapError("delete session", err)
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

// DeleteExpiredSessions removes sessions whose expiry is at or before the
// reference instant. Lexicographic comparison works because timestamps
// are stored as RFC 3339 UTC text.
func (r *SessionRepository) DeleteExpiredSessions(ctx context.Context, reference time.Time) error {
	_, err := r.helper.Exec(ctx, `DELETE FROM sessions WHERE expires_at <= ?`, encodeTime(reference))
	if err != nil {
		return r.mapper.MapError("delete expired sessions", err)
	}
	return nil
}
