package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

// schema is the idempotent DDL applied at startup. The database is small
// enough that versioned migrations are not worth the machinery; new
// columns are added here with IF NOT EXISTS-safe statements.
const schema = `
CREATE TABLE IF NOT EXISTS profiles (
	id         TEXT PRIMARY KEY,
	full_name  TEXT NOT NULL,
	role       TEXT NOT NULL CHECK (role IN ('owner', 'employee')),
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS clients (
	id                  TEXT PRIMARY KEY,
	employee_id         TEXT NOT NULL REFERENCES profiles(id),
	full_name           TEXT NOT NULL,
	birth_date          TEXT,
	phone               TEXT,
	contact_date        TEXT NOT NULL,
	source              TEXT NOT NULL CHECK (source IN ('social', 'referral', 'personal')),
	referral_name       TEXT,
	initial_info        TEXT,
	progress_notes      TEXT,
	next_contact        TEXT,
	status              TEXT NOT NULL CHECK (status IN ('new', 'in_progress', 'completed', 'cancelled')),
	completion_date     TEXT,
	cancellation_reason TEXT,
	created_at          TEXT NOT NULL,
	updated_at          TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_clients_employee ON clients(employee_id);
CREATE INDEX IF NOT EXISTS idx_clients_status ON clients(status);

CREATE TABLE IF NOT EXISTS calendar_events (
	id           TEXT PRIMARY KEY,
	employee_id  TEXT NOT NULL REFERENCES profiles(id),
	client_id    TEXT REFERENCES clients(id),
	title        TEXT NOT NULL,
	description  TEXT,
	start_time   TEXT NOT NULL,
	meeting_type TEXT NOT NULL CHECK (meeting_type IN ('online', 'office', 'online_office')),
	created_at   TEXT NOT NULL,
	updated_at   TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_events_employee ON calendar_events(employee_id);
CREATE INDEX IF NOT EXISTS idx_events_start ON calendar_events(start_time);

CREATE TABLE IF NOT EXISTS sessions (
	token      TEXT PRIMARY KEY,
	profile_id TEXT NOT NULL REFERENCES profiles(id),
	expires_at TEXT NOT NULL,
	created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_sessions_expires ON sessions(expires_at);
`

// Migrate applies the schema atomically.
func Migrate(ctx context.Context, pool *ConnectionPool) error {
	return pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.Exec(schema); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
		return nil
	})
}
