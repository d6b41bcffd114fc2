package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/example/agency-crm/internal/persistence"
)

// ProfileRepository implements persistence.ProfileRepository using SQLite.
type ProfileRepository struct {
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewProfileRepository creates a new SQLite profile repository.
func NewProfileRepository(pool *ConnectionPool) *ProfileRepository {
	return &ProfileRepository{
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

// UpsertProfile inserts or replaces a roster profile. The roster is
// authoritative, so existing rows are overwritten on conflict.
func (r *ProfileRepository) UpsertProfile(ctx context.Context, profile persistence.Profile) error {
	if profile.ID == "" {
		return persistence.ErrConstraintViolation
	}

	query := `
		INSERT INTO profiles (id, full_name, role, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET full_name = excluded.full_name, role = excluded.role
	`

	_, err := r.helper.Exec(ctx, query,
		profile.ID,
		profile.FullName,
		profile.Role,
		encodeTime(profile.CreatedAt),
	)
	if err != nil {
		return r.mapper.MapError("upsert profile", err)
	}
	return nil
}

// GetProfile retrieves a profile by id.
func (r *ProfileRepository) GetProfile(ctx context.Context, id string) (persistence.Profile, error) {
	if id == "" {
		return persistence.Profile{}, persistence.ErrNotFound
	}

	query := `
		SELECT id, full_name, role, created_at
		FROM profiles
		WHERE id = ?
	`

	var profile persistence.Profile
	var createdAt string

	err := r.helper.QueryRow(ctx, query, id).Scan(
		&profile.ID,
		&profile.FullName,
		&profile.Role,
		&createdAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Profile{}, persistence.ErrNotFound
		}
		return persistence.Profile{}, r.mapper.MapError("get profile", err)
	}

	if profile.CreatedAt, err = decodeTime("created_at", createdAt); err != nil {
		return persistence.Profile{}, err
	}
	return profile, nil
}

// ListProfiles returns every profile ordered by creation time then id.
func (r *ProfileRepository) ListProfiles(ctx context.Context) ([]persistence.Profile, error) {
	query := `
		SELECT id, full_name, role, created_at
		FROM profiles
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.helper.Query(ctx, query)
	if err != nil {
		return nil, r.mapper.MapError("list profiles", err)
	}
	defer rows.Close()

	var profiles []persistence.Profile
	for rows.Next() {
		var profile persistence.Profile
		var createdAt string

		if err := rows.Scan(&profile.ID, &profile.FullName, &profile.Role, &createdAt); err != nil {
			return nil, r.mapper.MapError("list profiles", err)
		}
		if profile.CreatedAt, err = decodeTime("created_at", createdAt); err != nil {
			return nil, err
		}
		profiles = append(profiles, profile)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError("list profiles", err)
	}

	return profiles, nil
}
