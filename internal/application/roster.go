package application

import (
	"context"
	"crypto/subtle"
	"strings"
)

// RosterEntry binds a roster profile to its login credential. Password
// holds the fixed plaintext constant the agency uses; PasswordHash, when
// set, takes precedence and must be an argon2id digest.
type RosterEntry struct {
	Profile      Profile
	Password     string
	PasswordHash string
}

// Roster is the injected account directory loaded at startup. It replaces
// the original application's hardcoded global user table: authentication
// is a pure lookup over this structure.
type Roster struct {
	byName map[string]RosterEntry
	byID   map[string]RosterEntry
	order  []string
}

// NewRoster indexes the supplied entries by display name and profile id.
// Later duplicates of the same name replace earlier ones.
func NewRoster(entries []RosterEntry) *Roster {
	r := &Roster{
		byName: make(map[string]RosterEntry, len(entries)),
		byID:   make(map[string]RosterEntry, len(entries)),
	}
	for _, entry := range entries {
		name := strings.TrimSpace(entry.Profile.FullName)
		if name == "" || entry.Profile.ID == "" {
			continue
		}
		if _, seen := r.byID[entry.Profile.ID]; !seen {
			r.order = append(r.order, entry.Profile.ID)
		}
		r.byName[name] = entry
		r.byID[entry.Profile.ID] = entry
	}
	return r
}

// Lookup resolves a roster entry by trimmed display name.
func (r *Roster) Lookup(name string) (RosterEntry, bool) {
	if r == nil {
		return RosterEntry{}, false
	}
	entry, ok := r.byName[strings.TrimSpace(name)]
	return entry, ok
}

// ProfileByID resolves a roster profile by id.
func (r *Roster) ProfileByID(id string) (Profile, bool) {
	if r == nil {
		return Profile{}, false
	}
	entry, ok := r.byID[id]
	return entry.Profile, ok
}

// Profiles returns every roster profile in declaration order.
func (r *Roster) Profiles() []Profile {
	if r == nil {
		return nil
	}
	profiles := make([]Profile, 0, len(r.order))
	for _, id := range r.order {
		profiles = append(profiles, r.byID[id].Profile)
	}
	return profiles
}

// GetEmployee implements EmployeeDirectory over the roster. Owner
// accounts are not returned.
func (r *Roster) GetEmployee(ctx context.Context, id string) (Profile, error) {
	profile, ok := r.ProfileByID(id)
	if !ok || profile.Role != RoleEmployee {
		return Profile{}, ErrNotFound
	}
	return profile, nil
}

// ListEmployees implements EmployeeDirectory over the roster, returning
// employee profiles sorted by declaration order.
func (r *Roster) ListEmployees(ctx context.Context) ([]Profile, error) {
	var employees []Profile
	for _, profile := range r.Profiles() {
		if profile.Role == RoleEmployee {
			employees = append(employees, profile)
		}
	}
	return employees, nil
}

// VerifyEntryPassword checks a candidate password against the entry's
// credential. Hashed credentials use argon2id verification; plaintext
// constants are compared in constant time.
func VerifyEntryPassword(entry RosterEntry, password string) error {
	if entry.PasswordHash != "" {
		return VerifyPassword(entry.PasswordHash, password)
	}
	if subtle.ConstantTimeCompare([]byte(entry.Password), []byte(password)) == 1 {
		return nil
	}
	return ErrInvalidCredentials
}
