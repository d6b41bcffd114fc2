package application

import (
	"context"
	"errors"
	"testing"
)

func sampleRoster() *Roster {
	return NewRoster([]RosterEntry{
		{Profile: Profile{ID: "own-1", FullName: "Александр Широков", Role: RoleOwner}, Password: "123"},
		{Profile: Profile{ID: "emp-1", FullName: "Наталья", Role: RoleEmployee}, Password: "123"},
		{Profile: Profile{ID: "emp-2", FullName: "Михаил", Role: RoleEmployee}, Password: "123"},
	})
}

func TestRosterLookup(t *testing.T) {
	roster := sampleRoster()

	entry, ok := roster.Lookup("Наталья")
	if !ok || entry.Profile.ID != "emp-1" {
		t.Fatalf("Lookup = %+v, %v", entry, ok)
	}

	if entry, ok := roster.Lookup("  Михаил  "); !ok || entry.Profile.ID != "emp-2" {
		t.Fatal("lookup should trim the name")
	}

	if _, ok := roster.Lookup("Призрак"); ok {
		t.Fatal("unknown names must not resolve")
	}
}

func TestRosterSkipsBlankEntries(t *testing.T) {
	roster := NewRoster([]RosterEntry{
		{Profile: Profile{ID: "", FullName: "Без идентификатора", Role: RoleEmployee}},
		{Profile: Profile{ID: "emp-1", FullName: "   ", Role: RoleEmployee}},
		{Profile: Profile{ID: "emp-2", FullName: "Наталья", Role: RoleEmployee}},
	})

	if got := len(roster.Profiles()); got != 1 {
		t.Fatalf("Profiles() length = %d, want 1", got)
	}
}

func TestRosterEmployeeDirectory(t *testing.T) {
	roster := sampleRoster()
	ctx := context.Background()

	employees, err := roster.ListEmployees(ctx)
	if err != nil {
		t.Fatalf("ListEmployees: %v", err)
	}
	if len(employees) != 2 || employees[0].ID != "emp-1" || employees[1].ID != "emp-2" {
		t.Fatalf("employees = %+v", employees)
	}

	if _, err := roster.GetEmployee(ctx, "own-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("owner must not resolve as employee, got %v", err)
	}
	if _, err := roster.GetEmployee(ctx, "emp-1"); err != nil {
		t.Fatalf("GetEmployee: %v", err)
	}
}

func TestVerifyEntryPassword(t *testing.T) {
	hash, err := CreatePasswordHash("secret", DefaultArgon2idParams)
	if err != nil {
		t.Fatalf("CreatePasswordHash: %v", err)
	}

	cases := []struct {
		name     string
		entry    RosterEntry
		password string
		wantErr  bool
	}{
		{name: "plaintext match", entry: RosterEntry{Password: "123"}, password: "123"},
		{name: "plaintext mismatch", entry: RosterEntry{Password: "123"}, password: "321", wantErr: true},
		{name: "hash match", entry: RosterEntry{PasswordHash: hash}, password: "secret"},
		{name: "hash mismatch", entry: RosterEntry{PasswordHash: hash}, password: "wrong", wantErr: true},
		{name: "hash shadows plaintext", entry: RosterEntry{Password: "123", PasswordHash: hash}, password: "123", wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := VerifyEntryPassword(tc.entry, tc.password)
			if tc.wantErr && err == nil {
				t.Fatal("expected an error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
