package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/example/agency-crm/internal/persistence"
)

// ClientRepository implements persistence.ClientRepository using SQLite.
type ClientRepository struct {
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewClientRepository creates a new SQLite client repository.
func NewClientRepository(pool *ConnectionPool) *ClientRepository {
	return &ClientRepository{
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

const clientColumns = `id, employee_id, full_name, birth_date, phone, contact_date,
	source, referral_name, initial_info, progress_notes, next_contact,
	status, completion_date, cancellation_reason, created_at, updated_at`

// CreateClient inserts a new client record.
func (r *ClientRepository) CreateClient(ctx context.Context, client persistence.Client) (persistence.Client, error) {
	if client.ID == "" || client.EmployeeID == "" {
		return persistence.Client{}, persistence.ErrConstraintViolation
	}

	query := `
		INSERT INTO clients (` + clientColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.helper.Exec(ctx, query,
		client.ID,
		client.EmployeeID,
		client.FullName,
		encodeNullTime(client.BirthDate),
		encodeNullString(client.Phone),
		encodeTime(client.ContactDate),
		client.Source,
		encodeNullString(client.ReferralName),
		encodeNullString(client.InitialInfo),
		encodeNullString(client.ProgressNotes),
		encodeNullTime(client.NextContact),
		client.Status,
		encodeNullTime(client.CompletionDate),
		encodeNullString(client.CancellationReason),
		encodeTime(client.CreatedAt),
		encodeTime(client.UpdatedAt),
	)
	if err != nil {
		return persistence.Client{}, r.mapper.MapError("create client", err)
	}
	return client, nil
}

// UpdateClient replaces every mutable column of an existing client.
func (r *ClientRepository) UpdateClient(ctx context.Context, client persistence.Client) (persistence.Client, error) {
	query := `
		UPDATE clients
		SET employee_id = ?, full_name = ?, birth_date = ?, phone = ?,
			contact_date = ?, source = ?, referral_name = ?, initial_info = ?,
			progress_notes = ?, next_contact = ?, status = ?,
			completion_date = ?, cancellation_reason = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.helper.Exec(ctx, query,
		client.EmployeeID,
		client.FullName,
		encodeNullTime(client.BirthDate),
		encodeNullString(client.Phone),
		encodeTime(client.ContactDate),
		client.Source,
		encodeNullString(client.ReferralName),
		encodeNullString(client.InitialInfo),
		encodeNullString(client.ProgressNotes),
		encodeNullTime(client.NextContact),
		client.Status,
		encodeNullTime(client.CompletionDate),
		encodeNullString(client.CancellationReason),
		encodeTime(client.UpdatedAt),
		client.ID,
	)
	if err != nil {
		return persistence.Client{}, r.mapper.MapError("update client", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return persistence.Client{}, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.Client{}, persistence.ErrNotFound
	}
	return client, nil
}

// GetClient retrieves a client by id.
func (r *ClientRepository) GetClient(ctx context.Context, id string) (persistence.Client, error) {
	if id == "" {
		return persistence.Client{}, persistence.ErrNotFound
	}

	query := `SELECT ` + clientColumns + ` FROM clients WHERE id = ?`

	client, err := scanClient(r.helper.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Client{}, persistence.ErrNotFound
		}
		return persistence.Client{}, r.mapper.MapError("get client", err)
	}
	return client, nil
}

// ListClients returns clients ordered by creation time, optionally
// restricted to one employee.
func (r *ClientRepository) ListClients(ctx context.Context, filter persistence.ClientFilter) ([]persistence.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients`
	var args []any
	if filter.EmployeeID != "" {
		query += ` WHERE employee_id = ?`
		args = append(args, filter.EmployeeID)
	}
	query += ` ORDER BY created_at ASC, id ASC`

	rows, err := r.helper.Query(ctx, query, args...)
	if err != nil {
		return nil, r.mapper.MapError("list clients", err)
	}
	defer rows.Close()

	var clients []persistence.Client
	for rows.Next() {
		client, err := scanClient(rows)
		if err != nil {
			return nil, r.mapper.MapError("list clients", err)
		}
		clients = append(clients, client)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError("list clients", err)
	}

	return clients, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClient(row rowScanner) (persistence.Client, error) {
	var client persistence.Client
	var birthDate, phone, referralName, initialInfo, progressNotes sql.NullString
	var nextContact, completionDate, cancellationReason sql.NullString
	var contactDate, createdAt, updatedAt string

	err := row.Scan(
		&client.ID,
		&client.EmployeeID,
		&client.FullName,
		&birthDate,
		&phone,
		&contactDate,
		&client.Source,
		&referralName,
		&initialInfo,
		&progressNotes,
		&nextContact,
		&client.Status,
		&completionDate,
		&cancellationReason,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return persistence.Client{}, err
	}

	if client.BirthDate, err = decodeNullTime("birth_date", birthDate); err != nil {
		return persistence.Client{}, err
	}
	if client.ContactDate, err = decodeTime("contact_date", contactDate); err != nil {
		return persistence.Client{}, err
	}
	if client.NextContact, err = decodeNullTime("next_contact", nextContact); err != nil {
		return persistence.Client{}, err
	}
	if client.CompletionDate, err = decodeNullTime("completion_date", completionDate); err != nil {
		return persistence.Client{}, err
	}
	if client.CreatedAt, err = decodeTime("created_at", createdAt); err != nil {
		return persistence.Client{}, err
	}
	if client.UpdatedAt, err = decodeTime("updated_at", updatedAt); err != nil {
		return persistence.Client{}, err
	}

	client.Phone = decodeNullString(phone)
	client.ReferralName = decodeNullString(referralName)
	client.InitialInfo = decodeNullString(initialInfo)
	client.ProgressNotes = decodeNullString(progressNotes)
	client.CancellationReason = decodeNullString(cancellationReason)

	return client, nil
}
