package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/agency-crm/internal/persistence"
)

// ClientRepository captures the persistence interactions needed by the client service.
type ClientRepository interface {
	CreateClient(ctx context.Context, client Client) (Client, error)
	UpdateClient(ctx context.Context, client Client) (Client, error)
	GetClient(ctx context.Context, id string) (Client, error)
	// ListClients returns clients for one employee, or every client when
	// employeeID is empty. Order follows creation time.
	ListClients(ctx context.Context, employeeID string) ([]Client, error)
}

// EmployeeDirectory exposes roster lookup operations.
type EmployeeDirectory interface {
	// GetEmployee resolves an employee profile by id. Accounts holding the
	// owner role are not returned.
	GetEmployee(ctx context.Context, id string) (Profile, error)
	ListEmployees(ctx context.Context) ([]Profile, error)
}

// ClientService orchestrates validation, authorization, and persistence
// for the client lifecycle.
type ClientService struct {
	clients     ClientRepository
	directory   EmployeeDirectory
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewClientService wires dependencies for client operations.
func NewClientService(clients ClientRepository, directory EmployeeDirectory, idGenerator func() string, now func() time.Time, logger *slog.Logger) *ClientService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &ClientService{
		clients:     clients,
		directory:   directory,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *ClientService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ClientService", operation, attrs...)
}

// CreateClient validates the request and persists a new client in the
// initial pipeline state.
func (s *ClientService) CreateClient(ctx context.Context, params CreateClientParams) (client Client, err error) {
	if s == nil {
		err = fmt.Errorf("ClientService is nil")
		return
	}

	principal := params.Principal
	input := params.Input

	logger := s.loggerWith(ctx, "CreateClient", "actor_id", principal.ProfileID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "client creation failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("client_id", client.ID).InfoContext(ctx, "client created")
	}()

	vErr := &ValidationError{}

	fullName := strings.TrimSpace(input.FullName)
	if fullName == "" {
		vErr.add("full_name", "full name is required")
	}

	source := input.Source
	if source == "" {
		source = SourcePersonal
	}
	if !ValidSource(source) {
		vErr.add("source", "unknown client source")
	}

	employeeID := principal.ProfileID
	if principal.IsOwner() {
		employeeID = strings.TrimSpace(input.EmployeeID)
		if employeeID == "" {
			vErr.add("employee_id", "employee is required")
		} else if s.directory != nil {
			if _, dirErr := s.directory.GetEmployee(ctx, employeeID); dirErr != nil {
				if errors.Is(dirErr, ErrNotFound) {
					vErr.add("employee_id", "employee does not exist")
				} else {
					err = dirErr
					return
				}
			}
		}
	}

	if vErr.HasErrors() {
		err = vErr
		return
	}

	now := s.now()
	client = Client{
		ID:            s.idGenerator(),
		EmployeeID:    employeeID,
		FullName:      fullName,
		BirthDate:     input.BirthDate,
		Phone:         input.Phone,
		ContactDate:   now,
		Source:        source,
		ReferralName:  input.ReferralName,
		InitialInfo:   input.InitialInfo,
		ProgressNotes: input.ProgressNotes,
		NextContact:   input.NextContact,
		Status:        StatusNew,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if s.clients == nil {
		return
	}

	client, err = s.clients.CreateClient(ctx, client)
	if err != nil {
		client = Client{}
		err = mapClientRepoError(err)
	}
	return
}

// UpdateClient applies a partial update with replace-or-preserve
// semantics: nil patch fields keep the stored value, and an omitted
// status falls back to the record's current status.
func (s *ClientService) UpdateClient(ctx context.Context, params UpdateClientParams) (client Client, err error) {
	if s == nil {
		err = fmt.Errorf("ClientService is nil")
		return
	}
	if s.clients == nil {
		err = fmt.Errorf("client repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "UpdateClient",
		"actor_id", params.Principal.ProfileID,
		"client_id", params.ClientID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "client update failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "client updated")
	}()

	existing, err := s.clients.GetClient(ctx, params.ClientID)
	if err != nil {
		err = mapClientRepoError(err)
		return
	}

	if err = authorizeClientMutation(params.Principal, existing); err != nil {
		return
	}

	patch := params.Patch
	vErr := &ValidationError{}

	updated := existing
	if patch.FullName != nil {
		name := strings.TrimSpace(*patch.FullName)
		if name == "" {
			vErr.add("full_name", "full name is required")
		}
		updated.FullName = name
	}
	if patch.Source != nil {
		if !ValidSource(*patch.Source) {
			vErr.add("source", "unknown client source")
		}
		updated.Source = *patch.Source
	}
	if patch.Status != nil {
		if !ValidStatus(*patch.Status) {
			vErr.add("status", "unknown status")
		}
		updated.Status = *patch.Status
	}
	if patch.BirthDate != nil {
		updated.BirthDate = optionalTime(*patch.BirthDate)
	}
	if patch.Phone != nil {
		updated.Phone = optionalString(*patch.Phone)
	}
	if patch.ReferralName != nil {
		updated.ReferralName = optionalString(*patch.ReferralName)
	}
	if patch.InitialInfo != nil {
		updated.InitialInfo = optionalString(*patch.InitialInfo)
	}
	if patch.ProgressNotes != nil {
		updated.ProgressNotes = optionalString(*patch.ProgressNotes)
	}
	if patch.NextContact != nil {
		updated.NextContact = optionalTime(*patch.NextContact)
	}

	if vErr.HasErrors() {
		err = vErr
		return
	}

	updated.UpdatedAt = s.now()

	client, err = s.clients.UpdateClient(ctx, updated)
	if err != nil {
		client = Client{}
		err = mapClientRepoError(err)
	}
	return
}

// TransitionStatus moves a client through the pipeline graph, applying
// the completion and cancellation side effects.
func (s *ClientService) TransitionStatus(ctx context.Context, params TransitionParams) (client Client, err error) {
	if s == nil {
		err = fmt.Errorf("ClientService is nil")
		return
	}
	if s.clients == nil {
		err = fmt.Errorf("client repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "TransitionStatus",
		"actor_id", params.Principal.ProfileID,
		"client_id", params.ClientID,
		"target_status", string(params.NewStatus),
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "status transition failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "status transitioned")
	}()

	existing, err := s.clients.GetClient(ctx, params.ClientID)
	if err != nil {
		err = mapClientRepoError(err)
		return
	}

	if err = authorizeClientMutation(params.Principal, existing); err != nil {
		return
	}

	reason := strings.TrimSpace(params.Reason)
	if !TransitionAllowed(existing.Status, params.NewStatus, reason != "") {
		err = ErrInvalidTransition
		return
	}

	now := s.now()
	updated := existing
	updated.Status = params.NewStatus
	updated.CompletionDate = nil
	updated.CancellationReason = nil

	switch params.NewStatus {
	case StatusCompleted:
		completedAt := now
		updated.CompletionDate = &completedAt
	case StatusCancelled:
		updated.CancellationReason = &reason
	}

	updated.UpdatedAt = now

	client, err = s.clients.UpdateClient(ctx, updated)
	if err != nil {
		client = Client{}
		err = mapClientRepoError(err)
	}
	return
}

// ListClients returns the clients visible to the principal: everything
// for the owner, only the principal's own records for employees.
func (s *ClientService) ListClients(ctx context.Context, principal Principal) ([]Client, error) {
	if s == nil {
		return nil, fmt.Errorf("ClientService is nil")
	}
	if s.clients == nil {
		return nil, fmt.Errorf("client repository not configured")
	}

	employeeID := principal.ProfileID
	if principal.IsOwner() {
		employeeID = ""
	}

	clients, err := s.clients.ListClients(ctx, employeeID)
	if err != nil {
		return nil, mapClientRepoError(err)
	}
	return clients, nil
}

// TransitionAllowed reports whether the status graph permits the edge.
// It is a pure function of the current state, the target state, and
// whether a cancellation reason was supplied. No edge leads back to new.
func TransitionAllowed(current, target ClientStatus, hasReason bool) bool {
	switch current {
	case StatusNew:
		return target == StatusInProgress
	case StatusInProgress:
		if target == StatusCompleted {
			return true
		}
		return target == StatusCancelled && hasReason
	case StatusCancelled:
		return target == StatusInProgress
	}
	return false
}

// FilterClients narrows a listing by exact status and case-insensitive
// substring match on the full name. Input order is preserved.
func FilterClients(clients []Client, query ClientQuery) []Client {
	search := strings.ToLower(strings.TrimSpace(query.Search))

	filtered := make([]Client, 0, len(clients))
	for _, client := range clients {
		if query.Status != "" && client.Status != query.Status {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(client.FullName), search) {
			continue
		}
		filtered = append(filtered, client)
	}
	return filtered
}

func authorizeClientMutation(principal Principal, client Client) error {
	if principal.IsOwner() || client.EmployeeID == principal.ProfileID {
		return nil
	}
	return ErrUnauthorized
}

func mapClientRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

func optionalString(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
