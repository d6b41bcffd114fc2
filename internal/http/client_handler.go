package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/example/agency-crm/internal/application"
	"github.com/example/agency-crm/internal/format"
)

type clientService interface {
	CreateClient(ctx context.Context, params application.CreateClientParams) (application.Client, error)
	UpdateClient(ctx context.Context, params application.UpdateClientParams) (application.Client, error)
	TransitionStatus(ctx context.Context, params application.TransitionParams) (application.Client, error)
	ListClients(ctx context.Context, principal application.Principal) ([]application.Client, error)
}

type ClientHandler struct {
	service   clientService
	responder responder
}

func NewClientHandler(service clientService, logger *slog.Logger) *ClientHandler {
	return &ClientHandler{service: service, responder: newResponder(defaultLogger(logger))}
}

// List returns the clients visible to the principal, optionally narrowed
// by status and a case-insensitive name search.
func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	clients, err := h.service.ListClients(r.Context(), principal)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	query := application.ClientQuery{
		Status: application.ClientStatus(strings.TrimSpace(r.URL.Query().Get("status"))),
		Search: r.URL.Query().Get("search"),
	}
	clients = application.FilterClients(clients, query)

	h.responder.writeJSON(r.Context(), w, http.StatusOK, listClientsResponse{Clients: toClientDTOs(clients)})
}

// Create registers a new client in the initial pipeline state.
func (h *ClientHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req clientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	client, err := h.service.CreateClient(r.Context(), application.CreateClientParams{
		Principal: principal,
		Input:     req.toInput(),
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusCreated, clientResponse{Client: toClientDTO(client)})
}

// Update applies a partial client update.
func (h *ClientHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	clientID := strings.TrimSpace(mux.Vars(r)["id"])
	if clientID == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidClientID)
		return
	}

	var req clientPatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	client, err := h.service.UpdateClient(r.Context(), application.UpdateClientParams{
		Principal: principal,
		ClientID:  clientID,
		Patch:     req.toPatch(),
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, clientResponse{Client: toClientDTO(client)})
}

// Transition moves a client to a new pipeline status.
func (h *ClientHandler) Transition(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	clientID := strings.TrimSpace(mux.Vars(r)["id"])
	if clientID == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidClientID)
		return
	}

	var req transitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	client, err := h.service.TransitionStatus(r.Context(), application.TransitionParams{
		Principal: principal,
		ClientID:  clientID,
		NewStatus: application.ClientStatus(strings.TrimSpace(req.Status)),
		Reason:    req.Reason,
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, clientResponse{Client: toClientDTO(client)})
}

type clientRequest struct {
	EmployeeID    string `json:"employee_id"`
	FullName      string `json:"full_name"`
	BirthDate     string `json:"birth_date"`
	Phone         string `json:"phone"`
	Source        string `json:"source"`
	ReferralName  string `json:"referral_name"`
	InitialInfo   string `json:"initial_info"`
	ProgressNotes string `json:"progress_notes"`
	NextContact   string `json:"next_contact"`
}

func (r clientRequest) toInput() application.ClientInput {
	return application.ClientInput{
		EmployeeID:    strings.TrimSpace(r.EmployeeID),
		FullName:      r.FullName,
		BirthDate:     parseOptionalTime(r.BirthDate),
		Phone:         optionalField(r.Phone),
		Source:        application.Source(strings.TrimSpace(r.Source)),
		ReferralName:  optionalField(r.ReferralName),
		InitialInfo:   optionalField(r.InitialInfo),
		ProgressNotes: optionalField(r.ProgressNotes),
		NextContact:   parseOptionalTime(r.NextContact),
	}
}

// clientPatchRequest distinguishes absent fields from explicit clears:
// a missing key preserves the stored value, an empty string clears it.
type clientPatchRequest struct {
	FullName      *string `json:"full_name"`
	BirthDate     *string `json:"birth_date"`
	Phone         *string `json:"phone"`
	Source        *string `json:"source"`
	ReferralName  *string `json:"referral_name"`
	InitialInfo   *string `json:"initial_info"`
	ProgressNotes *string `json:"progress_notes"`
	NextContact   *string `json:"next_contact"`
	Status        *string `json:"status"`
}

func (r clientPatchRequest) toPatch() application.ClientPatch {
	patch := application.ClientPatch{
		FullName:      r.FullName,
		Phone:         r.Phone,
		ReferralName:  r.ReferralName,
		InitialInfo:   r.InitialInfo,
		ProgressNotes: r.ProgressNotes,
	}
	if r.BirthDate != nil {
		t := parseTime(*r.BirthDate)
		patch.BirthDate = &t
	}
	if r.NextContact != nil {
		t := parseTime(*r.NextContact)
		patch.NextContact = &t
	}
	if r.Source != nil {
		source := application.Source(strings.TrimSpace(*r.Source))
		patch.Source = &source
	}
	if r.Status != nil {
		status := application.ClientStatus(strings.TrimSpace(*r.Status))
		patch.Status = &status
	}
	return patch
}

type transitionRequest struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}

type clientResponse struct {
	Client clientDTO `json:"client"`
}

type listClientsResponse struct {
	Clients []clientDTO `json:"clients"`
}

type clientDTO struct {
	ID                 string  `json:"id"`
	EmployeeID         string  `json:"employee_id"`
	FullName           string  `json:"full_name"`
	BirthDate          *string `json:"birth_date,omitempty"`
	Phone              *string `json:"phone,omitempty"`
	PhoneFormatted     string  `json:"phone_formatted,omitempty"`
	ContactDate        string  `json:"contact_date"`
	Source             string  `json:"source"`
	ReferralName       *string `json:"referral_name,omitempty"`
	InitialInfo        *string `json:"initial_info,omitempty"`
	ProgressNotes      *string `json:"progress_notes,omitempty"`
	NextContact        *string `json:"next_contact,omitempty"`
	Status             string  `json:"status"`
	CompletionDate     *string `json:"completion_date,omitempty"`
	CancellationReason *string `json:"cancellation_reason,omitempty"`
	CreatedAt          string  `json:"created_at"`
	UpdatedAt          string  `json:"updated_at"`
}

func toClientDTO(client application.Client) clientDTO {
	dto := clientDTO{
		ID:                 client.ID,
		EmployeeID:         client.EmployeeID,
		FullName:           client.FullName,
		BirthDate:          formatOptionalTime(client.BirthDate),
		Phone:              client.Phone,
		ContactDate:        client.ContactDate.UTC().Format(time.RFC3339Nano),
		Source:             string(client.Source),
		ReferralName:       client.ReferralName,
		InitialInfo:        client.InitialInfo,
		ProgressNotes:      client.ProgressNotes,
		NextContact:        formatOptionalTime(client.NextContact),
		Status:             string(client.Status),
		CompletionDate:     formatOptionalTime(client.CompletionDate),
		CancellationReason: client.CancellationReason,
		CreatedAt:          client.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:          client.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
	if client.Phone != nil {
		dto.PhoneFormatted = format.Phone(*client.Phone)
	}
	return dto
}

func toClientDTOs(clients []application.Client) []clientDTO {
	if len(clients) == 0 {
		return nil
	}
	out := make([]clientDTO, 0, len(clients))
	for _, client := range clients {
		out = append(out, toClientDTO(client))
	}
	return out
}

func parseTime(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	if ts, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return ts
	}
	if ts, err := time.Parse(time.RFC3339, value); err == nil {
		return ts
	}
	return time.Time{}
}

func parseOptionalTime(value string) *time.Time {
	ts := parseTime(value)
	if ts.IsZero() {
		return nil
	}
	return &ts
}

func optionalField(value string) *string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return &value
}

func formatOptionalTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339Nano)
	return &s
}
