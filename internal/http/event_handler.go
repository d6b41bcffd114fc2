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
)

type schedulerService interface {
	ListEvents(ctx context.Context, principal application.Principal) ([]application.CalendarEvent, error)
	CreateEvent(ctx context.Context, params application.CreateEventParams) (application.CalendarEvent, error)
	UpdateEvent(ctx context.Context, params application.UpdateEventParams) (application.CalendarEvent, error)
	DeleteEvent(ctx context.Context, principal application.Principal, eventID string) error
	DisplayTime(t time.Time) time.Time
}

type EventHandler struct {
	service   schedulerService
	responder responder
}

func NewEventHandler(service schedulerService, logger *slog.Logger) *EventHandler {
	return &EventHandler{service: service, responder: newResponder(defaultLogger(logger))}
}

// List returns the events visible to the principal sorted by start time.
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	events, err := h.service.ListEvents(r.Context(), principal)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, listEventsResponse{Events: h.toEventDTOs(events)})
}

// Create schedules a new calendar event.
func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	event, err := h.service.CreateEvent(r.Context(), application.CreateEventParams{
		Principal: principal,
		Input:     req.toInput(),
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusCreated, eventResponse{Event: h.toEventDTO(event)})
}

// Update applies a partial event update.
func (h *EventHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	eventID := strings.TrimSpace(mux.Vars(r)["id"])
	if eventID == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidEventID)
		return
	}

	var req eventPatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	event, err := h.service.UpdateEvent(r.Context(), application.UpdateEventParams{
		Principal: principal,
		EventID:   eventID,
		Patch:     req.toPatch(),
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, eventResponse{Event: h.toEventDTO(event)})
}

// Delete removes an event.
func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	eventID := strings.TrimSpace(mux.Vars(r)["id"])
	if eventID == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidEventID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	if err := h.service.DeleteEvent(r.Context(), principal, eventID); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

type eventRequest struct {
	EmployeeID  string `json:"employee_id"`
	ClientID    string `json:"client_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	StartTime   string `json:"start_time"`
	MeetingType string `json:"meeting_type"`
}

func (r eventRequest) toInput() application.EventInput {
	return application.EventInput{
		EmployeeID:  strings.TrimSpace(r.EmployeeID),
		ClientID:    optionalField(r.ClientID),
		Title:       r.Title,
		Description: optionalField(r.Description),
		StartTime:   parseTime(r.StartTime),
		MeetingType: application.MeetingType(strings.TrimSpace(r.MeetingType)),
	}
}

type eventPatchRequest struct {
	EmployeeID  *string `json:"employee_id"`
	ClientID    *string `json:"client_id"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
	StartTime   *string `json:"start_time"`
	MeetingType *string `json:"meeting_type"`
}

func (r eventPatchRequest) toPatch() application.EventPatch {
	patch := application.EventPatch{
		EmployeeID:  r.EmployeeID,
		ClientID:    r.ClientID,
		Title:       r.Title,
		Description: r.Description,
	}
	if r.StartTime != nil {
		t := parseTime(*r.StartTime)
		patch.StartTime = &t
	}
	if r.MeetingType != nil {
		mt := application.MeetingType(strings.TrimSpace(*r.MeetingType))
		patch.MeetingType = &mt
	}
	return patch
}

type eventResponse struct {
	Event eventDTO `json:"event"`
}

type listEventsResponse struct {
	Events []eventDTO `json:"events"`
}

type eventDTO struct {
	ID          string  `json:"id"`
	EmployeeID  string  `json:"employee_id"`
	ClientID    *string `json:"client_id,omitempty"`
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
	StartTime   string  `json:"start_time"`
	// DisplayTime is the start instant shifted to the agency's fixed
	// civil zone for rendering.
	DisplayTime string `json:"display_time"`
	MeetingType string `json:"meeting_type"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

func (h *EventHandler) toEventDTO(event application.CalendarEvent) eventDTO {
	return eventDTO{
		ID:          event.ID,
		EmployeeID:  event.EmployeeID,
		ClientID:    event.ClientID,
		Title:       event.Title,
		Description: event.Description,
		StartTime:   event.StartTime.UTC().Format(time.RFC3339Nano),
		DisplayTime: h.service.DisplayTime(event.StartTime).UTC().Format(time.RFC3339Nano),
		MeetingType: string(event.MeetingType),
		CreatedAt:   event.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:   event.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func (h *EventHandler) toEventDTOs(events []application.CalendarEvent) []eventDTO {
	if len(events) == 0 {
		return nil
	}
	out := make([]eventDTO, 0, len(events))
	for _, event := range events {
		out = append(out, h.toEventDTO(event))
	}
	return out
}
