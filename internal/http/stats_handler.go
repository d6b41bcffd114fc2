package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/example/agency-crm/internal/application"
	"github.com/example/agency-crm/internal/export"
	"github.com/example/agency-crm/internal/format"
)

type statisticsService interface {
	Overview(ctx context.Context, principal application.Principal) (application.Statistics, error)
}

type civilClock interface {
	Now() time.Time
}

// StatsHandler serves the owner's statistics view, the XLSX exports, and
// the civil wall clock.
type StatsHandler struct {
	stats     statisticsService
	clients   clientService
	directory application.EmployeeDirectory
	clock     civilClock
	responder responder
}

func NewStatsHandler(stats statisticsService, clients clientService, directory application.EmployeeDirectory, clock civilClock, logger *slog.Logger) *StatsHandler {
	return &StatsHandler{
		stats:     stats,
		clients:   clients,
		directory: directory,
		clock:     clock,
		responder: newResponder(defaultLogger(logger)),
	}
}

// Overview returns the aggregated per-employee statistics as JSON.
func (h *StatsHandler) Overview(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.stats == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	stats, err := h.stats.Overview(r.Context(), principal)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toStatisticsDTO(stats))
}

// ExportClients streams the visible client list as an XLSX workbook.
func (h *StatsHandler) ExportClients(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.clients == nil || h.directory == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	clients, err := h.clients.ListClients(r.Context(), principal)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	employees, err := h.directory.ListEmployees(r.Context())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	names := make(map[string]string, len(employees))
	for _, employee := range employees {
		names[employee.ID] = employee.FullName
	}

	data, err := export.ClientsWorkbook(clients, names)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.writeWorkbook(w, "clients", data)
}

// ExportStatistics streams the owner's statistics as an XLSX workbook.
func (h *StatsHandler) ExportStatistics(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.stats == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	stats, err := h.stats.Overview(r.Context(), principal)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	data, err := export.StatisticsWorkbook(stats)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.writeWorkbook(w, "statistics", data)
}

// Now returns the current civil wall time in the agency's fixed zone.
func (h *StatsHandler) Now(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.clock == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	now := h.clock.Now()
	h.responder.writeJSON(r.Context(), w, http.StatusOK, nowResponse{
		Now:     now.UTC().Format(time.RFC3339Nano),
		Display: format.DateTime(now),
	})
}

func (h *StatsHandler) writeWorkbook(w http.ResponseWriter, name string, data []byte) {
	filename := fmt.Sprintf("%s_%s.xlsx", name, time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

type nowResponse struct {
	Now     string `json:"now"`
	Display string `json:"display"`
}

type statisticsDTO struct {
	Totals    statusCountsDTO         `json:"totals"`
	Employees []employeeStatisticsDTO `json:"employees"`
}

type statusCountsDTO struct {
	Total      int `json:"total"`
	New        int `json:"new"`
	InProgress int `json:"in_progress"`
	Completed  int `json:"completed"`
	Cancelled  int `json:"cancelled"`
}

type employeeStatisticsDTO struct {
	EmployeeID       string          `json:"employee_id"`
	FullName         string          `json:"full_name"`
	Counts           statusCountsDTO `json:"counts"`
	SuccessRate      float64         `json:"success_rate"`
	UpcomingMeetings int             `json:"upcoming_meetings"`
}

func toStatisticsDTO(stats application.Statistics) statisticsDTO {
	dto := statisticsDTO{Totals: toCountsDTO(stats.Totals)}
	for _, employee := range stats.Employees {
		dto.Employees = append(dto.Employees, employeeStatisticsDTO{
			EmployeeID:       employee.EmployeeID,
			FullName:         employee.FullName,
			Counts:           toCountsDTO(employee.Counts),
			SuccessRate:      employee.SuccessRate,
			UpcomingMeetings: employee.UpcomingMeetings,
		})
	}
	return dto
}

func toCountsDTO(counts application.StatusCounts) statusCountsDTO {
	return statusCountsDTO{
		Total:      counts.Total,
		New:        counts.New,
		InProgress: counts.InProgress,
		Completed:  counts.Completed,
		Cancelled:  counts.Cancelled,
	}
}
