package application

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"
)

// StatusCounts aggregates clients per pipeline state.
type StatusCounts struct {
	Total      int
	New        int
	InProgress int
	Completed  int
	Cancelled  int
}

// EmployeeStatistics aggregates one employee's client and meeting figures.
type EmployeeStatistics struct {
	EmployeeID string
	FullName   string
	Counts     StatusCounts
	// SuccessRate is the completed share of the employee's clients as a
	// percentage with one decimal.
	SuccessRate float64
	// UpcomingMeetings counts the employee's events that start after the
	// reference time.
	UpcomingMeetings int
}

// Statistics is the owner's aggregated cross-employee view.
type Statistics struct {
	Totals    StatusCounts
	Employees []EmployeeStatistics
}

// StatisticsService computes the owner's aggregated views.
type StatisticsService struct {
	clients   ClientRepository
	events    EventRepository
	directory EmployeeDirectory
	now       func() time.Time
	logger    *slog.Logger
}

// NewStatisticsService wires dependencies for statistics computation.
func NewStatisticsService(clients ClientRepository, events EventRepository, directory EmployeeDirectory, now func() time.Time, logger *slog.Logger) *StatisticsService {
	if now == nil {
		now = time.Now
	}
	return &StatisticsService{
		clients:   clients,
		events:    events,
		directory: directory,
		now:       now,
		logger:    defaultLogger(logger),
	}
}

// Overview aggregates every employee's pipeline figures. Only the owner
// may request it.
func (s *StatisticsService) Overview(ctx context.Context, principal Principal) (Statistics, error) {
	if s == nil {
		return Statistics{}, fmt.Errorf("StatisticsService is nil")
	}
	if !principal.IsOwner() {
		return Statistics{}, ErrUnauthorized
	}
	if s.clients == nil || s.events == nil || s.directory == nil {
		return Statistics{}, fmt.Errorf("statistics dependencies not configured")
	}

	logger := serviceLogger(ctx, s.logger, "StatisticsService", "Overview")

	clients, err := s.clients.ListClients(ctx, "")
	if err != nil {
		err = mapClientRepoError(err)
		logger.ErrorContext(ctx, "statistics aggregation failed", "error", err, "error_kind", ErrorKind(err))
		return Statistics{}, err
	}

	events, err := s.events.ListEvents(ctx, "")
	if err != nil {
		err = mapClientRepoError(err)
		logger.ErrorContext(ctx, "statistics aggregation failed", "error", err, "error_kind", ErrorKind(err))
		return Statistics{}, err
	}

	employees, err := s.directory.ListEmployees(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "statistics aggregation failed", "error", err, "error_kind", ErrorKind(err))
		return Statistics{}, err
	}

	now := s.now()
	stats := Statistics{Totals: CountByStatus(clients)}

	for _, employee := range employees {
		var own []Client
		for _, client := range clients {
			if client.EmployeeID == employee.ID {
				own = append(own, client)
			}
		}

		upcoming := 0
		for _, event := range events {
			if event.EmployeeID == employee.ID && event.StartTime.After(now) {
				upcoming++
			}
		}

		counts := CountByStatus(own)
		stats.Employees = append(stats.Employees, EmployeeStatistics{
			EmployeeID:       employee.ID,
			FullName:         employee.FullName,
			Counts:           counts,
			SuccessRate:      successRate(counts),
			UpcomingMeetings: upcoming,
		})
	}

	sort.SliceStable(stats.Employees, func(i, j int) bool {
		return stats.Employees[i].Counts.Completed > stats.Employees[j].Counts.Completed
	})

	return stats, nil
}

// CountByStatus tallies clients per pipeline state.
func CountByStatus(clients []Client) StatusCounts {
	counts := StatusCounts{Total: len(clients)}
	for _, client := range clients {
		switch client.Status {
		case StatusNew:
			counts.New++
		case StatusInProgress:
			counts.InProgress++
		case StatusCompleted:
			counts.Completed++
		case StatusCancelled:
			counts.Cancelled++
		}
	}
	return counts
}

func successRate(counts StatusCounts) float64 {
	if counts.Total == 0 {
		return 0
	}
	rate := float64(counts.Completed) / float64(counts.Total) * 100
	return math.Round(rate*10) / 10
}
