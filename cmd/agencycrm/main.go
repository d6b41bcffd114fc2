package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/example/agency-crm/internal/application"
	"github.com/example/agency-crm/internal/civiltime"
	"github.com/example/agency-crm/internal/config"
	httptransport "github.com/example/agency-crm/internal/http"
	"github.com/example/agency-crm/internal/persistence"
	"github.com/example/agency-crm/internal/persistence/sqlite"
	"github.com/example/agency-crm/internal/reminder"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	storage, err := sqlite.Open(cfg.SQLiteDSN)
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := storage.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	if err := sqlite.Migrate(context.Background(), storage); err != nil {
		logger.Error("failed to apply schema", "error", err)
		os.Exit(1)
	}

	roster := application.NewRoster(cfg.RosterEntries())
	profileRepo := sqlite.NewProfileRepository(storage)
	if err := seedRoster(ctx, profileRepo, roster, time.Now()); err != nil {
		logger.Error("failed to seed roster profiles", "error", err)
		os.Exit(1)
	}

	idGenerator := uuid.NewString
	tokenGenerator := func() string { return randomHex(32) }
	now := time.Now

	clientRepo := newClientRepositoryAdapter(sqlite.NewClientRepository(storage))
	eventRepo := newEventRepositoryAdapter(sqlite.NewEventRepository(storage))
	sessionRepo := newSessionRepositoryAdapter(sqlite.NewSessionRepository(storage))

	normalizer := civiltime.NewNormalizer(nil)
	displayClock := civiltime.NewClock(normalizer, now)
	displayClock.Start()
	defer displayClock.Stop()

	clientService := application.NewClientService(clientRepo, roster, idGenerator, now, logger)
	eventService := application.NewSchedulerService(eventRepo, roster, normalizer, idGenerator, now, logger)
	authService := application.NewAuthService(roster, sessionRepo, tokenGenerator, now, cfg.SessionTTL, logger)
	statsService := application.NewStatisticsService(clientRepo, eventRepo, roster, now, logger)

	scanner := reminder.NewScanner(clientRepo, nil, logger, reminder.WithWindow(cfg.ReminderWindow))
	if err := scanner.Start(ctx); err != nil {
		logger.Error("failed to start reminder scanner", "error", err)
		os.Exit(1)
	}
	defer scanner.Stop()

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Auth:              httptransport.NewAuthHandler(authService, logger),
		Clients:           httptransport.NewClientHandler(clientService, logger),
		Events:            httptransport.NewEventHandler(eventService, logger),
		Stats:             httptransport.NewStatsHandler(statsService, clientService, roster, displayClock, logger),
		SessionMiddleware: httptransport.RequireSession(authService, logger),
		Middleware: []func(http.Handler) http.Handler{
			httptransport.RequestLogger(logger),
		},
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("agency CRM API listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}

// seedRoster mirrors configured accounts into the profiles table so
// foreign keys on clients and events resolve.
func seedRoster(ctx context.Context, repo *sqlite.ProfileRepository, roster *application.Roster, createdAt time.Time) error {
	for _, profile := range roster.Profiles() {
		stored := persistence.Profile{
			ID:        profile.ID,
			FullName:  profile.FullName,
			Role:      string(profile.Role),
			CreatedAt: createdAt.UTC(),
		}
		if err := repo.UpsertProfile(ctx, stored); err != nil {
			return err
		}
	}
	return nil
}

func randomHex(bytes int) string {
	if bytes <= 0 {
		bytes = 16
	}
	buf := make([]byte, bytes)
	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		return fmt.Sprintf("fallback-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(buf)
}

type clientRepositoryAdapter struct {
	repo *sqlite.ClientRepository
}

func newClientRepositoryAdapter(repo *sqlite.ClientRepository) *clientRepositoryAdapter {
	return &clientRepositoryAdapter{repo: repo}
}

func (a *clientRepositoryAdapter) CreateClient(ctx context.Context, client application.Client) (application.Client, error) {
	stored, err := a.repo.CreateClient(ctx, toPersistenceClient(client))
	if err != nil {
		return application.Client{}, err
	}
	return toApplicationClient(stored), nil
}

func (a *clientRepositoryAdapter) UpdateClient(ctx context.Context, client application.Client) (application.Client, error) {
	stored, err := a.repo.UpdateClient(ctx, toPersistenceClient(client))
	if err != nil {
		return application.Client{}, err
	}
	return toApplicationClient(stored), nil
}

func (a *clientRepositoryAdapter) GetClient(ctx context.Context, id string) (application.Client, error) {
	stored, err := a.repo.GetClient(ctx, id)
	if err != nil {
		return application.Client{}, err
	}
	return toApplicationClient(stored), nil
}

func (a *clientRepositoryAdapter) ListClients(ctx context.Context, employeeID string) ([]application.Client, error) {
	models, err := a.repo.ListClients(ctx, persistence.ClientFilter{EmployeeID: employeeID})
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, nil
	}
	clients := make([]application.Client, 0, len(models))
	for _, model := range models {
		clients = append(clients, toApplicationClient(model))
	}
	return clients, nil
}

type eventRepositoryAdapter struct {
	repo *sqlite.EventRepository
}

func newEventRepositoryAdapter(repo *sqlite.EventRepository) *eventRepositoryAdapter {
	return &eventRepositoryAdapter{repo: repo}
}

func (a *eventRepositoryAdapter) CreateEvent(ctx context.Context, event application.CalendarEvent) (application.CalendarEvent, error) {
	stored, err := a.repo.CreateEvent(ctx, toPersistenceEvent(event))
	if err != nil {
		return application.CalendarEvent{}, err
	}
	return toApplicationEvent(stored), nil
}

func (a *eventRepositoryAdapter) UpdateEvent(ctx context.Context, event application.CalendarEvent) (application.CalendarEvent, error) {
	stored, err := a.repo.UpdateEvent(ctx, toPersistenceEvent(event))
	if err != nil {
		return application.CalendarEvent{}, err
	}
	return toApplicationEvent(stored), nil
}

func (a *eventRepositoryAdapter) GetEvent(ctx context.Context, id string) (application.CalendarEvent, error) {
	stored, err := a.repo.GetEvent(ctx, id)
	if err != nil {
		return application.CalendarEvent{}, err
	}
	return toApplicationEvent(stored), nil
}

func (a *eventRepositoryAdapter) ListEvents(ctx context.Context, employeeID string) ([]application.CalendarEvent, error) {
	models, err := a.repo.ListEvents(ctx, persistence.EventFilter{EmployeeID: employeeID})
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, nil
	}
	events := make([]application.CalendarEvent, 0, len(models))
	for _, model := range models {
		events = append(events, toApplicationEvent(model))
	}
	return events, nil
}

func (a *eventRepositoryAdapter) DeleteEvent(ctx context.Context, id string) error {
	return a.repo.DeleteEvent(ctx, id)
}

type sessionRepositoryAdapter struct {
	repo *sqlite.SessionRepository
}

func newSessionRepositoryAdapter(repo *sqlite.SessionRepository) *sessionRepositoryAdapter {
	return &sessionRepositoryAdapter{repo: repo}
}

func (a *sessionRepositoryAdapter) CreateSession(ctx context.Context, session application.Session) (application.Session, error) {
	stored, err := a.repo.CreateSession(ctx, persistence.Session{
		Token:     session.Token,
		ProfileID: session.ProfileID,
		ExpiresAt: session.ExpiresAt,
		CreatedAt: session.CreatedAt,
	})
	if err != nil {
		return application.Session{}, err
	}
	return toApplicationSession(stored), nil
}

func (a *sessionRepositoryAdapter) GetSession(ctx context.Context, token string) (application.Session, error) {
	stored, err := a.repo.GetSession(ctx, token)
	if err != nil {
		return application.Session{}, err
	}
	return toApplicationSession(stored), nil
}

func (a *sessionRepositoryAdapter) DeleteSession(ctx context.Context, token string) error {
	return a.repo.DeleteSession(ctx, token)
}

func (a *sessionRepositoryAdapter) DeleteExpiredSessions(ctx context.Context, reference time.Time) error {
	return a.repo.DeleteExpiredSessions(ctx, reference)
}

func toApplicationClient(model persistence.Client) application.Client {
	return application.Client{
		ID:                 model.ID,
		EmployeeID:         model.EmployeeID,
		FullName:           model.FullName,
		BirthDate:          cloneTime(model.BirthDate),
		Phone:              cloneString(model.Phone),
		ContactDate:        model.ContactDate,
		Source:             application.Source(model.Source),
		ReferralName:       cloneString(model.ReferralName),
		InitialInfo:        cloneString(model.InitialInfo),
		ProgressNotes:      cloneString(model.ProgressNotes),
		NextContact:        cloneTime(model.NextContact),
		Status:             application.ClientStatus(model.Status),
		CompletionDate:     cloneTime(model.CompletionDate),
		CancellationReason: cloneString(model.CancellationReason),
		CreatedAt:          model.CreatedAt,
		UpdatedAt:          model.UpdatedAt,
	}
}

func toPersistenceClient(client application.Client) persistence.Client {
	return persistence.Client{
		ID:                 client.ID,
		EmployeeID:         client.EmployeeID,
		FullName:           client.FullName,
		BirthDate:          cloneTime(client.BirthDate),
		Phone:              cloneString(client.Phone),
		ContactDate:        client.ContactDate,
		Source:             string(client.Source),
		ReferralName:       cloneString(client.ReferralName),
		InitialInfo:        cloneString(client.InitialInfo),
		ProgressNotes:      cloneString(client.ProgressNotes),
		NextContact:        cloneTime(client.NextContact),
		Status:             string(client.Status),
		CompletionDate:     cloneTime(client.CompletionDate),
		CancellationReason: cloneString(client.CancellationReason),
		CreatedAt:          client.CreatedAt,
		UpdatedAt:          client.UpdatedAt,
	}
}

func toApplicationEvent(model persistence.CalendarEvent) application.CalendarEvent {
	return application.CalendarEvent{
		ID:          model.ID,
		EmployeeID:  model.EmployeeID,
		ClientID:    cloneString(model.ClientID),
		Title:       model.Title,
		Description: cloneString(model.Description),
		StartTime:   model.StartTime,
		MeetingType: application.MeetingType(model.MeetingType),
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}

func toPersistenceEvent(event application.CalendarEvent) persistence.CalendarEvent {
	return persistence.CalendarEvent{
		ID:          event.ID,
		EmployeeID:  event.EmployeeID,
		ClientID:    cloneString(event.ClientID),
		Title:       event.Title,
		Description: cloneString(event.Description),
		StartTime:   event.StartTime,
		MeetingType: string(event.MeetingType),
		CreatedAt:   event.CreatedAt,
		UpdatedAt:   event.UpdatedAt,
	}
}

func toApplicationSession(model persistence.Session) application.Session {
	return application.Session{
		Token:     model.Token,
		ProfileID: model.ProfileID,
		ExpiresAt: model.ExpiresAt,
		CreatedAt: model.CreatedAt,
	}
}

func cloneString(value *string) *string {
	if value == nil {
		return nil
	}
	clone := *value
	return &clone
}

func cloneTime(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	clone := *value
	return &clone
}
