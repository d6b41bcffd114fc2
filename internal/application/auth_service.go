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

// SessionRepository captures the persistence interactions for issued sessions.
type SessionRepository interface {
	CreateSession(ctx context.Context, session Session) (Session, error)
	GetSession(ctx context.Context, token string) (Session, error)
	DeleteSession(ctx context.Context, token string) error
	DeleteExpiredSessions(ctx context.Context, reference time.Time) error
}

// AuthService resolves logins against the injected roster and manages
// durable session tokens so a login survives process restarts.
type AuthService struct {
	roster         *Roster
	sessions       SessionRepository
	tokenGenerator func() string
	now            func() time.Time
	sessionTTL     time.Duration
	logger         *slog.Logger
}

// NewAuthService constructs an AuthService with the provided dependencies.
func NewAuthService(roster *Roster, sessions SessionRepository, tokenGenerator func() string, now func() time.Time, sessionTTL time.Duration, logger *slog.Logger) *AuthService {
	if tokenGenerator == nil {
		tokenGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	if sessionTTL <= 0 {
		sessionTTL = 24 * time.Hour
	}
	return &AuthService{
		roster:         roster,
		sessions:       sessions,
		tokenGenerator: tokenGenerator,
		now:            now,
		sessionTTL:     sessionTTL,
		logger:         defaultLogger(logger),
	}
}

func (s *AuthService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "AuthService", operation, attrs...)
}

// LoginResult captures the outcome of a successful login.
type LoginResult struct {
	Profile Profile
	Session Session
}

// Login validates roster credentials and issues a session token. Unknown
// names and wrong passwords are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, name, password string) (result LoginResult, err error) {
	if s == nil {
		err = fmt.Errorf("AuthService is nil")
		return
	}
	if s.roster == nil {
		err = fmt.Errorf("roster not configured")
		return
	}

	trimmed := strings.TrimSpace(name)
	logger := s.loggerWith(ctx, "Login", "name", trimmed)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "login failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("profile_id", result.Profile.ID).InfoContext(ctx, "login succeeded")
	}()

	if trimmed == "" || password == "" {
		err = ErrInvalidCredentials
		return
	}

	entry, ok := s.roster.Lookup(trimmed)
	if !ok {
		err = ErrInvalidCredentials
		return
	}
	if err = VerifyEntryPassword(entry, password); err != nil {
		err = ErrInvalidCredentials
		return
	}

	now := s.now()
	session := Session{
		Token:     s.tokenGenerator(),
		ProfileID: entry.Profile.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionTTL),
	}

	if s.sessions != nil {
		if err = s.sessions.DeleteExpiredSessions(ctx, now); err != nil {
			err = mapSessionRepoError(err)
			return
		}
		session, err = s.sessions.CreateSession(ctx, session)
		if err != nil {
			err = mapSessionRepoError(err)
			return
		}
	}

	result = LoginResult{Profile: entry.Profile, Session: session}
	return
}

// ValidateSession verifies a token and returns the acting principal.
func (s *AuthService) ValidateSession(ctx context.Context, token string) (principal Principal, err error) {
	if s == nil {
		err = fmt.Errorf("AuthService is nil")
		return
	}
	if s.sessions == nil {
		err = fmt.Errorf("session repository not configured")
		return
	}

	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		err = ErrInvalidCredentials
		return
	}

	session, err := s.sessions.GetSession(ctx, trimmed)
	if err != nil {
		err = mapSessionRepoError(err)
		if errors.Is(err, ErrNotFound) {
			err = ErrUnauthorized
		}
		return
	}

	if !session.ExpiresAt.IsZero() && !session.ExpiresAt.After(s.now()) {
		err = ErrSessionExpired
		return
	}

	profile, ok := s.roster.ProfileByID(session.ProfileID)
	if !ok {
		err = ErrUnauthorized
		return
	}

	principal = Principal{ProfileID: profile.ID, FullName: profile.FullName, Role: profile.Role}
	return
}

// Logout removes the session bound to the token.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if s == nil {
		return fmt.Errorf("AuthService is nil")
	}
	if s.sessions == nil {
		return fmt.Errorf("session repository not configured")
	}

	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return ErrInvalidCredentials
	}

	logger := s.loggerWith(ctx, "Logout")
	if err := s.sessions.DeleteSession(ctx, trimmed); err != nil {
		err = mapSessionRepoError(err)
		if errors.Is(err, ErrNotFound) {
			// A vanished session is already logged out.
			return nil
		}
		logger.ErrorContext(ctx, "logout failed", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	logger.InfoContext(ctx, "session removed")
	return nil
}

func mapSessionRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
