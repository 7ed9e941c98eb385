package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// SessionService is the remote logon/logoff API. *saw.SessionService
// satisfies it.
type SessionService interface {
	Logon(ctx context.Context, username, password string) (string, error)
	Logoff(ctx context.Context, sessionID string) error
}

// Session owns one authenticated session: Logon acquires the session ID,
// Logoff releases it. A Session is single-use.
//
// The password is dropped as soon as the logon attempt completes, and the
// session ID as soon as logoff has been attempted.
type Session struct {
	mu sync.Mutex

	svc       SessionService
	username  string
	password  string
	sessionID string
	used      bool

	logger   *slog.Logger
	security *SecurityLogger
	metrics  *Metrics
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithSessionLogger sets the session's logger.
func WithSessionLogger(logger *slog.Logger) SessionOption {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithSecurityLogger sets the logger for authentication audit events.
func WithSecurityLogger(l *SecurityLogger) SessionOption {
	return func(s *Session) {
		s.security = l
	}
}

// WithSessionMetrics records logon and logoff outcomes in m.
func WithSessionMetrics(m *Metrics) SessionOption {
	return func(s *Session) {
		s.metrics = m
	}
}

// NewSession creates a session manager for username. Nothing is sent until
// Logon is called.
func NewSession(svc SessionService, username, password string, opts ...SessionOption) *Session {
	s := &Session{
		svc:      svc,
		username: username,
		password: password,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Username returns the user the session logs on as.
func (s *Session) Username() string {
	return s.username
}

// ID returns the current session ID, or "" if not logged on.
func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessionID
}

// Logon authenticates against the session service and returns the session
// ID. It may be called once per Session.
func (s *Session) Logon(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.used {
		return "", fmt.Errorf("%w: session for %s has already logged on", ErrValidation, s.username)
	}
	s.used = true

	password := s.password
	s.password = ""

	s.logger.Info("attempting logon", "user", s.username)
	s.security.LogAuthentication(SubtypeAuthAttempt, OutcomeAttempt, SeverityInfo, nil)

	sessionID, err := s.svc.Logon(ctx, s.username, password)
	s.metrics.observeSession("logon", err)
	if err != nil {
		s.logger.Error("logon failed", "user", s.username, "error", err)
		s.security.LogAuthentication(SubtypeAuthFailure, OutcomeFailure, SeverityWarning,
			map[string]any{"error": err.Error()})
		return "", fmt.Errorf("%w: %w", ErrLogonFailed, err)
	}

	s.sessionID = sessionID
	s.logger.Info("logged on", "user", s.username)
	s.logger.Debug("session established", "session_id", sessionID)
	s.security.LogAuthentication(SubtypeAuthSuccess, OutcomeSuccess, SeverityInfo, nil)

	return sessionID, nil
}

// Logoff ends the session if Logon succeeded; otherwise it does nothing.
// The session ID is cleared whether or not the call succeeds, so Logoff
// runs at most once per logon.
func (s *Session) Logoff(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sessionID == "" {
		return nil
	}
	sessionID := s.sessionID
	s.sessionID = ""

	// A network failure here can leave the session alive on the server
	// until it idles out.
	err := s.svc.Logoff(ctx, sessionID)
	s.metrics.observeSession("logoff", err)
	if err != nil {
		s.logger.Error("logoff failed", "user", s.username, "error", err)
		s.security.LogSession(SubtypeSessionFailed, OutcomeFailure, SeverityWarning,
			map[string]any{"error": err.Error()})
		return fmt.Errorf("%w: %w", ErrLogoffFailed, err)
	}

	s.logger.Info("logged off", "user", s.username)
	s.logger.Debug("session closed", "session_id", sessionID)
	s.security.LogSession(SubtypeSessionClosed, OutcomeSuccess, SeverityInfo, nil)
	return nil
}

// WithSession logs s on, runs fn with the session ID, and always logs off
// afterwards. If logon fails, fn is not run and no logoff is attempted.
// When both fn and logoff fail, the returned error wraps both.
func WithSession(ctx context.Context, s *Session, fn func(ctx context.Context, sessionID string) error) (err error) {
	sessionID, err := s.Logon(ctx)
	if err != nil {
		return err
	}

	defer func() {
		// Release even if the caller's context was cancelled mid-export.
		if logoffErr := s.Logoff(context.WithoutCancel(ctx)); logoffErr != nil {
			err = errors.Join(err, logoffErr)
		}
	}()

	return fn(ctx, sessionID)
}
