package client

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// NIST SP 800-92 compliant event types
const (
	EventAuthentication   = "authentication"
	EventSessionLifecycle = "session_lifecycle"
)

// Security event subtypes
const (
	SubtypeAuthAttempt   = "attempt"
	SubtypeAuthSuccess   = "success"
	SubtypeAuthFailure   = "failure"
	SubtypeSessionClosed = "closed"
	SubtypeSessionFailed = "close_failed"
)

// Security event outcomes
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeAttempt = "attempt"
)

// Security event severities
const (
	SeverityInfo    = "INFO"
	SeverityWarning = "WARNING"
	SeverityError   = "ERROR"
)

// SecurityEvent represents a structured security log event compliant with NIST SP 800-92.
type SecurityEvent struct {
	// NIST Required Fields
	Timestamp string `json:"timestamp"`  // ISO 8601 UTC
	EventType string `json:"event_type"` // authentication, session_lifecycle
	Subtype   string `json:"subtype"`    // success, failure, attempt
	Severity  string `json:"severity"`   // INFO, WARNING, ERROR

	// Identity & Context
	User          string `json:"user,omitempty"`
	Source        string `json:"source"`         // "go-obiee" client
	Target        string `json:"target"`         // session service endpoint
	CorrelationID string `json:"correlation_id"` // Session-scoped UUID

	// Operation Details
	Action  string         `json:"action"`            // e.g., "logon", "logoff"
	Outcome string         `json:"outcome"`           // success, failure
	Details map[string]any `json:"details,omitempty"` // Context-specific details
}

// SecurityLogger is a helper to generate and write security events.
// A nil *SecurityLogger discards events.
type SecurityLogger struct {
	logger        *slog.Logger
	user          string
	target        string
	correlationID string
}

// NewSecurityLogger creates a new logger for a session.
// It generates a new CorrelationID (UUID) for this logger instance.
func NewSecurityLogger(logger *slog.Logger, user, target string) *SecurityLogger {
	return &SecurityLogger{
		logger:        logger,
		user:          user,
		target:        target,
		correlationID: uuid.New().String(),
	}
}

// CorrelationID returns the UUID shared by all events of this logger.
func (l *SecurityLogger) CorrelationID() string {
	if l == nil {
		return ""
	}
	return l.correlationID
}

// LogEvent constructs and logs a security event.
func (l *SecurityLogger) LogEvent(eventType, subtype, severity, outcome, action string, details map[string]any) {
	if l == nil || l.logger == nil {
		return
	}

	if details == nil {
		details = make(map[string]any)
	}

	event := &SecurityEvent{
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		EventType:     eventType,
		Subtype:       subtype,
		Severity:      severity,
		User:          l.user,
		Source:        "go-obiee",
		Target:        l.target,
		CorrelationID: l.correlationID,
		Action:        action,
		Outcome:       outcome,
		Details:       details,
	}

	switch severity {
	case SeverityWarning:
		l.logger.Warn("SecurityEvent", "event", event)
	case SeverityError:
		l.logger.Error("SecurityEvent", "event", event)
	default:
		l.logger.Info("SecurityEvent", "event", event)
	}
}

// LogAuthentication logs authentication events.
func (l *SecurityLogger) LogAuthentication(subtype, outcome, severity string, details map[string]any) {
	l.LogEvent(EventAuthentication, subtype, severity, outcome, "logon", details)
}

// LogSession logs session lifecycle events.
func (l *SecurityLogger) LogSession(subtype, outcome, severity string, details map[string]any) {
	l.LogEvent(EventSessionLifecycle, subtype, severity, outcome, "logoff", details)
}

// String returns the JSON representation of the event
func (e *SecurityEvent) String() string {
	b, _ := json.Marshal(e)
	return string(b)
}
