// Package log holds the slog plumbing shared by the command-line tools:
// a handler that masks credentials and session identifiers, and a
// size-rotated log file.
package log

import (
	"context"
	"log/slog"
	"strings"
)

// Redacted replaces the value of a masked attribute.
const Redacted = "[REDACTED]"

// sensitiveFragments are matched case-insensitively against attribute keys.
// A key containing any of them is masked.
var sensitiveFragments = []string{
	"password",
	"passwd",
	"secret",
	"token",
	"cookie",
	"authorization",
	"cred",
}

// sensitiveKeys are masked only on an exact (case-insensitive) key match,
// since the words are too common to match as fragments.
var sensitiveKeys = map[string]struct{}{
	"pass":       {},
	"session_id": {},
	"sessionid":  {},
}

// IsSensitiveKey reports whether values logged under key are masked.
func IsSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	if _, ok := sensitiveKeys[lower]; ok {
		return true
	}
	for _, frag := range sensitiveFragments {
		if strings.Contains(lower, frag) {
			return true
		}
	}
	return false
}

// RedactingHandler is a slog.Handler that masks sensitive attributes before
// passing records on.
type RedactingHandler struct {
	next slog.Handler
}

// NewRedactingHandler wraps next.
func NewRedactingHandler(next slog.Handler) *RedactingHandler {
	return &RedactingHandler{next: next}
}

// Enabled implements slog.Handler.
func (h *RedactingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (h *RedactingHandler) Handle(ctx context.Context, r slog.Record) error {
	out := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		out.AddAttrs(redactAttr(a))
		return true
	})
	return h.next.Handle(ctx, out)
}

// WithAttrs implements slog.Handler.
func (h *RedactingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	redacted := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		redacted[i] = redactAttr(a)
	}
	return &RedactingHandler{next: h.next.WithAttrs(redacted)}
}

// WithGroup implements slog.Handler.
func (h *RedactingHandler) WithGroup(name string) slog.Handler {
	return &RedactingHandler{next: h.next.WithGroup(name)}
}

func redactAttr(a slog.Attr) slog.Attr {
	if IsSensitiveKey(a.Key) {
		return slog.String(a.Key, Redacted)
	}

	// LogValuers may expand into groups that carry sensitive members.
	a.Value = a.Value.Resolve()
	if a.Value.Kind() != slog.KindGroup {
		return a
	}

	members := a.Value.Group()
	redacted := make([]slog.Attr, len(members))
	for i, m := range members {
		redacted[i] = redactAttr(m)
	}
	return slog.Attr{Key: a.Key, Value: slog.GroupValue(redacted...)}
}
