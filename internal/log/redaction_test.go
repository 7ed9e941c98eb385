package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

type loginValue struct {
	user, password string
}

func (l loginValue) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("user", l.user),
		slog.String("password", l.password),
	)
}

func TestRedactingHandler(t *testing.T) {
	tests := []struct {
		name     string
		attrs    []any
		expected map[string]string
	}{
		{
			name: "sensitive keys are redacted",
			attrs: []any{
				slog.String("password", "secret123"),
				slog.String("session_id", "abcdef"),
				slog.String("user", "weblogic"),
			},
			expected: map[string]string{
				"password":   Redacted,
				"session_id": Redacted,
				"user":       "weblogic",
			},
		},
		{
			name: "case insensitive matching",
			attrs: []any{
				slog.String("UserPassword", "secret"),
				slog.String("Set_Cookie", "ORA_BIPS_NQID=x"),
				slog.String("SessionID", "abc"),
			},
			expected: map[string]string{
				"UserPassword": Redacted,
				"Set_Cookie":   Redacted,
				"SessionID":    Redacted,
			},
		},
		{
			name: "exact keys do not match as fragments",
			attrs: []any{
				slog.String("passes", "3"),
				slog.String("session_endpoint", "https://bi/saw.dll"),
			},
			expected: map[string]string{
				"passes":           "3",
				"session_endpoint": "https://bi/saw.dll",
			},
		},
		{
			name: "nested groups are redacted",
			attrs: []any{
				slog.Group("credentials",
					slog.String("token", "hidden"),
					slog.String("user", "visible"),
				),
			},
			expected: map[string]string{
				"credentials.token": Redacted,
				"credentials.user":  "visible",
			},
		},
		{
			name:  "log valuers are resolved",
			attrs: []any{slog.Any("login", loginValue{user: "weblogic", password: "hunter2"})},
			expected: map[string]string{
				"login.user":     "weblogic",
				"login.password": Redacted,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(NewRedactingHandler(slog.NewJSONHandler(&buf, nil)))
			logger.Info("test message", tt.attrs...)

			var result map[string]any
			if err := json.Unmarshal(buf.Bytes(), &result); err != nil {
				t.Fatalf("failed to parse log output: %v", err)
			}

			for k, want := range tt.expected {
				got, ok := lookup(result, strings.Split(k, "."))
				if !ok {
					t.Errorf("key %s not found in output", k)
					continue
				}
				if got != want {
					t.Errorf("key %s: got %v, want %v", k, got, want)
				}
			}
		})
	}
}

func TestRedactingHandler_WithAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewRedactingHandler(slog.NewJSONHandler(&buf, nil))).
		With("password", "secret").
		WithGroup("export")
	logger.Info("msg", "session_id", "abc", "report", "/shared/a")

	out := buf.String()
	if strings.Contains(out, "secret") || strings.Contains(out, `"abc"`) {
		t.Errorf("sensitive value leaked: %s", out)
	}
	if !strings.Contains(out, `"export":{`) || !strings.Contains(out, "/shared/a") {
		t.Errorf("group or safe value missing: %s", out)
	}
}

func lookup(m map[string]any, path []string) (any, bool) {
	var val any = m
	for _, part := range path {
		obj, ok := val.(map[string]any)
		if !ok {
			return nil, false
		}
		if val, ok = obj[part]; !ok {
			return nil, false
		}
	}
	return val, true
}
