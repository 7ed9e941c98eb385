package client

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"

	"github.com/smnsjas/go-obiee/saw"
)

// mockSessionService is a scripted SessionService.
type mockSessionService struct {
	mu sync.Mutex

	LogonFunc  func(ctx context.Context, username, password string) (string, error)
	LogoffFunc func(ctx context.Context, sessionID string) error

	logons  []string
	logoffs []string
}

func (m *mockSessionService) Logon(ctx context.Context, username, password string) (string, error) {
	m.mu.Lock()
	m.logons = append(m.logons, username)
	m.mu.Unlock()
	if m.LogonFunc != nil {
		return m.LogonFunc(ctx, username, password)
	}
	return "session-1", nil
}

func (m *mockSessionService) Logoff(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	m.logoffs = append(m.logoffs, sessionID)
	m.mu.Unlock()
	if m.LogoffFunc != nil {
		return m.LogoffFunc(ctx, sessionID)
	}
	return nil
}

func (m *mockSessionService) logoffCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.logoffs...)
}

// mockExportService answers status queries from a script. Once the script
// is exhausted the last reply repeats.
type mockExportService struct {
	mu sync.Mutex

	InitiateFunc func(ctx context.Context, reportPath, outputFormat string, opts saw.ExecutionOptions) (*saw.QueryResult, error)

	statuses  []string
	statusErr error
	viewData  []byte
	mimeType  string

	initiated []saw.ExecutionOptions
	queries   int
}

func newMockExportService(mimeType string, data []byte, statuses ...string) *mockExportService {
	return &mockExportService{
		statuses: statuses,
		viewData: data,
		mimeType: mimeType,
	}
}

func (m *mockExportService) InitiateAnalysisExport(ctx context.Context, reportPath, outputFormat string, opts saw.ExecutionOptions) (*saw.QueryResult, error) {
	m.mu.Lock()
	m.initiated = append(m.initiated, opts)
	m.mu.Unlock()
	if m.InitiateFunc != nil {
		return m.InitiateFunc(ctx, reportPath, outputFormat, opts)
	}
	return &saw.QueryResult{QueryID: "q-1", ExportStatus: saw.StatusInProgress}, nil
}

func (m *mockExportService) CompleteAnalysisExport(_ context.Context, queryID string) (*saw.ExportResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.queries++
	if m.statusErr != nil {
		return nil, m.statusErr
	}
	i := m.queries - 1
	if i >= len(m.statuses) {
		i = len(m.statuses) - 1
	}
	status := m.statuses[i]

	result := &saw.ExportResult{QueryID: queryID, ExportStatus: status}
	if status == saw.StatusDone {
		result.ViewData = m.viewData
		result.MIMEType = m.mimeType
	}
	return result, nil
}

func (m *mockExportService) queryCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.queries
}

// fakeClock is a manually advanced Clock. Its sleeper advances the clock
// instead of blocking.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.Advance(d)
	return nil
}

// newBufferLogger returns a logger writing text records to the returned
// buffer.
func newBufferLogger(level slog.Level) (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: level})), &buf
}

// counterValue reads the current value of a counter.
func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}
