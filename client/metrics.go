package client

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Export outcomes used as the "outcome" metric label.
const (
	outcomeDone       = "done"
	outcomeFailed     = "failed"
	outcomeTimeout    = "timeout"
	outcomeInvalid    = "invalid"
	outcomeFileExists = "file_exists"
)

// Metrics records export and session activity. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	exports        *prometheus.CounterVec
	exportDuration *prometheus.HistogramVec
	exportBytes    prometheus.Counter
	statusPolls    prometheus.Counter
	sessions       *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		exports: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "obiee_exports_total",
				Help: "Analysis exports by output format and outcome.",
			},
			[]string{"format", "outcome"},
		),
		exportDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "obiee_export_duration_seconds",
				Help:    "Wall-clock time from export submission to result.",
				Buckets: []float64{1, 2, 5, 10, 30, 60, 120, 300, 600},
			},
			[]string{"format"},
		),
		exportBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "obiee_export_bytes_total",
			Help: "Bytes of exported report data received.",
		}),
		statusPolls: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "obiee_export_status_polls_total",
			Help: "Export status queries sent.",
		}),
		sessions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "obiee_session_operations_total",
				Help: "Logon and logoff calls by outcome.",
			},
			[]string{"operation", "outcome"},
		),
	}

	for _, c := range []prometheus.Collector{m.exports, m.exportDuration, m.exportBytes, m.statusPolls, m.sessions} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) observeExport(format, outcome string, elapsed time.Duration, size int) {
	if m == nil {
		return
	}
	m.exports.WithLabelValues(format, outcome).Inc()
	if outcome == outcomeDone {
		m.exportDuration.WithLabelValues(format).Observe(elapsed.Seconds())
		m.exportBytes.Add(float64(size))
	}
}

func (m *Metrics) observePoll() {
	if m == nil {
		return
	}
	m.statusPolls.Inc()
}

func (m *Metrics) observeSession(operation string, err error) {
	if m == nil {
		return
	}
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}
	m.sessions.WithLabelValues(operation, outcome).Inc()
}
