package client

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/smnsjas/go-obiee/saw"
)

// pollPolicy holds what pollExport needs besides the service.
type pollPolicy struct {
	timeout  time.Duration
	interval time.Duration
	clock    Clock
	sleep    Sleeper
	logger   *slog.Logger
	onPoll   func()
}

// pollExport queries the status of queryID until it is terminal.
//
// Elapsed time is measured from the first query and checked after every
// reply, before the status is looked at: once it exceeds the timeout the
// poll ends with ErrTimeout, whatever the status, and nothing more is sent.
func pollExport(ctx context.Context, svc ExportService, queryID string, p pollPolicy) (*saw.ExportResult, error) {
	start := p.clock.Now()

	for {
		result, err := svc.CompleteAnalysisExport(ctx, queryID)
		if p.onPoll != nil {
			p.onPoll()
		}
		if err != nil {
			return nil, wrapUpstream(err)
		}

		elapsed := p.clock.Now().Sub(start)
		p.logger.Debug("export status",
			"query_id", queryID,
			"status", result.ExportStatus,
			"elapsed", elapsed.Truncate(time.Second).String())

		if elapsed > p.timeout {
			return nil, fmt.Errorf("%w after %s (timeout %s)",
				ErrTimeout, elapsed.Truncate(time.Second), p.timeout)
		}

		switch result.ExportStatus {
		case saw.StatusInProgress:
			if err := p.sleep(ctx, p.interval); err != nil {
				return nil, fmt.Errorf("%w: %w", ErrExportFailed, err)
			}
		case saw.StatusDone:
			p.logger.Debug("export finished", "query_id", queryID,
				"elapsed", elapsed.Truncate(time.Second).String())
			return result, nil
		case saw.StatusError:
			return nil, fmt.Errorf("%w: server returned exportStatus %q", ErrExportFailed, saw.StatusError)
		default:
			return nil, fmt.Errorf("%w: server returned unknown exportStatus %q", ErrValidation, result.ExportStatus)
		}
	}
}

// wrapUpstream turns a service error into ErrExportFailed. Upstream faults
// keep their message and stay reachable through errors.As; anything else
// is reported without detail.
func wrapUpstream(err error) error {
	if isUpstream(err) {
		return fmt.Errorf("%w: %w", ErrExportFailed, err)
	}
	return ErrExportFailed
}
