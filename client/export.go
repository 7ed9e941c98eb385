package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/smnsjas/go-obiee/saw"
)

// ExportService is the remote export API. *saw.AnalysisExportService
// satisfies it.
type ExportService interface {
	InitiateAnalysisExport(ctx context.Context, reportPath, outputFormat string, opts saw.ExecutionOptions) (*saw.QueryResult, error)
	CompleteAnalysisExport(ctx context.Context, queryID string) (*saw.ExportResult, error)
}

// ExportConfig holds export tuning.
type ExportConfig struct {
	// Timeout bounds how long an export may stay in progress.
	Timeout time.Duration

	// StatusCheckInterval is the pause between status queries.
	StatusCheckInterval time.Duration

	// OverwriteExisting lets ExportAndSave replace an existing file.
	OverwriteExisting bool
}

// DefaultExportConfig returns an ExportConfig with sensible defaults.
func DefaultExportConfig() ExportConfig {
	return ExportConfig{
		Timeout:             300 * time.Second,
		StatusCheckInterval: 2 * time.Second,
		OverwriteExisting:   false,
	}
}

// Validate checks that the configuration is valid.
func (c *ExportConfig) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("%w: timeout must be positive", ErrValidation)
	}
	if c.StatusCheckInterval <= 0 {
		return fmt.Errorf("%w: status check interval must be positive", ErrValidation)
	}
	return nil
}

// Exporter runs analysis exports end to end. It holds no per-export state
// and is safe for concurrent use.
type Exporter struct {
	svc     ExportService
	cfg     ExportConfig
	clock   Clock
	sleep   Sleeper
	logger  *slog.Logger
	metrics *Metrics
}

// ExporterOption configures an Exporter.
type ExporterOption func(*Exporter)

// WithExporterLogger sets the exporter's logger.
func WithExporterLogger(logger *slog.Logger) ExporterOption {
	return func(e *Exporter) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithExporterMetrics records export outcomes in m.
func WithExporterMetrics(m *Metrics) ExporterOption {
	return func(e *Exporter) {
		e.metrics = m
	}
}

// WithClock replaces the time source used for timeouts.
func WithClock(c Clock) ExporterOption {
	return func(e *Exporter) {
		e.clock = c
	}
}

// WithSleeper replaces the wait between status queries.
func WithSleeper(s Sleeper) ExporterOption {
	return func(e *Exporter) {
		e.sleep = s
	}
}

// NewExporter creates an Exporter using svc.
func NewExporter(svc ExportService, cfg ExportConfig, opts ...ExporterOption) (*Exporter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid export config: %w", err)
	}

	e := &Exporter{
		svc:    svc,
		cfg:    cfg,
		clock:  realClock{},
		sleep:  sleepContext,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Config returns the exporter's configuration.
func (e *Exporter) Config() ExportConfig {
	return e.cfg
}

// ExportAndSave exports r and writes the result to
// <output folder>/<report name><extension>, creating the folder if needed.
// It returns the written path.
//
// The overwrite check happens at write time, after the export has run.
func (e *Exporter) ExportAndSave(ctx context.Context, r *Report) (string, error) {
	if r.OutputFolder() == "" {
		err := fmt.Errorf("%w: output folder is required when exporting to file", ErrValidation)
		e.logger.Error("export not started", "report", r, "error", err)
		e.metrics.observeExport(r.OutputFormat(), outcomeInvalid, 0, 0)
		return "", err
	}

	start := e.clock.Now()
	result, err := e.export(ctx, r)
	if err != nil {
		e.metrics.observeExport(r.OutputFormat(), outcomeFor(err), 0, 0)
		return "", err
	}

	path, err := e.save(result, r)
	if err != nil {
		e.metrics.observeExport(r.OutputFormat(), outcomeFor(err), 0, 0)
		return "", err
	}

	e.metrics.observeExport(r.OutputFormat(), outcomeDone, e.clock.Now().Sub(start), len(result.ViewData))
	return path, nil
}

// ExportToMemory exports r and returns the payload with its file extension
// (for example ".pdf"). Nothing is written to disk.
func (e *Exporter) ExportToMemory(ctx context.Context, r *Report) (*bytes.Reader, string, error) {
	start := e.clock.Now()
	result, err := e.export(ctx, r)
	if err != nil {
		e.metrics.observeExport(r.OutputFormat(), outcomeFor(err), 0, 0)
		return nil, "", err
	}

	ext, err := ExtensionForMIMEType(result.MIMEType)
	if err != nil {
		e.logger.Error("cannot map export MIME type", "report", r, "error", err)
		e.metrics.observeExport(r.OutputFormat(), outcomeInvalid, 0, 0)
		return nil, "", err
	}

	e.metrics.observeExport(r.OutputFormat(), outcomeDone, e.clock.Now().Sub(start), len(result.ViewData))
	return bytes.NewReader(result.ViewData), ext, nil
}

// export submits r and polls until the result is ready.
func (e *Exporter) export(ctx context.Context, r *Report) (*saw.ExportResult, error) {
	e.logger.Info("exporting report", "report", r.Name(), "format", r.OutputFormat())

	queryID, err := e.initiate(ctx, r)
	if err != nil {
		e.logger.Error("export failed", "report", r.Name(), "error", err)
		return nil, err
	}

	result, err := pollExport(ctx, e.svc, queryID, pollPolicy{
		timeout:  e.cfg.Timeout,
		interval: e.cfg.StatusCheckInterval,
		clock:    e.clock,
		sleep:    e.sleep,
		logger:   e.logger,
		onPoll:   e.metrics.observePoll,
	})
	if err != nil {
		e.logger.Error("export failed", "report", r.Name(), "query_id", queryID, "error", err)
		return nil, err
	}

	e.logger.Info("export complete", "report", r.Name(), "bytes", len(result.ViewData))
	return result, nil
}

func (e *Exporter) initiate(ctx context.Context, r *Report) (string, error) {
	opts := r.ExecutionOptions()
	e.logger.Debug("initiating export",
		"ref", r.Ref(),
		"format", r.OutputFormat(),
		"async", opts.Async,
		"use_mtom", opts.UseMtom,
		"refresh", opts.Refresh)

	qr, err := e.svc.InitiateAnalysisExport(ctx, r.Ref(), r.OutputFormat(), opts)
	if err != nil {
		if !isUpstream(err) {
			e.logger.Debug("unexpected initiate error", "error", err)
		}
		return "", wrapUpstream(err)
	}
	if qr == nil || qr.QueryID == "" {
		e.logger.Debug("initiate reply carried no query ID")
		return "", ErrExportFailed
	}

	e.logger.Debug("export submitted", "query_id", qr.QueryID, "status", qr.ExportStatus)
	return qr.QueryID, nil
}

// save writes the export payload for r and returns the file path.
func (e *Exporter) save(result *saw.ExportResult, r *Report) (string, error) {
	ext, err := ExtensionForMIMEType(result.MIMEType)
	if err != nil {
		e.logger.Error("cannot map export MIME type", "report", r.Name(), "error", err)
		return "", err
	}

	if err := os.MkdirAll(r.OutputFolder(), 0750); err != nil {
		err = fmt.Errorf("create output folder: %w", err)
		e.logger.Error("cannot save export", "report", r.Name(), "error", err)
		return "", err
	}

	path := filepath.Join(r.OutputFolder(), r.Name()+ext)
	e.logger.Debug("saving export data", "path", path)

	if err := writeExport(path, result.ViewData, e.cfg.OverwriteExisting); err != nil {
		if errors.Is(err, fs.ErrExist) {
			err = fmt.Errorf("%w: %s and overwriting is disabled: %w", ErrFileExists, path, err)
		}
		e.logger.Error("cannot save export", "path", path, "error", err)
		return "", err
	}

	e.logger.Info("export saved", "path", path)
	return path, nil
}

// writeExport writes data to path. Without overwrite the file is created
// exclusively, so an existing file is never touched.
func writeExport(path string, data []byte, overwrite bool) error {
	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !overwrite {
		flags |= os.O_EXCL
	}

	f, err := os.OpenFile(path, flags, 0640)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close() // Best-effort close; the write error wins
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func outcomeFor(err error) string {
	switch {
	case errors.Is(err, ErrTimeout):
		return outcomeTimeout
	case errors.Is(err, ErrValidation):
		return outcomeInvalid
	case errors.Is(err, ErrFileExists):
		return outcomeFileExists
	default:
		return outcomeFailed
	}
}
