package client

import (
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/smnsjas/go-obiee/saw"
)

// Output format tags accepted by the export service.
const (
	FormatPDF            = "PDF"
	FormatMHTML          = "MHTML"
	FormatHTML           = "HTML"
	FormatExcel          = "Excel"
	FormatExcel2007      = "Excel2007"
	FormatCSV            = "CSV"
	FormatXML            = "XML"
	FormatPowerPoint     = "PowerPoint"
	FormatPowerPoint2007 = "PowerPoint2007"
	FormatText           = "TXT"
)

var knownFormats = []string{
	FormatPDF, FormatMHTML, FormatHTML, FormatExcel, FormatExcel2007,
	FormatCSV, FormatXML, FormatPowerPoint, FormatPowerPoint2007, FormatText,
}

// IsKnownFormat reports whether format is an accepted output format tag,
// ignoring case.
func IsKnownFormat(format string) bool {
	for _, f := range knownFormats {
		if strings.EqualFold(f, format) {
			return true
		}
	}
	return false
}

// Report describes one export request: which analysis, in what format, and
// where to put the result. A Report is immutable once created.
type Report struct {
	ref          string
	outputFormat string
	outputFolder string
	customName   string
	refresh      bool
}

// ReportOption configures a Report.
type ReportOption func(*reportOptions)

type reportOptions struct {
	outputFolder string
	customName   string
	refresh      bool
	logger       *slog.Logger
}

// WithOutputFolder sets the directory ExportAndSave writes to.
func WithOutputFolder(folder string) ReportOption {
	return func(o *reportOptions) {
		o.outputFolder = folder
	}
}

// WithCustomName overrides the saved file's base name. Without it the
// final segment of the catalog path is used.
func WithCustomName(name string) ReportOption {
	return func(o *reportOptions) {
		o.customName = name
	}
}

// WithRefresh asks the server to recompute the analysis before exporting.
func WithRefresh(refresh bool) ReportOption {
	return func(o *reportOptions) {
		o.refresh = refresh
	}
}

// WithReportLogger sets the logger that receives normalization warnings.
func WithReportLogger(logger *slog.Logger) ReportOption {
	return func(o *reportOptions) {
		o.logger = logger
	}
}

// NewReport validates and creates a Report for the analysis at ref
// (a catalog path such as "/shared/Sales/Revenue") exported as format.
//
// Surrounding whitespace on any string field is removed with a warning.
func NewReport(ref, format string, opts ...ReportOption) (*Report, error) {
	o := reportOptions{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}

	r := &Report{
		ref:          trimAndWarn(o.logger, "report_ref", ref),
		outputFormat: trimAndWarn(o.logger, "output_format", format),
		outputFolder: trimAndWarn(o.logger, "output_folder", o.outputFolder),
		customName:   trimAndWarn(o.logger, "custom_report_name", o.customName),
		refresh:      o.refresh,
	}

	if err := r.validate(); err != nil {
		o.logger.Error("invalid report", "error", err)
		return nil, err
	}
	return r, nil
}

func (r *Report) validate() error {
	if r.ref == "" {
		return fmt.Errorf("%w: report reference is required", ErrValidation)
	}
	if r.outputFormat == "" {
		return fmt.Errorf("%w: output format is required", ErrValidation)
	}
	if !IsKnownFormat(r.outputFormat) {
		return fmt.Errorf("%w: unknown output format %q (want one of %s)",
			ErrValidation, r.outputFormat, strings.Join(knownFormats, ", "))
	}
	if strings.ContainsAny(r.customName, `/\`) {
		return fmt.Errorf("%w: custom report name %q must not contain path separators",
			ErrValidation, r.customName)
	}
	if r.OriginalName() == "" {
		return fmt.Errorf("%w: report reference %q has no name segment", ErrValidation, r.ref)
	}
	return nil
}

// trimAndWarn trims value and logs a warning when that changed it.
func trimAndWarn(logger *slog.Logger, field, value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed != value {
		logger.Warn("leading or trailing space removed; consider correcting the input at the source",
			"field", field,
			"before", value,
			"after", trimmed)
	}
	return trimmed
}

// Ref returns the catalog path of the analysis.
func (r *Report) Ref() string { return r.ref }

// OutputFormat returns the requested export format tag.
func (r *Report) OutputFormat() string { return r.outputFormat }

// OutputFolder returns the save directory, or "" if none was set.
func (r *Report) OutputFolder() string { return r.outputFolder }

// CustomName returns the file base name override, or "" if none was set.
func (r *Report) CustomName() string { return r.customName }

// Refresh reports whether the server recomputes the analysis first.
func (r *Report) Refresh() bool { return r.refresh }

// Name returns the base name for the saved file: the custom name if one
// was given, else the analysis name from the catalog path.
func (r *Report) Name() string {
	if r.customName != "" {
		return r.customName
	}
	return r.OriginalName()
}

// OriginalName returns the analysis name from the catalog path, ignoring
// any custom name.
func (r *Report) OriginalName() string {
	trimmed := strings.TrimRight(r.ref, "/")
	if trimmed == "" {
		return ""
	}
	return path.Base(trimmed)
}

// ExecutionOptions returns the options sent with the export request.
// Exports always run asynchronously with inline (non-MTOM) payloads, since
// the status polling depends on it.
func (r *Report) ExecutionOptions() saw.ExecutionOptions {
	return saw.ExecutionOptions{
		Async:   true,
		UseMtom: false,
		Refresh: r.refresh,
	}
}

// LogValue implements slog.LogValuer.
func (r *Report) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("ref", r.ref),
		slog.String("name", r.Name()),
		slog.String("format", r.outputFormat),
		slog.Bool("refresh", r.refresh),
	)
}
