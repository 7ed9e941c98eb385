package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/smnsjas/go-obiee/client"
)

type exportOptions struct {
	report    string
	format    string
	outDir    string
	name      string
	refresh   bool
	timeout   time.Duration
	interval  time.Duration
	overwrite bool
	stdout    bool
}

func (o *exportOptions) exportConfig() client.ExportConfig {
	return client.ExportConfig{
		Timeout:             o.timeout,
		StatusCheckInterval: o.interval,
		OverwriteExisting:   o.overwrite,
	}
}

func newExportCommand(global *globalOptions) *cobra.Command {
	opts := &exportOptions{}
	defaults := client.DefaultExportConfig()

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export one analysis",
		Long: `Export one analysis and save it as <out>/<name><ext>, where the extension
follows the MIME type the server reports. With --stdout the payload is
written to standard output instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.report == "" {
				return errors.New("--report is required")
			}
			if !opts.stdout && opts.outDir == "" {
				return errors.New("--out is required unless --stdout is set")
			}
			return run(cmd, global, func(a *app) error {
				return runExport(cmd.Context(), a, opts, cmd.OutOrStdout())
			})
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.report, "report", "r", "", "catalog path of the analysis, e.g. /shared/Sales/Revenue")
	f.StringVarP(&opts.format, "format", "f", client.FormatPDF, "output format: PDF, MHTML, HTML, Excel, Excel2007, CSV, XML, PowerPoint, PowerPoint2007, TXT")
	f.StringVarP(&opts.outDir, "out", "o", "", "output folder")
	f.StringVar(&opts.name, "name", "", "file name without extension (default: the analysis name)")
	f.BoolVar(&opts.refresh, "refresh", false, "recompute the analysis before exporting")
	f.DurationVar(&opts.timeout, "timeout", defaults.Timeout, "give up if the export is still running after this long")
	f.DurationVar(&opts.interval, "interval", defaults.StatusCheckInterval, "pause between status checks")
	f.BoolVar(&opts.overwrite, "overwrite", false, "replace an existing output file")
	f.BoolVar(&opts.stdout, "stdout", false, "write the export to standard output")

	return cmd
}

func runExport(ctx context.Context, a *app, opts *exportOptions, stdout io.Writer) error {
	reportOpts := []client.ReportOption{
		client.WithCustomName(opts.name),
		client.WithRefresh(opts.refresh),
		client.WithReportLogger(a.logger),
	}
	if !opts.stdout {
		reportOpts = append(reportOpts, client.WithOutputFolder(opts.outDir))
	}
	r, err := client.NewReport(opts.report, opts.format, reportOpts...)
	if err != nil {
		return err
	}

	return a.withSession(ctx, func(ctx context.Context, c *client.Client, sessionID string) error {
		exp, err := c.NewExporter(sessionID, opts.exportConfig())
		if err != nil {
			return err
		}

		start := time.Now()
		if opts.stdout {
			rd, _, err := exp.ExportToMemory(ctx, r)
			if err != nil {
				return err
			}
			_, err = io.Copy(stdout, rd)
			return err
		}

		path, err := exp.ExportAndSave(ctx, r)
		if err != nil {
			return err
		}
		fmt.Fprintln(a.stderr, describeSaved(path, time.Since(start)))
		return nil
	})
}

// describeSaved formats a one-line summary of a saved export.
func describeSaved(path string, elapsed time.Duration) string {
	size := "unknown size"
	if info, err := os.Stat(path); err == nil {
		size = humanize.Bytes(uint64(info.Size()))
	}
	return fmt.Sprintf("Saved %s (%s in %s)", path, size, elapsed.Round(time.Millisecond))
}
