package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/smnsjas/go-obiee/client"
	"github.com/smnsjas/go-obiee/internal/jobfile"
)

type batchOptions struct {
	failFast  bool
	overwrite bool
}

func newBatchCommand(global *globalOptions) *cobra.Command {
	opts := &batchOptions{}

	cmd := &cobra.Command{
		Use:   "batch <jobs.yaml>",
		Short: "Export every analysis listed in a job file",
		Long: `Export every analysis listed in a YAML job file within one session.
A failed export is reported and the remaining reports still run, unless
--fail-fast is set.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			job, err := jobfile.Load(args[0])
			if err != nil {
				return err
			}
			return run(cmd, global, func(a *app) error {
				return runBatch(cmd.Context(), a, job, opts)
			})
		},
	}

	cmd.Flags().BoolVar(&opts.failFast, "fail-fast", false, "stop at the first failed export")
	cmd.Flags().BoolVar(&opts.overwrite, "overwrite", false, "replace existing output files (overrides the job file)")

	return cmd
}

func runBatch(ctx context.Context, a *app, job *jobfile.Job, opts *batchOptions) error {
	reports, err := job.Reports(a.logger)
	if err != nil {
		return err
	}
	for _, r := range reports {
		if r.OutputFolder() == "" {
			return fmt.Errorf("report %s: no folder and no output_folder in job file", r.Ref())
		}
	}

	cfg := job.ExportConfig(client.DefaultExportConfig())
	if opts.overwrite {
		cfg.OverwriteExisting = true
	}

	return a.withSession(ctx, func(ctx context.Context, c *client.Client, sessionID string) error {
		exp, err := c.NewExporter(sessionID, cfg)
		if err != nil {
			return err
		}

		var (
			failed []error
			saved  int
			start  = time.Now()
		)
		for i, r := range reports {
			if err := ctx.Err(); err != nil {
				failed = append(failed, err)
				break
			}

			began := time.Now()
			path, err := exp.ExportAndSave(ctx, r)
			if err != nil {
				fmt.Fprintf(a.stderr, "[%d/%d] %s: FAILED: %v\n", i+1, len(reports), r.Ref(), err)
				failed = append(failed, fmt.Errorf("%s: %w", r.Ref(), err))
				if opts.failFast {
					break
				}
				continue
			}
			saved++
			fmt.Fprintf(a.stderr, "[%d/%d] %s\n", i+1, len(reports), describeSaved(path, time.Since(began)))
		}

		fmt.Fprintf(a.stderr, "%s of %s exported in %s\n",
			humanize.Comma(int64(saved)),
			humanize.Comma(int64(len(reports))),
			time.Since(start).Round(time.Millisecond))

		return errors.Join(failed...)
	})
}
