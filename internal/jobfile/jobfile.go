// Package jobfile loads batch export jobs from YAML.
//
// A job file names a default output folder and the reports to export:
//
//	output_folder: ./exports
//	timeout: 10m
//	status_check_interval: 5s
//	overwrite: false
//	reports:
//	  - ref: /shared/Sales/Revenue
//	    format: PDF
//	  - ref: /shared/Sales/Pipeline
//	    format: Excel2007
//	    name: pipeline-weekly
//	    refresh: true
//	    folder: ./exports/weekly
package jobfile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/smnsjas/go-obiee/client"
)

// Job is a parsed job file.
type Job struct {
	OutputFolder        string        `yaml:"output_folder"`
	Timeout             time.Duration `yaml:"timeout"`
	StatusCheckInterval time.Duration `yaml:"status_check_interval"`
	Overwrite           *bool         `yaml:"overwrite"`
	Reports             []Entry       `yaml:"reports"`
}

// Entry is one report in a job file.
type Entry struct {
	Ref     string `yaml:"ref"`
	Format  string `yaml:"format"`
	Name    string `yaml:"name"`
	Refresh bool   `yaml:"refresh"`
	Folder  string `yaml:"folder"`
}

// Load reads and parses the job file at path.
func Load(path string) (*Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read job file: %w", err)
	}
	job, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return job, nil
}

// Parse decodes a job file. Unknown fields are rejected.
func Parse(data []byte) (*Job, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var job Job
	if err := dec.Decode(&job); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("job file is empty")
		}
		return nil, fmt.Errorf("parse job file: %w", err)
	}
	if len(job.Reports) == 0 {
		return nil, errors.New("job file lists no reports")
	}
	if job.Timeout < 0 || job.StatusCheckInterval < 0 {
		return nil, errors.New("job file durations must not be negative")
	}
	return &job, nil
}

// ExportConfig returns base with the job's overrides applied.
func (j *Job) ExportConfig(base client.ExportConfig) client.ExportConfig {
	if j.Timeout > 0 {
		base.Timeout = j.Timeout
	}
	if j.StatusCheckInterval > 0 {
		base.StatusCheckInterval = j.StatusCheckInterval
	}
	if j.Overwrite != nil {
		base.OverwriteExisting = *j.Overwrite
	}
	return base
}

// Reports builds a validated descriptor for every entry. An entry without
// a folder uses the job's output folder. Whitespace warnings go to logger.
func (j *Job) Reports(logger *slog.Logger) ([]*client.Report, error) {
	reports := make([]*client.Report, 0, len(j.Reports))
	for i, e := range j.Reports {
		folder := e.Folder
		if folder == "" {
			folder = j.OutputFolder
		}
		r, err := client.NewReport(e.Ref, e.Format,
			client.WithOutputFolder(folder),
			client.WithCustomName(e.Name),
			client.WithRefresh(e.Refresh),
			client.WithReportLogger(logger))
		if err != nil {
			return nil, fmt.Errorf("report %d (%q): %w", i+1, e.Ref, err)
		}
		reports = append(reports, r)
	}
	return reports, nil
}
