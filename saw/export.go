package saw

import (
	"context"
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"strings"
)

// ExecutionOptions controls how the server runs an export.
type ExecutionOptions struct {
	Async   bool `xml:"v6:async"`
	UseMtom bool `xml:"v6:useMtom"`
	Refresh bool `xml:"v6:refresh"`
}

// QueryResult is the reply to initiateAnalysisExport.
type QueryResult struct {
	QueryID      string
	ExportStatus string
}

// ExportResult is the reply to completeAnalysisExport.
type ExportResult struct {
	QueryID      string
	ExportStatus string
	ViewData     []byte
	MIMEType     string
}

// AnalysisExportService is the AnalysisExportViewsService binding.
type AnalysisExportService struct {
	caller    Caller
	sessionID string
}

// NewAnalysisExportService binds the export operations to caller.
func NewAnalysisExportService(caller Caller) *AnalysisExportService {
	return &AnalysisExportService{caller: caller}
}

// WithSessionID returns a copy of the service that sends sessionID with
// every request. Without it the server relies on the session cookie.
func (s *AnalysisExportService) WithSessionID(sessionID string) *AnalysisExportService {
	cp := *s
	cp.sessionID = sessionID
	return &cp
}

type reportRef struct {
	ReportPath string `xml:"v6:reportPath"`
}

type initiateRequest struct {
	XMLName          xml.Name         `xml:"v6:initiateAnalysisExport"`
	Report           reportRef        `xml:"v6:report"`
	OutputFormat     string           `xml:"v6:outputFormat"`
	ExecutionOptions ExecutionOptions `xml:"v6:executionOptions"`
	SessionID        string           `xml:"v6:sessionID,omitempty"`
}

type completeRequest struct {
	XMLName   xml.Name `xml:"v6:completeAnalysisExport"`
	QueryID   string   `xml:"v6:queryID"`
	SessionID string   `xml:"v6:sessionID,omitempty"`
}

type exportReturn struct {
	ExportStatus string `xml:"exportStatus"`
	QueryID      string `xml:"queryID"`
	ViewData     string `xml:"viewData"`
	MIMEType     string `xml:"mimeType"`
}

type exportResponse struct {
	Return exportReturn `xml:"return"`
}

// InitiateAnalysisExport submits an export job for the analysis at
// reportPath and returns its query ID.
func (s *AnalysisExportService) InitiateAnalysisExport(ctx context.Context, reportPath, outputFormat string, opts ExecutionOptions) (*QueryResult, error) {
	req := &initiateRequest{
		Report:           reportRef{ReportPath: reportPath},
		OutputFormat:     outputFormat,
		ExecutionOptions: opts,
		SessionID:        s.sessionID,
	}

	var resp exportResponse
	if err := s.caller.Call(ctx, OpInitiateAnalysisExport, req, &resp); err != nil {
		return nil, err
	}

	return &QueryResult{
		QueryID:      strings.TrimSpace(resp.Return.QueryID),
		ExportStatus: strings.TrimSpace(resp.Return.ExportStatus),
	}, nil
}

// CompleteAnalysisExport queries the status of an export job. ViewData is
// only populated once the status is Done.
func (s *AnalysisExportService) CompleteAnalysisExport(ctx context.Context, queryID string) (*ExportResult, error) {
	req := &completeRequest{QueryID: queryID, SessionID: s.sessionID}

	var resp exportResponse
	if err := s.caller.Call(ctx, OpCompleteAnalysisExport, req, &resp); err != nil {
		return nil, err
	}

	data, err := decodeViewData(resp.Return.ViewData)
	if err != nil {
		return nil, fmt.Errorf("%s: decode viewData: %w", OpCompleteAnalysisExport, err)
	}

	return &ExportResult{
		QueryID:      strings.TrimSpace(resp.Return.QueryID),
		ExportStatus: strings.TrimSpace(resp.Return.ExportStatus),
		ViewData:     data,
		MIMEType:     strings.TrimSpace(resp.Return.MIMEType),
	}, nil
}

// decodeViewData decodes base64 content, ignoring the line breaks servers
// insert into long values.
func decodeViewData(s string) ([]byte, error) {
	if s == "" {
		return nil, nil
	}
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\n', '\r', '\t':
			return -1
		}
		return r
	}, s)
	return base64.StdEncoding.DecodeString(cleaned)
}
