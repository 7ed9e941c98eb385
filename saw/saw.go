// Package saw provides typed bindings for the Oracle BI web services
// (the "SAW" SOAP API): SAWSessionService for logon/logoff and
// AnalysisExportViewsService for asynchronous analysis exports.
package saw

import (
	"context"
)

// NsV6 is the namespace of the v6 BI web services.
const NsV6 = "urn://oracle.bi.webservices/v6"

// Service names as they appear in the WSDL.
const (
	ServiceSession        = "SAWSessionService"
	ServiceAnalysisExport = "AnalysisExportViewsService"
)

// Operation names, also used to derive the SOAPAction.
const (
	OpLogon                  = "logon"
	OpLogoff                 = "logoff"
	OpInitiateAnalysisExport = "initiateAnalysisExport"
	OpCompleteAnalysisExport = "completeAnalysisExport"
)

// Export status values reported by the export service.
const (
	StatusInProgress = "InProgress"
	StatusError      = "Error"
	StatusDone       = "Done"
)

// Caller performs one SOAP operation. *soap.Client satisfies it.
type Caller interface {
	Call(ctx context.Context, operation string, request, response any) error
}
