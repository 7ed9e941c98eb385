package client

import (
	"context"
	"errors"
	"net"
	"net/url"

	"github.com/smnsjas/go-obiee/soap"
	"github.com/smnsjas/go-obiee/soap/transport"
)

var (
	// ErrLogonFailed is returned when the session service rejects a logon.
	ErrLogonFailed = errors.New("logon failed")

	// ErrLogoffFailed is returned when ending a session fails.
	ErrLogoffFailed = errors.New("logoff failed")

	// ErrExportFailed is returned when an export cannot be submitted, the
	// server reports exportStatus Error, or polling hits a transport fault.
	ErrExportFailed = errors.New("export failed")

	// ErrTimeout is returned when an export is still running after the
	// configured timeout.
	ErrTimeout = errors.New("export timed out")

	// ErrValidation is returned for invalid input or an out-of-protocol
	// server reply (unknown export status, unmapped MIME type).
	ErrValidation = errors.New("validation failed")

	// ErrFileExists is returned when the export target already exists and
	// overwriting is disabled. Such errors also match fs.ErrExist.
	ErrFileExists = errors.New("file already exists")
)

// isUpstream reports whether err came from the remote service or the path
// to it, as opposed to a local programming or decoding problem.
func isUpstream(err error) bool {
	if soap.IsFault(err) {
		return true
	}
	var statusErr *transport.StatusError
	if errors.As(err, &statusErr) {
		return true
	}
	if errors.Is(err, transport.ErrUnauthorized) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
