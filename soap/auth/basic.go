package auth

import (
	"log/slog"
	"net/http"
	"sync"
)

// BasicAuth implements HTTP Basic authentication.
type BasicAuth struct {
	creds Credentials
}

// NewBasicAuth creates a new Basic authentication handler.
func NewBasicAuth(creds Credentials) *BasicAuth {
	return &BasicAuth{creds: creds}
}

// Name returns the authentication scheme name.
func (a *BasicAuth) Name() string {
	return "Basic"
}

// Transport wraps an http.RoundTripper with Basic authentication.
func (a *BasicAuth) Transport(base http.RoundTripper) http.RoundTripper {
	return &basicTransport{
		base:  base,
		creds: a.creds,
	}
}

// basicTransport adds Basic auth header to requests.
type basicTransport struct {
	base     http.RoundTripper
	creds    Credentials
	warnOnce sync.Once
}

// RoundTrip implements http.RoundTripper.
func (t *basicTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// Credentials are readable on the wire without TLS
	if req.URL.Scheme != "https" {
		t.warnOnce.Do(func() {
			slog.Warn("basic authentication over non-HTTPS connection; credentials are not encrypted",
				"host", req.URL.Host)
		})
	}

	// Clone the request to avoid mutating the original
	reqCopy := req.Clone(req.Context())
	reqCopy.SetBasicAuth(t.creds.Username, t.creds.Password)

	return t.base.RoundTrip(reqCopy)
}
