package auth

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// maxNegotiateLegs bounds the challenge/response exchange so a server that
// keeps answering 401 cannot hold the request forever.
const maxNegotiateLegs = 4

// SecurityProvider produces the tokens for a SPNEGO exchange.
//
// Implementations hold handshake state and are not safe for concurrent use.
type SecurityProvider interface {
	// Step consumes the server token (nil on the first call) and returns
	// the token to send. continueNeeded reports whether another leg is
	// expected.
	Step(ctx context.Context, serverToken []byte) (token []byte, continueNeeded bool, err error)

	// Complete reports whether the security context is established.
	Complete() bool

	// Close releases the provider's resources.
	Close() error
}

// NegotiateAuth implements HTTP Negotiate (SPNEGO) authentication on top
// of a SecurityProvider.
type NegotiateAuth struct {
	provider SecurityProvider
}

// NewNegotiateAuth creates a Negotiate authenticator.
func NewNegotiateAuth(provider SecurityProvider) *NegotiateAuth {
	return &NegotiateAuth{provider: provider}
}

// Name returns the authentication scheme name.
func (a *NegotiateAuth) Name() string {
	return "Negotiate"
}

// Transport wraps an http.RoundTripper with Negotiate authentication.
func (a *NegotiateAuth) Transport(base http.RoundTripper) http.RoundTripper {
	return &negotiateRoundTripper{base: base, provider: a.provider}
}

// Close releases the underlying provider.
func (a *NegotiateAuth) Close() error {
	return a.provider.Close()
}

type negotiateRoundTripper struct {
	base     http.RoundTripper
	provider SecurityProvider
}

// RoundTrip implements http.RoundTripper. The body is buffered so the
// request can be replayed on every leg.
func (rt *negotiateRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	var body []byte
	if req.Body != nil && req.Body != http.NoBody {
		var err error
		body, err = io.ReadAll(req.Body)
		_ = req.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("read request body: %w", err)
		}
	}

	var token []byte
	for leg := 0; leg < maxNegotiateLegs; leg++ {
		attempt := req.Clone(req.Context())
		if body != nil {
			attempt.Body = io.NopCloser(bytes.NewReader(body))
			attempt.ContentLength = int64(len(body))
		}
		if token != nil {
			attempt.Header.Set("Authorization", "Negotiate "+base64.StdEncoding.EncodeToString(token))
		}

		resp, err := rt.base.RoundTrip(attempt)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusUnauthorized {
			return resp, nil
		}

		challenge, ok := negotiateChallenge(resp.Header.Values("WWW-Authenticate"))
		if !ok {
			return resp, nil
		}
		_ = resp.Body.Close()

		if token != nil && challenge == nil {
			return nil, fmt.Errorf("negotiate: server rejected credentials")
		}

		var more bool
		token, more, err = rt.provider.Step(req.Context(), challenge)
		if err != nil {
			return nil, fmt.Errorf("negotiate step: %w", err)
		}
		if token == nil && !more {
			return nil, fmt.Errorf("negotiate: server rejected credentials")
		}
	}
	return nil, fmt.Errorf("negotiate authentication failed after %d legs", maxNegotiateLegs)
}

// negotiateChallenge finds the Negotiate challenge among the
// WWW-Authenticate values. The returned token is nil for a bare
// "Negotiate" challenge.
func negotiateChallenge(values []string) ([]byte, bool) {
	for _, v := range values {
		scheme, param, _ := strings.Cut(strings.TrimSpace(v), " ")
		if !strings.EqualFold(scheme, "Negotiate") {
			continue
		}
		param = strings.TrimSpace(param)
		if param == "" {
			return nil, true
		}
		tok, err := base64.StdEncoding.DecodeString(param)
		if err != nil {
			return nil, true
		}
		return tok, true
	}
	return nil, false
}
