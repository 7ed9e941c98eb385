package transport

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"os"
	"sync"
	"time"
)

// ErrUnauthorized is returned when the server responds with 401 Unauthorized.
// Use errors.Is(err, ErrUnauthorized) to check for authentication failures.
var ErrUnauthorized = errors.New("transport: authentication failed (401 Unauthorized)")

const (
	// ContentTypeSOAP is the content type for SOAP 1.1 messages.
	ContentTypeSOAP = "text/xml; charset=utf-8"

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 60 * time.Second

	// defaultBufferSize is the initial size for pooled buffers.
	defaultBufferSize = 32 * 1024 // 32KB

	// maxErrorPreview caps how much of an error body is echoed in errors.
	maxErrorPreview = 3000
)

// Cache stores fetched documents. Implementations own expiry.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}

// StatusError is returned for HTTP responses with a status >= 400.
// SOAP 1.1 servers report faults with HTTP 500, so Body is kept intact
// for fault parsing.
type StatusError struct {
	StatusCode int
	Body       []byte
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	preview := string(e.Body)
	if len(preview) > maxErrorPreview {
		preview = preview[:maxErrorPreview] + "..."
	}
	return fmt.Sprintf("transport: HTTP %d: %s", e.StatusCode, preview)
}

// bufferPool is a pool of reusable bytes.Buffer to reduce allocations.
var bufferPool = sync.Pool{
	New: func() interface{} {
		return bytes.NewBuffer(make([]byte, 0, defaultBufferSize))
	},
}

// readAllPooled reads from r using a pooled buffer and returns a copy of the data.
func readAllPooled(r io.Reader) ([]byte, error) {
	buf := bufferPool.Get().(*bytes.Buffer)
	defer func() {
		buf.Reset()
		bufferPool.Put(buf)
	}()

	if _, err := buf.ReadFrom(r); err != nil {
		return nil, err
	}

	// Return a copy since buf will be reused
	result := make([]byte, buf.Len())
	copy(result, buf.Bytes())
	return result, nil
}

// HTTPTransport handles HTTP/HTTPS communication for SOAP services.
type HTTPTransport struct {
	client *http.Client
	cache  Cache
	logger *slog.Logger
}

// HTTPTransportOption configures an HTTPTransport.
type HTTPTransportOption func(*HTTPTransport)

// NewHTTPTransport creates a new HTTP transport with the given options.
// A cookie jar is installed by default; the BI server tracks the logon
// session in a cookie as well as in the returned session ID.
func NewHTTPTransport(opts ...HTTPTransportOption) *HTTPTransport {
	jar, _ := cookiejar.New(nil) // only fails with a non-nil PublicSuffixList

	t := &HTTPTransport{
		client: &http.Client{
			Timeout: DefaultTimeout,
			Jar:     jar,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				TLSClientConfig: &tls.Config{
					MinVersion: tls.VersionTLS12,
				},
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		logger: slog.New(slog.DiscardHandler),
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) HTTPTransportOption {
	return func(t *HTTPTransport) {
		t.client.Timeout = d
	}
}

// WithInsecureSkipVerify configures TLS to skip certificate verification.
// WARNING: Only use this for testing. Never use in production.
func WithInsecureSkipVerify(skip bool) HTTPTransportOption {
	return func(t *HTTPTransport) {
		if skip {
			fmt.Fprintf(os.Stderr, "WARNING: TLS certificate verification disabled. This is insecure and should only be used for testing.\n")
		}
		transport := t.ensureHTTPTransport()
		if transport.TLSClientConfig == nil {
			transport.TLSClientConfig = &tls.Config{
				MinVersion: tls.VersionTLS12,
			}
		}
		transport.TLSClientConfig.InsecureSkipVerify = skip
	}
}

// WithTLSConfig sets a custom TLS configuration.
// NOTE: MinVersion is enforced to be at least TLS 1.2 for security.
func WithTLSConfig(cfg *tls.Config) HTTPTransportOption {
	return func(t *HTTPTransport) {
		transport := t.ensureHTTPTransport()
		if cfg.MinVersion < tls.VersionTLS12 {
			cfg.MinVersion = tls.VersionTLS12
		}
		transport.TLSClientConfig = cfg
	}
}

// WithCache enables caching of documents fetched with Get.
func WithCache(c Cache) HTTPTransportOption {
	return func(t *HTTPTransport) {
		t.cache = c
	}
}

// WithCookieJar replaces the default cookie jar. A nil jar disables cookies.
func WithCookieJar(jar http.CookieJar) HTTPTransportOption {
	return func(t *HTTPTransport) {
		t.client.Jar = jar
	}
}

// WithLogger sets the logger used for cache diagnostics.
func WithLogger(logger *slog.Logger) HTTPTransportOption {
	return func(t *HTTPTransport) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// ensureHTTPTransport ensures the client has an *http.Transport.
func (t *HTTPTransport) ensureHTTPTransport() *http.Transport {
	if t.client.Transport == nil {
		t.client.Transport = &http.Transport{}
	}
	transport, ok := t.client.Transport.(*http.Transport)
	if !ok {
		transport = &http.Transport{}
		t.client.Transport = transport
	}
	return transport
}

// Post sends a SOAP request and returns the response body.
func (t *HTTPTransport) Post(ctx context.Context, url, soapAction string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("transport: failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", ContentTypeSOAP)
	if soapAction != "" {
		req.Header.Set("SOAPAction", `"`+soapAction+`"`)
	}

	return t.do(req)
}

// Get fetches a document such as a WSDL. When a cache is configured the
// response is served from, and stored into, the cache keyed by URL.
func (t *HTTPTransport) Get(ctx context.Context, url string) ([]byte, error) {
	if t.cache != nil {
		data, ok, err := t.cache.Get(ctx, url)
		if err != nil {
			t.logger.Warn("cache lookup failed", "url", url, "error", err)
		} else if ok {
			t.logger.Debug("cache hit", "url", url, "bytes", len(data))
			return data, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("transport: failed to create request: %w", err)
	}

	data, err := t.do(req)
	if err != nil {
		return nil, err
	}

	if t.cache != nil {
		if err := t.cache.Set(ctx, url, data); err != nil {
			t.logger.Warn("cache store failed", "url", url, "error", err)
		}
	}

	return data, nil
}

func (t *HTTPTransport) do(req *http.Request) ([]byte, error) {
	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("transport: request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := readAllPooled(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("transport: failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, ErrUnauthorized
	}
	if resp.StatusCode >= 400 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: respBody}
	}

	return respBody, nil
}

// Client returns the underlying HTTP client for advanced configuration.
func (t *HTTPTransport) Client() *http.Client {
	return t.client
}

// CloseIdleConnections closes any idle connections in the transport.
func (t *HTTPTransport) CloseIdleConnections() {
	t.client.CloseIdleConnections()
}
