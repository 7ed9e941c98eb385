package transport

import (
	"context"
	"crypto/tls"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

// TestNewHTTPTransport verifies transport creation with default settings.
func TestNewHTTPTransport(t *testing.T) {
	tr := NewHTTPTransport()
	if tr.client == nil {
		t.Fatal("client is nil")
	}
	if tr.client.Timeout != DefaultTimeout {
		t.Errorf("got timeout %v, want %v", tr.client.Timeout, DefaultTimeout)
	}
	if tr.client.Jar == nil {
		t.Error("cookie jar is nil")
	}
}

// TestHTTPTransport_WithTimeout verifies timeout configuration.
func TestHTTPTransport_WithTimeout(t *testing.T) {
	timeout := 30 * time.Second
	tr := NewHTTPTransport(WithTimeout(timeout))

	if tr.client.Timeout != timeout {
		t.Errorf("got timeout %v, want %v", tr.client.Timeout, timeout)
	}
}

// TestHTTPTransport_WithInsecureSkipVerify verifies TLS skip verify configuration.
func TestHTTPTransport_WithInsecureSkipVerify(t *testing.T) {
	tr := NewHTTPTransport(WithInsecureSkipVerify(true))

	httpTransport, ok := tr.client.Transport.(*http.Transport)
	if !ok {
		t.Fatal("transport is not *http.Transport")
	}
	if !httpTransport.TLSClientConfig.InsecureSkipVerify {
		t.Error("InsecureSkipVerify is false, want true")
	}
}

// TestHTTPTransport_WithTLSConfig verifies the TLS 1.2 floor.
func TestHTTPTransport_WithTLSConfig(t *testing.T) {
	tlsCfg := &tls.Config{MinVersion: tls.VersionTLS10}
	tr := NewHTTPTransport(WithTLSConfig(tlsCfg))

	httpTransport := tr.client.Transport.(*http.Transport)
	if httpTransport.TLSClientConfig != tlsCfg {
		t.Error("TLSClientConfig does not match provided config")
	}
	if tlsCfg.MinVersion != tls.VersionTLS12 {
		t.Errorf("MinVersion = %x, want TLS 1.2", tlsCfg.MinVersion)
	}
}

// TestHTTPTransport_Post verifies SOAP request headers and body.
func TestHTTPTransport_Post(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != ContentTypeSOAP {
			t.Errorf("unexpected Content-Type: %s", ct)
		}
		if sa := r.Header.Get("SOAPAction"); sa != `"#logon"` {
			t.Errorf("unexpected SOAPAction: %s", sa)
		}
		body, _ := io.ReadAll(r.Body)
		if !strings.Contains(string(body), "test-body") {
			t.Errorf("unexpected body: %s", body)
		}
		_, _ = w.Write([]byte("test-response"))
	}))
	defer server.Close()

	tr := NewHTTPTransport()
	resp, err := tr.Post(context.Background(), server.URL, "#logon", []byte("test-body"))
	if err != nil {
		t.Fatalf("Post failed: %v", err)
	}
	if string(resp) != "test-response" {
		t.Errorf("got response %q, want %q", resp, "test-response")
	}
}

// TestHTTPTransport_Unauthorized verifies 401 maps to ErrUnauthorized.
func TestHTTPTransport_Unauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	_, err := NewHTTPTransport().Post(context.Background(), server.URL, "", nil)
	if !errors.Is(err, ErrUnauthorized) {
		t.Errorf("got %v, want ErrUnauthorized", err)
	}
}

// TestHTTPTransport_StatusError verifies error bodies are kept for fault parsing.
func TestHTTPTransport_StatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("<Fault/>"))
	}))
	defer server.Close()

	_, err := NewHTTPTransport().Post(context.Background(), server.URL, "", nil)

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected *StatusError, got %T", err)
	}
	if statusErr.StatusCode != http.StatusInternalServerError {
		t.Errorf("StatusCode = %d", statusErr.StatusCode)
	}
	if string(statusErr.Body) != "<Fault/>" {
		t.Errorf("Body = %q", statusErr.Body)
	}
}

// TestStatusError_Preview verifies long bodies are truncated in messages.
func TestStatusError_Preview(t *testing.T) {
	err := &StatusError{StatusCode: 500, Body: []byte(strings.Repeat("x", maxErrorPreview+100))}
	msg := err.Error()
	if !strings.HasSuffix(msg, "...") {
		t.Error("long body not truncated")
	}
	if len(msg) > maxErrorPreview+50 {
		t.Errorf("message too long: %d", len(msg))
	}
}

// TestHTTPTransport_Cookies verifies a session cookie is replayed.
func TestHTTPTransport_Cookies(t *testing.T) {
	var sawCookie atomic.Bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie("ORA_BIPS_NQID"); err == nil && c.Value == "abc" {
			sawCookie.Store(true)
		}
		http.SetCookie(w, &http.Cookie{Name: "ORA_BIPS_NQID", Value: "abc", Path: "/"})
	}))
	defer server.Close()

	tr := NewHTTPTransport()
	for i := 0; i < 2; i++ {
		if _, err := tr.Post(context.Background(), server.URL, "", nil); err != nil {
			t.Fatalf("Post failed: %v", err)
		}
	}
	if !sawCookie.Load() {
		t.Error("cookie was not sent on the second request")
	}
}

type mapCache struct {
	data   map[string][]byte
	getErr error
}

func (m *mapCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	if m.getErr != nil {
		return nil, false, m.getErr
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *mapCache) Set(_ context.Context, key string, value []byte) error {
	m.data[key] = value
	return nil
}

// TestHTTPTransport_GetCached verifies documents are served from the cache.
func TestHTTPTransport_GetCached(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte("<definitions/>"))
	}))
	defer server.Close()

	cache := &mapCache{data: map[string][]byte{}}
	tr := NewHTTPTransport(WithCache(cache))

	for i := 0; i < 3; i++ {
		data, err := tr.Get(context.Background(), server.URL+"/wsdl")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if string(data) != "<definitions/>" {
			t.Errorf("got %q", data)
		}
	}
	if hits.Load() != 1 {
		t.Errorf("server hit %d times, want 1", hits.Load())
	}
	if _, ok := cache.data[server.URL+"/wsdl"]; !ok {
		t.Error("document not stored in cache")
	}
}

// TestHTTPTransport_GetCacheFailure verifies a broken cache falls back to HTTP.
func TestHTTPTransport_GetCacheFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	cache := &mapCache{data: map[string][]byte{}, getErr: errors.New("disk full")}
	tr := NewHTTPTransport(WithCache(cache))

	data, err := tr.Get(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(data) != "ok" {
		t.Errorf("got %q", data)
	}
}
