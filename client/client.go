package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"time"

	"github.com/smnsjas/go-obiee/saw"
	"github.com/smnsjas/go-obiee/soap"
	"github.com/smnsjas/go-obiee/soap/auth"
	"github.com/smnsjas/go-obiee/soap/transport"
	"github.com/smnsjas/go-obiee/wsdl"
)

// AuthType specifies the HTTP-layer authentication mechanism. The BI
// services authenticate through logon; this is only for servers behind a
// web tier that challenges as well.
type AuthType int

const (
	// AuthNone sends no HTTP credentials.
	AuthNone AuthType = iota
	// AuthBasic uses HTTP Basic authentication.
	AuthBasic
	// AuthNTLM uses NTLM authentication.
	AuthNTLM
	// AuthKerberos uses Negotiate with a Kerberos ticket.
	AuthKerberos
)

// String returns the name of the authentication type.
func (a AuthType) String() string {
	switch a {
	case AuthNone:
		return "none"
	case AuthBasic:
		return "basic"
	case AuthNTLM:
		return "ntlm"
	case AuthKerberos:
		return "kerberos"
	default:
		return fmt.Sprintf("AuthType(%d)", int(a))
	}
}

// Config holds configuration for building a Client.
type Config struct {
	// WSDL is the URL of the service description, for example
	// "https://bi.example.com/analytics-ws/saw.dll/wsdl/v6".
	WSDL string

	// Timeout is the per-request HTTP timeout.
	Timeout time.Duration

	// InsecureSkipVerify skips TLS certificate verification.
	// WARNING: Only use for testing.
	InsecureSkipVerify bool

	// AuthType selects HTTP-layer authentication.
	AuthType AuthType

	// Username, Password and Domain are the HTTP-layer credentials used
	// when AuthType is not AuthNone.
	Username string
	Password string
	Domain   string

	// Kerberos configures AuthKerberos. Username and Password above are
	// used when it names neither a keytab nor a credential cache.
	Kerberos KerberosConfig

	// Cache stores the fetched WSDL. Nil fetches it on every Build.
	Cache transport.Cache

	// Addressing adds WS-Addressing headers to requests.
	Addressing bool

	// Logger receives client logs. Nil discards them.
	Logger *slog.Logger

	// Metrics records session and export activity. Nil disables metrics.
	Metrics *Metrics
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Timeout:  transport.DefaultTimeout,
		AuthType: AuthNone,
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.WSDL == "" {
		return errors.New("wsdl url is required")
	}
	u, err := url.Parse(c.WSDL)
	if err != nil {
		return fmt.Errorf("invalid wsdl url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid wsdl url %q: scheme must be http or https", c.WSDL)
	}
	switch c.AuthType {
	case AuthNone:
	case AuthKerberos:
		if c.Kerberos.CCachePath == "" && c.Username == "" {
			return errors.New("kerberos auth: username is required without a credential cache")
		}
		if c.Kerberos.CCachePath == "" && c.Kerberos.KeytabPath == "" && c.Password == "" {
			return errors.New("kerberos auth: password, keytab or credential cache is required")
		}
	case AuthBasic, AuthNTLM:
		creds := c.credentials()
		if err := creds.Validate(); err != nil {
			return fmt.Errorf("%s auth: %w", c.AuthType, err)
		}
	default:
		return fmt.Errorf("unknown auth type %s", c.AuthType)
	}
	return nil
}

func (c *Config) credentials() auth.Credentials {
	return auth.Credentials{
		Username: c.Username,
		Password: c.Password,
		Domain:   c.Domain,
	}
}

// KerberosConfig configures AuthKerberos.
type KerberosConfig struct {
	// Realm is the Kerberos realm, for example CORP.EXAMPLE.COM.
	Realm string

	// Krb5ConfPath overrides KRB5_CONFIG and /etc/krb5.conf.
	Krb5ConfPath string

	// KeytabPath logs Username in from a keytab.
	KeytabPath string

	// CCachePath uses an existing credential cache.
	CCachePath string

	// SPN is the service principal. Empty means HTTP/<wsdl host>.
	SPN string
}

// Client is a configured connection to the BI web services, bound to the
// session and analysis export services named in the WSDL.
type Client struct {
	transport *transport.HTTPTransport
	defs      *wsdl.Definitions
	closer    io.Closer
	logger    *slog.Logger
	metrics   *Metrics

	sessionEndpoint string
	session         *saw.SessionService
	export          *saw.AnalysisExportService
}

// Build fetches the WSDL at cfg.WSDL and returns a Client bound to its
// session and analysis export services.
func Build(ctx context.Context, cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = transport.DefaultTimeout
	}

	opts := []transport.HTTPTransportOption{
		transport.WithTimeout(timeout),
		transport.WithLogger(logger),
	}
	if cfg.InsecureSkipVerify {
		opts = append(opts, transport.WithInsecureSkipVerify(true))
	}
	if cfg.Cache != nil {
		opts = append(opts, transport.WithCache(cfg.Cache))
	}
	tr := transport.NewHTTPTransport(opts...)

	authenticator, err := newAuthenticator(cfg)
	if err != nil {
		return nil, err
	}
	var closer io.Closer
	if authenticator != nil {
		tr.Client().Transport = authenticator.Transport(tr.Client().Transport)
		closer, _ = authenticator.(io.Closer)
	}

	logger.Debug("fetching wsdl", "url", cfg.WSDL)
	doc, err := tr.Get(ctx, cfg.WSDL)
	if err != nil {
		closeQuietly(closer)
		return nil, fmt.Errorf("fetch wsdl: %w", err)
	}
	defs, err := wsdl.Parse(doc)
	if err != nil {
		closeQuietly(closer)
		return nil, err
	}

	sessionEndpoint, err := bindEndpoint(defs, cfg.WSDL, saw.ServiceSession)
	if err != nil {
		closeQuietly(closer)
		return nil, err
	}
	exportEndpoint, err := bindEndpoint(defs, cfg.WSDL, saw.ServiceAnalysisExport)
	if err != nil {
		closeQuietly(closer)
		return nil, err
	}
	logger.Debug("bound services",
		"session_endpoint", sessionEndpoint,
		"export_endpoint", exportEndpoint)

	clientOpts := []soap.ClientOption{soap.WithAddressing(cfg.Addressing)}
	return &Client{
		transport:       tr,
		defs:            defs,
		closer:          closer,
		logger:          logger,
		metrics:         cfg.Metrics,
		sessionEndpoint: sessionEndpoint,
		session:         saw.NewSessionService(soap.NewClient(sessionEndpoint, saw.NsV6, tr, clientOpts...)),
		export:          saw.NewAnalysisExportService(soap.NewClient(exportEndpoint, saw.NsV6, tr, clientOpts...)),
	}, nil
}

// newAuthenticator returns the HTTP-layer authenticator for cfg, or nil for
// AuthNone.
func newAuthenticator(cfg Config) (auth.Authenticator, error) {
	switch cfg.AuthType {
	case AuthBasic:
		return auth.NewBasicAuth(cfg.credentials()), nil
	case AuthNTLM:
		return auth.NewNTLMAuth(cfg.credentials()), nil
	case AuthKerberos:
		spn := cfg.Kerberos.SPN
		if spn == "" {
			u, err := url.Parse(cfg.WSDL)
			if err != nil {
				return nil, fmt.Errorf("invalid wsdl url: %w", err)
			}
			spn = "HTTP/" + u.Hostname()
		}
		kcfg := auth.KerberosConfig{
			Realm:        cfg.Kerberos.Realm,
			Krb5ConfPath: cfg.Kerberos.Krb5ConfPath,
			KeytabPath:   cfg.Kerberos.KeytabPath,
			CCachePath:   cfg.Kerberos.CCachePath,
		}
		if cfg.Username != "" {
			creds := cfg.credentials()
			kcfg.Credentials = &creds
		}
		provider, err := auth.NewKerberosProvider(kcfg, spn)
		if err != nil {
			return nil, fmt.Errorf("kerberos auth: %w", err)
		}
		return auth.NewNegotiateAuth(provider), nil
	}
	return nil, nil
}

func closeQuietly(c io.Closer) {
	if c != nil {
		_ = c.Close()
	}
}

// bindEndpoint resolves service to an absolute endpoint URL. Relative
// addresses are resolved against the WSDL URL.
func bindEndpoint(defs *wsdl.Definitions, wsdlURL, service string) (string, error) {
	loc, err := defs.Bind(service)
	if err != nil {
		return "", err
	}
	base, err := url.Parse(wsdlURL)
	if err != nil {
		return "", fmt.Errorf("invalid wsdl url: %w", err)
	}
	ref, err := url.Parse(loc)
	if err != nil {
		return "", fmt.Errorf("invalid %s address %q: %w", service, loc, err)
	}
	return base.ResolveReference(ref).String(), nil
}

// Services lists the service names defined in the WSDL.
func (c *Client) Services() []string {
	return c.defs.ServiceNames()
}

// SessionService returns the bound session service.
func (c *Client) SessionService() *saw.SessionService {
	return c.session
}

// ExportService returns the bound analysis export service.
func (c *Client) ExportService() *saw.AnalysisExportService {
	return c.export
}

// NewSession creates a Session against the bound session service, wired to
// the client's logger and metrics.
func (c *Client) NewSession(username, password string, opts ...SessionOption) *Session {
	base := []SessionOption{
		WithSessionLogger(c.logger),
		WithSessionMetrics(c.metrics),
		WithSecurityLogger(NewSecurityLogger(c.logger, username, c.sessionEndpoint)),
	}
	return NewSession(c.session, username, password, append(base, opts...)...)
}

// NewExporter creates an Exporter against the bound export service, wired
// to the client's logger and metrics. A non-empty sessionID is sent with
// every export request; otherwise the session cookie set by logon is used.
func (c *Client) NewExporter(sessionID string, cfg ExportConfig, opts ...ExporterOption) (*Exporter, error) {
	svc := c.export
	if sessionID != "" {
		svc = svc.WithSessionID(sessionID)
	}
	base := []ExporterOption{
		WithExporterLogger(c.logger),
		WithExporterMetrics(c.metrics),
	}
	return NewExporter(svc, cfg, append(base, opts...)...)
}

// Close releases idle connections and any Kerberos tickets.
func (c *Client) Close() error {
	c.transport.CloseIdleConnections()
	if c.closer != nil {
		return c.closer.Close()
	}
	return nil
}
