package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/smnsjas/go-obiee/cache"
	"github.com/smnsjas/go-obiee/client"
	obieelog "github.com/smnsjas/go-obiee/internal/log"
	"github.com/smnsjas/go-obiee/soap/transport"
)

// globalOptions are the persistent flags shared by every subcommand.
type globalOptions struct {
	wsdl       string
	user       string
	pass       string
	authType   string
	domain     string
	realm      string
	krb5Conf   string
	keytab     string
	ccache     string
	spn        string
	insecure   bool
	addressing bool
	reqTimeout time.Duration

	logLevel    string
	logFile     string
	logMaxSize  string
	logBackups  int
	logJSON     bool
	metricsFile string

	cacheBackend  string
	cachePath     string
	cacheTTL      time.Duration
	redisAddr     string
	redisPassword string
	redisDB       int
}

func newRootCommand() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:   "obiee-export",
		Short: "Export Oracle BI analyses over the SOAP web services",
		Long: `obiee-export logs on to Oracle BI, exports one or more analyses
asynchronously, and saves the results (or streams a single result to stdout).
The session is always logged off, even when an export fails.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	f := cmd.PersistentFlags()
	f.StringVar(&opts.wsdl, "wsdl", os.Getenv("OBIEE_WSDL"), "WSDL URL of the BI web services (env OBIEE_WSDL)")
	f.StringVarP(&opts.user, "user", "u", os.Getenv("OBIEE_USER"), "BI user name (env OBIEE_USER)")
	f.StringVarP(&opts.pass, "pass", "p", "", "BI password (env OBIEE_PASSWORD, prompted if unset)")
	f.StringVar(&opts.authType, "http-auth", "none", "HTTP-layer authentication: none, basic, ntlm, kerberos")
	f.StringVar(&opts.domain, "domain", "", "domain for NTLM HTTP authentication")
	f.StringVar(&opts.realm, "realm", "", "Kerberos realm")
	f.StringVar(&opts.krb5Conf, "krb5-conf", "", "krb5.conf path (default $KRB5_CONFIG or /etc/krb5.conf)")
	f.StringVar(&opts.keytab, "keytab", "", "Kerberos keytab for --user")
	f.StringVar(&opts.ccache, "ccache", "", "Kerberos credential cache (from kinit)")
	f.StringVar(&opts.spn, "spn", "", "Kerberos service principal (default HTTP/<wsdl host>)")
	f.BoolVar(&opts.insecure, "insecure", false, "skip TLS certificate verification (testing only)")
	f.BoolVar(&opts.addressing, "addressing", false, "send WS-Addressing headers")
	f.DurationVar(&opts.reqTimeout, "request-timeout", transport.DefaultTimeout, "per-request HTTP timeout")

	f.StringVar(&opts.logLevel, "log-level", "warn", "log level: debug, info, warn, error")
	f.StringVar(&opts.logFile, "log-file", "", "write logs to this file instead of stderr (rotated)")
	f.StringVar(&opts.logMaxSize, "log-max-size", "10MB", "rotate the log file at this size")
	f.IntVar(&opts.logBackups, "log-backups", 3, "rotated log files to keep")
	f.BoolVar(&opts.logJSON, "log-json", false, "log in JSON")
	f.StringVar(&opts.metricsFile, "metrics-file", "", "write Prometheus metrics to this file on exit")

	f.StringVar(&opts.cacheBackend, "cache", "sqlite", "WSDL cache: sqlite, redis, none")
	f.StringVar(&opts.cachePath, "cache-path", cache.DefaultPath(), "SQLite cache file")
	f.DurationVar(&opts.cacheTTL, "cache-ttl", cache.DefaultTTL, "how long a cached WSDL stays valid")
	f.StringVar(&opts.redisAddr, "redis-addr", "localhost:6379", "Redis address for --cache redis")
	f.StringVar(&opts.redisPassword, "redis-password", "", "Redis password")
	f.IntVar(&opts.redisDB, "redis-db", 0, "Redis database number")

	cmd.AddCommand(newExportCommand(opts))
	cmd.AddCommand(newBatchCommand(opts))

	return cmd
}

// app is the per-invocation runtime built from globalOptions.
type app struct {
	opts     *globalOptions
	logger   *slog.Logger
	registry *prometheus.Registry
	metrics  *client.Metrics
	stdin    io.Reader
	stderr   io.Writer
	closers  []io.Closer
}

func newApp(cmd *cobra.Command, opts *globalOptions) (*app, error) {
	if opts.wsdl == "" {
		return nil, errors.New("--wsdl is required")
	}
	if opts.user == "" {
		return nil, errors.New("--user is required")
	}

	a := &app{
		opts:     opts,
		registry: prometheus.NewRegistry(),
		stdin:    cmd.InOrStdin(),
		stderr:   cmd.ErrOrStderr(),
	}

	logger, err := a.setupLogging()
	if err != nil {
		return nil, err
	}
	a.logger = logger

	m, err := client.NewMetrics(a.registry)
	if err != nil {
		return nil, fmt.Errorf("register metrics: %w", err)
	}
	a.metrics = m
	return a, nil
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid log level %q (valid: debug, info, warn, error)", s)
	}
}

func (a *app) setupLogging() (*slog.Logger, error) {
	level, err := parseLevel(a.opts.logLevel)
	if err != nil {
		return nil, err
	}

	out := a.stderr
	if a.opts.logFile != "" {
		maxSize, err := humanize.ParseBytes(a.opts.logMaxSize)
		if err != nil {
			return nil, fmt.Errorf("invalid --log-max-size: %w", err)
		}
		rf, err := obieelog.NewRotatingFile(a.opts.logFile, int64(maxSize), a.opts.logBackups)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, rf)
		out = rf
	}

	hopts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	if a.opts.logJSON {
		h = slog.NewJSONHandler(out, hopts)
	} else {
		h = slog.NewTextHandler(out, hopts)
	}
	return slog.New(obieelog.NewRedactingHandler(h)), nil
}

func (a *app) newCache() (transport.Cache, error) {
	switch strings.ToLower(a.opts.cacheBackend) {
	case "none", "":
		return nil, nil
	case "sqlite":
		c, err := cache.NewSQLiteCache(a.opts.cachePath, cache.WithSQLiteTTL(a.opts.cacheTTL))
		if err != nil {
			return nil, err
		}
		if n, err := c.Purge(context.Background()); err != nil {
			a.logger.Warn("cache purge failed", "error", err)
		} else if n > 0 {
			a.logger.Debug("purged expired cache entries", "count", n)
		}
		a.closers = append(a.closers, c)
		return c, nil
	case "redis":
		c := cache.NewRedisCache(a.opts.redisAddr, a.opts.redisPassword, a.opts.redisDB,
			cache.WithRedisTTL(a.opts.cacheTTL))
		a.closers = append(a.closers, c)
		return c, nil
	default:
		return nil, fmt.Errorf("invalid --cache %q (valid: sqlite, redis, none)", a.opts.cacheBackend)
	}
}

func (a *app) authType() (client.AuthType, error) {
	switch strings.ToLower(a.opts.authType) {
	case "none", "":
		return client.AuthNone, nil
	case "basic":
		return client.AuthBasic, nil
	case "ntlm":
		return client.AuthNTLM, nil
	case "kerberos", "negotiate":
		return client.AuthKerberos, nil
	default:
		return 0, fmt.Errorf("invalid --http-auth %q (valid: none, basic, ntlm, kerberos)", a.opts.authType)
	}
}

func (a *app) buildClient(ctx context.Context, password string) (*client.Client, error) {
	authType, err := a.authType()
	if err != nil {
		return nil, err
	}
	c, err := a.newCache()
	if err != nil {
		return nil, err
	}

	cfg := client.DefaultConfig()
	cfg.WSDL = a.opts.wsdl
	cfg.Timeout = a.opts.reqTimeout
	cfg.InsecureSkipVerify = a.opts.insecure
	cfg.Addressing = a.opts.addressing
	cfg.Cache = c
	cfg.Logger = a.logger
	cfg.Metrics = a.metrics
	cfg.AuthType = authType
	if authType != client.AuthNone {
		cfg.Username = a.opts.user
		cfg.Password = password
		cfg.Domain = a.opts.domain
	}
	if authType == client.AuthKerberos {
		cfg.Kerberos = client.KerberosConfig{
			Realm:        a.opts.realm,
			Krb5ConfPath: a.opts.krb5Conf,
			KeytabPath:   a.opts.keytab,
			CCachePath:   a.opts.ccache,
			SPN:          a.opts.spn,
		}
	}

	cl, err := client.Build(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("build client: %w", err)
	}
	return cl, nil
}

// withSession builds the client, logs on, and runs fn inside the session.
func (a *app) withSession(ctx context.Context, fn func(ctx context.Context, c *client.Client, sessionID string) error) error {
	password, err := a.password()
	if err != nil {
		return err
	}

	c, err := a.buildClient(ctx, password)
	if err != nil {
		return err
	}
	defer c.Close()

	s := c.NewSession(a.opts.user, password)
	return client.WithSession(ctx, s, func(ctx context.Context, sessionID string) error {
		return fn(ctx, c, sessionID)
	})
}

// password returns the password from the flag, OBIEE_PASSWORD, or a prompt.
func (a *app) password() (string, error) {
	if a.opts.pass != "" {
		return a.opts.pass, nil
	}
	if envPass := os.Getenv("OBIEE_PASSWORD"); envPass != "" {
		return envPass, nil
	}

	fmt.Fprint(a.stderr, "Password: ")

	if f, ok := a.stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		passBytes, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(a.stderr)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(passBytes), nil
	}

	// Piped input: read one line.
	line, err := bufio.NewReader(a.stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", errors.New("no password given")
	}
	return line, nil
}

// close flushes metrics and releases log files and caches.
func (a *app) close() error {
	var errs []error
	if a.opts.metricsFile != "" {
		if err := prometheus.WriteToTextfile(a.opts.metricsFile, a.registry); err != nil {
			errs = append(errs, fmt.Errorf("write metrics: %w", err))
		}
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// run builds the app for cmd, runs fn, and always closes the app.
func run(cmd *cobra.Command, opts *globalOptions, fn func(a *app) error) (err error) {
	a, err := newApp(cmd, opts)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.close(); cerr != nil {
			err = errors.Join(err, cerr)
		}
	}()
	return fn(a)
}
