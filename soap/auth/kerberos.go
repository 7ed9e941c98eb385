package auth

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/go-krb5/krb5/client"
	"github.com/go-krb5/krb5/config"
	"github.com/go-krb5/krb5/credentials"
	"github.com/go-krb5/krb5/keytab"
	"github.com/go-krb5/krb5/spnego"
)

// DefaultKrb5Conf is used when neither KerberosConfig.Krb5ConfPath nor
// KRB5_CONFIG is set.
const DefaultKrb5Conf = "/etc/krb5.conf"

// KerberosConfig selects the Kerberos credentials source. Exactly one of
// KeytabPath, CCachePath or Credentials is used, in that order.
type KerberosConfig struct {
	// Realm is the Kerberos realm, for example CORP.EXAMPLE.COM.
	Realm string

	// Krb5ConfPath is the krb5.conf location.
	Krb5ConfPath string

	// KeytabPath is a keytab for Credentials.Username.
	KeytabPath string

	// CCachePath is an existing credential cache, as written by kinit.
	CCachePath string

	// Credentials supplies the username, and the password when no keytab
	// or credential cache is given.
	Credentials *Credentials
}

// KerberosProvider is a SecurityProvider backed by a pure Go Kerberos
// client. Each exchange is a single SPNEGO init token for targetSPN; message
// protection is left to TLS.
type KerberosProvider struct {
	client    *client.Client
	spnego    *spnego.SPNEGO
	targetSPN string
	loggedIn  bool
	complete  bool
}

// NewKerberosProvider loads krb5.conf and the configured credentials.
// targetSPN is the service principal, usually "HTTP/<host>".
func NewKerberosProvider(cfg KerberosConfig, targetSPN string) (*KerberosProvider, error) {
	if targetSPN == "" {
		return nil, errors.New("target SPN is required")
	}
	confPath := cfg.Krb5ConfPath
	if confPath == "" {
		confPath = os.Getenv("KRB5_CONFIG")
	}
	if confPath == "" {
		confPath = DefaultKrb5Conf
	}
	conf, err := config.Load(confPath)
	if err != nil {
		return nil, fmt.Errorf("load krb5.conf from %s: %w", confPath, err)
	}

	var cl *client.Client
	switch {
	case cfg.KeytabPath != "":
		if cfg.Credentials == nil || cfg.Credentials.Username == "" {
			return nil, errors.New("keytab login requires a username")
		}
		kt, err := keytab.Load(cfg.KeytabPath)
		if err != nil {
			return nil, fmt.Errorf("load keytab from %s: %w", cfg.KeytabPath, err)
		}
		cl = client.NewWithKeytab(cfg.Credentials.Username, cfg.Realm, kt, conf, client.DisablePAFXFAST(true))
	case cfg.CCachePath != "":
		cc, err := credentials.LoadCCache(cfg.CCachePath)
		if err != nil {
			return nil, fmt.Errorf("load ccache from %s: %w", cfg.CCachePath, err)
		}
		cl, err = client.NewFromCCache(cc, conf, client.DisablePAFXFAST(true))
		if err != nil {
			return nil, fmt.Errorf("create client from ccache: %w", err)
		}
	case cfg.Credentials != nil:
		if err := cfg.Credentials.Validate(); err != nil {
			return nil, err
		}
		cl = client.NewWithPassword(
			cfg.Credentials.Username,
			cfg.Realm,
			cfg.Credentials.Password,
			conf,
			client.DisablePAFXFAST(true),
		)
	default:
		return nil, errors.New("no kerberos credentials provided (keytab, ccache or password required)")
	}

	return &KerberosProvider{client: cl, targetSPN: targetSPN}, nil
}

// Step implements SecurityProvider. An empty server token yields a fresh
// SPNEGO init token, logging in on first use. A server token after that
// ends the exchange without further output.
func (p *KerberosProvider) Step(_ context.Context, serverToken []byte) ([]byte, bool, error) {
	if len(serverToken) != 0 {
		if !p.complete {
			return nil, false, errors.New("received server token before the init token was sent")
		}
		return nil, false, nil
	}
	if !p.loggedIn {
		if err := p.client.Login(); err != nil {
			return nil, false, fmt.Errorf("kerberos login: %w", err)
		}
		p.loggedIn = true
	}
	if p.spnego == nil {
		p.spnego = spnego.SPNEGOClient(p.client, p.targetSPN)
	}
	tkn, err := p.spnego.InitSecContext()
	if err != nil {
		return nil, false, fmt.Errorf("init security context for %s: %w", p.targetSPN, err)
	}
	out, err := tkn.Marshal()
	if err != nil {
		return nil, false, fmt.Errorf("marshal token: %w", err)
	}
	p.complete = true
	return out, false, nil
}

// Complete implements SecurityProvider.
func (p *KerberosProvider) Complete() bool {
	return p.complete
}

// Close destroys the Kerberos client and its tickets.
func (p *KerberosProvider) Close() error {
	p.client.Destroy()
	return nil
}
