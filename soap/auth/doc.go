// Package auth provides HTTP-layer authentication handlers for SOAP
// connections.
//
// The BI services authenticate with their own logon operation, so most
// deployments need nothing here. These handlers cover servers published
// behind a web tier that challenges at the HTTP layer.
//
// # Supported Authentication Methods
//
//   - Basic: HTTP Basic authentication (use only over TLS)
//   - NTLM: NT LAN Manager authentication (via github.com/Azure/go-ntlmssp)
//   - Negotiate: SPNEGO over a SecurityProvider; KerberosProvider is a pure
//     Go implementation (via github.com/go-krb5/krb5)
//
// # Usage
//
//	a := auth.NewNTLMAuth(auth.Credentials{
//	    Username: "svc_reports",
//	    Password: "password",
//	    Domain:   "CORP",
//	})
//	tr := transport.NewHTTPTransport()
//	tr.Client().Transport = a.Transport(tr.Client().Transport)
package auth
