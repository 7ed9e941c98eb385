// Package transport provides HTTP/TLS transport for SOAP communication.
//
// The transport layer handles:
//   - SOAP POSTs with the SOAPAction header
//   - Document GETs (WSDL, XSD) through an optional response cache
//   - Cookie persistence so a logon session rides subsequent calls
//   - TLS configuration
package transport
