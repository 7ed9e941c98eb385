// Package soap provides a SOAP 1.1 client for the Oracle BI web services.
//
// It covers the small slice of SOAP the BI services use: a document/literal
// envelope, the SOAPAction header, and fault parsing. Typed operations live
// in the saw package.
package soap

// XML Namespace URIs used in envelopes.
const (
	// NsSoap is the SOAP 1.1 envelope namespace.
	NsSoap = "http://schemas.xmlsoap.org/soap/envelope/"

	// NsSoap12 is the SOAP 1.2 envelope namespace. Only accepted on faults.
	NsSoap12 = "http://www.w3.org/2003/05/soap-envelope"

	// NsAddressing is the WS-Addressing namespace.
	NsAddressing = "http://www.w3.org/2005/08/addressing"

	// NsXsi is the XML Schema Instance namespace.
	NsXsi = "http://www.w3.org/2001/XMLSchema-instance"
)

// ActionFor returns the SOAPAction value the BI services expect for an
// operation name, e.g. "#logon".
func ActionFor(operation string) string {
	return "#" + operation
}
