package soap

import (
	"encoding/xml"
)

// Envelope represents a SOAP 1.1 envelope.
type Envelope struct {
	XMLName xml.Name `xml:"soapenv:Envelope"`

	// Namespace declarations
	NsSoap string `xml:"xmlns:soapenv,attr"`
	NsAddr string `xml:"xmlns:wsa,attr,omitempty"`
	NsBody string `xml:"xmlns:v6,attr,omitempty"`

	Header *Header `xml:"soapenv:Header,omitempty"`
	Body   *Body   `xml:"soapenv:Body"`
}

// Header represents the SOAP header. The BI services need no headers, so
// only the optional WS-Addressing fields are modelled.
type Header struct {
	Action    string `xml:"wsa:Action,omitempty"`
	To        string `xml:"wsa:To,omitempty"`
	MessageID string `xml:"wsa:MessageID,omitempty"`
}

// Body represents the SOAP body.
type Body struct {
	Content []byte `xml:",innerxml"`
}

// NewEnvelope creates a new SOAP envelope with the envelope namespace declared.
func NewEnvelope() *Envelope {
	return &Envelope{
		NsSoap: NsSoap,
		Body:   &Body{},
	}
}

// WithBodyNamespace declares the namespace bound to the "v6" prefix used by
// body elements.
func (e *Envelope) WithBodyNamespace(ns string) *Envelope {
	e.NsBody = ns
	return e
}

// WithAction sets the WS-Addressing Action header.
func (e *Envelope) WithAction(action string) *Envelope {
	e.ensureHeader().Action = action
	return e
}

// WithTo sets the WS-Addressing To header (the endpoint URL).
func (e *Envelope) WithTo(to string) *Envelope {
	e.ensureHeader().To = to
	return e
}

// WithMessageID sets the WS-Addressing MessageID header.
func (e *Envelope) WithMessageID(messageID string) *Envelope {
	e.ensureHeader().MessageID = messageID
	return e
}

func (e *Envelope) ensureHeader() *Header {
	if e.Header == nil {
		e.Header = &Header{}
		e.NsAddr = NsAddressing
	}
	return e.Header
}

// WithBody sets the SOAP body content.
func (e *Envelope) WithBody(content []byte) *Envelope {
	e.Body.Content = content
	return e
}

// Marshal serializes the envelope to XML, prefixed with the XML declaration.
func (e *Envelope) Marshal() ([]byte, error) {
	out, err := xml.Marshal(e)
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), out...), nil
}

// MarshalIndent serializes the envelope to indented XML.
func (e *Envelope) MarshalIndent(prefix, indent string) ([]byte, error) {
	return xml.MarshalIndent(e, prefix, indent)
}
