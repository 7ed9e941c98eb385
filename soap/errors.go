package soap

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"strings"
)

// Fault represents a SOAP fault returned by a BI service.
type Fault struct {
	// Code is the SOAP fault code (e.g., "soap:Client", "soap:Server").
	Code string

	// Reason is the human-readable fault string.
	Reason string

	// ErrorCode is the BI error code from the fault detail (e.g., "OI2DH4IN").
	ErrorCode string

	// Message is the BI error message from the fault detail.
	Message string

	// Details holds the free-form detail text, when present.
	Details string
}

// Error implements the error interface.
func (f *Fault) Error() string {
	var parts []string
	if f.Code != "" {
		parts = append(parts, f.Code)
	}
	if f.Reason != "" {
		parts = append(parts, f.Reason)
	}
	if f.ErrorCode != "" {
		parts = append(parts, "code="+f.ErrorCode)
	}
	return "soap fault: " + strings.Join(parts, ": ")
}

// Text returns the most descriptive message the fault carries.
func (f *Fault) Text() string {
	if f.Reason != "" {
		return f.Reason
	}
	if f.Message != "" {
		return f.Message
	}
	return f.Code
}

// IsAuthentication returns true if the fault indicates bad credentials or an
// expired session.
func (f *Fault) IsAuthentication() bool {
	lower := strings.ToLower(f.Reason + " " + f.Message)
	return strings.Contains(lower, "authentication") ||
		strings.Contains(lower, "invalid session") ||
		strings.Contains(lower, "session has expired")
}

// IsClient returns true if the fault blames the request rather than the server.
func (f *Fault) IsClient() bool {
	return strings.HasSuffix(f.Code, "Client") || strings.HasSuffix(f.Code, "Sender")
}

// IsFault returns true if the error is a SOAP Fault.
func IsFault(err error) bool {
	var f *Fault
	return errors.As(err, &f)
}

// ParseFault parses a SOAP response and returns a Fault if present.
// Returns nil if the response does not contain a fault.
func ParseFault(data []byte) (*Fault, error) {
	// Quick check if this might be a fault
	if !bytes.Contains(data, []byte("Fault")) {
		return nil, nil
	}

	var env faultEnvelope
	if err := xml.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("parse fault: %w", err)
	}

	raw := env.Body.Fault
	if raw == nil {
		return nil, nil
	}

	fault := &Fault{
		Code:   strings.TrimSpace(raw.FaultCode),
		Reason: strings.TrimSpace(raw.FaultString),
	}

	// SOAP 1.2 shape
	if fault.Code == "" {
		fault.Code = strings.TrimSpace(raw.Code.Value)
	}
	if fault.Reason == "" {
		fault.Reason = strings.TrimSpace(raw.Reason.Text)
	}

	detail := raw.Detail
	if detail.Error.Code == "" && detail.Error.Message == "" {
		detail = raw.Detail12
	}
	fault.ErrorCode = strings.TrimSpace(detail.Error.Code)
	fault.Message = strings.TrimSpace(detail.Error.Message)
	fault.Details = strings.TrimSpace(detail.Error.Details)

	if fault.Code == "" && fault.Reason == "" && fault.Message == "" {
		return nil, nil
	}

	return fault, nil
}

// CheckFault parses a response and returns an error if it contains a fault.
func CheckFault(data []byte) error {
	fault, err := ParseFault(data)
	if err != nil {
		return err
	}
	if fault != nil {
		return fault
	}
	return nil
}

type faultDetail struct {
	Error struct {
		Code    string `xml:"Code"`
		Message string `xml:"Message"`
		Details string `xml:"Details"`
	} `xml:"Error"`
}

// faultEnvelope is the XML structure for parsing SOAP 1.1 and 1.2 faults.
type faultEnvelope struct {
	XMLName xml.Name `xml:"Envelope"`
	Body    struct {
		Fault *struct {
			FaultCode   string `xml:"faultcode"`
			FaultString string `xml:"faultstring"`
			Code        struct {
				Value string `xml:"Value"`
			} `xml:"Code"`
			Reason struct {
				Text string `xml:"Text"`
			} `xml:"Reason"`
			Detail   faultDetail `xml:"detail"`
			Detail12 faultDetail `xml:"Detail"`
		} `xml:"Fault"`
	} `xml:"Body"`
}
