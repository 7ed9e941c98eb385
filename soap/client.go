package soap

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/smnsjas/go-obiee/soap/transport"
)

// Poster sends a SOAP request body and returns the raw response.
// *transport.HTTPTransport satisfies it.
type Poster interface {
	Post(ctx context.Context, url, soapAction string, body []byte) ([]byte, error)
}

// Client is a SOAP client bound to a single service endpoint.
type Client struct {
	endpoint   string
	bodyNS     string
	transport  Poster
	addressing bool
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithAddressing adds WS-Addressing Action, To and MessageID headers to
// every request. The BI services ignore them; proxies that route on them
// do not.
func WithAddressing(enabled bool) ClientOption {
	return func(c *Client) {
		c.addressing = enabled
	}
}

// NewClient creates a new SOAP client for endpoint. bodyNS is the
// namespace bound to the "v6" prefix in request bodies.
func NewClient(endpoint, bodyNS string, tr Poster, opts ...ClientOption) *Client {
	c := &Client{
		endpoint:  endpoint,
		bodyNS:    bodyNS,
		transport: tr,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoint returns the service URL the client posts to.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Call marshals request into the SOAP body, posts it with the SOAPAction
// for operation, and decodes the first body element of the response into
// response. A nil response discards the body after fault checking.
func (c *Client) Call(ctx context.Context, operation string, request, response any) error {
	content, err := xml.Marshal(request)
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", operation, err)
	}

	action := ActionFor(operation)
	env := NewEnvelope().
		WithBodyNamespace(c.bodyNS).
		WithBody(content)
	if c.addressing {
		env.WithAction(action).
			WithTo(c.endpoint).
			WithMessageID("urn:uuid:" + strings.ToUpper(uuid.New().String()))
	}

	respBody, err := c.sendEnvelope(ctx, action, env)
	if err != nil {
		return fmt.Errorf("%s: %w", operation, err)
	}

	if response == nil {
		return nil
	}
	if err := decodeBody(respBody, response); err != nil {
		return fmt.Errorf("parse %s response: %w", operation, err)
	}
	return nil
}

// sendEnvelope marshals and sends a SOAP envelope, returning the response body.
func (c *Client) sendEnvelope(ctx context.Context, action string, env *Envelope) ([]byte, error) {
	body, err := env.Marshal()
	if err != nil {
		return nil, fmt.Errorf("marshal envelope: %w", err)
	}

	respBody, err := c.transport.Post(ctx, c.endpoint, action, body)
	if err != nil {
		// SOAP 1.1 reports faults with HTTP 500; surface the fault itself.
		var statusErr *transport.StatusError
		if errors.As(err, &statusErr) {
			if fault, ferr := ParseFault(statusErr.Body); ferr == nil && fault != nil {
				return nil, fault
			}
		}
		return nil, err
	}

	// Check for SOAP Fault even in successful HTTP responses
	if err := CheckFault(respBody); err != nil {
		return nil, err
	}

	return respBody, nil
}

// decodeBody decodes the first child element of the SOAP Body into out,
// keeping the envelope's namespace declarations in scope.
func decodeBody(data []byte, out any) error {
	dec := xml.NewDecoder(bytes.NewReader(data))
	inBody := false
	for {
		tok, err := dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return errors.New("response has no body content")
			}
			return err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if !inBody {
				inBody = t.Name.Local == "Body"
				continue
			}
			return dec.DecodeElement(out, &t)
		case xml.EndElement:
			if inBody && t.Name.Local == "Body" {
				return errors.New("response body is empty")
			}
		}
	}
}
