// Package wsdl reads the parts of a WSDL 1.1 document needed to bind a
// service name to its SOAP endpoint.
package wsdl

import (
	"encoding/xml"
	"errors"
	"fmt"
	"strings"
)

// ErrServiceNotFound is returned by Bind when the document does not define
// the requested service, or defines it without a SOAP address.
var ErrServiceNotFound = errors.New("wsdl: service not found")

// Definitions is the root of a WSDL document.
type Definitions struct {
	XMLName         xml.Name  `xml:"definitions"`
	Name            string    `xml:"name,attr"`
	TargetNamespace string    `xml:"targetNamespace,attr"`
	Services        []Service `xml:"service"`
}

// Service is a named group of ports.
type Service struct {
	Name  string `xml:"name,attr"`
	Ports []Port `xml:"port"`
}

// Port binds a service to one endpoint address.
type Port struct {
	Name    string `xml:"name,attr"`
	Binding string `xml:"binding,attr"`
	Address struct {
		Location string `xml:"location,attr"`
	} `xml:"address"`
}

// Parse decodes a WSDL document.
func Parse(data []byte) (*Definitions, error) {
	var defs Definitions
	if err := xml.Unmarshal(data, &defs); err != nil {
		return nil, fmt.Errorf("wsdl: parse: %w", err)
	}
	if len(defs.Services) == 0 {
		return nil, errors.New("wsdl: document defines no services")
	}
	return &defs, nil
}

// Bind returns the endpoint address of the first port of the named service.
func (d *Definitions) Bind(service string) (string, error) {
	for _, s := range d.Services {
		if s.Name != service {
			continue
		}
		for _, p := range s.Ports {
			if loc := strings.TrimSpace(p.Address.Location); loc != "" {
				return loc, nil
			}
		}
	}
	return "", fmt.Errorf("%w: %s", ErrServiceNotFound, service)
}

// ServiceNames lists the services the document defines, in document order.
func (d *Definitions) ServiceNames() []string {
	names := make([]string, 0, len(d.Services))
	for _, s := range d.Services {
		names = append(names, s.Name)
	}
	return names
}
