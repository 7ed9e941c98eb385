package soap

import (
	"encoding/xml"
	"strings"
	"testing"
)

// TestEnvelope_Marshal verifies the envelope layout and namespace declarations.
func TestEnvelope_Marshal(t *testing.T) {
	env := NewEnvelope().
		WithBodyNamespace("urn://oracle.bi.webservices/v6").
		WithBody([]byte("<v6:logoff><v6:sessionID>abc</v6:sessionID></v6:logoff>"))

	data, err := env.Marshal()
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	out := string(data)

	if !strings.HasPrefix(out, xml.Header) {
		t.Error("missing XML declaration")
	}
	for _, want := range []string{
		`<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/" xmlns:v6="urn://oracle.bi.webservices/v6">`,
		"<soapenv:Body><v6:logoff><v6:sessionID>abc</v6:sessionID></v6:logoff></soapenv:Body>",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("envelope missing %q\n%s", want, out)
		}
	}
	if strings.Contains(out, "soapenv:Header") {
		t.Error("header should be omitted when no addressing is set")
	}
	if strings.Contains(out, "xmlns:wsa") {
		t.Error("addressing namespace should be omitted when no addressing is set")
	}
}

// TestEnvelope_Addressing verifies WS-Addressing headers.
func TestEnvelope_Addressing(t *testing.T) {
	env := NewEnvelope().
		WithAction("#logon").
		WithTo("https://bi.example.com/analytics-ws/saw.dll").
		WithMessageID("urn:uuid:1")

	data, err := env.Marshal()
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	out := string(data)

	for _, want := range []string{
		`xmlns:wsa="http://www.w3.org/2005/08/addressing"`,
		"<wsa:Action>#logon</wsa:Action>",
		"<wsa:To>https://bi.example.com/analytics-ws/saw.dll</wsa:To>",
		"<wsa:MessageID>urn:uuid:1</wsa:MessageID>",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("envelope missing %q\n%s", want, out)
		}
	}
}

// TestActionFor verifies SOAPAction values.
func TestActionFor(t *testing.T) {
	if got := ActionFor("initiateAnalysisExport"); got != "#initiateAnalysisExport" {
		t.Errorf("ActionFor = %q, want %q", got, "#initiateAnalysisExport")
	}
}
