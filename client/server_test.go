package client

import (
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

const testWSDL = `<?xml version="1.0" encoding="UTF-8"?>
<wsdl:definitions name="SAWServices" targetNamespace="urn://oracle.bi.webservices/v6"
    xmlns:wsdl="http://schemas.xmlsoap.org/wsdl/"
    xmlns:soap="http://schemas.xmlsoap.org/wsdl/soap/">
  <wsdl:service name="SAWSessionService">
    <wsdl:port name="SAWSessionServiceSoap" binding="sawsoap:SAWSessionServiceSoap">
      <soap:address location="%s/analytics-ws/saw.dll?SoapImpl=nQSessionService"/>
    </wsdl:port>
  </wsdl:service>
  <wsdl:service name="AnalysisExportViewsService">
    <wsdl:port name="AnalysisExportViews" binding="sawsoap:AnalysisExportViews">
      <soap:address location="/analytics-ws/saw.dll?SoapImpl=analysisExportViews"/>
    </wsdl:port>
  </wsdl:service>
</wsdl:definitions>`

const responseEnvelope = `<?xml version="1.0" encoding="UTF-8"?>
<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/"
    xmlns:sawsoap="urn://oracle.bi.webservices/v6">
  <soap:Body>%s</soap:Body>
</soap:Envelope>`

const faultEnvelope = `<?xml version="1.0" encoding="UTF-8"?>
<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/">
  <soap:Body>
    <soap:Fault>
      <faultcode>soap:Server</faultcode>
      <faultstring>%s</faultstring>
    </soap:Fault>
  </soap:Body>
</soap:Envelope>`

// fakeBIServer emulates the session and analysis export services.
type fakeBIServer struct {
	*httptest.Server

	mu         sync.Mutex
	password   string
	statuses   []string
	payload    []byte
	mimeType   string
	wsdlGets   int
	actions    []string
	bodies     []string
	completeAt int
}

func newFakeBIServer(t *testing.T) *fakeBIServer {
	t.Helper()
	f := &fakeBIServer{
		password: "secret",
		statuses: []string{"InProgress", "Done"},
		payload:  []byte("%PDF-1.4 fake"),
		mimeType: "application/pdf",
	}
	f.Server = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.Close)
	return f
}

func (f *fakeBIServer) wsdlURL() string {
	return f.URL + "/analytics-ws/saw.dll/wsdl/v6"
}

func (f *fakeBIServer) handle(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if r.Method == http.MethodGet {
		f.wsdlGets++
		w.Header().Set("Content-Type", "text/xml")
		fmt.Fprintf(w, testWSDL, f.URL)
		return
	}

	body, _ := io.ReadAll(r.Body)
	action := strings.Trim(r.Header.Get("SOAPAction"), `"`)
	f.actions = append(f.actions, action)
	f.bodies = append(f.bodies, string(body))

	w.Header().Set("Content-Type", "text/xml; charset=utf-8")
	switch action {
	case "#logon":
		if !strings.Contains(string(body), "<v6:password>"+f.password+"</v6:password>") {
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprintf(w, faultEnvelope, "Authentication error. Invalid username or password.")
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "ORA_BIPS_NQID", Value: "cookie-1", Path: "/"})
		fmt.Fprintf(w, responseEnvelope,
			`<sawsoap:logonResult><sawsoap:sessionID>sess-1</sawsoap:sessionID></sawsoap:logonResult>`)
	case "#logoff":
		fmt.Fprintf(w, responseEnvelope, `<sawsoap:logoffResult/>`)
	case "#initiateAnalysisExport":
		fmt.Fprintf(w, responseEnvelope,
			`<sawsoap:initiateAnalysisExportResult><sawsoap:return>`+
				`<sawsoap:exportStatus>InProgress</sawsoap:exportStatus>`+
				`<sawsoap:queryID>q-42</sawsoap:queryID>`+
				`</sawsoap:return></sawsoap:initiateAnalysisExportResult>`)
	case "#completeAnalysisExport":
		status := f.statuses[min(f.completeAt, len(f.statuses)-1)]
		f.completeAt++
		var data, mimeType string
		if status == "Done" {
			data = base64.StdEncoding.EncodeToString(f.payload)
			mimeType = f.mimeType
		}
		fmt.Fprintf(w, responseEnvelope,
			`<sawsoap:completeAnalysisExportResult><sawsoap:return>`+
				`<sawsoap:exportStatus>`+status+`</sawsoap:exportStatus>`+
				`<sawsoap:queryID>q-42</sawsoap:queryID>`+
				`<sawsoap:viewData>`+data+`</sawsoap:viewData>`+
				`<sawsoap:mimeType>`+mimeType+`</sawsoap:mimeType>`+
				`</sawsoap:return></sawsoap:completeAnalysisExportResult>`)
	default:
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprintf(w, faultEnvelope, "unknown operation "+action)
	}
}

func (f *fakeBIServer) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.actions...)
}

func (f *fakeBIServer) requestBodies() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.bodies...)
}

func (f *fakeBIServer) wsdlFetches() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.wsdlGets
}
