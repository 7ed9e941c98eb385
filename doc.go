// Package obiee is a Go client for the Oracle BI (OBIEE) SOAP web services,
// focused on exporting analyses.
//
// The library is organized into layers:
//
//	┌─────────────────────────────────────────────────────────┐
//	│  client/       Sessions, report descriptors, exports    │
//	├─────────────────────────────────────────────────────────┤
//	│  saw/          Typed session and export operations      │
//	├─────────────────────────────────────────────────────────┤
//	│  soap/         SOAP 1.1 envelope, faults, HTTP, auth    │
//	├─────────────────────────────────────────────────────────┤
//	│  wsdl/ cache/  Service binding and cached WSDL fetches  │
//	└─────────────────────────────────────────────────────────┘
//
// # Quick Start
//
//	c, err := client.Build(ctx, client.Config{
//	    WSDL: "https://bi.example.com/analytics-ws/saw.dll/wsdl/v6",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer c.Close()
//
//	err = client.WithSession(ctx, c.NewSession("weblogic", "password"),
//	    func(ctx context.Context, sessionID string) error {
//	        exp, err := c.NewExporter(sessionID, client.DefaultExportConfig())
//	        if err != nil {
//	            return err
//	        }
//	        r, err := client.NewReport("/shared/Sales/Revenue", client.FormatPDF,
//	            client.WithOutputFolder("./exports"))
//	        if err != nil {
//	            return err
//	        }
//	        _, err = exp.ExportAndSave(ctx, r)
//	        return err
//	    })
//
// The obiee-export command under cmd/ wraps the same flow for the shell.
package obiee
