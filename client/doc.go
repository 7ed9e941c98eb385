// Package client provides the high-level API for exporting Oracle BI
// analyses over the SOAP web services.
//
// This is the recommended entry point for most users. It handles:
//   - Client construction from the service WSDL (with a cached fetch)
//   - Session lifecycle (logon, guaranteed logoff)
//   - Report descriptors and their validation
//   - Asynchronous exports: submit, poll until done, save or return bytes
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
//	err = client.WithSession(ctx, c.NewSession("user", "password"),
//	    func(ctx context.Context, sessionID string) error {
//	        exp, err := c.NewExporter(sessionID, client.DefaultExportConfig())
//	        if err != nil {
//	            return err
//	        }
//	        r, err := client.NewReport("/shared/Sales/Revenue", "PDF",
//	            client.WithOutputFolder("./out"))
//	        if err != nil {
//	            return err
//	        }
//	        path, err := exp.ExportAndSave(ctx, r)
//	        fmt.Println(path)
//	        return err
//	    })
//
// # Errors
//
// Failures are reported with the sentinel errors ErrLogonFailed,
// ErrLogoffFailed, ErrExportFailed, ErrTimeout, ErrValidation and
// ErrFileExists. Check them with errors.Is; upstream SOAP faults stay
// reachable with errors.As and *soap.Fault.
package client
