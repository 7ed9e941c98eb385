// Command obiee-export exports Oracle BI analyses through the SOAP web
// services.
//
// Usage:
//
//	obiee-export --wsdl https://bi.example.com/analytics-ws/saw.dll/wsdl/v6 \
//	    --user weblogic export --report /shared/Sales/Revenue --format PDF --out ./exports
//
//	obiee-export --wsdl ... --user weblogic batch jobs.yaml
//
// The password is taken from --pass, then OBIEE_PASSWORD, then prompted for.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
