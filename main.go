// river-go is a sandboxed compile/run/compare judge service.
//
// Commands:
//
//	serve        - Run the judge gRPC server
//	sandbox-init - Internal re-exec entry point for the sandbox child
//	version      - Print version information
package main

import (
	"fmt"
	"os"

	"river-go/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
