// yeet runs named, fallible operation sequences from the command line.
//
// Usage:
//
//	yeet demo --id=<n> [--fail-user] [--fail-address] [--config=<path>]
//	yeet version [--json]
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
