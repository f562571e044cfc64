// Package main provides csvtool, a command line front end for survey CSV
// files: inspect and edit tables, preview them, and send them to the
// processing server.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
