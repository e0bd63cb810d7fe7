// Command containerlint checks a YAML service manifest without running any
// factory.
//
//	containerlint check services.yaml
//	containerlint list services.yaml
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
