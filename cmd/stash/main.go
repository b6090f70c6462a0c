// Package main provides the stash CLI tool for storing values in an
// instrumented key-value cache and querying the document store exercises.
package main

import (
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
