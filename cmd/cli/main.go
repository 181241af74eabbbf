// Package main is the entry point for the hivectl operator CLI.
package main

import (
	"os"

	"shieldhive/cmd/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
