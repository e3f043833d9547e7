package main

import (
	"os"

	"github.com/jhaveri/fie/cmd/fie/commands"
)

// main is the entry point for the FIE CLI.
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
