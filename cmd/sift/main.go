// Package main is the entry point for the sift CLI.
package main

import (
	"os"

	"github.com/jmylchreest/sift/cmd/sift/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
