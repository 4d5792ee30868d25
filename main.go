// Package main is the entry point for the jiraexport CLI.
package main

import (
	"os"

	"github.com/mfeher/jiraexport/cmd"
	"github.com/mfeher/jiraexport/internal/logging"
)

func main() {
	if err := cmd.Execute(); err != nil {
		logging.Error("command execution failed", "error", err)
		os.Exit(1)
	}
}
