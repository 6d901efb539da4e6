// Package session provides the CLI commands that talk to the debate backend.
package session

import "github.com/spf13/cobra"

// Register adds all session-related commands to the given parent command.
// This is the main entry point for integrating the session subpackage with
// the root command.
func Register(parent *cobra.Command) {
	parent.AddCommand(debateCmd)
	parent.AddCommand(statusCmd)
	parent.AddCommand(resultsCmd)
}
