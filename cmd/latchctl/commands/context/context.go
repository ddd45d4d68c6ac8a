// Package context implements context management commands for latchctl.
package context

import (
	"github.com/spf13/cobra"
)

// Cmd is the parent command for context management.
var Cmd = &cobra.Command{
	Use:   "context",
	Short: "Context management",
	Long: `Manage server contexts.

Contexts hold the server URL and API key for a gateway. Switch between
gateways without logging in again.

Examples:
  # List all contexts
  latchctl context list

  # Switch to a context
  latchctl context use production

  # Show the active context
  latchctl context current`,
}

func init() {
	Cmd.AddCommand(currentCmd)
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(useCmd)
	Cmd.AddCommand(renameCmd)
	Cmd.AddCommand(deleteCmd)
}
