// Package short implements short link commands for latchctl.
package short

import (
	"github.com/spf13/cobra"
)

// Cmd is the parent command for short link management.
var Cmd = &cobra.Command{
	Use:   "short",
	Short: "Short link management",
	Long: `Manage redirect short links on the gateway.

A short link redirects GET /s/{id} to its target URL.

Examples:
  # Create a short link
  latchctl short create https://example.com/some/long/path

  # List your short links
  latchctl short list

  # Delete a short link
  latchctl short delete abc123`,
}

func init() {
	Cmd.AddCommand(createCmd)
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(deleteCmd)
}
