// Package token implements stateful token commands for latchctl.
package token

import (
	"github.com/spf13/cobra"
)

// Cmd is the parent command for stateful token management.
var Cmd = &cobra.Command{
	Use:   "token",
	Short: "Stateful token management",
	Long: `Manage single-use stateful tokens on the gateway.

Stateful tokens are claimed exactly once. They back identity invites
and one-shot blob access grants.

Examples:
  # Inspect a token without consuming it
  latchctl token lookup tok_abc123

  # Claim a token
  latchctl token claim tok_abc123

  # Revoke a pending token
  latchctl token revoke tok_abc123`,
}

func init() {
	Cmd.AddCommand(createCmd)
	Cmd.AddCommand(lookupCmd)
	Cmd.AddCommand(claimCmd)
	Cmd.AddCommand(revokeCmd)
	Cmd.AddCommand(listCmd)
}
