// Package identity implements identity management commands for latchctl.
package identity

import (
	"github.com/spf13/cobra"
)

// Cmd is the parent command for identity management.
var Cmd = &cobra.Command{
	Use:   "identity",
	Short: "Identity management",
	Long: `Manage identities on the Latch gateway.

Identities are the principals of the gateway: users, services, and
registered browser apps. Creating or deleting identities requires
admin privileges.

Examples:
  # See who you are
  latchctl identity whoami

  # Create a service identity
  latchctl identity create --type service --display-name ci-runner

  # Invite a collaborator to a channel
  latchctl identity invite --display-name alice --channel ch_abc --capabilities read,append

  # Register a browser app
  latchctl identity register-app --origin https://app.example.com --display-name myapp`,
}

func init() {
	Cmd.AddCommand(createCmd)
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(deleteCmd)
	Cmd.AddCommand(inviteCmd)
	Cmd.AddCommand(whoamiCmd)
	Cmd.AddCommand(registerAppCmd)
	Cmd.AddCommand(updateCmd)
	Cmd.AddCommand(rotateCmd)
}
