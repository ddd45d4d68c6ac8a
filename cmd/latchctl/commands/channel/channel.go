// Package channel implements channel commands for latchctl.
package channel

import (
	"github.com/spf13/cobra"
)

// Cmd is the parent command for channel operations.
var Cmd = &cobra.Command{
	Use:   "channel",
	Short: "Channel operations",
	Long: `Manage append-only event channels on the gateway.

Channels hold ordered events. Events are never rewritten; deletions
append a tombstone instead.

Examples:
  # Create a channel
  latchctl channel create myns chat

  # Append an event
  latchctl channel append ch_abc '{"text":"hello"}'

  # Read events
  latchctl channel read ch_abc

  # Mint a capability token for a browser client
  latchctl channel token ch_abc --permissions read,append`,
}

func init() {
	Cmd.AddCommand(createCmd)
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(getCmd)
	Cmd.AddCommand(deleteCmd)
	Cmd.AddCommand(appendCmd)
	Cmd.AddCommand(readCmd)
	Cmd.AddCommand(deleteEventCmd)
	Cmd.AddCommand(tokenCmd)
}
