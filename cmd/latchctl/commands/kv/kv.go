// Package kv implements key-value commands for latchctl.
package kv

import (
	"github.com/spf13/cobra"
)

// Cmd is the parent command for key-value operations.
var Cmd = &cobra.Command{
	Use:   "kv",
	Short: "Key-value operations",
	Long: `Read and write namespaced key-value data on the gateway.

Examples:
  # Set a value
  latchctl kv set myns greeting hello

  # Read it back
  latchctl kv get myns greeting

  # List keys by prefix
  latchctl kv keys myns --prefix gree`,
}

func init() {
	Cmd.AddCommand(getCmd)
	Cmd.AddCommand(setCmd)
	Cmd.AddCommand(deleteCmd)
	Cmd.AddCommand(keysCmd)
	Cmd.AddCommand(bulkGetCmd)
	Cmd.AddCommand(bulkSetCmd)
	Cmd.AddCommand(namespacesCmd)
	Cmd.AddCommand(dumpCmd)
}
