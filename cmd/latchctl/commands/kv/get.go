package kv

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/latchhq/latch/cmd/latchctl/cmdutil"
)

var getCmd = &cobra.Command{
	Use:   "get <namespace> <key>",
	Short: "Get a value",
	Long: `Read the value stored under a key.

The raw value is printed to stdout, making it easy to pipe.

Examples:
  latchctl kv get myns greeting
  latchctl kv get myns config.json > config.json`,
	Args: cobra.ExactArgs(2),
	RunE: runGet,
}

func runGet(cmd *cobra.Command, args []string) error {
	namespace, key := args[0], args[1]

	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	value, err := client.KVGet(namespace, key)
	if err != nil {
		return fmt.Errorf("failed to get key: %w", err)
	}

	fmt.Println(value)
	return nil
}
