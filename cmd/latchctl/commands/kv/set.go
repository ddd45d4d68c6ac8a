package kv

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/latchhq/latch/cmd/latchctl/cmdutil"
)

var setFromStdin bool

var setCmd = &cobra.Command{
	Use:   "set <namespace> <key> [value]",
	Short: "Set a value",
	Long: `Store a value under a key. The value comes from the argument or,
with --stdin, from standard input.

Examples:
  latchctl kv set myns greeting hello
  cat config.json | latchctl kv set myns config.json --stdin`,
	Args: cobra.RangeArgs(2, 3),
	RunE: runSet,
}

func init() {
	setCmd.Flags().BoolVar(&setFromStdin, "stdin", false, "Read value from standard input")
}

func runSet(cmd *cobra.Command, args []string) error {
	namespace, key := args[0], args[1]

	var value string
	switch {
	case setFromStdin:
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		value = string(data)
	case len(args) == 3:
		value = args[2]
	default:
		return fmt.Errorf("value argument or --stdin is required")
	}

	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	if err := client.KVSet(namespace, key, value); err != nil {
		return fmt.Errorf("failed to set key: %w", err)
	}

	cmdutil.PrintSuccess(fmt.Sprintf("Key '%s' set in namespace '%s'", key, namespace))
	return nil
}
