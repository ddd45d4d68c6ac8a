package kv

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/latchhq/latch/cmd/latchctl/cmdutil"
	"github.com/latchhq/latch/internal/cli/output"
)

var bulkGetCmd = &cobra.Command{
	Use:   "bulk-get <namespace> <key> [key...]",
	Short: "Get multiple values",
	Long: `Read multiple keys in a single request.

Missing keys are reported as null in JSON output.

Examples:
  latchctl kv bulk-get myns key1 key2 key3
  latchctl kv bulk-get myns key1 key2 -o json`,
	Args: cobra.MinimumNArgs(2),
	RunE: runBulkGet,
}

var bulkSetCmd = &cobra.Command{
	Use:   "bulk-set <namespace>",
	Short: "Set multiple values",
	Long: `Write multiple keys in a single request. Entries are read from
standard input as a JSON object mapping keys to string values.

Examples:
  echo '{"key1":"a","key2":"b"}' | latchctl kv bulk-set myns`,
	Args: cobra.ExactArgs(1),
	RunE: runBulkSet,
}

func runBulkGet(cmd *cobra.Command, args []string) error {
	namespace, keys := args[0], args[1:]

	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	values, err := client.KVBulkGet(namespace, keys)
	if err != nil {
		return fmt.Errorf("failed to get keys: %w", err)
	}

	format, err := cmdutil.GetOutputFormatParsed()
	if err != nil {
		return err
	}

	switch format {
	case output.FormatJSON:
		return output.PrintJSON(os.Stdout, values)
	case output.FormatYAML:
		return output.PrintYAML(os.Stdout, values)
	}

	// Preserve the requested key order in table output
	for _, k := range keys {
		v, ok := values[k]
		if !ok || v == nil {
			fmt.Printf("%s\t<not found>\n", k)
			continue
		}
		fmt.Printf("%s\t%s\n", k, *v)
	}

	return nil
}

func runBulkSet(cmd *cobra.Command, args []string) error {
	namespace := args[0]

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return fmt.Errorf("failed to read stdin: %w", err)
	}

	var entries map[string]string
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("invalid input: expected a JSON object of string values: %w", err)
	}
	if len(entries) == 0 {
		return fmt.Errorf("no entries to set")
	}

	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	count, err := client.KVBulkSet(namespace, entries)
	if err != nil {
		return fmt.Errorf("failed to set keys: %w", err)
	}

	cmdutil.PrintSuccess(fmt.Sprintf("%d keys set in namespace '%s'", count, namespace))
	return nil
}
