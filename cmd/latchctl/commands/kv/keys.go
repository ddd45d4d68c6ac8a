package kv

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/latchhq/latch/cmd/latchctl/cmdutil"
	"github.com/latchhq/latch/internal/cli/output"
	"github.com/latchhq/latch/pkg/apiclient"
)

var (
	keysPrefix string
	keysLimit  int
	keysCursor string
)

var keysCmd = &cobra.Command{
	Use:   "keys <namespace>",
	Short: "List keys in a namespace",
	Long: `List keys in a namespace, optionally filtered by prefix.

Results are paginated. When the listing is incomplete, a cursor is
printed for fetching the next page.

Examples:
  # List all keys
  latchctl kv keys myns

  # List keys starting with "user:"
  latchctl kv keys myns --prefix user:

  # Fetch the next page
  latchctl kv keys myns --cursor <cursor>`,
	Args: cobra.ExactArgs(1),
	RunE: runKeys,
}

func init() {
	keysCmd.Flags().StringVar(&keysPrefix, "prefix", "", "Only list keys with this prefix")
	keysCmd.Flags().IntVar(&keysLimit, "limit", 0, "Maximum number of keys to return")
	keysCmd.Flags().StringVar(&keysCursor, "cursor", "", "Pagination cursor from a previous listing")
}

func runKeys(cmd *cobra.Command, args []string) error {
	namespace := args[0]

	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	resp, err := client.KVKeys(apiclient.KVKeysRequest{
		Namespace: namespace,
		Prefix:    keysPrefix,
		Limit:     keysLimit,
		Cursor:    keysCursor,
	})
	if err != nil {
		return fmt.Errorf("failed to list keys: %w", err)
	}

	format, err := cmdutil.GetOutputFormatParsed()
	if err != nil {
		return err
	}

	switch format {
	case output.FormatJSON:
		return output.PrintJSON(os.Stdout, resp)
	case output.FormatYAML:
		return output.PrintYAML(os.Stdout, resp)
	}

	if len(resp.Keys) == 0 {
		fmt.Println("No keys found.")
		return nil
	}
	for _, k := range resp.Keys {
		fmt.Println(k)
	}
	if !resp.ListComplete {
		fmt.Printf("\nMore keys available. Continue with:\n  latchctl kv keys %s --cursor %s\n", namespace, resp.Cursor)
	}

	return nil
}
