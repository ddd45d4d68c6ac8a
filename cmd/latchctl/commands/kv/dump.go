package kv

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/latchhq/latch/cmd/latchctl/cmdutil"
	"github.com/latchhq/latch/internal/cli/output"
)

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Dump all accessible key-value data",
	Long: `Dump every namespace and key the current identity can access.

Intended for backups and debugging. Output is JSON by default.

Examples:
  latchctl kv dump > backup.json
  latchctl kv dump -o yaml`,
	RunE: runDump,
}

func runDump(cmd *cobra.Command, args []string) error {
	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	dump, err := client.KVDump()
	if err != nil {
		return fmt.Errorf("failed to dump data: %w", err)
	}

	format, err := cmdutil.GetOutputFormatParsed()
	if err != nil {
		return err
	}

	if format == output.FormatYAML {
		return output.PrintYAML(os.Stdout, dump)
	}
	return output.PrintJSON(os.Stdout, dump)
}
