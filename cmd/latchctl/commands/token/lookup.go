package token

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/latchhq/latch/cmd/latchctl/cmdutil"
	"github.com/latchhq/latch/internal/cli/output"
	"github.com/latchhq/latch/internal/cli/timeutil"
)

var lookupCmd = &cobra.Command{
	Use:   "lookup <token-id>",
	Short: "Inspect a token",
	Long: `Look up a token's metadata without consuming it.

Lookup is public and shows only safe fields: action, state, expiry,
and label.

Examples:
  latchctl token lookup tok_abc123
  latchctl token lookup tok_abc123 -o json`,
	Args: cobra.ExactArgs(1),
	RunE: runLookup,
}

func runLookup(cmd *cobra.Command, args []string) error {
	tokenID := args[0]

	client, err := cmdutil.GetUnauthenticatedClient()
	if err != nil {
		return err
	}

	meta, err := client.LookupToken(tokenID)
	if err != nil {
		return fmt.Errorf("failed to look up token: %w", err)
	}

	format, err := cmdutil.GetOutputFormatParsed()
	if err != nil {
		return err
	}

	switch format {
	case output.FormatJSON:
		return output.PrintJSON(os.Stdout, meta)
	case output.FormatYAML:
		return output.PrintYAML(os.Stdout, meta)
	}

	pairs := [][2]string{
		{"Token", meta.ID},
		{"Action", meta.Action},
		{"State", meta.State},
		{"Expires", timeutil.FormatTime(meta.ExpiresAt)},
	}
	if meta.Label != "" {
		pairs = append(pairs, [2]string{"Label", meta.Label})
	}
	if meta.ContentType != "" {
		pairs = append(pairs, [2]string{"Content type", meta.ContentType})
	}
	return output.SimpleTable(os.Stdout, pairs)
}
