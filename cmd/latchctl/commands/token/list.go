package token

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/latchhq/latch/cmd/latchctl/cmdutil"
	"github.com/latchhq/latch/internal/cli/timeutil"
	"github.com/latchhq/latch/pkg/apiclient"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List your tokens",
	Long: `List the tokens minted by the current identity.

Examples:
  latchctl token list
  latchctl token list -o json`,
	RunE: runList,
}

// TokenList is a list of tokens for table rendering.
type TokenList []apiclient.TokenMetadata

// Headers implements TableRenderer.
func (tl TokenList) Headers() []string {
	return []string{"TOKEN", "ACTION", "STATE", "LABEL", "EXPIRES"}
}

// Rows implements TableRenderer.
func (tl TokenList) Rows() [][]string {
	rows := make([][]string, 0, len(tl))
	for _, t := range tl {
		rows = append(rows, []string{
			t.ID,
			t.Action,
			t.State,
			cmdutil.EmptyOr(t.Label, "-"),
			timeutil.FormatTime(t.ExpiresAt),
		})
	}
	return rows
}

func runList(cmd *cobra.Command, args []string) error {
	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	tokens, err := client.ListTokens()
	if err != nil {
		return fmt.Errorf("failed to list tokens: %w", err)
	}

	return cmdutil.PrintOutput(os.Stdout, tokens, len(tokens) == 0, "No tokens found.", TokenList(tokens))
}
