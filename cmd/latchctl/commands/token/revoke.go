package token

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/latchhq/latch/cmd/latchctl/cmdutil"
)

var revokeCmd = &cobra.Command{
	Use:   "revoke <token-id>",
	Short: "Revoke a token",
	Long: `Revoke a pending token so it can no longer be claimed.

Examples:
  latchctl token revoke tok_abc123`,
	Args: cobra.ExactArgs(1),
	RunE: runRevoke,
}

func runRevoke(cmd *cobra.Command, args []string) error {
	tokenID := args[0]

	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	if err := client.RevokeToken(tokenID); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}

	cmdutil.PrintSuccess(fmt.Sprintf("Token '%s' revoked", tokenID))
	return nil
}
