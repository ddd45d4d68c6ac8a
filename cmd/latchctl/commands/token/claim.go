package token

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/latchhq/latch/cmd/latchctl/cmdutil"
	"github.com/latchhq/latch/internal/cli/credentials"
	"github.com/latchhq/latch/pkg/apiclient"
)

var claimSaveContext bool

var claimCmd = &cobra.Command{
	Use:   "claim <token-id>",
	Short: "Claim a token",
	Long: `Claim a single-use token. A token can be claimed exactly once;
concurrent claims race and only one wins.

Claiming an identity invite returns a fresh API key. Claiming a blob
access token returns a presigned URL.

Examples:
  # Claim an invite
  latchctl token claim tok_abc123

  # Claim an invite and log in with the new key
  latchctl token claim tok_abc123 --save-context`,
	Args: cobra.ExactArgs(1),
	RunE: runClaim,
}

func init() {
	claimCmd.Flags().BoolVar(&claimSaveContext, "save-context", false, "Save the returned API key in the current context")
}

func runClaim(cmd *cobra.Command, args []string) error {
	tokenID := args[0]

	client, err := cmdutil.GetUnauthenticatedClient()
	if err != nil {
		return err
	}

	resp, err := client.ClaimToken(tokenID)
	if err != nil {
		if apiErr, ok := err.(*apiclient.APIError); ok && apiErr.IsConflict() {
			return fmt.Errorf("token already claimed")
		}
		return fmt.Errorf("failed to claim token: %w", err)
	}

	if claimSaveContext && resp.APIKey != "" {
		store, err := credentials.NewStore()
		if err != nil {
			return fmt.Errorf("failed to initialize credential store: %w", err)
		}
		if err := store.UpdateAPIKey(resp.APIKey); err != nil {
			return fmt.Errorf("failed to save API key: %w", err)
		}
	}

	var infoLines []string
	if resp.IdentityID != "" {
		infoLines = append(infoLines,
			fmt.Sprintf("  Identity:  %s (%s)", resp.DisplayName, resp.IdentityID),
			fmt.Sprintf("  API key:   %s", resp.APIKey),
			"",
			"Store the API key securely. It cannot be retrieved again.")
		if claimSaveContext {
			infoLines = append(infoLines, "Current context updated with the new key.")
		}
	}
	if resp.URL != "" {
		infoLines = append(infoLines,
			fmt.Sprintf("  URL:      %s", resp.URL),
			fmt.Sprintf("  Method:   %s", resp.Method),
			fmt.Sprintf("  Expires:  %s", resp.ExpiresAt))
	}

	return cmdutil.PrintResourceWithDetails(os.Stdout, resp, "Token claimed", infoLines...)
}
