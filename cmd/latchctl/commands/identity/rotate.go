package identity

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/latchhq/latch/cmd/latchctl/cmdutil"
	"github.com/latchhq/latch/internal/cli/credentials"
)

var rotateUpdateContext bool

var rotateCmd = &cobra.Command{
	Use:   "rotate-credential <credential-id>",
	Short: "Rotate an API key",
	Long: `Rotate the API key behind a credential. The old key stops working
immediately and the new key is printed once.

Examples:
  # Rotate a credential
  latchctl identity rotate-credential cred_abc123

  # Rotate and update the stored context with the new key
  latchctl identity rotate-credential cred_abc123 --update-context`,
	Args: cobra.ExactArgs(1),
	RunE: runRotate,
}

func init() {
	rotateCmd.Flags().BoolVar(&rotateUpdateContext, "update-context", false, "Save the new key in the current context")
}

func runRotate(cmd *cobra.Command, args []string) error {
	credentialID := args[0]

	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	resp, err := client.RotateCredential(credentialID)
	if err != nil {
		return fmt.Errorf("failed to rotate credential: %w", err)
	}

	if rotateUpdateContext {
		store, err := credentials.NewStore()
		if err != nil {
			return fmt.Errorf("failed to initialize credential store: %w", err)
		}
		if err := store.UpdateAPIKey(resp.APIKey); err != nil {
			return fmt.Errorf("failed to save new API key: %w", err)
		}
	}

	infoLines := []string{
		fmt.Sprintf("  API key: %s", resp.APIKey),
		"",
		"Store the API key securely. The old key no longer works.",
	}
	if rotateUpdateContext {
		infoLines = append(infoLines, "Current context updated with the new key.")
	}

	return cmdutil.PrintResourceWithDetails(os.Stdout, resp,
		fmt.Sprintf("Credential '%s' rotated", resp.CredentialID),
		infoLines...)
}
