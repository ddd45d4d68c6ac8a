package identity

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/latchhq/latch/cmd/latchctl/cmdutil"
	"github.com/latchhq/latch/pkg/apiclient"
)

var (
	createType        string
	createDisplayName string
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new identity",
	Long: `Create a new identity on the gateway.

The API key for the new identity is printed once. Store it securely,
it cannot be retrieved again.

Examples:
  # Create a user identity
  latchctl identity create --type user --display-name admin

  # Create a service identity
  latchctl identity create --type service --display-name ci-runner`,
	RunE: runCreate,
}

func init() {
	createCmd.Flags().StringVar(&createType, "type", "user", "Identity type (user|service)")
	createCmd.Flags().StringVar(&createDisplayName, "display-name", "", "Display name (required)")
	_ = createCmd.MarkFlagRequired("display-name")
}

func runCreate(cmd *cobra.Command, args []string) error {
	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	resp, err := client.CreateIdentity(apiclient.CreateIdentityRequest{
		Type:        createType,
		DisplayName: createDisplayName,
	})
	if err != nil {
		return fmt.Errorf("failed to create identity: %w", err)
	}

	return cmdutil.PrintResourceWithDetails(os.Stdout, resp,
		fmt.Sprintf("Identity '%s' created (%s)", resp.Identity.DisplayName, resp.Identity.ID),
		fmt.Sprintf("  Credential: %s", resp.Credential.ID),
		fmt.Sprintf("  API key: %s", resp.Secret),
		"",
		"Store the API key securely. It cannot be retrieved again.")
}
