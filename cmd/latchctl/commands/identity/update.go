package identity

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/latchhq/latch/cmd/latchctl/cmdutil"
)

var updateDisplayName string

var updateCmd = &cobra.Command{
	Use:   "update <identity-id>",
	Short: "Update an identity",
	Long: `Update an identity's display name.

Examples:
  # Rename an identity
  latchctl identity update id_abc123 --display-name "new name"`,
	Args: cobra.ExactArgs(1),
	RunE: runUpdate,
}

func init() {
	updateCmd.Flags().StringVar(&updateDisplayName, "display-name", "", "New display name (required)")
	_ = updateCmd.MarkFlagRequired("display-name")
}

func runUpdate(cmd *cobra.Command, args []string) error {
	identityID := args[0]

	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	updated, err := client.UpdateIdentity(identityID, updateDisplayName)
	if err != nil {
		return fmt.Errorf("failed to update identity: %w", err)
	}

	return cmdutil.PrintResourceWithSuccess(os.Stdout, updated,
		fmt.Sprintf("Identity '%s' updated", updated.ID))
}
