package identity

import (
	"github.com/spf13/cobra"

	"github.com/latchhq/latch/cmd/latchctl/cmdutil"
)

var deleteForce bool

var deleteCmd = &cobra.Command{
	Use:   "delete <identity-id>",
	Short: "Delete an identity",
	Long: `Delete an identity and revoke all of its credentials and grants.

Requires admin privileges. You cannot delete your own identity.

Examples:
  # Delete an identity
  latchctl identity delete id_abc123

  # Delete without confirmation
  latchctl identity delete id_abc123 --force`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

func init() {
	deleteCmd.Flags().BoolVarP(&deleteForce, "force", "f", false, "Skip confirmation")
}

func runDelete(cmd *cobra.Command, args []string) error {
	identityID := args[0]

	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	return cmdutil.RunDeleteWithConfirmation("identity", identityID, deleteForce, func() error {
		return client.DeleteIdentity(identityID)
	})
}
