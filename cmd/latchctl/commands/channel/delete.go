package channel

import (
	"github.com/spf13/cobra"

	"github.com/latchhq/latch/cmd/latchctl/cmdutil"
)

var deleteForce bool

var deleteCmd = &cobra.Command{
	Use:   "delete <channel-id>",
	Short: "Delete a channel",
	Long: `Delete a channel and all of its events.

Examples:
  latchctl channel delete ch_abc123
  latchctl channel delete ch_abc123 --force`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

func init() {
	deleteCmd.Flags().BoolVarP(&deleteForce, "force", "f", false, "Skip confirmation")
}

func runDelete(cmd *cobra.Command, args []string) error {
	channelID := args[0]

	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	return cmdutil.RunDeleteWithConfirmation("channel", channelID, deleteForce, func() error {
		return client.DeleteChannel(channelID)
	})
}
