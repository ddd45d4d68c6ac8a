package channel

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/latchhq/latch/cmd/latchctl/cmdutil"
)

var createCmd = &cobra.Command{
	Use:   "create <namespace> <name>",
	Short: "Create a channel",
	Long: `Create a new event channel in a namespace.

Examples:
  latchctl channel create myns chat`,
	Args: cobra.ExactArgs(2),
	RunE: runCreate,
}

func runCreate(cmd *cobra.Command, args []string) error {
	namespace, name := args[0], args[1]

	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	ch, err := client.CreateChannel(namespace, name)
	if err != nil {
		return fmt.Errorf("failed to create channel: %w", err)
	}

	return cmdutil.PrintResourceWithDetails(os.Stdout, ch,
		fmt.Sprintf("Channel '%s' created", ch.Name),
		fmt.Sprintf("  ID: %s", ch.ChannelID))
}
