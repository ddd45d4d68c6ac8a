package channel

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/latchhq/latch/cmd/latchctl/cmdutil"
	"github.com/latchhq/latch/internal/cli/timeutil"
	"github.com/latchhq/latch/pkg/apiclient"
)

var listCmd = &cobra.Command{
	Use:   "list <namespace>",
	Short: "List channels in a namespace",
	Long: `List the channels in a namespace.

Examples:
  latchctl channel list myns
  latchctl channel list myns -o json`,
	Args: cobra.ExactArgs(1),
	RunE: runList,
}

// ChannelList is a list of channels for table rendering.
type ChannelList []apiclient.Channel

// Headers implements TableRenderer.
func (cl ChannelList) Headers() []string {
	return []string{"ID", "NAME", "NAMESPACE", "CREATED"}
}

// Rows implements TableRenderer.
func (cl ChannelList) Rows() [][]string {
	rows := make([][]string, 0, len(cl))
	for _, ch := range cl {
		rows = append(rows, []string{
			ch.ChannelID,
			ch.Name,
			ch.OwnerNamespace,
			timeutil.FormatTime(ch.CreatedAt),
		})
	}
	return rows
}

func runList(cmd *cobra.Command, args []string) error {
	namespace := args[0]

	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	channels, err := client.ListChannels(namespace)
	if err != nil {
		return fmt.Errorf("failed to list channels: %w", err)
	}

	return cmdutil.PrintOutput(os.Stdout, channels, len(channels) == 0, "No channels found.", ChannelList(channels))
}
