package channel

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/latchhq/latch/cmd/latchctl/cmdutil"
	"github.com/latchhq/latch/internal/cli/output"
	"github.com/latchhq/latch/internal/cli/timeutil"
)

var getCmd = &cobra.Command{
	Use:   "get <channel-id>",
	Short: "Get channel details",
	Long: `Get details about a channel.

Examples:
  latchctl channel get ch_abc123
  latchctl channel get ch_abc123 -o json`,
	Args: cobra.ExactArgs(1),
	RunE: runGet,
}

func runGet(cmd *cobra.Command, args []string) error {
	channelID := args[0]

	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	ch, err := client.GetChannel(channelID)
	if err != nil {
		return fmt.Errorf("failed to get channel: %w", err)
	}

	format, err := cmdutil.GetOutputFormatParsed()
	if err != nil {
		return err
	}

	switch format {
	case output.FormatJSON:
		return output.PrintJSON(os.Stdout, ch)
	case output.FormatYAML:
		return output.PrintYAML(os.Stdout, ch)
	}

	return output.SimpleTable(os.Stdout, [][2]string{
		{"ID", ch.ChannelID},
		{"Name", ch.Name},
		{"Namespace", ch.OwnerNamespace},
		{"Created", timeutil.FormatTime(ch.CreatedAt)},
	})
}
