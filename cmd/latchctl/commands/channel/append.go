package channel

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/latchhq/latch/cmd/latchctl/cmdutil"
	"github.com/latchhq/latch/pkg/apiclient"
)

var (
	appendAuthorID     string
	appendFromStdin    bool
	appendChannelToken string
)

var appendCmd = &cobra.Command{
	Use:   "append <channel-id> [content]",
	Short: "Append an event",
	Long: `Append an event to a channel. The content comes from the argument
or, with --stdin, from standard input.

A capability token can be used instead of an API key with --channel-token.

Examples:
  latchctl channel append ch_abc '{"text":"hello"}'
  cat event.json | latchctl channel append ch_abc --stdin
  latchctl channel append ch_abc hello --channel-token <token>`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runAppend,
}

func init() {
	appendCmd.Flags().StringVar(&appendAuthorID, "author", "", "Author ID to record on the event")
	appendCmd.Flags().BoolVar(&appendFromStdin, "stdin", false, "Read content from standard input")
	appendCmd.Flags().StringVar(&appendChannelToken, "channel-token", "", "Capability token instead of an API key")
}

func runAppend(cmd *cobra.Command, args []string) error {
	channelID := args[0]

	var content string
	switch {
	case appendFromStdin:
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		content = string(data)
	case len(args) == 2:
		content = args[1]
	default:
		return fmt.Errorf("content argument or --stdin is required")
	}

	client, err := channelClient(appendChannelToken)
	if err != nil {
		return err
	}

	event, err := client.AppendEvent(apiclient.AppendEventRequest{
		ChannelID: channelID,
		Content:   content,
		AuthorID:  appendAuthorID,
	})
	if err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}

	return cmdutil.PrintResourceWithDetails(os.Stdout, event,
		fmt.Sprintf("Event appended at seq %d", event.Seq))
}

// channelClient builds a client using either a capability token or the
// stored API key credentials.
func channelClient(channelToken string) (*apiclient.Client, error) {
	if channelToken == "" {
		return cmdutil.GetAuthenticatedClient()
	}
	client, err := cmdutil.GetUnauthenticatedClient()
	if err != nil {
		return nil, err
	}
	return client.WithChannelToken(channelToken), nil
}
