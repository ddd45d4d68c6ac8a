package channel

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/latchhq/latch/cmd/latchctl/cmdutil"
	"github.com/latchhq/latch/internal/cli/timeutil"
	"github.com/latchhq/latch/pkg/apiclient"
)

var (
	readAfterSeq       uint64
	readLimit          int
	readIncludeDeleted bool
	readChannelToken   string
)

var readCmd = &cobra.Command{
	Use:   "read <channel-id>",
	Short: "Read events from a channel",
	Long: `Read events from a channel in sequence order.

Deleted events are elided unless --include-deleted is set, in which case
their tombstones are shown.

Examples:
  # Read from the beginning
  latchctl channel read ch_abc

  # Read events after sequence 42
  latchctl channel read ch_abc --after 42

  # Read with a capability token
  latchctl channel read ch_abc --channel-token <token>`,
	Args: cobra.ExactArgs(1),
	RunE: runRead,
}

func init() {
	readCmd.Flags().Uint64Var(&readAfterSeq, "after", 0, "Only return events after this sequence number")
	readCmd.Flags().IntVar(&readLimit, "limit", 0, "Maximum number of events to return")
	readCmd.Flags().BoolVar(&readIncludeDeleted, "include-deleted", false, "Include tombstoned events")
	readCmd.Flags().StringVar(&readChannelToken, "channel-token", "", "Capability token instead of an API key")
}

// EventList is a list of events for table rendering.
type EventList []apiclient.Event

// Headers implements TableRenderer.
func (el EventList) Headers() []string {
	return []string{"SEQ", "TYPE", "AUTHOR", "CONTENT", "CREATED"}
}

// Rows implements TableRenderer.
func (el EventList) Rows() [][]string {
	rows := make([][]string, 0, len(el))
	for _, e := range el {
		content := e.Content
		if len(content) > 60 {
			content = content[:57] + "..."
		}
		if e.Deleted {
			content = "<deleted>"
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", e.Seq),
			e.Type,
			cmdutil.EmptyOr(e.AuthorID, "-"),
			content,
			timeutil.FormatTime(e.CreatedAt),
		})
	}
	return rows
}

func runRead(cmd *cobra.Command, args []string) error {
	channelID := args[0]

	client, err := channelClient(readChannelToken)
	if err != nil {
		return err
	}

	resp, err := client.ReadEvents(apiclient.ReadEventsRequest{
		ChannelID:      channelID,
		AfterSeq:       readAfterSeq,
		Limit:          readLimit,
		IncludeDeleted: readIncludeDeleted,
	})
	if err != nil {
		return fmt.Errorf("failed to read events: %w", err)
	}

	if err := cmdutil.PrintOutput(os.Stdout, resp, len(resp.Events) == 0, "No events.", EventList(resp.Events)); err != nil {
		return err
	}

	if resp.HasMore && len(resp.Events) > 0 {
		last := resp.Events[len(resp.Events)-1].Seq
		fmt.Printf("\nMore events available. Continue with:\n  latchctl channel read %s --after %d\n", channelID, last)
	}

	return nil
}
