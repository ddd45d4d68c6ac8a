package channel

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/latchhq/latch/cmd/latchctl/cmdutil"
)

var deleteEventChannelToken string

var deleteEventCmd = &cobra.Command{
	Use:   "delete-event <channel-id> <seq>",
	Short: "Delete an event",
	Long: `Mark an event as deleted by appending a tombstone.

The original event is not rewritten. Readers skip deleted events unless
they ask for tombstones.

Examples:
  latchctl channel delete-event ch_abc 42`,
	Args: cobra.ExactArgs(2),
	RunE: runDeleteEvent,
}

func init() {
	deleteEventCmd.Flags().StringVar(&deleteEventChannelToken, "channel-token", "", "Capability token instead of an API key")
}

func runDeleteEvent(cmd *cobra.Command, args []string) error {
	channelID := args[0]
	seq, err := strconv.ParseUint(args[1], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid sequence number %q", args[1])
	}

	client, err := channelClient(deleteEventChannelToken)
	if err != nil {
		return err
	}

	tombstone, err := client.DeleteEvent(channelID, seq)
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}

	return cmdutil.PrintResourceWithDetails(os.Stdout, tombstone,
		fmt.Sprintf("Event %d deleted (tombstone at seq %d)", seq, tombstone.Seq))
}
