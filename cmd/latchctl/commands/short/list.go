package short

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/latchhq/latch/cmd/latchctl/cmdutil"
	"github.com/latchhq/latch/internal/cli/timeutil"
	"github.com/latchhq/latch/pkg/apiclient"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List your short links",
	Long: `List the short links created by the current identity.

Examples:
  latchctl short list
  latchctl short list -o json`,
	RunE: runList,
}

// LinkList is a list of short links for table rendering.
type LinkList []apiclient.ShortLink

// Headers implements TableRenderer.
func (ll LinkList) Headers() []string {
	return []string{"ID", "TARGET", "CREATED"}
}

// Rows implements TableRenderer.
func (ll LinkList) Rows() [][]string {
	rows := make([][]string, 0, len(ll))
	for _, l := range ll {
		rows = append(rows, []string{
			l.ID,
			l.TargetURL,
			timeutil.FormatTime(l.CreatedAt),
		})
	}
	return rows
}

func runList(cmd *cobra.Command, args []string) error {
	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	links, err := client.ListShortLinks()
	if err != nil {
		return fmt.Errorf("failed to list short links: %w", err)
	}

	return cmdutil.PrintOutput(os.Stdout, links, len(links) == 0, "No short links found.", LinkList(links))
}
