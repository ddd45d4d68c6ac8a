package short

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/latchhq/latch/cmd/latchctl/cmdutil"
)

var createCmd = &cobra.Command{
	Use:   "create <target-url>",
	Short: "Create a short link",
	Long: `Create a short link pointing at a target URL.

Examples:
  latchctl short create https://example.com/some/long/path`,
	Args: cobra.ExactArgs(1),
	RunE: runCreate,
}

func runCreate(cmd *cobra.Command, args []string) error {
	targetURL := args[0]

	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	link, err := client.CreateShortLink(targetURL)
	if err != nil {
		return fmt.Errorf("failed to create short link: %w", err)
	}

	return cmdutil.PrintResourceWithDetails(os.Stdout, link,
		fmt.Sprintf("Short link created: %s", link.ID),
		fmt.Sprintf("  %s/s/%s -> %s", client.BaseURL(), link.ID, link.TargetURL))
}
