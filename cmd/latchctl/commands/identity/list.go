package identity

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
	Short: "List all identities",
	Long: `List all identities on the gateway. Requires admin privileges.

Examples:
  # List identities as table
  latchctl identity list

  # List as JSON
  latchctl identity list -o json`,
	RunE: runList,
}

// IdentityList is a list of identities for table rendering.
type IdentityList []apiclient.Identity

// Headers implements TableRenderer.
func (il IdentityList) Headers() []string {
	return []string{"ID", "TYPE", "DISPLAY NAME", "STATUS", "CREATED"}
}

// Rows implements TableRenderer.
func (il IdentityList) Rows() [][]string {
	rows := make([][]string, 0, len(il))
	for _, id := range il {
		rows = append(rows, []string{
			id.ID,
			id.Type,
			id.DisplayName,
			id.Status,
			timeutil.FormatTime(id.CreatedAt),
		})
	}
	return rows
}

func runList(cmd *cobra.Command, args []string) error {
	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	identities, err := client.ListIdentities()
	if err != nil {
		return fmt.Errorf("failed to list identities: %w", err)
	}

	return cmdutil.PrintOutput(os.Stdout, identities, len(identities) == 0, "No identities found.", IdentityList(identities))
}
