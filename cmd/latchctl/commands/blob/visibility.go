package blob

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/latchhq/latch/cmd/latchctl/cmdutil"
)

var visibilityCmd = &cobra.Command{
	Use:   "visibility <namespace> <key> <private|public|presigned>",
	Short: "Change blob visibility",
	Long: `Change the visibility of a blob.

Private blobs require an API key. Public blobs are served without
authentication. Presigned blobs are served through signed URLs.

Examples:
  latchctl blob visibility myns logo.png public
  latchctl blob visibility myns report.pdf private`,
	Args: cobra.ExactArgs(3),
	RunE: runVisibility,
}

func runVisibility(cmd *cobra.Command, args []string) error {
	namespace, key, visibility := args[0], args[1], args[2]

	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	if err := client.SetBlobVisibility(namespace, key, visibility); err != nil {
		return fmt.Errorf("failed to set visibility: %w", err)
	}

	cmdutil.PrintSuccess(fmt.Sprintf("Blob '%s/%s' visibility set to %s", namespace, key, visibility))
	return nil
}
