package blob

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/latchhq/latch/cmd/latchctl/cmdutil"
	"github.com/latchhq/latch/internal/bytesize"
	"github.com/latchhq/latch/pkg/apiclient"
)

var (
	listPrefix string
	listLimit  int
	listCursor string
)

var listCmd = &cobra.Command{
	Use:   "list <namespace>",
	Short: "List blobs in a namespace",
	Long: `List blobs in a namespace, optionally filtered by prefix.

Results are paginated. When the listing is truncated, a cursor is
printed for fetching the next page.

Examples:
  # List all blobs
  latchctl blob list myns

  # List blobs under a prefix
  latchctl blob list myns --prefix reports/`,
	Args: cobra.ExactArgs(1),
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVar(&listPrefix, "prefix", "", "Only list blobs with this key prefix")
	listCmd.Flags().IntVar(&listLimit, "limit", 0, "Maximum number of blobs to return")
	listCmd.Flags().StringVar(&listCursor, "cursor", "", "Pagination cursor from a previous listing")
}

// ObjectList is a list of blob objects for table rendering.
type ObjectList []apiclient.BlobObject

// Headers implements TableRenderer.
func (ol ObjectList) Headers() []string {
	return []string{"KEY", "SIZE"}
}

// Rows implements TableRenderer.
func (ol ObjectList) Rows() [][]string {
	rows := make([][]string, 0, len(ol))
	for _, o := range ol {
		rows = append(rows, []string{o.Key, bytesize.ByteSize(o.Size).String()})
	}
	return rows
}

func runList(cmd *cobra.Command, args []string) error {
	namespace := args[0]

	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	resp, err := client.ListBlobs(apiclient.ListBlobsRequest{
		Namespace: namespace,
		Prefix:    listPrefix,
		Limit:     listLimit,
		Cursor:    listCursor,
	})
	if err != nil {
		return fmt.Errorf("failed to list blobs: %w", err)
	}

	if err := cmdutil.PrintOutput(os.Stdout, resp, len(resp.Objects) == 0, "No blobs found.", ObjectList(resp.Objects)); err != nil {
		return err
	}

	if resp.Truncated {
		fmt.Printf("\nMore blobs available. Continue with:\n  latchctl blob list %s --cursor %s\n", namespace, resp.Cursor)
	}

	return nil
}
