package blob

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/latchhq/latch/cmd/latchctl/cmdutil"
	"github.com/latchhq/latch/internal/bytesize"
	"github.com/latchhq/latch/internal/cli/output"
	"github.com/latchhq/latch/internal/cli/timeutil"
)

var getCmd = &cobra.Command{
	Use:   "get <namespace> <key>",
	Short: "Get blob metadata",
	Long: `Get metadata about a blob, including a download URL when the blob
is public or presigned.

Examples:
  latchctl blob get myns report.pdf
  latchctl blob get myns report.pdf -o json`,
	Args: cobra.ExactArgs(2),
	RunE: runGet,
}

func runGet(cmd *cobra.Command, args []string) error {
	namespace, key := args[0], args[1]

	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	info, err := client.GetBlob(namespace, key)
	if err != nil {
		return fmt.Errorf("failed to get blob: %w", err)
	}

	format, err := cmdutil.GetOutputFormatParsed()
	if err != nil {
		return err
	}

	switch format {
	case output.FormatJSON:
		return output.PrintJSON(os.Stdout, info)
	case output.FormatYAML:
		return output.PrintYAML(os.Stdout, info)
	}

	pairs := [][2]string{
		{"Key", info.Key},
		{"Namespace", info.Namespace},
		{"Size", bytesize.ByteSize(info.Size).String()},
		{"Content type", cmdutil.EmptyOr(info.ContentType, "-")},
		{"Visibility", info.Visibility},
	}
	if info.DownloadURL != "" {
		pairs = append(pairs, [2]string{"Download URL", info.DownloadURL})
	}
	if !info.ExpiresAt.IsZero() {
		pairs = append(pairs, [2]string{"URL expires", timeutil.FormatTime(info.ExpiresAt)})
	}
	return output.SimpleTable(os.Stdout, pairs)
}
