package blob

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/latchhq/latch/cmd/latchctl/cmdutil"
)

var downloadFile string

var downloadCmd = &cobra.Command{
	Use:   "download <namespace> <key>",
	Short: "Download a blob",
	Long: `Download a blob's content.

The blob metadata is fetched first to resolve a download URL. Content
goes to stdout unless --file names a file.

Examples:
  # Download to a file
  latchctl blob download myns report.pdf --file ./report.pdf

  # Pipe to stdout
  latchctl blob download myns data.csv | head`,
	Args: cobra.ExactArgs(2),
	RunE: runDownload,
}

func init() {
	downloadCmd.Flags().StringVar(&downloadFile, "file", "", "Write content to this file instead of stdout")
}

func runDownload(cmd *cobra.Command, args []string) error {
	namespace, key := args[0], args[1]

	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	info, err := client.GetBlob(namespace, key)
	if err != nil {
		return fmt.Errorf("failed to get blob: %w", err)
	}
	if info.DownloadURL == "" {
		return fmt.Errorf("blob '%s/%s' has no download URL (visibility %s)", namespace, key, info.Visibility)
	}

	body, err := client.DownloadBlob(info.DownloadURL)
	if err != nil {
		return fmt.Errorf("failed to download blob: %w", err)
	}
	defer func() { _ = body.Close() }()

	out := io.Writer(os.Stdout)
	if downloadFile != "" {
		f, err := os.Create(downloadFile)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer func() { _ = f.Close() }()
		out = f
	}

	n, err := io.Copy(out, body)
	if err != nil {
		return fmt.Errorf("download failed: %w", err)
	}

	if downloadFile != "" {
		cmdutil.PrintSuccess(fmt.Sprintf("Downloaded %d bytes to %s", n, downloadFile))
	}

	return nil
}
