package blob

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/latchhq/latch/cmd/latchctl/cmdutil"
	"github.com/latchhq/latch/pkg/apiclient"
)

var (
	uploadContentType string
	uploadVisibility  string
)

var uploadCmd = &cobra.Command{
	Use:   "upload <namespace> <key> <file>",
	Short: "Upload a blob",
	Long: `Upload a file as a blob. Use "-" as the file to read from stdin,
in which case the content is buffered to determine its size.

Examples:
  # Upload a file
  latchctl blob upload myns report.pdf ./report.pdf

  # Upload as public
  latchctl blob upload myns logo.png ./logo.png --visibility public`,
	Args: cobra.ExactArgs(3),
	RunE: runUpload,
}

func init() {
	uploadCmd.Flags().StringVar(&uploadContentType, "content-type", "", "Content type (default: guessed from extension)")
	uploadCmd.Flags().StringVar(&uploadVisibility, "visibility", "", "Blob visibility (private|public|presigned)")
}

func runUpload(cmd *cobra.Command, args []string) error {
	namespace, key, path := args[0], args[1], args[2]

	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	contentType := uploadContentType
	if contentType == "" {
		contentType = mime.TypeByExtension(filepath.Ext(key))
	}

	var (
		file *os.File
		size int64
	)
	if path == "-" {
		tmp, err := os.CreateTemp("", "latchctl-upload-*")
		if err != nil {
			return fmt.Errorf("failed to buffer stdin: %w", err)
		}
		defer func() {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}()
		n, err := tmp.ReadFrom(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		if _, err := tmp.Seek(0, 0); err != nil {
			return fmt.Errorf("failed to rewind buffer: %w", err)
		}
		file, size = tmp, n
	} else {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open file: %w", err)
		}
		defer func() { _ = f.Close() }()
		info, err := f.Stat()
		if err != nil {
			return fmt.Errorf("failed to stat file: %w", err)
		}
		file, size = f, info.Size()
	}

	err = client.UploadBlob(namespace, key, file, size, apiclient.UploadBlobOptions{
		ContentType: contentType,
		Visibility:  uploadVisibility,
	})
	if err != nil {
		return fmt.Errorf("failed to upload blob: %w", err)
	}

	cmdutil.PrintSuccess(fmt.Sprintf("Blob '%s' uploaded to namespace '%s' (%d bytes)", key, namespace, size))
	return nil
}
