package blob

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/latchhq/latch/cmd/latchctl/cmdutil"
	"github.com/latchhq/latch/pkg/apiclient"
)

var (
	presignContentType string
	presignSize        int64
	presignExpiresIn   int64
)

var presignUploadCmd = &cobra.Command{
	Use:   "presign-upload <namespace> <key>",
	Short: "Mint a presigned upload URL",
	Long: `Mint a presigned URL that allows one PUT of the named blob.

The upload must match the declared content type and size exactly.

Examples:
  latchctl blob presign-upload myns report.pdf --content-type application/pdf --size 1048576

  # Expire the URL after five minutes
  latchctl blob presign-upload myns report.pdf --size 1048576 --expires-in 300`,
	Args: cobra.ExactArgs(2),
	RunE: runPresignUpload,
}

func init() {
	presignUploadCmd.Flags().StringVar(&presignContentType, "content-type", "", "Required content type of the upload")
	presignUploadCmd.Flags().Int64Var(&presignSize, "size", 0, "Exact size of the upload in bytes (required)")
	presignUploadCmd.Flags().Int64Var(&presignExpiresIn, "expires-in", 0, "URL lifetime in seconds (default: server default)")
	_ = presignUploadCmd.MarkFlagRequired("size")
}

func runPresignUpload(cmd *cobra.Command, args []string) error {
	namespace, key := args[0], args[1]

	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	resp, err := client.PresignUpload(apiclient.PresignUploadRequest{
		Namespace:        namespace,
		Key:              key,
		ContentType:      presignContentType,
		Size:             presignSize,
		ExpiresInSeconds: presignExpiresIn,
	})
	if err != nil {
		return fmt.Errorf("failed to presign upload: %w", err)
	}

	return cmdutil.PrintResourceWithDetails(os.Stdout, resp,
		fmt.Sprintf("Presigned %s URL minted for %s/%s", resp.Method, namespace, key),
		fmt.Sprintf("  URL:      %s", resp.UploadURL),
		fmt.Sprintf("  Expires:  %s", resp.ExpiresAt))
}
