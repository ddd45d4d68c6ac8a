package token

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/latchhq/latch/cmd/latchctl/cmdutil"
	"github.com/latchhq/latch/pkg/apiclient"
)

var (
	createAction        string
	createLabel         string
	createExpiresIn     int64
	createIdentityID    string
	createBlobBucket    string
	createBlobKey       string
	createBlobType      string
	createBlobLength    int64
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a stateful token",
	Long: `Create a single-use token.

Identity claim tokens hand out credentials for a pending identity.
Blob access tokens grant one download or upload of a specific object.

Examples:
  # Identity claim token for a pending identity
  latchctl token create --action identity_claim --identity id_abc --expires-in 86400

  # One-shot blob download token
  latchctl token create --action blob_access --blob-bucket myns --blob-key report.pdf`,
	RunE: runCreate,
}

func init() {
	createCmd.Flags().StringVar(&createAction, "action", "", "Token action (identity_claim|blob_access) (required)")
	createCmd.Flags().StringVar(&createLabel, "label", "", "Label for the token")
	createCmd.Flags().Int64Var(&createExpiresIn, "expires-in", 0, "Token lifetime in seconds (default: server default)")
	createCmd.Flags().StringVar(&createIdentityID, "identity", "", "Identity ID (for identity_claim)")
	createCmd.Flags().StringVar(&createBlobBucket, "blob-bucket", "", "Blob namespace (for blob_access)")
	createCmd.Flags().StringVar(&createBlobKey, "blob-key", "", "Blob key (for blob_access)")
	createCmd.Flags().StringVar(&createBlobType, "blob-content-type", "", "Expected content type (for blob_access)")
	createCmd.Flags().Int64Var(&createBlobLength, "blob-content-length", 0, "Expected content length (for blob_access)")
	_ = createCmd.MarkFlagRequired("action")
}

func runCreate(cmd *cobra.Command, args []string) error {
	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	req := apiclient.CreateTokenRequest{
		Action:           createAction,
		Label:            createLabel,
		ExpiresInSeconds: createExpiresIn,
		IdentityID:       createIdentityID,
	}
	if createBlobBucket != "" || createBlobKey != "" {
		req.Blob = &apiclient.BlobPayload{
			Bucket:        createBlobBucket,
			Key:           createBlobKey,
			ContentType:   createBlobType,
			ContentLength: createBlobLength,
		}
	}

	resp, err := client.CreateToken(req)
	if err != nil {
		return fmt.Errorf("failed to create token: %w", err)
	}

	return cmdutil.PrintResourceWithDetails(os.Stdout, resp,
		fmt.Sprintf("Token created (%s)", resp.Action),
		fmt.Sprintf("  Token:    %s", resp.TokenID),
		fmt.Sprintf("  Expires:  %s", resp.ExpiresAt))
}
