// Package blob implements blob storage commands for latchctl.
package blob

import (
	"github.com/spf13/cobra"
)

// Cmd is the parent command for blob operations.
var Cmd = &cobra.Command{
	Use:   "blob",
	Short: "Blob storage operations",
	Long: `Upload, download, and manage blobs on the gateway.

Blobs live in namespaces and carry a visibility: private, public, or
presigned.

Examples:
  # Upload a file
  latchctl blob upload myns report.pdf ./report.pdf

  # List blobs
  latchctl blob list myns

  # Mint a presigned upload URL
  latchctl blob presign-upload myns report.pdf --size 1048576`,
}

func init() {
	Cmd.AddCommand(uploadCmd)
	Cmd.AddCommand(getCmd)
	Cmd.AddCommand(deleteCmd)
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(presignUploadCmd)
	Cmd.AddCommand(visibilityCmd)
	Cmd.AddCommand(downloadCmd)
}
