package blob

import (
	"github.com/spf13/cobra"

	"github.com/latchhq/latch/cmd/latchctl/cmdutil"
)

var deleteForce bool

var deleteCmd = &cobra.Command{
	Use:   "delete <namespace> <key>",
	Short: "Delete a blob",
	Long: `Delete a blob from a namespace.

Examples:
  latchctl blob delete myns report.pdf
  latchctl blob delete myns report.pdf --force`,
	Args: cobra.ExactArgs(2),
	RunE: runDelete,
}

func init() {
	deleteCmd.Flags().BoolVarP(&deleteForce, "force", "f", false, "Skip confirmation")
}

func runDelete(cmd *cobra.Command, args []string) error {
	namespace, key := args[0], args[1]

	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	return cmdutil.RunDeleteWithConfirmation("blob", namespace+"/"+key, deleteForce, func() error {
		return client.DeleteBlob(namespace, key)
	})
}
