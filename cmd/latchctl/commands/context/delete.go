package context

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/latchhq/latch/cmd/latchctl/cmdutil"
	"github.com/latchhq/latch/internal/cli/credentials"
)

var deleteForce bool

var deleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a context",
	Long: `Delete a server context.

This removes the saved configuration and credentials for the context.

Examples:
  # Delete context named "staging"
  latchctl context delete staging

  # Delete without confirmation
  latchctl context delete staging --force`,
	Args: cobra.ExactArgs(1),
	RunE: runContextDelete,
}

func init() {
	deleteCmd.Flags().BoolVarP(&deleteForce, "force", "f", false, "Skip confirmation")
}

func runContextDelete(cmd *cobra.Command, args []string) error {
	contextName := args[0]

	store, err := credentials.NewStore()
	if err != nil {
		return fmt.Errorf("failed to initialize credential store: %w", err)
	}

	if _, err := store.GetContext(contextName); err != nil {
		return fmt.Errorf("context '%s' not found\n\n"+
			"List available contexts:\n"+
			"  latchctl context list", contextName)
	}

	return cmdutil.RunDeleteWithConfirmation("context", contextName, deleteForce, func() error {
		return store.DeleteContext(contextName)
	})
}
