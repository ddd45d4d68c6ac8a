package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/latchhq/latch/internal/cli/credentials"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out of the current context",
	Long: `Remove the stored API key for the current context.

The server URL is kept so you can log back in without re-entering it.

Examples:
  latchctl logout`,
	RunE: runLogout,
}

func runLogout(cmd *cobra.Command, args []string) error {
	store, err := credentials.NewStore()
	if err != nil {
		return fmt.Errorf("failed to initialize credential store: %w", err)
	}

	contextName := store.GetCurrentContextName()
	if contextName == "" {
		fmt.Println("Not logged in.")
		return nil
	}

	if err := store.ClearCurrentContext(); err != nil {
		return fmt.Errorf("failed to clear credentials: %w", err)
	}

	fmt.Printf("Logged out of context: %s\n", contextName)
	return nil
}
