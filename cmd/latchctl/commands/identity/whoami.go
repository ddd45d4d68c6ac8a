package identity

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/latchhq/latch/cmd/latchctl/cmdutil"
	"github.com/latchhq/latch/internal/cli/output"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the authenticated identity",
	Long: `Display the identity and permissions behind the current API key.

Examples:
  # Show current identity
  latchctl identity whoami

  # As JSON
  latchctl identity whoami -o json`,
	RunE: runWhoami,
}

func runWhoami(cmd *cobra.Command, args []string) error {
	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	resp, err := client.Whoami()
	if err != nil {
		return fmt.Errorf("whoami failed: %w", err)
	}

	format, err := cmdutil.GetOutputFormatParsed()
	if err != nil {
		return err
	}

	switch format {
	case output.FormatJSON:
		return output.PrintJSON(os.Stdout, resp)
	case output.FormatYAML:
		return output.PrintYAML(os.Stdout, resp)
	}

	if resp.Bootstrap {
		fmt.Println("Authenticated with the bootstrap key.")
		fmt.Println()
		fmt.Println("Create the first admin identity with:")
		fmt.Println("  latchctl identity create --type user --display-name admin")
		return nil
	}

	if resp.Identity == nil {
		fmt.Println("Authenticated, but no identity details returned.")
		return nil
	}

	fmt.Printf("Identity: %s\n", resp.Identity.DisplayName)
	fmt.Printf("  ID:      %s\n", resp.Identity.ID)
	fmt.Printf("  Type:    %s\n", resp.Identity.Type)
	fmt.Printf("  Status:  %s\n", resp.Identity.Status)

	if resp.Permissions != nil {
		fmt.Printf("  Admin:   %s\n", cmdutil.BoolToYesNo(resp.Permissions.Admin))
		if len(resp.Permissions.Namespaces) > 0 {
			fmt.Printf("  Namespaces: %s\n", strings.Join(resp.Permissions.Namespaces, ", "))
		}
		if len(resp.Permissions.Grants) > 0 {
			fmt.Println("  Grants:")
			for _, g := range resp.Permissions.Grants {
				fmt.Printf("    - %s (%s via %s)\n", g.Capability, g.GrantID, g.Source)
			}
		}
	}

	return nil
}
