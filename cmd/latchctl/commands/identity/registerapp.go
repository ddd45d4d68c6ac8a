package identity

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/latchhq/latch/cmd/latchctl/cmdutil"
	"github.com/latchhq/latch/pkg/apiclient"
)

var (
	registerAppOrigin       string
	registerAppDisplayName  string
	registerAppCapabilities string
	registerAppFrameAccess  bool
)

var registerAppCmd = &cobra.Command{
	Use:   "register-app",
	Short: "Register a browser app",
	Long: `Register a browser app identity bound to a web origin.

The app receives its own namespace and the granted capabilities. Requires
admin privileges.

Examples:
  # Register an app
  latchctl identity register-app --origin https://app.example.com --display-name myapp

  # Register with explicit capabilities and frame access
  latchctl identity register-app --origin https://app.example.com --display-name myapp \
    --capabilities kv,blob,channel --frame-access`,
	RunE: runRegisterApp,
}

func init() {
	registerAppCmd.Flags().StringVar(&registerAppOrigin, "origin", "", "Web origin of the app (required)")
	registerAppCmd.Flags().StringVar(&registerAppDisplayName, "display-name", "", "Display name (required)")
	registerAppCmd.Flags().StringVar(&registerAppCapabilities, "capabilities", "", "Comma-separated capabilities to grant")
	registerAppCmd.Flags().BoolVar(&registerAppFrameAccess, "frame-access", false, "Allow the app to be embedded in frames")
	_ = registerAppCmd.MarkFlagRequired("origin")
	_ = registerAppCmd.MarkFlagRequired("display-name")
}

func runRegisterApp(cmd *cobra.Command, args []string) error {
	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	resp, err := client.RegisterApp(apiclient.RegisterAppRequest{
		Origin:       registerAppOrigin,
		DisplayName:  registerAppDisplayName,
		Capabilities: cmdutil.ParseCommaSeparatedList(registerAppCapabilities),
		FrameAccess:  registerAppFrameAccess,
	})
	if err != nil {
		return fmt.Errorf("failed to register app: %w", err)
	}

	infoLines := []string{
		fmt.Sprintf("  Identity:   %s", resp.Identity.ID),
		fmt.Sprintf("  Namespace:  %s", resp.Namespace),
	}
	if resp.APIKey != "" {
		infoLines = append(infoLines,
			fmt.Sprintf("  API key:    %s", resp.APIKey),
			"",
			"Store the API key securely. It cannot be retrieved again.")
	}

	return cmdutil.PrintResourceWithDetails(os.Stdout, resp,
		fmt.Sprintf("App '%s' registered for origin %s", resp.Identity.DisplayName, registerAppOrigin),
		infoLines...)
}
