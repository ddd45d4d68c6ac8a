package commands

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"github.com/latchhq/latch/cmd/latchctl/cmdutil"
	"github.com/latchhq/latch/internal/cli/credentials"
	"github.com/latchhq/latch/internal/cli/prompt"
	"github.com/latchhq/latch/pkg/apiclient"
)

var loginContextName string

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to a Latch gateway",
	Long: `Authenticate against a Latch gateway and save the credentials.

The API key is verified with a whoami call before being stored. Credentials
are saved in a named context so you can switch between gateways with
'latchctl context use'.

The bootstrap key (LATCH_BOOTSTRAP_KEY on the server) can be used here to
create the first admin identity.

Examples:
  # Interactive login
  latchctl login --server http://localhost:8080

  # Non-interactive login
  latchctl login --server http://localhost:8080 --api-key lk_abc123

  # Save under a custom context name
  latchctl login --server https://latch.example.com --name production`,
	RunE: runLogin,
}

func init() {
	loginCmd.Flags().StringVar(&loginContextName, "name", "", "Context name (default: derived from server URL)")
}

func runLogin(cmd *cobra.Command, args []string) error {
	// Load credential store
	store, err := credentials.NewStore()
	if err != nil {
		return fmt.Errorf("failed to initialize credential store: %w", err)
	}

	// Resolve server URL: flag, then stored context, then prompt
	serverURL := cmdutil.Flags.ServerURL
	if serverURL == "" {
		if ctx, err := store.GetCurrentContext(); err == nil && ctx.ServerURL != "" {
			serverURL = ctx.ServerURL
		}
	}
	if serverURL == "" {
		serverURL, err = prompt.InputRequired("Server URL")
		if err != nil {
			return cmdutil.HandleAbort(err)
		}
	}

	serverURL, err = normalizeServerURL(serverURL)
	if err != nil {
		return err
	}

	// Resolve API key: flag, then prompt
	apiKey := cmdutil.Flags.APIKey
	if apiKey == "" {
		apiKey, err = prompt.Password("API key")
		if err != nil {
			return cmdutil.HandleAbort(err)
		}
	}
	if apiKey == "" {
		return fmt.Errorf("API key is required")
	}

	// Verify the key before saving
	client := apiclient.New(serverURL).WithAPIKey(apiKey)
	who, err := client.Whoami()
	if err != nil {
		if apiErr, ok := err.(*apiclient.APIError); ok && apiErr.IsAuthError() {
			return fmt.Errorf("login failed: invalid API key")
		}
		return fmt.Errorf("login failed: %w", err)
	}

	// Save context
	contextName := loginContextName
	if contextName == "" {
		contextName = credentials.GenerateContextName(serverURL)
	}

	ctx := &credentials.Context{
		ServerURL: serverURL,
		APIKey:    apiKey,
	}

	if err := store.SetContext(contextName, ctx); err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}
	if err := store.UseContext(contextName); err != nil {
		return fmt.Errorf("failed to activate context: %w", err)
	}

	fmt.Printf("Logged in to %s\n", serverURL)
	if who.Bootstrap {
		fmt.Println("  Identity:  bootstrap")
		fmt.Println()
		fmt.Println("You are using the bootstrap key. Create an admin identity with:")
		fmt.Println("  latchctl identity create --type user --display-name admin")
	} else if who.Identity != nil {
		fmt.Printf("  Identity:  %s (%s)\n", who.Identity.DisplayName, who.Identity.ID)
	}
	fmt.Printf("  Context:   %s\n", contextName)
	fmt.Printf("  Config:    %s\n", store.ConfigPath())

	return nil
}

// normalizeServerURL validates the server URL and defaults the scheme to http.
func normalizeServerURL(raw string) (string, error) {
	raw = strings.TrimRight(strings.TrimSpace(raw), "/")
	if raw == "" {
		return "", fmt.Errorf("server URL is required")
	}
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid server URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("invalid server URL scheme %q (must be http or https)", parsed.Scheme)
	}
	if parsed.Host == "" {
		return "", fmt.Errorf("invalid server URL: missing host")
	}

	return raw, nil
}
