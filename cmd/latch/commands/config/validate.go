package config

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/latchhq/latch/pkg/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	Long: `Validate the Latch configuration file.

Checks for syntax errors, missing required fields, and invalid values.

Examples:
  # Validate default config
  latch config validate

  # Validate specific config file
  latch config validate --config /etc/latch/config.yaml`,
	RunE: runConfigValidate,
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	// Get config path from parent's persistent flag
	configPath, _ := cmd.Flags().GetString("config")

	// Load and validate configuration
	cfg, err := config.MustLoad(configPath)
	if err != nil {
		return err
	}

	// Determine path for display
	displayPath := configPath
	if displayPath == "" {
		displayPath = config.GetDefaultConfigPath()
	}

	// Additional validation checks
	var warnings []string

	// Check bootstrap key is available from config or environment
	if cfg.Gateway.GetBootstrapKey() == "" {
		warnings = append(warnings, "Bootstrap key not configured - first-run identity setup will be unavailable")
	}

	// Presigned URLs in local mode survive restarts only with a pinned secret
	if cfg.Stores.Presign.Mode == config.PresignModeLocal &&
		cfg.Stores.KV.Backend == config.KVBackendMemory && cfg.Gateway.GetSigningSecret() == "" {
		warnings = append(warnings, "In-memory kv store with generated signing secret - presigned URLs will not survive restarts")
	}

	// Print results
	fmt.Printf("Configuration file: %s\n", displayPath)
	fmt.Println("Validation: OK")

	if len(warnings) > 0 {
		fmt.Println("\nWarnings:")
		for _, w := range warnings {
			fmt.Printf("  - %s\n", w)
		}
	}

	fmt.Printf("\nConfiguration summary:\n")
	fmt.Printf("  KV backend:      %s\n", cfg.Stores.KV.Backend)
	fmt.Printf("  Blob backend:    %s\n", cfg.Stores.Blob.Backend)
	fmt.Printf("  Presign mode:    %s\n", cfg.Stores.Presign.Mode)
	fmt.Printf("  Gateway port:    %d\n", cfg.Gateway.Port)
	fmt.Printf("  Log level:       %s\n", cfg.Logging.Level)

	return nil
}
