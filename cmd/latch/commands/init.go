package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/latchhq/latch/pkg/config"
	"github.com/latchhq/latch/pkg/gateway"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a sample configuration file",
	Long: `Initialize a sample Latch configuration file.

By default, the configuration file is created at $XDG_CONFIG_HOME/latch/config.yaml.
Use --config to specify a custom path.

Examples:
  # Initialize with default location
  latch init

  # Initialize with custom path
  latch init --config /etc/latch/config.yaml

  # Force overwrite existing config
  latch init --force`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Force overwrite existing config file")
}

func runInit(cmd *cobra.Command, args []string) error {
	configFile := GetConfigFile()

	var configPath string
	var err error

	if configFile != "" {
		// Use custom path
		err = config.InitConfigToPath(configFile, initForce)
		configPath = configFile
	} else {
		// Use default path
		configPath, err = config.InitConfig(initForce)
	}

	if err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}

	fmt.Printf("Configuration file created at: %s\n", configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("  1. Edit the configuration file to customize your setup")
	fmt.Println("  2. Start the gateway with: latch start")
	fmt.Printf("  3. Or specify custom config: latch start --config %s\n", configPath)
	fmt.Println("\nSecurity note:")
	fmt.Println("  A random bootstrap key has been generated for first-run setup.")
	fmt.Println("  Use it once to create your first admin identity, then rely on API keys.")
	fmt.Println("  For production, keep the key out of the config file and use an environment variable:")
	fmt.Println("    # Generates a 64-character hex string (32 bytes of entropy)")
	fmt.Printf("    export %s=$(openssl rand -hex 32)\n", gateway.EnvBootstrapKey)

	return nil
}
