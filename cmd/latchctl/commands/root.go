// Package commands implements the latchctl CLI commands.
package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/latchhq/latch/cmd/latchctl/cmdutil"
	"github.com/latchhq/latch/cmd/latchctl/commands/blob"
	"github.com/latchhq/latch/cmd/latchctl/commands/channel"
	contextcmd "github.com/latchhq/latch/cmd/latchctl/commands/context"
	"github.com/latchhq/latch/cmd/latchctl/commands/identity"
	"github.com/latchhq/latch/cmd/latchctl/commands/kv"
	"github.com/latchhq/latch/cmd/latchctl/commands/short"
	"github.com/latchhq/latch/cmd/latchctl/commands/token"
)

// Build information. Set by main at startup.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

var (
	flagServer  string
	flagAPIKey  string
	flagOutput  string
	flagNoColor bool
	flagVerbose bool
)

var rootCmd = &cobra.Command{
	Use:   "latchctl",
	Short: "Latch Control - Remote management client",
	Long: `Latchctl is the remote management client for a Latch gateway.

It talks to the gateway REST API to manage identities, key-value data,
channels, tokens, short links, and blobs.

Get started:
  # Log in to a gateway
  latchctl login --server http://localhost:8080

  # Check who you are
  latchctl identity whoami

  # Store and read a value
  latchctl kv set myns greeting hello
  latchctl kv get myns greeting`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Sync global flags to cmdutil so subcommands can access them
		cmdutil.Flags.ServerURL = flagServer
		cmdutil.Flags.APIKey = flagAPIKey
		cmdutil.Flags.Output = flagOutput
		cmdutil.Flags.NoColor = flagNoColor
		cmdutil.Flags.Verbose = flagVerbose
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagServer, "server", "", "Gateway URL (overrides current context)")
	rootCmd.PersistentFlags().StringVar(&flagAPIKey, "api-key", "", "API key (overrides current context)")
	rootCmd.PersistentFlags().StringVarP(&flagOutput, "output", "o", "table", "Output format (table|json|yaml)")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Verbose output")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(contextcmd.Cmd)
	rootCmd.AddCommand(identity.Cmd)
	rootCmd.AddCommand(kv.Cmd)
	rootCmd.AddCommand(channel.Cmd)
	rootCmd.AddCommand(token.Cmd)
	rootCmd.AddCommand(short.Cmd)
	rootCmd.AddCommand(blob.Cmd)

	rootCmd.CompletionOptions.DisableDefaultCmd = false
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// GetRootCmd returns the root command for documentation generation.
func GetRootCmd() *cobra.Command {
	return rootCmd
}

// PrintErr prints an error message to stderr.
func PrintErr(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
}
