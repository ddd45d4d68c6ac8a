package kv

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/latchhq/latch/cmd/latchctl/cmdutil"
	"github.com/latchhq/latch/internal/cli/output"
)

var namespacesCmd = &cobra.Command{
	Use:   "namespaces",
	Short: "List accessible namespaces",
	Long: `List the namespaces the current identity can access.

Admins see all namespaces.

Examples:
  latchctl kv namespaces
  latchctl kv namespaces -o json`,
	RunE: runNamespaces,
}

func runNamespaces(cmd *cobra.Command, args []string) error {
	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	namespaces, err := client.KVNamespaces()
	if err != nil {
		return fmt.Errorf("failed to list namespaces: %w", err)
	}

	format, err := cmdutil.GetOutputFormatParsed()
	if err != nil {
		return err
	}

	switch format {
	case output.FormatJSON:
		return output.PrintJSON(os.Stdout, namespaces)
	case output.FormatYAML:
		return output.PrintYAML(os.Stdout, namespaces)
	}

	if len(namespaces) == 0 {
		fmt.Println("No namespaces found.")
		return nil
	}
	for _, ns := range namespaces {
		fmt.Println(ns)
	}

	return nil
}
