// Latchctl is the remote management client for a Latch gateway.
package main

import (
	"fmt"
	"os"

	"github.com/latchhq/latch/cmd/latchctl/commands"
)

// Build information. Populated at build-time via ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.Version = version
	commands.Commit = commit
	commands.Date = date

	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
