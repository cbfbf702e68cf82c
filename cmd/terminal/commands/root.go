package commands

import (
	"github.com/spf13/cobra"
)

var verbose bool

// rootCmd is the base command when called without subcommands.
var rootCmd = &cobra.Command{
	Use:   "terminal",
	Short: "Alpha Terminal - swing-signal vault and review API",
	Long: `Alpha Terminal CLI

Serves scanner-produced swing signals through a tiered retrieval API
and collects human review labels.

Usage:
  go run ./cmd/terminal [command]

Examples:
  go run ./cmd/terminal api
  go run ./cmd/terminal ingest output/full_scan_payload.json
  go run ./cmd/terminal scheduler start
  go run ./cmd/terminal status`,
}

// Execute runs the root command. Called once from main.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
