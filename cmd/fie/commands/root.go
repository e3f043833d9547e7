package commands

import (
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "fie",
	Short: "FIE - technical signal and advisory engine",
	Long: `Financial Intelligence Engine CLI

Computes daily technical signals for the advisory book, ranks sector
relative strength and synthesizes per-client recommendations from fund
manager directives.

Usage:
  go run ./cmd/fie [command]

Examples:
  go run ./cmd/fie run
  go run ./cmd/fie analyze NSE:INFY
  go run ./cmd/fie sectors
  go run ./cmd/fie api`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}
