package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "exchange",
	Short: "A miniature stock exchange with a concurrent ledger engine",
	Long: `Exchange is a miniature stock exchange written in Go.

It provides:
  - A concurrent ledger engine for accounts, instruments and trades
  - Loans against a fixed per-account limit
  - A periodic random price refresh across all instruments
  - A JSON/HTTP API and a random-trading simulator
  - Write-through trade journaling to SQLite or CSV`,
}

var debug bool

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}
