package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "stratlab",
	Short: "A multi-strategy paper-trading research harness",
	Long: `Stratlab replays historical daily prices through independent strategy
agents, each trading against its own simulated brokerage account.

It provides tools for:
  - Backtesting strategy sets over historical price tables
  - Running a live paper-trading loop against current quotes
  - Journaling fills and equity curves to CSV or SQLite
  - Persisting broker state between runs
  - Downloading daily price history

Complete documentation is available at https://github.com/rustyeddy/stratlab`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}
