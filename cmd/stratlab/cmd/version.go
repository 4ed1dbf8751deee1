package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

const version = "0.1.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("stratlab version %s\n", version)
		fmt.Println("A multi-strategy paper-trading research harness")
		fmt.Println("https://github.com/rustyeddy/stratlab")
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
