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
		fmt.Printf("exchange version %s\n", version)
		fmt.Println("A miniature stock exchange with a concurrent ledger engine")
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
