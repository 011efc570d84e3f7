package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// overridden at build time via -ldflags "-X main.version=..."
var version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the Polychat version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("polychat " + version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
