package main

import (
	"fmt"

	"github.com/spf13/cobra"

	wordflow "github.com/nickigann03/word-flow-app"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of wordflow",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("wordflow version %s\n", wordflow.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
