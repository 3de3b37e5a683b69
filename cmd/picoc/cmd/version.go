package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display detailed version information including commit hash and build date.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("picoc version %s\n", Version)
		fmt.Printf("Git Commit: %s\n", GitCommit)
		fmt.Printf("Build Date: %s\n", BuildDate)
	},
}

var copyrightCmd = &cobra.Command{
	Use:   "copyright",
	Short: "Print copyright information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("picoc - a small C interpreter")
		fmt.Println("Distributed under a permissive license; see LICENSE for details.")
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(copyrightCmd)
}
