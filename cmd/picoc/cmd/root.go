package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// Version information (set by build flags)
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var (
	verbose             bool
	interactiveShortcut bool
)

var rootCmd = &cobra.Command{
	Use:   "picoc",
	Short: "A small C interpreter",
	Long: `picoc runs C source files directly, without a separate compile step.

It supports a practical subset of C: the usual statements and
expressions, structs/unions/enums, pointers and arrays, and a small
standard library (stdio, string, math, stdlib, ctype, errno).`,
	Version: Version,
	RunE: func(cmd *cobra.Command, args []string) error {
		if interactiveShortcut {
			return runInteractive(cmd, args)
		}
		return cmd.Help()
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.Flags().BoolVarP(&interactiveShortcut, "interactive", "i", false, "shortcut for 'picoc interactive'")
}

