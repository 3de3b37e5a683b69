package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/corytodd/picoc/pkg/picoc"
	"github.com/spf13/cobra"
)

var interactiveCmd = &cobra.Command{
	Use:     "interactive",
	Aliases: []string{"i"},
	Short:   "Start an interactive C REPL",
	Long: `Read C statements and expressions one line at a time, executing
each as it is entered (PicocParseInteractive). Top-level function
definitions are also accepted and become callable for the rest of the
session.`,
	RunE: runInteractive,
}

func init() {
	rootCmd.AddCommand(interactiveCmd)
}

func runInteractive(_ *cobra.Command, _ []string) error {
	rt := picoc.Initialize(picoc.Options{Stdout: os.Stdout, Stdin: os.Stdin, Stderr: os.Stderr})
	defer rt.Cleanup()

	if err := rt.IncludeAllSystemHeaders(); err != nil {
		return fmt.Errorf("failed to register standard library: %w", err)
	}

	fmt.Println("picoc interactive mode. Enter C statements; Ctrl-D to quit.")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("picoc> ")
		if !scanner.Scan() {
			fmt.Println()
			return nil
		}
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		if err := rt.ParseInteractive("<stdin>", line); err != nil {
			fmt.Fprintln(os.Stderr, picoc.FormatError(err, "<stdin>", line, false))
		}
	}
}
