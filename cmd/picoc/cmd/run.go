package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/corytodd/picoc/internal/lexer"
	"github.com/corytodd/picoc/pkg/picoc"
	"github.com/spf13/cobra"
)

var (
	scriptOnly bool
	dumpTokens bool
)

var runCmd = &cobra.Command{
	Use:   "run <file.c> [-- args...]",
	Short: "Run a C source file",
	Long: `Parse and execute a C source file.

Examples:
  # Run a program, calling its main()
  picoc run hello.c

  # Pass arguments through to main()'s argv
  picoc run hello.c -- foo bar

  # Run top-level statements only, without calling main()
  picoc run -s script.c

  # Dump the lexed token stream instead of executing
  picoc run --dump-tokens hello.c`,
	Args: cobra.MinimumNArgs(1),
	RunE: runFile,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolVarP(&scriptOnly, "script", "s", false, "script mode: run top-level statements only, don't call main()")
	runCmd.Flags().BoolVar(&dumpTokens, "dump-tokens", false, "dump the lexed token stream instead of executing")
	runCmd.SilenceErrors = true
	runCmd.SilenceUsage = true
}

// silentError signals that the error has already been reported (with
// source context) directly to stderr; its Error() is empty so nothing
// extra gets printed by cobra or main().
type silentError struct{}

func (silentError) Error() string { return "" }

func runFile(cmd *cobra.Command, args []string) error {
	filename := args[0]
	var progArgs []string
	if d := cmd.Flags().ArgsLenAtDash(); d >= 0 {
		progArgs = args[d:]
	}

	src, err := picoc.PlatformScanFile(filename)
	if err != nil {
		return err
	}

	if dumpTokens {
		return dumpTokenStream(filename, src)
	}

	stackSize := 0
	if v := os.Getenv("STACKSIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			stackSize = n
		} else if verbose {
			fmt.Fprintf(os.Stderr, "ignoring invalid STACKSIZE=%q: %v\n", v, err)
		}
	}

	out := os.Stdout
	if path := os.Getenv("OUTFILE"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to open OUTFILE %s: %w", path, err)
		}
		defer f.Close()
		out = f
	}

	rt := picoc.Initialize(picoc.Options{StackSize: stackSize, Stdout: out, Stdin: os.Stdin, Stderr: os.Stderr})
	defer rt.Cleanup()

	if err := rt.IncludeAllSystemHeaders(); err != nil {
		return fmt.Errorf("failed to register standard library: %w", err)
	}

	if err := rt.Parse(filename, src); err != nil {
		fmt.Fprintln(os.Stderr, picoc.FormatError(err, filename, src, true))
		return silentError{}
	}

	if scriptOnly {
		return nil
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "[running %s]\n", filename)
	}

	exitCode, err := rt.CallMain(filename, progArgs)
	if err != nil {
		fmt.Fprintln(os.Stderr, picoc.FormatError(err, filename, src, true))
		return silentError{}
	}
	if exitCode != 0 {
		os.Exit(exitCode)
	}
	return nil
}

func dumpTokenStream(filename, src string) error {
	src = lexer.StripShebang(src)
	tokens, err := lexer.Lex(filename, src)
	if err != nil {
		return err
	}
	for _, tok := range tokens {
		fmt.Println(tok.String())
	}
	return nil
}
