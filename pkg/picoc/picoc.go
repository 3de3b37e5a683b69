// Package picoc is the embeddable front door to the interpreter: the
// same surface cmd/picoc's CLI drives, usable directly by other Go
// programs that want to run a C snippet without shelling out.
package picoc

import (
	"fmt"
	"io"
	"os"

	"github.com/corytodd/picoc/internal/errors"
	"github.com/corytodd/picoc/internal/interp"
	"github.com/corytodd/picoc/internal/stdlib"
)

// Runtime is one interpreter instance: arena, type/symbol tables, and
// the registered standard library, ready to Parse source into.
type Runtime struct {
	it *interp.Interpreter
}

// Options configures Initialize.
type Options struct {
	// StackSize is the arena size in bytes; 0 selects
	// interp.DefaultStackSize.
	StackSize int
	Stdout    io.Writer
	Stdin     io.Reader
	Stderr    io.Writer
}

// Initialize creates a Runtime with every standard library header
// registered but not yet included: nothing, stdio.h and stdlib.h
// included, is visible until #include names it or
// IncludeAllSystemHeaders is called.
func Initialize(opts Options) *Runtime {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stdin == nil {
		opts.Stdin = os.Stdin
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	it := interp.New(opts.StackSize, interp.IO{Stdout: opts.Stdout, Stdin: opts.Stdin, Stderr: opts.Stderr})
	stdlib.RegisterAll(it)
	return &Runtime{it: it}
}

// Cleanup releases the runtime's resources. A Runtime must not be used
// after Cleanup.
func (r *Runtime) Cleanup() {
	r.it.Cleanup()
}

// IncludeAllSystemHeaders includes every registered standard library
// header, the non-interactive driver's default.
func (r *Runtime) IncludeAllSystemHeaders() error {
	return r.it.IncludeAllSystemHeaders()
}

// Parse parses and runs the top level of one source file (global
// variables, function definitions/prototypes, typedefs, and any other
// top-level statements). It does not call main().
func (r *Runtime) Parse(filename, src string) error {
	return r.it.Parse(filename, src)
}

// ParseInteractive parses and immediately executes one REPL line.
func (r *Runtime) ParseInteractive(filename, src string) error {
	return r.it.ParseInteractive(filename, src)
}

// PlatformScanFile reads a source file from disk, the one filesystem
// touchpoint CallMain's caller needs before handing text to Parse.
func PlatformScanFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("can't read file %s: %w", path, err)
	}
	return string(data), nil
}

// CallMain looks up main() and calls it with one of the fixed
// argc/argv/envp startup shapes this interpreter supports, matching
// whichever signature main() was declared with:
//
//	main(void)                      -> called with no arguments
//	main(int argc, char **argv)     -> args become argv[1:], argv[0] is progName
//	main(int argc, char **argv, char **envp) -> same, with an empty envp
//
// It returns main's return value as the process exit code.
func (r *Runtime) CallMain(progName string, args []string) (exitCode int, err error) {
	return r.it.CallMain(progName, args)
}

// FormatError renders err with source context (file:line:col header,
// offending line, caret) when it is a *interp.FatalError; any other
// error (e.g. a file-read failure) is returned via its plain Error()
// text unchanged.
func FormatError(err error, filename, src string, color bool) string {
	fe, ok := err.(*interp.FatalError)
	if !ok {
		return err.Error()
	}
	ce := errors.NewCompilerError(fe.Pos, fe.Message, src, filename)
	out := ce.Format(color)
	if len(fe.Stack) > 0 {
		out += "\n" + fe.Stack.String()
	}
	return out
}
