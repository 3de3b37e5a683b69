package interp

import (
	"fmt"

	"github.com/corytodd/picoc/internal/errors"
	"github.com/corytodd/picoc/internal/token"
)

// FatalError is raised by ProgramFail and carries the formatted
// message plus the source position it occurred at. picoc uses
// setjmp/longjmp to unwind straight back to the top-level driver loop
// on any fatal condition (a type error, a missing symbol, stack
// exhaustion); Go has no longjmp; panic/recover stands in for it, with
// FatalError as the payload a deferred recover() checks for.
type FatalError struct {
	Pos     token.Position
	Message string

	// Stack is the call stack at the moment of failure, oldest call
	// first, snapshotted from the Interpreter's callStack.
	Stack errors.StackTrace
}

func (e *FatalError) Error() string {
	if e.Pos.Filename == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Pos, e.Message)
}

// ProgramFail formats msg per the given args, records the error on the
// Interpreter (see Failed), and unwinds the current parse/run via
// panic. Recover, deferred at the top of CallMain/Parse, translates
// the panic into an ordinary error return.
func (it *Interpreter) ProgramFail(pos token.Position, format string, args ...any) {
	fe := &FatalError{Pos: pos, Message: fmt.Sprintf(format, args...), Stack: it.snapshotCallStack()}
	it.fail = fe
	panic(fe)
}

// snapshotCallStack copies the live call stack into an independent
// errors.StackTrace, safe to keep after callUserFunc's deferred pops
// unwind the live slice.
func (it *Interpreter) snapshotCallStack() errors.StackTrace {
	if len(it.callStack) == 0 {
		return nil
	}
	st := make(errors.StackTrace, len(it.callStack))
	for i, f := range it.callStack {
		pos := f.pos
		st[i] = errors.NewStackFrame(f.name, f.pos.Filename, &pos)
	}
	return st
}

// exitSignal unwinds the current run the same way a FatalError does,
// but represents a normal exit() call rather than an error: Recover
// swallows it without setting *errp.
type exitSignal struct{ code int }

// Exit is the exit() intrinsic's implementation: record the exit code
// and unwind to the nearest Recover via panic, exactly like
// ProgramFail but without treating it as a failure.
func (it *Interpreter) Exit(code int) {
	it.SetExitCode(code)
	panic(exitSignal{code: code})
}

// Recover is deferred by every public entry point (Parse,
// ParseInteractive, CallMain) to turn a ProgramFail panic into a
// regular error, swallow a clean exit() unwind, and re-panic anything
// else (a genuine bug, not a modelled C fatal error).
func (it *Interpreter) Recover(errp *error) {
	r := recover()
	if r == nil {
		return
	}
	switch e := r.(type) {
	case *FatalError:
		*errp = e
	case exitSignal:
		// clean exit, not an error
	default:
		panic(r)
	}
}
