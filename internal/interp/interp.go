// Package interp is the picoc interpreter engine: interpreter state,
// the variable/scope manager, the expression evaluator, the statement
// parser/evaluator, and the fail/longjump escape path, ported from
// picoc's C sources.
package interp

import (
	"io"

	"github.com/corytodd/picoc/internal/arena"
	"github.com/corytodd/picoc/internal/strtab"
	"github.com/corytodd/picoc/internal/symtab"
	"github.com/corytodd/picoc/internal/token"
	"github.com/corytodd/picoc/internal/types"
)

// DefaultStackSize is picoc's default arena size (512 KiB).
const DefaultStackSize = 512 * 1024

// MaxParameters is PICOC_CONFIG_PARAMETER_MAX from the original source,
// restated as a named constant: a fixed parameter cap of 16.
const MaxParameters = 16

// IO is the interpreter's stdout/stdin/stderr triple.
type IO struct {
	Stdout io.Writer
	Stdin  io.Reader
	Stderr io.Writer
}

// FuncDef is a user or native function/macro definition:
// parameter names/types, return type, the body token slice, and an
// optional intrinsic for native library calls.
type FuncDef struct {
	Name       *strtab.Symbol
	ReturnType *types.ValueType
	ParamTypes []*types.ValueType
	ParamNames []*strtab.Symbol
	VarArgs    bool
	IsMacro    bool

	// Body is nil for a prototype (no definition yet) or for a native
	// intrinsic. Otherwise it is a saved cursor into the owning
	// Interpreter's token buffer: this interpreter re-parses a
	// function's body from its saved tokens on every call rather than
	// building and walking an AST.
	Body *TokenCursor

	// Intrinsic, when non-nil, is invoked directly instead of
	// re-parsing Body.
	Intrinsic func(it *Interpreter, args []*Value) *Value
}

// callFrame is one entry in the Interpreter's call stack, tracked
// purely for fatal-error reporting (distinct from StackFrame, which
// holds the actual parameter/return-value storage for a call).
type callFrame struct {
	name string
	pos  token.Position
}

// StackFrame is a call's stack frame: parameters, return slot,
// caller cursor, and a link to the enclosing frame.
type StackFrame struct {
	Func       *FuncDef
	Params     []*Value
	ReturnVal  *Value
	Prev       *StackFrame
	stackMark  int
	scopeID    int
	prevScope  int
}

// Interpreter is the interpreter's root object
// owning every table, the arena, and the top frame.
type Interpreter struct {
	arena  *arena.Arena
	Str    *strtab.Table
	Types  *types.Registry
	Global *symtab.Table
	IO     IO

	TopFrame *StackFrame

	nextScopeID int
	curScope    *scope

	gotoLabel     string
	switchTag     *Value
	switchMatched bool

	includes      []*Library
	includedNames map[string]bool

	// callStack tracks live user function calls for fatal-error stack
	// traces; pushed/popped around callUserFunc.
	callStack []callFrame

	// staticVars holds every static local's persistent storage, keyed
	// by its declaration-site position (staticVarKey in decl.go): once
	// a key is present its Value survives across calls and its
	// initializer is never run again (VariableDefineButIgnoreIdentical).
	staticVars map[string]*Value

	// macros holds every function-like #define's parameter list and
	// replacement-token span, keyed by macro name. Object-like macros
	// are bound directly as global values by runDefine and never appear
	// here.
	macros map[*strtab.Symbol]*macroDef

	exitCode    int
	exitCalled  bool

	// fail is set by ProgramFail immediately before it panics with
	// *FatalError, so a deferred recover() in the driver can report it.
	fail *FatalError
}

// New creates and Initializes an Interpreter with the given arena size
// and IO triple (PicocInitialize).
func New(stackSize int, io IO) *Interpreter {
	if stackSize <= 0 {
		stackSize = DefaultStackSize
	}
	st := strtab.New()
	it := &Interpreter{
		arena:         arena.New(stackSize),
		Str:           st,
		Types:         types.NewRegistry(st),
		Global:        symtab.New(),
		IO:            io,
		includedNames: make(map[string]bool),
		staticVars:    make(map[string]*Value),
		macros:        make(map[*strtab.Symbol]*macroDef),
	}
	return it
}

// Cleanup releases interpreter resources. In this Go port the garbage
// collector owns every allocation reachable from the Interpreter, so
// Cleanup only replaces the arena with a fresh one of the same size
// (dropping its stack and heap contents together) and clears the
// current stack frame.
func (it *Interpreter) Cleanup() {
	it.arena = arena.New(it.arena.Size())
	it.TopFrame = nil
}

// ExitCode returns the value passed to exit() or returned from main,
// or 1 if a fatal error occurred and no explicit exit happened
// .
func (it *Interpreter) ExitCode() int {
	if it.fail != nil {
		return 1
	}
	return it.exitCode
}

// SetExitCode is called by the exit() intrinsic and by CallMain's
// return-value handling.
func (it *Interpreter) SetExitCode(code int) {
	it.exitCode = code
	it.exitCalled = true
}

// Failed reports whether the last run ended via ProgramFail.
func (it *Interpreter) Failed() *FatalError { return it.fail }
