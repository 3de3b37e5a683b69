package interp

import (
	"fmt"

	"github.com/corytodd/picoc/internal/symtab"
	"github.com/corytodd/picoc/internal/types"
)

// LibraryFunc is one native function entry in an include library:
// a C prototype string (parsed the same way a user declaration would
// be, to derive the parameter/return types) paired with the Go
// function that actually runs.
type LibraryFunc struct {
	Prototype string
	Native    func(it *Interpreter, args []*Value) *Value
}

// LibraryConst is one preprocessor-style constant an include library
// defines (errno's E* codes, stdio's EOF and SEEK_*).
type LibraryConst struct {
	Name  string
	Value int64
}

// Library is an include file's registration: its name ("stdio.h"),
// the native functions it exposes, and any bare constants (errno's
// "header of constants" shape has no functions at all).
type Library struct {
	Name      string
	Functions []LibraryFunc
	Consts    []LibraryConst

	// Setup, if non-nil, runs once when the library is first included
	// (IncludeAllSystemHeaders / IncludeFile), after Functions/Consts
	// have been registered into the global scope.
	Setup func(it *Interpreter)
}

// RegisterLibrary adds a library to the include registry without
// including it yet (IncludeRegister).
func (it *Interpreter) RegisterLibrary(lib *Library) {
	it.includes = append(it.includes, lib)
}

// IncludeFile includes a single registered library by name, defining
// its functions and constants into the global symbol table. Including
// the same library twice is a no-op, mirroring #pragma once style
// dedup on picoc's fixed include list.
func (it *Interpreter) IncludeFile(name string) error {
	if it.includedNames[name] {
		return nil
	}
	var lib *Library
	for _, l := range it.includes {
		if l.Name == name {
			lib = l
			break
		}
	}
	if lib == nil {
		return fmt.Errorf("unknown include file %q", name)
	}
	it.includedNames[name] = true

	pos := symtab.DeclPos{File: name}
	for _, c := range lib.Consts {
		sym := it.Str.Register(c.Name)
		v := it.allocGlobal(it.Types.Int)
		it.WriteInt(v, c.Value)
		it.Global.Set(sym, v, pos)
	}
	for _, fn := range lib.Functions {
		it.defineLibraryFunc(name, fn)
	}
	if lib.Setup != nil {
		lib.Setup(it)
	}
	return nil
}

// allocGlobal reserves heap storage for a global scalar of typ and
// returns an lvalue Value bound to it. Globals live for the whole
// interpreter lifetime, so they are heap-allocated rather than
// stack-allocated and are never freed.
func (it *Interpreter) allocGlobal(typ *types.ValueType) *Value {
	size := typ.Size
	if size < 8 {
		size = 8
	}
	addr, err := it.arena.AllocHeap(size)
	if err != nil {
		panic(&FatalError{Message: "out of memory"})
	}
	return &Value{Typ: typ, Addr: addr, Flags: FlagIsLValue | FlagAbsoluteAddress}
}

// defineLibraryFunc registers one native function as a global FuncDef
// value, parsing its prototype to recover parameter/return types.
func (it *Interpreter) defineLibraryFunc(headerName string, fn LibraryFunc) {
	sig, err := ParseFuncPrototype(it, fn.Prototype)
	if err != nil {
		panic(&FatalError{Message: fmt.Sprintf("bad prototype for %s: %v", fn.Prototype, err)})
	}
	sig.Intrinsic = fn.Native
	v := &Value{Typ: it.Types.Function, Flags: FlagIsLValue, Func: sig}
	it.Global.Set(sig.Name, v, symtab.DeclPos{File: headerName})
}

// IncludeAllSystemHeaders includes every registered library, matching
// PicocIncludeAllSystemHeaders's behavior for the non-interactive
// driver entry point.
func (it *Interpreter) IncludeAllSystemHeaders() error {
	for _, lib := range it.includes {
		if err := it.IncludeFile(lib.Name); err != nil {
			return err
		}
	}
	return nil
}
