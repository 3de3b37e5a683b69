package interp

import (
	"io"

	"github.com/corytodd/picoc/internal/symtab"
	"github.com/corytodd/picoc/internal/types"
)

// The methods in this file are the surface internal/stdlib (and any
// other native-function provider) is meant to call from inside a
// LibraryFunc: arena access and Value construction that would
// otherwise require reaching into unexported Interpreter fields.

// Bytes exposes the raw arena backing store, for native functions that
// need to read/write a C string or buffer directly (strcpy, memcpy,
// fgets and friends).
func (it *Interpreter) Bytes() []byte { return it.arena.Bytes() }

// Stdout, Stdin and Stderr return the interpreter's IO triple.
func (it *Interpreter) Stdout() io.Writer { return it.IO.Stdout }
func (it *Interpreter) Stdin() io.Reader  { return it.IO.Stdin }
func (it *Interpreter) Stderr() io.Writer { return it.IO.Stderr }

// NewInt is the exported form of newInt, for native functions
// constructing a return Value.
func (it *Interpreter) NewInt(n int64, typ *types.ValueType) *Value { return it.newInt(n, typ) }

// NewFloat is the exported form of newFloat.
func (it *Interpreter) NewFloat(f float64) *Value { return it.newFloat(f) }

// NewCString is the exported form of newStringLiteral, heap-allocating
// a NUL-terminated copy of s and returning a char* to it.
func (it *Interpreter) NewCString(s string) *Value { return it.newStringLiteral(s) }

// DeclPosFor builds a DeclPos attributing a binding to a given library
// header name, for library Setup hooks that define extra globals
// outside the plain (prototype | constant) registration lists.
func (it *Interpreter) DeclPosFor(file string) symtab.DeclPos {
	return symtab.DeclPos{File: file}
}

// AllocCBuffer reserves n bytes on the heap and returns a char* to the
// start, for native functions like malloc that hand back raw storage.
func (it *Interpreter) AllocCBuffer(n int) (*Value, error) {
	if n < 1 {
		n = 1
	}
	addr, err := it.arena.AllocHeap(n)
	if err != nil {
		return nil, err
	}
	return it.newInt(int64(addr), it.Types.CharPtr), nil
}
