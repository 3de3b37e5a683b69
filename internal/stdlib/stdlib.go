package stdlib

import (
	"strconv"

	"github.com/corytodd/picoc/internal/interp"
)

func stdlibLibrary() *interp.Library {
	return &interp.Library{
		Name: "stdlib.h",
		Functions: []interp.LibraryFunc{
			{Prototype: "void *malloc(int size)", Native: mallocFn},
			{Prototype: "void free(void *ptr)", Native: freeFn},
			{Prototype: "void exit(int code)", Native: exitFn},
			{Prototype: "int atoi(char *s)", Native: atoiFn},
			{Prototype: "double atof(char *s)", Native: atofFn},
			{Prototype: "int abs(int n)", Native: absFn},
		},
	}
}

func mallocFn(it *interp.Interpreter, args []*interp.Value) *interp.Value {
	size := int(it.ReadInt(args[0]))
	v, err := it.AllocCBuffer(size)
	if err != nil {
		return it.NewInt(0, it.Types.VoidPtr)
	}
	return v
}

func freeFn(it *interp.Interpreter, args []*interp.Value) *interp.Value {
	// The interpreter's arena free-list wants a size, which a bare
	// void* has already lost by the time free() sees it, so free() does
	// nothing: malloc'd blocks stay allocated until Cleanup discards
	// the whole arena. Releasing storage is the `delete` keyword's job
	// for explicitly-typed pointers.
	return it.NewInt(0, it.Types.Void)
}

func exitFn(it *interp.Interpreter, args []*interp.Value) *interp.Value {
	it.Exit(int(it.ReadInt(args[0])))
	return nil
}

func atoiFn(it *interp.Interpreter, args []*interp.Value) *interp.Value {
	n, _ := strconv.Atoi(cString(it, args[0]))
	return it.NewInt(int64(n), it.Types.Int)
}

func atofFn(it *interp.Interpreter, args []*interp.Value) *interp.Value {
	f, _ := strconv.ParseFloat(cString(it, args[0]), 64)
	return it.NewFloat(f)
}

func absFn(it *interp.Interpreter, args []*interp.Value) *interp.Value {
	n := it.ReadInt(args[0])
	if n < 0 {
		n = -n
	}
	return it.NewInt(n, it.Types.Int)
}
