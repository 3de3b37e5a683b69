package interp

import (
	"encoding/binary"

	"github.com/corytodd/picoc/internal/token"
)

// CallMain looks up the global main() and invokes it with whichever of
// the three fixed startup shapes its declared parameter count matches
// (checkMainSignature in parse.go already rejected anything else at
// definition time):
//
//	main()                               -> called with no arguments
//	main(int argc, char **argv)          -> argv[0] is progName, argv[1:] is args
//	main(int argc, char **argv, char **envp) -> same, envp is an empty list
//
// The returned exitCode is main's return value, or whatever exit() set
// if the program called it instead of returning.
func (it *Interpreter) CallMain(progName string, args []string) (exitCode int, err error) {
	defer it.Recover(&err)
	// Runs before Recover: an exit() unwind skips the returns below, so
	// the code exit() recorded is copied into the named result here.
	defer func() {
		if it.exitCalled {
			exitCode = it.exitCode
		}
	}()

	sym := it.Str.Register("main")
	mainVal, _, ok := it.Global.Get(sym)
	if !ok {
		return 0, &FatalError{Message: "no main() defined"}
	}
	fn, _ := mainVal.(*Value)
	if fn == nil || fn.Func == nil {
		return 0, &FatalError{Message: "main is not a function"}
	}

	pos := token.Position{Filename: progName}
	var callArgs []*Value
	switch len(fn.Func.ParamTypes) {
	case 0:
		// no arguments
	case 2:
		argv := it.buildArgv(progName, args)
		callArgs = []*Value{it.newInt(int64(len(args)+1), it.Types.Int), argv}
	case 3:
		argv := it.buildArgv(progName, args)
		envp := it.buildArgv("", nil)
		callArgs = []*Value{it.newInt(int64(len(args)+1), it.Types.Int), argv, envp}
	default:
		return 0, &FatalError{Message: "main has an unsupported parameter count"}
	}

	result, cerr := it.callUserFunc(fn.Func, callArgs, pos)
	if cerr != nil {
		return 0, cerr
	}
	if it.exitCalled {
		return it.exitCode, nil
	}
	if result != nil {
		it.SetExitCode(int(it.ReadInt(result)))
	}
	return it.exitCode, nil
}

// buildArgv heap-allocates a NUL-terminated char*[] for argv/envp:
// progName (skipped when empty, for envp's empty list) followed by
// args, followed by a NULL terminator entry.
func (it *Interpreter) buildArgv(progName string, args []string) *Value {
	var entries []string
	if progName != "" {
		entries = append(entries, progName)
	}
	entries = append(entries, args...)

	n := len(entries)
	addr, err := it.arena.AllocHeap((n + 1) * 8)
	if err != nil {
		it.ProgramFail(token.Position{}, "out of memory building argv")
	}
	arrType := it.Types.CharPtrPtr

	for i, s := range entries {
		strVal := it.newStringLiteral(s)
		entryAddr := addr + i*8
		binary.LittleEndian.PutUint64(it.bytesAt(entryAddr, 8), uint64(it.ReadAddr(strVal)))
	}
	// NULL terminator
	binary.LittleEndian.PutUint64(it.bytesAt(addr+n*8, 8), 0)

	return it.newInt(int64(addr), arrType)
}
