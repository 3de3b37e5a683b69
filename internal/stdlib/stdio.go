// Package stdlib registers picoc's built-in include libraries
// (stdio.h, string.h, math.h, stdlib.h, ctype.h, errno.h) against an
// interp.Interpreter, mirroring picoc's library_*.c files: each header
// is a flat list of (prototype, native function) pairs plus any bare
// constants, registered once via interp.RegisterLibrary and pulled in
// on demand by #include.
package stdlib

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/corytodd/picoc/internal/interp"
)

// RegisterAll registers every library this interpreter ships, without
// including any of them yet (IncludeFile / IncludeAllSystemHeaders
// does that).
func RegisterAll(it *interp.Interpreter) {
	it.RegisterLibrary(stdioLibrary())
	it.RegisterLibrary(stringLibrary())
	it.RegisterLibrary(mathLibrary())
	it.RegisterLibrary(stdlibLibrary())
	it.RegisterLibrary(ctypeLibrary())
	it.RegisterLibrary(errnoLibrary())
}

func cString(it *interp.Interpreter, v *interp.Value) string {
	addr := it.ReadAddr(v)
	buf := it.Bytes()
	end := addr
	for end < len(buf) && buf[end] != 0 {
		end++
	}
	return string(buf[addr:end])
}

func stdioLibrary() *interp.Library {
	return &interp.Library{
		Name: "stdio.h",
		Consts: []interp.LibraryConst{
			{Name: "EOF", Value: -1},
			{Name: "SEEK_SET", Value: 0},
			{Name: "SEEK_CUR", Value: 1},
			{Name: "SEEK_END", Value: 2},
		},
		Functions: []interp.LibraryFunc{
			{Prototype: "int printf(char *fmt)", Native: printfFn},
			{Prototype: "int puts(char *s)", Native: putsFn},
			{Prototype: "int putchar(int c)", Native: putcharFn},
			{Prototype: "int getchar(void)", Native: getcharFn},
		},
	}
}

// printfFn supports the common %d/%s/%c/%f/%x/%% conversions against
// whatever extra arguments were passed, the subset picoc's own
// library_stdio.c implements by hand rather than delegating to libc.
func printfFn(it *interp.Interpreter, args []*interp.Value) *interp.Value {
	if len(args) == 0 {
		return it.NewInt(0, it.Types.Int)
	}
	format := cString(it, args[0])
	out := formatPrintf(it, format, args[1:])
	n, _ := fmt.Fprint(it.Stdout(), out)
	return it.NewInt(int64(n), it.Types.Int)
}

func formatPrintf(it *interp.Interpreter, format string, args []*interp.Value) string {
	var b strings.Builder
	argi := 0
	next := func() *interp.Value {
		if argi < len(args) {
			v := args[argi]
			argi++
			return v
		}
		return nil
	}
	for i := 0; i < len(format); i++ {
		ch := format[i]
		if ch != '%' || i+1 >= len(format) {
			b.WriteByte(ch)
			continue
		}
		i++
		switch format[i] {
		case 'd', 'i':
			if v := next(); v != nil {
				fmt.Fprintf(&b, "%d", it.ReadInt(v))
			}
		case 'u':
			if v := next(); v != nil {
				fmt.Fprintf(&b, "%d", uint64(it.ReadInt(v)))
			}
		case 'x':
			if v := next(); v != nil {
				fmt.Fprintf(&b, "%x", it.ReadInt(v))
			}
		case 'c':
			if v := next(); v != nil {
				b.WriteByte(byte(it.ReadInt(v)))
			}
		case 'f':
			if v := next(); v != nil {
				fmt.Fprintf(&b, "%f", it.ReadFloat(v))
			}
		case 'g':
			if v := next(); v != nil {
				fmt.Fprintf(&b, "%g", it.ReadFloat(v))
			}
		case 'e':
			if v := next(); v != nil {
				fmt.Fprintf(&b, "%e", it.ReadFloat(v))
			}
		case 's':
			if v := next(); v != nil {
				b.WriteString(cString(it, v))
			}
		case '%':
			b.WriteByte('%')
		default:
			b.WriteByte('%')
			b.WriteByte(format[i])
		}
	}
	return b.String()
}

func putsFn(it *interp.Interpreter, args []*interp.Value) *interp.Value {
	s := cString(it, args[0])
	n, _ := fmt.Fprintln(it.Stdout(), s)
	return it.NewInt(int64(n), it.Types.Int)
}

func putcharFn(it *interp.Interpreter, args []*interp.Value) *interp.Value {
	c := byte(it.ReadInt(args[0]))
	it.Stdout().Write([]byte{c})
	return it.NewInt(int64(c), it.Types.Int)
}

func getcharFn(it *interp.Interpreter, args []*interp.Value) *interp.Value {
	r := bufio.NewReader(it.Stdin())
	b, err := r.ReadByte()
	if err != nil {
		return it.NewInt(-1, it.Types.Int)
	}
	return it.NewInt(int64(b), it.Types.Int)
}
