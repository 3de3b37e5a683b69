package stdlib

import "github.com/corytodd/picoc/internal/interp"

func stringLibrary() *interp.Library {
	return &interp.Library{
		Name: "string.h",
		Functions: []interp.LibraryFunc{
			{Prototype: "int strlen(char *s)", Native: strlenFn},
			{Prototype: "char *strcpy(char *dst, char *src)", Native: strcpyFn},
			{Prototype: "char *strncpy(char *dst, char *src, int n)", Native: strncpyFn},
			{Prototype: "int strcmp(char *a, char *b)", Native: strcmpFn},
			{Prototype: "int strncmp(char *a, char *b, int n)", Native: strncmpFn},
			{Prototype: "char *strcat(char *dst, char *src)", Native: strcatFn},
			{Prototype: "char *strchr(char *s, int c)", Native: strchrFn},
		},
	}
}

func strlenFn(it *interp.Interpreter, args []*interp.Value) *interp.Value {
	s := cString(it, args[0])
	return it.NewInt(int64(len(s)), it.Types.UnsignedLong)
}

func strcpyFn(it *interp.Interpreter, args []*interp.Value) *interp.Value {
	dstAddr := it.ReadAddr(args[0])
	src := cString(it, args[1])
	buf := it.Bytes()
	copy(buf[dstAddr:], src)
	buf[dstAddr+len(src)] = 0
	return args[0]
}

func strncpyFn(it *interp.Interpreter, args []*interp.Value) *interp.Value {
	dstAddr := it.ReadAddr(args[0])
	src := cString(it, args[1])
	n := int(it.ReadInt(args[2]))
	buf := it.Bytes()
	for i := 0; i < n; i++ {
		if i < len(src) {
			buf[dstAddr+i] = src[i]
		} else {
			buf[dstAddr+i] = 0
		}
	}
	return args[0]
}

func strcmpFn(it *interp.Interpreter, args []*interp.Value) *interp.Value {
	a, b := cString(it, args[0]), cString(it, args[1])
	return it.NewInt(int64(compareStrings(a, b)), it.Types.Int)
}

func strncmpFn(it *interp.Interpreter, args []*interp.Value) *interp.Value {
	a, b := cString(it, args[0]), cString(it, args[1])
	n := int(it.ReadInt(args[2]))
	if len(a) > n {
		a = a[:n]
	}
	if len(b) > n {
		b = b[:n]
	}
	return it.NewInt(int64(compareStrings(a, b)), it.Types.Int)
}

func compareStrings(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func strcatFn(it *interp.Interpreter, args []*interp.Value) *interp.Value {
	dstAddr := it.ReadAddr(args[0])
	dst := cString(it, args[0])
	src := cString(it, args[1])
	buf := it.Bytes()
	copy(buf[dstAddr+len(dst):], src)
	buf[dstAddr+len(dst)+len(src)] = 0
	return args[0]
}

func strchrFn(it *interp.Interpreter, args []*interp.Value) *interp.Value {
	addr := it.ReadAddr(args[0])
	target := byte(it.ReadInt(args[1]))
	s := cString(it, args[0])
	for i := 0; i < len(s); i++ {
		if s[i] == target {
			return it.NewInt(int64(addr+i), it.Types.CharPtr)
		}
	}
	return it.NewInt(0, it.Types.CharPtr)
}
