package stdlib

import "github.com/corytodd/picoc/internal/interp"

func ctypeLibrary() *interp.Library {
	return &interp.Library{
		Name: "ctype.h",
		Functions: []interp.LibraryFunc{
			{Prototype: "int isalpha(int c)", Native: predicate(isAlpha)},
			{Prototype: "int isdigit(int c)", Native: predicate(isDigit)},
			{Prototype: "int isspace(int c)", Native: predicate(isSpace)},
			{Prototype: "int isupper(int c)", Native: predicate(isUpper)},
			{Prototype: "int islower(int c)", Native: predicate(isLower)},
			{Prototype: "int toupper(int c)", Native: toUpperFn},
			{Prototype: "int tolower(int c)", Native: toLowerFn},
		},
	}
}

func isAlpha(c byte) bool { return isUpper(c) || isLower(c) }
func isDigit(c byte) bool { return c >= '0' && c <= '9' }
func isSpace(c byte) bool { return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\v' || c == '\f' }
func isUpper(c byte) bool { return c >= 'A' && c <= 'Z' }
func isLower(c byte) bool { return c >= 'a' && c <= 'z' }

func predicate(f func(byte) bool) func(*interp.Interpreter, []*interp.Value) *interp.Value {
	return func(it *interp.Interpreter, args []*interp.Value) *interp.Value {
		c := byte(it.ReadInt(args[0]))
		if f(c) {
			return it.NewInt(1, it.Types.Int)
		}
		return it.NewInt(0, it.Types.Int)
	}
}

func toUpperFn(it *interp.Interpreter, args []*interp.Value) *interp.Value {
	c := byte(it.ReadInt(args[0]))
	if isLower(c) {
		c = c - 'a' + 'A'
	}
	return it.NewInt(int64(c), it.Types.Int)
}

func toLowerFn(it *interp.Interpreter, args []*interp.Value) *interp.Value {
	c := byte(it.ReadInt(args[0]))
	if isUpper(c) {
		c = c - 'A' + 'a'
	}
	return it.NewInt(int64(c), it.Types.Int)
}
