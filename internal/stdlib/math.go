package stdlib

import (
	"math"

	"github.com/corytodd/picoc/internal/interp"
)

func mathLibrary() *interp.Library {
	return &interp.Library{
		Name: "math.h",
		Functions: []interp.LibraryFunc{
			{Prototype: "double sqrt(double x)", Native: unary(math.Sqrt)},
			{Prototype: "double pow(double x, double y)", Native: binary(math.Pow)},
			{Prototype: "double sin(double x)", Native: unary(math.Sin)},
			{Prototype: "double cos(double x)", Native: unary(math.Cos)},
			{Prototype: "double tan(double x)", Native: unary(math.Tan)},
			{Prototype: "double floor(double x)", Native: unary(math.Floor)},
			{Prototype: "double ceil(double x)", Native: unary(math.Ceil)},
			{Prototype: "double fabs(double x)", Native: unary(math.Abs)},
			{Prototype: "double log(double x)", Native: unary(math.Log)},
		},
		Setup: func(it *interp.Interpreter) {
			// M_PI is a double, not an int, so it's bound here instead of
			// through the plain-integer LibraryConst list.
			sym := it.Str.Register("M_PI")
			v := it.NewFloat(math.Pi)
			it.Global.Set(sym, v, it.DeclPosFor("math.h"))
		},
	}
}

func unary(f func(float64) float64) func(*interp.Interpreter, []*interp.Value) *interp.Value {
	return func(it *interp.Interpreter, args []*interp.Value) *interp.Value {
		return it.NewFloat(f(it.ReadFloat(args[0])))
	}
}

func binary(f func(float64, float64) float64) func(*interp.Interpreter, []*interp.Value) *interp.Value {
	return func(it *interp.Interpreter, args []*interp.Value) *interp.Value {
		return it.NewFloat(f(it.ReadFloat(args[0]), it.ReadFloat(args[1])))
	}
}
