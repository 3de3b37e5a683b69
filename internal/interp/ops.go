package interp

import (
	"github.com/corytodd/picoc/internal/token"
	"github.com/corytodd/picoc/internal/types"
)

// newInt materializes a transient int-typed Value on the expression
// stack (stack-allocated scratch storage, reclaimed when callUserFunc
// pops the enclosing call's stack mark).
func (it *Interpreter) newInt(n int64, typ *types.ValueType) *Value {
	v := it.newScratch(typ)
	it.WriteInt(v, n)
	return v
}

func (it *Interpreter) newFloat(f float64) *Value {
	v := it.newScratch(it.Types.FP)
	it.WriteFloat(v, f)
	return v
}

func (it *Interpreter) newScratch(typ *types.ValueType) *Value {
	addr, err := it.arena.AllocStack(8)
	if err != nil {
		it.ProgramFail(token.Position{}, "out of stack space")
	}
	return &Value{Typ: typ, Addr: addr}
}

func (it *Interpreter) boolValue(b bool) *Value {
	if b {
		return it.newInt(1, it.Types.Int)
	}
	return it.newInt(0, it.Types.Int)
}

// newStringLiteral allocates a NUL-terminated char array on the heap
// and returns a char* Value pointing at it (string literals live for
// the life of the run, like picoc's static literal table).
func (it *Interpreter) newStringLiteral(s string) *Value {
	addr, err := it.arena.AllocHeap(len(s) + 1)
	if err != nil {
		it.ProgramFail(token.Position{}, "out of memory")
	}
	buf := it.arena.Bytes()
	copy(buf[addr:], s)
	buf[addr+len(s)] = 0
	return it.newInt(int64(addr), it.Types.CharPtr)
}

func (it *Interpreter) truthy(v *Value) bool {
	if isFloating(v.Typ) {
		return it.ReadFloat(v) != 0
	}
	return it.ReadInt(v) != 0
}

// store copies src's value into dst's storage, narrowing/widening and
// converting between integer and floating representations as needed
// (the implicit conversion picoc's assignment performs).
func (it *Interpreter) store(dst, src *Value) {
	if isFloating(dst.Typ) {
		if isFloating(src.Typ) {
			it.WriteFloat(dst, it.ReadFloat(src))
		} else {
			it.WriteFloat(dst, float64(it.ReadInt(src)))
		}
		return
	}
	if isFloating(src.Typ) {
		it.WriteInt(dst, int64(it.ReadFloat(src)))
		return
	}
	it.WriteInt(dst, it.ReadInt(src))
}

func (it *Interpreter) cast(v *Value, typ *types.ValueType) *Value {
	r := it.newScratch(typ)
	it.store(r, v)
	return r
}

// binaryOp evaluates lhs OP rhs, handling pointer arithmetic (pointer
// +/- integer scales by the pointee size, pointer - pointer divides
// by it) ahead of the plain numeric-coercion rule that applies to
// every other combination.
func (it *Interpreter) binaryOp(op token.Kind, lhs, rhs *Value, pos token.Position) (*Value, error) {
	if lhs.Typ.Base == types.TypePointer || lhs.Typ.Base == types.TypeArray {
		return it.pointerOp(op, lhs, rhs, pos)
	}
	if rhs.Typ.Base == types.TypePointer && op == token.PLUS {
		return it.pointerOp(op, rhs, lhs, pos)
	}

	if isFloating(lhs.Typ) || isFloating(rhs.Typ) {
		a, b := it.ReadFloat(lhs), it.ReadFloat(rhs)
		if !isFloating(lhs.Typ) {
			a = float64(it.ReadInt(lhs))
		}
		if !isFloating(rhs.Typ) {
			b = float64(it.ReadInt(rhs))
		}
		switch op {
		case token.PLUS:
			return it.newFloat(a + b), nil
		case token.MINUS:
			return it.newFloat(a - b), nil
		case token.ASTERISK:
			return it.newFloat(a * b), nil
		case token.SLASH:
			if b == 0 {
				return nil, &FatalError{Pos: pos, Message: "division by zero"}
			}
			return it.newFloat(a / b), nil
		case token.EQ:
			return it.boolValue(a == b), nil
		case token.NE:
			return it.boolValue(a != b), nil
		case token.LT:
			return it.boolValue(a < b), nil
		case token.LE:
			return it.boolValue(a <= b), nil
		case token.GT:
			return it.boolValue(a > b), nil
		case token.GE:
			return it.boolValue(a >= b), nil
		}
		return nil, &FatalError{Pos: pos, Message: "invalid operator for floating-point values"}
	}

	a, b := it.ReadInt(lhs), it.ReadInt(rhs)
	resultType := widerIntType(it, lhs.Typ, rhs.Typ)
	switch op {
	case token.PLUS:
		return it.newInt(a+b, resultType), nil
	case token.MINUS:
		return it.newInt(a-b, resultType), nil
	case token.ASTERISK:
		return it.newInt(a*b, resultType), nil
	case token.SLASH:
		if b == 0 {
			return nil, &FatalError{Pos: pos, Message: "division by zero"}
		}
		return it.newInt(a/b, resultType), nil
	case token.PERCENT:
		if b == 0 {
			return nil, &FatalError{Pos: pos, Message: "division by zero"}
		}
		return it.newInt(a%b, resultType), nil
	case token.AMPERSAND:
		return it.newInt(a&b, resultType), nil
	case token.PIPE:
		return it.newInt(a|b, resultType), nil
	case token.CARET:
		return it.newInt(a^b, resultType), nil
	case token.SHL:
		return it.newInt(a<<uint(b), resultType), nil
	case token.SHR:
		// arithmetic right shift: Go's native >> on a signed int64
		// already sign-extends, matching this interpreter's choice to
		// use the host's native shift semantics rather than emulate a
		// logical shift for unsigned operands.
		return it.newInt(a>>uint(b), resultType), nil
	case token.EQ:
		return it.boolValue(a == b), nil
	case token.NE:
		return it.boolValue(a != b), nil
	case token.LT:
		return it.boolValue(a < b), nil
	case token.LE:
		return it.boolValue(a <= b), nil
	case token.GT:
		return it.boolValue(a > b), nil
	case token.GE:
		return it.boolValue(a >= b), nil
	}
	return nil, &FatalError{Pos: pos, Message: "unsupported operator"}
}

func widerIntType(it *Interpreter, a, b *types.ValueType) *types.ValueType {
	if a.Size >= b.Size {
		if a.Size >= it.Types.Int.Size {
			return a
		}
		return it.Types.Int
	}
	if b.Size >= it.Types.Int.Size {
		return b
	}
	return it.Types.Int
}

func (it *Interpreter) pointerOp(op token.Kind, ptr, rhs *Value, pos token.Position) (*Value, error) {
	elemType := ptr.Typ.FromType
	elemSize := elemType.Size
	if elemSize == 0 {
		elemSize = 1
	}
	base := it.ReadInt(ptr)
	if !(ptr.Typ.Base == types.TypeArray) {
		// arrays decay to a pointer to their first element for arithmetic
	} else {
		base = int64(ptr.Addr)
	}

	if rhs.Typ.Base == types.TypePointer || rhs.Typ.Base == types.TypeArray {
		if op != token.MINUS {
			return nil, &FatalError{Pos: pos, Message: "invalid pointer operation"}
		}
		var otherBase int64
		if rhs.Typ.Base == types.TypeArray {
			otherBase = int64(rhs.Addr)
		} else {
			otherBase = it.ReadInt(rhs)
		}
		diff := (base - otherBase) / int64(elemSize)
		return it.newInt(diff, it.Types.Long), nil
	}

	n := it.ReadInt(rhs) * int64(elemSize)
	var result int64
	switch op {
	case token.PLUS:
		result = base + n
	case token.MINUS:
		result = base - n
	default:
		return nil, &FatalError{Pos: pos, Message: "invalid pointer operation"}
	}
	return it.newInt(result, it.Types.PointerTo(elemType)), nil
}

// deref dereferences a pointer Value, returning an lvalue bound to the
// pointee's storage.
func (it *Interpreter) deref(v *Value, pos token.Position) (*Value, error) {
	if v.Typ.Base != types.TypePointer && v.Typ.Base != types.TypeArray {
		return nil, &FatalError{Pos: pos, Message: "can't dereference a non-pointer value"}
	}
	addr := it.ReadAddr(v)
	if v.Typ.Base == types.TypeArray {
		addr = v.Addr
	}
	return &Value{Typ: v.Typ.FromType, Addr: addr, Flags: FlagIsLValue | FlagAbsoluteAddress, LValueFrom: v}, nil
}

// index evaluates base[idx] as *(base + idx).
func (it *Interpreter) index(base, idx *Value, pos token.Position) (*Value, error) {
	sum, err := it.pointerOp(token.PLUS, base, idx, pos)
	if err != nil {
		return nil, err
	}
	return it.deref(sum, pos)
}

// member projects a struct/union field, following one pointer hop
// first when accessed via ->.
func (it *Interpreter) member(base *Value, name string, arrow bool, pos token.Position) (*Value, error) {
	st := base
	if arrow {
		d, err := it.deref(base, pos)
		if err != nil {
			return nil, err
		}
		st = d
	}
	typ := st.Typ
	if typ.Members == nil {
		return nil, &FatalError{Pos: pos, Message: "not a struct or union value"}
	}
	sym := it.Str.Register(name)
	m, ok := typ.Members[sym]
	if !ok {
		return nil, &FatalError{Pos: pos, Message: "no member called '" + name + "'"}
	}
	return &Value{Typ: m.Type, Addr: st.Addr + m.Offset, Flags: FlagIsLValue | (st.Flags & (FlagOnStack | FlagAbsoluteAddress)), LValueFrom: st}, nil
}

// call invokes fnVal (must wrap a *FuncDef) with the given evaluated
// arguments, either through its native intrinsic or by re-parsing its
// stored body token cursor against a fresh stack frame.
func (it *Interpreter) call(fnVal *Value, args []*Value, pos token.Position) (*Value, error) {
	fn := fnVal.Func
	if fn == nil {
		return nil, &FatalError{Pos: pos, Message: "called object is not a function"}
	}
	if fn.Intrinsic != nil {
		return fn.Intrinsic(it, args), nil
	}
	if fn.Body == nil {
		return nil, &FatalError{Pos: pos, Message: "'" + fn.Name.Name + "' has no definition"}
	}
	return it.callUserFunc(fn, args, pos)
}
