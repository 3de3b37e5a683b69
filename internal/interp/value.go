package interp

import (
	"encoding/binary"
	"math"

	"github.com/corytodd/picoc/internal/types"
)

// ValueFlags are the Value flag bits.
type ValueFlags uint8

const (
	FlagOnStack ValueFlags = 1 << iota
	FlagAbsoluteAddress
	FlagOutsideFunction
	FlagIsLValue
)

// Value is a runtime cell: a ValueType plus a byte address into the
// interpreter's arena, plus flags. Stack-backed Values never outlive
// their owning stack frame; heap-backed Values stay allocated until
// Cleanup discards the arena.
type Value struct {
	Typ        *types.ValueType
	Addr       int // byte offset into interp.arena
	Flags      ValueFlags
	LValueFrom *Value // back-pointer to the enclosing lvalue (struct member projections)

	// Func is populated instead of Addr pointing at scalar storage
	// when Typ.Base is TypeFunction.
	Func *FuncDef
}

func (v *Value) onStack() bool     { return v.Flags&FlagOnStack != 0 }
func (v *Value) isLValue() bool    { return v.Flags&FlagIsLValue != 0 }
func (v *Value) absoluteAddr() bool { return v.Flags&FlagAbsoluteAddress != 0 }

// --- typed arena accessors -------------------------------------------------

func (it *Interpreter) bytesAt(addr, n int) []byte {
	buf := it.arena.Bytes()
	return buf[addr : addr+n]
}

// ReadInt reads a Value's scalar payload as a signed 64-bit integer,
// sign- or zero-extending per the value's declared width/signedness
// (numeric values are coerced to their declared width on every read).
func (it *Interpreter) ReadInt(v *Value) int64 {
	b := it.bytesAt(v.Addr, 8)
	raw := int64(binary.LittleEndian.Uint64(b))
	return narrowToWidth(raw, v.Typ)
}

// WriteInt stores n into v's storage, narrowed to v's declared width.
func (it *Interpreter) WriteInt(v *Value, n int64) {
	n = narrowToWidth(n, v.Typ)
	b := it.bytesAt(v.Addr, 8)
	binary.LittleEndian.PutUint64(b, uint64(n))
}

// ReadFloat reads a Value's scalar payload as a float64.
func (it *Interpreter) ReadFloat(v *Value) float64 {
	b := it.bytesAt(v.Addr, 8)
	return math.Float64frombits(binary.LittleEndian.Uint64(b))
}

// WriteFloat stores f into v's storage.
func (it *Interpreter) WriteFloat(v *Value, f float64) {
	b := it.bytesAt(v.Addr, 8)
	binary.LittleEndian.PutUint64(b, math.Float64bits(f))
}

// ReadAddr reads a pointer-valued Value's pointee address.
func (it *Interpreter) ReadAddr(v *Value) int {
	b := it.bytesAt(v.Addr, 8)
	return int(binary.LittleEndian.Uint64(b))
}

// WriteAddr stores a pointer-valued address into v's storage.
func (it *Interpreter) WriteAddr(v *Value, addr int) {
	b := it.bytesAt(v.Addr, 8)
	binary.LittleEndian.PutUint64(b, uint64(addr))
}

// narrowToWidth truncates/extends a wide integer to the byte width
// implied by typ, applying sign-extension for signed types and
// zero-extension for unsigned types: values are re-narrowed to
// the destination lvalue's type on every assignment.
func narrowToWidth(n int64, typ *types.ValueType) int64 {
	signed := !typ.Base.IsUnsigned()
	switch typ.Size {
	case 1:
		if signed {
			return int64(int8(n))
		}
		return int64(uint8(n))
	case 2:
		if signed {
			return int64(int16(n))
		}
		return int64(uint16(n))
	case 4:
		if signed {
			return int64(int32(n))
		}
		return int64(uint32(n))
	default:
		return n
	}
}

// isFloating reports whether typ is the fp base type.
func isFloating(typ *types.ValueType) bool { return typ.Base == types.TypeFP }
