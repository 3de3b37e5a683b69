// Package types implements the canonical ValueType tree.
// GetMatching, struct/union layout, and the base-type table are ported
// directly from picoc_type.c (TypeAdd, TypeGetMatching, TypeInit,
// TypeParseStruct's member-layout loop).
package types

import (
	"fmt"
	"unsafe"

	"github.com/corytodd/picoc/internal/strtab"
)

// Base identifies the base kind of a ValueType node, mirroring
// picoc's enum BaseType.
type Base int

const (
	TypeVoid Base = iota
	TypeInt
	TypeShort
	TypeChar
	TypeLong
	TypeUnsignedInt
	TypeUnsignedShort
	TypeUnsignedChar
	TypeUnsignedLong
	TypeFP
	TypeFunction
	TypeMacro
	TypePointer
	TypeArray
	TypeStruct
	TypeUnion
	TypeEnum
	TypeGotoLabel
	TypeType // the type of a typedef/type-name value itself
)

func (b Base) String() string {
	names := [...]string{
		"void", "int", "short", "char", "long", "unsigned int", "unsigned short",
		"unsigned char", "unsigned long", "double", "function", "macro",
		"pointer", "array", "struct", "union", "enum", "goto-label", "type",
	}
	if int(b) < len(names) {
		return names[b]
	}
	return fmt.Sprintf("Base(%d)", int(b))
}

// IsIntegerNumeric reports whether b is one of the integer base kinds
// (IS_INTEGER_NUMERIC_TYPE in picoc_type.c).
func (b Base) IsIntegerNumeric() bool {
	switch b {
	case TypeInt, TypeShort, TypeChar, TypeLong,
		TypeUnsignedInt, TypeUnsignedShort, TypeUnsignedChar, TypeUnsignedLong:
		return true
	}
	return false
}

// IsUnsigned reports whether b is one of the unsigned integer kinds.
func (b Base) IsUnsigned() bool {
	switch b {
	case TypeUnsignedInt, TypeUnsignedShort, TypeUnsignedChar, TypeUnsignedLong:
		return true
	}
	return false
}

// Member describes one field of a struct/union/enum member table.
type Member struct {
	Type   *ValueType
	Offset int // byte offset within the struct; always 0 for a union member
}

// ValueType is a node in the canonical type tree. Nodes
// are created once and never mutated except to complete a forward
// struct/union declaration in place (Members transitions nil -> non-nil).
type ValueType struct {
	Base       Base
	Size       int
	Align      int
	FromType   *ValueType // element/pointee type for Pointer/Array; nil otherwise
	ArraySize  int
	Identifier *strtab.Symbol

	// Struct/union/enum member table, keyed by interned member name.
	// nil means "forward declared, not yet completed".
	Members map[*strtab.Symbol]*Member
	Order   []*strtab.Symbol // declaration order, for layout and printing

	derived []*ValueType // TypeAdd's DerivedTypeList, hung off the parent
}

// Registry owns the whole canonical type tree and the well-known base
// types, mirroring Picoc's UberType + named base-type fields.
type Registry struct {
	strtab *strtab.Table
	uber   *ValueType

	Int, Short, Char, Long             *ValueType
	UnsignedInt, UnsignedShort         *ValueType
	UnsignedChar, UnsignedLong         *ValueType
	Void, FP, Function, Macro          *ValueType
	GotoLabelType, TypeType            *ValueType
	CharArray, CharPtr, CharPtrPtr     *ValueType
	VoidPtr                            *ValueType

	pointerAlign int
	intAlign     int
}

// alignOf measures a base type's natural alignment the way
// TypeInit does: via the offset of a second field placed after a
// leading char in a padding struct. Go does not expose this as a
// runtime computation for arbitrary types the way C's address-of
// does, so it is derived from unsafe.Alignof on a same-shaped value,
// which yields the identical platform alignment.
func alignOf[T any]() int {
	var v T
	return int(unsafe.Alignof(v))
}

// NewRegistry builds the base type table (TypeInit).
func NewRegistry(st *strtab.Table) *Registry {
	r := &Registry{strtab: st, uber: &ValueType{}}
	r.intAlign = alignOf[int32]()
	r.pointerAlign = alignOf[uintptr]()

	add := func(base Base, size, align int) *ValueType {
		vt := &ValueType{Base: base, Size: size, Align: align, Identifier: st.Empty()}
		vt.derived = nil
		r.uber.derived = append(r.uber.derived, vt)
		return vt
	}

	r.Int = add(TypeInt, 4, r.intAlign)
	r.Short = add(TypeShort, 2, alignOf[int16]())
	r.Char = add(TypeChar, 1, alignOf[int8]())
	r.Long = add(TypeLong, 8, alignOf[int64]())
	r.UnsignedInt = add(TypeUnsignedInt, 4, r.intAlign)
	r.UnsignedShort = add(TypeUnsignedShort, 2, alignOf[int16]())
	r.UnsignedLong = add(TypeUnsignedLong, 8, alignOf[int64]())
	r.UnsignedChar = add(TypeUnsignedChar, 1, alignOf[int8]())
	r.Void = add(TypeVoid, 0, 1)
	r.Function = add(TypeFunction, 4, r.intAlign)
	r.Macro = add(TypeMacro, 4, r.intAlign)
	r.GotoLabelType = add(TypeGotoLabel, 0, 1)
	r.FP = add(TypeFP, 8, alignOf[float64]())
	r.TypeType = add(Type_Type(), 8, alignOf[float64]())

	r.CharArray = r.newDerived(r.Char, TypeArray, 0, st.Empty())
	r.CharPtr = r.newDerived(r.Char, TypePointer, 0, st.Empty())
	r.CharPtrPtr = r.newDerived(r.CharPtr, TypePointer, 0, st.Empty())
	r.VoidPtr = r.newDerived(r.Void, TypePointer, 0, st.Empty())

	return r
}

// Type_Type exists only to spell TypeType's Base constant without
// shadowing the Registry field name of the same spelling.
func Type_Type() Base { return TypeType }

// newDerived creates a new derived node unconditionally (TypeAdd).
func (r *Registry) newDerived(parent *ValueType, base Base, arraySize int, ident *strtab.Symbol) *ValueType {
	size, align := r.sizeAlignFor(parent, base, arraySize)
	vt := &ValueType{
		Base: base, FromType: parent, ArraySize: arraySize, Identifier: ident,
		Size: size, Align: align,
	}
	parent.derived = append(parent.derived, vt)
	return vt
}

func (r *Registry) sizeAlignFor(parent *ValueType, base Base, arraySize int) (size, align int) {
	switch base {
	case TypePointer:
		return int(unsafe.Sizeof(uintptr(0))), r.pointerAlign
	case TypeArray:
		return arraySize * parent.Size, parent.Align
	case TypeEnum:
		return 4, r.intAlign
	default:
		return 0, 0 // struct/union grow as members are added
	}
}

// GetMatching implements TypeGetMatching: find or construct the
// derived type matching (Base, ArraySize, Identifier) under parent.
// If a match exists and allowDuplicates is false, it is a "data type
// ... is already defined" error (reported by the caller, which has
// the ParseState needed to format the fatal message).
func (r *Registry) GetMatching(parent *ValueType, base Base, arraySize int, ident *strtab.Symbol, allowDuplicates bool) (*ValueType, error) {
	for _, d := range parent.derived {
		if d.Base == base && d.ArraySize == arraySize && d.Identifier == ident {
			if allowDuplicates {
				return d, nil
			}
			return nil, fmt.Errorf("data type '%s' is already defined", ident.Name)
		}
	}
	return r.newDerived(parent, base, arraySize, ident), nil
}

// Uber returns the root of the canonical type tree (struct/union/enum
// declarations derive from this, exactly as picoc derives them from
// &pc->UberType).
func (r *Registry) Uber() *ValueType { return r.uber }

// PointerTo returns (creating if needed) the canonical pointer-to-elem type.
func (r *Registry) PointerTo(elem *ValueType) *ValueType {
	vt, _ := r.GetMatching(elem, TypePointer, 0, r.strtab.Empty(), true)
	return vt
}

// ArrayOf returns (creating if needed) the canonical array-of-elem type
// with the given length (0 meaning "unsized").
func (r *Registry) ArrayOf(elem *ValueType, length int) *ValueType {
	vt, _ := r.GetMatching(elem, TypeArray, length, r.strtab.Empty(), true)
	return vt
}

// CompleteStruct lays out member offsets and finalizes Size/Align,
// mirroring TypeParseStruct's member-layout loop: each member is
// padded up to its own alignment before being placed (structs), or
// all start at offset 0 and the union grows to the widest member
// (unions); the whole type's size is finally rounded up to its own
// alignment.
func (r *Registry) CompleteStruct(vt *ValueType, isStruct bool, order []*strtab.Symbol, memberTypes map[*strtab.Symbol]*ValueType) {
	vt.Members = make(map[*strtab.Symbol]*Member, len(order))
	vt.Order = order
	size := 0
	align := 1

	for _, name := range order {
		mt := memberTypes[name]
		if mt.Align > align {
			align = mt.Align
		}
		var offset int
		if isStruct {
			if size&(mt.Align-1) != 0 {
				size += mt.Align - (size & (mt.Align - 1))
			}
			offset = size
			size += mt.Size
		} else {
			offset = 0
			if mt.Size > size {
				size = mt.Size
			}
		}
		vt.Members[name] = &Member{Type: mt, Offset: offset}
	}

	if size&(align-1) != 0 {
		size += align - (size & (align - 1))
	}
	vt.Size = size
	vt.Align = align
}

// IsForwardDeclared reports whether typ (after stripping any array
// wrapping) is a struct/union placeholder with no completed member
// table yet (TypeIsForwardDeclared).
func IsForwardDeclared(typ *ValueType) bool {
	for typ.Base == TypeArray {
		typ = typ.FromType
	}
	return (typ.Base == TypeStruct || typ.Base == TypeUnion) && typ.Members == nil
}

// SizeOf returns the storage size a Value of this type occupies,
// matching TypeSizeValue's "compact" vs "extended" distinction: a
// plain load of an integer-numeric type takes its natural size; the
// "extra room for type extension" padding TypeStackSizeValue grants
// is not needed in this Go port because stack slots are already
// arena-aligned by internal/arena.
func SizeOf(typ *ValueType) int {
	if typ.Base != TypeArray {
		return typ.Size
	}
	return typ.FromType.Size * typ.ArraySize
}
