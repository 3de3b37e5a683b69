package types_test

import (
	"testing"

	"github.com/corytodd/picoc/internal/strtab"
	"github.com/corytodd/picoc/internal/types"
	"github.com/stretchr/testify/require"
)

func newRegistry() (*types.Registry, *strtab.Table) {
	st := strtab.New()
	return types.NewRegistry(st), st
}

func TestBaseTypeSizes(t *testing.T) {
	r, _ := newRegistry()
	require.Equal(t, 4, r.Int.Size)
	require.Equal(t, 1, r.Char.Size)
	require.Equal(t, 8, r.Long.Size)
	require.Equal(t, 0, r.Void.Size)
}

func TestPointerToIsCanonical(t *testing.T) {
	r, _ := newRegistry()
	p1 := r.PointerTo(r.Int)
	p2 := r.PointerTo(r.Int)
	require.Same(t, p1, p2, "repeat PointerTo(int) must return the same node")
	require.Equal(t, types.TypePointer, p1.Base)
}

func TestArrayOfIsCanonicalPerLength(t *testing.T) {
	r, _ := newRegistry()
	a5 := r.ArrayOf(r.Char, 5)
	a5again := r.ArrayOf(r.Char, 5)
	a10 := r.ArrayOf(r.Char, 10)

	require.Same(t, a5, a5again)
	require.NotSame(t, a5, a10)
	require.Equal(t, 5, a5.ArraySize)
}

func TestGetMatchingRejectsDuplicateNamedType(t *testing.T) {
	r, st := newRegistry()
	name := st.Register("mystruct")

	_, err := r.GetMatching(r.Uber(), types.TypeStruct, 0, name, false)
	require.NoError(t, err)

	_, err = r.GetMatching(r.Uber(), types.TypeStruct, 0, name, false)
	require.Error(t, err)
}

func TestGetMatchingAllowsDuplicatesWhenRequested(t *testing.T) {
	r, st := newRegistry()
	name := st.Register("mystruct")

	first, err := r.GetMatching(r.Uber(), types.TypeStruct, 0, name, true)
	require.NoError(t, err)

	second, err := r.GetMatching(r.Uber(), types.TypeStruct, 0, name, true)
	require.NoError(t, err)
	require.Same(t, first, second)
}

func TestCompleteStructLaysOutPaddedOffsets(t *testing.T) {
	r, st := newRegistry()
	vt := &types.ValueType{Base: types.TypeStruct}

	c := st.Register("c")
	i := st.Register("i")
	order := []*strtab.Symbol{c, i}
	memberTypes := map[*strtab.Symbol]*types.ValueType{
		c: r.Char,
		i: r.Int,
	}

	r.CompleteStruct(vt, true, order, memberTypes)

	require.Equal(t, 0, vt.Members[c].Offset)
	require.Equal(t, 4, vt.Members[i].Offset, "int member should be padded up to its own alignment")
	require.Equal(t, 8, vt.Size)
}

func TestCompleteUnionSharesOffsetZero(t *testing.T) {
	r, st := newRegistry()
	vt := &types.ValueType{Base: types.TypeUnion}

	i := st.Register("i")
	f := st.Register("f")
	order := []*strtab.Symbol{i, f}
	memberTypes := map[*strtab.Symbol]*types.ValueType{
		i: r.Int,
		f: r.FP,
	}

	r.CompleteStruct(vt, false, order, memberTypes)

	require.Equal(t, 0, vt.Members[i].Offset)
	require.Equal(t, 0, vt.Members[f].Offset)
	require.Equal(t, r.FP.Size, vt.Size, "union size should match its widest member")
}

func TestIsForwardDeclaredBeforeCompleteStruct(t *testing.T) {
	vt := &types.ValueType{Base: types.TypeStruct}
	require.True(t, types.IsForwardDeclared(vt))

	vt.Members = map[*strtab.Symbol]*types.Member{}
	require.False(t, types.IsForwardDeclared(vt))
}

func TestIsForwardDeclaredStripsArrayWrapping(t *testing.T) {
	r, _ := newRegistry()
	forward := &types.ValueType{Base: types.TypeStruct}
	arr := r.ArrayOf(forward, 3)
	require.True(t, types.IsForwardDeclared(arr))
}

func TestSizeOfArrayMultipliesElementSize(t *testing.T) {
	r, _ := newRegistry()
	arr := r.ArrayOf(r.Int, 10)
	require.Equal(t, 40, types.SizeOf(arr))
}

func TestIsIntegerNumericAndUnsigned(t *testing.T) {
	require.True(t, types.TypeInt.IsIntegerNumeric())
	require.False(t, types.TypeInt.IsUnsigned())
	require.True(t, types.TypeUnsignedInt.IsIntegerNumeric())
	require.True(t, types.TypeUnsignedInt.IsUnsigned())
	require.False(t, types.TypeFP.IsIntegerNumeric())
}
