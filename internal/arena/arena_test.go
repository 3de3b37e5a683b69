package arena_test

import (
	"testing"

	"github.com/corytodd/picoc/internal/arena"
	"github.com/stretchr/testify/require"
)

func TestAllocStackBumpsPointer(t *testing.T) {
	a := arena.New(1024)
	off1, err := a.AllocStack(8)
	require.NoError(t, err)
	require.Equal(t, 0, off1)

	off2, err := a.AllocStack(8)
	require.NoError(t, err)
	require.Equal(t, 8, off2)
}

func TestPopStackRestoresMark(t *testing.T) {
	a := arena.New(1024)
	mark := a.Mark()
	_, err := a.AllocStack(16)
	require.NoError(t, err)
	require.NotEqual(t, mark, a.Mark())

	a.PopStack(mark)
	require.Equal(t, mark, a.Mark())
}

func TestPopStackOutOfOrderPanics(t *testing.T) {
	a := arena.New(1024)
	_, err := a.AllocStack(16)
	require.NoError(t, err)
	mark := a.Mark()
	_, err = a.AllocStack(16)
	require.NoError(t, err)

	a.PopStack(mark)
	require.Panics(t, func() {
		a.PopStack(mark + 8)
	})
}

func TestAllocStackExhaustsIntoHeap(t *testing.T) {
	a := arena.New(16)
	_, err := a.AllocStack(8)
	require.NoError(t, err)
	_, err = a.AllocStack(16)
	require.ErrorIs(t, err, arena.ErrExhausted)
}

func TestAllocHeapCarvesFromHighEnd(t *testing.T) {
	a := arena.New(1024)
	off, err := a.AllocHeap(32)
	require.NoError(t, err)
	require.Equal(t, 1024-32, off)

	off2, err := a.AllocHeap(32)
	require.NoError(t, err)
	require.Equal(t, 1024-64, off2)
}

func TestFreeHeapReusesBlockViaFreeList(t *testing.T) {
	a := arena.New(1024)
	off, err := a.AllocHeap(32)
	require.NoError(t, err)

	a.FreeHeap(off, 32)

	off2, err := a.AllocHeap(32)
	require.NoError(t, err)
	require.Equal(t, off, off2, "freed block should be recycled before carving new space")
}

func TestFreeHeapSplitsOversizedBlock(t *testing.T) {
	a := arena.New(1024)
	off, err := a.AllocHeap(64)
	require.NoError(t, err)
	a.FreeHeap(off, 64)

	small, err := a.AllocHeap(16)
	require.NoError(t, err)
	require.Equal(t, off, small)

	// remaining 48 bytes of the freed block should still be reusable
	rest, err := a.AllocHeap(16)
	require.NoError(t, err)
	require.Equal(t, off+16, rest)
}

func TestAllocHeapExhaustsWhenStackCollides(t *testing.T) {
	a := arena.New(16)
	_, err := a.AllocHeap(8)
	require.NoError(t, err)
	_, err = a.AllocHeap(16)
	require.ErrorIs(t, err, arena.ErrExhausted)
}

func TestBytesExposesBackingBuffer(t *testing.T) {
	a := arena.New(64)
	require.Len(t, a.Bytes(), 64)
	require.Equal(t, 64, a.Size())
}
