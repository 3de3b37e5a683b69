package strtab_test

import (
	"testing"

	"github.com/corytodd/picoc/internal/strtab"
	"github.com/stretchr/testify/require"
)

func TestRegisterInternsByPointerIdentity(t *testing.T) {
	tab := strtab.New()
	a := tab.Register("foo")
	b := tab.Register("foo")
	require.True(t, a == b, "repeat registration of the same text must return the same pointer")
}

func TestRegisterDistinctStringsGetDistinctSymbols(t *testing.T) {
	tab := strtab.New()
	a := tab.Register("foo")
	b := tab.Register("bar")
	require.False(t, a == b)
	require.Equal(t, "foo", a.Name)
	require.Equal(t, "bar", b.Name)
}

func TestNewInternsEmptyString(t *testing.T) {
	tab := strtab.New()
	require.Equal(t, 1, tab.Len())
	require.Equal(t, tab.Empty(), tab.Register(""))
}

func TestEmptyIsStableAcrossCalls(t *testing.T) {
	tab := strtab.New()
	require.True(t, tab.Empty() == tab.Empty())
}

func TestLenCountsDistinctStrings(t *testing.T) {
	tab := strtab.New()
	tab.Register("a")
	tab.Register("b")
	tab.Register("a")
	require.Equal(t, 3, tab.Len()) // "" + "a" + "b"
}
