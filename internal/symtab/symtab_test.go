package symtab_test

import (
	"testing"

	"github.com/corytodd/picoc/internal/strtab"
	"github.com/corytodd/picoc/internal/symtab"
	"github.com/stretchr/testify/require"
)

func TestSetAndGetRoundTrip(t *testing.T) {
	st := strtab.New()
	tab := symtab.New()
	key := st.Register("x")

	ok := tab.Set(key, 42, symtab.DeclPos{File: "a.c", Line: 3})
	require.True(t, ok)

	v, pos, ok := tab.Get(key)
	require.True(t, ok)
	require.Equal(t, 42, v)
	require.Equal(t, symtab.DeclPos{File: "a.c", Line: 3}, pos)
}

func TestSetRejectsDuplicateKey(t *testing.T) {
	st := strtab.New()
	tab := symtab.New()
	key := st.Register("x")

	require.True(t, tab.Set(key, 1, symtab.DeclPos{}))
	require.False(t, tab.Set(key, 2, symtab.DeclPos{}))

	v, _, _ := tab.Get(key)
	require.Equal(t, 1, v, "rejected Set must not overwrite the existing value")
}

func TestGetMissingKeyReturnsFalse(t *testing.T) {
	st := strtab.New()
	tab := symtab.New()
	_, _, ok := tab.Get(st.Register("nope"))
	require.False(t, ok)
}

func TestDeleteReturnsValueAndRemoves(t *testing.T) {
	st := strtab.New()
	tab := symtab.New()
	key := st.Register("x")
	tab.Set(key, "hello", symtab.DeclPos{})

	v := tab.Delete(key)
	require.Equal(t, "hello", v)

	_, _, ok := tab.Get(key)
	require.False(t, ok)
}

func TestDeleteMissingKeyReturnsNil(t *testing.T) {
	st := strtab.New()
	tab := symtab.New()
	require.Nil(t, tab.Delete(st.Register("nope")))
}

func TestDeleteScopeRemovesOnlyMatchingScope(t *testing.T) {
	st := strtab.New()
	tab := symtab.New()
	a := st.Register("a")
	b := st.Register("b")
	c := st.Register("c")

	tab.SetScoped(a, 1, symtab.DeclPos{}, 1)
	tab.SetScoped(b, 2, symtab.DeclPos{}, 1)
	tab.SetScoped(c, 3, symtab.DeclPos{}, 2)

	removed := tab.DeleteScope(1)
	require.ElementsMatch(t, []any{1, 2}, removed)

	_, _, ok := tab.Get(a)
	require.False(t, ok)
	_, _, ok = tab.Get(b)
	require.False(t, ok)
	_, _, ok = tab.Get(c)
	require.True(t, ok, "entries outside the deleted scope must survive")
}

func TestLenCountsEntries(t *testing.T) {
	st := strtab.New()
	tab := symtab.New()
	require.Equal(t, 0, tab.Len())

	tab.Set(st.Register("a"), 1, symtab.DeclPos{})
	tab.Set(st.Register("b"), 2, symtab.DeclPos{})
	require.Equal(t, 2, tab.Len())
}
