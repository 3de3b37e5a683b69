// Package symtab implements chained symbol tables for
// globals, struct members, and lexical scopes, grounded on
// picoc_table.c's TableSet/TableGet/TableDelete contract. Go's native
// map already gives the O(1) lookup picoc's hand-rolled hash table is
// chasing, keyed here by the same *strtab.Symbol pointer identity
// picoc relies on ("shared strings have unique addresses so we don't
// need to hash them").
package symtab

import "github.com/corytodd/picoc/internal/strtab"

// DeclPos is the declaration-site coordinate attached to a Table entry.
type DeclPos struct {
	File string
	Line int
	Col  int
}

type entry struct {
	value   any
	declPos DeclPos
	scopeID int
}

// Table is a single scope's symbol table.
type Table struct {
	m map[*strtab.Symbol]*entry
}

// New creates an empty Table.
func New() *Table {
	return &Table{m: make(map[*strtab.Symbol]*entry)}
}

// Set inserts key -> value iff key is not already present, returning
// false without modifying the table if it is (TableSet's "returns
// FALSE if it already exists").
func (t *Table) Set(key *strtab.Symbol, value any, pos DeclPos) bool {
	if _, ok := t.m[key]; ok {
		return false
	}
	t.m[key] = &entry{value: value, declPos: pos}
	return true
}

// SetScoped is Set plus a scope id tag, used by the variable/scope
// manager (internal/interp) to find every variable belonging to a
// scope on ScopeEnd.
func (t *Table) SetScoped(key *strtab.Symbol, value any, pos DeclPos, scopeID int) bool {
	if _, ok := t.m[key]; ok {
		return false
	}
	t.m[key] = &entry{value: value, declPos: pos, scopeID: scopeID}
	return true
}

// Get looks up key, returning (value, declPos, true) or (nil, _, false).
func (t *Table) Get(key *strtab.Symbol) (any, DeclPos, bool) {
	e, ok := t.m[key]
	if !ok {
		return nil, DeclPos{}, false
	}
	return e.value, e.declPos, true
}

// Delete removes key and returns its value, or nil if absent
// (TableDelete: ownership of the value passes back to the caller).
func (t *Table) Delete(key *strtab.Symbol) any {
	e, ok := t.m[key]
	if !ok {
		return nil
	}
	delete(t.m, key)
	return e.value
}

// DeleteScope removes every entry tagged with scopeID, returning their
// values so the caller can release any backing storage (ScopeEnd's
// "destroys every variable in the current scope").
func (t *Table) DeleteScope(scopeID int) []any {
	var out []any
	for k, e := range t.m {
		if e.scopeID == scopeID {
			out = append(out, e.value)
			delete(t.m, k)
		}
	}
	return out
}

// Len reports the number of entries currently in the table.
func (t *Table) Len() int { return len(t.m) }
