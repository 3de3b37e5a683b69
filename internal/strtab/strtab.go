// Package strtab implements string interning with
// pointer-identity equality, grounded on picoc_table.c's
// TableStrRegister/TableSetIdentifier (a chained hash table keyed by
// identifier text that hands back the canonical slot on repeat
// inserts).
package strtab

// Symbol is a canonical, interned string. Two Symbol pointers compare
// equal with == if and only if the underlying text is byte-equal —
// this is the "interned string equality = pointer equality" invariant
// in this interpreter. Callers must never fall back to comparing the Name
// field with ==/!= for identifier equality; use the *Symbol pointer.
type Symbol struct {
	Name string
}

// Table is the shared string table. The zero value is not usable;
// use New.
type Table struct {
	m map[string]*Symbol
}

// New creates an empty Table and interns the empty string as pc.StrEmpty
// would at Initialize time.
func New() *Table {
	t := &Table{m: make(map[string]*Symbol)}
	t.Register("")
	return t
}

// Register interns str, returning the canonical *Symbol for it. Repeat
// calls with byte-equal input return the same pointer.
func (t *Table) Register(str string) *Symbol {
	if sym, ok := t.m[str]; ok {
		return sym
	}
	sym := &Symbol{Name: str}
	t.m[str] = sym
	return sym
}

// Empty returns the canonical empty-string symbol (pc.StrEmpty).
func (t *Table) Empty() *Symbol { return t.Register("") }

// Len reports how many distinct strings have been interned.
func (t *Table) Len() int { return len(t.m) }
