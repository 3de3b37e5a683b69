package interp

import (
	"github.com/corytodd/picoc/internal/strtab"
	"github.com/corytodd/picoc/internal/symtab"
	"github.com/corytodd/picoc/internal/token"
	"github.com/corytodd/picoc/internal/types"
)

// scope is one lexical block's variable table, chained to its parent.
// picoc keeps a single global table plus one "top of stack" table
// walked linearly with VariableGet falling through to Global; this
// port instead chains a Table per nested block, matching the
// language's actual block scoping (a variable declared inside an
// inner { } must not leak to the sibling block that follows it).
type scope struct {
	table  *symtab.Table
	parent *scope
	id     int
}

// ScopeBegin pushes a new lexical scope. Returns a token the caller
// must pass to ScopeEnd.
func (it *Interpreter) ScopeBegin() *scope {
	it.nextScopeID++
	s := &scope{table: symtab.New(), parent: it.curScope, id: it.nextScopeID}
	it.curScope = s
	return s
}

// ScopeEnd pops s, removing every variable declared in it from the
// symbol table. No storage is freed here: stack storage is released
// when callUserFunc pops the call's stack mark, and heap storage
// stays allocated.
func (it *Interpreter) ScopeEnd(s *scope) {
	for _, v := range s.table.DeleteScope(s.id) {
		if val, ok := v.(*Value); ok && val.onStack() {
			// stack storage unwinds structurally with the frame; nothing to free here
			_ = val
		}
	}
	it.curScope = s.parent
}

// VariableDefine declares name with type typ in the current scope
// (or globally if no scope is open), returning its storage Value.
// Redeclaring an identical type in the same scope is accepted as a
// no-op success (VariableDefineButIgnoreIdentical); redeclaring with a
// different type is a fatal error at pos.
func (it *Interpreter) VariableDefine(name *strtab.Symbol, typ *types.ValueType, pos token.Position, onHeap bool) (*Value, error) {
	v, err := it.allocLocal(typ, onHeap)
	if err != nil {
		return nil, err
	}
	ok := it.defineInCurrentTable(name, v, declPos(pos))
	if !ok {
		existing, _, _ := it.lookupLocal(name)
		if it.curScope == nil {
			existing, _, _ = it.Global.Get(name)
		}
		if ev, ok := existing.(*Value); ok && sameShape(ev.Typ, typ) {
			return ev, nil
		}
		return nil, &FatalError{Pos: pos, Message: "'" + name.Name + "' is already defined"}
	}
	return v, nil
}

func sameShape(a, b *types.ValueType) bool { return a == b }

func (it *Interpreter) defineInCurrentTable(name *strtab.Symbol, v *Value, pos symtab.DeclPos) bool {
	if it.curScope != nil {
		return it.curScope.table.SetScoped(name, v, pos, it.curScope.id)
	}
	return it.Global.Set(name, v, pos)
}

func (it *Interpreter) lookupLocal(name *strtab.Symbol) (any, symtab.DeclPos, bool) {
	for s := it.curScope; s != nil; s = s.parent {
		if v, pos, ok := s.table.Get(name); ok {
			return v, pos, ok
		}
	}
	return nil, symtab.DeclPos{}, false
}

// VariableGet resolves name through the lexical scope chain and falls
// through to the global table, mirroring VariableGet's
// stack-then-global search order.
func (it *Interpreter) VariableGet(name *strtab.Symbol) (*Value, bool) {
	if v, _, ok := it.lookupLocal(name); ok {
		if val, ok := v.(*Value); ok {
			return val, true
		}
	}
	if v, _, ok := it.Global.Get(name); ok {
		if val, ok := v.(*Value); ok {
			return val, true
		}
	}
	return nil, false
}

// allocLocal reserves storage for a new variable: heap-backed if
// onHeap (globals, and variables declared outside any function call)
// or stack-backed otherwise (StackFrame's local storage
// arena, released in bulk on function return).
func (it *Interpreter) allocLocal(typ *types.ValueType, onHeap bool) (*Value, error) {
	size := types.SizeOf(typ)
	if size < 1 {
		size = 1
	}
	if onHeap {
		addr, err := it.arena.AllocHeap(size)
		if err != nil {
			return nil, err
		}
		return &Value{Typ: typ, Addr: addr, Flags: FlagIsLValue | FlagAbsoluteAddress}, nil
	}
	addr, err := it.arena.AllocStack(size)
	if err != nil {
		return nil, err
	}
	return &Value{Typ: typ, Addr: addr, Flags: FlagIsLValue | FlagOnStack}, nil
}
