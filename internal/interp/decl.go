package interp

import (
	"fmt"

	"github.com/corytodd/picoc/internal/strtab"
	"github.com/corytodd/picoc/internal/token"
	"github.com/corytodd/picoc/internal/types"
)

// runDeclaration parses one declaration statement: a shared base type
// followed by one or more comma-separated declarators, each with an
// optional initializer, e.g. "int a = 1, *p, b[3] = {1,2,3};".
func (it *Interpreter) runDeclaration(c *TokenCursor) error {
	isStatic := false
	for {
		switch c.Peek().Kind {
		case token.STATICTYPE:
			isStatic = true
			c.Next()
			continue
		case token.AUTOTYPE, token.REGISTERTYPE, token.EXTERNTYPE:
			c.Next()
			continue
		}
		break
	}
	base, err := it.TypeParseFront(c)
	if err != nil {
		return err
	}

	for {
		typ, name, err := it.TypeParseBack(c, base)
		if err != nil {
			return err
		}
		if name == nil {
			return fmt.Errorf("%s: expected a declarator name", c.Peek().Pos)
		}

		hasInit := c.Peek().Kind == token.ASSIGN
		if hasInit {
			c.Next()
		}

		if c.Mode == Run {
			if hasInit {
				typ, err = it.resolveArrayInitSize(c, typ)
				if err != nil {
					return err
				}
			}
			sym := it.Str.Register(name.Lit)
			if isStatic {
				if err := it.runStaticDeclaration(c, sym, typ, name.Pos, hasInit); err != nil {
					return err
				}
			} else {
				onHeap := it.TopFrame == nil
				v, err := it.VariableDefine(sym, typ, name.Pos, onHeap)
				if err != nil {
					return err
				}
				if hasInit {
					if err := it.runInitializer(c, v); err != nil {
						return err
					}
				}
			}
		} else if hasInit {
			if err := it.skipInitializer(c); err != nil {
				return err
			}
		}

		if c.Peek().Kind == token.COMMA {
			c.Next()
			continue
		}
		break
	}
	return it.expectSemi(c)
}

// runStaticDeclaration implements VariableDefineButIgnoreIdentical's
// static-local contract: the first time a given declaration site is
// reached, storage is allocated on the heap (so it outlives the
// enclosing call's stack frame) and the initializer runs once; every
// later visit rebinds the same name, in the current (fresh) lexical
// scope, to that same persistent storage and skips the initializer
// entirely, matching "on subsequent visits the existing value is
// returned and its initializer is not re-executed".
func (it *Interpreter) runStaticDeclaration(c *TokenCursor, sym *strtab.Symbol, typ *types.ValueType, pos token.Position, hasInit bool) error {
	key := staticVarKey(pos)
	if v, ok := it.staticVars[key]; ok {
		if hasInit {
			if err := it.skipInitializer(c); err != nil {
				return err
			}
		}
		it.defineInCurrentTable(sym, v, declPos(pos))
		return nil
	}

	v, err := it.allocLocal(typ, true)
	if err != nil {
		return err
	}
	it.defineInCurrentTable(sym, v, declPos(pos))
	it.staticVars[key] = v
	if hasInit {
		if err := it.runInitializer(c, v); err != nil {
			return err
		}
	}
	return nil
}

// staticVarKey derives a stable per-declaration-site key for a static
// local from its source position: the same "static int x" declaration
// is reached at the same file:line:col on every call, which is enough
// to tell first-visit from every visit after it.
func staticVarKey(pos token.Position) string {
	return fmt.Sprintf("%s:%d:%d", pos.Filename, pos.Line, pos.Column)
}

// resolveArrayInitSize re-derives typ's array length from its brace
// initializer's element count when the declarator left it unsized
// (e.g. "int a[] = {1,2,3,4};"). TypeParseBack's back() sets ArraySize
// to 0 for a bare "[]"; allocating storage for that placeholder before
// sizing it would let runInitializer write past whatever 1-byte slot
// allocLocal clamps a zero-size type down to. Only rewrites typ when
// it is genuinely unsized and about to be brace-initialized; any other
// shape is left untouched for runInitializer's existing diagnostics.
func (it *Interpreter) resolveArrayInitSize(c *TokenCursor, typ *types.ValueType) (*types.ValueType, error) {
	if typ.Base != types.TypeArray || typ.ArraySize != 0 || c.Peek().Kind != token.LBRACE {
		return typ, nil
	}
	n, err := it.countInitializerElements(c)
	if err != nil {
		return nil, err
	}
	return it.Types.ArrayOf(typ.FromType, n), nil
}

// countInitializerElements counts the top-level comma-separated
// entries of a brace initializer without evaluating any of them,
// restoring the cursor to where it found it: a lookahead counting
// pass over "{ expr, expr, ... }", tracking brace depth so a nested
// initializer's own commas aren't mistaken for top-level separators.
func (it *Interpreter) countInitializerElements(c *TokenCursor) (int, error) {
	mark := c.Save()
	defer c.Restore(mark)

	if c.Peek().Kind != token.LBRACE {
		return 0, fmt.Errorf("%s: expected '{'", c.Peek().Pos)
	}
	c.Next()
	if c.Peek().Kind == token.RBRACE {
		return 0, nil
	}

	count := 1
	depth := 0
	for {
		tk := c.Next()
		switch tk.Kind {
		case token.LBRACE:
			depth++
		case token.RBRACE:
			if depth == 0 {
				return count, nil
			}
			depth--
		case token.COMMA:
			if depth == 0 {
				count++
			}
		case token.EOF:
			return 0, fmt.Errorf("unexpected end of input in initializer")
		}
	}
}

// runInitializer evaluates "= expr" or "= { ... }" and stores the
// result(s) into dst: a scalar gets a single expression, an array gets
// one element per brace entry, and a struct/union gets one member per
// brace entry in declaration order.
func (it *Interpreter) runInitializer(c *TokenCursor, dst *Value) error {
	if c.Peek().Kind == token.LBRACE {
		c.Next()
		switch dst.Typ.Base {
		case types.TypeArray:
			return it.runArrayInitializer(c, dst)
		case types.TypeStruct, types.TypeUnion:
			return it.runStructInitializer(c, dst)
		default:
			return fmt.Errorf("%s: can't use a brace initializer on a scalar", c.Peek().Pos)
		}
	}
	v, err := it.parseAssignment(c)
	if err != nil {
		return err
	}
	it.store(dst, v)
	return nil
}

// runArrayInitializer fills dst's elements from a brace list already
// past its opening '{'.
func (it *Interpreter) runArrayInitializer(c *TokenCursor, dst *Value) error {
	elemType := dst.Typ.FromType
	addrFlags := dst.Flags & (FlagOnStack | FlagAbsoluteAddress)
	i := 0
	for c.Peek().Kind != token.RBRACE {
		elem := &Value{
			Typ:   elemType,
			Addr:  dst.Addr + i*elemType.Size,
			Flags: FlagIsLValue | addrFlags,
		}
		if err := it.runInitializer(c, elem); err != nil {
			return err
		}
		i++
		if c.Peek().Kind == token.COMMA {
			c.Next()
			continue
		}
		break
	}
	if c.Peek().Kind != token.RBRACE {
		return fmt.Errorf("%s: expected '}'", c.Peek().Pos)
	}
	c.Next()
	return nil
}

// runStructInitializer fills dst's members, in declaration order, from
// a brace list already past its opening '{' (spec.md §8 scenario 4:
// "struct P p={3,4};" assigns p's members positionally).
func (it *Interpreter) runStructInitializer(c *TokenCursor, dst *Value) error {
	order := dst.Typ.Order
	addrFlags := dst.Flags & (FlagOnStack | FlagAbsoluteAddress)
	i := 0
	for c.Peek().Kind != token.RBRACE {
		if i >= len(order) {
			return fmt.Errorf("%s: too many initializers for '%s'", c.Peek().Pos, dst.Typ.Identifier.Name)
		}
		member := dst.Typ.Members[order[i]]
		elem := &Value{
			Typ:   member.Type,
			Addr:  dst.Addr + member.Offset,
			Flags: FlagIsLValue | addrFlags,
		}
		if err := it.runInitializer(c, elem); err != nil {
			return err
		}
		i++
		if c.Peek().Kind == token.COMMA {
			c.Next()
			continue
		}
		break
	}
	if c.Peek().Kind != token.RBRACE {
		return fmt.Errorf("%s: expected '}'", c.Peek().Pos)
	}
	c.Next()
	return nil
}

// skipInitializer advances over an initializer without evaluating it
// (declarations reached in Skip mode still need their tokens consumed).
func (it *Interpreter) skipInitializer(c *TokenCursor) error {
	if c.Peek().Kind == token.LBRACE {
		depth := 0
		for {
			tk := c.Next()
			if tk.Kind == token.LBRACE {
				depth++
			}
			if tk.Kind == token.RBRACE {
				depth--
				if depth == 0 {
					return nil
				}
			}
			if tk.Kind == token.EOF {
				return fmt.Errorf("unexpected end of input in initializer")
			}
		}
	}
	_, err := it.parseAssignment(c)
	return err
}

// freeHeapValue implements the `delete` extension: release the heap
// block a pointer Value refers to back to the arena's free list.
func (it *Interpreter) freeHeapValue(v *Value) {
	if v.Typ.Base != types.TypePointer {
		return
	}
	addr := it.ReadAddr(v)
	size := v.Typ.FromType.Size
	if size <= 0 {
		size = 1
	}
	it.arena.FreeHeap(addr, size)
}
