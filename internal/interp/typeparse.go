package interp

import (
	"fmt"

	"github.com/corytodd/picoc/internal/lexer"
	"github.com/corytodd/picoc/internal/strtab"
	"github.com/corytodd/picoc/internal/symtab"
	"github.com/corytodd/picoc/internal/token"
	"github.com/corytodd/picoc/internal/types"
)

// typeParser walks a TokenCursor recovering declarations: base type
// keywords first (TypeParseFront), then any pointer/array/identifier
// suffix (TypeParseBack), exactly the two-phase split picoc's
// TypeParse uses so "int *p, a[4];" can share one base type across
// several declarators.
type typeParser struct {
	it *Interpreter
	c  *TokenCursor
}

// TypeParseFront consumes the base-type portion of a declaration:
// an optional storage class (static/extern/auto/register, accepted
// and otherwise ignored by this port), optional signed/unsigned,
// one of the built-in keywords or a typedef'd identifier, or a
// struct/union/enum introducer.
func (it *Interpreter) TypeParseFront(c *TokenCursor) (*types.ValueType, error) {
	p := &typeParser{it: it, c: c}
	return p.front()
}

// TypeParseBack consumes any declarator suffix following the base
// type: a run of '*' for pointers, an identifier, and any trailing
// '[' size ']' array dimensions. It returns the fully derived type
// and the declared identifier (nil if abstract, e.g. in a cast or
// parameter list with no name).
func (it *Interpreter) TypeParseBack(c *TokenCursor, base *types.ValueType) (*types.ValueType, *token.Token, error) {
	p := &typeParser{it: it, c: c}
	return p.back(base)
}

func (p *typeParser) front() (*types.ValueType, error) {
	// skip storage-class keywords; they don't affect the type tree itself
	for {
		switch p.c.Peek().Kind {
		case token.STATICTYPE, token.AUTOTYPE, token.REGISTERTYPE, token.EXTERNTYPE:
			p.c.Next()
			continue
		}
		break
	}

	unsigned := false
	switch p.c.Peek().Kind {
	case token.SIGNEDTYPE:
		p.c.Next()
	case token.UNSIGNEDTYPE:
		unsigned = true
		p.c.Next()
	}

	tk := p.c.Peek()
	switch tk.Kind {
	case token.INTTYPE:
		p.c.Next()
		if unsigned {
			return p.it.Types.UnsignedInt, nil
		}
		return p.it.Types.Int, nil
	case token.SHORTTYPE:
		p.c.Next()
		if unsigned {
			return p.it.Types.UnsignedShort, nil
		}
		return p.it.Types.Short, nil
	case token.CHARTYPE:
		p.c.Next()
		if unsigned {
			return p.it.Types.UnsignedChar, nil
		}
		return p.it.Types.Char, nil
	case token.LONGTYPE:
		p.c.Next()
		if unsigned {
			return p.it.Types.UnsignedLong, nil
		}
		return p.it.Types.Long, nil
	case token.FLOATTYPE, token.DOUBLETYPE:
		p.c.Next()
		return p.it.Types.FP, nil
	case token.VOIDTYPE:
		p.c.Next()
		return p.it.Types.Void, nil
	case token.STRUCTTYPE, token.UNIONTYPE:
		return p.structOrUnion(tk.Kind == token.STRUCTTYPE)
	case token.ENUMTYPE:
		return p.enum()
	case token.IDENT:
		if unsigned {
			return p.it.Types.UnsignedInt, nil
		}
		if td, ok := p.it.lookupTypedef(tk.Lit); ok {
			p.c.Next()
			return td, nil
		}
		return nil, fmt.Errorf("%s: unknown type name %q", tk.Pos, tk.Lit)
	default:
		if unsigned {
			return p.it.Types.UnsignedInt, nil
		}
		return nil, fmt.Errorf("%s: expected a type, found %s", tk.Pos, tk.Kind)
	}
}

func (p *typeParser) structOrUnion(isStruct bool) (*types.ValueType, error) {
	p.c.Next() // struct/union
	var ident *token.Token
	if p.c.Peek().Kind == token.IDENT {
		tk := p.c.Next()
		ident = &tk
	}

	var name string
	if ident != nil {
		name = ident.Lit
	}
	sym := p.it.Str.Register(name)

	base := types.TypeStruct
	if !isStruct {
		base = types.TypeUnion
	}
	vt, err := p.it.Types.GetMatching(p.it.Types.Uber(), base, 0, sym, true)
	if err != nil {
		return nil, err
	}

	if p.c.Peek().Kind != token.LBRACE {
		return vt, nil // reference to a (possibly forward-declared) tag
	}
	p.c.Next() // {

	var orderSyms []*token.Token
	membersByName := map[string]*types.ValueType{}

	for p.c.Peek().Kind != token.RBRACE {
		mbase, err := p.front()
		if err != nil {
			return nil, err
		}
		for {
			mtype, mident, err := p.back(mbase)
			if err != nil {
				return nil, err
			}
			if mident == nil {
				return nil, fmt.Errorf("%s: expected a member name", p.c.Peek().Pos)
			}
			orderSyms = append(orderSyms, mident)
			membersByName[mident.Lit] = mtype
			if p.c.Peek().Kind == token.COMMA {
				p.c.Next()
				continue
			}
			break
		}
		if p.c.Peek().Kind != token.SEMICOLON {
			return nil, fmt.Errorf("%s: expected ';' after struct member", p.c.Peek().Pos)
		}
		p.c.Next()
	}
	p.c.Next() // }

	symOrder := make([]*strtab.Symbol, 0, len(orderSyms))
	memberTypesFinal := map[*strtab.Symbol]*types.ValueType{}
	for _, tk := range orderSyms {
		sym := p.it.Str.Register(tk.Lit)
		symOrder = append(symOrder, sym)
		memberTypesFinal[sym] = membersByName[tk.Lit]
	}
	p.it.Types.CompleteStruct(vt, isStruct, symOrder, memberTypesFinal)
	return vt, nil
}

func (p *typeParser) enum() (*types.ValueType, error) {
	p.c.Next() // enum
	var ident *token.Token
	if p.c.Peek().Kind == token.IDENT {
		tk := p.c.Next()
		ident = &tk
	}
	var name string
	if ident != nil {
		name = ident.Lit
	}
	sym := p.it.Str.Register(name)
	vt, err := p.it.Types.GetMatching(p.it.Types.Uber(), types.TypeEnum, 0, sym, true)
	if err != nil {
		return nil, err
	}
	if p.c.Peek().Kind != token.LBRACE {
		return vt, nil
	}
	p.c.Next()
	next := int64(0)
	for p.c.Peek().Kind != token.RBRACE {
		member := p.c.Next()
		if member.Kind != token.IDENT {
			return nil, fmt.Errorf("%s: expected enum constant name", member.Pos)
		}
		if p.c.Peek().Kind == token.ASSIGN {
			p.c.Next()
			savedMode := p.c.Mode
			p.c.Mode = Run
			v, err := p.it.parseAssignment(p.c)
			p.c.Mode = savedMode
			if err != nil {
				return nil, err
			}
			next = p.it.ReadInt(v)
		}
		gv := p.it.allocGlobal(p.it.Types.Int)
		p.it.WriteInt(gv, next)
		p.it.Global.Set(p.it.Str.Register(member.Lit), gv, declPos(member.Pos))
		next++
		if p.c.Peek().Kind == token.COMMA {
			p.c.Next()
			continue
		}
		break
	}
	if p.c.Peek().Kind == token.RBRACE {
		p.c.Next()
	}
	return vt, nil
}

func (p *typeParser) back(base *types.ValueType) (*types.ValueType, *token.Token, error) {
	typ := base
	for p.c.Peek().Kind == token.ASTERISK {
		p.c.Next()
		typ = p.it.Types.PointerTo(typ)
	}

	var ident *token.Token
	if p.c.Peek().Kind == token.IDENT {
		tk := p.c.Next()
		ident = &tk
	}

	for p.c.Peek().Kind == token.LBRACKET {
		p.c.Next()
		size := 0
		if p.c.Peek().Kind == token.INT {
			size = int(p.c.Next().Int)
		}
		if p.c.Peek().Kind != token.RBRACKET {
			return nil, nil, fmt.Errorf("%s: expected ']'", p.c.Peek().Pos)
		}
		p.c.Next()
		typ = p.it.Types.ArrayOf(typ, size)
	}
	return typ, ident, nil
}

// lookupTypedef finds a typedef's underlying ValueType by name.
func (it *Interpreter) lookupTypedef(name string) (*types.ValueType, bool) {
	sym := it.Str.Register(name)
	v, _, ok := it.Global.Get(sym)
	if !ok {
		return nil, false
	}
	typ, ok := v.(*types.ValueType)
	return typ, ok
}

// DefineTypedef registers name as an alias for typ (the typedef
// statement in the statement parser).
func (it *Interpreter) DefineTypedef(name string, typ *types.ValueType, pos token.Position) {
	sym := it.Str.Register(name)
	it.Global.Set(sym, typ, declPos(pos))
}

func declPos(p token.Position) symtab.DeclPos {
	return symtab.DeclPos{File: p.Filename, Line: p.Line, Col: p.Column}
}

// ParseFuncPrototype lexes a short C prototype string ("int
// strlen(const char *s)") and derives a FuncDef with no body, used to
// register native library functions against the same type parser user
// code goes through.
func ParseFuncPrototype(it *Interpreter, proto string) (*FuncDef, error) {
	toks, err := lexer.Lex("<library>", proto+";")
	if err != nil {
		return nil, err
	}
	c := NewCursor(toks)
	ret, err := it.TypeParseFront(c)
	if err != nil {
		return nil, err
	}
	full, nameTok, err := it.TypeParseBack(c, ret)
	if err != nil {
		return nil, err
	}
	if nameTok == nil {
		return nil, fmt.Errorf("prototype %q has no function name", proto)
	}
	if !isOpenParen(c.Peek().Kind) {
		return nil, fmt.Errorf("prototype %q is not a function", proto)
	}
	c.Next()

	fd := &FuncDef{Name: it.Str.Register(nameTok.Lit), ReturnType: full}
	if c.Peek().Kind == token.VOIDTYPE && c.PeekAt(1).Kind == token.RPAREN {
		c.Next()
		c.Next()
		return fd, nil
	}
	for c.Peek().Kind != token.RPAREN {
		if c.Peek().Kind == token.ELLIPSIS {
			c.Next()
			fd.VarArgs = true
			break
		}
		pbase, err := it.TypeParseFront(c)
		if err != nil {
			return nil, err
		}
		ptyp, pname, err := it.TypeParseBack(c, pbase)
		if err != nil {
			return nil, err
		}
		fd.ParamTypes = append(fd.ParamTypes, ptyp)
		if pname != nil {
			fd.ParamNames = append(fd.ParamNames, it.Str.Register(pname.Lit))
		} else {
			fd.ParamNames = append(fd.ParamNames, it.Str.Register(""))
		}
		if c.Peek().Kind == token.COMMA {
			c.Next()
			continue
		}
		break
	}
	if c.Peek().Kind == token.RPAREN {
		c.Next()
	}
	return fd, nil
}
