package interp

import (
	"fmt"

	"github.com/corytodd/picoc/internal/token"
	"github.com/corytodd/picoc/internal/types"
)

// ParseExpression evaluates a full expression (comma operator down to
// assignment) starting at the cursor, leaving it positioned just past
// the last token consumed. In Skip mode tokens are still consumed (so
// the cursor ends up in the right place) but no side effects happen
// and the returned Value is a throwaway.
func (it *Interpreter) ParseExpression(c *TokenCursor) (*Value, error) {
	v, err := it.parseAssignment(c)
	if err != nil {
		return nil, err
	}
	for c.Peek().Kind == token.COMMA {
		c.Next()
		v, err = it.parseAssignment(c)
		if err != nil {
			return nil, err
		}
	}
	return v, nil
}

func (it *Interpreter) parseAssignment(c *TokenCursor) (*Value, error) {
	lhs, err := it.parseTernary(c)
	if err != nil {
		return nil, err
	}
	op := c.Peek().Kind
	switch op {
	case token.ASSIGN, token.ADDASSIGN, token.SUBASSIGN, token.MULASSIGN,
		token.DIVASSIGN, token.MODASSIGN, token.ANDASSIGN, token.ORASSIGN,
		token.XORASSIGN, token.SHLASSIGN, token.SHRASSIGN:
		pos := c.Peek().Pos
		c.Next()
		rhs, err := it.parseAssignment(c)
		if err != nil {
			return nil, err
		}
		if c.Mode != Run {
			return lhs, nil
		}
		if !lhs.isLValue() {
			return nil, &FatalError{Pos: pos, Message: "can't assign to this"}
		}
		result := rhs
		if op != token.ASSIGN {
			result, err = it.binaryOp(compoundToBinary(op), lhs, rhs, pos)
			if err != nil {
				return nil, err
			}
		}
		it.store(lhs, result)
		return lhs, nil
	}
	return lhs, nil
}

func compoundToBinary(op token.Kind) token.Kind {
	switch op {
	case token.ADDASSIGN:
		return token.PLUS
	case token.SUBASSIGN:
		return token.MINUS
	case token.MULASSIGN:
		return token.ASTERISK
	case token.DIVASSIGN:
		return token.SLASH
	case token.MODASSIGN:
		return token.PERCENT
	case token.ANDASSIGN:
		return token.AMPERSAND
	case token.ORASSIGN:
		return token.PIPE
	case token.XORASSIGN:
		return token.CARET
	case token.SHLASSIGN:
		return token.SHL
	case token.SHRASSIGN:
		return token.SHR
	}
	return op
}

func (it *Interpreter) parseTernary(c *TokenCursor) (*Value, error) {
	cond, err := it.parseBinary(c, 0)
	if err != nil {
		return nil, err
	}
	if c.Peek().Kind != token.QUESTION {
		return cond, nil
	}
	c.Next()
	takeTrue := c.Mode == Run && it.truthy(cond)

	savedMode := c.Mode
	if c.Mode == Run && !takeTrue {
		c.Mode = Skip
	}
	thenV, err := it.parseAssignment(c)
	c.Mode = savedMode
	if err != nil {
		return nil, err
	}
	if c.Peek().Kind != token.COLON {
		return nil, fmt.Errorf("%s: expected ':' in ternary expression", c.Peek().Pos)
	}
	c.Next()
	if c.Mode == Run && takeTrue {
		c.Mode = Skip
	}
	elseV, err := it.parseAssignment(c)
	c.Mode = savedMode
	if err != nil {
		return nil, err
	}
	if takeTrue {
		return thenV, nil
	}
	return elseV, nil
}

// precedence table, lowest to highest; parseBinary climbs it recursively.
var precTable = [][]token.Kind{
	{token.LOR},
	{token.LAND},
	{token.PIPE},
	{token.CARET},
	{token.AMPERSAND},
	{token.EQ, token.NE},
	{token.LT, token.LE, token.GT, token.GE},
	{token.SHL, token.SHR},
	{token.PLUS, token.MINUS},
	{token.ASTERISK, token.SLASH, token.PERCENT},
}

func (it *Interpreter) parseBinary(c *TokenCursor, level int) (*Value, error) {
	if level >= len(precTable) {
		return it.parseUnary(c)
	}
	lhs, err := it.parseBinary(c, level+1)
	if err != nil {
		return nil, err
	}
	for matchesAny(c.Peek().Kind, precTable[level]) {
		op := c.Peek().Kind
		pos := c.Peek().Pos
		c.Next()

		// short-circuit && / ||
		if op == token.LAND || op == token.LOR {
			lt := it.truthy(lhs)
			shortCircuit := (op == token.LAND && !lt) || (op == token.LOR && lt)
			savedMode := c.Mode
			if c.Mode == Run && shortCircuit {
				c.Mode = Skip
			}
			rhs, err := it.parseBinary(c, level+1)
			c.Mode = savedMode
			if err != nil {
				return nil, err
			}
			if c.Mode != Run {
				lhs = rhs
				continue
			}
			var result bool
			if op == token.LAND {
				result = lt && it.truthy(rhs)
			} else {
				result = lt || it.truthy(rhs)
			}
			lhs = it.boolValue(result)
			continue
		}

		rhs, err := it.parseBinary(c, level+1)
		if err != nil {
			return nil, err
		}
		if c.Mode != Run {
			lhs = rhs
			continue
		}
		lhs, err = it.binaryOp(op, lhs, rhs, pos)
		if err != nil {
			return nil, err
		}
	}
	return lhs, nil
}

func matchesAny(k token.Kind, set []token.Kind) bool {
	for _, s := range set {
		if k == s {
			return true
		}
	}
	return false
}

func (it *Interpreter) parseUnary(c *TokenCursor) (*Value, error) {
	tk := c.Peek()
	switch tk.Kind {
	case token.MINUS:
		c.Next()
		v, err := it.parseUnary(c)
		if err != nil {
			return nil, err
		}
		if c.Mode != Run {
			return v, nil
		}
		if isFloating(v.Typ) {
			return it.newFloat(-it.ReadFloat(v)), nil
		}
		return it.newInt(-it.ReadInt(v), v.Typ), nil
	case token.PLUS:
		c.Next()
		return it.parseUnary(c)
	case token.NOT:
		c.Next()
		v, err := it.parseUnary(c)
		if err != nil {
			return nil, err
		}
		if c.Mode != Run {
			return v, nil
		}
		return it.boolValue(!it.truthy(v)), nil
	case token.TILDE:
		c.Next()
		v, err := it.parseUnary(c)
		if err != nil {
			return nil, err
		}
		if c.Mode != Run {
			return v, nil
		}
		return it.newInt(^it.ReadInt(v), v.Typ), nil
	case token.AMPERSAND:
		c.Next()
		v, err := it.parseUnary(c)
		if err != nil {
			return nil, err
		}
		if c.Mode != Run {
			return v, nil
		}
		if !v.isLValue() {
			return nil, &FatalError{Pos: tk.Pos, Message: "can't take the address of this"}
		}
		ptr := it.newInt(int64(v.Addr), it.Types.PointerTo(v.Typ))
		return ptr, nil
	case token.ASTERISK:
		c.Next()
		v, err := it.parseUnary(c)
		if err != nil {
			return nil, err
		}
		if c.Mode != Run {
			return v, nil
		}
		return it.deref(v, tk.Pos)
	case token.INC, token.DEC:
		c.Next()
		v, err := it.parseUnary(c)
		if err != nil {
			return nil, err
		}
		if c.Mode != Run {
			return v, nil
		}
		delta := int64(1)
		if tk.Kind == token.DEC {
			delta = -1
		}
		nv, err := it.binaryOp(token.PLUS, v, it.newInt(delta, it.Types.Int), tk.Pos)
		if err != nil {
			return nil, err
		}
		it.store(v, nv)
		return v, nil
	case token.SIZEOF:
		c.Next()
		return it.parseSizeof(c)
	case token.LPAREN, token.LPARENMACRO:
		if isTypeStart(c.PeekAt(1).Kind) {
			c.Next()
			base, err := it.TypeParseFront(c)
			if err != nil {
				return nil, err
			}
			typ, _, err := it.TypeParseBack(c, base)
			if err != nil {
				return nil, err
			}
			if c.Peek().Kind != token.RPAREN {
				return nil, fmt.Errorf("%s: expected ')' after cast type", c.Peek().Pos)
			}
			c.Next()
			v, err := it.parseUnary(c)
			if err != nil {
				return nil, err
			}
			if c.Mode != Run {
				return v, nil
			}
			return it.cast(v, typ), nil
		}
	}
	return it.parsePostfix(c)
}

func isTypeStart(k token.Kind) bool {
	switch k {
	case token.INTTYPE, token.SHORTTYPE, token.CHARTYPE, token.LONGTYPE,
		token.FLOATTYPE, token.DOUBLETYPE, token.VOIDTYPE, token.STRUCTTYPE,
		token.UNIONTYPE, token.ENUMTYPE, token.SIGNEDTYPE, token.UNSIGNEDTYPE:
		return true
	}
	return false
}

func (it *Interpreter) parseSizeof(c *TokenCursor) (*Value, error) {
	if isOpenParen(c.Peek().Kind) && isTypeStart(c.PeekAt(1).Kind) {
		c.Next()
		base, err := it.TypeParseFront(c)
		if err != nil {
			return nil, err
		}
		typ, _, err := it.TypeParseBack(c, base)
		if err != nil {
			return nil, err
		}
		if c.Peek().Kind != token.RPAREN {
			return nil, fmt.Errorf("%s: expected ')' after sizeof type", c.Peek().Pos)
		}
		c.Next()
		return it.newInt(int64(types.SizeOf(typ)), it.Types.UnsignedLong), nil
	}
	// sizeof's expression operand is never actually evaluated (only its
	// type matters), so it is parsed in Skip mode regardless of the
	// surrounding mode: "sizeof(x++)" must not increment x.
	savedMode := c.Mode
	if c.Mode == Run {
		c.Mode = Skip
	}
	v, err := it.parseUnary(c)
	c.Mode = savedMode
	if err != nil {
		return nil, err
	}
	if c.Mode != Run {
		return v, nil
	}
	return it.newInt(int64(types.SizeOf(v.Typ)), it.Types.UnsignedLong), nil
}

func (it *Interpreter) parsePostfix(c *TokenCursor) (*Value, error) {
	v, err := it.parsePrimary(c)
	if err != nil {
		return nil, err
	}
	for {
		switch c.Peek().Kind {
		case token.LBRACKET:
			pos := c.Peek().Pos
			c.Next()
			idx, err := it.ParseExpression(c)
			if err != nil {
				return nil, err
			}
			if c.Peek().Kind != token.RBRACKET {
				return nil, fmt.Errorf("%s: expected ']'", c.Peek().Pos)
			}
			c.Next()
			if c.Mode != Run {
				continue
			}
			v, err = it.index(v, idx, pos)
			if err != nil {
				return nil, err
			}
		case token.DOT, token.ARROW:
			arrow := c.Peek().Kind == token.ARROW
			pos := c.Peek().Pos
			c.Next()
			nameTok := c.Next()
			if nameTok.Kind != token.IDENT {
				return nil, fmt.Errorf("%s: expected member name", nameTok.Pos)
			}
			if c.Mode != Run {
				continue
			}
			v, err = it.member(v, nameTok.Lit, arrow, pos)
			if err != nil {
				return nil, err
			}
		case token.LPAREN, token.LPARENMACRO:
			c.Next()
			var args []*Value
			for c.Peek().Kind != token.RPAREN {
				a, err := it.parseAssignment(c)
				if err != nil {
					return nil, err
				}
				args = append(args, a)
				if c.Peek().Kind == token.COMMA {
					c.Next()
					continue
				}
				break
			}
			if c.Peek().Kind != token.RPAREN {
				return nil, fmt.Errorf("%s: expected ')'", c.Peek().Pos)
			}
			pos := c.Peek().Pos
			c.Next()
			if c.Mode != Run {
				continue
			}
			v, err = it.call(v, args, pos)
			if err != nil {
				return nil, err
			}
		case token.INC, token.DEC:
			if c.Mode != Run {
				c.Next()
				continue
			}
			old := v
			delta := int64(1)
			if c.Peek().Kind == token.DEC {
				delta = -1
			}
			pos := c.Peek().Pos
			c.Next()
			nv, err := it.binaryOp(token.PLUS, old, it.newInt(delta, it.Types.Int), pos)
			if err != nil {
				return nil, err
			}
			snapshot := it.newInt(it.ReadInt(old), old.Typ)
			it.store(old, nv)
			v = snapshot
		default:
			return v, nil
		}
	}
}

func (it *Interpreter) parsePrimary(c *TokenCursor) (*Value, error) {
	tk := c.Peek()
	switch tk.Kind {
	case token.INT:
		c.Next()
		return it.newInt(tk.Int, it.Types.Int), nil
	case token.FLOAT:
		c.Next()
		return it.newFloat(tk.Float), nil
	case token.CHAR:
		c.Next()
		return it.newInt(tk.Int, it.Types.Char), nil
	case token.STRING:
		c.Next()
		return it.newStringLiteral(tk.Lit), nil
	case token.IDENT:
		c.Next()
		sym := it.Str.Register(tk.Lit)
		if md, isMacro := it.macros[sym]; isMacro && isOpenParen(c.Peek().Kind) {
			c.Next() // (
			args, err := it.captureMacroArgs(c)
			if err != nil {
				return nil, err
			}
			if c.Peek().Kind != token.RPAREN {
				return nil, fmt.Errorf("%s: expected ')'", c.Peek().Pos)
			}
			c.Next()
			if c.Mode != Run {
				return it.newInt(0, it.Types.Int), nil
			}
			return it.expandMacroBody(md, args, tk)
		}
		if c.Mode != Run {
			// nothing is evaluated here, but sizeof needs a known
			// variable's type
			if v, ok := it.VariableGet(sym); ok {
				return v, nil
			}
			return it.newInt(0, it.Types.Int), nil
		}
		v, ok := it.VariableGet(sym)
		if !ok {
			return nil, &FatalError{Pos: tk.Pos, Message: "'" + tk.Lit + "' is undeclared"}
		}
		return v, nil
	case token.LPAREN, token.LPARENMACRO:
		c.Next()
		v, err := it.ParseExpression(c)
		if err != nil {
			return nil, err
		}
		if c.Peek().Kind != token.RPAREN {
			return nil, fmt.Errorf("%s: expected ')'", c.Peek().Pos)
		}
		c.Next()
		return v, nil
	default:
		return nil, fmt.Errorf("%s: unexpected token %s in expression", tk.Pos, tk.Kind)
	}
}
