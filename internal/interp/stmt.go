package interp

import (
	"fmt"

	"github.com/corytodd/picoc/internal/token"
)

// runBlock executes a `{ ... }` block (or, at the top level, a bare
// sequence of statements) until it closes, runs out of tokens, or a
// control-flow mode (Return/Break/Continue/Goto) propagates out of it.
func (it *Interpreter) runBlock(c *TokenCursor) error {
	hasBrace := c.Peek().Kind == token.LBRACE
	if hasBrace {
		c.Next()
	}
	blockStart := c.Save()
	s := it.ScopeBegin()
	defer it.ScopeEnd(s)

	for {
		if hasBrace && c.Peek().Kind == token.RBRACE {
			c.Next()
			return nil
		}
		if !hasBrace && c.AtEOF() {
			return nil
		}
		if c.AtEOF() {
			if hasBrace {
				return fmt.Errorf("%s: expected '}'", c.Peek().Pos)
			}
			return nil
		}
		if err := it.runStatement(c); err != nil {
			return err
		}
		if c.Mode == Goto {
			if target, ok := it.findLabel(c, blockStart, hasBrace, it.gotoLabel); ok {
				c.Restore(target)
				c.Mode = Run
				continue
			}
		}
		if c.Mode == Return || c.Mode == Break || c.Mode == Continue || c.Mode == Goto {
			// unwind: skip the remainder of this block without executing it
			if err := it.skipToBlockEnd(c, hasBrace); err != nil {
				return err
			}
			return nil
		}
	}
}

// findLabel scans this block's own token range for "name:" at depth
// 0 (labels inside nested blocks are not matched), a deliberately
// narrow goto scope: a label must live in the same block as the goto,
// or an enclosing one (each enclosing runBlock repeats the scan as the
// Goto unwinds), which is the common case in practice and keeps this
// scan a single linear pass instead of a whole-function index.
func (it *Interpreter) findLabel(c *TokenCursor, blockStart int, hasBrace bool, name string) (int, bool) {
	i := blockStart
	depth := 0
	for i < len(c.Tokens) {
		tk := c.Tokens[i]
		if hasBrace {
			if tk.Kind == token.LBRACE {
				depth++
			}
			if tk.Kind == token.RBRACE {
				if depth == 0 {
					return 0, false
				}
				depth--
			}
		}
		if depth == 0 && tk.Kind == token.IDENT && tk.Lit == name &&
			i+1 < len(c.Tokens) && c.Tokens[i+1].Kind == token.COLON {
			return i + 2, true
		}
		i++
	}
	return 0, false
}

// skipToBlockEnd advances the cursor past the rest of the current
// block without evaluating anything, used once a Return/Break/
// Continue/Goto has been raised so the caller's own loop can see it.
func (it *Interpreter) skipToBlockEnd(c *TokenCursor, hasBrace bool) error {
	if !hasBrace {
		for !c.AtEOF() {
			c.Next()
		}
		return nil
	}
	depth := 1
	for !c.AtEOF() && depth > 0 {
		switch c.Next().Kind {
		case token.LBRACE:
			depth++
		case token.RBRACE:
			depth--
		}
	}
	return nil
}

func (it *Interpreter) runStatement(c *TokenCursor) error {
	tk := c.Peek()
	switch tk.Kind {
	case token.LBRACE:
		return it.runBlock(c)
	case token.SEMICOLON:
		c.Next()
		return nil
	case token.IF:
		return it.runIf(c)
	case token.WHILE:
		return it.runWhile(c)
	case token.DO:
		return it.runDoWhile(c)
	case token.FOR:
		return it.runFor(c)
	case token.SWITCH:
		return it.runSwitch(c)
	case token.CASE:
		return it.runCase(c)
	case token.DEFAULT:
		c.Next()
		if c.Peek().Kind != token.COLON {
			return fmt.Errorf("%s: expected ':' after default", c.Peek().Pos)
		}
		c.Next()
		if c.Mode == CaseSearch && !it.switchMatched {
			it.switchMatched = true
			c.Mode = Run
		}
		return nil
	case token.BREAK:
		c.Next()
		if err := it.expectSemi(c); err != nil {
			return err
		}
		if c.Mode == Run {
			c.Mode = Break
		}
		return nil
	case token.CONTINUE:
		c.Next()
		if err := it.expectSemi(c); err != nil {
			return err
		}
		if c.Mode == Run {
			c.Mode = Continue
		}
		return nil
	case token.RETURN:
		c.Next()
		var v *Value
		var err error
		if c.Peek().Kind != token.SEMICOLON {
			v, err = it.ParseExpression(c)
			if err != nil {
				return err
			}
		}
		if err := it.expectSemi(c); err != nil {
			return err
		}
		if c.Mode == Run {
			it.setReturn(v)
			c.Mode = Return
		}
		return nil
	case token.TYPEDEF:
		return it.runTypedef(c)
	case token.HASHINCLUDE:
		return it.runInclude(c)
	case token.HASHDEFINE:
		return it.runDefine(c)
	case token.DELETE:
		return it.runDelete(c)
	case token.GOTO:
		c.Next()
		labelTok := c.Next()
		if labelTok.Kind != token.IDENT {
			return fmt.Errorf("%s: expected a label after goto", labelTok.Pos)
		}
		if err := it.expectSemi(c); err != nil {
			return err
		}
		if c.Mode == Run {
			c.Mode = Goto
			it.gotoLabel = labelTok.Lit
		}
		return nil
	case token.IDENT:
		if c.PeekAt(1).Kind == token.COLON {
			c.Next()
			c.Next()
			return nil // label: fallthrough, matched only by a prior goto scan
		}
		if isTypeStart(tk.Kind) {
			break
		}
		if _, ok := it.lookupTypedef(tk.Lit); ok {
			return it.runDeclaration(c)
		}
		_, err := it.ParseExpression(c)
		if err != nil {
			return err
		}
		return it.expectSemi(c)
	}
	if isTypeStart(tk.Kind) || tk.Kind == token.STATICTYPE || tk.Kind == token.EXTERNTYPE ||
		tk.Kind == token.AUTOTYPE || tk.Kind == token.REGISTERTYPE {
		return it.runDeclaration(c)
	}
	_, err := it.ParseExpression(c)
	if err != nil {
		return err
	}
	return it.expectSemi(c)
}

func (it *Interpreter) expectSemi(c *TokenCursor) error {
	if c.Peek().Kind != token.SEMICOLON {
		return fmt.Errorf("%s: expected ';'", c.Peek().Pos)
	}
	c.Next()
	return nil
}

func (it *Interpreter) runIf(c *TokenCursor) error {
	c.Next() // if
	if c.Peek().Kind != token.LPAREN {
		return fmt.Errorf("%s: expected '(' after if", c.Peek().Pos)
	}
	c.Next()
	cond, err := it.ParseExpression(c)
	if err != nil {
		return err
	}
	if c.Peek().Kind != token.RPAREN {
		return fmt.Errorf("%s: expected ')'", c.Peek().Pos)
	}
	c.Next()

	takeThen := c.Mode == Run && it.truthy(cond)
	savedMode := c.Mode
	if c.Mode == Run && !takeThen {
		c.Mode = Skip
	}
	if err := it.runStatement(c); err != nil {
		return err
	}
	if c.Mode == Skip {
		c.Mode = savedMode
	}

	if c.Peek().Kind == token.ELSE {
		c.Next()
		savedMode2 := c.Mode
		if c.Mode == Run && takeThen {
			c.Mode = Skip
		}
		if err := it.runStatement(c); err != nil {
			return err
		}
		if c.Mode == Skip {
			c.Mode = savedMode2
		}
	}
	return nil
}

func (it *Interpreter) runWhile(c *TokenCursor) error {
	c.Next() // while
	if c.Peek().Kind != token.LPAREN {
		return fmt.Errorf("%s: expected '(' after while", c.Peek().Pos)
	}
	c.Next()
	condStart := c.Save()
	for {
		c.Restore(condStart)
		cond, err := it.ParseExpression(c)
		if err != nil {
			return err
		}
		if c.Peek().Kind != token.RPAREN {
			return fmt.Errorf("%s: expected ')'", c.Peek().Pos)
		}
		c.Next()
		bodyStart := c.Save()

		runBody := c.Mode == Run && it.truthy(cond)
		savedMode := c.Mode
		if c.Mode == Run && !runBody {
			c.Mode = Skip
		}
		if err := it.runStatement(c); err != nil {
			return err
		}
		if c.Mode == Break {
			c.Mode = savedMode
			return nil
		}
		if c.Mode == Skip {
			c.Mode = savedMode
		}
		if c.Mode == Continue {
			c.Mode = savedMode
		}
		if !runBody {
			return nil
		}
		if c.Mode != Run {
			return nil
		}
		_ = bodyStart
	}
}

func (it *Interpreter) runDoWhile(c *TokenCursor) error {
	c.Next() // do
	bodyStart := c.Save()
	for {
		c.Restore(bodyStart)
		savedMode := c.Mode
		if err := it.runStatement(c); err != nil {
			return err
		}
		brk := c.Mode == Break
		if brk {
			c.Mode = savedMode
		}
		stop := brk || c.Mode != Run
		if c.Mode == Continue {
			c.Mode = savedMode
		}
		if c.Peek().Kind != token.WHILE {
			return fmt.Errorf("%s: expected 'while' after do block", c.Peek().Pos)
		}
		c.Next()
		if c.Peek().Kind != token.LPAREN {
			return fmt.Errorf("%s: expected '(' after do-while", c.Peek().Pos)
		}
		c.Next()
		cond, err := it.ParseExpression(c)
		if err != nil {
			return err
		}
		if c.Peek().Kind != token.RPAREN {
			return fmt.Errorf("%s: expected ')'", c.Peek().Pos)
		}
		c.Next()
		if err := it.expectSemi(c); err != nil {
			return err
		}
		if stop {
			return nil
		}
		if !it.truthy(cond) {
			return nil
		}
	}
}

// runFor implements the four-clause C for loop by saving a cursor
// snapshot at each of init/cond/post/body and re-entering them on
// every iteration, rather than building any intermediate structure.
func (it *Interpreter) runFor(c *TokenCursor) error {
	c.Next() // for
	if c.Peek().Kind != token.LPAREN {
		return fmt.Errorf("%s: expected '(' after for", c.Peek().Pos)
	}
	c.Next()

	s := it.ScopeBegin()
	defer it.ScopeEnd(s)

	if c.Peek().Kind != token.SEMICOLON {
		if isTypeStart(c.Peek().Kind) {
			if err := it.runDeclaration(c); err != nil {
				return err
			}
		} else {
			if _, err := it.ParseExpression(c); err != nil {
				return err
			}
			if err := it.expectSemi(c); err != nil {
				return err
			}
		}
	} else {
		c.Next()
	}

	condStart := c.Save()
	for {
		c.Restore(condStart)
		var cond *Value
		if c.Peek().Kind != token.SEMICOLON {
			v, err := it.ParseExpression(c)
			if err != nil {
				return err
			}
			cond = v
		}
		if err := it.expectSemi(c); err != nil {
			return err
		}
		postStart := c.Save()
		// skip over the post-expression to find the body
		if err := it.skipExpressionUntil(c, token.RPAREN); err != nil {
			return err
		}
		if c.Peek().Kind != token.RPAREN {
			return fmt.Errorf("%s: expected ')'", c.Peek().Pos)
		}
		c.Next()

		runBody := c.Mode == Run && (cond == nil || it.truthy(cond))
		savedMode := c.Mode
		if c.Mode == Run && !runBody {
			c.Mode = Skip
		}
		if err := it.runStatement(c); err != nil {
			return err
		}
		stop := c.Mode == Break
		if c.Mode == Break || c.Mode == Continue {
			c.Mode = savedMode
		}
		if c.Mode == Skip {
			c.Mode = savedMode
		}
		if stop || !runBody {
			return nil
		}
		if c.Mode != Run {
			return nil
		}

		c.Restore(postStart)
		if c.Peek().Kind != token.RPAREN {
			if _, err := it.ParseExpression(c); err != nil {
				return err
			}
		}
	}
}

// skipExpressionUntil advances c over a balanced expression up to (but
// not consuming) a token of kind stop at the current nesting depth.
func (it *Interpreter) skipExpressionUntil(c *TokenCursor, stop token.Kind) error {
	depth := 0
	for {
		tk := c.Peek()
		if tk.Kind == token.EOF {
			return fmt.Errorf("unexpected end of input")
		}
		if depth == 0 && tk.Kind == stop {
			return nil
		}
		switch tk.Kind {
		case token.LPAREN, token.LPARENMACRO:
			depth++
		case token.RPAREN:
			depth--
		}
		c.Next()
	}
}

// runSwitch parses its body once in CaseSearch mode: case labels are
// compared against the tag until one matches (or default is reached),
// and the body runs in Run mode from there, mirroring the original's
// "scan for a matching case label, then fall into Run mode from
// there".
func (it *Interpreter) runSwitch(c *TokenCursor) error {
	c.Next() // switch
	if c.Peek().Kind != token.LPAREN {
		return fmt.Errorf("%s: expected '(' after switch", c.Peek().Pos)
	}
	c.Next()
	tag, err := it.ParseExpression(c)
	if err != nil {
		return err
	}
	if c.Peek().Kind != token.RPAREN {
		return fmt.Errorf("%s: expected ')'", c.Peek().Pos)
	}
	c.Next()

	if c.Mode != Run {
		return it.runStatement(c)
	}

	savedMode := c.Mode
	c.Mode = CaseSearch
	it.switchTag = tag
	it.switchMatched = false
	if err := it.runStatement(c); err != nil {
		return err
	}
	if c.Mode == Break {
		c.Mode = savedMode
	} else if c.Mode == CaseSearch {
		c.Mode = savedMode
	}
	return nil
}

// runCase evaluates a case label's constant expression (always, even
// during CaseSearch, since the label value itself must be known to
// compare against the switch tag) and enters Run mode once it matches
// an as-yet-unmatched switch.
func (it *Interpreter) runCase(c *TokenCursor) error {
	c.Next() // case
	searching := c.Mode == CaseSearch
	if searching {
		c.Mode = Run
	}
	val, err := it.ParseExpression(c)
	if err != nil {
		return err
	}
	if searching {
		c.Mode = CaseSearch
	}
	if c.Peek().Kind != token.COLON {
		return fmt.Errorf("%s: expected ':' after case value", c.Peek().Pos)
	}
	c.Next()
	if searching && !it.switchMatched && it.ReadInt(val) == it.ReadInt(it.switchTag) {
		it.switchMatched = true
		c.Mode = Run
	}
	return nil
}

func (it *Interpreter) runTypedef(c *TokenCursor) error {
	c.Next() // typedef
	base, err := it.TypeParseFront(c)
	if err != nil {
		return err
	}
	typ, name, err := it.TypeParseBack(c, base)
	if err != nil {
		return err
	}
	if name == nil {
		return fmt.Errorf("%s: typedef requires a name", c.Peek().Pos)
	}
	if err := it.expectSemi(c); err != nil {
		return err
	}
	if c.Mode == Run {
		it.DefineTypedef(name.Lit, typ, name.Pos)
	}
	return nil
}

func (it *Interpreter) runDelete(c *TokenCursor) error {
	c.Next() // delete
	v, err := it.ParseExpression(c)
	if err != nil {
		return err
	}
	if err := it.expectSemi(c); err != nil {
		return err
	}
	if c.Mode == Run {
		it.freeHeapValue(v)
	}
	return nil
}
