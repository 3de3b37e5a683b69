package interp

import (
	"fmt"

	"github.com/corytodd/picoc/internal/strtab"
	"github.com/corytodd/picoc/internal/token"
)

// macroDef is a function-like #define's parameter list and unexpanded
// replacement-token span. Object-like macros (a bare name bound to a
// constant) are handled entirely within runDefine and never produce a
// macroDef.
type macroDef struct {
	params []*strtab.Symbol
	body   []token.Token
}

// runInclude resolves a `#include <name>` or `#include "name"`
// directive purely against the registered library list (internal/
// stdlib's registrations): there is no filesystem header search, only
// the fixed set of names a library was registered under.
func (it *Interpreter) runInclude(c *TokenCursor) error {
	c.Next() // #include
	tk := c.Next()
	var name string
	switch tk.Kind {
	case token.STRING:
		name = tk.Lit
	case token.LT:
		// <name.h> form: the lexer hands back LT ... GT around bare
		// identifiers/dots, so reassemble until GT.
		for c.Peek().Kind != token.GT && c.Peek().Kind != token.EOF {
			name += c.Next().Lit
			if c.Peek().Kind == token.DOT {
				name += "."
				c.Next()
			}
		}
		if c.Peek().Kind == token.GT {
			c.Next()
		}
	default:
		return fmt.Errorf("%s: expected a header name after #include", tk.Pos)
	}
	if c.Mode == Run {
		if err := it.IncludeFile(name); err != nil {
			return &FatalError{Pos: tk.Pos, Message: err.Error()}
		}
	}
	return nil
}

// runDefine handles both #define shapes: a bare name bound to a
// constant integer/floating/string value (optionally negated), bound
// as a global, and a function-like
// macro whose name is immediately followed by '(' with no whitespace
// (LPARENMACRO), e.g. "#define SQ(x) ((x)*(x))".
func (it *Interpreter) runDefine(c *TokenCursor) error {
	c.Next() // #define
	nameTok := c.Next()
	if nameTok.Kind != token.IDENT {
		return fmt.Errorf("%s: expected a macro name after #define", nameTok.Pos)
	}
	if c.Peek().Kind == token.LPARENMACRO {
		return it.runDefineFunctionMacro(c, nameTok)
	}

	if c.Mode != Run {
		// consume exactly what the Run-mode grammar below consumes, so
		// the cursor stays aligned with a Run-mode pass over the source
		if c.Peek().Kind == token.MINUS {
			c.Next()
		}
		switch c.Peek().Kind {
		case token.INT, token.FLOAT, token.STRING:
			c.Next()
		}
		return nil
	}

	negate := false
	if c.Peek().Kind == token.MINUS {
		negate = true
		c.Next()
	}
	valTok := c.Peek()
	sym := it.Str.Register(nameTok.Lit)
	switch valTok.Kind {
	case token.INT:
		c.Next()
		n := valTok.Int
		if negate {
			n = -n
		}
		gv := it.allocGlobal(it.Types.Int)
		it.WriteInt(gv, n)
		it.Global.Set(sym, gv, declPos(nameTok.Pos))
	case token.FLOAT:
		c.Next()
		f := valTok.Float
		if negate {
			f = -f
		}
		gv := it.allocGlobal(it.Types.FP)
		it.WriteFloat(gv, f)
		it.Global.Set(sym, gv, declPos(nameTok.Pos))
	case token.STRING:
		c.Next()
		it.Global.Set(sym, it.newStringLiteral(valTok.Lit), declPos(nameTok.Pos))
	default:
		// a macro aliasing another identifier, or an empty/flag-style
		// define used only for #ifdef — nothing further to bind.
	}
	return nil
}

// runDefineFunctionMacro parses a function-like #define's parameter
// list and captures its replacement-list tokens verbatim (no
// expansion happens here; that is expandMacroBody's job at each call
// site). Since the lexer does not preserve newlines as tokens, the
// replacement list is bounded by physical source line: everything up
// to the next line or the next directive belongs to this macro, the
// same rule a real C preprocessor applies to a non-continued #define.
func (it *Interpreter) runDefineFunctionMacro(c *TokenCursor, nameTok token.Token) error {
	c.Next() // (
	var params []*strtab.Symbol
	for c.Peek().Kind != token.RPAREN {
		pTok := c.Next()
		if pTok.Kind != token.IDENT {
			return fmt.Errorf("%s: expected a macro parameter name", pTok.Pos)
		}
		params = append(params, it.Str.Register(pTok.Lit))
		if c.Peek().Kind == token.COMMA {
			c.Next()
			continue
		}
		break
	}
	if c.Peek().Kind != token.RPAREN {
		return fmt.Errorf("%s: expected ')'", c.Peek().Pos)
	}
	c.Next()

	defLine := nameTok.Pos.Line
	var body []token.Token
	for c.Peek().Pos.Line == defLine && !atLineEndMarker(c) {
		body = append(body, c.Next())
	}

	if c.Mode == Run {
		it.macros[it.Str.Register(nameTok.Lit)] = &macroDef{params: params, body: body}
	}
	return nil
}

// captureMacroArgs reads the raw (unparsed) token span of each
// top-level comma-separated argument in a macro call, stopping at the
// matching ')'. Arguments are captured as token slices rather than
// evaluated Values because a macro argument is substituted textually
// into the replacement list before anything is parsed, exactly as a C
// preprocessor does — "SQ(3+1)" must expand to "((3+1)*(3+1))", not to
// one pre-evaluated 4.
func (it *Interpreter) captureMacroArgs(c *TokenCursor) ([][]token.Token, error) {
	if c.Peek().Kind == token.RPAREN {
		return nil, nil
	}
	var args [][]token.Token
	var cur []token.Token
	depth := 0
	for {
		tk := c.Peek()
		switch tk.Kind {
		case token.EOF:
			return nil, fmt.Errorf("%s: unexpected end of input in macro call", tk.Pos)
		case token.LPAREN, token.LPARENMACRO, token.LBRACKET:
			depth++
		case token.RPAREN:
			if depth == 0 {
				args = append(args, cur)
				return args, nil
			}
			depth--
		case token.RBRACKET:
			depth--
		case token.COMMA:
			if depth == 0 {
				args = append(args, cur)
				cur = nil
				c.Next()
				continue
			}
		}
		cur = append(cur, tk)
		c.Next()
	}
}

// expandMacroBody splices each captured argument's token span in for
// its parameter's occurrences in the macro body, then parses the
// resulting token list as a fresh expression on its own cursor.
func (it *Interpreter) expandMacroBody(md *macroDef, args [][]token.Token, nameTok token.Token) (*Value, error) {
	if len(args) != len(md.params) {
		return nil, &FatalError{Pos: nameTok.Pos, Message: fmt.Sprintf(
			"macro %q expects %d argument(s), got %d", nameTok.Lit, len(md.params), len(args))}
	}

	expanded := make([]token.Token, 0, len(md.body))
	for _, bt := range md.body {
		if bt.Kind == token.IDENT {
			if idx := macroParamIndex(md.params, it.Str.Register(bt.Lit)); idx >= 0 {
				expanded = append(expanded, args[idx]...)
				continue
			}
		}
		expanded = append(expanded, bt)
	}
	expanded = append(expanded, token.Token{Kind: token.EOF})

	sub := &TokenCursor{Tokens: expanded, Pos: 0, Mode: Run}
	v, err := it.ParseExpression(sub)
	if err != nil {
		return nil, fmt.Errorf("expanding macro %q: %w", nameTok.Lit, err)
	}
	return v, nil
}

func macroParamIndex(params []*strtab.Symbol, sym *strtab.Symbol) int {
	for i, p := range params {
		if p == sym {
			return i
		}
	}
	return -1
}

// atLineEndMarker reports whether the next token cannot belong to a
// function-like macro's replacement list (a ';', EOF or another
// directive): since this lexer does not preserve newlines as tokens,
// runDefineFunctionMacro stops there as well as at the end of the
// #define's line.
func atLineEndMarker(c *TokenCursor) bool {
	switch c.Peek().Kind {
	case token.SEMICOLON, token.EOF, token.HASHINCLUDE, token.HASHDEFINE,
		token.HASHIF, token.HASHIFDEF, token.HASHIFNDEF, token.HASHENDIF:
		return true
	}
	return false
}
