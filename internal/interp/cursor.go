package interp

import "github.com/corytodd/picoc/internal/token"

// TokenCursor is a position into a fixed token slice plus the run-mode
// state needed to re-enter a parse at the same spot later. picoc's
// parser works directly off a byte pointer into source text and
// re-derives tokens on demand; this port instead lexes a file once
// into a []token.Token and carries an index, which gives the same
// "copy the cursor, parse, restore the cursor" re-entry trick
// (ParserCopyPos / ParserCopy) without re-lexing.
type TokenCursor struct {
	Tokens []token.Token
	Pos    int
	Mode   RunMode
}

// RunMode mirrors picoc's run-mode state machine: the parser and
// evaluator consult Mode to decide whether a statement actually
// executes or is merely scanned over (e.g. to find a matching brace).
type RunMode int

const (
	Run RunMode = iota
	Skip
	Return
	Break
	Continue
	CaseSearch
	Goto
)

func (m RunMode) String() string {
	switch m {
	case Run:
		return "run"
	case Skip:
		return "skip"
	case Return:
		return "return"
	case Break:
		return "break"
	case Continue:
		return "continue"
	case CaseSearch:
		return "case-search"
	case Goto:
		return "goto"
	default:
		return "invalid"
	}
}

// NewCursor wraps a token slice at position 0 in Run mode.
func NewCursor(toks []token.Token) *TokenCursor {
	return &TokenCursor{Tokens: toks, Pos: 0, Mode: Run}
}

// Peek returns the token at the cursor without advancing.
func (c *TokenCursor) Peek() token.Token {
	if c.Pos >= len(c.Tokens) {
		return token.Token{Kind: token.EOF}
	}
	return c.Tokens[c.Pos]
}

// PeekAt returns the token offset positions ahead of the cursor
// without advancing (used by the expression evaluator's lookahead).
func (c *TokenCursor) PeekAt(offset int) token.Token {
	i := c.Pos + offset
	if i >= len(c.Tokens) || i < 0 {
		return token.Token{Kind: token.EOF}
	}
	return c.Tokens[i]
}

// Next returns the current token and advances the cursor.
func (c *TokenCursor) Next() token.Token {
	t := c.Peek()
	if c.Pos < len(c.Tokens) {
		c.Pos++
	}
	return t
}

// AtEOF reports whether the cursor has consumed every token.
func (c *TokenCursor) AtEOF() bool { return c.Pos >= len(c.Tokens) }

// Save returns a snapshot that Restore can later return to, the Go
// analogue of ParserCopyPos: used by for/do-while/switch to re-parse
// their controlling clause or body on each iteration.
func (c *TokenCursor) Save() int { return c.Pos }

// Restore rewinds the cursor to a previously Saved position.
func (c *TokenCursor) Restore(mark int) { c.Pos = mark }

// Fork returns an independent copy of the cursor sharing the same
// underlying token slice, the analogue of ParserCopy: used when a
// nested parse (e.g. scanning a skipped block) must not disturb the
// caller's position.
func (c *TokenCursor) Fork() *TokenCursor {
	return &TokenCursor{Tokens: c.Tokens, Pos: c.Pos, Mode: c.Mode}
}

// isOpenParen reports whether k opens a parenthesized group: LPAREN
// and LPARENMACRO ("(" directly after an identifier, no whitespace)
// are the same grammatical token everywhere in the parser except the
// #define header, which alone needs the whitespace distinction to
// tell a function-like macro from an object-like one.
func isOpenParen(k token.Kind) bool {
	return k == token.LPAREN || k == token.LPARENMACRO
}
