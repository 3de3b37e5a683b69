package lexer_test

import (
	"testing"

	"github.com/corytodd/picoc/internal/lexer"
	"github.com/corytodd/picoc/internal/token"
	"github.com/stretchr/testify/require"
)

func kinds(t *testing.T, src string) []token.Kind {
	t.Helper()
	toks, err := lexer.Lex("<test>", src)
	require.NoError(t, err)
	var ks []token.Kind
	for _, tok := range toks {
		ks = append(ks, tok.Kind)
	}
	return ks
}

func TestLexBasicExpression(t *testing.T) {
	ks := kinds(t, "1+2*3;")
	require.Equal(t, []token.Kind{
		token.INT, token.PLUS, token.INT, token.ASTERISK, token.INT, token.SEMICOLON, token.EOF,
	}, ks)
}

func TestLexKeywordsAndIdentifiers(t *testing.T) {
	toks, err := lexer.Lex("<test>", "int main(int argc)")
	require.NoError(t, err)
	require.Equal(t, token.INTTYPE, toks[0].Kind)
	require.Equal(t, token.IDENT, toks[1].Kind)
	require.Equal(t, "main", toks[1].Lit)
}

func TestMacroOpenBracketDistinguishesFromWhitespacedParen(t *testing.T) {
	toks, err := lexer.Lex("<test>", "SQ(x)")
	require.NoError(t, err)
	require.Equal(t, token.LPARENMACRO, toks[1].Kind)

	toks2, err := lexer.Lex("<test>", "SQ (x)")
	require.NoError(t, err)
	require.Equal(t, token.LPAREN, toks2[1].Kind)
}

func TestLexNumberLiterals(t *testing.T) {
	toks, err := lexer.Lex("<test>", "0x1F 017 3.14 42u")
	require.NoError(t, err)
	require.Equal(t, int64(31), toks[0].Int)
	require.Equal(t, int64(15), toks[1].Int)
	require.InDelta(t, 3.14, toks[2].Float, 1e-9)
	require.Equal(t, int64(42), toks[3].Int)
}

func TestLexStringAndCharEscapes(t *testing.T) {
	toks, err := lexer.Lex("<test>", `"hi\n" '\0'`)
	require.NoError(t, err)
	require.Equal(t, "hi\n", toks[0].Lit)
	require.Equal(t, int64(0), toks[1].Int)
}

func TestLexLineAndColumnTracking(t *testing.T) {
	toks, err := lexer.Lex("<test>", "int x;\nint y;")
	require.NoError(t, err)
	// second "int" is on line 2
	var foundLine2 bool
	for _, tok := range toks {
		if tok.Kind == token.INTTYPE && tok.Pos.Line == 2 {
			foundLine2 = true
		}
	}
	require.True(t, foundLine2)
}

func TestStripShebang(t *testing.T) {
	src := "#!/usr/bin/env picoc\nint main(){}"
	out := lexer.StripShebang(src)
	require.Contains(t, out, "int main")
	require.NotContains(t, out, "#!")
}
