package interp

import (
	"fmt"

	"github.com/corytodd/picoc/internal/lexer"
	"github.com/corytodd/picoc/internal/token"
	"github.com/corytodd/picoc/internal/types"
)

// Parse lexes and runs a whole source file at the top level: global
// declarations, typedefs, #include/#define directives, function
// definitions (stored for later calls) or prototypes (recorded
// without a body), and any other top-level statement, which is run
// as it is reached. It does not call main(); use CallMain for that.
func (it *Interpreter) Parse(filename, src string) (err error) {
	defer it.Recover(&err)
	src = lexer.StripShebang(src)
	toks, lexErr := lexer.Lex(filename, src)
	if lexErr != nil {
		return lexErr
	}
	c := NewCursor(toks)
	return it.parseTopLevel(c)
}

// ParseInteractive parses and immediately runs one top-level
// declaration or statement from src, the REPL entry point
// (PicocParseInteractiveNoStartPrompt).
func (it *Interpreter) ParseInteractive(filename, src string) (err error) {
	defer it.Recover(&err)
	toks, lexErr := lexer.Lex(filename, src)
	if lexErr != nil {
		return lexErr
	}
	c := NewCursor(toks)
	for !c.AtEOF() {
		if err := it.parseTopLevelItem(c); err != nil {
			return err
		}
	}
	return nil
}

func (it *Interpreter) parseTopLevel(c *TokenCursor) error {
	for !c.AtEOF() {
		if err := it.parseTopLevelItem(c); err != nil {
			return err
		}
	}
	return nil
}

func (it *Interpreter) parseTopLevelItem(c *TokenCursor) error {
	switch c.Peek().Kind {
	case token.EOF:
		c.Next()
		return nil
	case token.HASHINCLUDE:
		return it.runInclude(c)
	case token.HASHDEFINE:
		return it.runDefine(c)
	case token.HASHIF, token.HASHIFDEF, token.HASHIFNDEF, token.HASHELSE, token.HASHELIF, token.HASHENDIF:
		return it.skipPreprocessorConditional(c)
	case token.TYPEDEF:
		return it.runTypedef(c)
	case token.STRUCTTYPE, token.UNIONTYPE, token.ENUMTYPE:
		// a bare "struct Foo { ... };" with no declarator
		save := c.Save()
		base, err := it.TypeParseFront(c)
		if err != nil {
			return err
		}
		if c.Peek().Kind == token.SEMICOLON {
			c.Next()
			_ = base
			return nil
		}
		c.Restore(save)
	}
	tk := c.Peek()
	if tk.Kind == token.IDENT {
		if _, ok := it.lookupTypedef(tk.Lit); !ok {
			return it.runStatement(c)
		}
	} else if !isTypeStart(tk.Kind) && tk.Kind != token.STATICTYPE && tk.Kind != token.EXTERNTYPE &&
		tk.Kind != token.AUTOTYPE && tk.Kind != token.REGISTERTYPE {
		return it.runStatement(c)
	}
	return it.parseGlobalDeclOrFunc(c)
}

// parseGlobalDeclOrFunc parses a shared base type followed by one
// declarator; if that declarator is immediately followed by '(' it is
// a function prototype or definition, otherwise it is a global
// variable declaration (with the same comma/initializer grammar as a
// local one).
func (it *Interpreter) parseGlobalDeclOrFunc(c *TokenCursor) error {
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
			return fmt.Errorf("%s: expected a declarator", c.Peek().Pos)
		}
		if isOpenParen(c.Peek().Kind) {
			return it.parseFunctionRest(c, typ, name)
		}

		hasInit := c.Peek().Kind == token.ASSIGN
		if hasInit {
			c.Next()
			typ, err = it.resolveArrayInitSize(c, typ)
			if err != nil {
				return err
			}
		}

		sym := it.Str.Register(name.Lit)
		v, err := it.VariableDefine(sym, typ, name.Pos, true)
		if err != nil {
			return err
		}
		if hasInit {
			if err := it.runInitializer(c, v); err != nil {
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

// parseFunctionRest parses a parameter list after a function name and
// either a ';' (prototype) or a '{' body, applying the same
// prototype-then-definition reconciliation picoc does: a definition
// may follow a prototype (the parameter lists are not compared), a
// second definition of a function that already has a body is an
// error, and main()'s signature is restricted to the argc/argv/envp
// forms this port actually supports.
func (it *Interpreter) parseFunctionRest(c *TokenCursor, retType *types.ValueType, nameTok *token.Token) error {
	c.Next() // (
	fd := &FuncDef{Name: it.Str.Register(nameTok.Lit), ReturnType: retType}

	if c.Peek().Kind == token.VOIDTYPE && c.PeekAt(1).Kind == token.RPAREN {
		c.Next()
		c.Next()
	} else {
		for c.Peek().Kind != token.RPAREN {
			if c.Peek().Kind == token.ELLIPSIS {
				c.Next()
				fd.VarArgs = true
				break
			}
			pbase, err := it.TypeParseFront(c)
			if err != nil {
				return err
			}
			ptyp, pname, err := it.TypeParseBack(c, pbase)
			if err != nil {
				return err
			}
			fd.ParamTypes = append(fd.ParamTypes, ptyp)
			if pname != nil {
				fd.ParamNames = append(fd.ParamNames, it.Str.Register(pname.Lit))
			} else {
				fd.ParamNames = append(fd.ParamNames, it.Str.Register(""))
			}
			if len(fd.ParamTypes) > MaxParameters {
				return fmt.Errorf("%s: too many parameters to %s (max %d)", nameTok.Pos, nameTok.Lit, MaxParameters)
			}
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
	}

	if nameTok.Lit == "main" {
		if err := checkMainSignature(fd, nameTok); err != nil {
			return err
		}
	}

	if c.Peek().Kind == token.SEMICOLON {
		c.Next()
		it.registerFunc(fd, nameTok)
		return nil
	}

	if c.Peek().Kind != token.LBRACE {
		return fmt.Errorf("%s: expected '{' or ';' after function parameters", c.Peek().Pos)
	}
	if prev, _, ok := it.Global.Get(fd.Name); ok {
		if pv, ok := prev.(*Value); ok && pv.Func != nil && pv.Func.Body != nil {
			return fmt.Errorf("%s: '%s' is already defined", nameTok.Pos, nameTok.Lit)
		}
	}
	bodyStart := c.Save()
	skipBalancedBlock(c)
	fd.Body = &TokenCursor{Tokens: c.Tokens, Pos: bodyStart, Mode: Run}
	it.registerFunc(fd, nameTok)
	return nil
}

// checkMainSignature restricts main to the forms this port's fixed
// argc/argv startup snippets can satisfy: main(void), main(int argc,
// char **argv), or main(int argc, char **argv, char **envp), each
// returning int or void.
func checkMainSignature(fd *FuncDef, nameTok *token.Token) error {
	if b := fd.ReturnType.Base; b != types.TypeInt && b != types.TypeVoid {
		return fmt.Errorf("%s: main must return int or void", nameTok.Pos)
	}
	switch len(fd.ParamTypes) {
	case 0, 2, 3:
	default:
		return fmt.Errorf("%s: main must take 0, 2, or 3 parameters", nameTok.Pos)
	}
	for i, pt := range fd.ParamTypes {
		ok := pt.Base == types.TypeInt
		if i > 0 {
			ok = (pt.Base == types.TypePointer || pt.Base == types.TypeArray) &&
				pt.FromType.Base == types.TypePointer && pt.FromType.FromType.Base == types.TypeChar
		}
		if !ok {
			return fmt.Errorf("%s: main's parameters must be (int, char **) or (int, char **, char **)", nameTok.Pos)
		}
	}
	return nil
}

func (it *Interpreter) registerFunc(fd *FuncDef, nameTok *token.Token) {
	v := &Value{Typ: it.Types.Function, Flags: FlagIsLValue, Func: fd}
	if !it.Global.Set(fd.Name, v, declPos(nameTok.Pos)) {
		existing, _, _ := it.Global.Get(fd.Name)
		if ev, ok := existing.(*Value); ok && ev.Func != nil {
			if fd.Body != nil {
				ev.Func.Body = fd.Body
				ev.Func.ParamNames = fd.ParamNames
				ev.Func.ParamTypes = fd.ParamTypes
			}
		}
	}
}

// skipBalancedBlock advances c over a `{ ... }` without interpreting
// it, used to locate a function body's end when only recording it for
// later calls.
func skipBalancedBlock(c *TokenCursor) {
	c.Next() // {
	depth := 1
	for depth > 0 && !c.AtEOF() {
		switch c.Next().Kind {
		case token.LBRACE:
			depth++
		case token.RBRACE:
			depth--
		}
	}
}

func (it *Interpreter) skipPreprocessorConditional(c *TokenCursor) error {
	// Conditional compilation directives are not evaluated and nothing
	// is skipped: only the directive token itself is consumed, so its
	// condition operand (if any) and every branch up to #endif are
	// parsed as ordinary top-level code.
	c.Next()
	return nil
}
