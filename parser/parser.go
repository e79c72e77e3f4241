// Package parser implements the recursive-descent parser producing a
// Borrowed ast.Program from a dual-mode lexer.Lexer, per spec.md §4.2.
//
// The parser exposes peek/advance/skip/switchMode over the lexer and
// builds AST fragments with plain recursive functions — no parser
// generator, no parse forest.
package parser

import (
	"strconv"

	"github.com/ardnew/exr/ast"
	"github.com/ardnew/exr/lexer"
	"github.com/ardnew/exr/token"
	"github.com/ardnew/exr/xerr"
)

// Parser drives a lexer.Lexer to build an ast.Program[ast.Borrowed].
type Parser struct {
	lex    *lexer.Lexer
	source string

	havePeek bool
	peekTok  token.Token
	peekEnd  token.Position
	peekErr  error

	lastEnd token.Position
}

// New creates a Parser over source, attributed to file in diagnostics.
func New(file, source string) *Parser {
	return &Parser{lex: lexer.New(file, source), source: source}
}

// Parse parses file/source into a Program.
func Parse(file, source string) (*ast.Program[ast.Borrowed], error) {
	return New(file, source).ParseProgram()
}

func (p *Parser) fill() error {
	if p.havePeek {
		return p.peekErr
	}

	tok, err := p.lex.Next()
	p.peekTok = tok
	p.peekEnd = p.lex.Pos()
	p.peekErr = err
	p.havePeek = true

	return err
}

// peek returns the next token without consuming it.
func (p *Parser) peek() (token.Token, error) {
	if err := p.fill(); err != nil {
		return token.Token{}, err
	}

	return p.peekTok, nil
}

// advance consumes and returns the next token.
func (p *Parser) advance() (token.Token, error) {
	if err := p.fill(); err != nil {
		return token.Token{}, err
	}

	tok := p.peekTok
	p.lastEnd = p.peekEnd
	p.havePeek = false

	return tok, nil
}

// skip consumes the next token iff it has kind k, else raises
// unexpected-token.
func (p *Parser) skip(k token.Kind) (token.Token, error) {
	tok, err := p.peek()
	if err != nil {
		return token.Token{}, err
	}

	if tok.Kind != k {
		return token.Token{}, p.unexpected(tok, k.String())
	}

	return p.advance()
}

// skipSymbol consumes the next token iff it is a Symbol with the given
// literal (used for the single-character punctuation `?`, `,`, `{`, `}`,
// `:` that appear bare in parameter lists and conditionals).
func (p *Parser) skipSymbol(lit string) (token.Token, error) {
	tok, err := p.peek()
	if err != nil {
		return token.Token{}, err
	}

	if tok.Kind != token.Symbol || tok.Literal != lit {
		return token.Token{}, p.unexpected(tok, "symbol "+strconv.Quote(lit))
	}

	return p.advance()
}

func (p *Parser) switchMode(m lexer.Mode) { p.lex.SwitchMode(m) }

func (p *Parser) unexpected(tok token.Token, expected string) error {
	return xerr.ErrUnexpectedToken.
		With(xerr.UserSite(tok.Pos)).
		Wrap(xerr.Plain("found " + tok.Kind.String() + ", expected " + expected))
}

func (p *Parser) skipNewlines() error {
	for {
		tok, err := p.peek()
		if err != nil {
			return err
		}

		if tok.Kind != token.Newline {
			return nil
		}

		if _, err := p.advance(); err != nil {
			return err
		}
	}
}

// ParseProgram parses the whole source as a top-level sequence of
// imports, mapping definitions, and output-producing expressions.
func (p *Parser) ParseProgram() (*ast.Program[ast.Borrowed], error) {
	prog := &ast.Program[ast.Borrowed]{}

	hasPrev := false
	pendingNewline := false
	prevOffset := 0
	prevLine := 0

	for {
		tok, err := p.peek()
		if err != nil {
			return nil, err
		}

		if tok.Kind == token.Newline {
			if hasPrev {
				pendingNewline = true
			}

			if _, err := p.advance(); err != nil {
				return nil, err
			}

			continue
		}

		if tok.Kind == token.EOF {
			break
		}

		switch tok.Kind {
		case token.KeywordImport:
			imp, err := p.parseImport()
			if err != nil {
				return nil, err
			}

			prog.Imports = append(prog.Imports, imp)
			hasPrev = false
			pendingNewline = false

		case token.KeywordMap:
			m, err := p.parseMapping()
			if err != nil {
				return nil, err
			}

			prog.Mappings = append(prog.Mappings, m)
			hasPrev = false
			pendingNewline = false

		case token.LBracket, token.String, token.TemplateDelim, token.BlockStart,
			token.Ident, token.Slash, token.KeywordIs:
			startOffset := tok.Pos.Offset
			startLine := tok.Pos.Line

			expr, err := p.parseExpr()
			if err != nil {
				return nil, err
			}

			item := ast.Item[ast.Borrowed]{Expr: expr}

			switch {
			case !hasPrev:
				item.Sep = ast.SepNone
			case pendingNewline:
				item.Sep = ast.SepNewline
			case startLine == prevLine:
				item.Sep = ast.SepLiteral
				item.Literal = ast.Borrowed(p.source[prevOffset:startOffset])
			default:
				item.Sep = ast.SepNewline
			}

			prog.Items = append(prog.Items, item)

			hasPrev = true
			pendingNewline = false
			prevOffset = p.lastEnd.Offset
			prevLine = p.lastEnd.Line

		default:
			return nil, p.unexpected(tok, "import, map, or expression")
		}
	}

	return prog, nil
}

// --- imports ---

func (p *Parser) parsePathIdent() (*ast.PathIdent[ast.Borrowed], error) {
	startTok, err := p.peek()
	if err != nil {
		return nil, err
	}

	root := ast.RootFile
	rawStart := startTok.Pos.Offset

	switch {
	case startTok.Kind == token.Symbol && startTok.Literal == ".":
		if _, err := p.advance(); err != nil {
			return nil, err
		}

		if _, err := p.skip(token.Slash); err != nil {
			return nil, err
		}

		root = ast.RootDir

	case startTok.Kind == token.Slash:
		if _, err := p.advance(); err != nil {
			return nil, err
		}

		root = ast.RootProject
	}

	var parts []ast.Borrowed

	rawEnd := rawStart

	for {
		idTok, err := p.skip(token.Ident)
		if err != nil {
			return nil, err
		}

		parts = append(parts, ast.Borrowed(idTok.Literal))
		rawEnd = p.lastEnd.Offset

		nt, err := p.peek()
		if err != nil {
			return nil, err
		}

		if nt.Kind != token.Slash {
			break
		}

		if _, err := p.advance(); err != nil {
			return nil, err
		}

		// A slash followed by `*` ends the path; the caller reads the `*`.
		if nt, err = p.peek(); err != nil {
			return nil, err
		} else if nt.Kind == token.Symbol && nt.Literal == "*" {
			break
		}
	}

	raw := p.source[rawStart:rawEnd]

	return &ast.PathIdent[ast.Borrowed]{
		Root: root, Parts: parts, Raw: ast.Borrowed(raw), Pos: startTok.Pos,
	}, nil
}

func (p *Parser) parseImport() (*ast.Import[ast.Borrowed], error) {
	kw, err := p.skip(token.KeywordImport)
	if err != nil {
		return nil, err
	}

	path, err := p.parsePathIdent()
	if err != nil {
		return nil, err
	}

	namespace := false

	nt, err := p.peek()
	if err != nil {
		return nil, err
	}

	// parsePathIdent has already consumed the slash of a trailing `/*`.
	if nt.Kind == token.Symbol && nt.Literal == "*" && p.source[p.lastEnd.Offset-1] == '/' {
		if _, err := p.skipSymbol("*"); err != nil {
			return nil, err
		}

		namespace = true
	}

	return &ast.Import[ast.Borrowed]{Path: path, Namespace: namespace, Pos: kw.Pos}, nil
}

// --- mappings and parameters ---

func (p *Parser) parseMapping() (*ast.Mapping[ast.Borrowed], error) {
	kw, err := p.skip(token.KeywordMap)
	if err != nil {
		return nil, err
	}

	nameTok, err := p.skip(token.Ident)
	if err != nil {
		return nil, err
	}

	var params []*ast.Parameter[ast.Borrowed]

	for {
		nt, err := p.peek()
		if err != nil {
			return nil, err
		}

		if nt.Kind == token.FatArrow {
			break
		}

		param, err := p.parseParameter()
		if err != nil {
			return nil, err
		}

		params = append(params, param)
	}

	if _, err := p.skip(token.FatArrow); err != nil {
		return nil, err
	}

	translation, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	return &ast.Mapping[ast.Borrowed]{
		Name: ast.Borrowed(nameTok.Literal), Parameters: params,
		Translation: translation, Pos: kw.Pos,
	}, nil
}

// parseParameter accepts the three parameter-descriptor surface forms:
//
//	bare identifier        → literal identifier descriptor
//	bare single character  → literal symbol descriptor
//	[name] / [name:ident]  → expr / ident placeholder, capturing a local
//	                          name; an optional trailing `?`, `*`, or
//	                          integer count is the repetition marker.
func (p *Parser) parseParameter() (*ast.Parameter[ast.Borrowed], error) {
	tok, err := p.peek()
	if err != nil {
		return nil, err
	}

	switch tok.Kind {
	case token.LBracket:
		if _, err := p.advance(); err != nil {
			return nil, err
		}

		nameTok, err := p.skip(token.Ident)
		if err != nil {
			return nil, err
		}

		kind := ast.ParamExpr

		nt, err := p.peek()
		if err != nil {
			return nil, err
		}

		if nt.Kind == token.Symbol && nt.Literal == ":" {
			if _, err := p.advance(); err != nil {
				return nil, err
			}

			tagTok, err := p.skip(token.Ident)
			if err != nil {
				return nil, err
			}

			if tagTok.Literal != "ident" {
				return nil, p.unexpected(tagTok, `"ident"`)
			}

			kind = ast.ParamIdent
		}

		if _, err := p.skip(token.RBracket); err != nil {
			return nil, err
		}

		param := &ast.Parameter[ast.Borrowed]{
			Kind: kind, LocalName: ast.Borrowed(nameTok.Literal), Pos: tok.Pos,
		}

		rt, err := p.peek()
		if err != nil {
			return nil, err
		}

		switch {
		case rt.Kind == token.Symbol && rt.Literal == "?":
			p.advance() //nolint:errcheck // token already peeked as Symbol "?"
			param.Repeat = ast.RepeatOptional
		case rt.Kind == token.Symbol && rt.Literal == "*":
			p.advance() //nolint:errcheck
			param.Repeat = ast.RepeatStar
		case rt.Kind == token.Int:
			n, convErr := strconv.Atoi(rt.Literal)
			if convErr != nil {
				return nil, p.unexpected(rt, "repetition count")
			}

			p.advance() //nolint:errcheck
			param.Repeat = ast.RepeatCount
			param.Count = n
		}

		return param, nil

	case token.Ident:
		p.advance() //nolint:errcheck

		return &ast.Parameter[ast.Borrowed]{
			Kind: ast.ParamLiteralIdent, LiteralIdent: ast.Borrowed(tok.Literal), Pos: tok.Pos,
		}, nil

	case token.Symbol:
		p.advance() //nolint:errcheck

		r := []rune(tok.Literal)[0]

		return &ast.Parameter[ast.Borrowed]{
			Kind: ast.ParamLiteralSymbol, LiteralSymbol: r, Pos: tok.Pos,
		}, nil

	default:
		return nil, p.unexpected(tok, "parameter descriptor")
	}
}

// --- expressions ---

func isArgTerminator(tok token.Token) bool {
	switch tok.Kind {
	case token.RBracket, token.BlockEnd, token.KeywordIs, token.KeywordMap,
		token.KeywordImport, token.Newline, token.EOF:
		return true
	default:
		return false
	}
}

func (p *Parser) stringExprFromToken(tok token.Token) *ast.Expr[ast.Borrowed] {
	if tok.Len == 1 {
		return &ast.Expr[ast.Borrowed]{
			Kind: ast.KindString, Str: ast.Borrowed(lexer.DecodeEscapes(tok.Literal)), Pos: tok.Pos,
		}
	}

	return &ast.Expr[ast.Borrowed]{Kind: ast.KindStringRef, StrRef: ast.Borrowed(tok.Literal), Pos: tok.Pos}
}

// parseExpr parses one primary expression; when the head is a path
// identifier it greedily consumes trailing arguments (a mapping
// application), per spec.md §4.2.
func (p *Parser) parseExpr() (*ast.Expr[ast.Borrowed], error) {
	tok, err := p.peek()
	if err != nil {
		return nil, err
	}

	switch {
	case tok.Kind == token.LBracket:
		p.advance() //nolint:errcheck

		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}

		if _, err := p.skip(token.RBracket); err != nil {
			return nil, err
		}

		return inner, nil

	case tok.Kind == token.TemplateDelim:
		return p.parseTemplateString()

	case tok.Kind == token.KeywordIs:
		return p.parseConditional()

	case tok.Kind == token.String:
		p.advance() //nolint:errcheck

		return p.stringExprFromToken(tok), nil

	case tok.Kind == token.Int:
		p.advance() //nolint:errcheck

		n, convErr := strconv.ParseInt(tok.Literal, 10, 64)
		if convErr != nil {
			return nil, p.unexpected(tok, "integer")
		}

		return &ast.Expr[ast.Borrowed]{Kind: ast.KindInt, Int: n, Pos: tok.Pos}, nil

	case tok.Kind == token.BlockStart:
		return p.parseBlock()

	case tok.Kind == token.Ident || tok.Kind == token.Slash ||
		(tok.Kind == token.Symbol && tok.Literal == "."):
		return p.parseApplication()

	default:
		return nil, p.unexpected(tok, "expression")
	}
}

// parseApplication parses a path identifier head and, if followed by
// arguments, the full mapping-application; a zero-argument head becomes a
// bare path-identifier expression.
func (p *Parser) parseApplication() (*ast.Expr[ast.Borrowed], error) {
	path, err := p.parsePathIdent()
	if err != nil {
		return nil, err
	}

	var args []*ast.Expr[ast.Borrowed]

	for {
		tok, err := p.peek()
		if err != nil {
			return nil, err
		}

		if isArgTerminator(tok) {
			break
		}

		arg, err := p.parseArgument()
		if err != nil {
			return nil, err
		}

		args = append(args, arg)
	}

	if len(args) == 0 {
		return &ast.Expr[ast.Borrowed]{Kind: ast.KindPathIdent, Path: path, Pos: path.Pos}, nil
	}

	return &ast.Expr[ast.Borrowed]{
		Kind: ast.KindApplication,
		App:  &ast.Application[ast.Borrowed]{Name: path, Args: args, Pos: path.Pos},
		Pos:  path.Pos,
	}, nil
}

// parseArgument parses one argument in a mapping-application's argument
// list. A bare identifier here is always a zero-argument reference — it
// never swallows further tokens as its own arguments, per spec.md §4.2.
func (p *Parser) parseArgument() (*ast.Expr[ast.Borrowed], error) {
	tok, err := p.peek()
	if err != nil {
		return nil, err
	}

	switch tok.Kind {
	case token.LBracket:
		return p.parseExpr()

	case token.TemplateDelim:
		return p.parseTemplateString()

	case token.String:
		p.advance() //nolint:errcheck

		return p.stringExprFromToken(tok), nil

	case token.Int:
		p.advance() //nolint:errcheck

		n, convErr := strconv.ParseInt(tok.Literal, 10, 64)
		if convErr != nil {
			return nil, p.unexpected(tok, "integer")
		}

		return &ast.Expr[ast.Borrowed]{Kind: ast.KindInt, Int: n, Pos: tok.Pos}, nil

	case token.BlockStart:
		return p.parseBlock()

	case token.Ident, token.Slash:
		path, err := p.parsePathIdent()
		if err != nil {
			return nil, err
		}

		return &ast.Expr[ast.Borrowed]{Kind: ast.KindPathIdent, Path: path, Pos: path.Pos}, nil

	case token.Symbol:
		p.advance() //nolint:errcheck

		r := []rune(tok.Literal)[0]

		return &ast.Expr[ast.Borrowed]{Kind: ast.KindSymbol, Sym: r, Pos: tok.Pos}, nil

	default:
		return nil, p.unexpected(tok, "argument")
	}
}

// parseTemplateString parses a `'...'`-delimited template; the opening
// run's rune count selects which closing run ends it, per spec.md §4.2.
func (p *Parser) parseTemplateString() (*ast.Expr[ast.Borrowed], error) {
	openTok, err := p.skip(token.TemplateDelim)
	if err != nil {
		return nil, err
	}

	n := openTok.Len

	p.switchMode(lexer.Raw)

	var pieces []ast.TemplatePiece[ast.Borrowed]

	for {
		tok, err := p.peek()
		if err != nil {
			return nil, err
		}

		switch tok.Kind {
		case token.TemplateDelim:
			p.advance() //nolint:errcheck

			if tok.Len == n {
				p.switchMode(lexer.Expr)

				return &ast.Expr[ast.Borrowed]{
					Kind:     ast.KindTemplateString,
					Template: &ast.TemplateString[ast.Borrowed]{Pieces: pieces, Pos: openTok.Pos},
					Pos:      openTok.Pos,
				}, nil
			}

			pieces = append(pieces, ast.TemplatePiece[ast.Borrowed]{Kind: ast.PieceRaw, Raw: ast.Borrowed(tok.Literal)})

		case token.RawPart:
			p.advance() //nolint:errcheck
			pieces = append(pieces, ast.TemplatePiece[ast.Borrowed]{Kind: ast.PieceRaw, Raw: ast.Borrowed(tok.Literal)})

		case token.Escaped:
			p.advance() //nolint:errcheck

			if tok.Literal != "" {
				r := []rune(tok.Literal)[0]
				pieces = append(pieces, ast.TemplatePiece[ast.Borrowed]{Kind: ast.PieceChar, Char: r})
			}

		case token.Newline:
			p.advance() //nolint:errcheck
			pieces = append(pieces, ast.TemplatePiece[ast.Borrowed]{Kind: ast.PieceChar, Char: '\n'})

		case token.ExprStart:
			p.advance() //nolint:errcheck
			p.switchMode(lexer.Expr)

			inner, err := p.parseExpr()
			if err != nil {
				return nil, err
			}

			if _, err := p.skip(token.RBracket); err != nil {
				return nil, err
			}

			p.switchMode(lexer.Raw)
			pieces = append(pieces, ast.TemplatePiece[ast.Borrowed]{Kind: ast.PieceExpr, Expr: inner})

		case token.EOF:
			return nil, xerr.ErrUnexpectedEOF.With(xerr.UserSite(tok.Pos))

		default:
			return nil, p.unexpected(tok, "template content")
		}
	}
}

// parseBlock parses a `[[ ... ]]` sequence of newline-separated
// expressions.
func (p *Parser) parseBlock() (*ast.Expr[ast.Borrowed], error) {
	openTok, err := p.skip(token.BlockStart)
	if err != nil {
		return nil, err
	}

	var exprs []*ast.Expr[ast.Borrowed]

	for {
		if err := p.skipNewlines(); err != nil {
			return nil, err
		}

		tok, err := p.peek()
		if err != nil {
			return nil, err
		}

		if tok.Kind == token.BlockEnd {
			p.advance() //nolint:errcheck

			break
		}

		if tok.Kind == token.EOF {
			return nil, xerr.ErrUnexpectedEOF.With(xerr.UserSite(tok.Pos))
		}

		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}

		exprs = append(exprs, expr)
	}

	return &ast.Expr[ast.Borrowed]{
		Kind:  ast.KindBlock,
		Block: &ast.Block[ast.Borrowed]{Exprs: exprs, Pos: openTok.Pos},
		Pos:   openTok.Pos,
	}, nil
}

// parseConditional parses `is <cond> [ .. pattern ? translation , ... .. _
// ? default ]`, or the built-in comma/brace form `is <cond> { pattern ?
// translation , ... , _ ? default }`; both build the same ast.Conditional.
func (p *Parser) parseConditional() (*ast.Expr[ast.Borrowed], error) {
	kw, err := p.skip(token.KeywordIs)
	if err != nil {
		return nil, err
	}

	cond, err := p.parseArgument()
	if err != nil {
		return nil, err
	}

	delim, err := p.peek()
	if err != nil {
		return nil, err
	}

	brace := delim.Kind == token.Symbol && delim.Literal == "{"
	if brace {
		if _, err := p.advance(); err != nil {
			return nil, err
		}
	} else if _, err := p.skip(token.LBracket); err != nil {
		return nil, err
	}

	closer := token.RBracket

	var branches []ast.Branch[ast.Borrowed]

	for {
		if err := p.skipNewlines(); err != nil {
			return nil, err
		}

		tok, err := p.peek()
		if err != nil {
			return nil, err
		}

		if brace && tok.Kind == token.Symbol && tok.Literal == "}" {
			p.advance() //nolint:errcheck

			break
		}

		if !brace && tok.Kind == closer {
			p.advance() //nolint:errcheck

			break
		}

		if !brace {
			if _, err := p.skip(token.DotDot); err != nil {
				return nil, err
			}
		}

		wildTok, err := p.peek()
		if err != nil {
			return nil, err
		}

		branch := ast.Branch[ast.Borrowed]{}

		if wildTok.Kind == token.Ident && wildTok.Literal == "_" {
			p.advance() //nolint:errcheck

			branch.Wildcard = true
		} else {
			pattern, err := p.parseExpr()
			if err != nil {
				return nil, err
			}

			branch.Pattern = pattern
		}

		if _, err := p.skipSymbol("?"); err != nil {
			return nil, err
		}

		translation, err := p.parseExpr()
		if err != nil {
			return nil, err
		}

		branch.Translation = translation
		branches = append(branches, branch)

		nt, err := p.peek()
		if err != nil {
			return nil, err
		}

		if nt.Kind == token.Symbol && nt.Literal == "," {
			p.advance() //nolint:errcheck
		}
	}

	return &ast.Expr[ast.Borrowed]{
		Kind: ast.KindConditional,
		Cond: &ast.Conditional[ast.Borrowed]{Cond: cond, Branches: branches, Pos: kw.Pos},
		Pos:  kw.Pos,
	}, nil
}
