// Package ast defines the exr abstract syntax tree.
//
// Every node type is generic over a representation marker: Borrowed (a
// slice produced directly by the lexer, sharing memory with the token
// stream) or Owned (a string produced by strings.Clone, so it no longer
// keeps the parser's source buffer alive). ToOwned performs the one total,
// deep conversion from Borrowed to Owned; it runs at module boundaries and
// whenever a fragment is stored in a scoped context, per spec.md §4.3.
package ast

import (
	"strings"

	"github.com/ardnew/exr/token"
)

// Text is satisfied by both representation markers.
type Text interface{ ~string }

// Borrowed marks AST content that shares memory with the lexer's token
// stream; cheap to produce, but must not outlive its source buffer.
type Borrowed string

// Owned marks AST content that has been copied out of the source buffer
// and is safe to store indefinitely (module registry, scoped contexts).
type Owned string

// Own copies s into a freestanding Owned string.
func Own[T Text](s T) Owned { return Owned(strings.Clone(string(s))) }

// Root identifies which anchor a PathIdent's parts are relative to.
type Root int

const (
	// RootFile is the default: relative to the current file.
	RootFile Root = iota
	// RootDir is a leading "./", relative to the current directory.
	RootDir
	// RootProject is a leading "/", relative to the project root (reserved,
	// see spec.md §6).
	RootProject
)

// PathIdent is a rooted, slash-separated qualified name. Its Name is its
// last part; two PathIdents are equal iff their roots and parts match.
type PathIdent[T Text] struct {
	Root  Root
	Parts []T
	Raw   T // verbatim source text, retained for diagnostics
	Pos   token.Position
}

// Name returns the identifier's final path segment.
func (p *PathIdent[T]) Name() T {
	if p == nil || len(p.Parts) == 0 {
		var zero T

		return zero
	}

	return p.Parts[len(p.Parts)-1]
}

// Equal reports whether a and b share a root and identical parts.
func Equal[T Text](a, b *PathIdent[T]) bool {
	if a == nil || b == nil {
		return a == b
	}

	if a.Root != b.Root || len(a.Parts) != len(b.Parts) {
		return false
	}

	for i := range a.Parts {
		if string(a.Parts[i]) != string(b.Parts[i]) {
			return false
		}
	}

	return true
}

func ownPathIdent[T Text](p *PathIdent[T]) *PathIdent[Owned] {
	if p == nil {
		return nil
	}

	parts := make([]Owned, len(p.Parts))
	for i, part := range p.Parts {
		parts[i] = Own(part)
	}

	return &PathIdent[Owned]{Root: p.Root, Parts: parts, Raw: Own(p.Raw), Pos: p.Pos}
}

// Kind discriminates the variants of Expr.
type Kind int

const (
	// KindString is a fully decoded, self-contained string literal.
	KindString Kind = iota
	// KindStringRef is a string literal with no escapes, kept as a cheap
	// slice of the source between its quotes.
	KindStringRef
	// KindTemplateString is a `'...'`-delimited template.
	KindTemplateString
	// KindInt is a 64-bit signed integer literal.
	KindInt
	// KindPathIdent is a bare qualified name in expression position.
	KindPathIdent
	// KindSymbol is a single literal-symbol character, only valid inside an
	// argument list.
	KindSymbol
	// KindApplication is a mapping application `name arg...`.
	KindApplication
	// KindBlock is a `[[ ... ]]` sequence.
	KindBlock
	// KindConditional is an `is` expression.
	KindConditional
)

// String names a Kind for debug dumps.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "String"
	case KindStringRef:
		return "StringRef"
	case KindTemplateString:
		return "TemplateString"
	case KindInt:
		return "Int"
	case KindPathIdent:
		return "PathIdent"
	case KindSymbol:
		return "Symbol"
	case KindApplication:
		return "Application"
	case KindBlock:
		return "Block"
	case KindConditional:
		return "Conditional"
	default:
		return "Unknown"
	}
}

// Expr is the tagged union of every expression form in spec.md §3.
// Exactly one payload field is meaningful, selected by Kind — the same
// discriminated-struct idiom as the reference stack's AST node type.
type Expr[T Text] struct {
	Kind Kind
	Pos  token.Position

	Str      T // KindString
	StrRef   T // KindStringRef: quoted source text, which has no escapes
	Template *TemplateString[T]
	Int      int64
	Path     *PathIdent[T]
	Sym      rune
	App      *Application[T]
	Block    *Block[T]
	Cond     *Conditional[T]
}

// TemplatePieceKind discriminates TemplatePiece.
type TemplatePieceKind int

const (
	// PieceRaw is a maximal literal run.
	PieceRaw TemplatePieceKind = iota
	// PieceChar is a single escaped character or newline.
	PieceChar
	// PieceExpr is a nested spliced expression.
	PieceExpr
)

// TemplatePiece is one element of a TemplateString.
type TemplatePiece[T Text] struct {
	Kind TemplatePieceKind
	Raw  T
	Char rune
	Expr *Expr[T]
}

// TemplateString is an ordered sequence of literal and spliced pieces.
type TemplateString[T Text] struct {
	Pieces []TemplatePiece[T]
	Pos    token.Position
}

// Application is a mapping invocation by name with positional arguments.
type Application[T Text] struct {
	Name *PathIdent[T]
	Args []*Expr[T]
	Pos  token.Position
}

// Block is a `[[ ... ]]` sequence, newline-joined when rendered.
type Block[T Text] struct {
	Exprs []*Expr[T]
	Pos   token.Position
}

// Branch is one arm of a Conditional.
type Branch[T Text] struct {
	Wildcard    bool
	Pattern     *Expr[T] // nil when Wildcard
	Translation *Expr[T]
}

// Conditional is an `is` expression: a condition plus ordered branches.
type Conditional[T Text] struct {
	Cond     *Expr[T]
	Branches []Branch[T]
	Pos      token.Position
}

// ParamKind discriminates Parameter.
type ParamKind int

const (
	// ParamExpr captures an evaluated argument under a local name.
	ParamExpr ParamKind = iota
	// ParamIdent captures an identifier-shaped argument under a local name.
	ParamIdent
	// ParamLiteralIdent requires the argument to equal a literal identifier.
	ParamLiteralIdent
	// ParamLiteralSymbol requires the argument to equal a literal symbol.
	ParamLiteralSymbol
)

// Repeat discriminates a parameter's repetition marker.
type Repeat int

const (
	// RepeatNone is the unit case: exactly one argument.
	RepeatNone Repeat = iota
	// RepeatOptional is `?`: the parameter binds its matching argument if
	// present, or binds nothing if omitted — see ast.MatchArgs.
	RepeatOptional
	// RepeatStar is `*`: zero or more arguments. It parses, but resolving
	// an overload that declares one raises xerr.ErrUnsupportedRepeat —
	// see spec.md §9 / SPEC_FULL.md §4.
	RepeatStar
	// RepeatCount is an explicit integer count. It parses, but resolving
	// an overload that declares one raises xerr.ErrUnsupportedRepeat,
	// same as RepeatStar.
	RepeatCount
)

// Parameter is one formal parameter descriptor of a mapping.
type Parameter[T Text] struct {
	Kind          ParamKind
	LocalName     T // ParamExpr / ParamIdent
	LiteralIdent  T // ParamLiteralIdent
	LiteralSymbol rune
	Repeat        Repeat
	Count         int // RepeatCount
	Pos           token.Position
}

// Mapping is a named rewrite rule: zero or more parameters plus a
// translation expression. Overloads for one name are distinguished by
// their parameter lists and form an ordered list at file scope.
type Mapping[T Text] struct {
	Name        T
	Parameters  []*Parameter[T]
	Translation *Expr[T]
	Pos         token.Position
}

// Simple reports whether m takes no parameters.
func (m *Mapping[T]) Simple() bool { return len(m.Parameters) == 0 }

// Import is a dependency declaration.
type Import[T Text] struct {
	Path      *PathIdent[T]
	Namespace bool // trailing "/*" — include all names unqualified
	Pos       token.Position
}

// Sep discriminates the separator preceding a top-level expression item.
type Sep int

const (
	// SepNone precedes the program's first rendered item, or the first
	// item following a mapping/import declaration.
	SepNone Sep = iota
	// SepNewline separates two items that fell on different source lines;
	// rendered as exactly one "\n" regardless of blank lines in between.
	SepNewline
	// SepLiteral separates two items that shared one source line; the
	// verbatim text between them (e.g. a single space) is rendered as-is.
	SepLiteral
)

// Item is one top-level, output-producing expression plus the separator
// that precedes it.
type Item[T Text] struct {
	Sep     Sep
	Literal T // meaningful only when Sep == SepLiteral
	Expr    *Expr[T]
}

// Program is the parsed form of one .exr file.
type Program[T Text] struct {
	Imports  []*Import[T]
	Mappings []*Mapping[T] // insertion order, overloads included
	Items    []Item[T]     // output-producing top-level expressions
}

// ToOwned performs a total, deep copy of e into the Owned representation.
func ToOwned[T Text](e *Expr[T]) *Expr[Owned] {
	if e == nil {
		return nil
	}

	out := &Expr[Owned]{
		Kind: e.Kind,
		Pos:  e.Pos,
		Str:  Own(e.Str),
		StrRef: Own(e.StrRef),
		Int:  e.Int,
		Sym:  e.Sym,
		Path: ownPathIdent(e.Path),
	}

	if e.Template != nil {
		pieces := make([]TemplatePiece[Owned], len(e.Template.Pieces))

		for i, p := range e.Template.Pieces {
			pieces[i] = TemplatePiece[Owned]{
				Kind: p.Kind,
				Raw:  Own(p.Raw),
				Char: p.Char,
				Expr: ToOwned(p.Expr),
			}
		}

		out.Template = &TemplateString[Owned]{Pieces: pieces, Pos: e.Template.Pos}
	}

	if e.App != nil {
		args := make([]*Expr[Owned], len(e.App.Args))
		for i, a := range e.App.Args {
			args[i] = ToOwned(a)
		}

		out.App = &Application[Owned]{
			Name: ownPathIdent(e.App.Name),
			Args: args,
			Pos:  e.App.Pos,
		}
	}

	if e.Block != nil {
		exprs := make([]*Expr[Owned], len(e.Block.Exprs))
		for i, x := range e.Block.Exprs {
			exprs[i] = ToOwned(x)
		}

		out.Block = &Block[Owned]{Exprs: exprs, Pos: e.Block.Pos}
	}

	if e.Cond != nil {
		branches := make([]Branch[Owned], len(e.Cond.Branches))

		for i, b := range e.Cond.Branches {
			branches[i] = Branch[Owned]{
				Wildcard:    b.Wildcard,
				Pattern:     ToOwned(b.Pattern),
				Translation: ToOwned(b.Translation),
			}
		}

		out.Cond = &Conditional[Owned]{
			Cond:     ToOwned(e.Cond.Cond),
			Branches: branches,
			Pos:      e.Cond.Pos,
		}
	}

	return out
}

// ToOwnedParam converts a Parameter to its Owned representation.
func ToOwnedParam[T Text](p *Parameter[T]) *Parameter[Owned] {
	if p == nil {
		return nil
	}

	return &Parameter[Owned]{
		Kind:          p.Kind,
		LocalName:     Own(p.LocalName),
		LiteralIdent:  Own(p.LiteralIdent),
		LiteralSymbol: p.LiteralSymbol,
		Repeat:        p.Repeat,
		Count:         p.Count,
		Pos:           p.Pos,
	}
}

// ToOwnedMapping converts a Mapping to its Owned representation.
func ToOwnedMapping[T Text](m *Mapping[T]) *Mapping[Owned] {
	if m == nil {
		return nil
	}

	params := make([]*Parameter[Owned], len(m.Parameters))
	for i, p := range m.Parameters {
		params[i] = ToOwnedParam(p)
	}

	return &Mapping[Owned]{
		Name:        Own(m.Name),
		Parameters:  params,
		Translation: ToOwned(m.Translation),
		Pos:         m.Pos,
	}
}

// ToOwnedImport converts an Import to its Owned representation.
func ToOwnedImport[T Text](im *Import[T]) *Import[Owned] {
	if im == nil {
		return nil
	}

	return &Import[Owned]{Path: ownPathIdent(im.Path), Namespace: im.Namespace, Pos: im.Pos}
}

// ToOwnedProgram converts an entire Program to its Owned representation.
func ToOwnedProgram[T Text](p *Program[T]) *Program[Owned] {
	if p == nil {
		return nil
	}

	imports := make([]*Import[Owned], len(p.Imports))
	for i, im := range p.Imports {
		imports[i] = ToOwnedImport(im)
	}

	mappings := make([]*Mapping[Owned], len(p.Mappings))
	for i, m := range p.Mappings {
		mappings[i] = ToOwnedMapping(m)
	}

	items := make([]Item[Owned], len(p.Items))
	for i, it := range p.Items {
		items[i] = Item[Owned]{Sep: it.Sep, Literal: Own(it.Literal), Expr: ToOwned(it.Expr)}
	}

	return &Program[Owned]{Imports: imports, Mappings: mappings, Items: items}
}
