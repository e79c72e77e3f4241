package eval

import (
	"strings"

	"github.com/ardnew/exr/ast"
	"github.com/ardnew/exr/symtab"
	"github.com/ardnew/exr/token"
	"github.com/ardnew/exr/xerr"
)

// DefaultMaxDepth bounds combined template/mapping-application recursion,
// per spec.md §5's stack-depth note.
const DefaultMaxDepth = 2000

// Evaluator walks an owned AST, producing Values against a symtab.Scope.
type Evaluator struct {
	MaxDepth int
}

// New creates an Evaluator with DefaultMaxDepth.
func New() *Evaluator { return &Evaluator{MaxDepth: DefaultMaxDepth} }

// Expand evaluates expr against scope.
func (e *Evaluator) Expand(expr *ast.Expr[ast.Owned], scope *symtab.Scope) (Value, error) {
	return e.expand(expr, scope, 0)
}

func (e *Evaluator) maxDepth() int {
	if e.MaxDepth > 0 {
		return e.MaxDepth
	}

	return DefaultMaxDepth
}

func (e *Evaluator) expand(expr *ast.Expr[ast.Owned], scope *symtab.Scope, depth int) (Value, error) {
	if depth > e.maxDepth() {
		return Value{}, xerr.ErrMaxDepthExceeded.With(xerr.UserSite(expr.Pos))
	}

	switch expr.Kind {
	case ast.KindString:
		return Value{Kind: ValStr, Str: string(expr.Str)}, nil

	case ast.KindStringRef:
		return Value{Kind: ValStr, Str: string(expr.StrRef)}, nil

	case ast.KindInt:
		return Value{Kind: ValInt, Int: expr.Int}, nil

	case ast.KindPathIdent:
		return e.expandApplication(expr.Path, nil, expr.Pos, scope, depth)

	case ast.KindTemplateString:
		return e.renderTemplate(expr.Template, scope, depth)

	case ast.KindBlock:
		return e.renderBlock(expr.Block, scope, depth)

	case ast.KindConditional:
		return e.evalConditional(expr.Cond, scope, depth)

	case ast.KindApplication:
		return e.expandApplication(expr.App.Name, expr.App.Args, expr.App.Pos, scope, depth)

	case ast.KindSymbol:
		return Value{}, xerr.ErrUnreachableValue.With(xerr.UserSite(expr.Pos))

	default:
		return Value{}, xerr.ErrUnreachableValue.With(xerr.UserSite(expr.Pos))
	}
}

// renderTemplate concatenates a template's pieces left to right. A
// spliced path-identifier is evaluated the same way as any other
// expression (as a zero-argument mapping application): this is what
// makes a bound parameter placeholder substitute its value when spliced,
// matching spec.md §8 scenario 2.
func (e *Evaluator) renderTemplate(
	tmpl *ast.TemplateString[ast.Owned], scope *symtab.Scope, depth int,
) (Value, error) {
	var sb strings.Builder

	for _, piece := range tmpl.Pieces {
		switch piece.Kind {
		case ast.PieceRaw:
			sb.WriteString(string(piece.Raw))

		case ast.PieceChar:
			sb.WriteRune(piece.Char)

		case ast.PieceExpr:
			v, err := e.expand(piece.Expr, scope, depth+1)
			if err != nil {
				return Value{}, err
			}

			sb.WriteString(Render(v))
		}
	}

	return Value{Kind: ValStr, Str: sb.String()}, nil
}

// renderBlock evaluates each inner expression and joins the results with
// a newline, plus a trailing newline, per spec.md §4.5.
func (e *Evaluator) renderBlock(b *ast.Block[ast.Owned], scope *symtab.Scope, depth int) (Value, error) {
	if len(b.Exprs) == 0 {
		return Value{Kind: ValStr, Str: ""}, nil
	}

	parts := make([]string, 0, len(b.Exprs))

	for _, x := range b.Exprs {
		v, err := e.expand(x, scope, depth+1)
		if err != nil {
			return Value{}, err
		}

		parts = append(parts, Render(v))
	}

	return Value{Kind: ValStr, Str: strings.Join(parts, "\n") + "\n"}, nil
}

// evalConditional evaluates an is expression per spec.md §4.6: first
// matching branch (wildcard, or pattern equal to the condition value)
// wins; no match is a programmer error.
func (e *Evaluator) evalConditional(c *ast.Conditional[ast.Owned], scope *symtab.Scope, depth int) (Value, error) {
	cond, err := e.expand(c.Cond, scope, depth+1)
	if err != nil {
		return Value{}, err
	}

	for _, br := range c.Branches {
		if br.Wildcard {
			return e.expand(br.Translation, scope, depth+1)
		}

		pat, err := e.expand(br.Pattern, scope, depth+1)
		if err != nil {
			return Value{}, err
		}

		if cond.Equal(pat) {
			return e.expand(br.Translation, scope, depth+1)
		}
	}

	return Value{}, xerr.ErrNoBranchMatched.With(xerr.UserSite(c.Pos))
}

// expandApplication dispatches a mapping-application: to a built-in
// keyed by name, or through overload resolution against scope, per
// spec.md §4.5.
func (e *Evaluator) expandApplication(
	name *ast.PathIdent[ast.Owned], args []*ast.Expr[ast.Owned], pos token.Position,
	scope *symtab.Scope, depth int,
) (Value, error) {
	simple := string(name.Name())

	if name.Root == ast.RootFile && len(name.Parts) == 1 && isBuiltin(simple) {
		return e.evalBuiltin(simple, args, pos, scope, depth)
	}

	mapping, err := symtab.Resolve(scope, simple, args, pos)
	if err != nil {
		return Value{}, err
	}

	if mapping.Simple() {
		return e.expand(mapping.Translation, scope, depth+1)
	}

	child := scope.Child()

	// mapping was returned by symtab.Resolve, which already verified this
	// shape matches args via the same ast.MatchArgs — so ok is always true
	// here; bound just recovers which arg index (if any) belongs to each
	// parameter, honoring `?`'s optional-arity binding.
	bound, _ := ast.MatchArgs(mapping.Parameters, args)

	for i, param := range mapping.Parameters {
		ai := bound[i]

		switch param.Kind {
		case ast.ParamExpr:
			if ai < 0 {
				// Optional parameter with no matching argument: binds
				// nothing, per SPEC_FULL.md §4 — a translation that
				// splices this name resolves as an unbound reference.
				continue
			}

			arg := args[ai]

			v, err := e.expand(arg, scope, depth+1)
			if err != nil {
				return Value{}, err
			}

			child.Bind(string(param.LocalName), placeholder(param.LocalName, literalExpr(v, arg.Pos), param.Pos))

		case ast.ParamIdent:
			if ai < 0 {
				continue
			}

			arg := args[ai]

			lexeme, err := identLexeme(e, arg, scope, depth)
			if err != nil {
				return Value{}, err
			}

			lit := &ast.Expr[ast.Owned]{Kind: ast.KindString, Str: ast.Owned(lexeme), Pos: arg.Pos}
			child.Bind(string(param.LocalName), placeholder(param.LocalName, lit, param.Pos))

		case ast.ParamLiteralIdent, ast.ParamLiteralSymbol:
			// Already checked positionally during resolution; the argument
			// cursor advances without binding a local name.
		}
	}

	return e.expand(mapping.Translation, child, depth+1)
}

func identLexeme(e *Evaluator, arg *ast.Expr[ast.Owned], scope *symtab.Scope, depth int) (string, error) {
	if arg.Kind == ast.KindPathIdent {
		return string(arg.Path.Name()), nil
	}

	v, err := e.expand(arg, scope, depth+1)
	if err != nil {
		return "", err
	}

	return Render(v), nil
}

// placeholder wraps a pre-evaluated value as a zero-parameter mapping so
// it can be bound into a scope's locals and resolved like any other
// zero-argument application.
func placeholder(name ast.Owned, lit *ast.Expr[ast.Owned], pos token.Position) *ast.Mapping[ast.Owned] {
	return &ast.Mapping[ast.Owned]{Name: name, Translation: lit, Pos: pos}
}

func literalExpr(v Value, pos token.Position) *ast.Expr[ast.Owned] {
	if v.Kind == ValInt {
		return &ast.Expr[ast.Owned]{Kind: ast.KindInt, Int: v.Int, Pos: pos}
	}

	return &ast.Expr[ast.Owned]{Kind: ast.KindString, Str: ast.Owned(v.Str), Pos: pos}
}

// Render evaluates every top-level item of prog and concatenates the
// results, honoring each item's separator. Per spec.md §7's propagation
// policy, a failing item is collected and skipped; its peers still
// expand.
func (e *Evaluator) Render(prog *ast.Program[ast.Owned], scope *symtab.Scope) (string, []error) {
	var sb strings.Builder

	var errs []error

	for _, item := range prog.Items {
		switch item.Sep {
		case ast.SepNewline:
			sb.WriteString("\n")
		case ast.SepLiteral:
			sb.WriteString(string(item.Literal))
		}

		v, err := e.expand(item.Expr, scope, 0)
		if err != nil {
			errs = append(errs, err)

			continue
		}

		sb.WriteString(Render(v))
	}

	return sb.String(), errs
}
