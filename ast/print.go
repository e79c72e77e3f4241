package ast

import (
	"fmt"
	"io"
	"strings"
)

// Print writes an indented tree rendering of p to w: one line per import,
// mapping, and top-level item, recursing into each expression. Grounded in
// the reference stack's AST.Print/PrintIndent pair, adapted to this AST's
// generic representation markers.
func (p *Program[T]) Print(w io.Writer) {
	for _, im := range p.Imports {
		fmt.Fprintf(w, "import %s\n", string(im.Path.Raw))
	}

	for _, m := range p.Mappings {
		fmt.Fprintf(w, "map %s (%d params) @ %s\n", string(m.Name), len(m.Parameters), m.Pos)
		printExpr(w, m.Translation, 1)
	}

	for _, it := range p.Items {
		fmt.Fprintf(w, "item sep=%d\n", it.Sep)
		printExpr(w, it.Expr, 1)
	}
}

func printExpr[T Text](w io.Writer, e *Expr[T], depth int) {
	if e == nil {
		return
	}

	indent := strings.Repeat("  ", depth)

	switch e.Kind {
	case KindString:
		fmt.Fprintf(w, "%sString %q @ %s\n", indent, string(e.Str), e.Pos)

	case KindStringRef:
		fmt.Fprintf(w, "%sStringRef %q @ %s\n", indent, string(e.StrRef), e.Pos)

	case KindInt:
		fmt.Fprintf(w, "%sInt %d @ %s\n", indent, e.Int, e.Pos)

	case KindPathIdent:
		fmt.Fprintf(w, "%sPathIdent %s @ %s\n", indent, string(e.Path.Raw), e.Pos)

	case KindSymbol:
		fmt.Fprintf(w, "%sSymbol %q @ %s\n", indent, e.Sym, e.Pos)

	case KindTemplateString:
		fmt.Fprintf(w, "%sTemplateString @ %s\n", indent, e.Pos)

		for _, piece := range e.Template.Pieces {
			switch piece.Kind {
			case PieceRaw:
				fmt.Fprintf(w, "%s  raw %q\n", indent, string(piece.Raw))
			case PieceChar:
				fmt.Fprintf(w, "%s  char %q\n", indent, piece.Char)
			case PieceExpr:
				printExpr(w, piece.Expr, depth+1)
			}
		}

	case KindApplication:
		fmt.Fprintf(w, "%sApplication %s @ %s\n", indent, string(e.App.Name.Raw), e.Pos)

		for _, arg := range e.App.Args {
			printExpr(w, arg, depth+1)
		}

	case KindBlock:
		fmt.Fprintf(w, "%sBlock @ %s\n", indent, e.Pos)

		for _, x := range e.Block.Exprs {
			printExpr(w, x, depth+1)
		}

	case KindConditional:
		fmt.Fprintf(w, "%sConditional @ %s\n", indent, e.Pos)
		printExpr(w, e.Cond.Cond, depth+1)

		for _, br := range e.Cond.Branches {
			if br.Wildcard {
				fmt.Fprintf(w, "%s  _ =>\n", indent)
			} else {
				printExpr(w, br.Pattern, depth+1)
			}

			printExpr(w, br.Translation, depth+1)
		}
	}
}
