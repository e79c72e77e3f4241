package symtab

import (
	"log/slog"

	"github.com/ardnew/exr/ast"
	"github.com/ardnew/exr/token"
	"github.com/ardnew/exr/xerr"
)

// Resolve finds the unique overload of name whose parameter descriptors
// accept args positionally, per the table in spec.md §4.4. It reports
// unresolved-mapping or ambiguous-overload rather than returning a
// mapping in either case.
func Resolve(
	scope *Scope, name string, args []*ast.Expr[ast.Owned], site token.Position,
) (*ast.Mapping[ast.Owned], error) {
	overloads, ok := scope.Lookup(name)
	if !ok || len(overloads) == 0 {
		return nil, unresolved(scope, name, len(args), site)
	}

	var found *ast.Mapping[ast.Owned]

	for _, m := range overloads {
		matched, err := arityAndShapeMatch(m, args)
		if err != nil {
			return nil, err
		}

		if !matched {
			continue
		}

		if found != nil {
			return nil, xerr.ErrAmbiguousOverload.
				With(slog.String("name", name), xerr.UserSite(site)).
				Wrap(xerr.Plain("multiple overloads match the given arguments"))
		}

		found = m
	}

	if found == nil {
		return nil, unresolved(scope, name, len(args), site)
	}

	return found, nil
}

// suggestLimit bounds the "did you mean" list attached to an unresolved-
// mapping diagnostic.
const suggestLimit = 3

func unresolved(scope *Scope, name string, argc int, site token.Position) error {
	attrs := []slog.Attr{slog.String("name", name), slog.Int("argc", argc), xerr.UserSite(site)}

	if suggestions := scope.Suggest(name, suggestLimit); len(suggestions) > 0 {
		attrs = append(attrs, slog.Any("suggest", suggestions))
	}

	return xerr.ErrUnresolvedMapping.
		With(attrs...).
		Wrap(xerr.Plain("no overload accepts the given arguments"))
}

// arityAndShapeMatch reports whether m's parameters accept args
// positionally (via ast.MatchArgs, honoring `?`'s optional-arity
// semantics), per the table in spec.md §4.4. A mapping declaring a `*` or
// explicit-count repeated parameter is rejected outright with
// xerr.ErrUnsupportedRepeat — SPEC_FULL.md §4 reserves those repetition
// kinds as parseable but not invocable.
func arityAndShapeMatch(m *ast.Mapping[ast.Owned], args []*ast.Expr[ast.Owned]) (bool, error) {
	for _, p := range m.Parameters {
		if p.Repeat == ast.RepeatStar || p.Repeat == ast.RepeatCount {
			return false, xerr.ErrUnsupportedRepeat.With(slog.String("name", string(m.Name)))
		}
	}

	_, ok := ast.MatchArgs(m.Parameters, args)

	return ok, nil
}
