package ast

// Matches reports whether arg satisfies p's descriptor, independent of its
// position in the parameter list. This is the table from spec.md §4.4.
func (p *Parameter[T]) Matches(arg *Expr[T]) bool {
	switch p.Kind {
	case ParamExpr:
		return arg.Kind != KindSymbol

	case ParamIdent:
		return arg.Kind == KindPathIdent

	case ParamLiteralIdent:
		return arg.Kind == KindPathIdent && arg.Path.Name() == p.LiteralIdent

	case ParamLiteralSymbol:
		return arg.Kind == KindSymbol && arg.Sym == p.LiteralSymbol

	default:
		return false
	}
}

// MatchArgs binds params against args positionally, honoring each
// parameter's Repeat marker:
//
//   - RepeatNone requires exactly one matching argument.
//   - RepeatOptional (`?`) consumes the next argument only if it matches;
//     otherwise it binds nothing and no argument is consumed, per
//     SPEC_FULL.md §4's parameter-repetition semantics.
//
// It returns, per parameter, the index into args bound to it (-1 if the
// parameter bound nothing), and whether every argument in args was
// consumed by the end of the parameter list.
//
// RepeatStar and RepeatCount are not given binding semantics here —
// callers must reject them before calling MatchArgs (see
// symtab.arityAndShapeMatch), since using either raises
// xerr.ErrUnsupportedRepeat rather than silently matching as a single
// occurrence.
func MatchArgs[T Text](params []*Parameter[T], args []*Expr[T]) ([]int, bool) {
	bound := make([]int, len(params))
	ai := 0

	for i, p := range params {
		if p.Repeat == RepeatOptional {
			if ai < len(args) && p.Matches(args[ai]) {
				bound[i] = ai
				ai++
			} else {
				bound[i] = -1
			}

			continue
		}

		if ai >= len(args) || !p.Matches(args[ai]) {
			return nil, false
		}

		bound[i] = ai
		ai++
	}

	return bound, ai == len(args)
}
