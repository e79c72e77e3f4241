package eval

import (
	"log/slog"
	"strings"

	"github.com/ardnew/exr/ast"
	"github.com/ardnew/exr/symtab"
	"github.com/ardnew/exr/token"
	"github.com/ardnew/exr/xerr"
)

func isBuiltin(name string) bool {
	switch name {
	case "calc", "m":
		return true
	default:
		return false
	}
}

// evalBuiltin dispatches the calc/m arithmetic and repetition operator,
// per spec.md §4.7. Built-ins evaluate their own operands in the
// caller's scope; shape mismatches are a fatal, per-expression error.
func (e *Evaluator) evalBuiltin(
	name string, args []*ast.Expr[ast.Owned], pos token.Position, scope *symtab.Scope, depth int,
) (Value, error) {
	if len(args) != 3 {
		return Value{}, arityErr(name, pos, "expects exactly 3 arguments")
	}

	left, err := e.expand(args[0], scope, depth+1)
	if err != nil {
		return Value{}, err
	}

	opVal, err := e.expand(args[1], scope, depth+1)
	if err != nil {
		return Value{}, err
	}

	opRunes := []rune(Render(opVal))
	if len(opRunes) != 1 {
		return Value{}, arityErr(name, pos, "operator must be a single-character token")
	}

	right, err := e.expand(args[2], scope, depth+1)
	if err != nil {
		return Value{}, err
	}

	switch opRunes[0] {
	case '+':
		return intOp(name, pos, left, right, func(a, b int64) int64 { return a + b })
	case '-':
		return intOp(name, pos, left, right, func(a, b int64) int64 { return a - b })
	case '/':
		return divOp(name, pos, left, right)
	case '*':
		return mulOp(name, pos, left, right)
	default:
		return Value{}, arityErr(name, pos, "unknown operator "+string(opRunes[0]))
	}
}

func intOp(name string, pos token.Position, left, right Value, f func(a, b int64) int64) (Value, error) {
	if left.Kind != ValInt || right.Kind != ValInt {
		return Value{}, arityErr(name, pos, "operands must be integers")
	}

	return Value{Kind: ValInt, Int: f(left.Int, right.Int)}, nil
}

func divOp(name string, pos token.Position, left, right Value) (Value, error) {
	if left.Kind != ValInt || right.Kind != ValInt {
		return Value{}, arityErr(name, pos, "operands must be integers")
	}

	if right.Int == 0 {
		return Value{}, arityErr(name, pos, "division by zero")
	}

	return Value{Kind: ValInt, Int: left.Int / right.Int}, nil
}

func mulOp(name string, pos token.Position, left, right Value) (Value, error) {
	switch {
	case left.Kind == ValInt && right.Kind == ValInt:
		return Value{Kind: ValInt, Int: left.Int * right.Int}, nil

	case left.Kind == ValStr && right.Kind == ValInt:
		if right.Int < 0 {
			return Value{}, arityErr(name, pos, "repetition count must be non-negative")
		}

		return Value{Kind: ValStr, Str: strings.Repeat(left.Str, int(right.Int))}, nil

	case left.Kind == ValInt && right.Kind == ValStr:
		if left.Int < 0 {
			return Value{}, arityErr(name, pos, "repetition count must be non-negative")
		}

		return Value{Kind: ValStr, Str: strings.Repeat(right.Str, int(left.Int))}, nil

	default:
		return Value{}, arityErr(name, pos, "'*' requires int*int or string*int")
	}
}

func arityErr(name string, pos token.Position, reason string) error {
	return xerr.ErrBuiltinArity.
		With(slog.String("builtin", name), xerr.UserSite(pos)).
		Wrap(xerr.Plain(reason))
}
