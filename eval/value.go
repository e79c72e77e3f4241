// Package eval implements the tree-walking evaluator from spec.md §4.5:
// a two-case Value domain, recursive expansion of the owned AST, the
// is conditional, template rendering, and the calc/m built-ins.
package eval

import (
	"strconv"
	"unicode/utf8"
)

// ValueKind discriminates Value.
type ValueKind int

// Value kinds.
const (
	ValStr ValueKind = iota
	ValInt
)

// Value is the result of evaluating an expression: a string or a 64-bit
// integer.
type Value struct {
	Kind ValueKind
	Str  string
	Int  int64
}

// Equal implements spec.md §4.5's value-equality relation: same-case
// componentwise, plus integer ↔ single-character-string equality when
// the integer is a valid Unicode scalar.
func (v Value) Equal(o Value) bool {
	switch {
	case v.Kind == ValStr && o.Kind == ValStr:
		return v.Str == o.Str
	case v.Kind == ValInt && o.Kind == ValInt:
		return v.Int == o.Int
	case v.Kind == ValInt && o.Kind == ValStr:
		return singleCharEqual(v.Int, o.Str)
	default: // ValStr, ValInt
		return singleCharEqual(o.Int, v.Str)
	}
}

func singleCharEqual(n int64, s string) bool {
	r := []rune(s)
	if len(r) != 1 {
		return false
	}

	if n < 0 || n > utf8.MaxRune || !utf8.ValidRune(rune(n)) {
		return false
	}

	return rune(n) == r[0]
}

// Render formats a Value as its expanded string form; integers format in
// base 10.
func Render(v Value) string {
	if v.Kind == ValInt {
		return strconv.FormatInt(v.Int, 10)
	}

	return v.Str
}
