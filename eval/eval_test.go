package eval_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardnew/exr/ast"
	"github.com/ardnew/exr/eval"
	"github.com/ardnew/exr/parser"
	"github.com/ardnew/exr/symtab"
)

// render parses src, defines its mappings in a fresh context, and renders
// every top-level item, failing the test on any error.
func render(t *testing.T, src string) string {
	t.Helper()

	prog, err := parser.Parse("t", src)
	require.NoError(t, err)

	owned := ast.ToOwnedProgram(prog)

	ctx := symtab.NewContext()
	for _, m := range owned.Mappings {
		ctx.Define(m)
	}

	out, errs := eval.New().Render(owned, symtab.NewScope(ctx))
	require.Empty(t, errs)

	return out
}

// The literal scenarios from spec.md §8; scenario 5, which needs imports,
// is in registry/registry_test.go.

func TestScenario1SimpleMapping(t *testing.T) {
	assert.Equal(t, "hello", render(t, "map greeting => 'hello'\n[greeting]"))
}

func TestScenario2ParameterizedMappingSplicedTwice(t *testing.T) {
	assert.Equal(t, "aa", render(t, "map dbl [x] => '[x][x]'\n[dbl 'a']"))
}

func TestScenario3CalcBuiltin(t *testing.T) {
	assert.Equal(t, "5", render(t, "[calc 2 '+' 3]"))
	assert.Equal(t, "ababab", render(t, "[calc 'ab' '*' 3]"))
}

func TestScenario4OverloadResolutionByLiteralIdent(t *testing.T) {
	out := render(t, "map pick a => '1'\nmap pick b => '2'\n[pick a] [pick b]")
	assert.Equal(t, "1 2", out)
}

func TestScenario6ConditionalBracketForm(t *testing.T) {
	assert.Equal(t, "yes", render(t, "is 1 [ .. 0 ? 'no' .. 1 ? 'yes' .. _ ? 'other' ]"))
	assert.Equal(t, "other", render(t, "is 2 [ .. 0 ? 'no' .. 1 ? 'yes' .. _ ? 'other' ]"))
}

func TestValueEqualCrossCase(t *testing.T) {
	a := eval.Value{Kind: eval.ValInt, Int: 97}
	b := eval.Value{Kind: eval.ValStr, Str: "a"}

	assert.True(t, a.Equal(b))
	assert.True(t, b.Equal(a))
	assert.False(t, eval.Value{Kind: eval.ValInt, Int: 2}.Equal(eval.Value{Kind: eval.ValStr, Str: "ab"}))
}

func TestValueEqualReflexiveSymmetricTransitive(t *testing.T) {
	x := eval.Value{Kind: eval.ValStr, Str: "same"}
	y := eval.Value{Kind: eval.ValStr, Str: "same"}
	z := eval.Value{Kind: eval.ValStr, Str: "same"}

	assert.True(t, x.Equal(x))
	assert.Equal(t, x.Equal(y), y.Equal(x))
	assert.True(t, x.Equal(y) && y.Equal(z) && x.Equal(z))
}

func TestRenderFormatsIntBase10(t *testing.T) {
	assert.Equal(t, "42", eval.Render(eval.Value{Kind: eval.ValInt, Int: 42}))
	assert.Equal(t, "s", eval.Render(eval.Value{Kind: eval.ValStr, Str: "s"}))
}

func TestAmbiguousOverloadIsReported(t *testing.T) {
	prog, err := parser.Parse("t", "map f [x] => '[x]'\nmap f [y] => '[y]'\n[f 'z']")
	require.NoError(t, err)

	owned := ast.ToOwnedProgram(prog)
	ctx := symtab.NewContext()

	for _, m := range owned.Mappings {
		ctx.Define(m)
	}

	_, errs := eval.New().Render(owned, symtab.NewScope(ctx))
	require.Len(t, errs, 1)
	assert.ErrorContains(t, errs[0], "ambiguous")
}

func TestUnresolvedMappingIsReported(t *testing.T) {
	prog, err := parser.Parse("t", "[nope]")
	require.NoError(t, err)

	owned := ast.ToOwnedProgram(prog)
	ctx := symtab.NewContext()

	_, errs := eval.New().Render(owned, symtab.NewScope(ctx))
	require.Len(t, errs, 1)
	assert.ErrorContains(t, errs[0], "unknown mapping")
}

func TestFailingItemDoesNotHaltItsPeers(t *testing.T) {
	prog, err := parser.Parse("t", "[ok]\n[nope]\n[ok]")
	require.NoError(t, err)

	owned := ast.ToOwnedProgram(prog)
	ctx := symtab.NewContext()
	ctx.Define(&ast.Mapping[ast.Owned]{Name: "ok", Translation: &ast.Expr[ast.Owned]{Kind: ast.KindString, Str: "K"}})

	out, errs := eval.New().Render(owned, symtab.NewScope(ctx))
	require.Len(t, errs, 1)
	// The failing item's separator is still written — only its own value
	// is skipped — so the middle line's absence shows up as a blank line.
	assert.Equal(t, "K\n\nK", out)
}

func TestMaxDepthExceeded(t *testing.T) {
	e := &eval.Evaluator{MaxDepth: 2}

	prog, err := parser.Parse("t", "map f => f\n[f]")
	require.NoError(t, err)

	owned := ast.ToOwnedProgram(prog)
	ctx := symtab.NewContext()

	for _, m := range owned.Mappings {
		ctx.Define(m)
	}

	_, errs := e.Render(owned, symtab.NewScope(ctx))
	require.Len(t, errs, 1)
	assert.ErrorContains(t, errs[0], "maximum definition depth exceeded")
}

func TestBlockJoinsWithTrailingNewline(t *testing.T) {
	assert.Equal(t, "a\nb\n", render(t, "[['a'\n'b']]"))
}
