package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/ardnew/exr/ast"
	"github.com/ardnew/exr/eval"
	"github.com/ardnew/exr/lexer"
	"github.com/ardnew/exr/logx"
	"github.com/ardnew/exr/registry"
	"github.com/ardnew/exr/symtab"
	"github.com/ardnew/exr/token"
	"github.com/ardnew/exr/xerr"
)

// Expand parses, resolves imports for, and evaluates one .exr source,
// writing the rendered output to stdout.
type Expand struct {
	Source string `arg:""     default:"-" help:"Source .exr file, or '-' for stdin (imports resolve against the working directory)"`
	All    bool   `name:"all"             help:"Also write <stem>.tokens, <stem>.ast, <stem>.ctx, and <stem>.deps diagnostic dumps beside the source"`
}

// Run executes the expand command.
func (e *Expand) Run(ctx context.Context, log logx.Logger) error {
	canonical, source, loader, err := resolveSource(e.Source)
	if err != nil {
		return err
	}

	reg := registry.New()

	owned, effective, err := loadProgram(canonical, source, loader, reg)
	if err != nil {
		return reportParse(canonical, source, err)
	}

	if e.All {
		if err := dumpAll(canonical, source, owned, effective, reg, loader); err != nil {
			log.Warn("failed to write diagnostic dumps", "error", err)
		}
	}

	out, errs := eval.New().Render(owned, symtab.NewScope(effective))
	if _, werr := fmt.Fprint(os.Stdout, out); werr != nil {
		return werr
	}

	if len(errs) > 0 {
		for _, itemErr := range errs {
			fmt.Fprintln(os.Stderr, renderDiagnostic(diagnosticFor(canonical, source, itemErr)))
		}

		return errors.New("one or more top-level expressions failed to expand")
	}

	return nil
}

// diagnosticFor wraps err as a rendered diagnostic against source. The
// exact failing column isn't recoverable from outside package xerr (the
// user site is logged, not returned structurally), so the snippet falls
// back to the source's first line; the reason text still names the site.
func diagnosticFor(canonical, source string, err error) xerr.Diagnostic {
	return xerr.Diagnostic{
		Source: source,
		Pos:    token.Position{File: canonical, Line: 1, Column: 1},
		Reason: err.Error(),
	}
}

func reportParse(canonical, source string, err error) error {
	fmt.Fprintln(os.Stderr, renderDiagnostic(diagnosticFor(canonical, source, err)))

	return err
}

// dumpAll writes the --all diagnostic quadruple next to canonical's stem:
// <stem>.tokens, <stem>.ast, <stem>.ctx, and <stem>.deps.
func dumpAll(
	canonical, source string, owned *ast.Program[ast.Owned], effective *symtab.Context,
	reg *registry.Registry, loader registry.Loader,
) error {
	stem := strings.TrimSuffix(canonical, ".exr")

	tf, err := os.Create(stem + ".tokens")
	if err != nil {
		return err
	}
	defer tf.Close()

	if err := token.Dump(tf, lexer.New(canonical, source)); err != nil {
		return err
	}

	af, err := os.Create(stem + ".ast")
	if err != nil {
		return err
	}
	defer af.Close()

	owned.Print(af)

	cf, err := os.Create(stem + ".ctx")
	if err != nil {
		return err
	}
	defer cf.Close()

	effective.Print(cf)

	return dumpDeps(stem+".deps", reg, loader)
}

// dumpDeps writes one line per registry entry (every file this build
// imported, directly or transitively), reporting whether its on-disk
// content hash has since diverged from the one recorded at build time —
// a sign the dependency changed underneath this run.
func dumpDeps(path string, reg *registry.Registry, loader registry.Loader) error {
	df, err := os.Create(path)
	if err != nil {
		return err
	}
	defer df.Close()

	paths := reg.Paths()
	sort.Strings(paths)

	for _, p := range paths {
		changed, err := reg.Recheck(p, loader)

		status := "unchanged"

		switch {
		case err != nil:
			status = "unknown (" + err.Error() + ")"
		case changed:
			status = "changed"
		}

		if _, err := fmt.Fprintf(df, "%s: %s\n", p, status); err != nil {
			return err
		}
	}

	return nil
}
