package main

import (
	"github.com/ardnew/exr/ast"
	"github.com/ardnew/exr/parser"
	"github.com/ardnew/exr/registry"
	"github.com/ardnew/exr/symtab"
)

// loadProgram parses source and resolves its imports through reg, returning
// the owned program and the effective context its own mappings were merged
// into (external imports first, then local mappings, per registry.Build).
func loadProgram(
	canonical, source string, loader registry.Loader, reg *registry.Registry,
) (*ast.Program[ast.Owned], *symtab.Context, error) {
	prog, err := parser.Parse(canonical, source)
	if err != nil {
		return nil, nil, err
	}

	owned := ast.ToOwnedProgram(prog)

	external := symtab.NewContext()

	for _, imp := range owned.Imports {
		depPath, err := loader.Resolve(canonical, imp.Path)
		if err != nil {
			return nil, nil, err
		}

		depCtx, err := reg.Build(depPath, loader)
		if err != nil {
			return nil, nil, err
		}

		external.Merge(depCtx)
	}

	local := symtab.NewContext()
	for _, m := range owned.Mappings {
		local.Define(m)
	}

	effective := symtab.NewContext()
	effective.Merge(external)
	effective.Merge(local)

	return owned, effective, nil
}
