// Package registry implements the module registry and import resolver
// from spec.md §4.8: a process-wide, single-writer-per-build memoization
// table from canonical file path to that file's fully-resolved owned
// context, with cycle detection via an in-flight set.
package registry

import (
	"log/slog"
	"sync"

	"github.com/ardnew/exr/ast"
	"github.com/ardnew/exr/eval"
	"github.com/ardnew/exr/parser"
	"github.com/ardnew/exr/symtab"
	"github.com/ardnew/exr/xerr"
)

// Loader reads source text and resolves import paths to canonical paths,
// decoupling the registry from any particular filesystem layout.
type Loader interface {
	// Read returns the source text for a canonical path.
	Read(canonical string) (string, error)
	// Resolve turns an import's path identifier, seen while building
	// fromCanonical, into a canonical path.
	Resolve(fromCanonical string, path *ast.PathIdent[ast.Owned]) (string, error)
}

// Stats reports registry hit/miss counters, an exr-specific supplement
// to spec.md's module registry (SPEC_FULL.md §4).
type Stats struct {
	Hits    int
	Misses  int
	Entries int
}

// Registry memoizes canonical path → fully-resolved owned context. The
// zero value is not usable; construct with New.
type Registry struct {
	mu       sync.Mutex
	entries  map[string]*symtab.Context
	hashes   map[string]uint64
	inFlight map[string]struct{}
	hits     int
	misses   int
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{
		entries:  make(map[string]*symtab.Context),
		hashes:   make(map[string]uint64),
		inFlight: make(map[string]struct{}),
	}
}

// Paths returns the canonical paths of every entry currently in the
// registry, in no particular order.
func (r *Registry) Paths() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	paths := make([]string, 0, len(r.entries))
	for p := range r.entries {
		paths = append(paths, p)
	}

	return paths
}

// Recheck re-reads canonical's source through loader and reports whether
// its xxh3 content hash differs from the one recorded when the registry
// last built it — used by the CLI's --all dump to flag a dependency whose
// text changed on disk since this process memoized it.
func (r *Registry) Recheck(canonical string, loader Loader) (changed bool, err error) {
	r.mu.Lock()
	want, ok := r.hashes[canonical]
	r.mu.Unlock()

	if !ok {
		return false, xerr.ErrIO.With(slog.String("path", canonical)).
			Wrap(xerr.Plain("no registry entry for path"))
	}

	src, err := loader.Read(canonical)
	if err != nil {
		return false, xerr.ErrIO.With(slog.String("path", canonical)).Wrap(err)
	}

	return Hash(src) != want, nil
}

// Stats reports the registry's current hit/miss/entry counts.
func (r *Registry) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()

	return Stats{Hits: r.hits, Misses: r.misses, Entries: len(r.entries)}
}

// Lookup returns the memoized context for a canonical path, if present.
func (r *Registry) Lookup(canonical string) (*symtab.Context, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ctx, ok := r.entries[canonical]

	return ctx, ok
}

// Build parses, resolves imports for, and evaluates the file at
// canonical, returning its fully-resolved effective context (external
// imports merged, then the file's own mappings merged over them). The
// result is memoized; a second Build of the same canonical path returns
// the cached context without reparsing.
func (r *Registry) Build(canonical string, loader Loader) (*symtab.Context, error) {
	if ctx, ok := r.checkCached(canonical); ok {
		return ctx, nil
	}

	if err := r.enter(canonical); err != nil {
		return nil, err
	}

	defer r.leave(canonical)

	src, err := loader.Read(canonical)
	if err != nil {
		return nil, xerr.ErrIO.With(slog.String("path", canonical)).Wrap(err)
	}

	prog, err := parser.Parse(canonical, src)
	if err != nil {
		return nil, err
	}

	owned := ast.ToOwnedProgram(prog)

	external := symtab.NewContext()

	for _, imp := range owned.Imports {
		depPath, err := loader.Resolve(canonical, imp.Path)
		if err != nil {
			return nil, err
		}

		depCtx, err := r.Build(depPath, loader)
		if err != nil {
			return nil, err
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

	// Render the file's own output now, per spec.md §4.8, discarding the
	// result — building a dependency exercises its top-level expressions
	// exactly as a standalone build would. Both the rendered text and any
	// expansion errors are discarded; they do not fail the import.
	eval.New().Render(owned, symtab.NewScope(effective)) //nolint:errcheck

	return r.store(canonical, effective, Hash(src))
}

func (r *Registry) checkCached(canonical string) (*symtab.Context, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ctx, ok := r.entries[canonical]
	if ok {
		r.hits++
	}

	return ctx, ok
}

func (r *Registry) enter(canonical string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, busy := r.inFlight[canonical]; busy {
		return xerr.ErrCyclicImport.With(slog.String("path", canonical))
	}

	r.inFlight[canonical] = struct{}{}
	r.misses++

	return nil
}

func (r *Registry) leave(canonical string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.inFlight, canonical)
}

func (r *Registry) store(canonical string, ctx *symtab.Context, hash uint64) (*symtab.Context, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[canonical]; exists {
		return nil, xerr.ErrDuplicateRegistry.With(slog.String("path", canonical))
	}

	r.entries[canonical] = ctx
	r.hashes[canonical] = hash

	return ctx, nil
}
