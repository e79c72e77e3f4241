// Package symtab implements the file-level and scoped symbol tables
// described in spec.md §4.4: an ordered name → overload-list map, a
// parent-chained scope for parameter bindings, and positional overload
// resolution.
package symtab

import (
	"fmt"
	"io"

	"github.com/sahilm/fuzzy"

	"github.com/ardnew/exr/ast"
)

// Context is a program-level symbol table: an ordered map from name to
// its list of overloads, insertion order preserved within a file.
type Context struct {
	order    []string
	mappings map[string][]*ast.Mapping[ast.Owned]
}

// NewContext creates an empty program context.
func NewContext() *Context {
	return &Context{mappings: make(map[string][]*ast.Mapping[ast.Owned])}
}

// Define appends m to the overload list for its name.
func (c *Context) Define(m *ast.Mapping[ast.Owned]) {
	name := string(m.Name)

	if _, ok := c.mappings[name]; !ok {
		c.order = append(c.order, name)
	}

	c.mappings[name] = append(c.mappings[name], m)
}

// Lookup returns the overload list for name, if any.
func (c *Context) Lookup(name string) ([]*ast.Mapping[ast.Owned], bool) {
	m, ok := c.mappings[name]

	return m, ok
}

// Names returns every defined name, in first-definition order.
func (c *Context) Names() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)

	return out
}

// Merge appends other's overload lists after the receiver's own, per
// name — existing overloads for a name precede incoming ones, per
// spec.md §3.
func (c *Context) Merge(other *Context) {
	if other == nil {
		return
	}

	for _, name := range other.order {
		if _, ok := c.mappings[name]; !ok {
			c.order = append(c.order, name)
		}

		c.mappings[name] = append(c.mappings[name], other.mappings[name]...)
	}
}

// Print writes one line per name, listing each overload's arity and
// defining position, in first-definition order.
func (c *Context) Print(w io.Writer) {
	for _, name := range c.order {
		for i, m := range c.mappings[name] {
			fmt.Fprintf(w, "%s#%d (%d params) @ %s\n", name, i, len(m.Parameters), m.Pos)
		}
	}
}

// Scope is a scoped context used during mapping-application evaluation:
// locals (parameter bindings) are consulted first, then the parent
// chain, terminating at the program Context.
type Scope struct {
	parent  *Scope
	program *Context
	locals  map[string][]*ast.Mapping[ast.Owned]
}

// NewScope creates the root scope over a program context.
func NewScope(program *Context) *Scope {
	return &Scope{program: program, locals: make(map[string][]*ast.Mapping[ast.Owned])}
}

// Child creates a fresh scope for one mapping application, parented to s.
func (s *Scope) Child() *Scope {
	return &Scope{parent: s, program: s.program, locals: make(map[string][]*ast.Mapping[ast.Owned])}
}

// Bind installs m as the (sole) overload for name in s's locals,
// shadowing any outer definition — this is how a parameter placeholder
// becomes callable as a zero-argument mapping inside a translation.
func (s *Scope) Bind(name string, m *ast.Mapping[ast.Owned]) {
	s.locals[name] = []*ast.Mapping[ast.Owned]{m}
}

// Lookup consults locals first, then delegates up the parent chain to
// the program context.
func (s *Scope) Lookup(name string) ([]*ast.Mapping[ast.Owned], bool) {
	if m, ok := s.locals[name]; ok {
		return m, true
	}

	if s.parent != nil {
		return s.parent.Lookup(name)
	}

	return s.program.Lookup(name)
}

// Program returns the scope's root program context.
func (s *Scope) Program() *Context { return s.program }

// Suggest ranks every name reachable from s (locals, parent chain, and
// the program context) by fuzzy-match score against a misspelled or
// unresolved query, most likely first. Used to annotate an unresolved-
// mapping diagnostic with "did you mean" candidates.
func (s *Scope) Suggest(query string, limit int) []string {
	seen := make(map[string]struct{})

	var candidates []string

	for scope := s; scope != nil; scope = scope.parent {
		for name := range scope.locals {
			if _, ok := seen[name]; !ok {
				seen[name] = struct{}{}
				candidates = append(candidates, name)
			}
		}
	}

	for _, name := range s.program.Names() {
		if _, ok := seen[name]; !ok {
			seen[name] = struct{}{}
			candidates = append(candidates, name)
		}
	}

	matches := fuzzy.Find(query, candidates)
	if len(matches) > limit {
		matches = matches[:limit]
	}

	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.Str
	}

	return out
}
