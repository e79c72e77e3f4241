package registry_test

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardnew/exr/ast"
	"github.com/ardnew/exr/registry"
)

// memLoader serves sources from an in-memory map keyed by canonical path,
// resolving an import's first path part to "<dir>/<part>.exr" exactly as
// registry.FileLoader does, without touching the filesystem.
type memLoader struct {
	sources map[string]string
}

func (m memLoader) Read(canonical string) (string, error) {
	src, ok := m.sources[canonical]
	if !ok {
		return "", fmt.Errorf("no source for %s", canonical)
	}

	return src, nil
}

func (m memLoader) Resolve(fromCanonical string, path *ast.PathIdent[ast.Owned]) (string, error) {
	dir := filepath.Dir(fromCanonical)

	return filepath.Join(dir, string(path.Parts[0])+".exr"), nil
}

// Scenario 5 from spec.md §8: a.exr imports ./b, b.exr defines hi, and
// a.exr splices it — output "world", registry holding exactly two
// entries afterward.
func TestScenario5ImportAcrossFiles(t *testing.T) {
	loader := memLoader{sources: map[string]string{
		"/proj/a.exr": "import ./b\n[hi]",
		"/proj/b.exr": "map hi => 'world'",
	}}

	reg := registry.New()

	ctx, err := reg.Build("/proj/a.exr", loader)
	require.NoError(t, err)

	_, ok := ctx.Lookup("hi")
	assert.True(t, ok)

	stats := reg.Stats()
	assert.Equal(t, 2, stats.Entries)
	assert.Equal(t, 0, stats.Hits)
	assert.Equal(t, 2, stats.Misses)
}

// Registry idempotence invariant from spec.md §8: building the same file
// twice (the second time hitting the cache) returns the same context and
// leaves the registry unchanged.
func TestRegistryIdempotentRebuild(t *testing.T) {
	loader := memLoader{sources: map[string]string{
		"/proj/a.exr": "map greeting => 'hello'\n[greeting]",
	}}

	reg := registry.New()

	first, err := reg.Build("/proj/a.exr", loader)
	require.NoError(t, err)

	second, err := reg.Build("/proj/a.exr", loader)
	require.NoError(t, err)

	assert.Same(t, first, second)

	stats := reg.Stats()
	assert.Equal(t, 1, stats.Entries)
	assert.Equal(t, 1, stats.Hits)
	assert.Equal(t, 1, stats.Misses)
}

func TestRegistryCyclicImportIsRejected(t *testing.T) {
	loader := memLoader{sources: map[string]string{
		"/proj/a.exr": "import ./b\n[x]",
		"/proj/b.exr": "import ./a\n[y]",
	}}

	reg := registry.New()

	_, err := reg.Build("/proj/a.exr", loader)
	require.Error(t, err)
	assert.ErrorContains(t, err, "cyclic import")
}

func TestRegistryDuplicateDependencyIsSharedNotRebuilt(t *testing.T) {
	// Both b and c import d; d must be built exactly once.
	loader := memLoader{sources: map[string]string{
		"/proj/a.exr": "import ./b\nimport ./c\n[x]",
		"/proj/b.exr": "import ./d\nmap x => '1'",
		"/proj/c.exr": "import ./d",
		"/proj/d.exr": "map shared => 'd'",
	}}

	reg := registry.New()

	_, err := reg.Build("/proj/a.exr", loader)
	require.NoError(t, err)

	stats := reg.Stats()
	assert.Equal(t, 4, stats.Entries)
	assert.Equal(t, 1, stats.Hits) // c's import of d hits the cache b already built
}

func TestRegistryMissingSourceIsIOError(t *testing.T) {
	loader := memLoader{sources: map[string]string{}}

	reg := registry.New()

	_, err := reg.Build("/proj/missing.exr", loader)
	require.Error(t, err)
}

func TestCanonicalizeIsAbsoluteAndClean(t *testing.T) {
	abs, err := registry.Canonicalize("a/../a.exr")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(abs))
	assert.Equal(t, "a.exr", filepath.Base(abs))
}

func TestHashIsDeterministic(t *testing.T) {
	a := registry.Hash("same content")
	b := registry.Hash("same content")
	c := registry.Hash("different content")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestRegistryPathsListsEveryEntry(t *testing.T) {
	loader := memLoader{sources: map[string]string{
		"/proj/a.exr": "import ./b\n[x]",
		"/proj/b.exr": "map x => '1'",
	}}

	reg := registry.New()

	_, err := reg.Build("/proj/a.exr", loader)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"/proj/a.exr", "/proj/b.exr"}, reg.Paths())
}

func TestRegistryRecheckDetectsChangedSource(t *testing.T) {
	loader := memLoader{sources: map[string]string{
		"/proj/a.exr": "map greeting => 'hello'",
	}}

	reg := registry.New()

	_, err := reg.Build("/proj/a.exr", loader)
	require.NoError(t, err)

	changed, err := reg.Recheck("/proj/a.exr", loader)
	require.NoError(t, err)
	assert.False(t, changed)

	loader.sources["/proj/a.exr"] = "map greeting => 'goodbye'"

	changed, err = reg.Recheck("/proj/a.exr", loader)
	require.NoError(t, err)
	assert.True(t, changed)
}

func TestRegistryRecheckUnknownPathIsError(t *testing.T) {
	reg := registry.New()

	_, err := reg.Recheck("/proj/never-built.exr", memLoader{sources: map[string]string{}})
	require.Error(t, err)
}
