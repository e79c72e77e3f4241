package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardnew/exr/registry"
)

func TestLogConfigBuildRespectsLevel(t *testing.T) {
	cfg := &logConfig{Level: "warn", Format: "json", Pretty: false, Caller: false}

	log := cfg.build()
	assert.Equal(t, "WARN", log.Level().String())
}

func TestLogConfigVarsListAllowedNames(t *testing.T) {
	cfg := &logConfig{}
	vars := cfg.vars()

	assert.Contains(t, vars["logLevelEnum"], "trace")
	assert.Contains(t, vars["logFormatEnum"], "json")
}

func TestPprofDisabledIsNoop(t *testing.T) {
	var p pprofConfig

	assert.NotPanics(t, func() {
		stop := p.start()
		stop()
	})
	assert.Equal(t, "", p.group().Key)
}

func TestResolveSourceFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.exr")
	require.NoError(t, os.WriteFile(path, []byte("map greeting => 'hello'\n[greeting]"), 0o644))

	canonical, src, loader, err := resolveSource(path)
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(canonical))
	assert.Contains(t, src, "greeting")
	assert.IsType(t, registry.FileLoader{}, loader)
}

func TestResolveSourceMissingFileIsError(t *testing.T) {
	_, _, _, err := resolveSource(filepath.Join(t.TempDir(), "missing.exr"))
	require.Error(t, err)
}

func TestLoadProgramResolvesImportsAndLocalMappings(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.exr"), []byte("map hi => 'world'"), 0o644))

	aPath := filepath.Join(dir, "a.exr")
	require.NoError(t, os.WriteFile(aPath, []byte("import ./b\n[hi]"), 0o644))

	canonical, err := registry.Canonicalize(aPath)
	require.NoError(t, err)

	reg := registry.New()
	loader := registry.FileLoader{}

	src, err := loader.Read(canonical)
	require.NoError(t, err)

	owned, effective, err := loadProgram(canonical, src, loader, reg)
	require.NoError(t, err)

	require.Len(t, owned.Imports, 1)

	_, ok := effective.Lookup("hi")
	assert.True(t, ok)
}

func TestDumpAllWritesDepsReportWithChangeStatus(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.exr"), []byte("map hi => 'world'"), 0o644))

	aPath := filepath.Join(dir, "a.exr")
	require.NoError(t, os.WriteFile(aPath, []byte("import ./b\n[hi]"), 0o644))

	canonical, err := registry.Canonicalize(aPath)
	require.NoError(t, err)

	reg := registry.New()
	loader := registry.FileLoader{}

	src, err := loader.Read(canonical)
	require.NoError(t, err)

	owned, effective, err := loadProgram(canonical, src, loader, reg)
	require.NoError(t, err)

	require.NoError(t, dumpAll(canonical, src, owned, effective, reg, loader))

	stem := strings.TrimSuffix(canonical, ".exr")

	for _, suffix := range []string{".tokens", ".ast", ".ctx", ".deps"} {
		_, err := os.Stat(stem + suffix)
		assert.NoError(t, err, "expected %s to be written", suffix)
	}

	deps, err := os.ReadFile(stem + ".deps")
	require.NoError(t, err)
	assert.Contains(t, string(deps), "unchanged")

	// Mutate the dependency on disk, then rebuild the report: it must now
	// flag b.exr as changed.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.exr"), []byte("map hi => 'planet'"), 0o644))
	require.NoError(t, dumpAll(canonical, src, owned, effective, reg, loader))

	deps, err = os.ReadFile(stem + ".deps")
	require.NoError(t, err)
	assert.Contains(t, string(deps), "b.exr: changed")
}

func TestDiagnosticForFallsBackToFirstLine(t *testing.T) {
	d := diagnosticFor("a.exr", "line one\nline two", assertError{"boom"})
	assert.Equal(t, 1, d.Pos.Line)
	assert.Equal(t, 1, d.Pos.Column)
	assert.Contains(t, d.Reason, "boom")
}

func TestRenderDiagnosticContainsReasonAndCaret(t *testing.T) {
	d := diagnosticFor("a.exr", "bad input", assertError{"unknown mapping"})

	out := renderDiagnostic(d)
	assert.True(t, strings.Contains(out, "unknown mapping"))
}

// assertError is the minimal error implementation the diagnostic tests
// need.
type assertError struct{ msg string }

func (e assertError) Error() string { return e.msg }
