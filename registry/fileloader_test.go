package registry_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardnew/exr/ast"
	"github.com/ardnew/exr/registry"
)

func TestFileLoaderReadReturnsContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.exr")
	require.NoError(t, os.WriteFile(path, []byte("map greeting => 'hello'"), 0o644))

	var loader registry.FileLoader

	src, err := loader.Read(path)
	require.NoError(t, err)
	assert.Equal(t, "map greeting => 'hello'", src)
}

func TestFileLoaderReadMissingFileIsIOError(t *testing.T) {
	var loader registry.FileLoader

	_, err := loader.Read(filepath.Join(t.TempDir(), "missing.exr"))
	require.Error(t, err)
}

func TestFileLoaderResolveJoinsDirAndFirstPart(t *testing.T) {
	var loader registry.FileLoader

	path := &ast.PathIdent[ast.Owned]{Root: ast.RootDir, Parts: []ast.Owned{"b"}}

	got, err := loader.Resolve("/proj/a.exr", path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Clean("/proj/b.exr"), got)
}

func TestFileLoaderResolveRejectsProjectRoot(t *testing.T) {
	var loader registry.FileLoader

	path := &ast.PathIdent[ast.Owned]{Root: ast.RootProject, Parts: []ast.Owned{"b"}}

	_, err := loader.Resolve("/proj/a.exr", path)
	require.Error(t, err)
	assert.ErrorContains(t, err, "reserved")
}

func TestFileLoaderResolveRejectsEmptyParts(t *testing.T) {
	var loader registry.FileLoader

	path := &ast.PathIdent[ast.Owned]{Root: ast.RootDir, Parts: nil}

	_, err := loader.Resolve("/proj/a.exr", path)
	require.Error(t, err)
}
