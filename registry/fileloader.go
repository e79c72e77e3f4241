package registry

import (
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/readahead"
	"github.com/zeebo/xxh3"

	"github.com/ardnew/exr/ast"
	"github.com/ardnew/exr/xerr"
)

// FileLoader resolves canonical paths against the OS filesystem. Source
// is read through a read-ahead buffer, since a build may pull in a chain
// of imports larger than any one file.
type FileLoader struct{}

// Read reads canonical's contents through a read-ahead buffered reader.
func (FileLoader) Read(canonical string) (string, error) {
	f, err := os.Open(canonical)
	if err != nil {
		return "", xerr.ErrIO.Wrap(err)
	}
	defer f.Close()

	ra, err := readahead.NewReaderSize(f, 4, 64*1024)
	if err != nil {
		return "", xerr.ErrIO.Wrap(err)
	}
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return "", xerr.ErrIO.Wrap(err)
	}

	return string(data), nil
}

// Resolve implements spec.md §6's file layout rule: directory-relative
// and file-relative imports resolve to "<dir>/<first-part>.exr", where
// dir is the importing file's own directory. Project-relative paths are
// reserved and rejected.
func (FileLoader) Resolve(fromCanonical string, path *ast.PathIdent[ast.Owned]) (string, error) {
	if path.Root == ast.RootProject {
		return "", xerr.ErrIO.Wrap(xerr.Plain("project-relative imports are reserved"))
	}

	if len(path.Parts) == 0 {
		return "", xerr.ErrIO.Wrap(xerr.Plain("import path has no parts"))
	}

	dir := filepath.Dir(fromCanonical)
	rel := string(path.Parts[0]) + ".exr"

	return filepath.Clean(filepath.Join(dir, rel)), nil
}

// Canonicalize resolves path to an absolute, cleaned form suitable as a
// registry key.
func Canonicalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", xerr.ErrIO.Wrap(err)
	}

	return filepath.Clean(abs), nil
}

// Hash returns a content digest for src, used by the CLI's --all log
// dump to report whether a rebuild actually changed a dependency's text.
func Hash(src string) uint64 {
	return xxh3.HashString(src)
}
