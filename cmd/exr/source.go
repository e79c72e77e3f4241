package main

import (
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/readahead"

	"github.com/ardnew/exr/registry"
)

// stdinCanonical is the sentinel canonical path used when reading a
// top-level source from stdin. Its directory (the process cwd) is where
// relative imports resolve from, since stdin has no real file location.
func stdinCanonical() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}

	return filepath.Join(cwd, "<stdin>.exr"), nil
}

// readStdin buffers all of stdin through a read-ahead reader, the same
// buffering strategy registry.FileLoader uses for files.
func readStdin() (string, error) {
	ra, err := readahead.NewReaderSize(os.Stdin, 4, 64*1024)
	if err != nil {
		return "", err
	}
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return "", err
	}

	return string(data), nil
}

// stdinLoader wraps registry.FileLoader, substituting buffered stdin
// content for the one canonical path that names the top-level source
// read from stdin; every other path (an import reached while resolving
// that source) falls through to the filesystem as usual.
type stdinLoader struct {
	registry.FileLoader

	canonical string
	source    string
}

func (l stdinLoader) Read(canonical string) (string, error) {
	if canonical == l.canonical {
		return l.source, nil
	}

	return l.FileLoader.Read(canonical)
}

// resolveSource determines the canonical path and loader for the source
// argument, either "-" (stdin) or a file path.
func resolveSource(arg string) (canonical string, src string, loader registry.Loader, err error) {
	if arg == "-" {
		canonical, err = stdinCanonical()
		if err != nil {
			return "", "", nil, err
		}

		src, err = readStdin()
		if err != nil {
			return "", "", nil, err
		}

		return canonical, src, stdinLoader{canonical: canonical, source: src}, nil
	}

	canonical, err = registry.Canonicalize(arg)
	if err != nil {
		return "", "", nil, err
	}

	fl := registry.FileLoader{}

	src, err = fl.Read(canonical)
	if err != nil {
		return "", "", nil, err
	}

	return canonical, src, fl, nil
}
