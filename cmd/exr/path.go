package main

import (
	"os"
	"path/filepath"

	"github.com/ardnew/exr/pkg"
)

// baseConfig is the base name of the configuration file.
const baseConfig = "config"

// defaultDirMode is the permission mode for created directories.
const defaultDirMode = 0o700

// configPath returns the absolute path formed by joining pkg.ConfigDir()
// with elem.
func configPath(elem ...string) string {
	return filepath.Join(append([]string{pkg.ConfigDir()}, elem...)...)
}

// mkdirAllRequired creates the config and cache directories used by the
// CLI's defaults, if they do not already exist.
func mkdirAllRequired() error {
	if err := os.MkdirAll(pkg.ConfigDir(), defaultDirMode); err != nil {
		return err
	}

	return os.MkdirAll(pkg.CacheDir(), defaultDirMode)
}
