//go:build pprof

package main

import (
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/exr/pkg"
	"github.com/ardnew/exr/profile"
)

type pprofConfig struct {
	Mode string `default:""            enum:",${pprofModeEnum}" help:"Enable profiling"         placeholder:"${enum}"`
	Dir  string `default:"${pprofDir}"                          help:"Profile output directory"                      type:"path"`
}

func (pprofConfig) vars() kong.Vars {
	return kong.Vars{
		"pprofModeEnum": strings.Join(profile.Modes(), ","),
		"pprofDir":      filepath.Join(pkg.CacheDir(), profile.Tag),
	}
}

func (pprofConfig) group() kong.Group {
	return kong.Group{Key: "pprof", Title: "Profiling (pprof)"}
}

// start starts profiling if a mode was selected, returning a stop func.
func (f pprofConfig) start() func() {
	if f.Mode == "" {
		return func() {}
	}

	var cfg profile.Config = func() (string, string, bool) { return "", "", false }

	cfg = profile.WithMode(f.Mode)(cfg)
	cfg = profile.WithPath(f.Dir)(cfg)
	cfg = profile.WithQuiet(true)(cfg)

	profiler := cfg.Start()

	return profiler.Stop
}
