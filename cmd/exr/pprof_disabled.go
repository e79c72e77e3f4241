//go:build !pprof

package main

import "github.com/alecthomas/kong"

// pprofConfig is empty when built without the pprof tag. It intentionally
// never imports the profile package, so a default build never compiles
// package profile's build-tag-gated internals at all.
type pprofConfig struct{}

func (pprofConfig) vars() kong.Vars { return kong.Vars{} }

func (pprofConfig) group() kong.Group { return kong.Group{} }

func (pprofConfig) start() func() { return func() {} }
