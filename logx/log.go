// Package logx provides the structured logger used across exr's core and
// CLI, wrapping log/slog with the reference stack's functional-options
// configuration idiom (Make / Wrap / With, a cloned-config-per-derivation
// discipline).
package logx

import (
	"io"
	"log/slog"
)

// Logger is a slog.Logger plus the configuration used to build it, so
// Wrap can clone-and-override rather than needing the caller to replay
// every original option.
type Logger struct {
	*slog.Logger
	config
}

// Make creates a Logger writing to w, defaults applied then overridden by
// opts.
func Make(w io.Writer, opts ...Option) Logger {
	cfg := makeConfig(w, opts...)

	return Logger{config: cfg, Logger: slog.New(cfg.handler())}
}

// Wrap derives a new Logger from l's configuration, applying opts on top.
func (l Logger) Wrap(opts ...Option) Logger {
	cfg := l.clone(opts...)

	return Logger{config: cfg, Logger: slog.New(cfg.handler())}
}

// With returns a Logger that includes attrs in every record. With pretty
// output enabled, the pretty handler drops attrs and records omit them.
func (l Logger) With(attrs ...slog.Attr) Logger {
	if l.Logger == nil {
		return l
	}

	cfg := l.clone()

	return Logger{config: cfg, Logger: slog.New(l.Logger.Handler().WithAttrs(attrs))}
}

// Level reports the Logger's configured minimum level.
func (l Logger) Level() Level {
	if l.Logger == nil {
		return DefaultLevel
	}

	return l.level
}
