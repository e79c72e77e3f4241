package logx

// Option applies a configuration value to a config.
type Option func(config) config

func apply(cfg config, opts ...Option) config {
	for _, opt := range opts {
		cfg = opt(cfg)
	}

	return cfg
}

// WithLevel sets the minimum level a Logger emits.
func WithLevel(l Level) Option {
	return func(c config) config { c.level = l; return c }
}

// WithFormat selects the output encoding.
func WithFormat(f Format) Option {
	return func(c config) config { c.format = f; return c }
}

// WithCaller enables source file:line attribution on every record.
func WithCaller(on bool) Option {
	return func(c config) config { c.caller = on; return c }
}

// WithPretty enables lipgloss-colored level tags in FormatText output.
func WithPretty(on bool) Option {
	return func(c config) config { c.pretty = on; return c }
}
