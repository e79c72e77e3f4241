package main

import (
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/exr/logx"
)

// logLevelNames and logFormatNames back the --log-level/--log-format enum
// constraints and their kong.Vars substitution in help text.
var (
	logLevelNames  = []string{"trace", "debug", "info", "warn", "error"}
	logFormatNames = []string{"text", "json"}
)

// logConfig holds the logging flags, grouped under "log" the way the
// reference CLI groups its logger options.
type logConfig struct {
	Level  string `default:"info" enum:"${logLevelEnum}"  help:"Set log level (${enum})"`
	Format string `default:"text" enum:"${logFormatEnum}" help:"Set log format (${enum})"`
	Pretty bool   `default:"true"                         help:"Enable colorized pretty printing" negatable:""`
	Caller bool   `default:"false"                        help:"Include source callsite in log records" negatable:""`
}

func (*logConfig) vars() kong.Vars {
	return kong.Vars{
		"logLevelEnum":  strings.Join(logLevelNames, ","),
		"logFormatEnum": strings.Join(logFormatNames, ","),
	}
}

func (*logConfig) group() kong.Group {
	return kong.Group{Key: "log", Title: "Logging options"}
}

// build constructs a logx.Logger from the parsed flag values.
func (f *logConfig) build() logx.Logger {
	return logx.Make(os.Stderr,
		logx.WithLevel(logx.ParseLevel(f.Level)),
		logx.WithFormat(logx.ParseFormat(f.Format)),
		logx.WithPretty(f.Pretty),
		logx.WithCaller(f.Caller),
	)
}
