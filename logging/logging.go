/*
Package logging centralizes the zerolog setup shared by every binary and
component in this repo: a single console-or-JSON writer, a "component"
field convention, and level parsing from configuration.
*/
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Options configures New.
type Options struct {
	Level  string // "debug", "info", "warn", "error"; defaults to "info"
	Pretty bool   // human-readable console writer instead of JSON lines
	Output io.Writer // defaults to os.Stderr
}

// New builds the root logger every component derives its own
// `.With().Str("component", name).Logger()` from.
func New(opts Options) zerolog.Logger {
	level, err := zerolog.ParseLevel(opts.Level)
	if err != nil || opts.Level == "" {
		level = zerolog.InfoLevel
	}

	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	if opts.Pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	zerolog.TimeFieldFormat = time.RFC3339
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

// Component returns a child logger tagged with the owning package, the
// convention every package in this repo follows (config, identity,
// orchestrator, audit, api, ...).
func Component(log zerolog.Logger, name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}
