// Package logging builds the single process-wide logger Raygun threads
// through its constructors, following the teacher's convention of building
// one logger at bootstrap rather than a per-package global.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// New builds the process logger. Raygun's TUI owns stdout, so all logging
// goes to stderr; level defaults to "info" and is overridable via the
// RAYGUN_LOG environment variable ("debug", "warn", "error", ...).
func New() zerolog.Logger {
	return NewTo(os.Stderr)
}

// NewTo builds a logger writing to w, used directly by tests.
func NewTo(w io.Writer) zerolog.Logger {
	level := parseLevel(os.Getenv("RAYGUN_LOG"))
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

func parseLevel(raw string) zerolog.Level {
	if raw == "" {
		return zerolog.InfoLevel
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(raw))
	if err != nil {
		return zerolog.InfoLevel
	}
	return lvl
}
