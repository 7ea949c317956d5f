// Package logger builds the zerolog logger shared by every component.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Config configures a logger.
type Config struct {
	// Level is a zerolog level name ("debug", "info", "warn", "error").
	// Empty or unknown values fall back to "warn" so the shell stays quiet.
	Level string
	// Component is attached to every event as the "component" field.
	Component string
	// Writer receives the output; nil means stderr.
	Writer io.Writer
	// JSON disables the human-readable console writer.
	JSON bool
}

// New returns a leveled logger writing to cfg.Writer.
func New(cfg Config) zerolog.Logger {
	w := cfg.Writer
	if w == nil {
		w = os.Stderr
	}
	if !cfg.JSON {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly, NoColor: w != os.Stderr}
	}

	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(cfg.Level)))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.WarnLevel
	}

	ctx := zerolog.New(w).Level(level).With().Timestamp()
	if cfg.Component != "" {
		ctx = ctx.Str("component", cfg.Component)
	}
	return ctx.Logger()
}

// Nop returns a logger that discards everything.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}
