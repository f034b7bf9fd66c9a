// Package logger builds the zerolog loggers used by the pipelines and binaries.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nvr-ai/go-vision/common"
)

// Format selects the log encoding.
type Format string

const (
	// FormatConsole writes human readable, coloured lines.
	FormatConsole Format = "console"
	// FormatJSON writes one JSON object per line.
	FormatJSON Format = "json"
)

// Config configures a logger.
type Config struct {
	// Level is a zerolog level name: trace, debug, info, warn, error.
	Level string `koanf:"level"`
	// Format is "console" or "json".
	Format Format `koanf:"format"`
}

// New builds a logger writing to stderr.
func New(cfg Config) (zerolog.Logger, error) {
	return NewWithWriter(cfg, os.Stderr)
}

// NewWithWriter builds a logger writing to w.
//
// Arguments:
//   - cfg: Level and format.
//   - w: Destination of the encoded log lines.
//
// Returns:
//   - zerolog.Logger: A timestamped logger at the configured level.
//   - error: KindInvalidArgument for an unknown level or format.
func NewWithWriter(cfg Config, w io.Writer) (zerolog.Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return zerolog.Nop(), err
	}

	switch cfg.Format {
	case FormatConsole, "":
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	case FormatJSON:
	default:
		return zerolog.Nop(), common.Errorf(common.KindInvalidArgument, "logger.New", "unknown log format %q", cfg.Format)
	}

	return zerolog.New(w).Level(level).With().Timestamp().Logger(), nil
}

// ParseLevel converts a level name to a zerolog level. An empty name is info.
func ParseLevel(name string) (zerolog.Level, error) {
	if name == "" {
		return zerolog.InfoLevel, nil
	}
	level, err := zerolog.ParseLevel(strings.ToLower(name))
	if err != nil {
		return zerolog.NoLevel, common.E(common.KindInvalidArgument, "logger.ParseLevel", err)
	}
	return level, nil
}

// Component returns a child logger tagged with the component name.
func Component(l zerolog.Logger, name string) zerolog.Logger {
	return l.With().Str("component", name).Logger()
}

// WithRun returns a child logger tagged with a fresh run id and the run id itself.
func WithRun(l zerolog.Logger) (zerolog.Logger, string) {
	id := uuid.NewString()
	return l.With().Str("run_id", id).Logger(), id
}
