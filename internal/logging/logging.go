// =============================================================================
// ligaconv - Logging
// =============================================================================
//
// Setup builds the zerolog logger for a run:
//   - human readable console output on stderr
//   - optionally, JSON lines to a rotating log file (lumberjack)
//
// The logger travels in the context (logger.WithContext, zerolog.Ctx), so
// packages never reach for a global.
//
// =============================================================================

package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Settings configures Setup.
type Settings struct {
	// Level is one of trace, debug, info, warn, error.
	Level string

	// File is an optional log file path. Empty disables file output.
	File string

	// Verbose forces debug level.
	Verbose bool

	// Console receives the human readable output. Default: os.Stderr
	Console io.Writer
}

// ParseLevel converts a level name. An empty name means info.
func ParseLevel(name string) (zerolog.Level, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return zerolog.InfoLevel, nil
	}
	level, err := zerolog.ParseLevel(name)
	if err != nil {
		return zerolog.NoLevel, errors.Errorf("invalid log level %q: %w", name, err)
	}
	return level, nil
}

// Setup creates the logger. The returned closer releases the log file and
// must be called before exit.
func Setup(settings Settings) (zerolog.Logger, io.Closer, error) {
	level, err := ParseLevel(settings.Level)
	if err != nil {
		return zerolog.Nop(), nopCloser{}, err
	}
	if settings.Verbose && level > zerolog.DebugLevel {
		level = zerolog.DebugLevel
	}

	console := settings.Console
	if console == nil {
		console = os.Stderr
	}

	var writer io.Writer = zerolog.ConsoleWriter{Out: console, TimeFormat: "15:04:05"}
	var closer io.Closer = nopCloser{}

	if settings.File != "" {
		rotator := &lumberjack.Logger{
			Filename:   settings.File,
			MaxSize:    10, // megabytes
			MaxBackups: 5,
			MaxAge:     30, // days
			Compress:   true,
		}
		writer = zerolog.MultiLevelWriter(writer, rotator)
		closer = rotator
	}

	logger := zerolog.New(writer).Level(level).With().Timestamp().Logger()
	return logger, closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
