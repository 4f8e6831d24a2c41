// Package logging builds the client logger. The interactive list owns the
// terminal, so logs normally go to a file.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
)

// Stderr is the LogFile value that selects standard error.
const Stderr = "-"

// Options configures New.
type Options struct {
	File  string // path, Stderr, or empty to discard
	Level string // debug, info, warn, error
}

// Logger pairs a logger with the file it writes to.
type Logger struct {
	*log.Logger
	closer io.Closer
}

// New opens the log destination and returns a leveled logfmt logger.
func New(opts Options) (*Logger, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}

	var (
		w      io.Writer
		closer io.Closer
	)
	switch opts.File {
	case "":
		w = io.Discard
	case Stderr:
		w = os.Stderr
	default:
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
			return nil, fmt.Errorf("create log dir: %w", err)
		}
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		w, closer = f, f
	}

	formatter := log.LogfmtFormatter
	if opts.File == Stderr {
		formatter = log.TextFormatter
	}
	l := log.NewWithOptions(w, log.Options{
		Level:           level,
		Formatter:       formatter,
		ReportTimestamp: true,
		Prefix:          "tada",
	})
	return &Logger{Logger: l, closer: closer}, nil
}

// Close closes the log file, if any.
func (l *Logger) Close() error {
	if l == nil || l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

// ParseLevel maps a level name to a charmbracelet/log Level.
func ParseLevel(s string) (log.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return log.DebugLevel, nil
	case "", "info":
		return log.InfoLevel, nil
	case "warn", "warning":
		return log.WarnLevel, nil
	case "error":
		return log.ErrorLevel, nil
	}
	return log.InfoLevel, fmt.Errorf("invalid log level: %s", s)
}
