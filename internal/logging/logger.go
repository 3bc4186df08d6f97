// Package logging builds the zerolog loggers used across the application and
// carries them, with a trace ID, through context.Context.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Output and format names accepted in Config.
const (
	OutputStderr = "stderr"
	OutputStdout = "stdout"
	OutputFile   = "file"

	FormatConsole = "console"
	FormatJSON    = "json"
)

// Config describes how a logger is built.
type Config struct {
	Level  string
	Format string
	Output string
	File   string
	Caller bool
}

// LogPathResult is the logger produced by NewLoggerWithPath together with what
// actually happened to the requested destination.
type LogPathResult struct {
	Logger         zerolog.Logger
	FilePath       string
	UsingFile      bool
	FallbackUsed   bool
	FallbackReason string

	file *os.File
}

// Close releases the log file, if one was opened.
func (r *LogPathResult) Close() error {
	if r == nil || r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}

// NewLoggerWithPath builds a logger from cfg. When a file is requested but cannot be
// opened, it falls back to stderr and records the reason instead of failing.
func NewLoggerWithPath(cfg Config) LogPathResult {
	lvl, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || cfg.Level == "" {
		lvl = zerolog.InfoLevel
	}

	result := LogPathResult{}
	var out io.Writer = os.Stderr
	if cfg.Output == OutputStdout {
		out = os.Stdout
	}

	if cfg.Output == OutputFile && cfg.File != "" {
		f, openErr := openLogFile(cfg.File)
		if openErr != nil {
			result.FallbackUsed = true
			result.FallbackReason = openErr.Error()
		} else {
			result.file = f
			result.FilePath = cfg.File
			result.UsingFile = true
			out = f
		}
	}

	if cfg.Format != FormatJSON && !result.UsingFile {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	ctx := zerolog.New(out).Level(lvl).With().Timestamp()
	if cfg.Caller {
		ctx = ctx.Caller()
	}
	result.Logger = ctx.Logger()
	return result
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	return f, nil
}

// ComponentLogger returns a child logger tagged with the component name.
func ComponentLogger(logger zerolog.Logger, component string) zerolog.Logger {
	return logger.With().Str("component", component).Logger()
}

// PrintLogPathMessage tells the user where logs are going.
func PrintLogPathMessage(w io.Writer, path string) {
	_, _ = fmt.Fprintf(w, "Logging to %s\n", path)
}

// PrintFallbackWarning tells the user that file logging could not be set up.
func PrintFallbackWarning(w io.Writer, reason string) {
	_, _ = fmt.Fprintf(w, "Warning: file logging unavailable (%s), using stderr\n", reason)
}
