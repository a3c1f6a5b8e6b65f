// Package logging builds the application logger. Conversion events are
// mirrored into a per-day log file so failures can be inspected after
// the window is gone.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Options describes logger construction parameters.
type Options struct {
	// Dir is the directory the log file is created in.
	Dir string
	// Level accepts debug, info, warn or error. Empty means info.
	Level string
	// Stderr mirrors records to stderr in addition to the file.
	Stderr bool
}

// New constructs a slog logger writing to a per-day file under opts.Dir.
// The returned closer owns the file handle.
func New(opts Options) (*slog.Logger, io.Closer, error) {
	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}

	name := fmt.Sprintf("opus2mp3_%s.log", time.Now().Format("2006-01-02"))
	file, err := os.OpenFile(filepath.Join(opts.Dir, name), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}

	var out io.Writer = file
	if opts.Stderr {
		out = io.MultiWriter(file, os.Stderr)
	}

	handler := slog.NewTextHandler(out, &slog.HandlerOptions{Level: parseLevel(opts.Level)})
	return slog.New(handler), file, nil
}

// Discard returns a logger that drops everything. Used in tests and as
// a fallback when the log file cannot be opened.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
