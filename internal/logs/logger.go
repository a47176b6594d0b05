// Package logs builds the slog logger used by the CLI and the shell.
//
// Console records go to a tint handler; colour is enabled only when the
// writer is a terminal. An optional log file receives the same records as
// JSON. Both handlers are combined with slog-multi.
package logs

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	slogmulti "github.com/samber/slog-multi"
)

// TimeFormat is the console timestamp layout.
const TimeFormat = "15:04:05.000"

// Options configures New.
type Options struct {
	// Level is the minimum level for every handler.
	Level slog.Leveler
	// Writer receives console records. Default: os.Stderr.
	Writer io.Writer
	// File, when set, receives JSON records.
	File io.Writer
	// NoColor forces plain console output. Colour is also off when Writer
	// is not a terminal.
	NoColor bool
}

// New creates a logger from opts.
func New(opts Options) *slog.Logger {
	level := opts.Level
	if level == nil {
		level = slog.LevelInfo
	}
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}

	handlers := []slog.Handler{
		tint.NewHandler(w, &tint.Options{
			Level:       level,
			TimeFormat:  TimeFormat,
			NoColor:     opts.NoColor || !IsTerminal(w),
			ReplaceAttr: highlightErrors,
		}),
	}
	if opts.File != nil {
		handlers = append(handlers, slog.NewJSONHandler(opts.File, &slog.HandlerOptions{
			Level: level,
		}))
	}

	if len(handlers) == 1 {
		return slog.New(handlers[0])
	}
	return slog.New(slogmulti.Fanout(handlers...))
}

// highlightErrors prints error values in red.
func highlightErrors(_ []string, a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindAny {
		if _, ok := a.Value.Any().(error); ok {
			return tint.Attr(9, a)
		}
	}
	return a
}

// IsTerminal reports whether w is a terminal file.
func IsTerminal(w any) bool {
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// ParseLevel converts debug, info, warn or error into a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: must be debug, info, warn or error", s)
	}
}

// OpenFile opens path for appending JSON log records.
func OpenFile(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}
