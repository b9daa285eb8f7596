package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// ParseLevel maps a level name to a slog.Level. Empty means info.
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
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// NewRunLogger returns a logger writing the same text records to console and
// to logFile, which is opened in append mode and created if needed. The
// returned func closes the file. console may be nil.
func NewRunLogger(console io.Writer, logFile string, level slog.Level) (*SlogLogger, func() error, error) {
	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open run log: %w", err)
	}

	var w io.Writer = f
	if console != nil {
		w = io.MultiWriter(console, f)
	}

	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return NewSlogLogger(slog.New(h)), f.Close, nil
}

// Discard returns a logger that drops everything. It stands in for the
// console when a run has none and its run log cannot be opened.
func Discard() *SlogLogger {
	return NewSlogLogger(nil)
}
