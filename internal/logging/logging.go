package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// New creates a console slog.Logger with provided level string.
func New(level string) *slog.Logger {
	return NewWithSinks(os.Stderr, level)
}

// NewWithSinks writes text records to w and publishes every enabled record
// to the given sinks. w may be nil when only sinks should receive output.
func NewWithSinks(w io.Writer, level string, sinks ...Sink) *slog.Logger {
	lvl := LevelFromString(level)
	var next slog.Handler
	if w != nil {
		next = slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})
	}
	if len(sinks) == 0 && next != nil {
		return slog.New(next)
	}
	return slog.New(NewSinkHandler(next, lvl, sinks...))
}

// LevelFromString maps a config string to a slog level; unknown values mean debug.
func LevelFromString(value string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "error":
		return slog.LevelError
	case "warn", "warning":
		return slog.LevelWarn
	case "info":
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}
