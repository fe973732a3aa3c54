package logger

import (
	"io"
	"log/slog"
	"os"
)

// InitJSONLogger sets the default slog logger to a JSON handler on stdout.
// Debug records are emitted only when debug is true.
func InitJSONLogger(debug bool) {
	slog.SetDefault(NewJSONLogger(os.Stdout, debug))
}

// NewJSONLogger returns a JSON logger writing to w.
func NewJSONLogger(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}
