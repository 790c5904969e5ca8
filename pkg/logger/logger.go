package logger

import (
	"io"
	"log/slog"
	"os"
)

var Log = slog.New(slog.NewJSONHandler(os.Stdout, nil))

// Init replaces Log with a JSON logger. Debug output is only enabled outside production.
func Init(environment string) {
	Log = New(os.Stdout, environment)
	slog.SetDefault(Log)
}

// New builds a JSON logger writing to w.
func New(w io.Writer, environment string) *slog.Logger {
	level := slog.LevelDebug
	if environment == "production" {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	})).With("env", environment)
}
