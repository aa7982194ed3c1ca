package logger

import (
	"io"
	"os"

	"golang.org/x/exp/slog"
)

const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

// New builds the process logger for env, writing to stdout.
func New(env string) *slog.Logger {
	return NewWithWriter(env, os.Stdout)
}

// NewWithWriter builds a logger for env writing to w.
// Development gets human-readable text at debug level, production gets JSON
// at info level, anything else JSON at debug level.
func NewWithWriter(env string, w io.Writer) *slog.Logger {
	switch env {
	case EnvDevelopment:
		return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case EnvProduction:
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

// Err wraps an error as a log attribute.
func Err(err error) slog.Attr {
	return slog.String("error", err.Error())
}
