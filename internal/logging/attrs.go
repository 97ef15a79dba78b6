package logging

import (
	"context"
	"log/slog"
	"time"
)

// Attr constructors mirror slog's so call sites read uniformly.

func String(key, value string) slog.Attr { return slog.String(key, value) }

func Int(key string, value int) slog.Attr { return slog.Int(key, value) }

func Int64(key string, value int64) slog.Attr { return slog.Int64(key, value) }

func Duration(key string, value time.Duration) slog.Attr { return slog.Duration(key, value) }

// Error renders an error under the conventional "error" key.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	return slog.Any("error", err)
}

// NewNop returns a logger that discards everything.
func NewNop() *slog.Logger {
	return slog.New(discardHandler{})
}

// NewComponentLogger tags a logger with the component field so console
// output carries the subsystem prefix. A nil base yields a no-op logger.
func NewComponentLogger(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	return logger.With(String(FieldComponent, component))
}

type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (discardHandler) WithAttrs([]slog.Attr) slog.Handler        { return discardHandler{} }
func (discardHandler) WithGroup(string) slog.Handler             { return discardHandler{} }
