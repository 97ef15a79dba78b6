package logging

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"gaffer/internal/config"
)

// NewFromConfig builds the process logger: stdout always, plus an append-only
// log file under the configured log directory when one is set. Format and
// level come from the logging config section.
func NewFromConfig(cfg *config.Config) (*slog.Logger, error) {
	format := "console"
	level := slog.LevelInfo
	logDir := ""
	if cfg != nil {
		format = cfg.Logging.Format
		level = ParseLevel(cfg.Logging.Level)
		logDir = cfg.Paths.LogDir
	}

	var out io.Writer = os.Stdout
	if logDir != "" {
		if err := os.MkdirAll(logDir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure log directory: %w", err)
		}
		path := filepath.Join(logDir, "gaffer.log")
		file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file %s: %w", path, err)
		}
		out = io.MultiWriter(os.Stdout, file)
	}

	if strings.EqualFold(strings.TrimSpace(format), "json") {
		handler := slog.NewJSONHandler(out, &slog.HandlerOptions{
			Level:       level,
			ReplaceAttr: normalizeJSONAttr,
		})
		return slog.New(handler), nil
	}
	return slog.New(newConsoleHandler(out, level)), nil
}

// ParseLevel maps a config level string onto a slog level. Unknown values
// fall back to info.
func ParseLevel(level string) slog.Level {
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

func normalizeJSONAttr(_ []string, attr slog.Attr) slog.Attr {
	if attr.Key == slog.TimeKey && attr.Value.Kind() == slog.KindTime {
		attr.Value = slog.StringValue(attr.Value.Time().UTC().Format(time.RFC3339))
	}
	return attr
}

// consoleHandler emits one line per record:
//
//	2026-01-02T15:04:05Z INFO  worker: run claimed run_id=abc
//
// The component attribute becomes the prefix before the message instead of a
// trailing key=value pair.
type consoleHandler struct {
	out    io.Writer
	level  slog.Level
	prefix string
	attrs  []slog.Attr

	mu *sync.Mutex
}

func newConsoleHandler(out io.Writer, level slog.Level) *consoleHandler {
	return &consoleHandler{out: out, level: level, mu: &sync.Mutex{}}
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(append([]slog.Attr(nil), h.attrs...), attrs...)
	return &clone
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	clone := *h
	if name != "" {
		clone.prefix = h.prefix + name + "."
	}
	return &clone
}

func (h *consoleHandler) Handle(_ context.Context, record slog.Record) error {
	when := record.Time
	if when.IsZero() {
		when = time.Now()
	}

	var component string
	var pairs bytes.Buffer
	emit := func(attr slog.Attr) {
		if attr.Key == FieldComponent && component == "" {
			component = attr.Value.Resolve().String()
			return
		}
		h.appendAttr(&pairs, h.prefix, attr)
	}
	for _, attr := range h.attrs {
		emit(attr)
	}
	record.Attrs(func(attr slog.Attr) bool {
		emit(attr)
		return true
	})

	var line bytes.Buffer
	line.WriteString(when.UTC().Format(time.RFC3339))
	line.WriteByte(' ')
	fmt.Fprintf(&line, "%-5s ", levelLabel(record.Level))
	if component != "" {
		line.WriteString(component)
		line.WriteString(": ")
	}
	line.WriteString(record.Message)
	line.Write(pairs.Bytes())
	line.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.out.Write(line.Bytes())
	return err
}

func (h *consoleHandler) appendAttr(buf *bytes.Buffer, prefix string, attr slog.Attr) {
	attr.Value = attr.Value.Resolve()
	if attr.Equal(slog.Attr{}) {
		return
	}
	if attr.Value.Kind() == slog.KindGroup {
		nested := prefix
		if attr.Key != "" {
			nested = prefix + attr.Key + "."
		}
		for _, member := range attr.Value.Group() {
			h.appendAttr(buf, nested, member)
		}
		return
	}
	buf.WriteByte(' ')
	buf.WriteString(prefix + attr.Key)
	buf.WriteByte('=')
	buf.WriteString(renderValue(attr.Value))
}

func renderValue(v slog.Value) string {
	switch v.Kind() {
	case slog.KindString:
		return quoteIfNeeded(v.String())
	case slog.KindTime:
		return v.Time().UTC().Format(time.RFC3339)
	case slog.KindDuration:
		return v.Duration().String()
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			return quoteIfNeeded(err.Error())
		}
		return quoteIfNeeded(fmt.Sprint(v.Any()))
	default:
		return v.String()
	}
}

func quoteIfNeeded(s string) string {
	if s == "" || strings.ContainsAny(s, " \t\n=\"") {
		return strconv.Quote(s)
	}
	return s
}

func levelLabel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARN"
	case level >= slog.LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}
