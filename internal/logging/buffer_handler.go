package logging

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"time"
)

// ModuleKey is the attribute every module logger carries.
const ModuleKey = "module"

// defaultModule labels records logged without a module attribute.
const defaultModule = "app"

// LogCallback is called when a new log entry is written.
// Used to publish log events without creating import cycles.
type LogCallback func(entry LogEntry)

// BufferHandler keeps records in the package ring buffer and hands each
// one to the registered LogCallback. Group names are joined with '.'.
type BufferHandler struct {
	level  slog.Leveler
	module string
	attrs  map[string]any // flattened WithAttrs values
	prefix string
}

// NewBufferHandler creates a buffer handler filtering at level.
func NewBufferHandler(level slog.Leveler) *BufferHandler {
	return &BufferHandler{level: level, module: defaultModule}
}

// Enabled implements slog.Handler.
func (h *BufferHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle implements slog.Handler.
func (h *BufferHandler) Handle(_ context.Context, r slog.Record) error {
	entry := LogEntry{
		Timestamp:  r.Time,
		Level:      levelName(r.Level),
		Module:     h.module,
		Message:    r.Message,
		Attributes: make(map[string]any, len(h.attrs)+r.NumAttrs()),
	}
	maps.Copy(entry.Attributes, h.attrs)
	r.Attrs(func(a slog.Attr) bool {
		if h.prefix == "" && a.Key == ModuleKey {
			entry.Module = a.Value.String()
			return true
		}
		collectAttr(entry.Attributes, h.prefix, a)
		return true
	})

	logBuffer.Write(entry)
	if cb := currentCallback(); cb != nil {
		cb(entry)
	}
	return nil
}

// WithAttrs implements slog.Handler.
func (h *BufferHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = maps.Clone(h.attrs)
	if next.attrs == nil {
		next.attrs = make(map[string]any, len(attrs))
	}
	for _, a := range attrs {
		if h.prefix == "" && a.Key == ModuleKey {
			next.module = a.Value.String()
			continue
		}
		collectAttr(next.attrs, h.prefix, a)
	}
	return &next
}

// WithGroup implements slog.Handler.
func (h *BufferHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.prefix = h.prefix + name + "."
	return &next
}

// collectAttr stores a under its dotted key. Errors, times and durations
// are stored as text so entries marshal cleanly.
func collectAttr(dst map[string]any, prefix string, a slog.Attr) {
	v := a.Value.Resolve()
	if a.Key == "" && v.Kind() != slog.KindGroup {
		return
	}
	key := prefix + a.Key

	switch v.Kind() {
	case slog.KindGroup:
		inner := prefix
		if a.Key != "" {
			inner = key + "."
		}
		for _, ga := range v.Group() {
			collectAttr(dst, inner, ga)
		}
	case slog.KindTime:
		dst[key] = v.Time().Format(time.RFC3339Nano)
	case slog.KindDuration:
		dst[key] = v.Duration().String()
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			dst[key] = err.Error()
			return
		}
		dst[key] = v.Any()
	default:
		dst[key] = v.Any()
	}
}

func levelName(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "error"
	case level >= slog.LevelWarn:
		return "warn"
	case level >= slog.LevelInfo:
		return "info"
	}
	return "debug"
}

// FormatLogLine renders an entry as one panel line:
// "<time> [LEVEL] [module] message k=v ..." with keys sorted.
func FormatLogLine(entry LogEntry) string {
	line := fmt.Sprintf("%s [%s] [%s] %s",
		entry.Timestamp.Format(time.RFC3339Nano),
		strings.ToUpper(entry.Level),
		entry.Module,
		entry.Message)

	parts := []string{line}
	for _, k := range slices.Sorted(maps.Keys(entry.Attributes)) {
		parts = append(parts, fmt.Sprintf("%s=%v", k, entry.Attributes[k]))
	}
	return strings.Join(parts, " ")
}
