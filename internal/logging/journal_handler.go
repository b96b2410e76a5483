package logging

import (
	"context"
	"log/slog"
	"maps"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/coreos/go-systemd/v22/journal"
)

// SyslogIdentifier tags every journal entry.
const SyslogIdentifier = "gpiosample"

// JournalHandler sends records to the systemd journal as structured
// fields. Attributes become upper-case fields, the module attribute
// becomes GPIOSAMPLE_MODULE and the call site fills CODE_FILE, CODE_LINE
// and CODE_FUNC.
type JournalHandler struct {
	level  slog.Leveler
	fields map[string]string // rendered WithAttrs fields
	prefix string            // open groups joined with '_'
	send   func(message string, priority journal.Priority, vars map[string]string) error
}

// NewJournalHandler creates a journal handler filtering at level.
func NewJournalHandler(level slog.Leveler) *JournalHandler {
	return &JournalHandler{
		level:  level,
		fields: map[string]string{},
		send:   journal.Send,
	}
}

// Enabled implements slog.Handler.
func (h *JournalHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle implements slog.Handler.
func (h *JournalHandler) Handle(_ context.Context, r slog.Record) error {
	vars := maps.Clone(h.fields)
	vars["SYSLOG_IDENTIFIER"] = SyslogIdentifier
	r.Attrs(func(a slog.Attr) bool {
		renderJournalAttr(vars, h.prefix, a)
		return true
	})
	if r.PC != 0 {
		frame, _ := runtime.CallersFrames([]uintptr{r.PC}).Next()
		vars["CODE_FILE"] = frame.File
		vars["CODE_LINE"] = strconv.Itoa(frame.Line)
		vars["CODE_FUNC"] = frame.Function
	}

	return h.send(r.Message, journalPriority(r.Level), vars)
}

// WithAttrs implements slog.Handler.
func (h *JournalHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	fields := maps.Clone(h.fields)
	for _, a := range attrs {
		renderJournalAttr(fields, h.prefix, a)
	}
	return &JournalHandler{level: h.level, fields: fields, prefix: h.prefix, send: h.send}
}

// WithGroup implements slog.Handler.
func (h *JournalHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &JournalHandler{level: h.level, fields: h.fields, prefix: h.prefix + name + "_", send: h.send}
}

func journalPriority(level slog.Level) journal.Priority {
	if level >= slog.LevelError {
		return journal.PriErr
	}
	if level >= slog.LevelWarn {
		return journal.PriWarning
	}
	if level >= slog.LevelInfo {
		return journal.PriInfo
	}
	return journal.PriDebug
}

func renderJournalAttr(vars map[string]string, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	if a.Value.Kind() == slog.KindGroup {
		inner := prefix
		if a.Key != "" {
			inner += a.Key + "_"
		}
		for _, ga := range a.Value.Group() {
			renderJournalAttr(vars, inner, ga)
		}
		return
	}

	key := journalFieldName(prefix + a.Key)
	if prefix == "" && a.Key == ModuleKey {
		key = "GPIOSAMPLE_MODULE"
	}
	if key == "" {
		return
	}

	switch a.Value.Kind() {
	case slog.KindTime:
		vars[key] = a.Value.Time().Format(time.RFC3339Nano)
	case slog.KindFloat64:
		vars[key] = strconv.FormatFloat(a.Value.Float64(), 'g', -1, 64)
	default:
		vars[key] = a.Value.String()
	}
}

// journalFieldName maps an attribute key onto the journal field alphabet:
// upper-case letters, digits and underscores, not starting with '_'.
func journalFieldName(key string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(key) {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	name := strings.TrimLeft(b.String(), "_")
	if name != "" && name[0] >= '0' && name[0] <= '9' {
		name = "F" + name
	}
	return name
}

// IsJournalAvailable reports whether the journal socket is reachable.
func IsJournalAvailable() bool {
	return journal.Enabled()
}
