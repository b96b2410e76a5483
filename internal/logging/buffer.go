package logging

import (
	"sync"
	"time"
)

// LogEntry is one record kept for the panel.
type LogEntry struct {
	Timestamp  time.Time      `json:"timestamp"`
	Level      string         `json:"level"`
	Module     string         `json:"module"`
	Message    string         `json:"message"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// RingBuffer keeps the most recent log entries. Safe for concurrent use.
type RingBuffer struct {
	mu      sync.RWMutex
	entries []LogEntry
	next    int
	full    bool
}

// NewRingBuffer creates a buffer holding up to size entries.
func NewRingBuffer(size int) *RingBuffer {
	if size < 1 {
		size = 1
	}
	return &RingBuffer{entries: make([]LogEntry, size)}
}

// Write stores entry, evicting the oldest one when full.
func (rb *RingBuffer) Write(entry LogEntry) {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	rb.entries[rb.next] = entry
	rb.next++
	if rb.next == len(rb.entries) {
		rb.next = 0
		rb.full = true
	}
}

// ReadAll returns every entry, oldest first.
func (rb *RingBuffer) ReadAll() []LogEntry {
	return rb.Recent(0, "")
}

// Recent returns up to limit entries, oldest first, optionally only those
// from module. A limit of zero or less means no limit.
func (rb *RingBuffer) Recent(limit int, module string) []LogEntry {
	rb.mu.RLock()
	defer rb.mu.RUnlock()

	ordered := rb.entries[:rb.next]
	if rb.full {
		ordered = append(append([]LogEntry(nil), rb.entries[rb.next:]...), rb.entries[:rb.next]...)
	}

	var out []LogEntry
	for i := len(ordered) - 1; i >= 0; i-- {
		if module != "" && ordered[i].Module != module {
			continue
		}
		out = append(out, ordered[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// Count returns the number of stored entries.
func (rb *RingBuffer) Count() int {
	rb.mu.RLock()
	defer rb.mu.RUnlock()
	if rb.full {
		return len(rb.entries)
	}
	return rb.next
}
