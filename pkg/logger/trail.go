package logger

import (
	"sync"
	"time"
)

// TrailEntry is one captured warn/error log line.
type TrailEntry struct {
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
	Caller    string                 `json:"caller"`
	Timestamp time.Time              `json:"timestamp"`
}

// Trail keeps the most recent warn/error entries in a fixed-size ring so
// they can be served over the diagnostics API without touching log files.
type Trail struct {
	mu   sync.RWMutex
	buf  []TrailEntry
	next int
	full bool
}

func NewTrail(capacity int) *Trail {
	if capacity <= 0 {
		capacity = 100
	}
	return &Trail{buf: make([]TrailEntry, capacity)}
}

func (t *Trail) Add(level, message string, fields map[string]interface{}, caller string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.buf[t.next] = TrailEntry{
		Level:     level,
		Message:   message,
		Fields:    fields,
		Caller:    caller,
		Timestamp: time.Now().UTC(),
	}
	t.next++
	if t.next == len(t.buf) {
		t.next = 0
		t.full = true
	}
}

// Entries returns the captured entries, oldest first.
func (t *Trail) Entries() []TrailEntry {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if !t.full {
		out := make([]TrailEntry, t.next)
		copy(out, t.buf[:t.next])
		return out
	}

	out := make([]TrailEntry, 0, len(t.buf))
	out = append(out, t.buf[t.next:]...)
	out = append(out, t.buf[:t.next]...)
	return out
}

func (t *Trail) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.full {
		return len(t.buf)
	}
	return t.next
}
