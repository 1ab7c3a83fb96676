// Package events provides the append-only analytics event log and the
// envelope-enriching emitter that feeds it. Consumers (the external
// analytics collector) read the log asynchronously; the emitter expects
// no acknowledgement and applies no back-pressure.
package events

import (
	"sync"

	"leadpipe/internal/models"
)

// Log is an append-only, call-ordered event log.
type Log struct {
	mu      sync.Mutex
	entries []models.Event
}

func NewLog() *Log {
	return &Log{}
}

// Append adds an event at the tail. Entries are never mutated or removed.
func (l *Log) Append(e models.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, e)
}

// Snapshot returns a copy of the log for a consumer to read.
func (l *Log) Snapshot() []models.Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]models.Event, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len reports the number of appended events.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
