package events

import (
	"time"

	"leadpipe/internal/common/logger"
	"leadpipe/internal/common/metrics"
	"leadpipe/internal/models"
)

// Envelope keys stamped on every event.
const (
	KeyEvent         = "event"
	KeyTimestamp     = "event_timestamp"
	KeyTestMode      = "test_mode"
	KeyLeadID        = "lead_id"
	KeyUserID        = "user_id"
	KeySessionID     = "session_id"
	KeyTrafficSource = "traffic_source"
)

// Source supplies the identity context merged into every envelope.
// Implementations must be read-only: supplying the envelope must not
// create identity state.
type Source interface {
	Identity() models.Identity
}

// Emitter merges the standard envelope with event-specific fields and
// appends the result to the log. Side effect only.
type Emitter struct {
	log      *Log
	src      Source
	testMode bool
	logger   logger.Logger
	now      func() time.Time
}

func NewEmitter(log *Log, testMode bool, lg logger.Logger) *Emitter {
	return &Emitter{
		log:      log,
		testMode: testMode,
		logger:   lg,
		now:      time.Now,
	}
}

// SetSource binds the identity source after construction. The identity
// manager both feeds the emitter and emits through it, so the two are
// wired in two steps.
func (e *Emitter) SetSource(src Source) {
	e.src = src
}

// SetClock overrides the timestamp source, for tests.
func (e *Emitter) SetClock(now func() time.Time) {
	e.now = now
}

// Push appends one event. Event-specific fields win over envelope fields
// of the same name, matching the original dataLayer merge order.
func (e *Emitter) Push(name string, fields map[string]interface{}) {
	ev := models.Event{
		KeyEvent:     name,
		KeyTimestamp: e.now().UTC().Format(time.RFC3339),
		KeyTestMode:  e.testMode,
	}

	if e.src != nil {
		id := e.src.Identity()
		ev[KeyLeadID] = id.LeadID
		if id.UserID != "" {
			ev[KeyUserID] = id.UserID
		} else {
			ev[KeyUserID] = nil
		}
		ev[KeySessionID] = id.SessionID
		ev[KeyTrafficSource] = id.TrafficSource
	}

	for k, v := range fields {
		ev[k] = v
	}

	e.log.Append(ev)
	metrics.EventsEmitted.WithLabelValues(name).Inc()

	if e.testMode && e.logger != nil {
		e.logger.Debug("event emitted", map[string]interface{}{"event": name})
	}
}
