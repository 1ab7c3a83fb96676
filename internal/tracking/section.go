package tracking

import (
	"sync"
	"time"

	"leadpipe/internal/events"
)

// visibilityThreshold is the fraction of a section that must be on
// screen before it counts as viewed.
const visibilityThreshold = 0.5

// SectionTracker emits section_view / section_exit pairs as landing
// page sections cross the visibility threshold. Transitions are
// idempotent per state: repeated observations on the same side of the
// threshold emit nothing.
type SectionTracker struct {
	emitter *events.Emitter
	now     func() time.Time

	mu        sync.Mutex
	startedAt time.Time
	visible   map[string]time.Time
}

func NewSectionTracker(em *events.Emitter) *SectionTracker {
	t := &SectionTracker{
		emitter: em,
		now:     time.Now,
		visible: map[string]time.Time{},
	}
	t.startedAt = t.now()
	return t
}

// SetClock overrides the clock, for tests. Resets the page timer.
func (t *SectionTracker) SetClock(now func() time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.now = now
	t.startedAt = now()
}

// Observe processes a visibility sample for one section. visibleRatio
// is the fraction of the section on screen, scrollDepth the overall
// page scroll percentage at the time of the sample.
func (t *SectionTracker) Observe(sectionName string, visibleRatio, scrollDepth float64) {
	t.mu.Lock()
	now := t.now()
	seenAt, isVisible := t.visible[sectionName]

	if visibleRatio >= visibilityThreshold {
		if isVisible {
			t.mu.Unlock()
			return
		}
		t.visible[sectionName] = now
		timeToView := now.Sub(t.startedAt)
		t.mu.Unlock()

		t.emitter.Push("section_view", map[string]interface{}{
			"section_name": sectionName,
			"scroll_depth": scrollDepth,
			"time_to_view": timeToView.Milliseconds(),
		})
		return
	}

	if !isVisible {
		t.mu.Unlock()
		return
	}
	delete(t.visible, sectionName)
	dwell := now.Sub(seenAt)
	t.mu.Unlock()

	t.emitter.Push("section_exit", map[string]interface{}{
		"section_name":    sectionName,
		"time_in_section": dwell.Milliseconds(),
	})
}
