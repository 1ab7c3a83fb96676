package tracking

import (
	"sync"
	"time"

	"leadpipe/internal/events"
	"leadpipe/internal/models"
	"leadpipe/internal/scoring"
)

// ModalState is the lifecycle state of the qualification modal.
type ModalState string

const (
	StateClosed      ModalState = "closed"
	StateOpen        ModalState = "open"
	StateFormStarted ModalState = "form_started"
	StateSubmitted   ModalState = "submitted"
	StateAbandoned   ModalState = "abandoned"
)

// Abandon severity by number of completed fields.
const (
	AbandonImmediateExit  = "immediate_exit"
	AbandonEarly          = "early_abandon"
	AbandonMidForm        = "mid_form_abandon"
	AbandonNearCompletion = "near_completion_abandon"
)

// totalFormFields is the number of inputs in the qualification form,
// used for completion percentages.
const totalFormFields = 8

type modalEvent int

const (
	evOpen modalEvent = iota
	evFormStart
	evSubmit
	evClose
)

// transition is the pure state table. It reports the next state and
// whether the event is legal in the current state. Illegal events leave
// the state unchanged and emit nothing.
func transition(s ModalState, ev modalEvent) (ModalState, bool) {
	switch ev {
	case evOpen:
		if s == StateClosed || s == StateSubmitted || s == StateAbandoned {
			return StateOpen, true
		}
	case evFormStart:
		if s == StateOpen {
			return StateFormStarted, true
		}
	case evSubmit:
		if s == StateOpen || s == StateFormStarted {
			return StateSubmitted, true
		}
	case evClose:
		if s == StateOpen || s == StateFormStarted {
			return StateAbandoned, true
		}
	}
	return s, false
}

// AbandonReason classifies a close-without-submit by form progress.
func AbandonReason(fieldsCompleted int) string {
	switch {
	case fieldsCompleted == 0:
		return AbandonImmediateExit
	case fieldsCompleted < 3:
		return AbandonEarly
	case fieldsCompleted < 6:
		return AbandonMidForm
	default:
		return AbandonNearCompletion
	}
}

// ModalTracker drives the modal FSM and realizes its effects as emitter
// pushes. Safe for concurrent use.
type ModalTracker struct {
	emitter *events.Emitter
	now     func() time.Time

	mu            sync.Mutex
	state         ModalState
	sourceSection string
	ctaID         string
	openedAt      time.Time
	formStartedAt time.Time
	fields        map[string]struct{}
}

func NewModalTracker(em *events.Emitter) *ModalTracker {
	return &ModalTracker{
		emitter: em,
		now:     time.Now,
		state:   StateClosed,
		fields:  map[string]struct{}{},
	}
}

// SetClock overrides the clock, for tests.
func (t *ModalTracker) SetClock(now func() time.Time) { t.now = now }

func (t *ModalTracker) State() ModalState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Open starts a fresh modal interaction. Reopening after a submit or an
// abandon resets all per-open progress.
func (t *ModalTracker) Open(sourceSection, ctaID, trafficTemperature string) {
	t.mu.Lock()
	next, ok := transition(t.state, evOpen)
	if !ok {
		t.mu.Unlock()
		return
	}
	t.state = next
	t.sourceSection = sourceSection
	t.ctaID = ctaID
	t.openedAt = t.now()
	t.formStartedAt = time.Time{}
	t.fields = map[string]struct{}{}
	t.mu.Unlock()

	t.emitter.Push("modal_open", map[string]interface{}{
		"source_section":      sourceSection,
		"cta_id":              ctaID,
		"traffic_temperature": trafficTemperature,
	})
}

// FormStart records the first field focus. Only the first focus per
// open emits; later focuses are ignored.
func (t *ModalTracker) FormStart(fieldName string) {
	t.mu.Lock()
	next, ok := transition(t.state, evFormStart)
	if !ok {
		t.mu.Unlock()
		return
	}
	t.state = next
	t.formStartedAt = t.now()
	timeToStart := t.formStartedAt.Sub(t.openedAt)
	src, cta := t.sourceSection, t.ctaID
	t.mu.Unlock()

	t.emitter.Push("modal_form_start", map[string]interface{}{
		"source_section":    src,
		"cta_id":            cta,
		"first_field_focus": fieldName,
		"time_to_start":     timeToStart.Milliseconds(),
	})
}

// FieldComplete records a filled field. Each field emits at most once
// per open.
func (t *ModalTracker) FieldComplete(fieldName string) {
	t.mu.Lock()
	if t.state != StateOpen && t.state != StateFormStarted {
		t.mu.Unlock()
		return
	}
	if _, seen := t.fields[fieldName]; seen {
		t.mu.Unlock()
		return
	}
	t.fields[fieldName] = struct{}{}
	count := len(t.fields)
	t.mu.Unlock()

	t.emitter.Push("form_field_complete", map[string]interface{}{
		"field_name":             fieldName,
		"fields_completed_count": count,
		"completion_progress":    completionPercent(count),
	})
}

// Submission carries the form snapshot attached to the submit event.
type Submission struct {
	Name    string
	Email   string
	Phone   string
	Answers models.QualificationAnswers
}

// Submit closes the interaction successfully and emits the full
// qualification snapshot with an advisory score. The authoritative
// score is computed server side on ingestion.
func (t *ModalTracker) Submit(sub Submission) {
	t.mu.Lock()
	next, ok := transition(t.state, evSubmit)
	if !ok {
		t.mu.Unlock()
		return
	}
	t.state = next
	now := t.now()
	totalInModal := now.Sub(t.openedAt)
	completion := totalInModal
	if !t.formStartedAt.IsZero() {
		completion = now.Sub(t.formStartedAt)
	}
	count := len(t.fields)
	src, cta := t.sourceSection, t.ctaID
	t.mu.Unlock()

	score := scoring.Score(sub.Answers)
	t.emitter.Push("lead_form_submit", map[string]interface{}{
		"amanda_match_score":    score,
		"amanda_score_tier":     scoring.Tier(score),
		"lead_source":           "landing_page_modal",
		"form_completion_time":  completion.Milliseconds(),
		"total_time_in_modal":   totalInModal.Milliseconds(),
		"source_section":        src,
		"cta_id":                cta,
		"qualification_inputs":  sub.Answers,
		"user_name":             sub.Name,
		"user_email":            sub.Email,
		"user_phone":            sub.Phone,
		"fields_completed":      count,
		"completion_percentage": completionPercent(count),
	})
}

// Close records a close without submit and classifies the abandon.
func (t *ModalTracker) Close() {
	t.mu.Lock()
	next, ok := transition(t.state, evClose)
	if !ok {
		t.mu.Unlock()
		return
	}
	t.state = next
	timeInModal := t.now().Sub(t.openedAt)
	count := len(t.fields)
	src, cta := t.sourceSection, t.ctaID
	t.mu.Unlock()

	t.emitter.Push("modal_abandon", map[string]interface{}{
		"source_section":        src,
		"cta_id":                cta,
		"time_in_modal":         timeInModal.Milliseconds(),
		"fields_completed":      count,
		"abandon_reason":        AbandonReason(count),
		"completion_percentage": completionPercent(count),
	})
}

func completionPercent(fields int) float64 {
	return float64(fields) / totalFormFields * 100
}
