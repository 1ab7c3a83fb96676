package tracking

import (
	"leadpipe/internal/events"
)

// PrimaryCTAID is the call-to-action that opens the qualification
// modal.
const PrimaryCTAID = "cta_primary"

// CTA positions relative to the initial viewport.
const (
	PositionAboveFold = "above_fold"
	PositionBelowFold = "below_fold"
)

// CTA describes one call-to-action interaction.
type CTA struct {
	ID            string
	Label         string
	Type          string
	SourceSection string
	Position      string
}

// CTATracker emits cta_click events and routes the primary CTA into
// the modal tracker.
type CTATracker struct {
	emitter *events.Emitter
	modal   *ModalTracker
}

func NewCTATracker(em *events.Emitter, modal *ModalTracker) *CTATracker {
	return &CTATracker{emitter: em, modal: modal}
}

// Click records a CTA interaction. The primary CTA additionally opens
// the modal with the visitor's current traffic temperature.
func (t *CTATracker) Click(cta CTA, trafficTemperature string) {
	ctaType := cta.Type
	if ctaType == "" {
		ctaType = "primary"
	}
	t.emitter.Push("cta_click", map[string]interface{}{
		"cta_id":         cta.ID,
		"cta_label":      cta.Label,
		"cta_type":       ctaType,
		"source_section": cta.SourceSection,
		"cta_position":   cta.Position,
	})

	if cta.ID == PrimaryCTAID && t.modal != nil {
		t.modal.Open(cta.SourceSection, cta.ID, trafficTemperature)
	}
}
