package tracking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSection_ViewOnceAtThreshold(t *testing.T) {
	em, log := newTestEmitter(t)
	tr := NewSectionTracker(em)

	tr.Observe("hero", 0.3, 10) // below threshold, nothing
	tr.Observe("hero", 0.6, 20)
	tr.Observe("hero", 0.9, 25) // still visible, idempotent

	views := named(log, "section_view")
	require.Len(t, views, 1)
	assert.Equal(t, "hero", views[0]["section_name"])
	assert.Equal(t, 20.0, views[0]["scroll_depth"])
	assert.Empty(t, named(log, "section_exit"))
}

func TestSection_ExitRecordsDwell(t *testing.T) {
	em, log := newTestEmitter(t)
	tr := NewSectionTracker(em)

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	tr.SetClock(func() time.Time { return now })

	tr.Observe("pricing", 0.8, 50)
	now = now.Add(4 * time.Second)
	tr.Observe("pricing", 0.1, 60)
	tr.Observe("pricing", 0.0, 70) // already hidden, idempotent

	exits := named(log, "section_exit")
	require.Len(t, exits, 1)
	assert.Equal(t, int64(4000), exits[0]["time_in_section"])
}

func TestSection_ReentryEmitsAgain(t *testing.T) {
	em, log := newTestEmitter(t)
	tr := NewSectionTracker(em)

	tr.Observe("faq", 0.7, 80)
	tr.Observe("faq", 0.2, 85)
	tr.Observe("faq", 0.7, 80)

	assert.Len(t, named(log, "section_view"), 2)
	assert.Len(t, named(log, "section_exit"), 1)
}

func TestTemperature(t *testing.T) {
	tests := []struct {
		name         string
		isReturning  bool
		sessionCount int
		expected     string
	}{
		{"first visit", false, 1, TemperatureCold},
		{"second visit", false, 2, TemperatureWarm},
		{"frequent visitor", false, 4, TemperatureHot},
		{"promoted user", true, 1, TemperatureHot},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Temperature(tt.isReturning, tt.sessionCount))
		})
	}
}

func TestCTA_ClickEmitsAndPrimaryOpensModal(t *testing.T) {
	em, log := newTestEmitter(t)
	modal := NewModalTracker(em)
	tr := NewCTATracker(em, modal)

	tr.Click(CTA{
		ID:            PrimaryCTAID,
		Label:         "Quero minha transformação",
		SourceSection: "hero",
		Position:      PositionAboveFold,
	}, TemperatureWarm)

	clicks := named(log, "cta_click")
	require.Len(t, clicks, 1)
	assert.Equal(t, "Quero minha transformação", clicks[0]["cta_label"])
	assert.Equal(t, PositionAboveFold, clicks[0]["cta_position"])
	assert.Equal(t, "primary", clicks[0]["cta_type"])

	assert.Equal(t, StateOpen, modal.State())
	opens := named(log, "modal_open")
	require.Len(t, opens, 1)
	assert.Equal(t, TemperatureWarm, opens[0]["traffic_temperature"])
}

func TestCTA_SecondaryDoesNotOpenModal(t *testing.T) {
	em, log := newTestEmitter(t)
	modal := NewModalTracker(em)
	tr := NewCTATracker(em, modal)

	tr.Click(CTA{ID: "cta_whatsapp", Label: "Falar no WhatsApp", Type: "secondary", SourceSection: "footer", Position: PositionBelowFold}, TemperatureCold)

	assert.Len(t, named(log, "cta_click"), 1)
	assert.Equal(t, StateClosed, modal.State())
	assert.Empty(t, named(log, "modal_open"))
}
