package events

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadpipe/internal/common/logger"
	"leadpipe/internal/models"
)

type staticSource struct {
	id models.Identity
}

func (s *staticSource) Identity() models.Identity { return s.id }

func TestEmitter_EnvelopeMerge(t *testing.T) {
	log := NewLog()
	em := NewEmitter(log, true, logger.NewTestLogger(t))
	em.SetClock(func() time.Time {
		return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	})
	em.SetSource(&staticSource{id: models.Identity{
		LeadID:        "lead-1",
		SessionID:     "sess-1",
		TrafficSource: "instagram_organic",
	}})

	em.Push("modal_open", map[string]interface{}{
		"source_section": "hero",
		"cta_id":         "cta_primary",
	})

	require.Equal(t, 1, log.Len())
	ev := log.Snapshot()[0]

	assert.Equal(t, "modal_open", ev.Name())
	assert.Equal(t, "2025-06-01T12:00:00Z", ev[KeyTimestamp])
	assert.Equal(t, true, ev[KeyTestMode])
	assert.Equal(t, "lead-1", ev[KeyLeadID])
	assert.Nil(t, ev[KeyUserID])
	assert.Equal(t, "sess-1", ev[KeySessionID])
	assert.Equal(t, "instagram_organic", ev[KeyTrafficSource])
	assert.Equal(t, "hero", ev["source_section"])
	assert.Equal(t, "cta_primary", ev["cta_id"])
}

func TestEmitter_UserIDPresentAfterPromotion(t *testing.T) {
	log := NewLog()
	em := NewEmitter(log, false, logger.NewNoOpLogger())
	em.SetSource(&staticSource{id: models.Identity{LeadID: "lead-1", UserID: "user-9"}})

	em.Push("identity_promotion", nil)

	ev := log.Snapshot()[0]
	assert.Equal(t, "user-9", ev[KeyUserID])
}

func TestEmitter_NoSourceStillAppends(t *testing.T) {
	log := NewLog()
	em := NewEmitter(log, false, logger.NewNoOpLogger())

	em.Push("page_view", map[string]interface{}{"page_path": "/"})

	require.Equal(t, 1, log.Len())
	ev := log.Snapshot()[0]
	assert.Equal(t, "page_view", ev.Name())
	_, hasLead := ev[KeyLeadID]
	assert.False(t, hasLead)
}

func TestLog_AppendOrderPreserved(t *testing.T) {
	log := NewLog()
	em := NewEmitter(log, false, logger.NewNoOpLogger())

	for i := 0; i < 5; i++ {
		em.Push(fmt.Sprintf("event_%d", i), nil)
	}

	snap := log.Snapshot()
	require.Len(t, snap, 5)
	for i, ev := range snap {
		assert.Equal(t, fmt.Sprintf("event_%d", i), ev.Name())
	}
}

func TestLog_SnapshotIsCopy(t *testing.T) {
	log := NewLog()
	log.Append(models.Event{"event": "a"})

	snap := log.Snapshot()
	snap[0] = models.Event{"event": "mutated"}

	assert.Equal(t, "a", log.Snapshot()[0].Name())
}
