package identity

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"leadpipe/internal/common/logger"
	"leadpipe/internal/events"
	"leadpipe/internal/models"
)

// Storage keys. The Store implementation adds the namespace prefix.
const (
	keyLeadID        = "lead_id"
	keyLeadCreatedAt = "lead_created_at"
	keyUserID        = "user_id"
	keyConversion    = "conversion_date"
	keySessionID     = "session_id"
	keySessionStart  = "session_start"
	keyLastActivity  = "last_activity"
	keySessionCount  = "session_count"
	keyTrafficSource = "traffic_source"
	keyUTMCampaign   = "utm_campaign"
	keyUTMMedium     = "utm_medium"
	keyUTMContent    = "utm_content"
)

// Identity lifecycle events.
const (
	EventLeadIDCreated     = "lead_id_created"
	EventSessionStart      = "session_start"
	EventIdentityPromotion = "identity_promotion"
)

const (
	DefaultLeadTTL        = 365 * 24 * time.Hour
	DefaultSessionTimeout = 30 * time.Minute
)

type Options struct {
	LeadTTL        time.Duration
	SessionTimeout time.Duration
	TestMode       bool
}

// Manager owns the visitor identity lifecycle. All read-modify-write
// steps are atomic from the caller's perspective; lifecycle events are
// emitted after the state change commits.
type Manager struct {
	primary  Store
	fallback *MemoryStore
	emitter  *events.Emitter
	logger   logger.Logger

	leadTTL        time.Duration
	sessionTimeout time.Duration
	testMode       bool

	mu       sync.Mutex
	degraded bool

	now   func() time.Time
	newID func() string
}

func NewManager(store Store, em *events.Emitter, lg logger.Logger, opts Options) *Manager {
	if opts.LeadTTL == 0 {
		opts.LeadTTL = DefaultLeadTTL
	}
	if opts.SessionTimeout == 0 {
		opts.SessionTimeout = DefaultSessionTimeout
	}
	return &Manager{
		primary:        store,
		fallback:       NewMemoryStore(),
		emitter:        em,
		logger:         lg,
		leadTTL:        opts.LeadTTL,
		sessionTimeout: opts.SessionTimeout,
		testMode:       opts.TestMode,
		now:            time.Now,
		newID:          func() string { return uuid.NewString() },
	}
}

// SetClock overrides the clock, for tests.
func (m *Manager) SetClock(now func() time.Time) { m.now = now }

// SetIDGenerator overrides UUID generation, for tests.
func (m *Manager) SetIDGenerator(gen func() string) { m.newID = gen }

func (m *Manager) TestMode() bool { return m.testMode }

// get reads through the primary store, degrading to the in-memory
// fallback for the rest of the lifetime on the first storage error.
// Storage failure never propagates to callers.
func (m *Manager) get(ctx context.Context, key string) (string, bool) {
	if !m.degraded {
		v, ok, err := m.primary.Get(ctx, key)
		if err == nil {
			return v, ok
		}
		m.degrade(err)
	}
	v, ok, _ := m.fallback.Get(ctx, key)
	return v, ok
}

func (m *Manager) set(ctx context.Context, key, value string, ttl time.Duration) {
	if !m.degraded {
		err := m.primary.Set(ctx, key, value, ttl)
		if err == nil {
			return
		}
		m.degrade(err)
	}
	_ = m.fallback.Set(ctx, key, value, ttl)
}

func (m *Manager) degrade(err error) {
	m.degraded = true
	if m.logger != nil {
		m.logger.Warn("identity storage unavailable, degrading to in-memory", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

// Init runs the page-load identity sequence: lead id, session, and
// first-touch attribution.
func (m *Manager) Init(ctx context.Context, pageURL, referrer string) models.Identity {
	m.EnsureLeadID(ctx)
	m.EnsureSession(ctx)
	m.ClassifyTrafficSource(ctx, pageURL, referrer)
	return m.Identity()
}

// EnsureLeadID returns the durable lead id, creating and persisting it on
// first call. The creation event is emitted exactly once, on creation.
func (m *Manager) EnsureLeadID(ctx context.Context) string {
	m.mu.Lock()
	id, ok := m.get(ctx, keyLeadID)
	created := false
	if !ok {
		id = m.newID()
		m.set(ctx, keyLeadID, id, m.leadTTL)
		m.set(ctx, keyLeadCreatedAt, m.now().UTC().Format(time.RFC3339), m.leadTTL)
		created = true
	}
	m.mu.Unlock()

	if created && m.emitter != nil {
		m.emitter.Push(EventLeadIDCreated, map[string]interface{}{
			"lead_id":     id,
			"is_new_lead": true,
		})
	}
	return id
}

// EnsureSession returns the current session id, rotating it when the
// inactivity timeout has elapsed. The replaced session is discarded, not
// chained. Refreshes last-activity on every call.
func (m *Manager) EnsureSession(ctx context.Context) string {
	m.mu.Lock()
	now := m.now()

	sid, haveSession := m.get(ctx, keySessionID)
	expired := true
	if haveSession {
		if lastStr, ok := m.get(ctx, keyLastActivity); ok {
			if last, err := time.Parse(time.RFC3339, lastStr); err == nil {
				expired = now.Sub(last) > m.sessionTimeout
			}
		}
	}

	created := false
	count := m.sessionCountLocked(ctx)
	start := now.UTC().Format(time.RFC3339)
	if !haveSession || expired {
		sid = m.newID()
		count++
		m.set(ctx, keySessionCount, strconv.Itoa(count), m.leadTTL)
		created = true
	} else if existing, ok := m.get(ctx, keySessionStart); ok {
		start = existing
	}
	// Activity extends the session: refresh the id, start and
	// last-activity TTLs on every call, not only on rotation. The start
	// value itself never changes within a session.
	m.set(ctx, keySessionID, sid, m.sessionTimeout)
	m.set(ctx, keySessionStart, start, m.sessionTimeout)
	m.set(ctx, keyLastActivity, now.UTC().Format(time.RFC3339), m.sessionTimeout)
	m.mu.Unlock()

	if created && m.emitter != nil {
		m.emitter.Push(EventSessionStart, map[string]interface{}{
			"session_id":     sid,
			"is_new_session": true,
			"session_count":  count,
		})
	}
	return sid
}

// Touch records activity, extending the current session or rotating an
// expired one.
func (m *Manager) Touch(ctx context.Context) {
	m.EnsureSession(ctx)
}

// ClassifyTrafficSource applies sticky first-touch attribution: the first
// classification is persisted and never revised, even when a later visit
// arrives with a different referrer.
func (m *Manager) ClassifyTrafficSource(ctx context.Context, pageURL, referrer string) string {
	m.mu.Lock()
	if existing, ok := m.get(ctx, keyTrafficSource); ok {
		m.mu.Unlock()
		return existing
	}

	source, utm := classifyTraffic(pageURL, referrer)
	m.set(ctx, keyTrafficSource, source, m.leadTTL)
	if utm.Campaign != "" {
		m.set(ctx, keyUTMCampaign, utm.Campaign, m.leadTTL)
	}
	if utm.Medium != "" {
		m.set(ctx, keyUTMMedium, utm.Medium, m.leadTTL)
	}
	if utm.Content != "" {
		m.set(ctx, keyUTMContent, utm.Content, m.leadTTL)
	}
	m.mu.Unlock()
	return source
}

// PromoteToUser records the durable user id on conversion. One-way: a
// second promotion is a no-op. The lead id is retained for attribution.
func (m *Manager) PromoteToUser(ctx context.Context, userID string) {
	m.mu.Lock()
	if _, ok := m.get(ctx, keyUserID); ok {
		m.mu.Unlock()
		return
	}
	leadID, _ := m.get(ctx, keyLeadID)
	ts := m.now().UTC().Format(time.RFC3339)
	m.set(ctx, keyUserID, userID, m.leadTTL)
	m.set(ctx, keyConversion, ts, m.leadTTL)
	m.mu.Unlock()

	if m.emitter != nil {
		m.emitter.Push(EventIdentityPromotion, map[string]interface{}{
			"user_id":              userID,
			"previous_lead_id":     leadID,
			"conversion_timestamp": ts,
		})
	}
}

// SessionCount reports how many sessions this visitor has started.
func (m *Manager) SessionCount(ctx context.Context) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessionCountLocked(ctx)
}

func (m *Manager) sessionCountLocked(ctx context.Context) int {
	v, ok := m.get(ctx, keySessionCount)
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}

// IsReturning reports whether the visitor has converted before.
func (m *Manager) IsReturning(ctx context.Context) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.get(ctx, keyUserID)
	return ok
}

// Identity returns a read-only snapshot. It never creates state, so the
// emitter can safely call it while building envelopes.
func (m *Manager) Identity() models.Identity {
	ctx := context.Background()
	m.mu.Lock()
	defer m.mu.Unlock()

	id := models.Identity{TestMode: m.testMode}
	id.LeadID, _ = m.get(ctx, keyLeadID)
	id.UserID, _ = m.get(ctx, keyUserID)
	id.SessionID, _ = m.get(ctx, keySessionID)
	id.TrafficSource, _ = m.get(ctx, keyTrafficSource)
	id.CreatedAt, _ = m.get(ctx, keyLeadCreatedAt)
	id.SessionStartedAt, _ = m.get(ctx, keySessionStart)
	id.UTM.Campaign, _ = m.get(ctx, keyUTMCampaign)
	id.UTM.Medium, _ = m.get(ctx, keyUTMMedium)
	id.UTM.Content, _ = m.get(ctx, keyUTMContent)
	id.SessionCount = m.sessionCountLocked(ctx)
	return id
}
