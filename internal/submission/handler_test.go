package submission

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadpipe/internal/common/config"
	"leadpipe/internal/common/logger"
	"leadpipe/internal/models"
	"leadpipe/internal/sinks"
	"leadpipe/internal/storage"
)

type stubSink struct {
	name      string
	err       error
	delivered []*models.LeadRecord
	updates   []*models.QuestionnaireUpdate
}

func (s *stubSink) Name() string { return s.name }

func (s *stubSink) Deliver(_ context.Context, rec *models.LeadRecord) error {
	s.delivered = append(s.delivered, rec)
	return s.err
}

func (s *stubSink) UpdateQuestionnaire(_ context.Context, upd *models.QuestionnaireUpdate) error {
	s.updates = append(s.updates, upd)
	return s.err
}

type memCache struct {
	saved  []*models.LeadRecord
	lookup map[string]*models.LeadRecord
	err    error
}

func (c *memCache) Save(_ context.Context, rec *models.LeadRecord) error {
	c.saved = append(c.saved, rec)
	return c.err
}

func (c *memCache) Get(_ context.Context, leadID string) (*models.LeadRecord, error) {
	if rec, ok := c.lookup[leadID]; ok {
		return rec, nil
	}
	return nil, storage.ErrNotFound
}

func testHandlerConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Scoring.ReconcileTolerance = 5
	cfg.Scheduling.CalendlyBaseURL = "https://calendly.com/mentoria-seja-livre"
	return cfg
}

func newTestHandler(t *testing.T, sinkList []sinks.Sink, cache LeadCache) *Handler {
	t.Helper()
	lg := logger.NewTestLogger(t)
	d := sinks.NewDispatcher(sinkList, time.Second, lg)
	h := NewHandler(testHandlerConfig(), NewRateLimiter(100, time.Minute), d, cache, nil, nil, lg)
	h.SetIDGenerator(func() string { return "minted-id" })
	return h
}

func leadBody(overrides map[string]interface{}) []byte {
	body := map[string]interface{}{
		"name":           "Amanda",
		"email":          "amanda@example.com",
		"phone":          "+5511999999999",
		"businessType":   "clinica",
		"monthlyRevenue": "15k_25k",
		"workHoursDaily": 12,
		"mainStruggle":   "exhaustion_overwork",
		"sourceSection":  "hero",
	}
	for k, v := range overrides {
		if v == nil {
			delete(body, k)
			continue
		}
		body[k] = v
	}
	raw, _ := json.Marshal(body)
	return raw
}

func postLead(h *Handler, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/lead-submit", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.LeadSubmit(w, req)
	return w
}

func TestLeadSubmit_Success(t *testing.T) {
	crm := &stubSink{name: "crm"}
	h := newTestHandler(t, []sinks.Sink{crm}, nil)

	w := postLead(h, leadBody(nil))

	require.Equal(t, http.StatusOK, w.Code)
	var resp LeadResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "minted-id", resp.LeadID)
	assert.Equal(t, "Lead captured successfully", resp.Message)
	assert.Equal(t, models.WebhookResults{Total: 1, Successful: 1}, resp.WebhookResults)

	// Rubric: feminino+10 is absent, revenue+5, hours+15, struggle+15.
	assert.Equal(t, 35, resp.AmandaScore)
	assert.Equal(t, "low", resp.AmandaScoreTier)
	assert.Equal(t, "redirect_alternative_resources", resp.QualificationResult)

	require.Len(t, crm.delivered, 1)
	assert.Equal(t, "minted-id", crm.delivered[0].LeadID)
	assert.Equal(t, "amanda@example.com", crm.delivered[0].Email)
}

func TestLeadSubmit_KeepsClientLeadID(t *testing.T) {
	h := newTestHandler(t, nil, nil)
	w := postLead(h, leadBody(map[string]interface{}{"leadId": "client-supplied"}))

	var resp LeadResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "client-supplied", resp.LeadID)
}

func TestLeadSubmit_ScoreReconciliation(t *testing.T) {
	// Maximal answers: server computes 100.
	full := map[string]interface{}{
		"gender":                   "feminino",
		"age":                      35,
		"delegationStruggle":       "sim",
		"feminineEnergyImportance": "muito_importante",
		"leadershipInterest":       "alto",
		"transformationReadiness":  9,
	}

	t.Run("within tolerance keeps client score", func(t *testing.T) {
		h := newTestHandler(t, nil, nil)
		full["amandaScore"] = 97
		w := postLead(h, leadBody(full))

		var resp LeadResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, 97, resp.AmandaScore)
		assert.Equal(t, "high", resp.AmandaScoreTier)
	})

	t.Run("beyond tolerance server wins silently", func(t *testing.T) {
		h := newTestHandler(t, nil, nil)
		full["amandaScore"] = 20
		w := postLead(h, leadBody(full))

		require.Equal(t, http.StatusOK, w.Code)
		var resp LeadResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, 100, resp.AmandaScore)
		assert.Equal(t, "priority_enrollment", resp.QualificationResult)
	})
}

func TestLeadSubmit_PartialSinkFailureStillSucceeds(t *testing.T) {
	sinkList := []sinks.Sink{
		&stubSink{name: "crm", err: errors.New("502")},
		&stubSink{name: "mailerlite"},
		&stubSink{name: "segment"},
		&stubSink{name: "ga4"},
	}
	h := newTestHandler(t, sinkList, nil)

	w := postLead(h, leadBody(nil))

	require.Equal(t, http.StatusOK, w.Code)
	var resp LeadResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, models.WebhookResults{Total: 4, Successful: 3, Failed: 1}, resp.WebhookResults)
}

func TestLeadSubmit_ValidationFailures(t *testing.T) {
	tests := []struct {
		name string
		body []byte
	}{
		{"missing required field", leadBody(map[string]interface{}{"email": nil})},
		{"invalid email", leadBody(map[string]interface{}{"email": "not-an-email"})},
		{"score out of range", leadBody(map[string]interface{}{"amandaScore": 150})},
		{"malformed json", []byte(`{"name":`)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(t, nil, nil)
			w := postLead(h, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp.Message)
		})
	}
}

func TestLeadSubmit_MethodNotAllowed(t *testing.T) {
	h := newTestHandler(t, nil, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/lead-submit", nil)
	w := httptest.NewRecorder()
	h.LeadSubmit(w, req)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestLeadSubmit_PreflightBypassesBusinessLogic(t *testing.T) {
	crm := &stubSink{name: "crm"}
	h := newTestHandler(t, []sinks.Sink{crm}, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/lead-submit", nil)
	w := httptest.NewRecorder()
	h.LeadSubmit(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "POST, OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))
	assert.Empty(t, w.Body.String())
	assert.Empty(t, crm.delivered)
}

func TestLeadSubmit_RateLimited(t *testing.T) {
	lg := logger.NewTestLogger(t)
	d := sinks.NewDispatcher(nil, time.Second, lg)
	h := NewHandler(testHandlerConfig(), NewRateLimiter(2, time.Minute), d, nil, nil, nil, lg)
	h.SetIDGenerator(func() string { return "id" })

	for i := 0; i < 2; i++ {
		w := postLead(h, leadBody(nil))
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := postLead(h, leadBody(nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestLeadSubmit_XForwardedForSeparatesClients(t *testing.T) {
	lg := logger.NewTestLogger(t)
	d := sinks.NewDispatcher(nil, time.Second, lg)
	h := NewHandler(testHandlerConfig(), NewRateLimiter(1, time.Minute), d, nil, nil, nil, lg)
	h.SetIDGenerator(func() string { return "id" })

	post := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/lead-submit", bytes.NewReader(leadBody(nil)))
		req.Header.Set("X-Forwarded-For", ip)
		w := httptest.NewRecorder()
		h.LeadSubmit(w, req)
		return w
	}

	assert.Equal(t, http.StatusOK, post("1.1.1.1").Code)
	assert.Equal(t, http.StatusTooManyRequests, post("1.1.1.1").Code)
	assert.Equal(t, http.StatusOK, post("2.2.2.2").Code)
}

func TestLeadSubmit_CachesRecord(t *testing.T) {
	cache := &memCache{}
	h := newTestHandler(t, nil, cache)

	w := postLead(h, leadBody(map[string]interface{}{"leadId": "lead-9"}))

	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, cache.saved, 1)
	assert.Equal(t, "lead-9", cache.saved[0].LeadID)
	assert.NotEmpty(t, cache.saved[0].SubmissionTimestamp)
}

func TestLeadSubmit_CacheFailureDoesNotFailRequest(t *testing.T) {
	cache := &memCache{err: errors.New("redis down")}
	h := newTestHandler(t, nil, cache)

	w := postLead(h, leadBody(nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
