package submission

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"leadpipe/internal/common/config"
	apperrors "leadpipe/internal/common/errors"
	"leadpipe/internal/common/logger"
	"leadpipe/internal/common/metrics"
	"leadpipe/internal/common/observability"
	"leadpipe/internal/models"
	"leadpipe/internal/notify"
	"leadpipe/internal/scoring"
	"leadpipe/internal/sinks"
)

// maxBodyBytes caps inbound payloads; qualification forms are small.
const maxBodyBytes = 64 << 10

// LeadCache is the subset of the lead store the handlers need.
type LeadCache interface {
	Save(ctx context.Context, rec *models.LeadRecord) error
	Get(ctx context.Context, leadID string) (*models.LeadRecord, error)
}

// Handler serves the two submission endpoints. All dependencies are
// injected; nil cache, notifier and observability are tolerated.
type Handler struct {
	cfg        *config.Config
	limiter    *RateLimiter
	dispatcher *sinks.Dispatcher
	leads      LeadCache
	notifier   *notify.Notifier
	obs        *observability.Observability
	logger     logger.Logger
	now        func() time.Time
	newID      func() string
}

func NewHandler(cfg *config.Config, limiter *RateLimiter, dispatcher *sinks.Dispatcher, leads LeadCache, notifier *notify.Notifier, obs *observability.Observability, lg logger.Logger) *Handler {
	return &Handler{
		cfg:        cfg,
		limiter:    limiter,
		dispatcher: dispatcher,
		leads:      leads,
		notifier:   notifier,
		obs:        obs,
		logger:     lg,
		now:        time.Now,
		newID:      uuid.NewString,
	}
}

// SetClock overrides the clock, for tests.
func (h *Handler) SetClock(now func() time.Time) { h.now = now }

// SetIDGenerator overrides lead id minting, for tests.
func (h *Handler) SetIDGenerator(gen func() string) { h.newID = gen }

// LeadSubmit handles POST /api/lead-submit.
func (h *Handler) LeadSubmit(w http.ResponseWriter, r *http.Request) {
	start := h.now()
	writeCORS(w)

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodPost {
		h.writeError(w, apperrors.NewMethodNotAllowedError(r.Method))
		return
	}

	ip := clientIP(r)
	if !h.limiter.Allow(ip) {
		metrics.RateLimitRejections.Inc()
		h.writeError(w, apperrors.NewRateLimitError(ip))
		return
	}

	doc, req, err := decodeLead(r)
	if err != nil {
		h.writeError(w, apperrors.NewValidationError(err.Error()))
		return
	}
	if detail := validateLead(doc); detail != "" {
		metrics.LeadSubmissions.WithLabelValues("invalid").Inc()
		h.writeError(w, apperrors.NewValidationError(detail))
		return
	}

	leadID := req.LeadID
	if leadID == "" {
		leadID = h.newID()
	}

	// The client score is advisory; inside the tolerance it is kept for
	// continuity, beyond it the server value silently wins.
	serverScore := scoring.Score(req.Answers())
	finalScore := serverScore
	if req.AmandaScore != nil {
		finalScore = scoring.Reconcile(*req.AmandaScore, serverScore, h.cfg.Scoring.ReconcileTolerance)
	}

	rec := &models.LeadRecord{
		LeadID:              leadID,
		Name:                req.Name,
		Email:               req.Email,
		Phone:               req.Phone,
		BusinessType:        req.BusinessType,
		Answers:             req.Answers(),
		AmandaScore:         finalScore,
		AmandaScoreTier:     scoring.Tier(finalScore),
		QualificationResult: scoring.QualificationResult(finalScore),
		TrafficSource:       req.TrafficSource,
		SourceSection:       req.SourceSection,
		CTAID:               req.CTAID,
		SubmissionTimestamp: h.now().UTC().Format(time.RFC3339),
		UserAgent:           r.UserAgent(),
		IPAddress:           ip,
	}

	summary, _ := h.dispatcher.Dispatch(r.Context(), rec)
	if summary.Failed > 0 {
		h.logger.Warn("partial sink failure", map[string]interface{}{
			"lead_id":    rec.LeadID,
			"successful": summary.Successful,
			"failed":     summary.Failed,
		})
	}

	if h.leads != nil {
		if err := h.leads.Save(r.Context(), rec); err != nil {
			h.logger.Warn("lead cache save failed", map[string]interface{}{
				"lead_id": rec.LeadID,
				"error":   err.Error(),
			})
		}
	}

	if h.notifier != nil {
		// Sales alerting is fire and forget; the response never waits on it.
		go func(rec models.LeadRecord) {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			h.notifier.LeadSubmitted(ctx, &rec)
		}(*rec)
	}

	metrics.LeadSubmissions.WithLabelValues("accepted").Inc()
	if h.obs != nil {
		h.obs.RecordSubmission(r.Context(), "accepted")
		h.obs.RecordSubmissionDuration(r.Context(), h.now().Sub(start), "accepted")
	}

	h.logger.Info("lead captured", map[string]interface{}{
		"lead_id":          rec.LeadID,
		"amanda_score":     rec.AmandaScore,
		"score_tier":       rec.AmandaScoreTier,
		"sinks_successful": summary.Successful,
		"sinks_failed":     summary.Failed,
	})

	writeJSON(w, http.StatusOK, LeadResponse{
		Success:             true,
		LeadID:              rec.LeadID,
		AmandaScore:         rec.AmandaScore,
		AmandaScoreTier:     rec.AmandaScoreTier,
		QualificationResult: rec.QualificationResult,
		Message:             "Lead captured successfully",
		WebhookResults:      summary,
	})
}

// decodeLead reads the body once and decodes it both generically for
// schema validation and into the typed request.
func decodeLead(r *http.Request) (map[string]interface{}, *LeadRequest, error) {
	body := http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	defer body.Close()

	var doc map[string]interface{}
	dec := json.NewDecoder(body)
	if err := dec.Decode(&doc); err != nil {
		return nil, nil, err
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, nil, err
	}
	var req LeadRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, nil, err
	}
	return doc, &req, nil
}

func (h *Handler) writeError(w http.ResponseWriter, se *apperrors.StandardError) {
	status := apperrors.HTTPStatus(se.Code)
	if status >= 500 {
		h.logger.Error("request failed", map[string]interface{}{
			"code":    string(se.Code),
			"details": se.Details,
		})
	}
	writeJSON(w, status, ErrorResponse{
		Error:   string(se.Code),
		Message: se.Message,
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeCORS(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
}

// clientIP prefers the first X-Forwarded-For hop, falling back to the
// connection address.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			return strings.TrimSpace(fwd[:i])
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
