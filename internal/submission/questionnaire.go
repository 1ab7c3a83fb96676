package submission

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	apperrors "leadpipe/internal/common/errors"
	"leadpipe/internal/common/metrics"
	"leadpipe/internal/models"
	"leadpipe/internal/scoring"
	"leadpipe/internal/storage"
)

// QuestionnaireSubmit handles POST /api/questionnaire-submit.
func (h *Handler) QuestionnaireSubmit(w http.ResponseWriter, r *http.Request) {
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

	doc, req, err := decodeQuestionnaire(r)
	if err != nil {
		h.writeError(w, apperrors.NewValidationError(err.Error()))
		return
	}
	if detail := validateQuestionnaire(doc); detail != "" {
		h.writeError(w, apperrors.NewValidationError(detail))
		return
	}

	readiness := scoring.TransformationReadiness(req.Answers())
	amandaScore := h.resolveAmandaScore(r, req)
	nextStep := scoring.NextStep(readiness, amandaScore)

	upd := &models.QuestionnaireUpdate{
		LeadID:                  req.LeadID,
		Email:                   req.Email,
		Answers:                 req.Answers(),
		TransformationReadiness: readiness,
		ReadinessCategory:       scoring.ReadinessCategory(readiness),
		NextStep:                nextStep,
		CompletionTimestamp:     h.now().UTC().Format(time.RFC3339),
	}

	summary := h.dispatcher.UpdateQuestionnaire(r.Context(), upd)
	if summary.Failed > 0 {
		h.logger.Warn("partial questionnaire update failure", map[string]interface{}{
			"lead_id":    req.LeadID,
			"successful": summary.Successful,
			"failed":     summary.Failed,
		})
	}

	if granted, level := scoring.CalendarAccess(readiness); granted {
		h.logger.Info("calendar access granted", map[string]interface{}{
			"lead_id":      req.LeadID,
			"access_level": level,
			"readiness":    readiness,
		})
	}

	var calendlyURL *string
	if nextStep == scoring.StepCalendarBooking {
		u := h.calendlyURL(req.LeadID)
		calendlyURL = &u
	}

	h.logger.Info("questionnaire processed", map[string]interface{}{
		"lead_id":   req.LeadID,
		"readiness": readiness,
		"next_step": nextStep,
	})

	writeJSON(w, http.StatusOK, QuestionnaireResponse{
		Success:             true,
		TransformationScore: readiness,
		NextStep:            nextStep,
		CalendlyURL:         calendlyURL,
		Message:             "Questionnaire processed successfully",
	})
}

// resolveAmandaScore prefers the score sent with the questionnaire,
// then the cached stage-1 record. Unknown leads route as score zero.
func (h *Handler) resolveAmandaScore(r *http.Request, req *QuestionnaireRequest) int {
	if req.AmandaScore != nil {
		return *req.AmandaScore
	}
	if h.leads == nil {
		return 0
	}
	rec, err := h.leads.Get(r.Context(), req.LeadID)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			h.logger.Warn("lead cache lookup failed", map[string]interface{}{
				"lead_id": req.LeadID,
				"error":   err.Error(),
			})
		}
		return 0
	}
	return rec.AmandaScore
}

func (h *Handler) calendlyURL(leadID string) string {
	return fmt.Sprintf("%s?lead_id=%s&utm_source=questionnaire", h.cfg.Scheduling.CalendlyBaseURL, leadID)
}

func decodeQuestionnaire(r *http.Request) (map[string]interface{}, *QuestionnaireRequest, error) {
	body := http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	defer body.Close()

	var doc map[string]interface{}
	if err := json.NewDecoder(body).Decode(&doc); err != nil {
		return nil, nil, err
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, nil, err
	}
	var req QuestionnaireRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, nil, err
	}
	return doc, &req, nil
}
