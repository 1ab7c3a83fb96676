package sinks

import (
	"context"
	"encoding/base64"
	"fmt"

	"leadpipe/internal/common/config"
	httpc "leadpipe/internal/common/http"
	"leadpipe/internal/models"
)

// SegmentSink sends an identify/track pair per lead to the Segment
// HTTP tracking API.
type SegmentSink struct {
	client  *httpc.Client
	cfg     config.SegmentSinkConfig
	siteURL string
	retry   Policy
}

func NewSegmentSink(client *httpc.Client, cfg config.SegmentSinkConfig, siteURL string, retry Policy) *SegmentSink {
	return &SegmentSink{client: client, cfg: cfg, siteURL: siteURL, retry: retry}
}

func (s *SegmentSink) Name() string { return "segment" }

type segmentContext struct {
	IP        string `json:"ip,omitempty"`
	UserAgent string `json:"userAgent,omitempty"`
	Page      struct {
		URL   string `json:"url"`
		Title string `json:"title"`
	} `json:"page"`
}

type segmentTrack struct {
	UserID     string                 `json:"userId"`
	Event      string                 `json:"event"`
	Properties map[string]interface{} `json:"properties"`
	Context    segmentContext         `json:"context"`
	Timestamp  string                 `json:"timestamp"`
}

type segmentIdentify struct {
	UserID    string                 `json:"userId"`
	Traits    map[string]interface{} `json:"traits"`
	Context   *segmentContext        `json:"context,omitempty"`
	Timestamp string                 `json:"timestamp"`
}

func (s *SegmentSink) Deliver(ctx context.Context, rec *models.LeadRecord) error {
	sctx := segmentContext{IP: rec.IPAddress, UserAgent: rec.UserAgent}
	sctx.Page.URL = s.siteURL
	sctx.Page.Title = "Mentoria Seja Livre - Landing Page"

	identify := segmentIdentify{
		UserID: rec.LeadID,
		Traits: map[string]interface{}{
			"name":               rec.Name,
			"email":              rec.Email,
			"phone":              rec.Phone,
			"amanda_match_score": rec.AmandaScore,
			"business_type":      rec.BusinessType,
			"source_section":     rec.SourceSection,
		},
		Context:   &sctx,
		Timestamp: rec.SubmissionTimestamp,
	}

	track := segmentTrack{
		UserID: rec.LeadID,
		Event:  "Lead Form Submit",
		Properties: map[string]interface{}{
			"amanda_match_score":   rec.AmandaScore,
			"amanda_score_tier":    rec.AmandaScoreTier,
			"business_type":        rec.BusinessType,
			"monthly_revenue":      rec.Answers.MonthlyRevenue,
			"work_hours_daily":     rec.Answers.WorkHoursDaily,
			"main_struggle":        rec.Answers.MainStruggle,
			"source_section":       rec.SourceSection,
			"cta_id":               rec.CTAID,
			"qualification_result": rec.QualificationResult,
			"form_source":          "landing_page_modal",
		},
		Context:   sctx,
		Timestamp: rec.SubmissionTimestamp,
	}

	if err := s.retry.Do(ctx, s.Name(), func(ctx context.Context) error {
		_, err := s.client.PostJSON(ctx, s.cfg.BaseURL+"/identify", s.headers(), identify)
		return err
	}); err != nil {
		return fmt.Errorf("segment identify: %w", err)
	}

	if err := s.retry.Do(ctx, s.Name(), func(ctx context.Context) error {
		_, err := s.client.PostJSON(ctx, s.cfg.BaseURL+"/track", s.headers(), track)
		return err
	}); err != nil {
		return fmt.Errorf("segment track: %w", err)
	}
	return nil
}

func (s *SegmentSink) UpdateQuestionnaire(ctx context.Context, upd *models.QuestionnaireUpdate) error {
	identify := segmentIdentify{
		UserID: upd.LeadID,
		Traits: map[string]interface{}{
			"questionnaire_complete":         true,
			"transformation_readiness_score": upd.TransformationReadiness,
			"team_size":                      upd.Answers.TeamSize,
			"investment_capacity":            upd.Answers.InvestmentCapacity,
			"time_commitment_hours":          upd.Answers.TimeCommitment,
			"transformation_stage":           "qualification_complete",
		},
		Timestamp: upd.CompletionTimestamp,
	}

	return s.retry.Do(ctx, s.Name(), func(ctx context.Context) error {
		_, err := s.client.PostJSON(ctx, s.cfg.BaseURL+"/identify", s.headers(), identify)
		return err
	})
}

// headers builds the basic auth header: the write key is the username,
// the password is empty.
func (s *SegmentSink) headers() map[string]string {
	auth := base64.StdEncoding.EncodeToString([]byte(s.cfg.WriteKey + ":"))
	return map[string]string{"Authorization": "Basic " + auth}
}
