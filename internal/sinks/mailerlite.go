package sinks

import (
	"context"
	"fmt"
	"time"

	"leadpipe/internal/common/config"
	httpc "leadpipe/internal/common/http"
	"leadpipe/internal/common/logger"
	"leadpipe/internal/models"
	"leadpipe/internal/scoring"
)

// questionnaireDeadline is how long a new lead has to complete the
// second-stage questionnaire before the email automation expires.
const questionnaireDeadline = 48 * time.Hour

// MailerLiteSink upserts subscribers, assigns score-tier groups and
// triggers the questionnaire email automation.
type MailerLiteSink struct {
	client  *httpc.Client
	cfg     config.MailerLiteSinkConfig
	siteURL string
	retry   Policy
	logger  logger.Logger
	now     func() time.Time
}

func NewMailerLiteSink(client *httpc.Client, cfg config.MailerLiteSinkConfig, siteURL string, retry Policy, lg logger.Logger) *MailerLiteSink {
	return &MailerLiteSink{
		client:  client,
		cfg:     cfg,
		siteURL: siteURL,
		retry:   retry,
		logger:  lg,
		now:     time.Now,
	}
}

func (s *MailerLiteSink) Name() string { return "mailerlite" }

type mailerLiteSubscriber struct {
	Email  string                 `json:"email"`
	Name   string                 `json:"name,omitempty"`
	Fields map[string]interface{} `json:"fields"`
	Groups []string               `json:"groups,omitempty"`
}

func (s *MailerLiteSink) Deliver(ctx context.Context, rec *models.LeadRecord) error {
	trafficSource := rec.TrafficSource
	if trafficSource == "" {
		trafficSource = "landing_page"
	}

	subscriber := mailerLiteSubscriber{
		Email: rec.Email,
		Name:  rec.Name,
		Fields: map[string]interface{}{
			"lead_id":              rec.LeadID,
			"amanda_match_score":   rec.AmandaScore,
			"amanda_score_tier":    rec.AmandaScoreTier,
			"business_type":        rec.BusinessType,
			"monthly_revenue":      rec.Answers.MonthlyRevenue,
			"work_hours_daily":     rec.Answers.WorkHoursDaily,
			"main_struggle":        rec.Answers.MainStruggle,
			"traffic_source":       trafficSource,
			"source_section":       rec.SourceSection,
			"signup_date":          rec.SubmissionTimestamp,
			"transformation_stage": "awareness",
			"qualification_result": rec.QualificationResult,
		},
		Groups: []string{
			"landing_page_leads",
			scoring.AmandaScoreGroup(rec.AmandaScore),
			"business_type_" + rec.BusinessType,
			"source_" + rec.SourceSection,
		},
	}

	err := s.retry.Do(ctx, s.Name(), func(ctx context.Context) error {
		_, err := s.client.PostJSON(ctx, s.cfg.BaseURL+"/subscribers", s.headers(), subscriber)
		return err
	})
	if err != nil {
		return err
	}

	// Automation trigger failure does not fail the delivery; the
	// subscriber is already stored.
	if err := s.triggerQuestionnaireAutomation(ctx, rec.Email, rec.LeadID); err != nil {
		s.logger.Warn("questionnaire automation trigger failed", map[string]interface{}{
			"lead_id": rec.LeadID,
			"error":   err.Error(),
		})
	}
	return nil
}

func (s *MailerLiteSink) triggerQuestionnaireAutomation(ctx context.Context, email, leadID string) error {
	if s.cfg.QuestionnaireAutomationID == "" {
		return nil
	}
	payload := map[string]interface{}{
		"email":         email,
		"automation_id": s.cfg.QuestionnaireAutomationID,
		"custom_fields": map[string]interface{}{
			"questionnaire_url": fmt.Sprintf("%s/questionario?lead_id=%s", s.siteURL, leadID),
			"deadline":          s.now().Add(questionnaireDeadline).UTC().Format(time.RFC3339),
			"lead_id":           leadID,
		},
	}
	url := fmt.Sprintf("%s/campaigns/%s/actions/send", s.cfg.BaseURL, s.cfg.QuestionnaireAutomationID)
	_, err := s.client.PostJSON(ctx, url, s.headers(), payload)
	return err
}

func (s *MailerLiteSink) UpdateQuestionnaire(ctx context.Context, upd *models.QuestionnaireUpdate) error {
	payload := mailerLiteSubscriber{
		Email: upd.Email,
		Fields: map[string]interface{}{
			"questionnaire_completed":       "yes",
			"transformation_readiness":      upd.TransformationReadiness,
			"team_size":                     upd.Answers.TeamSize,
			"investment_capacity":           upd.Answers.InvestmentCapacity,
			"time_commitment":               upd.Answers.TimeCommitment,
			"questionnaire_completion_date": upd.CompletionTimestamp,
			"transformation_stage":          "qualification_complete",
		},
	}

	err := s.retry.Do(ctx, s.Name(), func(ctx context.Context) error {
		_, err := s.client.PutJSON(ctx, s.cfg.BaseURL+"/subscribers/"+upd.Email, s.headers(), payload)
		return err
	})
	if err != nil {
		return err
	}

	// Readiness group assignment is best effort.
	group := scoring.ReadinessGroup(upd.TransformationReadiness)
	groupURL := fmt.Sprintf("%s/groups/%s/subscribers", s.cfg.BaseURL, group)
	if _, err := s.client.PostJSON(ctx, groupURL, s.headers(), map[string]string{"email": upd.Email}); err != nil {
		s.logger.Warn("readiness group assignment failed", map[string]interface{}{
			"lead_id": upd.LeadID,
			"group":   group,
			"error":   err.Error(),
		})
	}
	return nil
}

func (s *MailerLiteSink) headers() map[string]string {
	return map[string]string{"X-MailerLite-ApiKey": s.cfg.APIKey}
}
