package sinks

import (
	"context"
	"fmt"
	"strings"

	"leadpipe/internal/common/config"
	httpc "leadpipe/internal/common/http"
	"leadpipe/internal/models"
	"leadpipe/internal/scoring"
)

// Automation triggers the CRM fires on intake.
const (
	triggerHighPriority    = "high_priority_follow_up"
	triggerStandardNurture = "standard_nurture"
)

// CRMSink delivers leads to the CRM intake webhook and pushes
// questionnaire completions to its update endpoint.
type CRMSink struct {
	client *httpc.Client
	cfg    config.CRMSinkConfig
	retry  Policy
}

func NewCRMSink(client *httpc.Client, cfg config.CRMSinkConfig, retry Policy) *CRMSink {
	return &CRMSink{client: client, cfg: cfg, retry: retry}
}

func (s *CRMSink) Name() string { return "crm" }

type crmLeadPayload struct {
	ExternalID   string                 `json:"external_id"`
	Name         string                 `json:"name"`
	Email        string                 `json:"email"`
	Phone        string                 `json:"phone"`
	Source       string                 `json:"source"`
	CustomFields map[string]interface{} `json:"custom_fields"`
	Tags         []string               `json:"tags"`
	Automations  []string               `json:"automation_triggers"`
}

func (s *CRMSink) Deliver(ctx context.Context, rec *models.LeadRecord) error {
	trigger := triggerStandardNurture
	if rec.AmandaScore >= 80 {
		trigger = triggerHighPriority
	}

	payload := crmLeadPayload{
		ExternalID: rec.LeadID,
		Name:       rec.Name,
		Email:      rec.Email,
		Phone:      rec.Phone,
		Source:     "landing_page_modal",
		CustomFields: map[string]interface{}{
			"amanda_match_score":         rec.AmandaScore,
			"amanda_score_tier":          rec.AmandaScoreTier,
			"business_type":              rec.BusinessType,
			"monthly_revenue":            rec.Answers.MonthlyRevenue,
			"work_hours_daily":           rec.Answers.WorkHoursDaily,
			"main_struggle":              rec.Answers.MainStruggle,
			"delegation_struggle":        rec.Answers.DelegationStruggle,
			"feminine_energy_importance": rec.Answers.FeminineEnergyImportance,
			"leadership_interest":        rec.Answers.LeadershipInterest,
			"transformation_readiness":   rec.Answers.TransformationReadiness,
			"source_section":             rec.SourceSection,
			"cta_id":                     rec.CTAID,
			"qualification_result":       rec.QualificationResult,
		},
		Tags: []string{
			"landing_page_lead",
			"amanda_score_" + rec.AmandaScoreTier,
			"source_" + rec.SourceSection,
			"business_type_" + rec.BusinessType,
			"mentoria_seja_livre",
		},
		Automations: []string{
			trigger,
			"qualification_" + rec.QualificationResult,
		},
	}

	return s.retry.Do(ctx, s.Name(), func(ctx context.Context) error {
		_, err := s.client.PostJSON(ctx, s.cfg.WebhookURL, s.headers(), payload)
		return err
	})
}

type crmUpdatePayload struct {
	ExternalID   string                 `json:"external_id"`
	CustomFields map[string]interface{} `json:"custom_fields"`
	Tags         []string               `json:"tags"`
}

func (s *CRMSink) UpdateQuestionnaire(ctx context.Context, upd *models.QuestionnaireUpdate) error {
	payload := crmUpdatePayload{
		ExternalID: upd.LeadID,
		CustomFields: map[string]interface{}{
			"questionnaire_complete":         true,
			"transformation_readiness_score": upd.TransformationReadiness,
			"team_size":                      upd.Answers.TeamSize,
			"current_challenges":             strings.Join(upd.Answers.CurrentChallenges, ","),
			"previous_mentoring":             upd.Answers.PreviousMentoring,
			"investment_capacity":            upd.Answers.InvestmentCapacity,
			"time_commitment_hours":          upd.Answers.TimeCommitment,
			"expected_outcomes":              strings.Join(upd.Answers.ExpectedOutcomes, ","),
			"questionnaire_completion_date":  upd.CompletionTimestamp,
		},
		Tags: []string{
			"questionnaire_complete",
			"transformation_readiness_" + upd.ReadinessCategory,
			"investment_" + upd.Answers.InvestmentCapacity,
			"team_size_" + scoring.TeamSizeCategory(upd.Answers.TeamSize),
		},
	}

	return s.retry.Do(ctx, s.Name(), func(ctx context.Context) error {
		_, err := s.client.PutJSON(ctx, s.cfg.WebhookURL+"/update", s.headers(), payload)
		return err
	})
}

func (s *CRMSink) headers() map[string]string {
	return map[string]string{
		"Authorization":    fmt.Sprintf("Bearer %s", s.cfg.APIKey),
		"X-Webhook-Source": "lead-pipeline",
	}
}
