package sinks

import (
	"context"
	"fmt"
	"net/url"

	"leadpipe/internal/common/config"
	httpc "leadpipe/internal/common/http"
	"leadpipe/internal/models"
)

// GA4Sink posts server-side events to the GA4 Measurement Protocol,
// keyed by lead id as the client id.
type GA4Sink struct {
	client *httpc.Client
	cfg    config.GA4SinkConfig
	retry  Policy
}

func NewGA4Sink(client *httpc.Client, cfg config.GA4SinkConfig, retry Policy) *GA4Sink {
	return &GA4Sink{client: client, cfg: cfg, retry: retry}
}

func (s *GA4Sink) Name() string { return "ga4" }

type ga4Event struct {
	Name   string                 `json:"name"`
	Params map[string]interface{} `json:"params"`
}

type ga4Payload struct {
	ClientID string     `json:"client_id"`
	Events   []ga4Event `json:"events"`
}

func (s *GA4Sink) Deliver(ctx context.Context, rec *models.LeadRecord) error {
	payload := ga4Payload{
		ClientID: rec.LeadID,
		Events: []ga4Event{{
			Name: "lead_form_submit_server",
			Params: map[string]interface{}{
				"amanda_match_score":   rec.AmandaScore,
				"amanda_score_tier":    rec.AmandaScoreTier,
				"business_type":        rec.BusinessType,
				"source_section":       rec.SourceSection,
				"qualification_result": rec.QualificationResult,
				"value":                1,
				"currency":             "BRL",
				"event_source":         "server_side",
			},
		}},
	}

	endpoint := fmt.Sprintf("%s/mp/collect?measurement_id=%s&api_secret=%s",
		s.cfg.BaseURL, url.QueryEscape(s.cfg.MeasurementID), url.QueryEscape(s.cfg.APISecret))

	return s.retry.Do(ctx, s.Name(), func(ctx context.Context) error {
		_, err := s.client.PostJSON(ctx, endpoint, nil, payload)
		return err
	})
}
