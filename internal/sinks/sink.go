package sinks

import (
	"context"

	"leadpipe/internal/models"
)

// Sink is one downstream destination for finalized lead records.
// Deliver must be safe to call concurrently and must respect ctx.
type Sink interface {
	Name() string
	Deliver(ctx context.Context, rec *models.LeadRecord) error
}

// QuestionnaireUpdater is implemented by sinks that can also receive
// second-stage questionnaire updates for an existing lead.
type QuestionnaireUpdater interface {
	Sink
	UpdateQuestionnaire(ctx context.Context, upd *models.QuestionnaireUpdate) error
}
