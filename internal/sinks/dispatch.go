package sinks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"leadpipe/internal/common/logger"
	"leadpipe/internal/common/metrics"
	"leadpipe/internal/models"
)

// Outcome statuses, one per sink per dispatch.
const (
	StatusFulfilled = "fulfilled"
	StatusRejected  = "rejected"
)

// Outcome is the result of one sink delivery attempt chain.
type Outcome struct {
	Sink     string
	Status   string
	Err      error
	Duration time.Duration
}

// Dispatcher fans a lead record out to every configured sink
// concurrently. Failures are isolated per sink: one sink failing, or
// even panicking, never affects the others or the caller.
type Dispatcher struct {
	sinks   []Sink
	timeout time.Duration
	logger  logger.Logger
}

func NewDispatcher(sinks []Sink, perSinkTimeout time.Duration, lg logger.Logger) *Dispatcher {
	if perSinkTimeout <= 0 {
		perSinkTimeout = 5 * time.Second
	}
	return &Dispatcher{sinks: sinks, timeout: perSinkTimeout, logger: lg}
}

// Dispatch delivers rec to all sinks and waits for every outcome. It
// never returns an error: partial failure is reported in the summary.
func (d *Dispatcher) Dispatch(ctx context.Context, rec *models.LeadRecord) (models.WebhookResults, []Outcome) {
	start := time.Now()
	outcomes := make([]Outcome, len(d.sinks))

	var wg sync.WaitGroup
	for i, s := range d.sinks {
		wg.Add(1)
		go func(i int, s Sink) {
			defer wg.Done()
			outcomes[i] = d.deliverOne(ctx, s, rec)
		}(i, s)
	}
	wg.Wait()

	metrics.DispatchDuration.Observe(time.Since(start).Seconds())

	summary := models.WebhookResults{Total: len(outcomes)}
	for _, o := range outcomes {
		if o.Status == StatusFulfilled {
			summary.Successful++
		} else {
			summary.Failed++
		}
	}
	return summary, outcomes
}

func (d *Dispatcher) deliverOne(ctx context.Context, s Sink, rec *models.LeadRecord) (out Outcome) {
	out.Sink = s.Name()
	start := time.Now()

	defer func() {
		out.Duration = time.Since(start)
		if r := recover(); r != nil {
			out.Status = StatusRejected
			out.Err = fmt.Errorf("sink panic: %v", r)
		}
		metrics.SinkDeliveries.WithLabelValues(out.Sink, out.Status).Inc()
		if out.Err != nil {
			d.logger.Error("sink delivery failed", map[string]interface{}{
				"sink":        out.Sink,
				"lead_id":     rec.LeadID,
				"duration_ms": out.Duration.Milliseconds(),
				"error":       out.Err.Error(),
			})
		}
	}()

	sinkCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	if err := s.Deliver(sinkCtx, rec); err != nil {
		out.Status = StatusRejected
		out.Err = err
		return out
	}
	out.Status = StatusFulfilled
	return out
}

// UpdateQuestionnaire fans a questionnaire update out to every sink
// that supports updates, with the same isolation guarantees.
func (d *Dispatcher) UpdateQuestionnaire(ctx context.Context, upd *models.QuestionnaireUpdate) models.WebhookResults {
	var updaters []QuestionnaireUpdater
	for _, s := range d.sinks {
		if u, ok := s.(QuestionnaireUpdater); ok {
			updaters = append(updaters, u)
		}
	}

	summary := models.WebhookResults{Total: len(updaters)}
	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, u := range updaters {
		wg.Add(1)
		go func(u QuestionnaireUpdater) {
			defer wg.Done()
			err := d.updateOne(ctx, u, upd)
			mu.Lock()
			if err == nil {
				summary.Successful++
			} else {
				summary.Failed++
			}
			mu.Unlock()
		}(u)
	}
	wg.Wait()
	return summary
}

func (d *Dispatcher) updateOne(ctx context.Context, u QuestionnaireUpdater, upd *models.QuestionnaireUpdate) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("sink panic: %v", r)
		}
		if err != nil {
			d.logger.Error("questionnaire update failed", map[string]interface{}{
				"sink":    u.Name(),
				"lead_id": upd.LeadID,
				"error":   err.Error(),
			})
		}
	}()

	sinkCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	return u.UpdateQuestionnaire(sinkCtx, upd)
}
