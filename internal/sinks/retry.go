package sinks

import (
	"context"
	"fmt"
	"time"

	"leadpipe/internal/common/metrics"
)

// Policy controls per-sink retry behavior. The delay doubles after each
// failed attempt.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

// DefaultPolicy matches the dispatch defaults: three attempts with a
// 200ms base delay.
func DefaultPolicy() Policy {
	return Policy{MaxAttempts: 3, BaseDelay: 200 * time.Millisecond}
}

func (p Policy) normalized() Policy {
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = 200 * time.Millisecond
	}
	return p
}

// Do runs fn until it succeeds, attempts are exhausted, or ctx is done.
// Returns the last error wrapped with the attempt count.
func (p Policy) Do(ctx context.Context, sinkName string, fn func(context.Context) error) error {
	p = p.normalized()

	var lastErr error
	delay := p.BaseDelay
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}

		if attempt == p.MaxAttempts {
			break
		}
		metrics.SinkRetries.WithLabelValues(sinkName).Inc()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
	return fmt.Errorf("failed after %d attempts: %w", p.MaxAttempts, lastErr)
}
