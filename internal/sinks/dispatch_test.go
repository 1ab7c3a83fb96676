package sinks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadpipe/internal/common/logger"
	"leadpipe/internal/models"
)

type fakeSink struct {
	name      string
	err       error
	panicWith interface{}
	delay     time.Duration
	calls     int
}

func (f *fakeSink) Name() string { return f.name }

func (f *fakeSink) Deliver(ctx context.Context, rec *models.LeadRecord) error {
	f.calls++
	if f.panicWith != nil {
		panic(f.panicWith)
	}
	if f.delay > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(f.delay):
		}
	}
	return f.err
}

type fakeUpdater struct {
	fakeSink
	updateErr   error
	updateCalls int
}

func (f *fakeUpdater) UpdateQuestionnaire(ctx context.Context, upd *models.QuestionnaireUpdate) error {
	f.updateCalls++
	return f.updateErr
}

func testRecord() *models.LeadRecord {
	return &models.LeadRecord{LeadID: "lead-1", Email: "a@example.com", AmandaScore: 85}
}

func TestDispatch_AllSucceed(t *testing.T) {
	d := NewDispatcher([]Sink{
		&fakeSink{name: "crm"},
		&fakeSink{name: "mailerlite"},
		&fakeSink{name: "segment"},
		&fakeSink{name: "ga4"},
	}, time.Second, logger.NewTestLogger(t))

	summary, outcomes := d.Dispatch(context.Background(), testRecord())

	assert.Equal(t, models.WebhookResults{Total: 4, Successful: 4, Failed: 0}, summary)
	for _, o := range outcomes {
		assert.Equal(t, StatusFulfilled, o.Status)
	}
}

func TestDispatch_OneFailureDoesNotAffectOthers(t *testing.T) {
	failing := &fakeSink{name: "crm", err: errors.New("webhook 502")}
	d := NewDispatcher([]Sink{
		failing,
		&fakeSink{name: "mailerlite"},
		&fakeSink{name: "segment"},
		&fakeSink{name: "ga4"},
	}, time.Second, logger.NewTestLogger(t))

	summary, outcomes := d.Dispatch(context.Background(), testRecord())

	assert.Equal(t, models.WebhookResults{Total: 4, Successful: 3, Failed: 1}, summary)
	require.Equal(t, "crm", outcomes[0].Sink)
	assert.Equal(t, StatusRejected, outcomes[0].Status)
	assert.Error(t, outcomes[0].Err)
}

func TestDispatch_PanicContainedAsRejected(t *testing.T) {
	d := NewDispatcher([]Sink{
		&fakeSink{name: "crm", panicWith: "nil map write"},
		&fakeSink{name: "ga4"},
	}, time.Second, logger.NewTestLogger(t))

	summary, outcomes := d.Dispatch(context.Background(), testRecord())

	assert.Equal(t, models.WebhookResults{Total: 2, Successful: 1, Failed: 1}, summary)
	assert.Equal(t, StatusRejected, outcomes[0].Status)
	assert.Contains(t, outcomes[0].Err.Error(), "sink panic")
}

func TestDispatch_PerSinkTimeout(t *testing.T) {
	d := NewDispatcher([]Sink{
		&fakeSink{name: "slow", delay: 500 * time.Millisecond},
		&fakeSink{name: "fast"},
	}, 50*time.Millisecond, logger.NewTestLogger(t))

	summary, outcomes := d.Dispatch(context.Background(), testRecord())

	assert.Equal(t, models.WebhookResults{Total: 2, Successful: 1, Failed: 1}, summary)
	assert.Equal(t, StatusRejected, outcomes[0].Status)
	assert.ErrorIs(t, outcomes[0].Err, context.DeadlineExceeded)
}

func TestDispatch_EmptySinkList(t *testing.T) {
	d := NewDispatcher(nil, time.Second, logger.NewTestLogger(t))
	summary, outcomes := d.Dispatch(context.Background(), testRecord())
	assert.Equal(t, models.WebhookResults{}, summary)
	assert.Empty(t, outcomes)
}

func TestUpdateQuestionnaire_OnlyUpdatersReceive(t *testing.T) {
	updater := &fakeUpdater{fakeSink: fakeSink{name: "crm"}}
	failingUpdater := &fakeUpdater{fakeSink: fakeSink{name: "segment"}, updateErr: errors.New("400")}
	plain := &fakeSink{name: "ga4"}

	d := NewDispatcher([]Sink{updater, failingUpdater, plain}, time.Second, logger.NewTestLogger(t))
	summary := d.UpdateQuestionnaire(context.Background(), &models.QuestionnaireUpdate{LeadID: "lead-1"})

	assert.Equal(t, models.WebhookResults{Total: 2, Successful: 1, Failed: 1}, summary)
	assert.Equal(t, 1, updater.updateCalls)
	assert.Equal(t, 1, failingUpdater.updateCalls)
	assert.Equal(t, 0, plain.calls)
}

func TestRetry_SucceedsAfterTransientFailures(t *testing.T) {
	p := Policy{MaxAttempts: 3, BaseDelay: time.Millisecond}
	attempts := 0
	err := p.Do(context.Background(), "crm", func(context.Context) error {
		attempts++
		if attempts < 3 {
			return errors.New("503")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestRetry_ExhaustsAttempts(t *testing.T) {
	p := Policy{MaxAttempts: 3, BaseDelay: time.Millisecond}
	attempts := 0
	err := p.Do(context.Background(), "crm", func(context.Context) error {
		attempts++
		return errors.New("502")
	})
	require.Error(t, err)
	assert.Equal(t, 3, attempts)
	assert.Contains(t, err.Error(), "after 3 attempts")
}

func TestRetry_StopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := Policy{MaxAttempts: 5, BaseDelay: 50 * time.Millisecond}
	attempts := 0
	err := p.Do(ctx, "crm", func(context.Context) error {
		attempts++
		cancel()
		return errors.New("502")
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, attempts)
}
