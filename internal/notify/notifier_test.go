package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadpipe/internal/common/config"
	"leadpipe/internal/common/logger"
	"leadpipe/internal/models"
)

type fakeEmail struct {
	calls []*ses.SendEmailInput
	err   error
}

func (f *fakeEmail) SendEmail(_ context.Context, input *ses.SendEmailInput) (*ses.SendEmailOutput, error) {
	f.calls = append(f.calls, input)
	return &ses.SendEmailOutput{}, f.err
}

type fakeTopic struct {
	calls []*sns.PublishInput
	err   error
}

func (f *fakeTopic) Publish(_ context.Context, input *sns.PublishInput) (*sns.PublishOutput, error) {
	f.calls = append(f.calls, input)
	return &sns.PublishOutput{}, f.err
}

func testConfig() config.NotificationConfig {
	return config.NotificationConfig{
		Enabled:    true,
		FromEmail:  "noreply@mentoriasejalivre.com.br",
		SalesEmail: "vendas@mentoriasejalivre.com.br",
		SNSTopic:   "arn:aws:sns:us-east-1:123456789:priority-leads",
	}
}

func TestNotifier_HighScoreAlertsBothChannels(t *testing.T) {
	email := &fakeEmail{}
	topic := &fakeTopic{}
	n := NewNotifier(email, topic, testConfig(), logger.NewTestLogger(t))

	n.LeadSubmitted(context.Background(), &models.LeadRecord{
		LeadID: "lead-1", Name: "Amanda", Email: "amanda@example.com",
		AmandaScore: 85, AmandaScoreTier: "high",
	})

	require.Len(t, email.calls, 1)
	assert.Equal(t, "vendas@mentoriasejalivre.com.br", email.calls[0].Destination.ToAddresses[0])
	require.Len(t, topic.calls, 1)
	assert.Contains(t, *topic.calls[0].Message, "score 85")
}

func TestNotifier_BelowThresholdIsNoop(t *testing.T) {
	email := &fakeEmail{}
	topic := &fakeTopic{}
	n := NewNotifier(email, topic, testConfig(), logger.NewTestLogger(t))

	n.LeadSubmitted(context.Background(), &models.LeadRecord{LeadID: "lead-1", AmandaScore: 79})

	assert.Empty(t, email.calls)
	assert.Empty(t, topic.calls)
}

func TestNotifier_DisabledIsNoop(t *testing.T) {
	email := &fakeEmail{}
	cfg := testConfig()
	cfg.Enabled = false
	n := NewNotifier(email, nil, cfg, logger.NewTestLogger(t))

	n.LeadSubmitted(context.Background(), &models.LeadRecord{LeadID: "lead-1", AmandaScore: 100})

	assert.Empty(t, email.calls)
}

func TestNotifier_ChannelFailureDoesNotPanic(t *testing.T) {
	email := &fakeEmail{err: errors.New("ses throttled")}
	topic := &fakeTopic{err: errors.New("sns unavailable")}
	n := NewNotifier(email, topic, testConfig(), logger.NewTestLogger(t))

	assert.NotPanics(t, func() {
		n.LeadSubmitted(context.Background(), &models.LeadRecord{LeadID: "lead-1", AmandaScore: 90})
	})
	assert.Len(t, email.calls, 1)
	assert.Len(t, topic.calls, 1)
}
