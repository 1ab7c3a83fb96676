package notify

import (
	"context"
	"fmt"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	"leadpipe/internal/common/config"
	"leadpipe/internal/common/logger"
	"leadpipe/internal/models"
)

// highPriorityThreshold is the Amanda score above which the sales team
// is alerted immediately.
const highPriorityThreshold = 80

// EmailSender abstracts the SES client for testing.
type EmailSender interface {
	SendEmail(ctx context.Context, input *ses.SendEmailInput) (*ses.SendEmailOutput, error)
}

// TopicPublisher abstracts the SNS client for testing.
type TopicPublisher interface {
	Publish(ctx context.Context, input *sns.PublishInput) (*sns.PublishOutput, error)
}

// Notifier alerts the sales team about high-priority leads over email
// and an SNS topic. Alerts are best effort and never fail a
// submission.
type Notifier struct {
	email  EmailSender
	topic  TopicPublisher
	cfg    config.NotificationConfig
	logger logger.Logger
}

func NewNotifier(email EmailSender, topic TopicPublisher, cfg config.NotificationConfig, lg logger.Logger) *Notifier {
	return &Notifier{email: email, topic: topic, cfg: cfg, logger: lg}
}

// LeadSubmitted alerts on leads at or above the high-priority
// threshold. Lower scores are a no-op.
func (n *Notifier) LeadSubmitted(ctx context.Context, rec *models.LeadRecord) {
	if !n.cfg.Enabled || rec.AmandaScore < highPriorityThreshold {
		return
	}

	if n.email != nil && n.cfg.SalesEmail != "" {
		if err := n.sendEmail(ctx, rec); err != nil {
			n.logger.Warn("priority lead email failed", map[string]interface{}{
				"lead_id": rec.LeadID,
				"error":   err.Error(),
			})
		}
	}

	if n.topic != nil && n.cfg.SNSTopic != "" {
		if err := n.publish(ctx, rec); err != nil {
			n.logger.Warn("priority lead topic publish failed", map[string]interface{}{
				"lead_id": rec.LeadID,
				"error":   err.Error(),
			})
		}
	}
}

func (n *Notifier) sendEmail(ctx context.Context, rec *models.LeadRecord) error {
	subject := fmt.Sprintf("Lead prioritária: %s (score %d)", rec.Name, rec.AmandaScore)
	body := fmt.Sprintf(
		"Nome: %s\nEmail: %s\nTelefone: %s\nNegócio: %s\nScore: %d (%s)\nResultado: %s\nOrigem: %s / %s\n",
		rec.Name, rec.Email, rec.Phone, rec.BusinessType,
		rec.AmandaScore, rec.AmandaScoreTier, rec.QualificationResult,
		rec.TrafficSource, rec.SourceSection,
	)

	_, err := n.email.SendEmail(ctx, &ses.SendEmailInput{
		Source: awssdk.String(n.cfg.FromEmail),
		Destination: &sestypes.Destination{
			ToAddresses: []string{n.cfg.SalesEmail},
		},
		Message: &sestypes.Message{
			Subject: &sestypes.Content{Data: awssdk.String(subject)},
			Body: &sestypes.Body{
				Text: &sestypes.Content{Data: awssdk.String(body)},
			},
		},
	})
	return err
}

func (n *Notifier) publish(ctx context.Context, rec *models.LeadRecord) error {
	msg := fmt.Sprintf("Lead prioritária %s (score %d, %s) - %s", rec.Name, rec.AmandaScore, rec.AmandaScoreTier, rec.Email)
	_, err := n.topic.Publish(ctx, &sns.PublishInput{
		TopicArn: awssdk.String(n.cfg.SNSTopic),
		Subject:  awssdk.String("Lead prioritária"),
		Message:  awssdk.String(msg),
	})
	return err
}
