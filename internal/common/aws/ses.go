package aws

import (
	"context"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
)

type SESClient struct {
	client *ses.Client
}

// NewSESClient builds an SES client for the region. Option functions
// let tests redirect the client at a stub endpoint.
func NewSESClient(ctx context.Context, region string, optFns ...func(*ses.Options)) (*SESClient, error) {
	cfg, err := loadConfig(ctx, region)
	if err != nil {
		return nil, err
	}
	return &SESClient{client: ses.NewFromConfig(cfg, optFns...)}, nil
}

// WithSESEndpoint overrides the service endpoint, for tests.
func WithSESEndpoint(url string) func(*ses.Options) {
	return func(o *ses.Options) { o.BaseEndpoint = awssdk.String(url) }
}

func (s *SESClient) SendEmail(ctx context.Context, input *ses.SendEmailInput) (*ses.SendEmailOutput, error) {
	return s.client.SendEmail(ctx, input)
}
