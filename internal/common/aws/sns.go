package aws

import (
	"context"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

type SNSClient struct {
	client *sns.Client
}

// NewSNSClient builds an SNS client for the region. Option functions
// let tests redirect the client at a stub endpoint.
func NewSNSClient(ctx context.Context, region string, optFns ...func(*sns.Options)) (*SNSClient, error) {
	cfg, err := loadConfig(ctx, region)
	if err != nil {
		return nil, err
	}
	return &SNSClient{client: sns.NewFromConfig(cfg, optFns...)}, nil
}

// WithSNSEndpoint overrides the service endpoint, for tests.
func WithSNSEndpoint(url string) func(*sns.Options) {
	return func(o *sns.Options) { o.BaseEndpoint = awssdk.String(url) }
}

func (s *SNSClient) Publish(ctx context.Context, input *sns.PublishInput) (*sns.PublishOutput, error) {
	return s.client.Publish(ctx, input)
}
