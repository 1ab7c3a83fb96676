// Package aws wraps the SDK clients used for high-priority lead alerts
// behind the narrow interfaces the notifier consumes.
package aws

import (
	"context"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
)

// loadConfig resolves the SDK configuration shared by all clients.
func loadConfig(ctx context.Context, region string) (awssdk.Config, error) {
	return config.LoadDefaultConfig(ctx, config.WithRegion(region))
}
