// Package state provides factory functions for creating storage instances
package state

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// StoreWithProfile creates an S3Store for bucket using the shared AWS
// configuration, optionally for a named profile.
func StoreWithProfile(ctx context.Context, bucketName, awsProfile string) (*S3Store, error) {
	if bucketName == "" {
		return nil, ValidationError{Field: "bucket", Message: "bucket name is required"}
	}

	var optFns []func(*config.LoadOptions) error
	if awsProfile != "" {
		optFns = append(optFns, config.WithSharedConfigProfile(awsProfile))
	}
	cfg, err := config.LoadDefaultConfig(ctx, optFns...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	return NewS3Store(s3.NewFromConfig(cfg), bucketName), nil
}
