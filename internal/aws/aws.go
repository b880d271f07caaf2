// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package aws

import (
	"context"
	"fmt"

	"github.com/apex/log"
	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	s3v2 "github.com/aws/aws-sdk-go-v2/service/s3"
)

// options holds optional overrides for AWS config loading.
type options struct {
	profile     string
	region      string
	maxAttempts int
}

// Option customizes how AWS config is loaded. With no options the shell's
// chain applies (AWS_PROFILE, ~/.aws/config, ~/.aws/credentials, IMDS).
type Option func(*options)

// WithProfile sets the shared config profile.
func WithProfile(profile string) Option {
	return func(o *options) { o.profile = profile }
}

// WithRegion overrides the region.
func WithRegion(region string) Option {
	return func(o *options) { o.region = region }
}

// WithMaxAttempts caps SDK retries. Zero keeps the SDK default.
func WithMaxAttempts(n int) Option {
	return func(o *options) { o.maxAttempts = n }
}

// LoadAWSConfig loads the SDK v2 config with the given overrides applied.
func LoadAWSConfig(ctx context.Context, opts ...Option) (awsv2.Config, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	var loadOpts []func(*config.LoadOptions) error
	if o.profile != "" {
		loadOpts = append(loadOpts, config.WithSharedConfigProfile(o.profile))
	}
	if o.region != "" {
		loadOpts = append(loadOpts, config.WithRegion(o.region))
	}
	if o.maxAttempts > 0 {
		loadOpts = append(loadOpts, config.WithRetryMaxAttempts(o.maxAttempts))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return awsv2.Config{}, fmt.Errorf("failed to load aws config: %w", err)
	}
	log.WithFields(log.Fields{"profile": o.profile, "region": cfg.Region}).Debug("aws config loaded")
	return cfg, nil
}

// S3Options tweaks the S3 client, mostly for S3-compatible stores.
type S3Options struct {
	// Endpoint replaces the AWS endpoint, e.g. a MinIO or LocalStack URL.
	Endpoint string
	// PathStyle addresses buckets as endpoint/bucket instead of
	// bucket.endpoint.
	PathStyle bool
}

// NewS3Client constructs an S3 client from cfg.
func NewS3Client(cfg awsv2.Config, so S3Options) *s3v2.Client {
	return s3v2.NewFromConfig(cfg, func(o *s3v2.Options) {
		if so.Endpoint != "" {
			o.BaseEndpoint = awsv2.String(so.Endpoint)
		}
		o.UsePathStyle = so.PathStyle
	})
}
