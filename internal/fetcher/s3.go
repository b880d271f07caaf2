// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	s3v2 "github.com/aws/aws-sdk-go-v2/service/s3"

	awsx "github.com/staranto/fcache/internal/aws"
)

// GetObjectAPI is the part of the S3 client the fetcher needs.
type GetObjectAPI interface {
	GetObject(ctx context.Context, in *s3v2.GetObjectInput, optFns ...func(*s3v2.Options)) (*s3v2.GetObjectOutput, error)
}

// S3 fetches s3://bucket/key URIs. The AWS config is loaded on first use so
// that commands that never touch S3 don't pay for credential resolution.
type S3 struct {
	awsOpts []awsx.Option
	s3Opts  awsx.S3Options

	once   sync.Once
	client GetObjectAPI
	err    error
}

// NewS3 returns an S3 fetcher using the shell's AWS configuration with opts
// applied.
func NewS3(s3Opts awsx.S3Options, opts ...awsx.Option) *S3 {
	return &S3{awsOpts: opts, s3Opts: s3Opts}
}

// NewS3WithClient returns an S3 fetcher backed by api.
func NewS3WithClient(api GetObjectAPI) *S3 {
	s := &S3{client: api}
	s.once.Do(func() {})
	return s
}

func (s *S3) api(ctx context.Context) (GetObjectAPI, error) {
	s.once.Do(func() {
		cfg, err := awsx.LoadAWSConfig(ctx, s.awsOpts...)
		if err != nil {
			s.err = err
			return
		}
		s.client = awsx.NewS3Client(cfg, s.s3Opts)
	})
	return s.client, s.err
}

// Fetch implements filecache.Fetcher.
func (s *S3) Fetch(ctx context.Context, uri string) ([]byte, error) {
	bucket, key, err := ParseS3URI(uri)
	if err != nil {
		return nil, err
	}

	api, err := s.api(ctx)
	if err != nil {
		return nil, err
	}

	out, err := api.GetObject(ctx, &s3v2.GetObjectInput{
		Bucket: awsv2.String(bucket),
		Key:    awsv2.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get s3://%s/%s: %w", bucket, key, err)
	}
	defer out.Body.Close()

	body, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read s3://%s/%s: %w", bucket, key, err)
	}
	return body, nil
}

// ParseS3URI splits s3://bucket/key into its bucket and key.
func ParseS3URI(uri string) (bucket, key string, err error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", "", fmt.Errorf("%w: %w", ErrBadURI, err)
	}
	if !strings.EqualFold(u.Scheme, "s3") {
		return "", "", fmt.Errorf("%w: %q is not an s3 uri", ErrBadURI, uri)
	}
	bucket = u.Host
	key = strings.TrimPrefix(u.Path, "/")
	if bucket == "" || key == "" {
		return "", "", fmt.Errorf("%w: %q needs a bucket and a key", ErrBadURI, uri)
	}
	return bucket, key, nil
}
