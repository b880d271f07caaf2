// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package aws

import (
	"context"
	"path/filepath"
	"testing"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points the SDK at empty shared config files.
func isolate(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("AWS_CONFIG_FILE", filepath.Join(dir, "config"))
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", filepath.Join(dir, "credentials"))
	t.Setenv("AWS_PROFILE", "")
	t.Setenv("AWS_REGION", "")
	t.Setenv("AWS_DEFAULT_REGION", "")
	t.Setenv("AWS_EC2_METADATA_DISABLED", "true")
}

func TestLoadAWSConfig(t *testing.T) {
	isolate(t)

	cfg, err := LoadAWSConfig(context.Background(), WithRegion("eu-west-1"), WithMaxAttempts(2))
	require.NoError(t, err)
	assert.Equal(t, "eu-west-1", cfg.Region)
	assert.Equal(t, 2, cfg.RetryMaxAttempts)

	cfg, err = LoadAWSConfig(context.Background())
	require.NoError(t, err)
	assert.Zero(t, cfg.RetryMaxAttempts)
}

func TestLoadAWSConfig_MissingProfile(t *testing.T) {
	isolate(t)

	_, err := LoadAWSConfig(context.Background(), WithProfile("no-such-profile"))
	assert.ErrorContains(t, err, "failed to load aws config")
}

func TestNewS3Client(t *testing.T) {
	cfg := awsv2.Config{Region: "us-east-1"}

	c := NewS3Client(cfg, S3Options{Endpoint: "http://localhost:9000", PathStyle: true})
	o := c.Options()
	require.NotNil(t, o.BaseEndpoint)
	assert.Equal(t, "http://localhost:9000", *o.BaseEndpoint)
	assert.True(t, o.UsePathStyle)

	o = NewS3Client(cfg, S3Options{}).Options()
	assert.Nil(t, o.BaseEndpoint)
	assert.False(t, o.UsePathStyle)
}
