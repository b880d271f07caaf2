// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/apex/log"
	"github.com/hashicorp/go-retryablehttp"
)

// ErrStatus is returned for non-2xx responses. Such responses are never
// cached.
var ErrStatus = errors.New("unexpected http status")

const (
	defaultRetryMax = 3
	defaultTimeout  = 30 * time.Second
)

// HTTP fetches http and https URIs with retries on connection errors and
// 5xx/429 responses.
type HTTP struct {
	client *retryablehttp.Client
}

// NewHTTP returns an HTTP fetcher. A negative retryMax disables retries; zero
// means the default of 3. A zero timeout means 30s per attempt.
func NewHTTP(retryMax int, timeout time.Duration) *HTTP {
	switch {
	case retryMax == 0:
		retryMax = defaultRetryMax
	case retryMax < 0:
		retryMax = 0
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	c := retryablehttp.NewClient()
	c.RetryMax = retryMax
	c.HTTPClient.Timeout = timeout
	c.Logger = leveledLogger{}
	// Hand the final response back so the status check below reports it.
	c.ErrorHandler = retryablehttp.PassthroughErrorHandler

	return &HTTP{client: c}
}

// Fetch implements filecache.Fetcher.
func (h *HTTP) Fetch(ctx context.Context, uri string) ([]byte, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadURI, err)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
		}
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s", ErrStatus, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, nil
}

// leveledLogger routes retryablehttp's logging to apex/log.
type leveledLogger struct{}

func (leveledLogger) Error(msg string, kv ...interface{}) { entry(kv).Error(msg) }
func (leveledLogger) Info(msg string, kv ...interface{})  { entry(kv).Debug(msg) }
func (leveledLogger) Debug(msg string, kv ...interface{}) { entry(kv).Debug(msg) }
func (leveledLogger) Warn(msg string, kv ...interface{})  { entry(kv).Warn(msg) }

func entry(kv []interface{}) *log.Entry {
	fields := log.Fields{}
	for i := 0; i+1 < len(kv); i += 2 {
		fields[fmt.Sprint(kv[i])] = kv[i+1]
	}
	return log.WithFields(fields)
}
