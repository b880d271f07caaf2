// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package fetcher

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/apex/log"

	awsx "github.com/staranto/fcache/internal/aws"
	"github.com/staranto/fcache/internal/filecache"
)

var (
	// ErrUnsupportedScheme is returned for URIs no fetcher is registered for.
	ErrUnsupportedScheme = errors.New("unsupported uri scheme")
	// ErrBadURI is returned for URIs that cannot be parsed.
	ErrBadURI = errors.New("malformed uri")
)

// Options configures the fetchers registered by NewDefault.
type Options struct {
	HTTPRetryMax int
	HTTPTimeout  time.Duration

	AWSProfile  string
	AWSRegion   string
	S3Endpoint  string
	S3PathStyle bool
}

// Mux dispatches Fetch to the fetcher registered for the URI's scheme.
type Mux struct {
	fetchers map[string]filecache.Fetcher
}

// NewMux returns an empty Mux.
func NewMux() *Mux {
	return &Mux{fetchers: map[string]filecache.Fetcher{}}
}

// NewDefault returns a Mux with the http, https, s3 and file fetchers
// registered. Bare paths are served by the file fetcher.
func NewDefault(opts Options) *Mux {
	m := NewMux()

	h := NewHTTP(opts.HTTPRetryMax, opts.HTTPTimeout)
	m.Handle("http", h)
	m.Handle("https", h)

	var awsOpts []awsx.Option
	if opts.AWSProfile != "" {
		awsOpts = append(awsOpts, awsx.WithProfile(opts.AWSProfile))
	}
	if opts.AWSRegion != "" {
		awsOpts = append(awsOpts, awsx.WithRegion(opts.AWSRegion))
	}
	// S3 attempts follow the HTTP retry budget.
	switch {
	case opts.HTTPRetryMax > 0:
		awsOpts = append(awsOpts, awsx.WithMaxAttempts(opts.HTTPRetryMax+1))
	case opts.HTTPRetryMax < 0:
		awsOpts = append(awsOpts, awsx.WithMaxAttempts(1))
	}
	m.Handle("s3", NewS3(awsx.S3Options{Endpoint: opts.S3Endpoint, PathStyle: opts.S3PathStyle}, awsOpts...))

	f := File{}
	m.Handle("file", f)
	m.Handle("", f)

	return m
}

// Handle registers f for scheme. Schemes are case-insensitive.
func (m *Mux) Handle(scheme string, f filecache.Fetcher) {
	m.fetchers[strings.ToLower(scheme)] = f
}

// Fetch implements filecache.Fetcher.
func (m *Mux) Fetch(ctx context.Context, uri string) ([]byte, error) {
	scheme, err := Scheme(uri)
	if err != nil {
		return nil, err
	}
	f, ok := m.fetchers[scheme]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, scheme)
	}
	log.WithFields(log.Fields{"uri": uri, "scheme": scheme}).Debug("fetching")
	return f.Fetch(ctx, uri)
}

// Scheme returns the lower-cased scheme of uri, or "" for a plain path.
func Scheme(uri string) (string, error) {
	if uri == "" {
		return "", fmt.Errorf("%w: empty", ErrBadURI)
	}
	u, err := url.Parse(uri)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrBadURI, err)
	}
	return strings.ToLower(u.Scheme), nil
}
