// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package filecache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/apex/log"
)

// Fetcher retrieves the raw bytes of a resource identified by uri.
type Fetcher interface {
	Fetch(ctx context.Context, uri string) ([]byte, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, uri string) ([]byte, error)

// Fetch calls f(ctx, uri).
func (f FetcherFunc) Fetch(ctx context.Context, uri string) ([]byte, error) {
	return f(ctx, uri)
}

// Fetch returns the resource at uri, from the cache when a live entry exists
// and otherwise from the configured Fetcher, caching the result for ttl. The
// entry key is URIKey(uri). Nothing is cached when the fetch fails. A resource
// that is empty or exactly "0" is rejected with ErrInvalidData.
func (c *Cache) Fetch(ctx context.Context, uri string, ttl time.Duration) ([]byte, error) {
	if c.fetcher == nil {
		return nil, fmt.Errorf("%w: no Fetcher configured", ErrInvalidConfig)
	}

	key := URIKey(uri)

	// []byte round-trips through the entry as a base64 JSON string, so binary
	// resources survive untouched.
	var body []byte
	err := c.Get(key, &body)
	switch {
	case err == nil:
		log.WithFields(log.Fields{"uri": uri, "key": key}).Debug("fetch served from cache")
		return body, nil
	case !IsMiss(err):
		return nil, err
	}

	body, err = c.fetcher.Fetch(ctx, uri)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrFetch, uri, err)
	}

	// The body is judged as text, so "0" is as empty as "".
	if isFalsyText(body) {
		return nil, fmt.Errorf("%w: %s returned %q", ErrInvalidData, uri, body)
	}

	if err := c.Set(key, body, ttl); err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{"uri": uri, "key": key, "size": len(body)}).Debug("fetched and cached")

	return body, nil
}

// FetchJSON is Fetch followed by decoding the resource as JSON into v.
func (c *Cache) FetchJSON(ctx context.Context, uri string, ttl time.Duration, v any) error {
	body, err := c.Fetch(ctx, uri, ttl)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", uri, err)
	}
	return nil
}
