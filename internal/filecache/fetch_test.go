// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package filecache

import (
	"context"
	"errors"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingFetcher serves body and counts how often it was asked to.
func countingFetcher(body []byte, err error) (Fetcher, *atomic.Int32) {
	var calls atomic.Int32
	return FetcherFunc(func(_ context.Context, _ string) ([]byte, error) {
		calls.Add(1)
		return body, err
	}), &calls
}

func TestFetch_CachesResource(t *testing.T) {
	const uri = "https://example.com/data.json"
	fetcher, calls := countingFetcher([]byte(`{"items":[1,2,3]}`), nil)
	c := newTestCache(t, nil, func(conf *Config) { conf.Fetcher = fetcher })

	first, err := c.Fetch(context.Background(), uri, time.Hour)
	require.NoError(t, err)
	second, err := c.Fetch(context.Background(), uri, time.Hour)
	require.NoError(t, err)

	assert.Equal(t, int32(1), calls.Load(), "the second fetch is served from the cache")
	assert.Equal(t, first, second)
	assert.JSONEq(t, `{"items":[1,2,3]}`, string(second))

	_, err = os.Stat(c.Path(URIKey(uri)))
	assert.NoError(t, err)
}

func TestFetch_RefetchesAfterExpiry(t *testing.T) {
	clock := newFakeClock()
	fetcher, calls := countingFetcher([]byte("payload"), nil)
	c := newTestCache(t, clock, func(conf *Config) { conf.Fetcher = fetcher })

	_, err := c.Fetch(context.Background(), "file:///x", time.Minute)
	require.NoError(t, err)

	clock.Advance(time.Minute + time.Second)
	_, err = c.Fetch(context.Background(), "file:///x", time.Minute)
	require.NoError(t, err)

	assert.Equal(t, int32(2), calls.Load())
}

func TestFetch_BinaryResource(t *testing.T) {
	body := []byte{0x00, 0xff, 0x10, 0x80, '\n', 0x00}
	fetcher, _ := countingFetcher(body, nil)
	c := newTestCache(t, nil, func(conf *Config) { conf.Fetcher = fetcher })

	_, err := c.Fetch(context.Background(), "s3://bucket/blob.bin", time.Hour)
	require.NoError(t, err)
	got, err := c.Fetch(context.Background(), "s3://bucket/blob.bin", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, body, got)
}

func TestFetch_Failures(t *testing.T) {
	boom := errors.New("connection refused")

	tests := []struct {
		name    string
		fetcher Fetcher
		want    error
	}{
		{
			name: "no fetcher",
			want: ErrInvalidConfig,
		},
		{
			name:    "fetch error",
			fetcher: FetcherFunc(func(context.Context, string) ([]byte, error) { return nil, boom }),
			want:    boom,
		},
		{
			name:    "empty body",
			fetcher: FetcherFunc(func(context.Context, string) ([]byte, error) { return []byte{}, nil }),
			want:    ErrInvalidData,
		},
		{
			name:    "zero body",
			fetcher: FetcherFunc(func(context.Context, string) ([]byte, error) { return []byte("0"), nil }),
			want:    ErrInvalidData,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestCache(t, nil, func(conf *Config) { conf.Fetcher = tt.fetcher })

			got, err := c.Fetch(context.Background(), "https://example.com/", time.Hour)
			assert.Nil(t, got)
			assert.ErrorIs(t, err, tt.want)
			assert.False(t, IsMiss(err))
			assert.Empty(t, dirFiles(t, c.Dir()), "failures cache nothing")
		})
	}
}

func TestFetch_ZeroBodyIsRefetched(t *testing.T) {
	fetcher, calls := countingFetcher([]byte("0"), nil)
	c := newTestCache(t, nil, func(conf *Config) { conf.Fetcher = fetcher })

	for range 2 {
		_, err := c.Fetch(context.Background(), "https://example.com/count", time.Hour)
		assert.ErrorIs(t, err, ErrInvalidData)
	}
	assert.Equal(t, int32(2), calls.Load())
	assert.Empty(t, dirFiles(t, c.Dir()))
}

func TestFetch_WrapsFetchError(t *testing.T) {
	c := newTestCache(t, nil, func(conf *Config) {
		conf.Fetcher = FetcherFunc(func(context.Context, string) ([]byte, error) {
			return nil, errors.New("404")
		})
	})
	_, err := c.Fetch(context.Background(), "https://example.com/missing", time.Hour)
	assert.ErrorIs(t, err, ErrFetch)
	assert.Contains(t, err.Error(), "https://example.com/missing")
}

func TestFetch_HonorsContext(t *testing.T) {
	c := newTestCache(t, nil, func(conf *Config) {
		conf.Fetcher = FetcherFunc(func(ctx context.Context, _ string) ([]byte, error) {
			return nil, ctx.Err()
		})
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Fetch(ctx, "https://example.com/", time.Hour)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFetchJSON(t *testing.T) {
	fetcher, calls := countingFetcher([]byte(`[{"name":"Ann","email":"ann@example.com"}]`), nil)
	c := newTestCache(t, nil, func(conf *Config) { conf.Fetcher = fetcher })

	for i := 0; i < 3; i++ {
		var clients []client
		require.NoError(t, c.FetchJSON(context.Background(), "https://example.com/clients", time.Hour, &clients))
		require.Len(t, clients, 1)
		assert.Equal(t, "Ann", clients[0].Name)
	}
	assert.Equal(t, int32(1), calls.Load())

	notJSON, _ := countingFetcher([]byte("<html>"), nil)
	c = newTestCache(t, nil, func(conf *Config) { conf.Fetcher = notJSON })
	var v any
	err := c.FetchJSON(context.Background(), "https://example.com/page", time.Hour, &v)
	require.Error(t, err)
	assert.False(t, IsMiss(err))
}
