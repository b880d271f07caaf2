// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package filecache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsFalsy(t *testing.T) {
	tests := []struct {
		doc  string
		want bool
	}{
		{`null`, true},
		{`false`, true},
		{`0`, true},
		{`0.0`, true},
		{`-0`, true},
		{`""`, true},
		{`"0"`, true},
		{`[]`, true},
		{`{}`, true},
		{`true`, false},
		{`1`, false},
		{`-0.5`, false},
		{`"00"`, false},
		{`" "`, false},
		{`"false"`, false},
		{`[0]`, false},
		{`[null]`, false},
		{`{"a":null}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.doc, func(t *testing.T) {
			assert.Equal(t, tt.want, isFalsy([]byte(tt.doc)))
		})
	}
}

func TestSealOpen(t *testing.T) {
	c := newTestCache(t, nil)
	expires := time.Date(2030, 1, 2, 3, 4, 5, 6, time.UTC)

	blob, err := c.seal(record{Data: []byte(`{"a":1}`), ExpiresAt: expires})
	require.NoError(t, err)

	rec, err := c.open(blob)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(rec.Data))
	assert.True(t, expires.Equal(rec.ExpiresAt))

	assert.False(t, rec.expired(expires))
	assert.True(t, rec.expired(expires.Add(time.Nanosecond)))
}

func TestOpenRejectsIncompleteRecords(t *testing.T) {
	c := newTestCache(t, nil)

	for _, plain := range []string{
		`not json`,
		`{}`,
		`{"data":"v"}`,
		`{"expires_at":"2030-01-01T00:00:00Z"}`,
	} {
		blob, err := c.cipher.Seal([]byte(plain))
		require.NoError(t, err)
		_, err = c.open(blob)
		assert.Error(t, err, plain)
	}
}
