// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package keysource

import (
	"bytes"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var raw = bytes.Repeat([]byte{0xab}, 32)

func TestDecodeKey(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    []byte
		wantErr bool
	}{
		{name: "raw", in: "Z7w@L!r8&1Tgl*KcfD^ViB@xaHYE!sQ@", want: []byte("Z7w@L!r8&1Tgl*KcfD^ViB@xaHYE!sQ@")},
		{name: "hex", in: "hex:" + hex.EncodeToString(raw), want: raw},
		{name: "base64", in: "base64:" + base64.StdEncoding.EncodeToString(raw), want: raw},
		{name: "raw too short", in: "Fil3C@ch33ncryptionK3y", wantErr: true},
		{name: "hex too short", in: "hex:abcd", wantErr: true},
		{name: "bad hex", in: "hex:zz", wantErr: true},
		{name: "bad base64", in: "base64:!!!", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeKey(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrBadKey)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDerive(t *testing.T) {
	a := Derive("correct horse")
	assert.Len(t, a, 32)
	assert.Equal(t, a, Derive("correct horse"), "derivation is deterministic")
	assert.NotEqual(t, a, Derive("correct horse battery"))
}

func TestResolve(t *testing.T) {
	prompted := func(s string, err error) func() (string, error) {
		return func() (string, error) { return s, err }
	}

	tests := []struct {
		name    string
		opts    Options
		want    []byte
		wantErr error
	}{
		{name: "key wins", opts: Options{Key: "hex:" + hex.EncodeToString(raw), Passphrase: "p"}, want: raw},
		{name: "passphrase", opts: Options{Passphrase: "p", Prompt: prompted("q", nil)}, want: Derive("p")},
		{name: "prompt", opts: Options{Prompt: prompted("q", nil)}, want: Derive("q")},
		{name: "empty prompt", opts: Options{Prompt: prompted("", nil)}, wantErr: ErrNoKey},
		{name: "prompt error", opts: Options{Prompt: prompted("", errors.New("eof"))}, wantErr: nil},
		{name: "nothing", opts: Options{}, wantErr: ErrNoKey},
		{name: "bad key", opts: Options{Key: "short"}, wantErr: ErrBadKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.opts)
			if tt.want == nil {
				require.Error(t, err)
				if tt.wantErr != nil {
					assert.ErrorIs(t, err, tt.wantErr)
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTerminalPrompt_NotATerminal(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "stdin")
	require.NoError(t, err)
	defer f.Close()

	assert.Nil(t, TerminalPrompt(f, os.Stderr))
}
