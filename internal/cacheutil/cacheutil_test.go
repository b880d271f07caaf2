// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cacheutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staranto/fcache/internal/config"
)

// useConfig points the config loader at a file holding body.
func useConfig(t *testing.T, body string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fcache.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	t.Setenv("FCACHE_CFG", path)
	config.Config = config.Type{}
	t.Cleanup(func() { config.Config = config.Type{} })
}

func TestDir(t *testing.T) {
	t.Setenv("FCACHE_DIR", "/srv/fcache")
	assert.Equal(t, "/srv/fcache", Dir())

	t.Setenv("FCACHE_DIR", "")
	t.Setenv("XDG_CACHE_HOME", "/home/someone/.cache")
	if base, err := os.UserCacheDir(); err == nil {
		assert.Equal(t, filepath.Join(base, "fcache"), Dir())
	}
}

func TestEnabled(t *testing.T) {
	useConfig(t, "dir: /tmp\n")

	tests := []struct {
		value string
		want  bool
	}{
		{"", true},
		{"1", true},
		{"true", true},
		{"0", false},
		{"false", false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv("FCACHE_CACHE", tt.value)
			assert.Equal(t, tt.want, Enabled())
		})
	}
}

func TestEnabled_FromConfig(t *testing.T) {
	tests := []struct {
		name string
		body string
		env  string
		want bool
	}{
		{"absent", "dir: /tmp\n", "", true},
		{"false", "cache: false\n", "", false},
		{"quoted false", "cache: \"false\"\n", "", false},
		{"true", "cache: true\n", "", true},
		{"not a bool", "cache: sometimes\n", "", true},
		{"env wins", "cache: false\n", "1", true},
		{"env disables", "cache: true\n", "0", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			useConfig(t, tt.body)
			t.Setenv("FCACHE_CACHE", tt.env)
			assert.Equal(t, tt.want, Enabled())
		})
	}
}

func TestEnsureDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	got, err := EnsureDir(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, got)
	assert.DirExists(t, dir)

	t.Setenv("FCACHE_DIR", filepath.Join(t.TempDir(), "env"))
	got, err = EnsureDir("")
	require.NoError(t, err)
	assert.Equal(t, os.Getenv("FCACHE_DIR"), got)
	assert.DirExists(t, got)

	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0o600))
	_, err = EnsureDir(filepath.Join(file, "sub"))
	assert.Error(t, err)
}
