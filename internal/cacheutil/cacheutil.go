// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cacheutil

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/apex/log"

	"github.com/staranto/fcache/internal/config"
)

// Dir resolves the base cache directory.
// Precedence:
//  1. FCACHE_DIR, if set and non-empty
//  2. os.UserCacheDir()/fcache
//  3. os.TempDir()/fcache
func Dir() string {
	if c, ok := os.LookupEnv("FCACHE_DIR"); ok && c != "" {
		return c
	}
	if dir, err := os.UserCacheDir(); err == nil && dir != "" {
		return filepath.Join(dir, "fcache")
	}
	return filepath.Join(os.TempDir(), "fcache")
}

// Enabled returns true unless FCACHE_CACHE explicitly disables it
// ("0"/"false"). Without the env var, config key "cache" decides.
func Enabled() bool {
	if enabled, ok := os.LookupEnv("FCACHE_CACHE"); ok && enabled != "" {
		return enabled != "0" && enabled != "false"
	}
	enabled, err := config.GetBool("cache", true)
	if err != nil {
		log.WithError(err).Warn("ignoring config key cache")
		return true
	}
	return enabled
}

// EnsureDir creates dir, or Dir() when dir is empty, and returns the path.
// Cache directories are private to the user.
func EnsureDir(dir string) (string, error) {
	if dir == "" {
		dir = Dir()
	}
	if err := os.MkdirAll(dir, 0o700); err != nil { //nolint:mnd
		return dir, fmt.Errorf("failed to create cache directory: %w", err)
	}
	log.Debugf("cache dir: %s", dir)
	return dir, nil
}
