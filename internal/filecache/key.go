// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package filecache

import (
	"crypto/md5" //nolint:gosec
	"encoding/hex"
	"strings"
)

const (
	fileExt = ".cache"
	lockExt = ".lock"
	tmpExt  = ".tmp"
)

// keyReplacer maps characters that are unsafe or meaningful in paths. Note the
// collisions: '/', ':' and '\'' all become '-', and '.' becomes '_' which is
// indistinguishable from a literal '_'.
var keyReplacer = strings.NewReplacer(
	".", "_",
	"/", "-",
	":", "-",
	"'", "-",
)

// NormalizeKey returns the file-system safe token for key. It is
// deterministic and lossy. An empty result means the key is invalid.
func NormalizeKey(key string) string {
	return keyReplacer.Replace(strings.TrimSpace(key))
}

// URIKey returns the cache key used by Fetch for uri, the hex MD5 digest of
// the URI.
func URIKey(uri string) string {
	sum := md5.Sum([]byte(uri)) //nolint:gosec
	return hex.EncodeToString(sum[:])
}
