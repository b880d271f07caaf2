// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package filecache is a local, file-backed key/value cache. Each key is
// stored in its own encrypted file under a single root directory, together
// with an absolute expiry time. Expiry is checked lazily when an entry is read;
// nothing runs in the background.
//
// Keys are normalized into file names by trimming whitespace and replacing
// '.' with '_' and '/', ':' and '\'' with '-'. The mapping is lossy, so
// distinct keys can land on the same file ("a/b", "a:b" and "a'b" are all
// "a-b"; "a.b" and "a_b" are both "a_b"). The last Set wins. Case is
// preserved, but on a case-insensitive file system keys that differ only in
// case share one file.
//
// Concurrent access from goroutines or processes sharing a root directory is
// coordinated with advisory locks on a per-key sidecar file. Writers replace
// the entry atomically by renaming a fully written temporary file.
//
// Sample usage:
//
//	c, err := filecache.New("/var/cache/myapp", key)
//	if err != nil {
//		return err
//	}
//	var clients []Client
//	if err := c.Get("client_list", &clients); filecache.IsMiss(err) {
//		clients = loadClients()
//		_ = c.Set("client_list", clients, time.Hour)
//	}
package filecache
