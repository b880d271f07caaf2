// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package fetcher retrieves remote resources for filecache.Cache.Fetch. Mux
// picks a fetcher by URI scheme: http and https go through a retrying HTTP
// client, s3 through the AWS SDK, and file URIs or bare paths are read from
// the local filesystem.
package fetcher
