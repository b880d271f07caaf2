// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package filecache

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is returned by New when the configuration cannot produce a
// working cache.
var ErrInvalidConfig = errors.New("invalid config")

// ErrKeyLength is returned when the encryption key is not KeySize bytes.
var ErrKeyLength = fmt.Errorf("encryption key must be %d bytes", KeySize)

// ErrInvalidKey is returned for a key that is empty after normalization.
var ErrInvalidKey = errors.New("invalid key")

// ErrInvalidData is returned by Set for values whose JSON form is falsy: null,
// false, numeric zero, "", "0", [] or {}.
var ErrInvalidData = errors.New("invalid data")

// ErrMiss is wrapped by every error that means "no usable cached value".
var ErrMiss = errors.New("cache miss")

// Miss variants. All of them wrap ErrMiss.
var (
	ErrNotFound = fmt.Errorf("%w: not found", ErrMiss)
	ErrExpired  = fmt.Errorf("%w: data expired", ErrMiss)
	ErrCorrupt  = fmt.Errorf("%w: unreadable entry", ErrMiss)
)

// ErrIO is wrapped by write-side failures: lock acquisition, temp file writes,
// renames and removals.
var ErrIO = errors.New("cache i/o failed")

// ErrLockTimeout is returned when Config.LockTimeout elapses before a lock is
// granted.
var ErrLockTimeout = errors.New("timed out waiting for lock")

// ErrFetch is wrapped by Fetch when the remote resource could not be fetched.
var ErrFetch = errors.New("fetch failed")

// IsMiss reports whether err means the cache had no usable value, whether it
// was never stored, has expired or could not be decoded.
func IsMiss(err error) bool {
	return errors.Is(err, ErrMiss)
}
