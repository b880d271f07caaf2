// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package filecache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/apex/log"
	"github.com/gofrs/flock"
)

// lockRetryDelay is the polling interval used while waiting for a lock with a
// deadline.
const lockRetryDelay = 10 * time.Millisecond

// lockEntry takes the advisory lock for the normalized key name, exclusive for
// writers and shared for readers, and returns the function that releases it.
//
// The lock lives on a sidecar file rather than the entry itself because
// writers replace the entry file by rename. Sidecar files are never removed:
// unlinking a lock file another process has open would let two writers hold
// "the" lock at once.
func (c *Cache) lockEntry(name string, exclusive bool) (func(), error) {
	fl := flock.New(c.lockPath(name), flock.SetPermissions(0o600))

	var err error
	if c.lockTimeout <= 0 {
		if exclusive {
			err = fl.Lock()
		} else {
			err = fl.RLock()
		}
	} else {
		err = c.lockWithDeadline(fl, exclusive)
	}
	if err != nil {
		_ = fl.Close()
		return nil, err
	}

	return func() {
		if err := fl.Unlock(); err != nil {
			log.WithError(err).WithField("key", name).Warn("failed to release lock")
		}
		_ = fl.Close()
	}, nil
}

func (c *Cache) lockWithDeadline(fl *flock.Flock, exclusive bool) error {
	ctx, cancel := context.WithTimeout(context.Background(), c.lockTimeout)
	defer cancel()

	var (
		ok  bool
		err error
	)
	if exclusive {
		ok, err = fl.TryLockContext(ctx, lockRetryDelay)
	} else {
		ok, err = fl.TryRLockContext(ctx, lockRetryDelay)
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w after %v", ErrLockTimeout, c.lockTimeout)
	case err != nil:
		return err
	case !ok:
		return fmt.Errorf("%w after %v", ErrLockTimeout, c.lockTimeout)
	}
	return nil
}
