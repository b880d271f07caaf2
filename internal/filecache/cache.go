// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package filecache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/apex/log"
)

// Config represents the parameters to configure Cache creation.
type Config struct {
	// The directory holding the entry files. It is created if it does not
	// exist. Empty means os.TempDir(). Keep it outside any publicly served
	// directory.
	Dir string

	// The encryption key. It must be exactly KeySize bytes. It is used as is
	// for every entry and never rotated.
	Key []byte

	// Use the unauthenticated AES-256-CBC layout instead of AES-256-GCM. Only
	// useful for reading and writing entries that must stay compatible with
	// that format.
	LegacyCBC bool

	// The longest time to wait for an entry lock. Zero waits forever.
	LockTimeout time.Duration

	// Used by Fetch and FetchJSON to retrieve resources that are not cached.
	Fetcher Fetcher

	// The clock. Nil means time.Now.
	Now func() time.Time
}

// Cache is a file-backed key/value cache rooted at one directory. It keeps no
// mutable state of its own, so a Cache is safe for concurrent use and any
// number of Cache values, in any number of processes, may share a directory.
type Cache struct {
	dir         string
	cipher      Cipher
	fetcher     Fetcher
	lockTimeout time.Duration
	now         func() time.Time
}

// New creates a cache in dir using the default configuration.
func New(dir string, key []byte) (*Cache, error) {
	return NewWithConfig(&Config{Dir: dir, Key: key})
}

// NewWithConfig creates a cache using the given configuration parameters.
// Configuration faults are reported here and never by the per-entry
// operations.
func NewWithConfig(conf *Config) (*Cache, error) {
	if conf.LockTimeout < 0 {
		return nil, fmt.Errorf("%w: negative LockTimeout", ErrInvalidConfig)
	}

	var (
		ciph Cipher
		err  error
	)
	if conf.LegacyCBC {
		ciph, err = NewCBCCipher(conf.Key)
	} else {
		ciph, err = NewGCMCipher(conf.Key)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	c := &Cache{
		dir:         conf.Dir,
		cipher:      ciph,
		fetcher:     conf.Fetcher,
		lockTimeout: conf.LockTimeout,
		now:         conf.Now,
	}
	if c.dir == "" {
		c.dir = os.TempDir()
	}
	if c.now == nil {
		c.now = time.Now
	}

	if err := os.MkdirAll(c.dir, 0o700); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, c.dir, err)
	}
	log.Debugf("cache directory: %s (%s)", c.dir, ciph.Name())

	return c, nil
}

// Dir returns the root directory of the cache.
func (c *Cache) Dir() string { return c.dir }

// Path returns the entry file path that key maps to. It returns "" for an
// invalid key.
func (c *Cache) Path(key string) string {
	name := NormalizeKey(key)
	if name == "" {
		return ""
	}
	return c.entryPath(name)
}

func (c *Cache) entryPath(name string) string {
	return filepath.Join(c.dir, name+fileExt)
}

func (c *Cache) lockPath(name string) string {
	return filepath.Join(c.dir, name+lockExt)
}

// Set stores value under key for ttl. The value is marshaled to JSON and must
// not be falsy (see ErrInvalidData). An existing entry for the key is
// replaced atomically; on failure the previous entry, if any, is left intact.
func (c *Cache) Set(key string, value any, ttl time.Duration) error {
	name := NormalizeKey(key)
	if name == "" {
		return ErrInvalidKey
	}

	data, err := encodeValue(value)
	if err != nil {
		return err
	}

	blob, err := c.seal(record{Data: data, ExpiresAt: c.now().Add(ttl)})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}

	unlock, err := c.lockEntry(name, true)
	if err != nil {
		return fmt.Errorf("%w: lock %s: %w", ErrIO, name, err)
	}
	defer unlock()

	if err := c.writeEntry(name, blob); err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}

	log.WithFields(log.Fields{"key": name, "ttl": ttl, "size": len(blob)}).Debug("cache write")
	return nil
}

// writeEntry writes blob to a temporary file next to the entry, syncs it and
// renames it into place. The caller holds the exclusive lock.
func (c *Cache) writeEntry(name string, blob []byte) error {
	tmp, err := os.CreateTemp(c.dir, name+fileExt+".*"+tmpExt)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	fail := func(err error) error {
		_ = tmp.Close()
		if rmErr := os.Remove(tmpPath); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
			log.WithError(rmErr).Warnf("failed to remove temp file %s", tmpPath)
		}
		return err
	}

	if _, err := tmp.Write(blob); err != nil {
		return fail(fmt.Errorf("failed to write %s: %w", tmpPath, err))
	}
	if err := tmp.Sync(); err != nil {
		return fail(fmt.Errorf("failed to sync %s: %w", tmpPath, err))
	}
	if err := tmp.Close(); err != nil {
		return fail(fmt.Errorf("failed to close %s: %w", tmpPath, err))
	}
	if err := os.Rename(tmpPath, c.entryPath(name)); err != nil {
		return fail(fmt.Errorf("failed to rename %s: %w", tmpPath, err))
	}
	return nil
}

// GetRaw returns the JSON form of the value stored under key. Every outcome
// that leaves the caller without a value, other than an invalid key, is an
// error wrapping ErrMiss: ErrNotFound, ErrExpired or ErrCorrupt. An expired
// entry is removed before GetRaw returns.
func (c *Cache) GetRaw(key string) (json.RawMessage, error) {
	name := NormalizeKey(key)
	if name == "" {
		return nil, ErrInvalidKey
	}
	path := c.entryPath(name)

	// Don't leave a lock file behind for keys that were never stored.
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		log.WithField("key", name).Debug("cache miss")
		return nil, ErrNotFound
	}

	rec, err := c.readEntry(name, path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		log.WithField("key", name).Debug("cache miss")
		return nil, ErrNotFound
	case err != nil:
		log.WithError(err).WithField("key", name).Debug("cache entry unreadable")
		return nil, fmt.Errorf("%w: %s: %w", ErrCorrupt, name, err)
	}

	if rec.expired(c.now()) {
		c.expire(name, path)
		return nil, fmt.Errorf("%w: %s at %s", ErrExpired, name, rec.ExpiresAt.Format(time.RFC3339))
	}

	log.WithField("key", name).Debug("cache hit")
	return rec.Data, nil
}

// Get unmarshals the value stored under key into v. See GetRaw for the miss
// semantics. A value that does not fit v is reported as a plain decoding
// error, not a miss.
func (c *Cache) Get(key string, v any) error {
	data, err := c.GetRaw(key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return nil
}

// readEntry reads and decrypts the entry under the shared lock.
func (c *Cache) readEntry(name, path string) (*record, error) {
	unlock, err := c.lockEntry(name, false)
	if err != nil {
		return nil, err
	}
	blob, err := os.ReadFile(path)
	unlock()
	if err != nil {
		return nil, err
	}
	return c.open(blob)
}

// expire removes an entry found to be expired. It re-checks the entry under
// the exclusive lock so that a concurrent Set is never thrown away.
func (c *Cache) expire(name, path string) {
	unlock, err := c.lockEntry(name, true)
	if err != nil {
		log.WithError(err).WithField("key", name).Warn("failed to lock expired entry")
		return
	}
	defer unlock()

	blob, err := os.ReadFile(path)
	if err != nil {
		return
	}
	if rec, err := c.open(blob); err == nil && !rec.expired(c.now()) {
		return
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.WithError(err).WithField("key", name).Warn("failed to remove expired entry")
		return
	}
	log.WithField("key", name).Debug("removed expired entry")
}

// Delete removes the entry for key regardless of its expiry. Deleting a key
// that is not cached is not an error.
func (c *Cache) Delete(key string) error {
	name := NormalizeKey(key)
	if name == "" {
		return ErrInvalidKey
	}
	return c.deleteEntry(name)
}

func (c *Cache) deleteEntry(name string) error {
	path := c.entryPath(name)
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	unlock, err := c.lockEntry(name, true)
	if err != nil {
		return fmt.Errorf("%w: lock %s: %w", ErrIO, name, err)
	}
	defer unlock()

	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	log.WithField("key", name).Debug("cache delete")
	return nil
}
