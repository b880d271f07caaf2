// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package filecache

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/apex/log"
)

// staleTempAge is how old a leftover temp file must be before Purge removes
// it. Live writers hold theirs for milliseconds.
const staleTempAge = 10 * time.Minute

// EntryState classifies an entry file found in the cache directory.
type EntryState string

// Entry states.
const (
	StateValid   EntryState = "valid"
	StateExpired EntryState = "expired"
	StateCorrupt EntryState = "corrupt"
)

// EntryInfo describes one entry file. Name is the normalized key; the raw key
// cannot be recovered from it.
type EntryInfo struct {
	Name      string     `json:"name" yaml:"name"`
	Path      string     `json:"path" yaml:"path"`
	Size      int64      `json:"size" yaml:"size"`
	ModTime   time.Time  `json:"modified" yaml:"modified"`
	ExpiresAt time.Time  `json:"expires_at,omitempty" yaml:"expires_at,omitempty"`
	State     EntryState `json:"state" yaml:"state"`
}

// Stats summarizes the cache directory.
type Stats struct {
	Entries   int   `json:"entries" yaml:"entries"`
	Valid     int   `json:"valid" yaml:"valid"`
	Expired   int   `json:"expired" yaml:"expired"`
	Corrupt   int   `json:"corrupt" yaml:"corrupt"`
	TotalSize int64 `json:"total_size" yaml:"total_size"`
	TempFiles int   `json:"temp_files" yaml:"temp_files"`
}

// PurgeReport counts what Purge removed.
type PurgeReport struct {
	Expired   int `json:"expired" yaml:"expired"`
	Corrupt   int `json:"corrupt" yaml:"corrupt"`
	TempFiles int `json:"temp_files" yaml:"temp_files"`
}

// Total returns the number of files removed.
func (r PurgeReport) Total() int { return r.Expired + r.Corrupt + r.TempFiles }

// List returns every entry in the cache directory sorted by name. Each entry
// is decrypted under its shared lock to learn its expiry; entries that cannot
// be decrypted are reported as StateCorrupt. List never modifies the cache.
func (c *Cache) List() ([]EntryInfo, error) {
	names, _, err := c.scan()
	if err != nil {
		return nil, err
	}

	infos := make([]EntryInfo, 0, len(names))
	now := c.now()
	for _, name := range names {
		path := c.entryPath(name)
		fi, err := os.Stat(path)
		if err != nil {
			continue // removed since the scan
		}
		info := EntryInfo{
			Name:    name,
			Path:    path,
			Size:    fi.Size(),
			ModTime: fi.ModTime(),
			State:   StateValid,
		}
		rec, err := c.readEntry(name, path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			continue
		case err != nil:
			info.State = StateCorrupt
		default:
			info.ExpiresAt = rec.ExpiresAt
			if rec.expired(now) {
				info.State = StateExpired
			}
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// Stats counts entries by state and sums their sizes.
func (c *Cache) Stats() (Stats, error) {
	infos, err := c.List()
	if err != nil {
		return Stats{}, err
	}
	_, temps, err := c.scan()
	if err != nil {
		return Stats{}, err
	}

	s := Stats{Entries: len(infos), TempFiles: len(temps)}
	for _, info := range infos {
		s.TotalSize += info.Size
		switch info.State {
		case StateValid:
			s.Valid++
		case StateExpired:
			s.Expired++
		case StateCorrupt:
			s.Corrupt++
		}
	}
	return s, nil
}

// Purge removes expired and undecryptable entries and temp files abandoned by
// crashed writers. It is never run automatically; callers that need the
// directory bounded run it themselves.
func (c *Cache) Purge() (PurgeReport, error) {
	var report PurgeReport

	names, temps, err := c.scan()
	if err != nil {
		return report, err
	}

	for _, name := range names {
		state, err := c.purgeEntry(name)
		if err != nil {
			log.WithError(err).WithField("key", name).Warn("failed to purge entry")
			continue
		}
		switch state {
		case StateExpired:
			report.Expired++
		case StateCorrupt:
			report.Corrupt++
		}
	}

	now := c.now()
	for _, tmp := range temps {
		path := filepath.Join(c.dir, tmp)
		fi, err := os.Stat(path)
		if err != nil || now.Sub(fi.ModTime()) < staleTempAge {
			continue
		}
		if err := os.Remove(path); err != nil {
			log.WithError(err).Warnf("failed to remove temp file %s", path)
			continue
		}
		report.TempFiles++
	}

	log.Debugf("purged %d expired, %d corrupt, %d temp files", report.Expired, report.Corrupt, report.TempFiles)
	return report, nil
}

// purgeEntry removes the entry if it is expired or unreadable and reports the
// state it was removed for, or StateValid if it was kept.
func (c *Cache) purgeEntry(name string) (EntryState, error) {
	unlock, err := c.lockEntry(name, true)
	if err != nil {
		return "", err
	}
	defer unlock()

	path := c.entryPath(name)
	blob, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return StateValid, nil
	}

	state := StateCorrupt
	if err == nil {
		if rec, openErr := c.open(blob); openErr == nil {
			if !rec.expired(c.now()) {
				return StateValid, nil
			}
			state = StateExpired
		}
	}

	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return "", err
	}
	return state, nil
}

// Clear removes every entry, expired or not, and returns how many were
// removed.
func (c *Cache) Clear() (int, error) {
	names, _, err := c.scan()
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, name := range names {
		if err := c.deleteEntry(name); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

// scan lists the normalized names of all entry files and the base names of
// all temp files in the cache directory. The directory listing is the only
// index the cache has.
func (c *Cache) scan() (names, temps []string, err error) {
	dirEntries, err := os.ReadDir(c.dir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read cache directory: %w", err)
	}

	for _, d := range dirEntries {
		if d.IsDir() {
			continue
		}
		fname := d.Name()
		switch {
		case strings.HasSuffix(fname, tmpExt) && strings.Contains(fname, fileExt+"."):
			temps = append(temps, fname)
		case strings.HasSuffix(fname, fileExt):
			names = append(names, strings.TrimSuffix(fname, fileExt))
		}
	}
	sort.Strings(names)
	return names, temps, nil
}
