// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package filecache

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/tidwall/gjson"
)

// record is the decrypted content of an entry file.
type record struct {
	Data      json.RawMessage `json:"data"`
	ExpiresAt time.Time       `json:"expires_at"`
}

// expired reports whether the record's expiry is strictly before now.
func (r *record) expired(now time.Time) bool {
	return r.ExpiresAt.Before(now)
}

// encodeValue marshals v and applies the falsy-value rule.
func encodeValue(v any) (json.RawMessage, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidData, err)
	}
	if isFalsy(data) {
		return nil, fmt.Errorf("%w: %s is empty or false", ErrInvalidData, data)
	}
	return data, nil
}

// isFalsyText reports whether a raw resource body is empty or "0".
func isFalsyText(body []byte) bool {
	return len(body) == 0 || string(body) == "0"
}

// isFalsy reports whether the JSON document counts as an empty value: null,
// false, any numeric zero, "", "0", [] or {}. Such values are never stored.
func isFalsy(data []byte) bool {
	r := gjson.ParseBytes(data)
	switch r.Type {
	case gjson.Null:
		return true
	case gjson.False:
		return true
	case gjson.Number:
		return r.Num == 0
	case gjson.String:
		return r.Str == "" || r.Str == "0"
	case gjson.JSON:
		if r.IsArray() {
			return len(r.Array()) == 0
		}
		return len(r.Map()) == 0
	}
	return false
}

func (c *Cache) seal(rec record) ([]byte, error) {
	plain, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal entry: %w", err)
	}
	return c.cipher.Seal(plain)
}

func (c *Cache) open(blob []byte) (*record, error) {
	plain, err := c.cipher.Open(blob)
	if err != nil {
		return nil, err
	}
	var rec record
	if err := json.Unmarshal(plain, &rec); err != nil {
		return nil, fmt.Errorf("malformed entry: %w", err)
	}
	if len(rec.Data) == 0 || rec.ExpiresAt.IsZero() {
		return nil, errors.New("malformed entry: missing data or expires_at")
	}
	return &rec, nil
}
