// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package keysource turns the key material given on the command line, in the
// environment or at a prompt into the 32-byte cache encryption key.
package keysource

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/apex/log"
	"golang.org/x/crypto/pbkdf2"
	"golang.org/x/term"

	"github.com/staranto/fcache/internal/filecache"
)

var (
	// ErrNoKey is returned when no key, passphrase or terminal is available.
	ErrNoKey = errors.New("no encryption key: set --key, --passphrase, FCACHE_KEY or FCACHE_PASSPHRASE")
	// ErrBadKey is returned for key strings that do not decode to KeySize
	// bytes.
	ErrBadKey = errors.New("malformed encryption key")
)

// Passphrases are stretched with a fixed salt so the same passphrase yields
// the same key in every process sharing a cache directory.
var salt = []byte("fcache-key-derivation-salt")

const iterations = 10000

// Options holds the raw key material. Key takes precedence over Passphrase,
// which takes precedence over Prompt.
type Options struct {
	Key        string
	Passphrase string
	// Prompt reads a passphrase interactively. Nil disables prompting.
	Prompt func() (string, error)
}

// Resolve returns the encryption key described by o.
func Resolve(o Options) ([]byte, error) {
	switch {
	case o.Key != "":
		log.Debug("using raw encryption key")
		return DecodeKey(o.Key)
	case o.Passphrase != "":
		log.Debug("deriving encryption key from passphrase")
		return Derive(o.Passphrase), nil
	case o.Prompt != nil:
		p, err := o.Prompt()
		if err != nil {
			return nil, fmt.Errorf("failed to read passphrase: %w", err)
		}
		if p == "" {
			return nil, ErrNoKey
		}
		return Derive(p), nil
	}
	return nil, ErrNoKey
}

// DecodeKey accepts exactly KeySize raw bytes, or a "hex:" or "base64:"
// prefixed encoding of them.
func DecodeKey(s string) ([]byte, error) {
	var (
		key []byte
		err error
	)
	switch {
	case strings.HasPrefix(s, "hex:"):
		key, err = hex.DecodeString(strings.TrimPrefix(s, "hex:"))
	case strings.HasPrefix(s, "base64:"):
		key, err = base64.StdEncoding.DecodeString(strings.TrimPrefix(s, "base64:"))
	default:
		key = []byte(s)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadKey, err)
	}
	if len(key) != filecache.KeySize {
		return nil, fmt.Errorf("%w: %d bytes, want %d", ErrBadKey, len(key), filecache.KeySize)
	}
	return key, nil
}

// Derive stretches passphrase into a KeySize key with PBKDF2-SHA256.
func Derive(passphrase string) []byte {
	return pbkdf2.Key([]byte(passphrase), salt, iterations, filecache.KeySize, sha256.New)
}

// TerminalPrompt returns a prompt reading a passphrase from in without echo,
// or nil when in is not a terminal.
func TerminalPrompt(in *os.File, out io.Writer) func() (string, error) {
	fd := int(in.Fd())
	if !term.IsTerminal(fd) {
		return nil
	}
	return func() (string, error) {
		fmt.Fprint(out, "Cache passphrase: ")
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(out)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
}
