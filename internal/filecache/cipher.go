// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package filecache

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
)

// KeySize is the required encryption key length, in bytes, for AES-256.
const KeySize = 32

// Cipher encrypts entry records at rest. Seal prefixes the random IV or nonce
// to the ciphertext; Open splits it off again.
type Cipher interface {
	Seal(plaintext []byte) ([]byte, error)
	Open(blob []byte) ([]byte, error)
	Name() string
}

var errShortBlob = errors.New("ciphertext shorter than iv")

// NewGCMCipher returns the default AES-256-GCM cipher. Tampered or foreign
// blobs fail authentication in Open.
func NewGCMCipher(key []byte) (Cipher, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: got %d", ErrKeyLength, len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return &gcmCipher{aead: aead}, nil
}

type gcmCipher struct {
	aead cipher.AEAD
}

func (*gcmCipher) Name() string { return "aes-256-gcm" }

func (g *gcmCipher) Seal(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, g.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("failed to create nonce: %w", err)
	}
	return g.aead.Seal(nonce, nonce, plaintext, nil), nil
}

func (g *gcmCipher) Open(blob []byte) ([]byte, error) {
	n := g.aead.NonceSize()
	if len(blob) < n {
		return nil, errShortBlob
	}
	plaintext, err := g.aead.Open(nil, blob[:n], blob[n:], nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt: %w", err)
	}
	return plaintext, nil
}

// NewCBCCipher returns the legacy AES-256-CBC cipher with PKCS#7 padding and a
// 16-byte IV prefix, the layout produced by OpenSSL's aes-256-cbc in raw mode.
// It has no authentication tag: a foreign or damaged blob is only detected
// when its padding or the decoded record turns out to be invalid.
func NewCBCCipher(key []byte) (Cipher, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: got %d", ErrKeyLength, len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	return &cbcCipher{block: block}, nil
}

type cbcCipher struct {
	block cipher.Block
}

func (*cbcCipher) Name() string { return "aes-256-cbc" }

func (c *cbcCipher) Seal(plaintext []byte) ([]byte, error) {
	bs := c.block.BlockSize()
	padded := pkcs7Pad(plaintext, bs)

	out := make([]byte, bs+len(padded))
	iv := out[:bs]
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return nil, fmt.Errorf("failed to create iv: %w", err)
	}
	cipher.NewCBCEncrypter(c.block, iv).CryptBlocks(out[bs:], padded)
	return out, nil
}

func (c *cbcCipher) Open(blob []byte) ([]byte, error) {
	bs := c.block.BlockSize()
	if len(blob) < bs {
		return nil, errShortBlob
	}
	iv, ciphertext := blob[:bs], blob[bs:]
	if len(ciphertext) == 0 || len(ciphertext)%bs != 0 {
		return nil, errors.New("ciphertext is not a multiple of the block size")
	}
	plaintext := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(c.block, iv).CryptBlocks(plaintext, ciphertext)
	return pkcs7Unpad(plaintext, bs)
}

func pkcs7Pad(b []byte, bs int) []byte {
	n := bs - len(b)%bs
	return append(bytes.Clone(b), bytes.Repeat([]byte{byte(n)}, n)...)
}

func pkcs7Unpad(b []byte, bs int) ([]byte, error) {
	if len(b) == 0 {
		return nil, errors.New("empty plaintext")
	}
	n := int(b[len(b)-1])
	if n == 0 || n > bs || n > len(b) {
		return nil, errors.New("bad padding")
	}
	for _, p := range b[len(b)-n:] {
		if int(p) != n {
			return nil, errors.New("bad padding")
		}
	}
	return b[:len(b)-n], nil
}
