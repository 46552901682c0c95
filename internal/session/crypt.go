// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"

	"golang.org/x/crypto/pbkdf2"

	"github.com/jeranaias/chatter-tui/internal/util"
)

// Token slots are obfuscated at rest with AES-256-GCM. The master key
// material is random, generated once per data directory, and stretched
// with PBKDF2-SHA-256. This keeps tokens out of casual file reads and
// backups; it is not a defense against an attacker who owns the
// machine, since the key file sits next to the data.

const (
	// encryptedPrefix marks a sealed value: ENC:base64(nonce|ciphertext).
	encryptedPrefix = "ENC:"

	// masterKeyFile holds the random master key material.
	masterKeyFile = ".key"

	keySize    = 32
	saltSize   = 16
	iterations = 600000
)

var (
	// ErrInvalidCiphertext indicates a sealed value that cannot be
	// decoded or fails authentication.
	ErrInvalidCiphertext = errors.New("invalid ciphertext")
)

// secretBox seals and opens individual slot values.
type secretBox struct {
	aead cipher.AEAD
}

// openSecretBox loads (or creates) the master key under dir and
// prepares the AEAD.
func openSecretBox(dir string) (*secretBox, error) {
	keyPath := filepath.Join(dir, masterKeyFile)

	material, err := os.ReadFile(keyPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
		material = make([]byte, keySize+saltSize)
		if _, err := rand.Read(material); err != nil {
			return nil, err
		}
		if err := util.AtomicWriteFile(keyPath, material, 0600); err != nil {
			return nil, err
		}
	}
	if len(material) < keySize+saltSize {
		return nil, ErrInvalidCiphertext
	}

	key := pbkdf2.Key(material[:keySize], material[keySize:keySize+saltSize], iterations, keySize, sha256.New)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &secretBox{aead: aead}, nil
}

// Seal encrypts a slot value. Empty values pass through unchanged.
func (b *secretBox) Seal(value string) string {
	if value == "" {
		return ""
	}

	nonce := make([]byte, b.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		// Falling back to plaintext keeps the session usable; the
		// value is still written 0600.
		return value
	}

	sealed := b.aead.Seal(nonce, nonce, []byte(value), nil)
	return encryptedPrefix + base64.StdEncoding.EncodeToString(sealed)
}

// Open decrypts a sealed slot value. Values without the ENC: prefix
// are returned as-is, so plaintext slots written by older builds keep
// working. An unreadable sealed value yields "" (treated as absent).
func (b *secretBox) Open(value string) string {
	if len(value) <= len(encryptedPrefix) || value[:len(encryptedPrefix)] != encryptedPrefix {
		return value
	}

	raw, err := base64.StdEncoding.DecodeString(value[len(encryptedPrefix):])
	if err != nil || len(raw) < b.aead.NonceSize() {
		return ""
	}

	nonce, ciphertext := raw[:b.aead.NonceSize()], raw[b.aead.NonceSize():]
	plain, err := b.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return ""
	}
	return string(plain)
}
