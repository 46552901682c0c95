// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session owns the client-side authentication state: the
// persisted token and user slots, and the gate that drives login,
// logout and profile refresh against the API.
package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/jeranaias/chatter-tui/internal/model"
	"github.com/jeranaias/chatter-tui/internal/util"
)

// =============================================================================
// STORAGE SLOTS
// =============================================================================

// The store persists exactly four slots, mirroring the key-value
// namespace of the original client. Each slot is one file under the
// data directory.
const (
	slotAccessToken  = "access_token"
	slotRefreshToken = "refresh_token"
	slotUser         = "user.json"
	slotSettings     = "settings.json"
)

// =============================================================================
// STORE
// =============================================================================

// Store is the persisted key-value state backing the session.
//
// Every slot is hydrated into memory at construction time, so reads
// (AccessToken, User, Settings) are pure in-memory lookups and never
// touch the disk. Writes update memory first, then persist atomically
// with 0600 permissions.
//
// The access token may be kept encrypted at rest (see crypt.go); the
// in-memory copy is always plaintext.
type Store struct {
	mu  sync.Mutex
	dir string
	box *secretBox

	// Hydrated slots
	accessToken  string
	refreshToken string
	user         *model.User
	settings     *model.Settings
}

// DataDir returns the default application data directory (~/.chatter).
func DataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".chatter"), nil
}

// NewStore creates a store rooted at the default data directory.
func NewStore() (*Store, error) {
	dir, err := DataDir()
	if err != nil {
		return nil, err
	}
	return NewStoreWithDir(dir)
}

// NewStoreWithDir creates a store rooted at dir, hydrating any
// previously persisted slots.
func NewStoreWithDir(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, err
	}

	box, err := openSecretBox(dir)
	if err != nil {
		return nil, err
	}

	s := &Store{dir: dir, box: box}
	s.hydrate()
	return s, nil
}

// hydrate loads the persisted slots into memory. Missing or corrupted
// slots are treated as absent; startup never fails on bad cached data.
func (s *Store) hydrate() {
	if data, err := os.ReadFile(s.slotPath(slotAccessToken)); err == nil {
		s.accessToken = s.box.Open(string(data))
	}
	if data, err := os.ReadFile(s.slotPath(slotRefreshToken)); err == nil {
		s.refreshToken = s.box.Open(string(data))
	}
	if data, err := os.ReadFile(s.slotPath(slotUser)); err == nil {
		var u model.User
		if json.Unmarshal(data, &u) == nil {
			s.user = &u
		}
	}
	if data, err := os.ReadFile(s.slotPath(slotSettings)); err == nil {
		var st model.Settings
		if json.Unmarshal(data, &st) == nil {
			s.settings = &st
		}
	}
}

// slotPath returns the file backing a slot.
func (s *Store) slotPath(slot string) string {
	return filepath.Join(s.dir, slot)
}

// Dir returns the store's data directory.
func (s *Store) Dir() string {
	return s.dir
}

// =============================================================================
// TOKEN SLOTS
// =============================================================================

// AccessToken returns the current bearer token, or "" when anonymous.
// Implements api.TokenSource. No I/O.
func (s *Store) AccessToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accessToken
}

// HasToken reports whether a token is persisted. No I/O.
func (s *Store) HasToken() bool {
	return s.AccessToken() != ""
}

// SetCredentials persists the token slots and the user record from a
// successful login or registration.
func (s *Store) SetCredentials(creds model.Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.accessToken = creds.AccessToken
	s.refreshToken = creds.RefreshToken
	user := creds.User
	s.user = &user

	if err := util.AtomicWriteFile(s.slotPath(slotAccessToken), []byte(s.box.Seal(creds.AccessToken)), 0600); err != nil {
		return err
	}
	if creds.RefreshToken != "" {
		if err := util.AtomicWriteFile(s.slotPath(slotRefreshToken), []byte(s.box.Seal(creds.RefreshToken)), 0600); err != nil {
			return err
		}
	}
	return s.writeUserLocked()
}

// =============================================================================
// USER SLOT
// =============================================================================

// User returns the cached user record, or false when none is stored.
// No I/O.
func (s *Store) User() (model.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return model.User{}, false
	}
	return *s.user, true
}

// SetUser replaces the cached user record wholesale.
func (s *Store) SetUser(u model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = &u
	return s.writeUserLocked()
}

func (s *Store) writeUserLocked() error {
	data, err := json.MarshalIndent(s.user, "", "  ")
	if err != nil {
		return err
	}
	return util.AtomicWriteFile(s.slotPath(slotUser), data, 0600)
}

// =============================================================================
// SETTINGS SLOT
// =============================================================================

// Settings returns the persisted settings, or the defaults when the
// user has never saved any. No I/O.
func (s *Store) Settings() model.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.settings == nil {
		return model.DefaultSettings()
	}
	return *s.settings
}

// SetSettings persists the settings slot. Settings survive logout.
func (s *Store) SetSettings(st model.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = &st

	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	return util.AtomicWriteFile(s.slotPath(slotSettings), data, 0600)
}

// =============================================================================
// TEARDOWN
// =============================================================================

// Clear removes the token, refresh token and user slots, in memory and
// on disk. The settings slot is intentionally kept.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.accessToken = ""
	s.refreshToken = ""
	s.user = nil

	var firstErr error
	for _, slot := range []string{slotAccessToken, slotRefreshToken, slotUser} {
		if err := os.Remove(s.slotPath(slot)); err != nil && !os.IsNotExist(err) && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// =============================================================================
// TOKEN MARKER
// =============================================================================

// TokenMarkerPresent reports whether a token slot exists on disk under
// dir. The route gate uses this presence-only check before any
// in-memory session state is constructed; it does not validate the
// token in any way.
func TokenMarkerPresent(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, slotAccessToken))
	return err == nil && !info.IsDir() && info.Size() > 0
}
