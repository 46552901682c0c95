// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jeranaias/chatter-tui/internal/model"
)

func newTestStore(t *testing.T, dir string) *Store {
	t.Helper()
	s, err := NewStoreWithDir(dir)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	return s
}

func TestStoreStartsAnonymous(t *testing.T) {
	s := newTestStore(t, t.TempDir())

	if s.HasToken() {
		t.Error("fresh store must be anonymous")
	}
	if s.AccessToken() != "" {
		t.Error("fresh store must have empty token")
	}
	if _, okUser := s.User(); okUser {
		t.Error("fresh store must have no user")
	}
}

func TestStorePersistsAcrossInstances(t *testing.T) {
	dir := t.TempDir()
	creds := model.Credentials{
		AccessToken: "tok123",
		User:        model.User{ID: "u1", Email: "a@b.c", Username: "ab"},
	}

	s1 := newTestStore(t, dir)
	if err := s1.SetCredentials(creds); err != nil {
		t.Fatalf("failed to persist credentials: %v", err)
	}

	// A second instance over the same directory sees the session.
	s2 := newTestStore(t, dir)
	if s2.AccessToken() != "tok123" {
		t.Errorf("expected tok123, got %q", s2.AccessToken())
	}
	user, okUser := s2.User()
	if !okUser || user.Email != "a@b.c" {
		t.Errorf("expected hydrated user, got %+v ok=%v", user, okUser)
	}
}

func TestStoreTokenEncryptedAtRest(t *testing.T) {
	dir := t.TempDir()
	s := newTestStore(t, dir)

	if err := s.SetCredentials(model.Credentials{AccessToken: "supersecret"}); err != nil {
		t.Fatalf("failed to persist credentials: %v", err)
	}

	raw, err := os.ReadFile(filepath.Join(dir, "access_token"))
	if err != nil {
		t.Fatalf("token slot missing: %v", err)
	}
	if strings.Contains(string(raw), "supersecret") {
		t.Error("token stored in plaintext")
	}
	if !strings.HasPrefix(string(raw), "ENC:") {
		t.Errorf("token slot missing ENC: prefix: %q", raw)
	}
}

func TestStorePlaintextSlotStillReadable(t *testing.T) {
	dir := t.TempDir()
	// A slot written before encryption existed.
	if err := os.MkdirAll(dir, 0700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "access_token"), []byte("oldtoken"), 0600); err != nil {
		t.Fatal(err)
	}

	s := newTestStore(t, dir)
	if s.AccessToken() != "oldtoken" {
		t.Errorf("expected oldtoken, got %q", s.AccessToken())
	}
}

func TestStoreClearKeepsSettings(t *testing.T) {
	dir := t.TempDir()
	s := newTestStore(t, dir)

	if err := s.SetCredentials(model.Credentials{AccessToken: "tok", User: model.User{ID: "u1"}}); err != nil {
		t.Fatal(err)
	}
	custom := model.Settings{Notifications: false, VoiceMode: true, Theme: model.ThemeLight, Language: "fr"}
	if err := s.SetSettings(custom); err != nil {
		t.Fatal(err)
	}

	if err := s.Clear(); err != nil {
		t.Fatalf("clear failed: %v", err)
	}

	if s.HasToken() {
		t.Error("token must be gone after clear")
	}
	if _, okUser := s.User(); okUser {
		t.Error("user must be gone after clear")
	}
	if got := s.Settings(); got != custom {
		t.Errorf("settings must survive clear, got %+v", got)
	}

	// And after a restart too.
	s2 := newTestStore(t, dir)
	if s2.HasToken() {
		t.Error("token must stay gone after restart")
	}
	if got := s2.Settings(); got != custom {
		t.Errorf("settings must survive restart, got %+v", got)
	}
}

func TestStoreDefaultSettings(t *testing.T) {
	s := newTestStore(t, t.TempDir())

	got := s.Settings()
	want := model.DefaultSettings()
	if got != want {
		t.Errorf("expected defaults %+v, got %+v", want, got)
	}
}

func TestStoreSettingsPatchRoundTrip(t *testing.T) {
	s := newTestStore(t, t.TempDir())

	theme := model.ThemeLight
	patch := model.SettingsPatch{Theme: &theme}
	merged := patch.Apply(s.Settings())
	if err := s.SetSettings(merged); err != nil {
		t.Fatal(err)
	}

	got := s.Settings()
	if got.Theme != model.ThemeLight {
		t.Errorf("expected light theme, got %q", got.Theme)
	}
	// Untouched fields keep their defaults.
	if !got.Notifications || got.VoiceMode || got.Language != "en" {
		t.Errorf("patch must not touch other fields: %+v", got)
	}
}

func TestTokenMarkerPresent(t *testing.T) {
	dir := t.TempDir()
	if TokenMarkerPresent(dir) {
		t.Error("no marker expected in empty dir")
	}

	s := newTestStore(t, dir)
	if err := s.SetCredentials(model.Credentials{AccessToken: "tok"}); err != nil {
		t.Fatal(err)
	}
	if !TokenMarkerPresent(dir) {
		t.Error("marker expected after login")
	}

	if err := s.Clear(); err != nil {
		t.Fatal(err)
	}
	if TokenMarkerPresent(dir) {
		t.Error("marker must be gone after clear")
	}
}

func TestSecretBoxRoundTrip(t *testing.T) {
	box, err := openSecretBox(t.TempDir())
	if err != nil {
		t.Fatalf("failed to open secret box: %v", err)
	}

	sealed := box.Seal("hello world")
	if sealed == "hello world" {
		t.Error("sealed value must differ from plaintext")
	}
	if got := box.Open(sealed); got != "hello world" {
		t.Errorf("round trip failed, got %q", got)
	}

	if box.Seal("") != "" {
		t.Error("empty value must pass through")
	}
	// Flip ciphertext bytes while keeping the prefix: authentication
	// must fail and the value read as absent.
	tampered := sealed[:len(sealed)-8] + "AAAAAAA="
	if got := box.Open(tampered); got != "" {
		t.Errorf("tampered value must not decrypt, got %q", got)
	}

	// Plaintext passthrough for slots written before encryption.
	if got := box.Open("legacy-token"); got != "legacy-token" {
		t.Errorf("non-prefixed value must pass through, got %q", got)
	}
}
