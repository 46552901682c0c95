// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model defines the wire types shared between the API client
// and the UI layer.
//
// Field names and JSON tags match the chatbot backend's response
// schemas exactly; these types are deserialized straight off the wire
// and are treated as immutable snapshots once received.
package model

import "time"

// =============================================================================
// USER
// =============================================================================

// User is the server's record of an account.
//
// A User is owned by the active session and replaced wholesale on every
// profile refresh; callers must never mutate individual fields.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	FullName  string    `json:"full_name,omitempty"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	IsPremium bool      `json:"is_premium"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DisplayName returns the name to show in the UI, preferring the full
// name over the username.
func (u User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Username
}

// =============================================================================
// CREDENTIALS
// =============================================================================

// Credentials is the payload returned by the login and register
// endpoints: a bearer token plus the authenticated user.
//
// RefreshToken is persisted when present but no refresh flow consumes
// it; the server does not currently issue one on these endpoints.
type Credentials struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	User         User   `json:"user"`
}

// =============================================================================
// CHAT
// =============================================================================

// Sender values for ChatMessage.
const (
	SenderUser = "user"
	SenderBot  = "bot"
)

// ChatSession is one conversation thread belonging to a user.
type ChatSession struct {
	ID                 string    `json:"id"`
	UserID             string    `json:"user_id"`
	Title              string    `json:"title"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
	MessageCount       int       `json:"message_count"`
	LastMessagePreview string    `json:"last_message_preview,omitempty"`
}

// ChatMessage is a single message within a session. Sender is either
// SenderUser or SenderBot.
type ChatMessage struct {
	ID        string            `json:"id"`
	SessionID string            `json:"session_id"`
	Content   string            `json:"content"`
	Sender    string            `json:"sender"`
	Timestamp time.Time         `json:"timestamp"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// IsFromBot reports whether the message was produced by the assistant.
func (m ChatMessage) IsFromBot() bool {
	return m.Sender == SenderBot
}

// =============================================================================
// SETTINGS
// =============================================================================

// Theme values for Settings.Theme.
const (
	ThemeLight  = "light"
	ThemeDark   = "dark"
	ThemeSystem = "system"
)

// Settings holds the user-tunable client preferences. They are cached
// locally and survive logout.
type Settings struct {
	Notifications bool   `json:"notifications"`
	VoiceMode     bool   `json:"voice_mode"`
	Theme         string `json:"theme"`
	Language      string `json:"language"`
}

// DefaultSettings returns the settings used before the user has saved
// any preferences.
func DefaultSettings() Settings {
	return Settings{
		Notifications: true,
		VoiceMode:     false,
		Theme:         ThemeDark,
		Language:      "en",
	}
}

// SettingsPatch is a partial settings update; nil fields are left
// unchanged by Apply.
type SettingsPatch struct {
	Notifications *bool
	VoiceMode     *bool
	Theme         *string
	Language      *string
}

// Apply merges the patch into s and returns the result.
func (p SettingsPatch) Apply(s Settings) Settings {
	if p.Notifications != nil {
		s.Notifications = *p.Notifications
	}
	if p.VoiceMode != nil {
		s.VoiceMode = *p.VoiceMode
	}
	if p.Theme != nil {
		s.Theme = *p.Theme
	}
	if p.Language != nil {
		s.Language = *p.Language
	}
	return s
}
