// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"net/http"

	"github.com/jeranaias/chatter-tui/internal/model"
)

// =============================================================================
// REQUEST PAYLOADS
// =============================================================================

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Username string `json:"username"`
}

type createSessionRequest struct {
	Title string `json:"title,omitempty"`
}

type sendMessageRequest struct {
	SessionID string `json:"session_id"`
	Content   string `json:"content"`
}

// MessageReply is the generic acknowledgement body some endpoints
// return, e.g. logout.
type MessageReply struct {
	Message string `json:"message"`
}

// =============================================================================
// AUTH ENDPOINTS
// =============================================================================

// Login exchanges credentials for a bearer token and user record.
func (c *Client) Login(ctx context.Context, email, password string) Envelope[model.Credentials] {
	return request[model.Credentials](ctx, c, http.MethodPost, EndpointLogin, loginRequest{
		Email:    email,
		Password: password,
	})
}

// Register creates an account and, like Login, returns a token plus the
// new user record.
func (c *Client) Register(ctx context.Context, email, password, username string) Envelope[model.Credentials] {
	return request[model.Credentials](ctx, c, http.MethodPost, EndpointRegister, registerRequest{
		Email:    email,
		Password: password,
		Username: username,
	})
}

// Logout tells the backend to discard the current token. Local session
// cleanup does not depend on this call succeeding.
func (c *Client) Logout(ctx context.Context) Envelope[MessageReply] {
	return request[MessageReply](ctx, c, http.MethodPost, EndpointLogout, nil)
}

// Profile fetches the authenticated user's record.
func (c *Client) Profile(ctx context.Context) Envelope[model.User] {
	return request[model.User](ctx, c, http.MethodGet, EndpointProfile, nil)
}

// =============================================================================
// CHAT ENDPOINTS
// =============================================================================

// ChatSessions lists the user's conversation threads.
func (c *Client) ChatSessions(ctx context.Context) Envelope[[]model.ChatSession] {
	return request[[]model.ChatSession](ctx, c, http.MethodGet, EndpointChatSessions, nil)
}

// CreateChatSession starts a new conversation thread. An empty title
// lets the server pick one.
func (c *Client) CreateChatSession(ctx context.Context, title string) Envelope[model.ChatSession] {
	return request[model.ChatSession](ctx, c, http.MethodPost, EndpointChatSessions, createSessionRequest{
		Title: title,
	})
}

// ChatMessages fetches all messages of one session.
func (c *Client) ChatMessages(ctx context.Context, sessionID string) Envelope[[]model.ChatMessage] {
	return request[[]model.ChatMessage](ctx, c, http.MethodGet, EndpointChatMessages+"/"+sessionID, nil)
}

// SendMessage posts a user message and returns the bot's reply message.
func (c *Client) SendMessage(ctx context.Context, sessionID, content string) Envelope[model.ChatMessage] {
	return request[model.ChatMessage](ctx, c, http.MethodPost, EndpointChatSend, sendMessageRequest{
		SessionID: sessionID,
		Content:   content,
	})
}

// ChatHistory returns the user's past sessions, most recent first.
func (c *Client) ChatHistory(ctx context.Context) Envelope[[]model.ChatSession] {
	return request[[]model.ChatSession](ctx, c, http.MethodGet, EndpointChatHistory, nil)
}
