// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api implements the HTTP request pipeline for the chatter
// backend.
//
// Every call is normalized into an Envelope: the pipeline never panics
// and never returns a raw transport error to the caller. Bearer
// authentication is attached from an injected TokenSource, and a 401
// response triggers the injected unauthorized hook so the host
// application can tear down the session and redirect to login.
package api

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Configuration constants for the backend API.
const (
	// DefaultBaseURL is the development backend address.
	DefaultBaseURL = "http://localhost:8000"

	// DefaultTimeout is the fixed per-request timeout. A request that
	// exceeds it is abandoned and reported as a network failure.
	DefaultTimeout = 10 * time.Second

	// MaxResponseSize limits response bodies to prevent memory
	// exhaustion from a misbehaving server.
	MaxResponseSize = 10 * 1024 * 1024 // 10MB
)

// Backend endpoint paths.
const (
	EndpointLogin        = "/auth/login"
	EndpointRegister     = "/auth/register"
	EndpointLogout       = "/auth/logout"
	EndpointProfile      = "/auth/profile"
	EndpointChatSessions = "/chat/sessions"
	EndpointChatMessages = "/chat/messages"
	EndpointChatSend     = "/chat/send"
	EndpointChatHistory  = "/chat/history"
)

// genericFailure is the error surfaced when the server gives no usable
// message of its own.
const genericFailure = "Request failed"

// =============================================================================
// ENVELOPE
// =============================================================================

// Envelope is the uniform result of every pipeline call.
//
// Exactly one of the two shapes occurs: Success true with Data set, or
// Success false with a non-empty Error. Transport faults, timeouts,
// malformed payloads and HTTP error statuses all resolve into the
// failure shape; nothing escapes as a panic or unhandled error.
type Envelope[T any] struct {
	Success bool
	Data    T
	Error   string
}

// ok builds a success envelope.
func ok[T any](data T) Envelope[T] {
	return Envelope[T]{Success: true, Data: data}
}

// fail builds a failure envelope.
func fail[T any](msg string) Envelope[T] {
	if msg == "" {
		msg = genericFailure
	}
	return Envelope[T]{Success: false, Error: msg}
}

// =============================================================================
// TOKEN SOURCE
// =============================================================================

// TokenSource supplies the current bearer token. The pipeline reads the
// token once at request-construction time; an empty string means the
// request goes out unauthenticated.
type TokenSource interface {
	AccessToken() string
}

// =============================================================================
// CLIENT
// =============================================================================

// Client issues requests against the chatter backend.
//
// Calls are attempted exactly once - no retry policy. Callers that want
// retries layer them on top of the envelope result.
type Client struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client

	tokens         TokenSource
	onUnauthorized func()
}

// NewClient creates a Client for the given base URL. A zero timeout
// selects DefaultTimeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		timeout: timeout,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
				TLSClientConfig: &tls.Config{
					MinVersion: tls.VersionTLS12,
				},
			},
		},
	}
}

// WithTokenSource sets the source of the bearer token.
func (c *Client) WithTokenSource(ts TokenSource) *Client {
	c.tokens = ts
	return c
}

// WithUnauthorizedHook sets the function invoked whenever the backend
// answers 401. The hook runs before the envelope is returned and is
// called unconditionally for every 401 response.
func (c *Client) WithUnauthorizedHook(fn func()) *Client {
	c.onUnauthorized = fn
	return c
}

// BaseURL returns the configured backend address.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Timeout returns the fixed per-request timeout.
func (c *Client) Timeout() time.Duration {
	return c.timeout
}

// token returns the current bearer token, or "" when no source is
// wired or no token is persisted.
func (c *Client) token() string {
	if c.tokens == nil {
		return ""
	}
	return c.tokens.AccessToken()
}

// =============================================================================
// REQUEST PIPELINE
// =============================================================================

// apiErrorBody captures the error fields the backend may use. FastAPI
// puts messages under "detail"; older handlers use "message"/"error".
type apiErrorBody struct {
	Detail  string `json:"detail"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

// message returns the first populated error field.
func (b apiErrorBody) message() string {
	switch {
	case b.Detail != "":
		return b.Detail
	case b.Message != "":
		return b.Message
	case b.Error != "":
		return b.Error
	}
	return ""
}

// request performs a single call and normalizes the outcome.
//
// The deadline is enforced per request: the caller's context is capped
// at the client timeout. A request is never retried; an expired
// deadline is reported as a timeout failure.
func request[T any](ctx context.Context, c *Client, method, path string, body any) Envelope[T] {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fail[T](fmt.Sprintf("failed to encode request: %v", err))
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fail[T](fmt.Sprintf("failed to create request: %v", err))
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())
	if token := c.token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)

	// Clear the Authorization header after the request so the token
	// cannot leak through request dumps or logs.
	req.Header.Del("Authorization")

	if err != nil {
		logRequest(method, path, 0, time.Since(start))
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fail[T](fmt.Sprintf("request timed out after %s", c.timeout))
		}
		return fail[T](fmt.Sprintf("network error: %v", err))
	}
	defer resp.Body.Close()

	logRequest(method, path, resp.StatusCode, time.Since(start))

	data, readErr := readResponse(resp)

	if resp.StatusCode == http.StatusUnauthorized {
		// Forced session invalidation: the hook clears the persisted
		// session and redirects to the login boundary. It fires even
		// when the body cannot be read.
		if c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		return fail[T](serverMessage(data))
	}

	if readErr != nil {
		return fail[T](readErr.Error())
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fail[T](serverMessage(data))
	}

	var parsed T
	if len(data) > 0 {
		if err := json.Unmarshal(data, &parsed); err != nil {
			return fail[T](fmt.Sprintf("failed to parse response: %v", err))
		}
	}
	return ok(parsed)
}

// readResponse reads the body with a size cap. Reading one byte past
// the cap distinguishes a body of exactly MaxResponseSize, which is
// accepted, from an oversized one.
func readResponse(resp *http.Response) ([]byte, error) {
	limited := io.LimitReader(resp.Body, MaxResponseSize+1)
	data, err := io.ReadAll(limited)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(data)) > MaxResponseSize {
		return nil, fmt.Errorf("response exceeded maximum size of %d bytes", MaxResponseSize)
	}
	return data, nil
}

// serverMessage extracts the server's error message from a non-2xx
// body, falling back to the generic failure text.
func serverMessage(data []byte) string {
	var body apiErrorBody
	if err := json.Unmarshal(data, &body); err == nil {
		if msg := body.message(); msg != "" {
			return msg
		}
	}
	return genericFailure
}

// logRequest logs a completed call without sensitive data: no headers,
// no bodies, just method, path, status and duration.
func logRequest(method, path string, status int, duration time.Duration) {
	log.Printf("API | %s %s | %d | %.3fs", method, path, status, duration.Seconds())
}
