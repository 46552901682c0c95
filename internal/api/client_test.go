// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

// staticToken is a TokenSource returning a fixed value.
type staticToken string

func (t staticToken) AccessToken() string { return string(t) }

func TestRequestSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("missing content type, got %q", r.Header.Get("Content-Type"))
		}
		if r.Header.Get("X-Request-Id") == "" {
			t.Error("missing request id header")
		}
		json.NewEncoder(w).Encode(map[string]string{"message": "bye"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 0)
	env := c.Logout(context.Background())

	if !env.Success {
		t.Fatalf("expected success, got error %q", env.Error)
	}
	if env.Data.Message != "bye" {
		t.Errorf("expected message bye, got %q", env.Data.Message)
	}
	if env.Error != "" {
		t.Errorf("success envelope must have empty error, got %q", env.Error)
	}
}

func TestRequestAttachesBearerToken(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 0).WithTokenSource(staticToken("tok123"))
	c.Profile(context.Background())

	if got != "Bearer tok123" {
		t.Errorf("expected Bearer tok123, got %q", got)
	}
}

func TestRequestNoTokenNoHeader(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 0).WithTokenSource(staticToken(""))
	c.Profile(context.Background())

	if got != "" {
		t.Errorf("anonymous request must not carry Authorization, got %q", got)
	}
}

func TestRequestServerErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"detail field", `{"detail":"Invalid credentials"}`, "Invalid credentials"},
		{"message field", `{"message":"nope"}`, "nope"},
		{"error field", `{"error":"broken"}`, "broken"},
		{"empty body", ``, "Request failed"},
		{"malformed body", `<html>oops</html>`, "Request failed"},
		{"unknown fields", `{"status":"bad"}`, "Request failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := NewClient(srv.URL, 0)
			env := c.Logout(context.Background())

			if env.Success {
				t.Fatal("expected failure envelope")
			}
			if env.Error != tt.want {
				t.Errorf("expected %q, got %q", tt.want, env.Error)
			}
		})
	}
}

func TestRequestUnauthorizedFiresHook(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":"Token expired"}`))
	}))
	defer srv.Close()

	var fired atomic.Int32
	c := NewClient(srv.URL, 0).
		WithTokenSource(staticToken("stale")).
		WithUnauthorizedHook(func() { fired.Add(1) })

	env := c.Profile(context.Background())

	if env.Success {
		t.Fatal("expected failure envelope on 401")
	}
	if env.Error != "Token expired" {
		t.Errorf("expected server message, got %q", env.Error)
	}
	if fired.Load() != 1 {
		t.Errorf("hook fired %d times, want 1", fired.Load())
	}

	// Second 401 fires the hook again.
	c.Profile(context.Background())
	if fired.Load() != 2 {
		t.Errorf("hook fired %d times after second call, want 2", fired.Load())
	}
}

func TestRequestUnauthorizedUnreadableBodyStillFiresHook(t *testing.T) {
	// Declare more bytes than are written: the client's body read fails
	// with an unexpected EOF after the 401 status line arrived.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "100")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte("{"))
	}))
	defer srv.Close()

	var fired atomic.Int32
	c := NewClient(srv.URL, 0).
		WithTokenSource(staticToken("stale")).
		WithUnauthorizedHook(func() { fired.Add(1) })

	env := c.Profile(context.Background())

	if env.Success {
		t.Fatal("expected failure envelope")
	}
	if fired.Load() != 1 {
		t.Errorf("hook fired %d times, want 1", fired.Load())
	}
	if env.Error != "Request failed" {
		t.Errorf("expected generic failure, got %q", env.Error)
	}
}

func TestRequestUnauthorizedWithoutHook(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 0)
	env := c.Profile(context.Background())

	if env.Success {
		t.Fatal("expected failure envelope")
	}
}

func TestRequestTimeoutResolves(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 50*time.Millisecond)

	done := make(chan Envelope[MessageReply], 1)
	go func() { done <- c.Logout(context.Background()) }()

	select {
	case env := <-done:
		if env.Success {
			t.Fatal("expected timeout failure")
		}
		if !strings.Contains(env.Error, "timed out") {
			t.Errorf("expected timeout message, got %q", env.Error)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("request hung instead of timing out")
	}
}

func TestRequestMalformedSuccessBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message":`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 0)
	env := c.Logout(context.Background())

	if env.Success {
		t.Fatal("malformed 2xx body must resolve to failure")
	}
	if env.Error == "" {
		t.Error("failure envelope must carry a message")
	}
}

func TestReadResponseSizeCap(t *testing.T) {
	mkResp := func(n int) *http.Response {
		return &http.Response{Body: io.NopCloser(strings.NewReader(strings.Repeat("a", n)))}
	}

	// A body of exactly the cap is accepted.
	data, err := readResponse(mkResp(MaxResponseSize))
	if err != nil {
		t.Fatalf("body at the cap must be accepted: %v", err)
	}
	if len(data) != MaxResponseSize {
		t.Errorf("expected %d bytes, got %d", MaxResponseSize, len(data))
	}

	// One byte over is rejected.
	if _, err := readResponse(mkResp(MaxResponseSize + 1)); err == nil {
		t.Fatal("oversized body must be rejected")
	}
}

func TestRequestNetworkErrorResolves(t *testing.T) {
	// Reserved port with no listener.
	c := NewClient("http://127.0.0.1:1", 200*time.Millisecond)
	env := c.Logout(context.Background())

	if env.Success {
		t.Fatal("expected network failure")
	}
	if env.Error == "" {
		t.Error("failure envelope must carry a message")
	}
}

func TestRequestExactlyOneAttempt(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 0)
	c.Logout(context.Background())

	if calls.Load() != 1 {
		t.Errorf("expected exactly one attempt, got %d", calls.Load())
	}
}

func TestLoginDecodesCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != EndpointLogin {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["email"] != "a@b.c" || body["password"] != "hunter22" {
			t.Errorf("unexpected payload %v", body)
		}
		w.Write([]byte(`{"access_token":"tok123","user":{"id":"u1","email":"a@b.c","username":"ab"}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 0)
	env := c.Login(context.Background(), "a@b.c", "hunter22")

	if !env.Success {
		t.Fatalf("expected success, got %q", env.Error)
	}
	if env.Data.AccessToken != "tok123" {
		t.Errorf("expected token tok123, got %q", env.Data.AccessToken)
	}
	if env.Data.User.Username != "ab" {
		t.Errorf("expected username ab, got %q", env.Data.User.Username)
	}
}
