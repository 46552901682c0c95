// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"log"

	"github.com/jeranaias/chatter-tui/internal/api"
	"github.com/jeranaias/chatter-tui/internal/model"
)

// =============================================================================
// ERRORS
// =============================================================================

// AuthError carries the human-readable failure message from a rejected
// login, registration or refresh. Use errors.As to recover the message.
type AuthError struct {
	Message string
}

// Error implements the error interface.
func (e *AuthError) Error() string {
	return e.Message
}

// Is implements errors.Is support.
func (e *AuthError) Is(target error) bool {
	t, ok := target.(*AuthError)
	if !ok {
		return false
	}
	return t.Message == "" || t.Message == e.Message
}

// =============================================================================
// GATE
// =============================================================================

// SessionCache is session-scoped local data that must be purged
// together with the session (the chat history cache implements this).
type SessionCache interface {
	Clear() error
}

// Gate is the authoritative holder of the authentication state.
//
// The state machine has two states: Anonymous (no token persisted) and
// Authenticated (token persisted, user cached or pending refresh).
// Login and Register move Anonymous to Authenticated; Logout and the
// pipeline's 401 hook move back. Races between an in-flight login and
// a 401-triggered teardown resolve by last write wins: a login that
// completes after the teardown leaves the session Authenticated.
type Gate struct {
	store  *Store
	client *api.Client

	caches         []SessionCache
	onForcedLogout func()
}

// NewGate creates a gate over the given store and API client.
func NewGate(store *Store, client *api.Client) *Gate {
	return &Gate{store: store, client: client}
}

// WithSessionCache registers session-scoped data to purge on teardown.
func (g *Gate) WithSessionCache(c SessionCache) *Gate {
	g.caches = append(g.caches, c)
	return g
}

// WithForcedLogoutHook sets the navigation side effect fired when the
// pipeline detects an expired token. The host wires this to a hard
// redirect to the login boundary.
func (g *Gate) WithForcedLogoutHook(fn func()) *Gate {
	g.onForcedLogout = fn
	return g
}

// Store exposes the underlying persisted store.
func (g *Gate) Store() *Store {
	return g.store
}

// =============================================================================
// AUTH OPERATIONS
// =============================================================================

// Login exchanges credentials for a session. On success the token and
// user record are persisted and the user is returned; on failure the
// prior session, if any, is left untouched.
func (g *Gate) Login(ctx context.Context, email, password string) (model.User, error) {
	env := g.client.Login(ctx, email, password)
	if !env.Success {
		return model.User{}, &AuthError{Message: env.Error}
	}

	if err := g.store.SetCredentials(env.Data); err != nil {
		log.Printf("SESSION | failed to persist credentials: %v", err)
		return model.User{}, err
	}
	return env.Data.User, nil
}

// Register creates an account. Persistence and failure semantics match
// Login exactly.
func (g *Gate) Register(ctx context.Context, email, password, username string) (model.User, error) {
	env := g.client.Register(ctx, email, password, username)
	if !env.Success {
		return model.User{}, &AuthError{Message: env.Error}
	}

	if err := g.store.SetCredentials(env.Data); err != nil {
		log.Printf("SESSION | failed to persist credentials: %v", err)
		return model.User{}, err
	}
	return env.Data.User, nil
}

// Logout notifies the backend (best effort) and unconditionally clears
// the local session. A failed remote call never blocks local cleanup.
func (g *Gate) Logout(ctx context.Context) error {
	if g.store.HasToken() {
		if env := g.client.Logout(ctx); !env.Success {
			log.Printf("SESSION | remote logout failed: %s", env.Error)
		}
	}
	return g.clearLocal()
}

// Refresh re-fetches the profile and replaces the cached user record.
// Without a token it is a no-op. On failure the stale record is kept -
// stale-but-present beats empty, except for the 401 case which the
// pipeline hook already tears down.
func (g *Gate) Refresh(ctx context.Context) error {
	if !g.store.HasToken() {
		return nil
	}

	env := g.client.Profile(ctx)
	if !env.Success {
		return &AuthError{Message: env.Error}
	}
	return g.store.SetUser(env.Data)
}

// =============================================================================
// SYNCHRONOUS ACCESSORS
// =============================================================================

// IsAuthenticated reports whether a token is currently persisted.
// Pure in-memory check, no I/O.
func (g *Gate) IsAuthenticated() bool {
	return g.store.HasToken()
}

// CurrentUser returns the last cached user record. Pure in-memory
// check, no I/O.
func (g *Gate) CurrentUser() (model.User, bool) {
	return g.store.User()
}

// =============================================================================
// SETTINGS
// =============================================================================

// Settings returns the cached client preferences.
func (g *Gate) Settings() model.Settings {
	return g.store.Settings()
}

// UpdateSettings merges the patch into the stored settings and
// persists the result, returning the merged settings.
func (g *Gate) UpdateSettings(patch model.SettingsPatch) (model.Settings, error) {
	merged := patch.Apply(g.store.Settings())
	if err := g.store.SetSettings(merged); err != nil {
		return merged, err
	}
	return merged, nil
}

// =============================================================================
// FORCED TEARDOWN
// =============================================================================

// HandleUnauthorized is the pipeline's 401 hook: it clears the session
// and fires the forced-logout navigation side effect. Wire it with
// api.Client.WithUnauthorizedHook.
func (g *Gate) HandleUnauthorized() {
	if err := g.clearLocal(); err != nil {
		log.Printf("SESSION | teardown after 401 failed: %v", err)
	}
	if g.onForcedLogout != nil {
		g.onForcedLogout()
	}
}

// clearLocal removes the persisted session slots and purges every
// registered session-scoped cache.
func (g *Gate) clearLocal() error {
	err := g.store.Clear()
	for _, c := range g.caches {
		if cerr := c.Clear(); cerr != nil {
			log.Printf("SESSION | failed to clear session cache: %v", cerr)
			if err == nil {
				err = cerr
			}
		}
	}
	return err
}
