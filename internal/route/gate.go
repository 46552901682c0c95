// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package route classifies navigation targets and decides, from the
// presence of a session token marker, whether to allow a navigation or
// redirect it. The check is presence-only: it never validates the
// token, so a stale marker gets past the gate and is torn down by the
// first 401 from the request pipeline.
package route

import (
	"net/url"
	"strings"
)

// Well-known navigation targets.
const (
	LoginPath = "/login"
	HomePath  = "/"
)

// =============================================================================
// CLASSIFICATION
// =============================================================================

// Class is the category a path falls into.
type Class int

const (
	// Unclassified paths are neither protected nor public and pass
	// through untouched.
	Unclassified Class = iota

	// Public paths are the auth boundary screens; an authenticated
	// visitor is bounced off login and register.
	Public

	// Protected paths require a session token marker.
	Protected
)

// String returns the class name for logging.
func (c Class) String() string {
	switch c {
	case Public:
		return "public"
	case Protected:
		return "protected"
	default:
		return "unclassified"
	}
}

// =============================================================================
// DECISION
// =============================================================================

// Action is the outcome of a gate check.
type Action int

const (
	// Allow lets the navigation proceed to its target.
	Allow Action = iota

	// RedirectLogin sends the visitor to the login screen, carrying the
	// original target so it can be resumed after authentication.
	RedirectLogin

	// RedirectHome sends an already-authenticated visitor off an auth
	// boundary screen.
	RedirectHome
)

// Decision is the full outcome: the action plus the concrete target.
type Decision struct {
	Action Action
	Target string
	Class  Class
}

// =============================================================================
// GATE
// =============================================================================

// Gate holds the classification tables and the token marker probe.
type Gate struct {
	// protectedPrefixes match by path prefix: /chat also covers
	// /chat/abc123.
	protectedPrefixes []string

	// publicExact match exactly: /login matches, /login/extra does not.
	publicExact []string

	// authEntryPoints are the public paths an authenticated visitor is
	// bounced off. A strict subset of publicExact: onboarding stays
	// reachable with a session.
	authEntryPoints []string

	// assetPrefixes are internal machinery paths that bypass the gate
	// entirely, before any other rule.
	assetPrefixes []string

	hasToken func() bool
}

// NewGate creates a gate with the default tables. hasToken is the
// presence-only token marker probe.
func NewGate(hasToken func() bool) *Gate {
	return &Gate{
		protectedPrefixes: []string{"/chat", "/voice", "/settings"},
		publicExact:       []string{"/login", "/register", "/onboarding"},
		authEntryPoints:   []string{"/login", "/register"},
		assetPrefixes:     []string{"/api/", "/_app/"},
		hasToken:          hasToken,
	}
}

// Classify returns the class of a path, ignoring token state.
func (g *Gate) Classify(path string) Class {
	for _, p := range g.publicExact {
		if path == p {
			return Public
		}
	}
	for _, p := range g.protectedPrefixes {
		if path == p || strings.HasPrefix(path, p+"/") {
			return Protected
		}
	}
	return Unclassified
}

// Decide evaluates a navigation target.
//
// Rule order: internal asset paths always pass, then a protected path
// without a token marker redirects to login with the original target
// preserved, then a login/registration entry point with a marker
// redirects home. Every other public path is allowed regardless of
// token state, and everything else - including unclassified paths - is
// allowed, matching the permissive default of the original gate.
func (g *Gate) Decide(path string) Decision {
	for _, p := range g.assetPrefixes {
		if strings.HasPrefix(path, p) {
			return Decision{Action: Allow, Target: path, Class: Unclassified}
		}
	}

	class := g.Classify(path)
	authenticated := g.hasToken != nil && g.hasToken()

	switch class {
	case Protected:
		if !authenticated {
			return Decision{
				Action: RedirectLogin,
				Target: LoginPath + "?redirect=" + url.QueryEscape(path),
				Class:  class,
			}
		}
	case Public:
		if authenticated && g.isAuthEntryPoint(path) {
			return Decision{Action: RedirectHome, Target: HomePath, Class: class}
		}
	}
	return Decision{Action: Allow, Target: path, Class: class}
}

// isAuthEntryPoint reports whether path is a login/registration entry
// point.
func (g *Gate) isAuthEntryPoint(path string) bool {
	for _, p := range g.authEntryPoints {
		if path == p {
			return true
		}
	}
	return false
}

// RedirectParam extracts the resume target from a login redirect, or
// "" when none is present.
func RedirectParam(target string) string {
	u, err := url.Parse(target)
	if err != nil {
		return ""
	}
	return u.Query().Get("redirect")
}
