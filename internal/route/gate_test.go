// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package route

import "testing"

func gateWithToken(has bool) *Gate {
	return NewGate(func() bool { return has })
}

func TestClassify(t *testing.T) {
	g := gateWithToken(false)

	tests := []struct {
		path string
		want Class
	}{
		{"/login", Public},
		{"/register", Public},
		{"/onboarding", Public},
		{"/chat", Protected},
		{"/chat/abc123", Protected},
		{"/voice", Protected},
		{"/settings", Protected},
		{"/", Unclassified},
		{"/about", Unclassified},
		// Exact-match rule: a suffix does not make a path public.
		{"/login/extra", Unclassified},
		// Prefix rule needs a path boundary.
		{"/chatter", Unclassified},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := g.Classify(tt.path); got != tt.want {
				t.Errorf("Classify(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestDecideAnonymous(t *testing.T) {
	g := gateWithToken(false)

	tests := []struct {
		path       string
		wantAction Action
		wantTarget string
	}{
		{"/chat", RedirectLogin, "/login?redirect=%2Fchat"},
		{"/chat/abc123", RedirectLogin, "/login?redirect=%2Fchat%2Fabc123"},
		{"/voice", RedirectLogin, "/login?redirect=%2Fvoice"},
		{"/settings", RedirectLogin, "/login?redirect=%2Fsettings"},
		{"/login", Allow, "/login"},
		{"/register", Allow, "/register"},
		{"/onboarding", Allow, "/onboarding"},
		{"/", Allow, "/"},
		{"/about", Allow, "/about"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			d := g.Decide(tt.path)
			if d.Action != tt.wantAction {
				t.Errorf("Decide(%q).Action = %v, want %v", tt.path, d.Action, tt.wantAction)
			}
			if d.Target != tt.wantTarget {
				t.Errorf("Decide(%q).Target = %q, want %q", tt.path, d.Target, tt.wantTarget)
			}
		})
	}
}

func TestDecideAuthenticated(t *testing.T) {
	g := gateWithToken(true)

	tests := []struct {
		path       string
		wantAction Action
		wantTarget string
	}{
		{"/chat", Allow, "/chat"},
		{"/voice", Allow, "/voice"},
		{"/login", RedirectHome, "/"},
		{"/register", RedirectHome, "/"},
		// Only the login/registration entry points bounce; other public
		// paths stay reachable with a session.
		{"/onboarding", Allow, "/onboarding"},
		{"/", Allow, "/"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			d := g.Decide(tt.path)
			if d.Action != tt.wantAction {
				t.Errorf("Decide(%q).Action = %v, want %v", tt.path, d.Action, tt.wantAction)
			}
			if d.Target != tt.wantTarget {
				t.Errorf("Decide(%q).Target = %q, want %q", tt.path, d.Target, tt.wantTarget)
			}
		})
	}
}

func TestDecidePublicAllowedRegardlessOfToken(t *testing.T) {
	// Public paths outside the auth entry points never redirect, with
	// or without a marker.
	for _, has := range []bool{false, true} {
		g := gateWithToken(has)
		d := g.Decide("/onboarding")
		if d.Action != Allow {
			t.Errorf("Decide(/onboarding) with token=%v = %v, want Allow", has, d.Action)
		}
		if d.Target != "/onboarding" {
			t.Errorf("Decide(/onboarding) target = %q, want /onboarding", d.Target)
		}
		if d.Class != Public {
			t.Errorf("Decide(/onboarding) class = %v, want Public", d.Class)
		}
	}
}

func TestDecideAssetsBypassGate(t *testing.T) {
	for _, has := range []bool{false, true} {
		g := gateWithToken(has)
		for _, path := range []string{"/api/health", "/_app/bundle.js"} {
			d := g.Decide(path)
			if d.Action != Allow {
				t.Errorf("asset path %q must always be allowed (token=%v)", path, has)
			}
		}
	}
}

func TestDecidePresenceOnly(t *testing.T) {
	// The gate never validates the token; any non-empty marker passes.
	// A stale marker is torn down later by the request pipeline.
	g := gateWithToken(true)
	if d := g.Decide("/chat"); d.Action != Allow {
		t.Error("stale-but-present marker must pass the gate")
	}
}

func TestRedirectParamRoundTrip(t *testing.T) {
	g := gateWithToken(false)

	d := g.Decide("/chat/abc123")
	if got := RedirectParam(d.Target); got != "/chat/abc123" {
		t.Errorf("RedirectParam = %q, want /chat/abc123", got)
	}

	if got := RedirectParam("/login"); got != "" {
		t.Errorf("RedirectParam without query = %q, want empty", got)
	}
}
