// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"context"
	"log"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// =============================================================================
// HOME SCREEN
// =============================================================================

// profileRefreshedMsg signals that the background profile refresh
// finished. The screen re-reads the cached user either way.
type profileRefreshedMsg struct{}

// loggedOutMsg signals that logout completed.
type loggedOutMsg struct{}

type homeItem struct {
	label string
	path  string
}

type homeScreen struct {
	deps   *Deps
	items  []homeItem
	cursor int
}

func newHomeScreen(deps *Deps) *homeScreen {
	return &homeScreen{
		deps: deps,
		items: []homeItem{
			{label: "Chat", path: "/chat"},
			{label: "Voice mode", path: "/voice"},
			{label: "Settings", path: "/settings"},
			{label: "Log out", path: ""},
		},
	}
}

// Init kicks off a background profile refresh so the greeting stays
// current. A failed refresh keeps the cached record.
func (s *homeScreen) Init() tea.Cmd {
	gate := s.deps.Gate
	return func() tea.Msg {
		if err := gate.Refresh(context.Background()); err != nil {
			log.Printf("UI | profile refresh failed: %v", err)
		}
		return profileRefreshedMsg{}
	}
}

func (s *homeScreen) Update(msg tea.Msg) (Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if s.cursor > 0 {
				s.cursor--
			}
		case "down", "j":
			if s.cursor < len(s.items)-1 {
				s.cursor++
			}
		case "enter":
			item := s.items[s.cursor]
			if item.path == "" {
				return s, s.logout()
			}
			return s, Navigate(item.path)
		case "q":
			return s, tea.Quit
		}

	case profileRefreshedMsg:
		return s, nil

	case loggedOutMsg:
		return s, tea.Batch(notice("Signed out", false), Navigate("/onboarding"))
	}
	return s, nil
}

func (s *homeScreen) logout() tea.Cmd {
	gate := s.deps.Gate
	return func() tea.Msg {
		if err := gate.Logout(context.Background()); err != nil {
			log.Printf("UI | logout cleanup error: %v", err)
		}
		return loggedOutMsg{}
	}
}

func (s *homeScreen) View() string {
	t := s.deps.Theme

	greeting := "Hello"
	if user, okUser := s.deps.Gate.CurrentUser(); okUser {
		greeting = "Hello, " + user.DisplayName()
		if user.IsPremium {
			greeting += " " + t.Success.Render("★")
		}
	}

	var b strings.Builder
	b.WriteString(t.HeaderTitle.Render("chatter") + "\n")
	b.WriteString(t.HeaderSubtitle.Render(greeting) + "\n\n")

	for i, item := range s.items {
		if i == s.cursor {
			b.WriteString(t.MenuSelected.Render("> "+item.label) + "\n")
		} else {
			b.WriteString(t.MenuItem.Render("  "+item.label) + "\n")
		}
	}

	b.WriteString("\n" + t.MenuHint.Render("↑/↓ move · enter select · q quit"))
	return t.Container.Render(b.String())
}
