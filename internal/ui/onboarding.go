// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/chatter-tui/internal/route"
)

// =============================================================================
// ONBOARDING SCREEN
// =============================================================================

var onboardingPages = []struct {
	title string
	body  string
}{
	{
		title: "Welcome to chatter",
		body:  "A terminal companion for chatting with your assistant.\nYour conversations sync across devices.",
	},
	{
		title: "Talk or type",
		body:  "Use the chat screen for text, or voice mode for hands-free\ntranscription while you work.",
	},
	{
		title: "Yours to keep",
		body:  "Chat history is cached locally for instant recall and wiped\nwhen you sign out.",
	},
}

type onboardingScreen struct {
	deps *Deps
	page int
}

func newOnboardingScreen(deps *Deps) *onboardingScreen {
	return &onboardingScreen{deps: deps}
}

func (s *onboardingScreen) Init() tea.Cmd {
	return nil
}

func (s *onboardingScreen) Update(msg tea.Msg) (Screen, tea.Cmd) {
	if key, isKey := msg.(tea.KeyMsg); isKey {
		switch key.String() {
		case "enter", " ", "right":
			if s.page < len(onboardingPages)-1 {
				s.page++
				return s, nil
			}
			return s, Navigate(route.LoginPath)
		case "left":
			if s.page > 0 {
				s.page--
			}
			return s, nil
		case "l":
			return s, Navigate(route.LoginPath)
		case "r":
			return s, Navigate("/register")
		case "q", "esc":
			return s, tea.Quit
		}
	}
	return s, nil
}

func (s *onboardingScreen) View() string {
	t := s.deps.Theme
	p := onboardingPages[s.page]

	var b strings.Builder
	b.WriteString(t.HeaderTitle.Render(p.title) + "\n\n")
	b.WriteString(p.body + "\n\n")

	dots := make([]string, len(onboardingPages))
	for i := range dots {
		if i == s.page {
			dots[i] = t.Success.Render("●")
		} else {
			dots[i] = t.Muted.Render("○")
		}
	}
	b.WriteString(strings.Join(dots, " ") + "\n\n")

	b.WriteString(t.MenuHint.Render("enter next · l login · r register · q quit"))
	return t.Container.Render(b.String())
}
