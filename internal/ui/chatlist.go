// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"context"
	"log"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/chatter-tui/internal/model"
	"github.com/jeranaias/chatter-tui/internal/route"
	"github.com/jeranaias/chatter-tui/internal/util"
)

// =============================================================================
// CHAT LIST SCREEN
// =============================================================================

// sessionsLoadedMsg carries the authoritative thread list from the
// backend.
type sessionsLoadedMsg struct {
	sessions []model.ChatSession
	errMsg   string
}

// sessionCreatedMsg carries a freshly created thread.
type sessionCreatedMsg struct {
	session model.ChatSession
	errMsg  string
}

type chatListScreen struct {
	deps     *Deps
	sessions []model.ChatSession
	cursor   int
	loading  bool
	creating bool
	errMsg   string
	spin     spinner.Model
}

func newChatListScreen(deps *Deps) *chatListScreen {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = deps.Theme.Spinner

	s := &chatListScreen{deps: deps, spin: sp, loading: true}

	// Cached threads render immediately; the backend fetch replaces
	// them when it lands.
	if cached, err := deps.History.Sessions(); err == nil {
		s.sessions = cached
	}
	return s
}

func (s *chatListScreen) Init() tea.Cmd {
	return tea.Batch(s.spin.Tick, s.fetch())
}

func (s *chatListScreen) fetch() tea.Cmd {
	deps := s.deps
	return func() tea.Msg {
		env := deps.Client.ChatHistory(context.Background())
		if !env.Success {
			return sessionsLoadedMsg{errMsg: env.Error}
		}
		for _, sess := range env.Data {
			if err := deps.History.SaveSession(sess); err != nil {
				log.Printf("UI | failed to cache session %s: %v", sess.ID, err)
			}
		}
		return sessionsLoadedMsg{sessions: env.Data}
	}
}

func (s *chatListScreen) create() tea.Cmd {
	deps := s.deps
	return func() tea.Msg {
		env := deps.Client.CreateChatSession(context.Background(), "")
		if !env.Success {
			return sessionCreatedMsg{errMsg: env.Error}
		}
		if err := deps.History.SaveSession(env.Data); err != nil {
			log.Printf("UI | failed to cache session %s: %v", env.Data.ID, err)
		}
		return sessionCreatedMsg{session: env.Data}
	}
}

func (s *chatListScreen) Update(msg tea.Msg) (Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if s.cursor > 0 {
				s.cursor--
			}
		case "down", "j":
			if s.cursor < len(s.sessions)-1 {
				s.cursor++
			}
		case "enter":
			if len(s.sessions) > 0 {
				return s, Navigate("/chat/" + s.sessions[s.cursor].ID)
			}
			return s, s.startCreate()
		case "n":
			return s, s.startCreate()
		case "esc":
			return s, Navigate(route.HomePath)
		}

	case sessionsLoadedMsg:
		s.loading = false
		if msg.errMsg != "" {
			s.errMsg = msg.errMsg
			return s, nil
		}
		s.errMsg = ""
		s.sessions = msg.sessions
		if s.cursor >= len(s.sessions) {
			s.cursor = 0
		}
		return s, nil

	case sessionCreatedMsg:
		s.creating = false
		if msg.errMsg != "" {
			s.errMsg = msg.errMsg
			return s, nil
		}
		return s, Navigate("/chat/" + msg.session.ID)

	case spinner.TickMsg:
		var cmd tea.Cmd
		s.spin, cmd = s.spin.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *chatListScreen) startCreate() tea.Cmd {
	if s.creating {
		return nil
	}
	s.creating = true
	s.errMsg = ""
	return s.create()
}

func (s *chatListScreen) View() string {
	t := s.deps.Theme
	var b strings.Builder

	b.WriteString(t.HeaderTitle.Render("Conversations") + "\n\n")

	switch {
	case s.loading && len(s.sessions) == 0:
		b.WriteString(s.spin.View() + " " + t.Muted.Render("Loading...") + "\n")
	case len(s.sessions) == 0:
		b.WriteString(t.Muted.Render("No conversations yet. Press n to start one.") + "\n")
	default:
		width := s.deps.Width - 8
		if width < 20 {
			width = 40
		}
		for i, sess := range s.sessions {
			title := sess.Title
			if title == "" {
				title = "Untitled"
			}
			line := util.TruncateWidth(title, width)
			if preview := sess.LastMessagePreview; preview != "" {
				line += "  " + t.Muted.Render(util.TruncateWidth(util.FirstLine(preview), width/2))
			}
			if i == s.cursor {
				b.WriteString(t.MenuSelected.Render("> "+line) + "\n")
			} else {
				b.WriteString(t.MenuItem.Render("  "+line) + "\n")
			}
		}
	}

	if s.creating {
		b.WriteString("\n" + s.spin.View() + " " + t.Muted.Render("Creating...") + "\n")
	}
	if s.errMsg != "" {
		b.WriteString("\n" + t.ErrorText.Render(s.errMsg) + "\n")
	}

	b.WriteString("\n" + t.MenuHint.Render("enter open · n new · esc home"))
	return t.Container.Render(b.String())
}
