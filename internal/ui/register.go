// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/chatter-tui/internal/route"
)

// minPasswordLength is enforced locally before the request pipeline is
// involved.
const minPasswordLength = 8

// =============================================================================
// REGISTER SCREEN
// =============================================================================

type registerScreen struct {
	deps   *Deps
	fields []textinput.Model
	focus  int
	busy   bool
	errMsg string
}

const (
	regFieldEmail = iota
	regFieldUsername
	regFieldPassword
	regFieldConfirm
	regFieldCount
)

func newRegisterScreen(deps *Deps) *registerScreen {
	mk := func(placeholder string, secret bool) textinput.Model {
		ti := textinput.New()
		ti.Placeholder = placeholder
		ti.CharLimit = 254
		if secret {
			ti.EchoMode = textinput.EchoPassword
			ti.EchoCharacter = '*'
			ti.CharLimit = 128
		}
		return ti
	}

	fields := []textinput.Model{
		mk("email", false),
		mk("username", false),
		mk("password", true),
		mk("confirm password", true),
	}
	fields[regFieldEmail].Focus()

	return &registerScreen{deps: deps, fields: fields}
}

func (s *registerScreen) Init() tea.Cmd {
	return textinput.Blink
}

func (s *registerScreen) Update(msg tea.Msg) (Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if s.busy {
			return s, nil
		}
		switch msg.String() {
		case "tab", "down":
			s.setFocus((s.focus + 1) % regFieldCount)
			return s, nil
		case "shift+tab", "up":
			s.setFocus((s.focus + regFieldCount - 1) % regFieldCount)
			return s, nil
		case "enter":
			return s, s.submit()
		case "esc":
			return s, Navigate(route.LoginPath)
		}

	case authResultMsg:
		s.busy = false
		if msg.err != nil {
			s.errMsg = msg.err.Error()
			return s, nil
		}
		return s, tea.Batch(
			notice("Account created, welcome "+msg.user.DisplayName(), false),
			Navigate(route.HomePath),
		)
	}

	var cmds []tea.Cmd
	for i := range s.fields {
		var cmd tea.Cmd
		s.fields[i], cmd = s.fields[i].Update(msg)
		cmds = append(cmds, cmd)
	}
	return s, tea.Batch(cmds...)
}

func (s *registerScreen) setFocus(idx int) {
	s.fields[s.focus].Blur()
	s.focus = idx
	s.fields[s.focus].Focus()
}

// submit runs the local validation rules. A failing form never reaches
// the request pipeline.
func (s *registerScreen) submit() tea.Cmd {
	email := strings.TrimSpace(s.fields[regFieldEmail].Value())
	username := strings.TrimSpace(s.fields[regFieldUsername].Value())
	pass := s.fields[regFieldPassword].Value()
	confirm := s.fields[regFieldConfirm].Value()

	switch {
	case email == "" || !strings.Contains(email, "@"):
		s.errMsg = "Enter a valid email address"
		return nil
	case username == "":
		s.errMsg = "Username is required"
		return nil
	case len(pass) < minPasswordLength:
		s.errMsg = "Password must be at least 8 characters"
		return nil
	case pass != confirm:
		s.errMsg = "Passwords do not match"
		return nil
	}

	s.errMsg = ""
	s.busy = true
	gate := s.deps.Gate
	return func() tea.Msg {
		user, err := gate.Register(context.Background(), email, pass, username)
		return authResultMsg{user: user, err: err}
	}
}

func (s *registerScreen) View() string {
	t := s.deps.Theme
	labels := []string{"Email", "Username", "Password", "Confirm password"}

	var b strings.Builder
	b.WriteString(t.HeaderTitle.Render("chatter") + " " + t.HeaderSubtitle.Render("create account") + "\n\n")

	for i, f := range s.fields {
		style := t.FieldBlurred
		if i == s.focus {
			style = t.FieldActive
		}
		b.WriteString(t.Label.Render(labels[i]) + "\n")
		b.WriteString(style.Render(f.View()) + "\n")
	}
	b.WriteString("\n")

	if s.busy {
		b.WriteString(t.Muted.Render("Creating account...") + "\n")
	}
	if s.errMsg != "" {
		b.WriteString(t.ErrorText.Render(s.errMsg) + "\n")
	}

	b.WriteString("\n" + t.MenuHint.Render("enter create · esc back to login"))
	return t.Container.Render(b.String())
}
