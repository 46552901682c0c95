// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/chatter-tui/internal/model"
	"github.com/jeranaias/chatter-tui/internal/route"
)

// =============================================================================
// LOGIN SCREEN
// =============================================================================

// authResultMsg is the outcome of an async login or register call.
type authResultMsg struct {
	user model.User
	err  error
}

type loginScreen struct {
	deps   *Deps
	email  textinput.Model
	pass   textinput.Model
	focus  int
	busy   bool
	errMsg string

	// resume is the protected path the visitor was bounced off, restored
	// after a successful login.
	resume string
}

func newLoginScreen(deps *Deps, resume string) *loginScreen {
	email := textinput.New()
	email.Placeholder = "email"
	email.CharLimit = 254
	email.Focus()

	pass := textinput.New()
	pass.Placeholder = "password"
	pass.EchoMode = textinput.EchoPassword
	pass.EchoCharacter = '*'
	pass.CharLimit = 128

	return &loginScreen{deps: deps, email: email, pass: pass, resume: resume}
}

func (s *loginScreen) Init() tea.Cmd {
	return textinput.Blink
}

func (s *loginScreen) Update(msg tea.Msg) (Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if s.busy {
			return s, nil
		}
		switch msg.String() {
		case "tab", "shift+tab", "up", "down":
			s.toggleFocus()
			return s, nil
		case "enter":
			return s, s.submit()
		case "esc":
			return s, Navigate("/onboarding")
		case "ctrl+r":
			return s, Navigate("/register")
		}

	case authResultMsg:
		s.busy = false
		if msg.err != nil {
			s.errMsg = msg.err.Error()
			return s, nil
		}
		target := route.HomePath
		if s.resume != "" {
			target = s.resume
		}
		return s, tea.Batch(
			notice("Welcome back, "+msg.user.DisplayName(), false),
			Navigate(target),
		)
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	s.email, cmd = s.email.Update(msg)
	cmds = append(cmds, cmd)
	s.pass, cmd = s.pass.Update(msg)
	cmds = append(cmds, cmd)
	return s, tea.Batch(cmds...)
}

func (s *loginScreen) toggleFocus() {
	s.focus = (s.focus + 1) % 2
	if s.focus == 0 {
		s.email.Focus()
		s.pass.Blur()
	} else {
		s.pass.Focus()
		s.email.Blur()
	}
}

// submit validates locally first; invalid input never reaches the
// request pipeline.
func (s *loginScreen) submit() tea.Cmd {
	email := strings.TrimSpace(s.email.Value())
	pass := s.pass.Value()

	switch {
	case email == "":
		s.errMsg = "Email is required"
		return nil
	case !strings.Contains(email, "@"):
		s.errMsg = "Enter a valid email address"
		return nil
	case pass == "":
		s.errMsg = "Password is required"
		return nil
	}

	s.errMsg = ""
	s.busy = true
	gate := s.deps.Gate
	return func() tea.Msg {
		user, err := gate.Login(context.Background(), email, pass)
		return authResultMsg{user: user, err: err}
	}
}

func (s *loginScreen) View() string {
	t := s.deps.Theme
	var b strings.Builder

	b.WriteString(t.HeaderTitle.Render("chatter") + " " + t.HeaderSubtitle.Render("sign in") + "\n\n")

	emailField := t.FieldBlurred
	passField := t.FieldBlurred
	if s.focus == 0 {
		emailField = t.FieldActive
	} else {
		passField = t.FieldActive
	}
	b.WriteString(t.Label.Render("Email") + "\n")
	b.WriteString(emailField.Render(s.email.View()) + "\n")
	b.WriteString(t.Label.Render("Password") + "\n")
	b.WriteString(passField.Render(s.pass.View()) + "\n\n")

	if s.busy {
		b.WriteString(t.Muted.Render("Signing in...") + "\n")
	}
	if s.errMsg != "" {
		b.WriteString(t.ErrorText.Render(s.errMsg) + "\n")
	}
	if s.resume != "" {
		b.WriteString(t.Muted.Render("You'll be taken back to "+s.resume) + "\n")
	}

	b.WriteString("\n" + t.MenuHint.Render("enter sign in · ctrl+r register · esc back"))
	return t.Container.Render(b.String())
}
