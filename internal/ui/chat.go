// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/time/rate"

	"github.com/jeranaias/chatter-tui/internal/model"
	"github.com/jeranaias/chatter-tui/internal/ui/components"
)

// maxMessageLength bounds a single outbound message.
const maxMessageLength = 4000

// =============================================================================
// CHAT SCREEN
// =============================================================================

// messagesLoadedMsg carries the authoritative message list for the
// open thread.
type messagesLoadedMsg struct {
	messages []model.ChatMessage
	errMsg   string
}

// replyMsg is the outcome of one send: the bot's reply, or a failure
// tied back to the optimistic echo it replaces.
type replyMsg struct {
	optimisticID string
	reply        model.ChatMessage
	errMsg       string
}

type chatScreen struct {
	deps      *Deps
	sessionID string

	messages []model.ChatMessage
	pending  map[string]bool

	vp      viewport.Model
	input   textinput.Model
	spin    spinner.Model
	limiter *rate.Limiter

	waiting bool
	errMsg  string
}

func newChatScreen(deps *Deps, sessionID string) *chatScreen {
	input := textinput.New()
	input.Placeholder = "Type a message..."
	input.CharLimit = maxMessageLength
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = deps.Theme.Spinner

	width, height := deps.Width, deps.Height
	if width <= 0 {
		width = 80
	}
	if height <= 0 {
		height = 24
	}
	vp := viewport.New(width-4, height-8)

	s := &chatScreen{
		deps:      deps,
		sessionID: sessionID,
		pending:   make(map[string]bool),
		vp:        vp,
		input:     input,
		spin:      sp,
		// Bursts of two, then one message per second.
		limiter: rate.NewLimiter(rate.Every(time.Second), 2),
	}

	// Cached messages render immediately; the backend fetch replaces
	// them when it lands.
	if cached, err := deps.History.Messages(sessionID); err == nil && len(cached) > 0 {
		s.messages = cached
		s.refreshViewport()
	}
	return s
}

func (s *chatScreen) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, s.spin.Tick, s.fetch())
}

func (s *chatScreen) fetch() tea.Cmd {
	deps, sessionID := s.deps, s.sessionID
	return func() tea.Msg {
		env := deps.Client.ChatMessages(context.Background(), sessionID)
		if !env.Success {
			return messagesLoadedMsg{errMsg: env.Error}
		}
		if err := deps.History.SaveMessages(env.Data); err != nil {
			log.Printf("UI | failed to cache messages: %v", err)
		}
		return messagesLoadedMsg{messages: env.Data}
	}
}

func (s *chatScreen) Update(msg tea.Msg) (Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.vp.Width = msg.Width - 4
		s.vp.Height = msg.Height - 8
		s.refreshViewport()

	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			return s, s.send()
		case "esc":
			return s, Navigate("/chat")
		case "pgup", "pgdown":
			var cmd tea.Cmd
			s.vp, cmd = s.vp.Update(msg)
			return s, cmd
		}

	case messagesLoadedMsg:
		if msg.errMsg != "" {
			s.errMsg = msg.errMsg
			return s, nil
		}
		// Keep optimistic echoes that the server does not know yet.
		merged := msg.messages
		for _, m := range s.messages {
			if s.pending[m.ID] {
				merged = append(merged, m)
			}
		}
		s.messages = merged
		s.errMsg = ""
		s.refreshViewport()
		return s, nil

	case replyMsg:
		s.waiting = false
		delete(s.pending, msg.optimisticID)
		if msg.errMsg != "" {
			// The echo stays visible; the failure is surfaced instead
			// of silently dropping what the user typed.
			s.errMsg = msg.errMsg
			s.refreshViewport()
			return s, nil
		}
		s.errMsg = ""
		s.messages = append(s.messages, msg.reply)
		if err := s.deps.History.SaveMessages([]model.ChatMessage{msg.reply}); err != nil {
			log.Printf("UI | failed to cache reply: %v", err)
		}
		s.refreshViewport()
		return s, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		s.spin, cmd = s.spin.Update(msg)
		return s, cmd
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	cmds = append(cmds, cmd)
	s.vp, cmd = s.vp.Update(msg)
	cmds = append(cmds, cmd)
	return s, tea.Batch(cmds...)
}

// send validates, throttles and dispatches the typed message, echoing
// it into the transcript immediately.
func (s *chatScreen) send() tea.Cmd {
	content := strings.TrimSpace(s.input.Value())
	if content == "" || s.waiting {
		return nil
	}
	if !s.limiter.Allow() {
		s.errMsg = "Slow down a moment"
		return nil
	}

	// Normalize before the bytes leave the client so the transcript and
	// the server agree on one canonical form.
	content = norm.NFC.String(content)

	echo := model.ChatMessage{
		ID:        uuid.NewString(),
		SessionID: s.sessionID,
		Content:   content,
		Sender:    model.SenderUser,
		Timestamp: time.Now(),
	}
	s.messages = append(s.messages, echo)
	s.pending[echo.ID] = true
	s.input.Reset()
	s.waiting = true
	s.errMsg = ""
	s.refreshViewport()

	deps, sessionID := s.deps, s.sessionID
	return func() tea.Msg {
		env := deps.Client.SendMessage(context.Background(), sessionID, content)
		if !env.Success {
			return replyMsg{optimisticID: echo.ID, errMsg: env.Error}
		}
		if err := deps.History.SaveMessages([]model.ChatMessage{echo}); err != nil {
			log.Printf("UI | failed to cache message: %v", err)
		}
		return replyMsg{optimisticID: echo.ID, reply: env.Data}
	}
}

// refreshViewport re-renders the transcript and pins the view to the
// newest message.
func (s *chatScreen) refreshViewport() {
	var parts []string
	for _, m := range s.messages {
		bubble := components.NewMessageBubble(m, s.deps.Theme, s.deps.Markdown)
		bubble.SetWidth(s.vp.Width)
		bubble.Pending = s.pending[m.ID]
		parts = append(parts, bubble.View())
	}
	s.vp.SetContent(strings.Join(parts, "\n"))
	s.vp.GotoBottom()
}

func (s *chatScreen) View() string {
	t := s.deps.Theme
	var b strings.Builder

	b.WriteString(t.Header.Render("chat") + "\n")
	b.WriteString(s.vp.View() + "\n")

	if s.waiting {
		b.WriteString(s.spin.View() + " " + t.Muted.Render("Thinking...") + "\n")
	}
	if s.errMsg != "" {
		b.WriteString(t.ErrorText.Render(s.errMsg) + "\n")
	}

	b.WriteString(t.FieldActive.Render(s.input.View()) + "\n")
	b.WriteString(t.MenuHint.Render("enter send · pgup/pgdn scroll · esc back"))
	return b.String()
}
