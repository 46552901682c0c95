// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/chatter-tui/internal/route"
)

// =============================================================================
// VOICE SCREEN
// =============================================================================

// Transcription is simulated: no audio capture backend exists yet, so
// the screen plays back a canned transcript at speaking pace. The
// screen flow (arm, record, review, hand off to chat) is the real one.

// transcriptTickMsg appends the next simulated word.
type transcriptTickMsg struct{}

var simulatedTranscript = strings.Fields(
	"could you summarize the notes from this morning and draft a short follow up",
)

const wordInterval = 280 * time.Millisecond

type voiceScreen struct {
	deps      *Deps
	recording bool
	words     []string
	spin      spinner.Model
}

func newVoiceScreen(deps *Deps) *voiceScreen {
	sp := spinner.New()
	sp.Spinner = spinner.Pulse
	sp.Style = deps.Theme.Spinner
	return &voiceScreen{deps: deps, spin: sp}
}

func (s *voiceScreen) Init() tea.Cmd {
	return s.spin.Tick
}

func tickTranscript() tea.Cmd {
	return tea.Tick(wordInterval, func(time.Time) tea.Msg {
		return transcriptTickMsg{}
	})
}

func (s *voiceScreen) Update(msg tea.Msg) (Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case " ":
			s.recording = !s.recording
			if s.recording {
				s.words = nil
				return s, tickTranscript()
			}
			return s, nil
		case "enter":
			if len(s.words) == 0 || s.recording {
				return s, nil
			}
			// Hand the transcript to a fresh chat thread.
			return s, Navigate("/chat")
		case "esc":
			return s, Navigate(route.HomePath)
		}

	case transcriptTickMsg:
		if !s.recording {
			return s, nil
		}
		if len(s.words) >= len(simulatedTranscript) {
			s.recording = false
			return s, nil
		}
		s.words = append(s.words, simulatedTranscript[len(s.words)])
		return s, tickTranscript()

	case spinner.TickMsg:
		var cmd tea.Cmd
		s.spin, cmd = s.spin.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *voiceScreen) View() string {
	t := s.deps.Theme
	var b strings.Builder

	b.WriteString(t.HeaderTitle.Render("Voice mode") + "\n\n")

	if !s.deps.Gate.Settings().VoiceMode {
		b.WriteString(t.Muted.Render("Voice mode is disabled in settings.") + "\n\n")
		b.WriteString(t.MenuHint.Render("esc back"))
		return t.Container.Render(b.String())
	}

	switch {
	case s.recording:
		b.WriteString(s.spin.View() + " " + t.Success.Render("Listening...") + "\n\n")
	case len(s.words) > 0:
		b.WriteString(t.Muted.Render("Transcript ready:") + "\n\n")
	default:
		b.WriteString(t.Muted.Render("Press space to start recording.") + "\n\n")
	}

	if len(s.words) > 0 {
		b.WriteString(strings.Join(s.words, " ") + "\n\n")
	}

	b.WriteString(t.MenuHint.Render("space record/stop · enter send to chat · esc back"))
	return t.Container.Render(b.String())
}
