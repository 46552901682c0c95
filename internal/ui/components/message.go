// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/chatter-tui/internal/model"
	"github.com/jeranaias/chatter-tui/internal/ui/styles"
)

// =============================================================================
// MESSAGE BUBBLE COMPONENT
// =============================================================================

// MessageBubble renders one chat message. User messages are plain text;
// bot messages are rendered as markdown with syntax-highlighted code
// blocks.
type MessageBubble struct {
	Message  model.ChatMessage
	Width    int
	Pending  bool
	theme    *styles.Theme
	markdown *Markdown
}

// NewMessageBubble creates a bubble for one message.
func NewMessageBubble(msg model.ChatMessage, theme *styles.Theme, md *Markdown) *MessageBubble {
	return &MessageBubble{
		Message:  msg,
		Width:    80,
		theme:    theme,
		markdown: md,
	}
}

// SetWidth sets the available render width.
func (b *MessageBubble) SetWidth(width int) {
	b.Width = width
}

// View renders the bubble.
func (b *MessageBubble) View() string {
	if b.Message.IsFromBot() {
		return b.renderBot()
	}
	return b.renderUser()
}

func (b *MessageBubble) renderUser() string {
	inner := b.Width - 6
	if inner < 10 {
		inner = 10
	}

	bubble := b.theme.UserBubble.MaxWidth(b.Width - 2).Render(
		lipgloss.NewStyle().Width(inner).Render(b.Message.Content))

	label := "you"
	if b.Pending {
		label = "you (sending...)"
	}
	header := b.theme.Timestamp.Render(label + " " + b.Message.Timestamp.Format("15:04"))

	return lipgloss.JoinVertical(lipgloss.Right, header, bubble)
}

func (b *MessageBubble) renderBot() string {
	inner := b.Width - 6
	if inner < 10 {
		inner = 10
	}

	content := b.markdown.Render(b.Message.Content, inner)
	bubble := b.theme.BotBubble.MaxWidth(b.Width - 2).Render(content)
	header := b.theme.Timestamp.Render("bot " + b.Message.Timestamp.Format("15:04"))

	return lipgloss.JoinVertical(lipgloss.Left, header, bubble)
}
