// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the chatter
// TUI.
package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/jeranaias/chatter-tui/internal/model"
)

// Theme holds the styled components for the application. A theme is
// built once per settings change and shared by every screen.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	ColorProfile termenv.Profile

	// Layout dimensions
	Width  int
	Height int

	// ==========================================================================
	// APPLICATION CONTAINER STYLES
	// ==========================================================================

	App       lipgloss.Style
	Container lipgloss.Style

	// ==========================================================================
	// HEADER STYLES
	// ==========================================================================

	Header         lipgloss.Style
	HeaderTitle    lipgloss.Style
	HeaderSubtitle lipgloss.Style

	// ==========================================================================
	// MESSAGE BUBBLE STYLES
	// ==========================================================================

	UserBubble lipgloss.Style
	BotBubble  lipgloss.Style
	Timestamp  lipgloss.Style

	// ==========================================================================
	// FORM STYLES
	// ==========================================================================

	Label        lipgloss.Style
	FieldActive  lipgloss.Style
	FieldBlurred lipgloss.Style
	Button       lipgloss.Style
	ButtonFocus  lipgloss.Style

	// ==========================================================================
	// MENU STYLES
	// ==========================================================================

	MenuItem     lipgloss.Style
	MenuSelected lipgloss.Style
	MenuHint     lipgloss.Style

	// ==========================================================================
	// STATUS STYLES
	// ==========================================================================

	StatusBar lipgloss.Style
	Spinner   lipgloss.Style
	ErrorText lipgloss.Style
	Success   lipgloss.Style
	Muted     lipgloss.Style
}

// NewTheme builds a theme for the given mode ("dark", "light" or
// "system"). System mode asks the terminal for its background color.
func NewTheme(mode string) *Theme {
	isDark := true
	switch mode {
	case model.ThemeLight:
		isDark = false
	case model.ThemeSystem:
		isDark = termenv.HasDarkBackground()
	}

	t := &Theme{
		IsDark:       isDark,
		ColorProfile: termenv.ColorProfile(),
	}
	t.initStyles()
	return t
}

func (t *Theme) initStyles() {
	var (
		accent    = lipgloss.Color("63")
		userTone  = lipgloss.Color("39")
		botTone   = lipgloss.Color("170")
		errTone   = lipgloss.Color("196")
		okTone    = lipgloss.Color("42")
		faint     = lipgloss.Color("241")
		fieldTone = lipgloss.Color("238")
	)
	if !t.IsDark {
		accent = lipgloss.Color("57")
		userTone = lipgloss.Color("26")
		botTone = lipgloss.Color("90")
		faint = lipgloss.Color("245")
		fieldTone = lipgloss.Color("250")
	}

	t.App = lipgloss.NewStyle().Padding(0, 1)
	t.Container = lipgloss.NewStyle().Padding(1, 2)

	t.Header = lipgloss.NewStyle().Bold(true).Foreground(accent).Padding(0, 1)
	t.HeaderTitle = lipgloss.NewStyle().Bold(true).Foreground(accent)
	t.HeaderSubtitle = lipgloss.NewStyle().Foreground(faint)

	t.UserBubble = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(userTone).
		Padding(0, 1)
	t.BotBubble = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(botTone).
		Padding(0, 1)
	t.Timestamp = lipgloss.NewStyle().Foreground(faint).Faint(true)

	t.Label = lipgloss.NewStyle().Bold(true)
	t.FieldActive = lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(accent).
		Padding(0, 1)
	t.FieldBlurred = lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(fieldTone).
		Padding(0, 1)
	t.Button = lipgloss.NewStyle().
		Foreground(faint).
		Padding(0, 2)
	t.ButtonFocus = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("230")).
		Background(accent).
		Padding(0, 2)

	t.MenuItem = lipgloss.NewStyle().Padding(0, 2)
	t.MenuSelected = lipgloss.NewStyle().
		Bold(true).
		Foreground(accent).
		Padding(0, 2)
	t.MenuHint = lipgloss.NewStyle().Foreground(faint)

	t.StatusBar = lipgloss.NewStyle().Foreground(faint).Padding(0, 1)
	t.Spinner = lipgloss.NewStyle().Foreground(accent)
	t.ErrorText = lipgloss.NewStyle().Foreground(errTone).Bold(true)
	t.Success = lipgloss.NewStyle().Foreground(okTone)
	t.Muted = lipgloss.NewStyle().Foreground(faint)
}

// SetSize records the current terminal dimensions.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}
