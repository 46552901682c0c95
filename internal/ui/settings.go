// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/chatter-tui/internal/model"
	"github.com/jeranaias/chatter-tui/internal/route"
	"github.com/jeranaias/chatter-tui/internal/ui/styles"
)

// =============================================================================
// SETTINGS SCREEN
// =============================================================================

var themeCycle = []string{model.ThemeDark, model.ThemeLight, model.ThemeSystem}

var languageCycle = []string{"en", "es", "fr", "de", "ja"}

type settingsScreen struct {
	deps     *Deps
	settings model.Settings
	cursor   int
	errMsg   string
}

const (
	settingNotifications = iota
	settingVoiceMode
	settingTheme
	settingLanguage
	settingCount
)

func newSettingsScreen(deps *Deps) *settingsScreen {
	return &settingsScreen{deps: deps, settings: deps.Gate.Settings()}
}

func (s *settingsScreen) Init() tea.Cmd {
	return nil
}

func (s *settingsScreen) Update(msg tea.Msg) (Screen, tea.Cmd) {
	key, isKey := msg.(tea.KeyMsg)
	if !isKey {
		return s, nil
	}

	switch key.String() {
	case "up", "k":
		if s.cursor > 0 {
			s.cursor--
		}
	case "down", "j":
		if s.cursor < settingCount-1 {
			s.cursor++
		}
	case "enter", " ", "right", "left":
		return s, s.toggle()
	case "esc":
		return s, Navigate(route.HomePath)
	}
	return s, nil
}

// toggle flips or cycles the selected setting and persists the patch.
func (s *settingsScreen) toggle() tea.Cmd {
	var patch model.SettingsPatch

	switch s.cursor {
	case settingNotifications:
		v := !s.settings.Notifications
		patch.Notifications = &v
	case settingVoiceMode:
		v := !s.settings.VoiceMode
		patch.VoiceMode = &v
	case settingTheme:
		v := nextOf(themeCycle, s.settings.Theme)
		patch.Theme = &v
	case settingLanguage:
		v := nextOf(languageCycle, s.settings.Language)
		patch.Language = &v
	}

	merged, err := s.deps.Gate.UpdateSettings(patch)
	if err != nil {
		s.errMsg = "Failed to save settings: " + err.Error()
		return nil
	}
	s.errMsg = ""

	themeChanged := merged.Theme != s.settings.Theme
	s.settings = merged
	if themeChanged {
		s.deps.Theme = styles.NewTheme(merged.Theme)
		s.deps.Theme.SetSize(s.deps.Width, s.deps.Height)
	}
	return nil
}

// nextOf returns the value after current in the cycle, wrapping around.
func nextOf(cycle []string, current string) string {
	for i, v := range cycle {
		if v == current {
			return cycle[(i+1)%len(cycle)]
		}
	}
	return cycle[0]
}

func (s *settingsScreen) View() string {
	t := s.deps.Theme

	onOff := func(v bool) string {
		if v {
			return t.Success.Render("on")
		}
		return t.Muted.Render("off")
	}

	rows := []struct {
		label string
		value string
	}{
		{"Notifications", onOff(s.settings.Notifications)},
		{"Voice mode", onOff(s.settings.VoiceMode)},
		{"Theme", s.settings.Theme},
		{"Language", s.settings.Language},
	}

	var b strings.Builder
	b.WriteString(t.HeaderTitle.Render("Settings") + "\n\n")

	for i, row := range rows {
		line := row.label + ": " + row.value
		if i == s.cursor {
			b.WriteString(t.MenuSelected.Render("> "+line) + "\n")
		} else {
			b.WriteString(t.MenuItem.Render("  "+line) + "\n")
		}
	}

	if s.errMsg != "" {
		b.WriteString("\n" + t.ErrorText.Render(s.errMsg) + "\n")
	}

	b.WriteString("\n" + t.MenuHint.Render("enter toggle · esc home"))
	return t.Container.Render(b.String())
}
