// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ui implements the terminal front-end: a root model that owns
// navigation and a screen per application view. Every navigation passes
// through the route gate, so a protected screen can never be reached
// without a session token marker.
package ui

import (
	"log"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/chatter-tui/internal/api"
	"github.com/jeranaias/chatter-tui/internal/config"
	"github.com/jeranaias/chatter-tui/internal/history"
	"github.com/jeranaias/chatter-tui/internal/route"
	"github.com/jeranaias/chatter-tui/internal/session"
	"github.com/jeranaias/chatter-tui/internal/ui/components"
	"github.com/jeranaias/chatter-tui/internal/ui/styles"
)

// =============================================================================
// MESSAGES
// =============================================================================

// NavigateMsg requests a navigation to a path. The root model runs the
// route gate before the target screen is constructed.
type NavigateMsg struct {
	Path string
}

// Navigate builds a navigation command.
func Navigate(path string) tea.Cmd {
	return func() tea.Msg { return NavigateMsg{Path: path} }
}

// ForcedLogoutMsg is delivered when the request pipeline hits a 401 and
// the session has been torn down.
type ForcedLogoutMsg struct{}

// ConfigReloadedMsg carries a hot-reloaded configuration.
type ConfigReloadedMsg struct {
	Config *config.Config
}

// noticeMsg shows a transient status line on the current screen.
type noticeMsg struct {
	text  string
	isErr bool
}

// =============================================================================
// SCREEN
// =============================================================================

// Screen is one application view. Update returns the (possibly
// replaced) screen plus a command, mirroring tea.Model.
type Screen interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (Screen, tea.Cmd)
	View() string
}

// Deps bundles everything screens need. One instance is shared by the
// whole UI.
type Deps struct {
	Client   *api.Client
	Gate     *session.Gate
	Routes   *route.Gate
	History  *history.Store
	Theme    *styles.Theme
	Markdown *components.Markdown

	Width  int
	Height int
}

// =============================================================================
// APP
// =============================================================================

// App is the root model.
type App struct {
	deps    *Deps
	current Screen
	path    string
	notice  noticeMsg
}

// NewApp creates the root model. The first navigation target depends on
// session state: authenticated users land on home, everyone else on
// onboarding.
func NewApp(deps *Deps) *App {
	start := "/onboarding"
	if deps.Gate.IsAuthenticated() {
		start = route.HomePath
	}

	a := &App{deps: deps}
	a.navigate(start)
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return a.current.Init()
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.deps.Width = msg.Width
		a.deps.Height = msg.Height
		a.deps.Theme.SetSize(msg.Width, msg.Height)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}

	case NavigateMsg:
		a.notice = noticeMsg{}
		a.navigate(msg.Path)
		return a, a.current.Init()

	case ForcedLogoutMsg:
		a.notice = noticeMsg{text: "Session expired, please log in again", isErr: true}
		a.navigate(route.LoginPath)
		return a, a.current.Init()

	case ConfigReloadedMsg:
		a.deps.Theme = styles.NewTheme(msg.Config.UI.Theme)
		a.deps.Theme.SetSize(a.deps.Width, a.deps.Height)
		return a, nil

	case noticeMsg:
		a.notice = msg
		return a, nil
	}

	next, cmd := a.current.Update(msg)
	a.current = next
	return a, cmd
}

// View implements tea.Model.
func (a *App) View() string {
	view := a.current.View()
	if a.notice.text != "" {
		line := a.deps.Theme.Success.Render(a.notice.text)
		if a.notice.isErr {
			line = a.deps.Theme.ErrorText.Render(a.notice.text)
		}
		view = line + "\n" + view
	}
	view += "\n" + a.deps.Theme.StatusBar.Render(a.path)
	return a.deps.Theme.App.Render(view)
}

// navigate runs the route gate and swaps the current screen.
func (a *App) navigate(path string) {
	decision := a.deps.Routes.Decide(path)
	log.Printf("ROUTE | %s -> %s (%s)", path, decision.Target, decision.Class)

	target := decision.Target
	resume := ""
	if decision.Action == route.RedirectLogin {
		resume = route.RedirectParam(target)
		target = route.LoginPath
	}

	a.path = target
	a.current = a.screenFor(target, resume)
}

// screenFor constructs the screen backing a path.
func (a *App) screenFor(path, resume string) Screen {
	switch {
	case path == "/onboarding":
		return newOnboardingScreen(a.deps)
	case path == route.LoginPath:
		return newLoginScreen(a.deps, resume)
	case path == "/register":
		return newRegisterScreen(a.deps)
	case path == "/settings":
		return newSettingsScreen(a.deps)
	case path == "/voice":
		return newVoiceScreen(a.deps)
	case path == "/chat":
		return newChatListScreen(a.deps)
	case strings.HasPrefix(path, "/chat/"):
		return newChatScreen(a.deps, strings.TrimPrefix(path, "/chat/"))
	default:
		return newHomeScreen(a.deps)
	}
}

// notice builds a command that shows a status line.
func notice(text string, isErr bool) tea.Cmd {
	return func() tea.Msg { return noticeMsg{text: text, isErr: isErr} }
}
