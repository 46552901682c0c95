// chatter TUI - A terminal client for the chatter assistant.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/jeranaias/chatter-tui/internal/api"
	"github.com/jeranaias/chatter-tui/internal/config"
	"github.com/jeranaias/chatter-tui/internal/history"
	"github.com/jeranaias/chatter-tui/internal/route"
	"github.com/jeranaias/chatter-tui/internal/session"
	"github.com/jeranaias/chatter-tui/internal/ui"
	"github.com/jeranaias/chatter-tui/internal/ui/components"
	"github.com/jeranaias/chatter-tui/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func main() {
	if len(os.Args) > 1 && (os.Args[1] == "--version" || os.Args[1] == "-v") {
		fmt.Printf("chatter %s (%s, %s)\n", Version, GitCommit, BuildDate)
		return
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "chatter requires an interactive terminal")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	setupLogging(cfg.Storage.DataDir)

	store, err := session.NewStoreWithDir(cfg.Storage.DataDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open session store: %v\n", err)
		os.Exit(1)
	}

	hist, err := history.Open(cfg.Storage.DataDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open history cache: %v\n", err)
		os.Exit(1)
	}
	defer hist.Close()

	client := api.NewClient(cfg.API.BaseURL, time.Duration(cfg.API.TimeoutMS)*time.Millisecond).
		WithTokenSource(store)

	gate := session.NewGate(store, client).
		WithSessionCache(hist)

	// The route gate probes the persisted marker only; it never reads
	// in-memory session state.
	routes := route.NewGate(func() bool {
		return session.TokenMarkerPresent(store.Dir())
	})

	deps := &ui.Deps{
		Client:   client,
		Gate:     gate,
		Routes:   routes,
		History:  hist,
		Theme:    styles.NewTheme(gate.Settings().Theme),
		Markdown: components.NewMarkdown(),
	}

	p := tea.NewProgram(
		ui.NewApp(deps),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	// A 401 anywhere in the pipeline tears the session down and bounces
	// the UI to login.
	client.WithUnauthorizedHook(gate.HandleUnauthorized)
	gate.WithForcedLogoutHook(func() {
		p.Send(ui.ForcedLogoutMsg{})
	})

	// Hot-reload the config file; theme changes apply live.
	if path, err := config.ConfigPath(); err == nil {
		watcher, werr := config.Watch(path, func(next *config.Config) {
			p.Send(ui.ConfigReloadedMsg{Config: next})
		})
		if werr != nil {
			log.Printf("MAIN | config watcher unavailable: %v", werr)
		} else {
			defer watcher.Close()
		}
	}

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running chatter: %v\n", err)
		os.Exit(1)
	}
}

// setupLogging sends the standard logger to a file; stderr would
// corrupt the alternate screen.
func setupLogging(dataDir string) {
	logPath := filepath.Join(dataDir, "chatter.log")
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		log.SetOutput(io.Discard)
		return
	}
	log.SetOutput(f)
	log.SetFlags(log.LstdFlags)
}
