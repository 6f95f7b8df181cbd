// NeuroForge TUI - A terminal chat client backed by a local inference server.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/neuroforge/neuroforge-tui/internal/auth"
	"github.com/neuroforge/neuroforge-tui/internal/config"
	"github.com/neuroforge/neuroforge-tui/internal/history"
	"github.com/neuroforge/neuroforge-tui/internal/inference"
	"github.com/neuroforge/neuroforge-tui/internal/session"
	"github.com/neuroforge/neuroforge-tui/internal/storage"
	"github.com/neuroforge/neuroforge-tui/internal/ui/chat"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func main() {
	var (
		newChat     = flag.Bool("new-chat", false, "start with an empty chat instead of restoring the last one")
		configPath  = flag.String("config", "", "path to config file (default ~/.neuroforge/config.toml)")
		endpoint    = flag.String("endpoint", "", "inference endpoint URL (overrides config)")
		userFlag    = flag.String("user", "", "user identity (overrides config and environment)")
		showVersion = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("neuroforge %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
		return
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "neuroforge requires an interactive terminal")
		os.Exit(1)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *endpoint != "" {
		cfg.Inference.URL = *endpoint
	}
	if *userFlag != "" {
		cfg.User = *userFlag
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid config: %v\n", err)
		os.Exit(1)
	}

	closeLog := setupLogging()
	defer closeLog()

	user, err := auth.Resolve(cfg.User)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error resolving user identity: %v\n", err)
		os.Exit(1)
	}

	dbPath, err := cfg.DatabasePath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error resolving database path: %v\n", err)
		os.Exit(1)
	}
	store, err := storage.NewChatStore(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening chat database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	client := inference.NewClientWithConfig(&inference.ClientConfig{
		URL:     cfg.Inference.URL,
		Timeout: cfg.InferenceTimeout(),
	})

	manager := history.NewManager(store)
	tabs := session.NewTabState()
	if *newChat {
		tabs.MarkNewChat()
	}
	orch := session.NewOrchestrator(store, client, tabs, user.ID)

	m := chat.New(orch, manager, store, user.ID, cfg, tabs.NewChatStarted())

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running neuroforge: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFrom(path)
	}
	return config.Load()
}

// setupLogging sends the standard logger to a file under the config dir so
// diagnostics never corrupt the alternate screen. Failures fall back to
// discarding log output.
func setupLogging() func() {
	dir, err := config.ConfigDir()
	if err != nil {
		log.SetOutput(io.Discard)
		return func() {}
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		log.SetOutput(io.Discard)
		return func() {}
	}

	f, err := os.OpenFile(filepath.Join(dir, "neuroforge.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		log.SetOutput(io.Discard)
		return func() {}
	}
	log.SetOutput(f)
	return func() { f.Close() }
}
