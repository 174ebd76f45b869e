package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"linguatui/config"
	"linguatui/provider"
	"linguatui/storage"
	"linguatui/ui"
)

const Version = "v0.1.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize debug logging after config is loaded
	config.InitDebugLog(cfg.DataDir())

	sessionStorage, err := storage.NewSessionStorage(cfg.DataDir())
	if err != nil {
		fmt.Printf("Failed to initialize session storage: %v\n", err)
		os.Exit(1)
	}

	searchIndex, err := storage.NewSearchIndex(cfg.DataDir())
	if err != nil {
		// Search degrades to per-session scanning without the index
		if config.DebugLog != nil {
			config.DebugLog.Printf("Warning: search index unavailable: %v", err)
		}
		searchIndex = nil
	} else {
		defer searchIndex.Close()
		if err := searchIndex.Rebuild(sessionStorage); err != nil && config.DebugLog != nil {
			config.DebugLog.Printf("Warning: search index rebuild failed: %v", err)
		}
	}

	clients := provider.InitializeClients(cfg)

	// The availability tracker polls the on-device runtime until it
	// settles; it stops on its own once the model is ready or hopeless.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if clients.Tracker != nil {
		go clients.Tracker.Run(ctx)
	}

	// Load last session
	var lastSession *storage.Session
	if lastSessionID, err := sessionStorage.LoadCurrentSessionID(); err == nil {
		lastSession, _ = sessionStorage.Load(lastSessionID)
	}

	// Any command line arguments are the text to look up
	selection := strings.TrimSpace(strings.Join(os.Args[1:], " "))

	p := tea.NewProgram(
		ui.NewAppView(cfg, clients, sessionStorage, searchIndex, lastSession, selection, Version),
		tea.WithAltScreen(),
	)

	if _, err := p.Run(); err != nil {
		fmt.Printf("Error running linguatui: %v\n", err)
		os.Exit(1)
	}
}
