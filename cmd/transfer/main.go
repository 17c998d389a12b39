package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"swift-transfer/cmd/transfer/ui"
	"swift-transfer/internal/api"
	"swift-transfer/internal/auth"
	"swift-transfer/internal/config"
	"swift-transfer/internal/logger"
	"swift-transfer/internal/store"
	"swift-transfer/internal/transfer"
)

func main() {
	cfg := config.Init()
	if err := logger.Init(cfg.LogPath); err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	if err := store.Init(cfg.CachePath); err != nil {
		logger.Errorf("local cache unavailable: %v", err)
	}

	client, err := api.New(cfg.BaseURL, auth.GetCurrentToken)
	if err != nil {
		fmt.Fprintf(os.Stderr, "backend config: %v\n", err)
		os.Exit(1)
	}

	app := &ui.App{
		API:        client,
		Uploader:   &transfer.Uploader{API: client},
		Downloader: &transfer.Downloader{API: client, Dir: cfg.DownloadDir},
	}

	p := tea.NewProgram(ui.NewRootModel(app), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "ui error: %v\n", err)
		os.Exit(1)
	}
}
