// covidash TUI: the pandemic summary dashboard.
//
// Usage:
//
//	covidash-tui [flags]
//
// Flags:
//
//	--config  Path to config file (default: ~/.covidash/config.yaml)
//	--db      Path to SQLite database file (default: ~/.covidash/covidash.db)
//	--select  Country code to select at startup, e.g. DE or #DE
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Mr-Dark-debug/covidash/internal/config"
	"github.com/Mr-Dark-debug/covidash/internal/database"
	"github.com/Mr-Dark-debug/covidash/internal/logger"
	"github.com/Mr-Dark-debug/covidash/internal/tui"
)

func main() {
	configPath := flag.String("config", config.DefaultPath(), "Path to config file")
	dbPath := flag.String("db", "", "Path to SQLite database file")
	selectCode := flag.String("select", "", "Country code to select at startup")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}

	// The alternate screen owns stdout, so logs go to a file.
	lg, closer, err := logger.OpenFile(cfg.LogPath, logger.ParseLevel(cfg.LogLevel))
	if err != nil {
		log.Fatalf("Failed to open log file %s: %v", cfg.LogPath, err)
	}
	defer closer.Close()

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		log.Fatalf("Failed to create database directory: %v", err)
	}
	store, err := database.NewDBService(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database at %s: %v\n"+
			"Fetch a snapshot with: covidash fetch", cfg.DBPath, err)
	}
	defer store.Close()

	model := tui.NewModel(store, tui.Options{
		Top:      cfg.Dashboard.Top,
		Batch:    cfg.Dashboard.Batch,
		Animated: cfg.Dashboard.Animated,
		Legend:   cfg.Dashboard.Legend,
		Refresh:  cfg.Dashboard.Refresh,
		Select:   *selectCode,
		Logger:   lg,
	})
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseAllMotion())

	lg.Info("dashboard started", "db", cfg.DBPath)
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}
}
