// covidash daemon: polls the summary feed on a schedule and keeps the
// snapshot cache current.
//
// Usage:
//
//	covidash-daemon [flags]
//
// Flags:
//
//	--config    Path to config file (default: ~/.covidash/config.yaml)
//	--db        Path to SQLite database file (default: ~/.covidash/covidash.db)
//	--source    Feed URL or local JSON file
//	--schedule  Cron spec for polls (default: @every 30m)
//	--metrics   HTTP address for Prometheus metrics (default: 127.0.0.1:9879)
//	--keep      Snapshots to retain, 0 keeps all (default: 500)
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/Mr-Dark-debug/covidash/internal/config"
	"github.com/Mr-Dark-debug/covidash/internal/database"
	"github.com/Mr-Dark-debug/covidash/internal/feed"
	"github.com/Mr-Dark-debug/covidash/internal/logger"
)

func main() {
	configPath := flag.String("config", config.DefaultPath(), "Path to config file")
	dbPath := flag.String("db", "", "Path to SQLite database file")
	source := flag.String("source", "", "Feed URL or local JSON file")
	schedule := flag.String("schedule", "", "Cron spec for polls")
	metrics := flag.String("metrics", "", "Prometheus metrics HTTP address (\"off\" disables)")
	keep := flag.Int("keep", -1, "Snapshots to retain, 0 keeps all")
	logJSON := flag.Bool("log-json", false, "Log JSON records instead of text")
	flag.Parse()

	fileCfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	cfg := fileCfg.FeedConfig()
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}
	if *source != "" {
		cfg.Source = *source
	}
	if *schedule != "" {
		cfg.Schedule = *schedule
	}
	switch *metrics {
	case "":
	case "off":
		cfg.MetricsAddr = ""
	default:
		cfg.MetricsAddr = *metrics
	}
	if *keep >= 0 {
		cfg.Keep = *keep
	}

	logType := logger.TypeText
	if *logJSON {
		logType = logger.TypeJSON
	}
	lg := logger.New(logger.Options{Buffer: os.Stderr, Level: logger.ParseLevel(fileCfg.LogLevel), Type: logType})

	// Ensure the database directory exists
	dbDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		log.Fatalf("Failed to create database directory %s: %v", dbDir, err)
	}

	store, err := database.NewDBService(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	poller := feed.NewPoller(cfg, feed.NewSource(cfg.Source), store, lg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := poller.Start(ctx); err != nil {
		log.Fatalf("Failed to start poller: %v", err)
	}

	fmt.Println()
	fmt.Println("  COVIDASH DAEMON")
	fmt.Println()
	fmt.Printf("  Source:   %s\n", cfg.Source)
	fmt.Printf("  Schedule: %s\n", cfg.Schedule)
	fmt.Printf("  DB:       %s\n", cfg.DBPath)
	if cfg.MetricsAddr != "" {
		fmt.Printf("  Metrics:  http://%s/metrics\n", cfg.MetricsAddr)
	}
	fmt.Println()
	fmt.Println("  Press Ctrl+C to stop.")
	fmt.Println()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	fmt.Println("\n  Shutting down gracefully...")
	cancel()
	if err := poller.Stop(); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}

	fmt.Println("  Done.")
}
