// Package config loads ~/.covidash/config.yaml. Missing keys keep their
// defaults; command-line flags override whatever the file sets.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Mr-Dark-debug/covidash/internal/feed"
)

// Config is the full file layout.
type Config struct {
	DBPath    string    `yaml:"db_path"`
	LogPath   string    `yaml:"log_path"`
	LogLevel  string    `yaml:"log_level"`
	Feed      Feed      `yaml:"feed"`
	Dashboard Dashboard `yaml:"dashboard"`
}

type Feed struct {
	Source      string `yaml:"source"`
	Schedule    string `yaml:"schedule"`
	MetricsAddr string `yaml:"metrics_addr"`
	Keep        int    `yaml:"keep"`
	Watch       bool   `yaml:"watch"`
}

type Dashboard struct {
	// Top is how many table rows show before "show more".
	Top      int           `yaml:"top"`
	Batch    int           `yaml:"batch"`
	Animated bool          `yaml:"animated"`
	Legend   bool          `yaml:"legend"`
	Refresh  time.Duration `yaml:"refresh"`
}

// Dir is ~/.covidash.
func Dir() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".covidash")
}

// DefaultPath is ~/.covidash/config.yaml.
func DefaultPath() string {
	return filepath.Join(Dir(), "config.yaml")
}

// Default returns the configuration used when no file exists.
func Default() Config {
	fc := feed.DefaultConfig()
	return Config{
		DBPath:   fc.DBPath,
		LogPath:  filepath.Join(Dir(), "covidash.log"),
		LogLevel: "info",
		Feed: Feed{
			Source:      fc.Source,
			Schedule:    fc.Schedule,
			MetricsAddr: fc.MetricsAddr,
			Keep:        fc.Keep,
			Watch:       fc.Watch,
		},
		Dashboard: Dashboard{
			Top:      20,
			Batch:    20,
			Animated: true,
			Legend:   true,
			Refresh:  time.Minute,
		},
	}
}

// Load reads path over Default. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects values no component can work with.
func (c Config) Validate() error {
	switch {
	case c.DBPath == "":
		return errors.New("db_path is empty")
	case c.Feed.Source == "":
		return errors.New("feed.source is empty")
	case c.Dashboard.Top < 0:
		return fmt.Errorf("dashboard.top must not be negative, got %d", c.Dashboard.Top)
	case c.Dashboard.Batch < 1:
		return fmt.Errorf("dashboard.batch must be at least 1, got %d", c.Dashboard.Batch)
	case c.Dashboard.Refresh < 0:
		return fmt.Errorf("dashboard.refresh must not be negative, got %s", c.Dashboard.Refresh)
	}
	return nil
}

// FeedConfig converts the feed section for the poller.
func (c Config) FeedConfig() feed.Config {
	return feed.Config{
		Source:      c.Feed.Source,
		DBPath:      c.DBPath,
		Schedule:    c.Feed.Schedule,
		MetricsAddr: c.Feed.MetricsAddr,
		Keep:        c.Feed.Keep,
		Watch:       c.Feed.Watch,
	}
}

// Save writes c to path, creating the directory.
func (c Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return os.WriteFile(path, b, 0o644)
}
