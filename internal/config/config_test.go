package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("missing file should yield defaults (-want +got):\n%s", diff)
	}
}

func TestLoadMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	doc := `
db_path: /data/covid.db
feed:
  source: ./summary.json
  keep: 10
dashboard:
  top: 5
  animated: false
  refresh: 90s
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	want := Default()
	want.DBPath = "/data/covid.db"
	want.Feed.Source = "./summary.json"
	want.Feed.Keep = 10
	want.Dashboard.Top = 5
	want.Dashboard.Animated = false
	want.Dashboard.Refresh = 90 * time.Second
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("merged config mismatch (-want +got):\n%s", diff)
	}

	fc := cfg.FeedConfig()
	assert.Equal(t, "/data/covid.db", fc.DBPath)
	assert.Equal(t, "@every 30m", fc.Schedule)
}

func TestLoadRejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"syntax": "dashboard: [",
		"batch":  "dashboard:\n  batch: 0\n",
		"top":    "dashboard:\n  top: -1\n",
		"source": "feed:\n  source: \"\"\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name+".yaml")
			require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Default()
	cfg.LogLevel = "debug"
	require.NoError(t, cfg.Save(path))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", got.LogLevel)
}
