package feed

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mr-Dark-debug/covidash/internal/database"
)

const docV1 = `{"Global": {"TotalConfirmed": 1000, "TotalDeaths": 50, "TotalRecovered": 400},
 "Countries": [{"Country": "Germany", "CountryCode": "DE", "TotalConfirmed": 300}]}`

const docV2 = `{"Global": {"TotalConfirmed": 1200, "TotalDeaths": 60, "TotalRecovered": 500},
 "Countries": [{"Country": "Germany", "CountryCode": "DE", "TotalConfirmed": 400}]}`

func newStore(t *testing.T) *database.DBService {
	t.Helper()
	store, err := database.NewDBService(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func writeDoc(t *testing.T, path, doc string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
}

func TestNewSource(t *testing.T) {
	assert.IsType(t, &HTTPSource{}, NewSource("https://example.com/summary"))
	assert.IsType(t, &FileSource{}, NewSource("/tmp/summary.json"))

	fs := NewSource("file:///tmp/summary.json").(*FileSource)
	assert.Equal(t, "/tmp/summary.json", fs.Path)
	assert.Equal(t, "file:///tmp/summary.json", fs.Name())
}

func TestHTTPSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/summary" {
			http.Error(w, "rate limited", http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(docV1))
	}))
	defer srv.Close()

	sum, err := NewHTTPSource(srv.URL + "/summary").Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1000.0, sum.Global.TotalConfirmed)
	require.Len(t, sum.Countries, 1)

	_, err = NewHTTPSource(srv.URL + "/other").Fetch(context.Background())
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusTooManyRequests, statusErr.Code)
}

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.json")
	src := NewFileSource(path)

	_, err := src.Fetch(context.Background())
	assert.Error(t, err, "missing file")

	writeDoc(t, path, docV1)
	sum, err := src.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 50.0, sum.Global.TotalDeaths)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = src.Fetch(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

// TestRunOnceDeduplicates verifies that an unchanged source is logged but
// not stored twice, and that a changed one is.
func TestRunOnceDeduplicates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.json")
	writeDoc(t, path, docV1)

	store := newStore(t)
	cfg := DefaultConfig()
	cfg.Source = path
	p := NewPoller(cfg, NewFileSource(path), store, nil)

	first := p.RunOnce(context.Background())
	require.NoError(t, first.Err)
	assert.Equal(t, database.RunStored, first.Status)

	second := p.RunOnce(context.Background())
	require.NoError(t, second.Err)
	assert.Equal(t, database.RunUnchanged, second.Status)
	assert.Equal(t, first.Snapshot.SnapshotID, second.Snapshot.SnapshotID)

	writeDoc(t, path, docV2)
	third := p.RunOnce(context.Background())
	require.NoError(t, third.Err)
	assert.Equal(t, database.RunStored, third.Status)

	writeDoc(t, path, "{not json")
	fourth := p.RunOnce(context.Background())
	assert.Equal(t, database.RunFailed, fourth.Status)
	assert.Error(t, fourth.Err)

	snaps, err := store.ListSnapshots(database.SnapshotFilter{})
	require.NoError(t, err)
	assert.Len(t, snaps, 2)

	runs, err := store.RecentFetches(10)
	require.NoError(t, err)
	require.Len(t, runs, 4)
	assert.Equal(t, database.RunFailed, runs[0].Status)
	require.NotNil(t, runs[0].Error)

	m := p.Metrics()
	assert.Equal(t, int64(4), m.Polls)
	assert.Equal(t, int64(2), m.Stored)
	assert.Equal(t, int64(1), m.Unchanged)
	assert.Equal(t, int64(1), m.ErrorCount)
	assert.Equal(t, third.Snapshot.SnapshotID, m.LastSnapshot)
}

func TestRunOncePrunes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.json")
	store := newStore(t)
	cfg := DefaultConfig()
	cfg.Keep = 1
	p := NewPoller(cfg, NewFileSource(path), store, nil)

	for _, doc := range []string{docV1, docV2} {
		writeDoc(t, path, doc)
		require.NoError(t, p.RunOnce(context.Background()).Err)
	}

	snaps, err := store.ListSnapshots(database.SnapshotFilter{})
	require.NoError(t, err)
	require.Len(t, snaps, 1)
}

func TestWatchDebounces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.json")
	writeDoc(t, path, docV1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fired := make(chan struct{}, 10)
	_, err := NewFileSource(path).Watch(ctx, nil, func() { fired <- struct{}{} })
	require.NoError(t, err)

	for _, doc := range []string{docV2, docV1, docV2} {
		writeDoc(t, path, doc)
	}

	select {
	case <-fired:
	case <-time.After(5 * time.Second):
		t.Fatal("watch callback never fired")
	}

	select {
	case <-fired:
		t.Fatal("burst of writes fired more than once")
	case <-time.After(2 * DebounceDelay):
	}
}

// TestWatchDoneWaitsForCallback cancels the watcher while a debounced
// callback is running; done must not close before the callback returns.
func TestWatchDoneWaitsForCallback(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.json")
	writeDoc(t, path, docV1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	started := make(chan struct{})
	release := make(chan struct{})
	done, err := NewFileSource(path).Watch(ctx, nil, func() {
		close(started)
		<-release
	})
	require.NoError(t, err)

	writeDoc(t, path, docV2)
	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("watch callback never fired")
	}

	cancel()
	select {
	case <-done:
		t.Fatal("watcher finished while its callback was still running")
	case <-time.After(100 * time.Millisecond):
	}

	close(release)
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not finish after the callback returned")
	}
}

// TestStopWaitsForWatchedPoll starts a poller over a watched file and
// checks that Stop cancels the pending debounce instead of polling a
// closed store.
func TestStopWaitsForWatchedPoll(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.json")
	writeDoc(t, path, docV1)

	cfg := DefaultConfig()
	cfg.Schedule = "@every 1h"
	cfg.MetricsAddr = ""
	store := newStore(t)
	p := NewPoller(cfg, NewFileSource(path), store, nil)
	require.NoError(t, p.Start(context.Background()))

	writeDoc(t, path, docV2)
	require.NoError(t, p.Stop())
	polls := p.Metrics().Polls
	require.NoError(t, store.Close())

	time.Sleep(2 * DebounceDelay)
	assert.Equal(t, polls, p.Metrics().Polls, "no poll may run after Stop returns")
}

func TestStartRejectsBadSchedule(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.json")
	writeDoc(t, path, docV1)

	cfg := DefaultConfig()
	cfg.Schedule = "not a schedule"
	cfg.MetricsAddr = ""
	cfg.Watch = false
	p := NewPoller(cfg, NewFileSource(path), newStore(t), nil)

	err := p.Start(context.Background())
	assert.ErrorContains(t, err, "parsing schedule")
}

func TestMetricsHandler(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.json")
	writeDoc(t, path, docV1)
	p := NewPoller(DefaultConfig(), NewFileSource(path), newStore(t), nil)
	p.RunOnce(context.Background())

	h := p.Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "covidash_polls_total 1"), body)
	assert.True(t, strings.Contains(body, "covidash_snapshots_stored_total 1"), body)
	assert.True(t, strings.Contains(body, "# TYPE covidash_uptime_seconds gauge"), body)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/metrics", nil))
	var m Metrics
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	assert.Equal(t, int64(1), m.Stored)
	assert.NotEmpty(t, m.LastSnapshot)
}
