// Package feed fetches the summary dataset and keeps the snapshot cache
// current. It is the only concurrent part of covidash: a cron schedule
// drives polls, a file watcher reacts to local edits and a small HTTP
// server exposes counters.
package feed

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/Mr-Dark-debug/covidash/internal/summary"
)

// DefaultURL is the public summary endpoint.
const DefaultURL = "https://api.covid19api.com/summary"

// Source produces a summary.
type Source interface {
	Fetch(ctx context.Context) (*summary.Summary, error)
	// Name identifies the source in the cache and in logs.
	Name() string
}

// NewSource picks an HTTPSource for http(s) URLs and a FileSource for
// everything else.
func NewSource(location string) Source {
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		return NewHTTPSource(location)
	}
	return NewFileSource(strings.TrimPrefix(location, "file://"))
}

// ============================================================
// HTTP
// ============================================================

// HTTPSource fetches the summary from a URL.
type HTTPSource struct {
	URL    string
	Client *http.Client
}

// NewHTTPSource returns a source with a 30 second client timeout.
func NewHTTPSource(url string) *HTTPSource {
	return &HTTPSource{URL: url, Client: &http.Client{Timeout: 30 * time.Second}}
}

func (s *HTTPSource) Name() string {
	return s.URL
}

func (s *HTTPSource) Fetch(ctx context.Context) (*summary.Summary, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", s.URL, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "covidash")

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", s.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{URL: s.URL, Code: resp.StatusCode}
	}

	sum, err := summary.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.URL, err)
	}
	return sum, nil
}

// StatusError reports a non-200 response.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetching %s: unexpected status %d %s", e.URL, e.Code, http.StatusText(e.Code))
}

// ============================================================
// File
// ============================================================

// FileSource reads the summary from a local JSON file.
type FileSource struct {
	Path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

func (s *FileSource) Name() string {
	return "file://" + s.Path
}

func (s *FileSource) Fetch(ctx context.Context) (*summary.Summary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", s.Path, err)
	}
	defer f.Close()

	sum, err := summary.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.Path, err)
	}
	return sum, nil
}
