package database

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mitchellh/hashstructure/v2"

	"github.com/Mr-Dark-debug/covidash/internal/summary"
)

// ============================================================
// Domain Models
// ============================================================

// Snapshot is one stored fetch of the summary feed.
type Snapshot struct {
	SnapshotID   string `json:"snapshot_id"`
	FetchedAt    int64  `json:"fetched_at"` // unix nanoseconds
	Source       string `json:"source"`
	Fingerprint  string `json:"fingerprint"`
	CountryCount int    `json:"country_count"`
	Payload      []byte `json:"-"`
}

// NewSnapshot encodes s for storage. The fingerprint is a structural hash
// of the summary, so re-fetching unchanged data yields the same value
// regardless of JSON key order or whitespace.
func NewSnapshot(source string, s *summary.Summary, fetchedAt time.Time) (*Snapshot, error) {
	payload, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encoding snapshot payload: %w", err)
	}
	fp, err := Fingerprint(s)
	if err != nil {
		return nil, err
	}
	return &Snapshot{
		SnapshotID:   uuid.New().String(),
		FetchedAt:    fetchedAt.UnixNano(),
		Source:       source,
		Fingerprint:  fp,
		CountryCount: len(s.Countries),
		Payload:      payload,
	}, nil
}

// Fingerprint hashes a summary's content.
func Fingerprint(s *summary.Summary) (string, error) {
	h, err := hashstructure.Hash(s, hashstructure.FormatV2, nil)
	if err != nil {
		return "", fmt.Errorf("fingerprinting summary: %w", err)
	}
	return fmt.Sprintf("%016x", h), nil
}

// Summary decodes the stored payload.
func (s *Snapshot) Summary() (*summary.Summary, error) {
	if len(s.Payload) == 0 {
		return nil, fmt.Errorf("snapshot %s was loaded without its payload", s.SnapshotID)
	}
	sum, err := summary.Parse(s.Payload)
	if err != nil {
		return nil, fmt.Errorf("decoding snapshot %s: %w", s.SnapshotID, err)
	}
	return sum, nil
}

// Time returns FetchedAt as a time.Time.
func (s *Snapshot) Time() time.Time {
	return time.Unix(0, s.FetchedAt)
}

// SnapshotFilter defines query parameters for snapshot listing.
type SnapshotFilter struct {
	Source      *string `json:"source,omitempty"`
	Since       *int64  `json:"since,omitempty"` // unix nanoseconds
	Until       *int64  `json:"until,omitempty"` // unix nanoseconds
	Limit       int     `json:"limit"`
	Offset      int     `json:"offset"`
	WithPayload bool    `json:"with_payload"`
}

// Fetch run outcomes.
const (
	RunStored    = "stored"
	RunUnchanged = "unchanged"
	RunFailed    = "failed"
)

// FetchRun records one poll of the feed.
type FetchRun struct {
	RunID      int64   `json:"run_id"`
	StartedAt  int64   `json:"started_at"`
	FinishedAt int64   `json:"finished_at"`
	Source     string  `json:"source"`
	Status     string  `json:"status"`
	SnapshotID *string `json:"snapshot_id,omitempty"`
	Error      *string `json:"error,omitempty"`
}

// StoreStats summarises the cache for `covidash status`.
type StoreStats struct {
	Snapshots      int    `json:"snapshots"`
	OldestSnapshot *int64 `json:"oldest_snapshot,omitempty"`
	NewestSnapshot *int64 `json:"newest_snapshot,omitempty"`
	Runs           int    `json:"runs"`
	FailedRuns     int    `json:"failed_runs"`
	LastRunStatus  string `json:"last_run_status,omitempty"`
}
