package database

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Mr-Dark-debug/covidash/internal/summary"
)

func newTestStore(t *testing.T) *DBService {
	t.Helper()
	svc, err := NewDBService(":memory:")
	if err != nil {
		t.Fatalf("NewDBService(:memory:) failed: %v", err)
	}
	t.Cleanup(func() { svc.Close() })
	return svc
}

func testSummary(confirmed float64) *summary.Summary {
	return &summary.Summary{
		Global: summary.StatisticEntry{TotalConfirmed: confirmed, TotalDeaths: confirmed / 10},
		Countries: []summary.CountryRecord{
			{Country: "Germany", CountryCode: "DE", Slug: "germany",
				StatisticEntry: summary.StatisticEntry{TotalConfirmed: confirmed / 2}},
			{Country: "Italy", CountryCode: "IT", Slug: "italy",
				StatisticEntry: summary.StatisticEntry{TotalConfirmed: confirmed / 2}},
		},
	}
}

func mustSnapshot(t *testing.T, confirmed float64, at time.Time) *Snapshot {
	t.Helper()
	snap, err := NewSnapshot("test", testSummary(confirmed), at)
	if err != nil {
		t.Fatalf("NewSnapshot failed: %v", err)
	}
	return snap
}

// TestNewDBService verifies that the database initializes correctly
// with the embedded schema using an in-memory SQLite instance.
func TestNewDBService(t *testing.T) {
	svc := newTestStore(t)
	if _, err := svc.LatestSnapshot(); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on empty store, got %v", err)
	}
}

// TestInsertAndLoadSnapshot verifies the full snapshot lifecycle:
// insert → latest → decode payload.
func TestInsertAndLoadSnapshot(t *testing.T) {
	svc := newTestStore(t)
	snap := mustSnapshot(t, 1000, time.Now())

	stored, err := svc.InsertSnapshot(snap)
	if err != nil {
		t.Fatalf("InsertSnapshot failed: %v", err)
	}
	if stored.SnapshotID != snap.SnapshotID {
		t.Errorf("expected inserted snapshot back, got %s", stored.SnapshotID)
	}

	latest, err := svc.LatestSnapshot()
	if err != nil {
		t.Fatalf("LatestSnapshot failed: %v", err)
	}
	if latest.SnapshotID != snap.SnapshotID {
		t.Errorf("expected snapshot_id=%s, got %s", snap.SnapshotID, latest.SnapshotID)
	}
	if latest.CountryCount != 2 {
		t.Errorf("expected country_count=2, got %d", latest.CountryCount)
	}

	sum, err := latest.Summary()
	if err != nil {
		t.Fatalf("Summary failed: %v", err)
	}
	if sum.Global.TotalConfirmed != 1000 {
		t.Errorf("expected TotalConfirmed=1000, got %v", sum.Global.TotalConfirmed)
	}
	if sum.Countries[1].CountryCode != "IT" {
		t.Errorf("expected second country IT, got %s", sum.Countries[1].CountryCode)
	}
}

// TestInsertDuplicateFingerprint verifies that identical content is stored
// once and the first row is handed back.
func TestInsertDuplicateFingerprint(t *testing.T) {
	svc := newTestStore(t)
	first := mustSnapshot(t, 1000, time.Now())
	if _, err := svc.InsertSnapshot(first); err != nil {
		t.Fatalf("InsertSnapshot failed: %v", err)
	}

	second := mustSnapshot(t, 1000, time.Now().Add(time.Minute))
	if second.Fingerprint != first.Fingerprint {
		t.Fatalf("expected equal fingerprints for equal content")
	}

	got, err := svc.InsertSnapshot(second)
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
	if got.SnapshotID != first.SnapshotID {
		t.Errorf("expected existing snapshot %s, got %s", first.SnapshotID, got.SnapshotID)
	}

	snaps, err := svc.ListSnapshots(SnapshotFilter{})
	if err != nil {
		t.Fatalf("ListSnapshots failed: %v", err)
	}
	if len(snaps) != 1 {
		t.Errorf("expected 1 snapshot, got %d", len(snaps))
	}
}

// TestListSnapshotsOrderAndFilter verifies newest-first ordering, the
// time window and that payloads are only loaded on request.
func TestListSnapshotsOrderAndFilter(t *testing.T) {
	svc := newTestStore(t)
	base := time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		snap := mustSnapshot(t, float64(1000+i), base.Add(time.Duration(i)*time.Hour))
		if _, err := svc.InsertSnapshot(snap); err != nil {
			t.Fatalf("InsertSnapshot %d failed: %v", i, err)
		}
	}

	all, err := svc.ListSnapshots(SnapshotFilter{})
	if err != nil {
		t.Fatalf("ListSnapshots failed: %v", err)
	}
	if len(all) != 5 {
		t.Fatalf("expected 5 snapshots, got %d", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i-1].FetchedAt < all[i].FetchedAt {
			t.Errorf("snapshots not ordered newest first at %d", i)
		}
	}
	if len(all[0].Payload) != 0 {
		t.Errorf("expected no payload without WithPayload")
	}

	since := base.Add(2 * time.Hour).UnixNano()
	window, err := svc.ListSnapshots(SnapshotFilter{Since: &since, Limit: 2, WithPayload: true})
	if err != nil {
		t.Fatalf("ListSnapshots with filter failed: %v", err)
	}
	if len(window) != 2 {
		t.Fatalf("expected 2 snapshots, got %d", len(window))
	}
	if len(window[0].Payload) == 0 {
		t.Errorf("expected payload with WithPayload")
	}

	other := "elsewhere"
	none, err := svc.ListSnapshots(SnapshotFilter{Source: &other})
	if err != nil {
		t.Fatalf("ListSnapshots by source failed: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("expected no snapshots from %s, got %d", other, len(none))
	}
}

// TestGetSnapshotByPrefix verifies exact and prefix lookups.
func TestGetSnapshotByPrefix(t *testing.T) {
	svc := newTestStore(t)
	snap := mustSnapshot(t, 1000, time.Now())
	if _, err := svc.InsertSnapshot(snap); err != nil {
		t.Fatalf("InsertSnapshot failed: %v", err)
	}

	got, err := svc.GetSnapshot(snap.SnapshotID)
	if err != nil {
		t.Fatalf("GetSnapshot failed: %v", err)
	}
	if len(got.Payload) == 0 {
		t.Errorf("expected payload on GetSnapshot")
	}

	got, err = svc.GetSnapshot(snap.SnapshotID[:8])
	if err != nil {
		t.Fatalf("GetSnapshot by prefix failed: %v", err)
	}
	if got.SnapshotID != snap.SnapshotID {
		t.Errorf("expected %s, got %s", snap.SnapshotID, got.SnapshotID)
	}

	if _, err := svc.GetSnapshot("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

// TestPruneSnapshots verifies that only the newest snapshots survive.
func TestPruneSnapshots(t *testing.T) {
	svc := newTestStore(t)
	base := time.Now()
	var newest string
	for i := 0; i < 6; i++ {
		snap := mustSnapshot(t, float64(i+1), base.Add(time.Duration(i)*time.Second))
		if _, err := svc.InsertSnapshot(snap); err != nil {
			t.Fatalf("InsertSnapshot %d failed: %v", i, err)
		}
		newest = snap.SnapshotID
	}

	n, err := svc.PruneSnapshots(2)
	if err != nil {
		t.Fatalf("PruneSnapshots failed: %v", err)
	}
	if n != 4 {
		t.Errorf("expected 4 deleted, got %d", n)
	}

	latest, err := svc.LatestSnapshot()
	if err != nil {
		t.Fatalf("LatestSnapshot failed: %v", err)
	}
	if latest.SnapshotID != newest {
		t.Errorf("expected newest snapshot to survive")
	}

	if n, _ := svc.PruneSnapshots(0); n != 0 {
		t.Errorf("expected keep=0 to delete nothing, got %d", n)
	}
}

// TestFetchRunsAndStats verifies run recording and the aggregate counts.
func TestFetchRunsAndStats(t *testing.T) {
	svc := newTestStore(t)
	snap := mustSnapshot(t, 1000, time.Now())
	if _, err := svc.InsertSnapshot(snap); err != nil {
		t.Fatalf("InsertSnapshot failed: %v", err)
	}

	now := time.Now().UnixNano()
	msg := "connection refused"
	runs := []*FetchRun{
		{StartedAt: now, FinishedAt: now + 1, Source: "test", Status: RunStored, SnapshotID: &snap.SnapshotID},
		{StartedAt: now + 10, FinishedAt: now + 11, Source: "test", Status: RunUnchanged, SnapshotID: &snap.SnapshotID},
		{StartedAt: now + 20, FinishedAt: now + 21, Source: "test", Status: RunFailed, Error: &msg},
	}
	for _, r := range runs {
		if err := svc.RecordFetch(r); err != nil {
			t.Fatalf("RecordFetch failed: %v", err)
		}
		if r.RunID == 0 {
			t.Errorf("expected RunID to be assigned")
		}
	}

	recent, err := svc.RecentFetches(2)
	if err != nil {
		t.Fatalf("RecentFetches failed: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(recent))
	}
	if recent[0].Status != RunFailed || recent[0].Error == nil || *recent[0].Error != msg {
		t.Errorf("expected newest run to be the failure, got %+v", recent[0])
	}

	st, err := svc.Stats()
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if st.Snapshots != 1 || st.Runs != 3 || st.FailedRuns != 1 {
		t.Errorf("unexpected stats: %+v", st)
	}
	if st.LastRunStatus != RunFailed {
		t.Errorf("expected last run status failed, got %q", st.LastRunStatus)
	}
	if st.NewestSnapshot == nil || *st.NewestSnapshot != snap.FetchedAt {
		t.Errorf("expected newest snapshot time %d", snap.FetchedAt)
	}
}

// TestConcurrentReads verifies readers can run alongside a writer.
func TestConcurrentReads(t *testing.T) {
	svc := newTestStore(t)
	done := make(chan error, 10)
	for i := 0; i < 10; i++ {
		go func(i int) {
			if i%2 == 0 {
				_, err := svc.InsertSnapshot(mustSnapshotNoT(float64(i)))
				done <- err
				return
			}
			_, err := svc.ListSnapshots(SnapshotFilter{Limit: 5})
			done <- err
		}(i)
	}
	for i := 0; i < 10; i++ {
		if err := <-done; err != nil {
			t.Errorf("concurrent operation failed: %v", err)
		}
	}
}

func mustSnapshotNoT(confirmed float64) *Snapshot {
	snap, err := NewSnapshot("test", testSummary(confirmed), time.Now())
	if err != nil {
		panic(fmt.Sprintf("NewSnapshot: %v", err))
	}
	return snap
}
