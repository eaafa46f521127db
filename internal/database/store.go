// Package database provides the snapshot cache for covidash.
//
// It implements the Store interface using SQLite in WAL mode so the
// daemon can write while dashboards read. The DBService struct is the
// primary entry point for all database operations.
package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaFS embed.FS

var (
	// ErrNotFound is returned when a lookup matches no snapshot.
	ErrNotFound = errors.New("snapshot not found")
	// ErrDuplicate is returned by InsertSnapshot when a snapshot with
	// the same fingerprint is already stored.
	ErrDuplicate = errors.New("snapshot already stored")
)

// Store defines the interface for snapshot persistence.
type Store interface {
	// InsertSnapshot persists a snapshot. On a fingerprint collision it
	// returns the stored snapshot together with ErrDuplicate.
	InsertSnapshot(snap *Snapshot) (*Snapshot, error)
	// LatestSnapshot returns the most recently fetched snapshot.
	LatestSnapshot() (*Snapshot, error)
	// GetSnapshot returns a snapshot by ID, payload included.
	GetSnapshot(id string) (*Snapshot, error)
	// ListSnapshots returns snapshots matching the filter, newest first.
	ListSnapshots(filter SnapshotFilter) ([]*Snapshot, error)
	// PruneSnapshots deletes all but the newest keep snapshots.
	PruneSnapshots(keep int) (int64, error)

	// RecordFetch appends a poll outcome.
	RecordFetch(run *FetchRun) error
	// RecentFetches returns the latest poll outcomes, newest first.
	RecentFetches(limit int) ([]*FetchRun, error)
	// Stats aggregates the cache contents.
	Stats() (*StoreStats, error)

	// Close gracefully shuts down the database connection.
	Close() error
}

// ============================================================
// DBService Implementation
// ============================================================

// DBService implements the Store interface using SQLite.
// It serialises writers and lets readers proceed concurrently.
type DBService struct {
	db   *sql.DB
	mu   sync.RWMutex
	path string

	stmtInsertSnapshot *sql.Stmt
	stmtByFingerprint  *sql.Stmt
	stmtInsertRun      *sql.Stmt
}

// NewDBService opens (creating if needed) the cache at path, initialises
// the schema and prepares frequently-used statements.
//
// Use ":memory:" for in-memory databases (useful for testing).
func NewDBService(path string) (*DBService, error) {
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000", path)

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database at %s: %w", path, err)
	}

	// SQLite only supports one writer at a time.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	svc := &DBService{
		db:   db,
		path: path,
	}

	if err := svc.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	if err := svc.prepareStatements(); err != nil {
		db.Close()
		return nil, fmt.Errorf("preparing statements: %w", err)
	}

	return svc, nil
}

// Path returns the database location.
func (s *DBService) Path() string {
	return s.path
}

func (s *DBService) initSchema() error {
	schema, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return fmt.Errorf("reading embedded schema: %w", err)
	}

	if _, err := s.db.Exec(string(schema)); err != nil {
		return fmt.Errorf("executing schema: %w", err)
	}

	return nil
}

func (s *DBService) prepareStatements() error {
	var err error

	s.stmtInsertSnapshot, err = s.db.Prepare(`
		INSERT INTO snapshots (snapshot_id, fetched_at, source, fingerprint, country_count, payload)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(fingerprint) DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("preparing InsertSnapshot: %w", err)
	}

	s.stmtByFingerprint, err = s.db.Prepare(`
		SELECT snapshot_id, fetched_at, source, fingerprint, country_count, payload
		FROM snapshots WHERE fingerprint = ?
	`)
	if err != nil {
		return fmt.Errorf("preparing SnapshotByFingerprint: %w", err)
	}

	s.stmtInsertRun, err = s.db.Prepare(`
		INSERT INTO fetch_runs (started_at, finished_at, source, status, snapshot_id, error)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing InsertFetchRun: %w", err)
	}

	return nil
}

// InsertSnapshot persists a snapshot. Identical content is stored once:
// the second insert returns the first row and ErrDuplicate.
func (s *DBService) InsertSnapshot(snap *Snapshot) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.stmtInsertSnapshot.Exec(
		snap.SnapshotID, snap.FetchedAt, snap.Source,
		snap.Fingerprint, snap.CountryCount, string(snap.Payload),
	)
	if err != nil {
		return nil, fmt.Errorf("inserting snapshot %s: %w", snap.SnapshotID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("inserting snapshot %s: %w", snap.SnapshotID, err)
	}
	if n == 1 {
		return snap, nil
	}

	existing, err := scanSnapshot(s.stmtByFingerprint.QueryRow(snap.Fingerprint), true)
	if err != nil {
		return nil, fmt.Errorf("loading snapshot with fingerprint %s: %w", snap.Fingerprint, err)
	}
	return existing, ErrDuplicate
}

// LatestSnapshot returns the newest snapshot with its payload.
func (s *DBService) LatestSnapshot() (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(`
		SELECT snapshot_id, fetched_at, source, fingerprint, country_count, payload
		FROM snapshots
		ORDER BY fetched_at DESC, rowid DESC
		LIMIT 1
	`)
	snap, err := scanSnapshot(row, true)
	if err != nil {
		return nil, fmt.Errorf("loading latest snapshot: %w", err)
	}
	return snap, nil
}

// GetSnapshot returns a snapshot by ID. A unique ID prefix is accepted,
// the way short commit hashes are.
func (s *DBService) GetSnapshot(id string) (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT snapshot_id, fetched_at, source, fingerprint, country_count, payload
		FROM snapshots
		WHERE snapshot_id = ? OR snapshot_id LIKE ? || '%'
		ORDER BY snapshot_id = ? DESC
		LIMIT 2
	`, id, id, id)
	if err != nil {
		return nil, fmt.Errorf("querying snapshot %s: %w", id, err)
	}
	defer rows.Close()

	snaps, err := scanSnapshots(rows, true)
	if err != nil {
		return nil, fmt.Errorf("querying snapshot %s: %w", id, err)
	}
	switch {
	case len(snaps) == 0:
		return nil, fmt.Errorf("snapshot %s: %w", id, ErrNotFound)
	case snaps[0].SnapshotID == id || len(snaps) == 1:
		return snaps[0], nil
	}
	return nil, fmt.Errorf("snapshot prefix %s is ambiguous", id)
}

// ListSnapshots returns snapshots matching filter, newest first. Payloads
// are only loaded when the filter asks for them.
func (s *DBService) ListSnapshots(filter SnapshotFilter) ([]*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	payload := `''`
	if filter.WithPayload {
		payload = `payload`
	}
	query := `SELECT snapshot_id, fetched_at, source, fingerprint, country_count, ` + payload + `
		FROM snapshots WHERE 1=1`
	var args []interface{}

	if filter.Source != nil {
		query += ` AND source = ?`
		args = append(args, *filter.Source)
	}
	if filter.Since != nil {
		query += ` AND fetched_at >= ?`
		args = append(args, *filter.Since)
	}
	if filter.Until != nil {
		query += ` AND fetched_at <= ?`
		args = append(args, *filter.Until)
	}

	query += ` ORDER BY fetched_at DESC, rowid DESC`

	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	} else {
		query += ` LIMIT 100`
	}
	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying snapshots: %w", err)
	}
	defer rows.Close()

	return scanSnapshots(rows, filter.WithPayload)
}

// PruneSnapshots keeps the newest keep snapshots and deletes the rest.
// keep <= 0 disables pruning.
func (s *DBService) PruneSnapshots(keep int) (int64, error) {
	if keep <= 0 {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(`
		DELETE FROM snapshots
		WHERE snapshot_id NOT IN (
			SELECT snapshot_id FROM snapshots
			ORDER BY fetched_at DESC, rowid DESC
			LIMIT ?
		)
	`, keep)
	if err != nil {
		return 0, fmt.Errorf("pruning snapshots to %d: %w", keep, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("pruning snapshots to %d: %w", keep, err)
	}
	return n, nil
}

// RecordFetch appends a poll outcome and fills in its RunID.
func (s *DBService) RecordFetch(run *FetchRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.stmtInsertRun.Exec(
		run.StartedAt, run.FinishedAt, run.Source,
		run.Status, run.SnapshotID, run.Error,
	)
	if err != nil {
		return fmt.Errorf("recording %s fetch from %s: %w", run.Status, run.Source, err)
	}
	if id, err := res.LastInsertId(); err == nil {
		run.RunID = id
	}
	return nil
}

// RecentFetches returns up to limit poll outcomes, newest first.
func (s *DBService) RecentFetches(limit int) ([]*FetchRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(`
		SELECT run_id, started_at, finished_at, source, status, snapshot_id, error
		FROM fetch_runs
		ORDER BY started_at DESC, run_id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying fetch runs: %w", err)
	}
	defer rows.Close()

	var runs []*FetchRun
	for rows.Next() {
		r := &FetchRun{}
		if err := rows.Scan(&r.RunID, &r.StartedAt, &r.FinishedAt, &r.Source,
			&r.Status, &r.SnapshotID, &r.Error); err != nil {
			return nil, fmt.Errorf("scanning fetch run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Stats aggregates snapshot and fetch counts.
func (s *DBService) Stats() (*StoreStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := &StoreStats{}
	err := s.db.QueryRow(`
		SELECT COUNT(*), MIN(fetched_at), MAX(fetched_at) FROM snapshots
	`).Scan(&st.Snapshots, &st.OldestSnapshot, &st.NewestSnapshot)
	if err != nil {
		return nil, fmt.Errorf("counting snapshots: %w", err)
	}

	err = s.db.QueryRow(`
		SELECT COUNT(*), COALESCE(SUM(CASE WHEN status = 'failed' THEN 1 ELSE 0 END), 0)
		FROM fetch_runs
	`).Scan(&st.Runs, &st.FailedRuns)
	if err != nil {
		return nil, fmt.Errorf("counting fetch runs: %w", err)
	}

	err = s.db.QueryRow(`
		SELECT status FROM fetch_runs ORDER BY started_at DESC, run_id DESC LIMIT 1
	`).Scan(&st.LastRunStatus)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("loading last fetch run: %w", err)
	}

	return st, nil
}

// Close gracefully shuts down the database, closing all prepared statements
// and the underlying connection pool.
func (s *DBService) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, stmt := range []*sql.Stmt{s.stmtInsertSnapshot, s.stmtByFingerprint, s.stmtInsertRun} {
		if stmt != nil {
			stmt.Close()
		}
	}

	return s.db.Close()
}

// ============================================================
// Scan Helpers
// ============================================================

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSnapshot(row rowScanner, withPayload bool) (*Snapshot, error) {
	snap := &Snapshot{}
	var payload string
	if err := row.Scan(
		&snap.SnapshotID, &snap.FetchedAt, &snap.Source,
		&snap.Fingerprint, &snap.CountryCount, &payload,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scanning snapshot row: %w", err)
	}
	if withPayload {
		snap.Payload = []byte(payload)
	}
	return snap, nil
}

func scanSnapshots(rows *sql.Rows, withPayload bool) ([]*Snapshot, error) {
	var snaps []*Snapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows, withPayload)
		if err != nil {
			return nil, err
		}
		snaps = append(snaps, snap)
	}
	return snaps, rows.Err()
}
