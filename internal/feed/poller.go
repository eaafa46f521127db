package feed

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/Mr-Dark-debug/covidash/internal/database"
	"github.com/Mr-Dark-debug/covidash/internal/logger"
)

// Metrics tracks poll outcomes.
type Metrics struct {
	Polls        int64  `json:"polls"`
	Stored       int64  `json:"snapshots_stored"`
	Unchanged    int64  `json:"polls_unchanged"`
	ErrorCount   int64  `json:"error_count"`
	LastSnapshot string `json:"last_snapshot,omitempty"`
	LastPollUnix int64  `json:"last_poll_unix"`
	Uptime       int64  `json:"uptime_seconds"`
}

// Config holds configuration for the poller.
type Config struct {
	// Source is a URL or a local file path.
	Source string `json:"source"`

	// DBPath is the path to the SQLite snapshot cache.
	DBPath string `json:"db_path"`

	// Schedule is a cron spec ("@every 30m", "0 */6 * * *").
	Schedule string `json:"schedule"`

	// MetricsAddr is the HTTP address for the metrics server.
	// Empty string disables it.
	MetricsAddr string `json:"metrics_addr"`

	// Keep is how many snapshots to retain after each store. Zero keeps all.
	Keep int `json:"keep"`

	// Watch re-polls when a file source changes on disk.
	Watch bool `json:"watch"`
}

// DefaultDBPath is ~/.covidash/covidash.db.
func DefaultDBPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".covidash", "covidash.db")
}

// DefaultConfig returns sensible defaults for the poller.
func DefaultConfig() Config {
	return Config{
		Source:      DefaultURL,
		DBPath:      DefaultDBPath(),
		Schedule:    "@every 30m",
		MetricsAddr: "127.0.0.1:9879",
		Keep:        500,
		Watch:       true,
	}
}

// Result describes one poll.
type Result struct {
	Status   string
	Snapshot *database.Snapshot
	Err      error
}

// Poller fetches the source on a schedule and stores new snapshots.
type Poller struct {
	config  Config
	source  Source
	store   database.Store
	log     logger.Logger
	metrics Metrics

	// mu serializes polls; cron and the watcher can fire together.
	mu      sync.Mutex
	last    atomic.Value
	cron    *cron.Cron
	wg      sync.WaitGroup
	started time.Time
	cancel  context.CancelFunc
	now     func() time.Time
}

// NewPoller creates a poller. A nil logger discards output.
func NewPoller(config Config, source Source, store database.Store, log logger.Logger) *Poller {
	if log == nil {
		log = logger.Discard
	}
	return &Poller{
		config:  config,
		source:  source,
		store:   store,
		log:     log.With("source", source.Name()),
		started: time.Now(),
		now:     time.Now,
	}
}

// Start polls once, then schedules further polls and starts the watcher
// and metrics server when configured.
func (p *Poller) Start(ctx context.Context) error {
	ctx, p.cancel = context.WithCancel(ctx)
	p.started = time.Now()

	if res := p.RunOnce(ctx); res.Err != nil {
		p.log.Warn("initial poll failed", "err", res.Err)
	}

	p.cron = cron.New()
	if _, err := p.cron.AddFunc(p.config.Schedule, func() { p.RunOnce(ctx) }); err != nil {
		p.cancel()
		return fmt.Errorf("parsing schedule %q: %w", p.config.Schedule, err)
	}
	p.cron.Start()

	if fs, ok := p.source.(*FileSource); ok && p.config.Watch {
		done, err := fs.Watch(ctx, p.log, func() { p.RunOnce(ctx) })
		if err != nil {
			p.log.Warn("file watch disabled", "err", err)
		} else {
			p.wg.Add(1)
			go func() {
				defer p.wg.Done()
				<-done
			}()
		}
	}

	if p.config.MetricsAddr != "" {
		p.wg.Add(1)
		go p.serveMetrics(ctx)
	}

	p.log.Info("poller started", "schedule", p.config.Schedule)
	return nil
}

// Stop cancels pending work and waits for running polls, the watcher and
// the metrics server to finish.
func (p *Poller) Stop() error {
	p.log.Info("shutting down poller")
	if p.cancel != nil {
		p.cancel()
	}
	if p.cron != nil {
		<-p.cron.Stop().Done()
	}
	p.wg.Wait()
	p.log.Info("poller stopped")
	return nil
}

// RunOnce fetches the source and stores the result when it differs from
// what is cached. Every poll is recorded in the fetch log.
func (p *Poller) RunOnce(ctx context.Context) Result {
	p.mu.Lock()
	defer p.mu.Unlock()

	atomic.AddInt64(&p.metrics.Polls, 1)
	started := p.now()
	res := p.poll(ctx, started)

	run := &database.FetchRun{
		StartedAt:  started.UnixNano(),
		FinishedAt: p.now().UnixNano(),
		Source:     p.source.Name(),
		Status:     res.Status,
	}
	if res.Snapshot != nil {
		id := res.Snapshot.SnapshotID
		run.SnapshotID = &id
	}
	if res.Err != nil {
		msg := res.Err.Error()
		run.Error = &msg
	}
	if err := p.store.RecordFetch(run); err != nil {
		p.log.Error("recording fetch", "err", err)
	}

	atomic.StoreInt64(&p.metrics.LastPollUnix, started.Unix())
	switch res.Status {
	case database.RunStored:
		atomic.AddInt64(&p.metrics.Stored, 1)
		p.last.Store(res.Snapshot.SnapshotID)
		p.log.Info("stored snapshot", "id", res.Snapshot.SnapshotID, "countries", res.Snapshot.CountryCount)
	case database.RunUnchanged:
		atomic.AddInt64(&p.metrics.Unchanged, 1)
		p.log.Debug("summary unchanged", "id", res.Snapshot.SnapshotID)
	default:
		atomic.AddInt64(&p.metrics.ErrorCount, 1)
		p.log.Error("poll failed", "err", res.Err)
	}
	return res
}

func (p *Poller) poll(ctx context.Context, at time.Time) Result {
	sum, err := p.source.Fetch(ctx)
	if err != nil {
		return Result{Status: database.RunFailed, Err: err}
	}

	snap, err := database.NewSnapshot(p.source.Name(), sum, at)
	if err != nil {
		return Result{Status: database.RunFailed, Err: err}
	}

	stored, err := p.store.InsertSnapshot(snap)
	if errors.Is(err, database.ErrDuplicate) {
		return Result{Status: database.RunUnchanged, Snapshot: stored}
	}
	if err != nil {
		return Result{Status: database.RunFailed, Err: err}
	}

	if p.config.Keep > 0 {
		if n, err := p.store.PruneSnapshots(p.config.Keep); err != nil {
			p.log.Warn("pruning snapshots", "err", err)
		} else if n > 0 {
			p.log.Debug("pruned snapshots", "count", n)
		}
	}
	return Result{Status: database.RunStored, Snapshot: stored}
}

// Metrics returns a snapshot of the current poll counters.
func (p *Poller) Metrics() Metrics {
	last, _ := p.last.Load().(string)
	return Metrics{
		Polls:        atomic.LoadInt64(&p.metrics.Polls),
		Stored:       atomic.LoadInt64(&p.metrics.Stored),
		Unchanged:    atomic.LoadInt64(&p.metrics.Unchanged),
		ErrorCount:   atomic.LoadInt64(&p.metrics.ErrorCount),
		LastSnapshot: last,
		LastPollUnix: atomic.LoadInt64(&p.metrics.LastPollUnix),
		Uptime:       int64(time.Since(p.started).Seconds()),
	}
}
