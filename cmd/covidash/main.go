// covidash CLI: fetch, inspect and analyze cached summary snapshots.
//
// Usage:
//
//	covidash <command> [flags]
//
// Commands:
//
//	fetch      Poll the feed once and cache the result
//	snapshots  List cached snapshots
//	show       Print a snapshot's country table or one country
//	analyze    Hotspot, growth and share analysis
//	diff       Statistics that changed between two snapshots
//	status     Show daemon metrics and cache statistics
//	version    Print version information
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/Mr-Dark-debug/covidash/internal/analysis"
	"github.com/Mr-Dark-debug/covidash/internal/config"
	"github.com/Mr-Dark-debug/covidash/internal/database"
	"github.com/Mr-Dark-debug/covidash/internal/feed"
	"github.com/Mr-Dark-debug/covidash/internal/logger"
	"github.com/Mr-Dark-debug/covidash/internal/summary"
	"github.com/Mr-Dark-debug/covidash/pkg/numfmt"
	"github.com/Mr-Dark-debug/covidash/pkg/timeutil"
)

var (
	Version   = "0.1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "fetch":
		cmdFetch()
	case "snapshots":
		cmdSnapshots()
	case "show":
		cmdShow()
	case "analyze":
		cmdAnalyze()
	case "diff":
		cmdDiff()
	case "status":
		cmdStatus()
	case "version":
		fmt.Printf("covidash v%s (commit: %s, built: %s)\n", Version, GitCommit, BuildTime)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`covidash: pandemic summary dashboard

Usage:
  covidash <command> [flags]

Commands:
  fetch       Poll the feed once and cache the result
  snapshots   List cached snapshots
  show        Print a snapshot's country table or one country
  analyze     Hotspot, growth and share analysis
  diff        Statistics that changed between two snapshots
  status      Show daemon metrics and cache statistics
  version     Print version information

Run 'covidash <command> --help' for details on each command.`)
}

// common holds the flags every command shares.
type common struct {
	config *string
	db     *string
	json   *bool
}

func commonFlags(fs *flag.FlagSet) *common {
	return &common{
		config: fs.String("config", config.DefaultPath(), "Path to config file"),
		db:     fs.String("db", "", "Path to SQLite database (default from config)"),
		json:   fs.Bool("json", false, "Print JSON even on a terminal"),
	}
}

func (c *common) load() config.Config {
	cfg, err := config.Load(*c.config)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *c.db != "" {
		cfg.DBPath = *c.db
	}
	return cfg
}

func (c *common) open(cfg config.Config) *database.DBService {
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		log.Fatalf("Failed to create database directory: %v", err)
	}
	store, err := database.NewDBService(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	return store
}

// cmdFetch polls the configured source once.
func cmdFetch() {
	fs := flag.NewFlagSet("fetch", flag.ExitOnError)
	c := commonFlags(fs)
	source := fs.String("source", "", "Feed URL or local JSON file (default from config)")
	timeout := fs.Duration("timeout", 45*time.Second, "Give up after this long")
	fs.Parse(os.Args[2:])

	cfg := c.load()
	fc := cfg.FeedConfig()
	if *source != "" {
		fc.Source = *source
	}

	store := c.open(cfg)
	defer store.Close()

	lg := logger.New(logger.Options{Buffer: os.Stderr, Level: logger.ParseLevel(cfg.LogLevel)})
	poller := feed.NewPoller(fc, feed.NewSource(fc.Source), store, lg)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	res := poller.RunOnce(ctx)
	if res.Err != nil {
		log.Fatalf("Fetch failed: %v", res.Err)
	}

	if useJSON(*c.json) {
		printJSON(map[string]any{"status": res.Status, "snapshot": res.Snapshot})
		return
	}
	switch res.Status {
	case database.RunStored:
		fmt.Printf("Stored snapshot %s (%d countries)\n", shortID(res.Snapshot.SnapshotID), res.Snapshot.CountryCount)
	case database.RunUnchanged:
		fmt.Printf("Unchanged since snapshot %s (%s)\n", shortID(res.Snapshot.SnapshotID),
			timeutil.RelativeTime(res.Snapshot.FetchedAt, time.Now()))
	}
}

// cmdSnapshots lists cached snapshots, newest first.
func cmdSnapshots() {
	fs := flag.NewFlagSet("snapshots", flag.ExitOnError)
	c := commonFlags(fs)
	limit := fs.Int("limit", 20, "Maximum results")
	source := fs.String("source", "", "Only snapshots from this source")
	since := fs.Duration("since", 0, "Only snapshots fetched within this long, e.g. 72h")
	fs.Parse(os.Args[2:])

	cfg := c.load()
	store := c.open(cfg)
	defer store.Close()

	filter := database.SnapshotFilter{Limit: *limit}
	if *source != "" {
		filter.Source = source
	}
	if *since > 0 {
		from := time.Now().Add(-*since).UnixNano()
		filter.Since = &from
	}

	snaps, err := store.ListSnapshots(filter)
	if err != nil {
		log.Fatalf("Query failed: %v", err)
	}

	if useJSON(*c.json) {
		printJSON(snaps)
		return
	}
	if len(snaps) == 0 {
		fmt.Println("No snapshots cached. Run: covidash fetch")
		return
	}
	rows := make([][]string, 0, len(snaps))
	now := time.Now()
	for _, s := range snaps {
		rows = append(rows, []string{
			shortID(s.SnapshotID),
			timeutil.FormatTimestamp(s.FetchedAt),
			timeutil.RelativeTime(s.FetchedAt, now),
			numfmt.FormatInt(int64(s.CountryCount)),
			s.Source,
		})
	}
	printTable([]string{"ID", "Fetched", "Age", "Countries", "Source"}, rows, 3)
}

// cmdShow prints the country table of a snapshot, or one country's row.
func cmdShow() {
	fs := flag.NewFlagSet("show", flag.ExitOnError)
	c := commonFlags(fs)
	id := fs.String("snapshot", "", "Snapshot ID or prefix (default: latest)")
	country := fs.String("country", "", "Country code to show")
	sortBy := fs.String("sort", string(summary.TotalConfirmed), "Statistic to sort by")
	top := fs.Int("top", 20, "Rows to print, 0 for all")
	fs.Parse(os.Args[2:])

	field, err := summary.ParseField(*sortBy)
	if err != nil {
		log.Fatalf("Invalid --sort: %v", err)
	}

	cfg := c.load()
	store := c.open(cfg)
	defer store.Close()

	snap, sum := loadSnapshot(store, *id)

	if *country != "" {
		rec, _, ok := sum.Country(*country)
		if !ok {
			log.Fatalf("Country %q is not in snapshot %s", *country, shortID(snap.SnapshotID))
		}
		if useJSON(*c.json) {
			printJSON(rec)
			return
		}
		fmt.Printf("%s (%s), snapshot %s\n\n", rec.Country, rec.CountryCode, shortID(snap.SnapshotID))
		printEntry(rec.StatisticEntry)
		return
	}

	countries := append([]summary.CountryRecord(nil), sum.Countries...)
	sort.SliceStable(countries, func(i, j int) bool {
		return field.Value(countries[i].StatisticEntry) > field.Value(countries[j].StatisticEntry)
	})
	if *top > 0 && len(countries) > *top {
		countries = countries[:*top]
	}

	if useJSON(*c.json) {
		printJSON(countries)
		return
	}

	fmt.Printf("Worldwide, snapshot %s (%s)\n\n", shortID(snap.SnapshotID), timeutil.FormatTimestamp(snap.FetchedAt))
	printEntry(sum.Global)
	fmt.Println()

	cols := summary.CountryColumns(countries)
	headers := make([]string, len(cols)+1)
	headers[0] = "Code"
	for i, col := range cols {
		headers[i+1] = col.Name
	}
	rows := make([][]string, 0, len(countries))
	for _, rec := range countries {
		row := []string{rec.CountryCode}
		for _, col := range cols {
			switch v := col.Attr.Value(rec).(type) {
			case float64:
				row = append(row, numfmt.Format(v))
			default:
				row = append(row, fmt.Sprint(v))
			}
		}
		rows = append(rows, row)
	}
	printTable(headers, rows, 2)
}

// cmdAnalyze runs the analysis suite on a snapshot and outputs a report.
func cmdAnalyze() {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	c := commonFlags(fs)
	id := fs.String("snapshot", "", "Snapshot ID or prefix (default: latest)")
	fieldName := fs.String("field", string(summary.NewConfirmed), "Statistic to analyze")
	format := fs.String("format", "", "Output format: markdown, json (default: markdown on a terminal)")
	fs.Parse(os.Args[2:])

	field, err := summary.ParseField(*fieldName)
	if err != nil {
		log.Fatalf("Invalid --field: %v", err)
	}

	cfg := c.load()
	store := c.open(cfg)
	defer store.Close()

	analyzer := analysis.NewAnalyzer(store)
	report, err := analyzer.FullAnalysis(*id, field)
	if err != nil {
		log.Fatalf("Analysis failed: %v", err)
	}

	out := *format
	if out == "" {
		out = "markdown"
		if useJSON(*c.json) {
			out = "json"
		}
	}
	switch out {
	case "json":
		printJSON(report)
	case "markdown":
		fmt.Print(analysis.FormatReport(report))
	default:
		fmt.Fprintf(os.Stderr, "Unknown format: %s\n", out)
		os.Exit(1)
	}
}

// cmdDiff lists what changed between two snapshots.
func cmdDiff() {
	fs := flag.NewFlagSet("diff", flag.ExitOnError)
	c := commonFlags(fs)
	from := fs.String("from", "", "Older snapshot ID or prefix (required)")
	to := fs.String("to", "", "Newer snapshot ID or prefix (default: latest)")
	country := fs.String("country", "", "Only changes for this country code")
	fs.Parse(os.Args[2:])

	if *from == "" {
		fmt.Fprintln(os.Stderr, "Error: --from is required")
		fs.Usage()
		os.Exit(1)
	}

	cfg := c.load()
	store := c.open(cfg)
	defer store.Close()

	changes, err := analysis.NewAnalyzer(store).Compare(*from, *to)
	if err != nil {
		log.Fatalf("Diff failed: %v", err)
	}
	if *country != "" {
		prefix := strings.ToUpper(*country) + "."
		kept := changes[:0]
		for _, ch := range changes {
			if strings.HasPrefix(ch.Path, prefix) || ch.Path == strings.TrimSuffix(prefix, ".") {
				kept = append(kept, ch)
			}
		}
		changes = kept
	}

	if useJSON(*c.json) {
		printJSON(changes)
		return
	}
	if len(changes) == 0 {
		fmt.Println("No changes.")
		return
	}
	rows := make([][]string, 0, len(changes))
	for _, ch := range changes {
		rows = append(rows, []string{ch.Type, ch.Path, ch.OldValue, ch.NewValue})
	}
	printTable([]string{"Change", "Path", "Old", "New"}, rows, 2)
}

// cmdStatus shows daemon metrics and cache statistics.
func cmdStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	c := commonFlags(fs)
	metricsAddr := fs.String("metrics", "", "Daemon metrics address (default from config)")
	fs.Parse(os.Args[2:])

	cfg := c.load()
	addr := cfg.Feed.MetricsAddr
	if *metricsAddr != "" {
		addr = *metricsAddr
	}

	store := c.open(cfg)
	defer store.Close()
	stats, err := store.Stats()
	if err != nil {
		log.Fatalf("Failed to read cache statistics: %v", err)
	}
	runs, err := store.RecentFetches(5)
	if err != nil {
		log.Fatalf("Failed to read fetch log: %v", err)
	}

	metrics, metricsErr := fetchMetrics(addr)

	if useJSON(*c.json) {
		out := map[string]any{"cache": stats, "recent_fetches": runs}
		if metricsErr == nil {
			out["daemon"] = metrics
		}
		printJSON(out)
		return
	}

	if metricsErr != nil {
		fmt.Println("⚠ covidash daemon is not running.")
		fmt.Printf("  Start it with: covidash-daemon\n")
		fmt.Printf("  (%v)\n", metricsErr)
	} else {
		fmt.Println("✅ covidash daemon is running.")
		fmt.Println()
		fmt.Printf("  Polls:             %d\n", metrics.Polls)
		fmt.Printf("  Snapshots stored:  %d\n", metrics.Stored)
		fmt.Printf("  Unchanged polls:   %d\n", metrics.Unchanged)
		fmt.Printf("  Errors:            %d\n", metrics.ErrorCount)
		fmt.Printf("  Uptime:            %s\n", timeutil.FormatDuration(time.Duration(metrics.Uptime)*time.Second))
	}

	fmt.Println()
	fmt.Printf("  Cache:             %s\n", cfg.DBPath)
	fmt.Printf("  Snapshots cached:  %d\n", stats.Snapshots)
	if stats.NewestSnapshot != nil {
		fmt.Printf("  Newest:            %s\n", timeutil.RelativeTime(*stats.NewestSnapshot, time.Now()))
	}
	fmt.Printf("  Fetches logged:    %d (%d failed)\n", stats.Runs, stats.FailedRuns)

	if len(runs) > 0 {
		fmt.Println()
		rows := make([][]string, 0, len(runs))
		for _, r := range runs {
			detail := ""
			if r.Error != nil {
				detail = *r.Error
			} else if r.SnapshotID != nil {
				detail = shortID(*r.SnapshotID)
			}
			rows = append(rows, []string{
				timeutil.FormatTimestamp(r.StartedAt),
				r.Status,
				timeutil.FormatDuration(time.Duration(r.FinishedAt - r.StartedAt)),
				detail,
			})
		}
		printTable([]string{"Started", "Status", "Took", "Detail"}, rows, -1)
	}
}

func fetchMetrics(addr string) (feed.Metrics, error) {
	var m feed.Metrics
	if addr == "" {
		return m, errors.New("metrics server disabled in config")
	}
	url := fmt.Sprintf("http://%s/api/metrics", addr)
	client := &http.Client{Timeout: 3 * time.Second}
	resp, err := client.Get(url)
	if err != nil {
		return m, fmt.Errorf("tried %s: %w", url, err)
	}
	defer resp.Body.Close()
	if err := decodeJSON(resp.Body, &m); err != nil {
		return m, fmt.Errorf("decoding metrics: %w", err)
	}
	return m, nil
}

func loadSnapshot(store database.Store, id string) (*database.Snapshot, *summary.Summary) {
	var (
		snap *database.Snapshot
		err  error
	)
	if id == "" {
		snap, err = store.LatestSnapshot()
	} else {
		snap, err = store.GetSnapshot(id)
	}
	if errors.Is(err, database.ErrNotFound) {
		log.Fatalf("No snapshot found. Run: covidash fetch")
	}
	if err != nil {
		log.Fatalf("Failed to load snapshot: %v", err)
	}
	sum, err := snap.Summary()
	if err != nil {
		log.Fatalf("Failed to decode snapshot: %v", err)
	}
	return snap, sum
}

func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}
