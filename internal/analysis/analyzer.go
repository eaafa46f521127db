// Package analysis provides lightweight, deterministic statistics over
// cached summary snapshots.
//
// Key capabilities:
//   - Outbreak hotspot detection via Z-score analysis
//   - Growth trend analysis via linear regression across snapshots
//   - Share attribution of a worldwide figure to countries
package analysis

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/Mr-Dark-debug/covidash/internal/database"
	"github.com/Mr-Dark-debug/covidash/internal/summary"
	"github.com/Mr-Dark-debug/covidash/pkg/jsonutil"
	"github.com/Mr-Dark-debug/covidash/pkg/numfmt"
	"github.com/Mr-Dark-debug/covidash/pkg/timeutil"
)

// Analyzer runs statistics over the snapshot cache.
type Analyzer struct {
	store database.Store
}

// NewAnalyzer creates a new analysis engine backed by the given store.
func NewAnalyzer(store database.Store) *Analyzer {
	return &Analyzer{store: store}
}

// load returns the snapshot with the given ID, or the latest one when id
// is empty.
func (a *Analyzer) load(id string) (*database.Snapshot, *summary.Summary, error) {
	var (
		snap *database.Snapshot
		err  error
	)
	if id == "" {
		snap, err = a.store.LatestSnapshot()
	} else {
		snap, err = a.store.GetSnapshot(id)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("loading snapshot for analysis: %w", err)
	}
	sum, err := snap.Summary()
	if err != nil {
		return nil, nil, err
	}
	return snap, sum, nil
}

// ============================================================
// Hotspot Detection
// ============================================================

// Hotspot identifies a country with an abnormally high statistic.
type Hotspot struct {
	Country     string  `json:"country"`
	CountryCode string  `json:"country_code"`
	Value       float64 `json:"value"`
	ZScore      float64 `json:"z_score"`
	Severity    string  `json:"severity"` // "low", "medium", "high"
}

// DefaultThreshold is the Z-score above which a country is reported.
const DefaultThreshold = 1.5

// Hotspots calculates the Z-score of field across countries and returns
// those above threshold, highest first.
//
// A Z-score > 2.0 is a "medium" hotspot, > 3.0 a "high" one.
func Hotspots(countries []summary.CountryRecord, field summary.Field, threshold float64) []Hotspot {
	if len(countries) < 2 {
		return nil
	}

	values := make([]float64, len(countries))
	var sum, sumSq float64
	for i, c := range countries {
		v := field.Value(c.StatisticEntry)
		values[i] = v
		sum += v
		sumSq += v * v
	}

	n := float64(len(countries))
	mean := sum / n
	stddev := math.Sqrt(math.Max(sumSq/n-mean*mean, 0))
	if stddev == 0 {
		return nil
	}

	var hotspots []Hotspot
	for i, c := range countries {
		z := (values[i] - mean) / stddev
		if z <= threshold {
			continue
		}
		severity := "low"
		if z > 3.0 {
			severity = "high"
		} else if z > 2.0 {
			severity = "medium"
		}
		hotspots = append(hotspots, Hotspot{
			Country:     c.Country,
			CountryCode: c.CountryCode,
			Value:       values[i],
			ZScore:      math.Round(z*100) / 100,
			Severity:    severity,
		})
	}

	sort.SliceStable(hotspots, func(i, j int) bool {
		return hotspots[i].ZScore > hotspots[j].ZScore
	})
	return hotspots
}

// DetectHotspots runs Hotspots over a stored snapshot ("" for the latest).
func (a *Analyzer) DetectHotspots(snapshotID string, field summary.Field) ([]Hotspot, error) {
	_, sum, err := a.load(snapshotID)
	if err != nil {
		return nil, err
	}
	return Hotspots(sum.Countries, field, DefaultThreshold), nil
}

// ============================================================
// Growth Analysis
// ============================================================

// GrowthReport is the trend of a worldwide statistic across snapshots.
type GrowthReport struct {
	Field          summary.Field `json:"field"`
	Snapshots      int           `json:"snapshots"`
	First          float64       `json:"first"`
	Last           float64       `json:"last"`
	PerDay         float64       `json:"per_day"` // regression slope
	Intercept      float64       `json:"intercept"`
	RSquared       float64       `json:"r_squared"`
	Prediction7Day float64       `json:"prediction_7_day"`
	IsRising       bool          `json:"is_rising"`
}

// dataPoint is a single time-series observation for regression analysis.
type dataPoint struct {
	x float64 // days since the first snapshot
	y float64
}

// AnalyzeGrowth fits a line through the worldwide value of field over the
// newest limit snapshots.
func (a *Analyzer) AnalyzeGrowth(field summary.Field, limit int) (*GrowthReport, error) {
	snaps, err := a.store.ListSnapshots(database.SnapshotFilter{Limit: limit, WithPayload: true})
	if err != nil {
		return nil, fmt.Errorf("listing snapshots for growth analysis: %w", err)
	}

	report := &GrowthReport{Field: field, Snapshots: len(snaps)}
	if len(snaps) == 0 {
		return report, nil
	}

	// Oldest first.
	sort.Slice(snaps, func(i, j int) bool { return snaps[i].FetchedAt < snaps[j].FetchedAt })

	base := snaps[0].FetchedAt
	points := make([]dataPoint, 0, len(snaps))
	for _, snap := range snaps {
		sum, err := snap.Summary()
		if err != nil {
			continue
		}
		points = append(points, dataPoint{
			x: float64(snap.FetchedAt-base) / float64(24*time.Hour),
			y: field.Value(sum.Global),
		})
	}
	if len(points) == 0 {
		return report, nil
	}

	report.First = points[0].y
	report.Last = points[len(points)-1].y
	if len(points) < 2 {
		return report, nil
	}

	slope, intercept, rSquared := linearRegression(points)
	lastX := points[len(points)-1].x

	report.PerDay = math.Round(slope*100) / 100
	report.Intercept = math.Round(intercept*100) / 100
	report.RSquared = math.Round(rSquared*1000) / 1000
	report.Prediction7Day = math.Max(0, math.Round(slope*(lastX+7)+intercept))
	report.IsRising = slope > 0 && rSquared > 0.7
	return report, nil
}

// linearRegression computes ordinary least squares regression.
// Returns slope (m), intercept (b), and R-squared goodness of fit.
func linearRegression(points []dataPoint) (slope, intercept, rSquared float64) {
	n := float64(len(points))
	if n < 2 {
		return 0, 0, 0
	}

	var sumX, sumY, sumXY, sumX2 float64
	for _, p := range points {
		sumX += p.x
		sumY += p.y
		sumXY += p.x * p.y
		sumX2 += p.x * p.x
	}

	denom := n*sumX2 - sumX*sumX
	if denom == 0 {
		return 0, sumY / n, 0
	}

	slope = (n*sumXY - sumX*sumY) / denom
	intercept = (sumY - slope*sumX) / n

	meanY := sumY / n
	var ssRes, ssTot float64
	for _, p := range points {
		predicted := slope*p.x + intercept
		ssRes += (p.y - predicted) * (p.y - predicted)
		ssTot += (p.y - meanY) * (p.y - meanY)
	}

	if ssTot == 0 {
		rSquared = 1.0
	} else {
		rSquared = 1 - ssRes/ssTot
	}

	return slope, intercept, rSquared
}

// ============================================================
// Share Attribution
// ============================================================

// ShareEntry attributes part of a worldwide figure to one country.
type ShareEntry struct {
	Country    string  `json:"country"`
	Value      float64 `json:"value"`
	Percentage float64 `json:"percentage"`
}

// Shares returns the top countries by field with their share of the
// country total, largest first. top <= 0 returns every country.
func Shares(countries []summary.CountryRecord, field summary.Field, top int) []ShareEntry {
	var total float64
	entries := make([]ShareEntry, 0, len(countries))
	for _, c := range countries {
		v := field.Value(c.StatisticEntry)
		total += v
		entries = append(entries, ShareEntry{Country: c.Country, Value: v})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Value > entries[j].Value
	})
	if top > 0 && len(entries) > top {
		entries = entries[:top]
	}
	for i := range entries {
		if total > 0 {
			entries[i].Percentage = math.Round(entries[i].Value/total*10000) / 100
		}
	}
	return entries
}

// ============================================================
// Full Analysis Report
// ============================================================

// Report is the complete output of `covidash analyze`.
type Report struct {
	SnapshotID  string                 `json:"snapshot_id"`
	FetchedAt   string                 `json:"fetched_at"`
	GeneratedAt string                 `json:"generated_at"`
	Field       summary.Field          `json:"field"`
	Global      summary.StatisticEntry `json:"global"`
	Hotspots    []Hotspot              `json:"hotspots"`
	Growth      *GrowthReport          `json:"growth"`
	Shares      []ShareEntry           `json:"shares"`
	Warnings    []string               `json:"warnings"`
}

// ============================================================
// Snapshot Comparison
// ============================================================

// Compare lists the statistics that changed between two snapshots, keyed
// as "<CountryCode>.<Statistic>" ("Global.<Statistic>" for the world).
// An empty toID compares against the latest snapshot.
func (a *Analyzer) Compare(fromID, toID string) ([]jsonutil.Change, error) {
	_, from, err := a.load(fromID)
	if err != nil {
		return nil, err
	}
	_, to, err := a.load(toID)
	if err != nil {
		return nil, err
	}
	changes, err := jsonutil.DiffValues(from.Keyed(), to.Keyed())
	if err != nil {
		return nil, fmt.Errorf("comparing snapshots: %w", err)
	}
	return changes, nil
}

// FullAnalysis runs every pass over a snapshot ("" for the latest).
func (a *Analyzer) FullAnalysis(snapshotID string, field summary.Field) (*Report, error) {
	snap, sum, err := a.load(snapshotID)
	if err != nil {
		return nil, err
	}

	report := &Report{
		SnapshotID:  snap.SnapshotID,
		FetchedAt:   timeutil.FormatTimestamp(snap.FetchedAt),
		GeneratedAt: time.Now().Format(time.RFC3339),
		Field:       field,
		Global:      sum.Global,
		Hotspots:    Hotspots(sum.Countries, field, DefaultThreshold),
		Shares:      Shares(sum.Countries, field, 10),
	}

	growth, err := a.AnalyzeGrowth(field, 30)
	if err != nil {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("Growth analysis failed: %v", err))
	} else {
		report.Growth = growth
	}

	if growth != nil && growth.IsRising {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("⚠ RISING %s: %s per day (R²=%.3f), %s expected in 7 days.",
				field, numfmt.Format(growth.PerDay), growth.RSquared, numfmt.Format(growth.Prediction7Day)))
	}
	for _, h := range report.Hotspots {
		if h.Severity == "high" {
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("⚠ HOTSPOT: %s reports %s %s (Z-score: %.2f).",
					h.Country, numfmt.Format(h.Value), field, h.ZScore))
		}
	}

	return report, nil
}

// FormatReport generates a human-readable markdown report.
func FormatReport(report *Report) string {
	var b strings.Builder

	b.WriteString("# covidash Analysis Report\n\n")
	fmt.Fprintf(&b, "**Snapshot:** `%s` (fetched %s)\n", report.SnapshotID, report.FetchedAt)
	fmt.Fprintf(&b, "**Generated:** %s\n\n", report.GeneratedAt)

	b.WriteString("## Worldwide\n\n")
	b.WriteString("| Metric | Value |\n")
	b.WriteString("|--------|-------|\n")
	for _, f := range summary.Fields {
		fmt.Fprintf(&b, "| %s | %s |\n", f, numfmt.Format(f.Value(report.Global)))
	}
	b.WriteString("\n")

	if len(report.Hotspots) > 0 {
		fmt.Fprintf(&b, "## Hotspots (%s)\n\n", report.Field)
		b.WriteString("| Country | Value | Z-Score | Severity |\n")
		b.WriteString("|---------|-------|---------|----------|\n")
		for _, h := range report.Hotspots {
			fmt.Fprintf(&b, "| %s | %s | %.2f | %s |\n",
				h.Country, numfmt.Format(h.Value), h.ZScore, h.Severity)
		}
		b.WriteString("\n")
	}

	if g := report.Growth; g != nil && g.Snapshots > 1 {
		b.WriteString("## Growth\n\n")
		fmt.Fprintf(&b, "- **Snapshots:** %d\n", g.Snapshots)
		fmt.Fprintf(&b, "- **Per Day:** %s\n", numfmt.Format(g.PerDay))
		fmt.Fprintf(&b, "- **R² Fit:** %.3f\n", g.RSquared)
		fmt.Fprintf(&b, "- **7-day Prediction:** %s\n", numfmt.Format(g.Prediction7Day))
		b.WriteString("\n")
	}

	if len(report.Shares) > 0 {
		fmt.Fprintf(&b, "## Share of %s\n\n", report.Field)
		b.WriteString("| Country | Value | % |\n")
		b.WriteString("|---------|-------|---|\n")
		for _, s := range report.Shares {
			fmt.Fprintf(&b, "| %s | %s | %.1f%% |\n", s.Country, numfmt.Format(s.Value), s.Percentage)
		}
		b.WriteString("\n")
	}

	if len(report.Warnings) > 0 {
		b.WriteString("## Warnings\n\n")
		for _, w := range report.Warnings {
			fmt.Fprintf(&b, "- %s\n", w)
		}
	}

	return b.String()
}
