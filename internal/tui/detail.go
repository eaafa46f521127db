package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Mr-Dark-debug/covidash/pkg/numfmt"
	"github.com/Mr-Dark-debug/covidash/pkg/timeutil"
)

// renderDetail lists the statistics behind the pie: totals with the daily
// change, each part's share of confirmed cases and where the snapshot came
// from.
func renderDetail(m *Model, width, height int) string {
	if m.page.sum == nil {
		return ""
	}
	e, _ := m.page.entry()

	var lines []string
	lines = append(lines, detailRow("Confirmed", numfmt.Format(e.TotalConfirmed), e.NewConfirmed))
	lines = append(lines, detailRow("Active", numfmt.Format(e.TotalActive()), 0))
	lines = append(lines, detailRow("Deaths", numfmt.Format(e.TotalDeaths), e.NewDeaths))
	lines = append(lines, detailRow("Recovered", numfmt.Format(e.TotalRecovered), e.NewRecovered))

	barWidth := min(width-20, 40)
	if barWidth > 4 && e.TotalConfirmed > 0 {
		lines = append(lines, "")
		lines = append(lines, detailSectionStyle.Render("Share of confirmed"))
		lines = append(lines, renderUsageBar("Active", e.TotalActive(), e.TotalConfirmed, barWidth, colorActive))
		lines = append(lines, renderUsageBar("Deaths", e.TotalDeaths, e.TotalConfirmed, barWidth, colorDeaths))
		lines = append(lines, renderUsageBar("Recovered", e.TotalRecovered, e.TotalConfirmed, barWidth, colorRecovered))
	}

	if snap := m.page.snapshot; snap != nil {
		lines = append(lines, "")
		lines = append(lines, detailSectionStyle.Render("Snapshot"))
		lines = append(lines, detailRow("ID", shortID(snap.SnapshotID, 8), 0))
		lines = append(lines, detailRow("Fetched", timeutil.FormatTimestamp(snap.FetchedAt), 0))
		if m.page.sum.Date != "" {
			lines = append(lines, detailRow("Feed date", timeutil.FormatFeedDate(m.page.sum.Date), 0))
		}
		lines = append(lines, detailRow("Source", truncate(snap.Source, width-12), 0))
	}

	if len(lines) > height {
		lines = lines[:height]
	}
	return strings.Join(lines, "\n")
}

// renderDetailPanel wraps detail in a styled panel.
func renderDetailPanel(m *Model, r rect) string {
	c := r.content()
	return renderPanel("Detail", m.focus == PaneDetail, r, renderDetail(m, c.w, c.h))
}

// ── helpers ──

func detailRow(label, value string, delta float64) string {
	row := detailLabelStyle.Render(fmt.Sprintf("%-10s", label)) + " " + detailValueStyle.Render(value)
	if delta > 0 {
		row += " " + dimStyle.Render("+"+numfmt.Format(delta))
	}
	return row
}

func renderUsageBar(label string, count, total float64, barWidth int, color lipgloss.Color) string {
	if total <= 0 {
		return ""
	}
	frac := count / total
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}
	filled := int(frac * float64(barWidth))
	if filled < 1 && count > 0 {
		filled = 1
	}
	empty := barWidth - filled

	bar := lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("█", filled)) +
		barEmptyStyle.Render(strings.Repeat("░", empty))

	return fmt.Sprintf("%-10s %s %4.1f%%", label, bar, frac*100)
}
