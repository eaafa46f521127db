package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Mr-Dark-debug/covidash/internal/chart"
	"github.com/Mr-Dark-debug/covidash/pkg/timeutil"
)

// renderHeader produces the top bar:
//
//	COVIDASH │ Germany #DE │ Total Deaths ▼ │ fetched 3m ago
func renderHeader(m *Model) string {
	sep := headerSepStyle.Render(" │ ")

	_, label := m.page.entry()
	parts := []string{headerBrandStyle.Render("COVIDASH"), sep, headerLabelStyle.Render(label)}
	if link := deepLink(m); link != "" {
		parts = append(parts, " ", headerLinkStyle.Render(link))
	}

	if s := sortLabel(m); s != "" {
		parts = append(parts, sep, headerMetaStyle.Render(s))
	}

	if snap := m.page.snapshot; snap != nil {
		fetched := "fetched " + timeutil.RelativeTime(snap.FetchedAt, m.opts.Now())
		if m.page.pinned {
			fetched = "pinned " + shortID(snap.SnapshotID, 8) + ", " + fetched
		}
		parts = append(parts, sep, headerMetaStyle.Render(fetched))
	}

	return headerBarStyle.Width(m.width).MaxHeight(1).Render(strings.Join(parts, ""))
}

// deepLink is the fragment that restores the current selection with
// covidash-tui --select.
func deepLink(m *Model) string {
	if m.page.selected == "" {
		return ""
	}
	return "#" + m.page.selected
}

func sortLabel(m *Model) string {
	cols := m.table.Headers()
	i := m.page.sortCol
	if i < 0 || i >= len(cols) {
		return ""
	}
	arrow := "▲"
	if m.page.sortOrder == chart.Desc {
		arrow = "▼"
	}
	return fmt.Sprintf("%s %s", cols[i].Name, arrow)
}

// renderFooter produces the status line with keyboard hints, or the full
// key reference when help is expanded.
func renderFooter(m *Model) string {
	left := statusStyle.Render(m.statusMsg)
	if m.err != nil {
		left = statusErrStyle.Render(m.statusMsg)
	}

	if m.help.ShowAll {
		bar := lipgloss.NewStyle().Background(colorSurface).Width(m.width).Render(left)
		return lipgloss.JoinVertical(lipgloss.Left, bar, m.help.View(m.keys))
	}

	h := m.help
	h.Width = max(m.width-lipgloss.Width(left)-1, 0)
	right := h.View(m.keys)

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := left + strings.Repeat(" ", gap) + right
	return lipgloss.NewStyle().
		Background(colorSurface).
		Width(m.width).
		MaxHeight(1).
		Render(bar)
}
