package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Mr-Dark-debug/covidash/pkg/numfmt"
	"github.com/Mr-Dark-debug/covidash/pkg/timeutil"
)

// handleSnapshotKey drives the snapshot picker. Picking anything but the
// newest snapshot pins it until the next manual reload.
func (m *Model) handleSnapshotKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.snapCursor > 0 {
			m.snapCursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.snapCursor < len(m.snapshots)-1 {
			m.snapCursor++
		}
	case key.Matches(msg, m.keys.Select):
		if m.snapCursor < len(m.snapshots) {
			m.showSnapshots = false
			id := m.snapshots[m.snapCursor].SnapshotID
			return m.loadSnapshot(id, m.snapCursor > 0)
		}
	case key.Matches(msg, m.keys.Clear), key.Matches(msg, m.keys.Snapshots):
		m.showSnapshots = false
	}
	return nil
}

// renderSnapshotList renders the snapshot selection screen.
func renderSnapshotList(m *Model, width, height int) string {
	if len(m.snapshots) == 0 {
		return placeEmpty(width, height,
			"No snapshots cached.\n\n"+
				"Run covidash fetch, or start covidash-daemon,\n"+
				"then snapshots will appear here.")
	}

	title := panelTitleStyle.Render("Snapshots")
	count := dimStyle.Render(fmt.Sprintf("  %d cached", len(m.snapshots)))

	lines := []string{title + count, ""}

	maxVisible := max(height-2, 1)
	startIdx := 0
	if m.snapCursor >= maxVisible {
		startIdx = m.snapCursor - maxVisible + 1
	}
	endIdx := min(startIdx+maxVisible, len(m.snapshots))

	now := m.opts.Now()
	for i := startIdx; i < endIdx; i++ {
		s := m.snapshots[i]

		marker := dimStyle.Render("○")
		if m.page.snapshot != nil && s.SnapshotID == m.page.snapshot.SnapshotID {
			marker = itemPinnedStyle.Render("●")
		}

		content := fmt.Sprintf("%s  %s  %s  %s  %s",
			marker,
			shortID(s.SnapshotID, 8),
			timeutil.FormatTimestamp(s.FetchedAt),
			dimStyle.Render(fmt.Sprintf("%-8s", timeutil.RelativeTime(s.FetchedAt, now))),
			dimStyle.Render(numfmt.FormatInt(int64(s.CountryCount))+" countries"),
		)

		style := itemStyle
		if i == m.snapCursor {
			style = itemSelectedStyle
		}
		lines = append(lines, style.Width(max(width-2, 0)).MaxHeight(1).Render(content))
	}

	return strings.Join(lines, "\n")
}
