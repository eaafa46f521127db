package tui

import "github.com/charmbracelet/lipgloss"

// Pane identifies a dashboard pane.
type Pane int

const (
	PaneTable Pane = iota
	PanePie
	PaneDetail
)

// compactWidth is the narrowest terminal that shows all panes side by
// side. Below it only the focused pane is drawn.
const compactWidth = 70

type rect struct {
	x, y, w, h int
}

func (r rect) contains(x, y int) bool {
	return x >= r.x && x < r.x+r.w && y >= r.y && y < r.y+r.h
}

// content is the area inside a panel: below the border and title line,
// inside the horizontal padding.
func (r rect) content() rect {
	return rect{x: r.x + 1, y: r.y + 2, w: max(r.w-2, 0), h: max(r.h-2, 0)}
}

type layout struct {
	compact bool
	pie     rect
	detail  rect
	table   rect
}

// computeLayout splits the body between the header line and the footer.
func computeLayout(width, height, footerHeight int, focus Pane) layout {
	bodyY := 1
	bodyH := max(height-bodyY-footerHeight, 0)

	if width < compactWidth {
		full := rect{x: 0, y: bodyY, w: width, h: bodyH}
		l := layout{compact: true}
		switch focus {
		case PanePie:
			l.pie = full
		case PaneDetail:
			l.detail = full
		default:
			l.table = full
		}
		return l
	}

	leftW := width * 40 / 100
	pieH := bodyH * 60 / 100
	return layout{
		pie:    rect{x: 0, y: bodyY, w: leftW, h: pieH},
		detail: rect{x: 0, y: bodyY + pieH, w: leftW, h: bodyH - pieH},
		table:  rect{x: leftW, y: bodyY, w: width - leftW, h: bodyH},
	}
}

// renderPanel draws title and body inside r.
func renderPanel(title string, active bool, r rect, body string) string {
	if r.w <= 0 || r.h <= 0 {
		return ""
	}
	style, titleStyle := panelStyle, panelTitleDimStyle
	if active {
		style, titleStyle = panelActiveStyle, panelTitleStyle
	}
	content := titleStyle.Render(truncate(title, r.w-2)) + "\n" + body
	return style.Width(r.w).Height(r.h - 1).MaxHeight(r.h).Render(content)
}

func placeEmpty(w, h int, msg string) string {
	return lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center, emptyStateStyle.Render(msg))
}
