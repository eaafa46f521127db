package chart

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
)

const (
	barWidth  = 6
	columnGap = 2
)

// TargetKind says what a table cell belongs to.
type TargetKind int

const (
	TargetNone TargetKind = iota
	TargetHeader
	TargetRow
	TargetReveal
)

// Target is the result of a table hit test. Index is the column for
// headers and the rendered position for rows.
type Target struct {
	Kind  TargetKind
	Index int
}

// tableViewport remembers the geometry of the last View.
type tableViewport struct {
	colX     []int
	colW     []int
	bodyY    int
	bodyRows int
	shown    int
	offset   int
	footerY  int
}

// ScrollTo moves the body window so the row at pos is visible. It is the
// scroller the dashboard installs with SetScroller.
func (t *Table) ScrollTo(pos int) {
	v := &t.view
	if v.bodyRows <= 0 || pos < 0 {
		return
	}
	switch {
	case pos < v.offset:
		v.offset = pos
	case pos >= v.offset+v.bodyRows:
		v.offset = pos - v.bodyRows + 1
	}
}

// ScrollBy moves the body window by delta rows.
func (t *Table) ScrollBy(delta int) {
	v := &t.view
	v.offset = max(0, min(v.offset+delta, v.shown-v.bodyRows))
}

// HitTest maps a cell of the last View to a header, row or the reveal
// control.
func (t *Table) HitTest(x, y int) Target {
	v := t.view
	switch {
	case y == 0:
		for i := range v.colX {
			if x >= v.colX[i] && x < v.colX[i]+v.colW[i] {
				return Target{Kind: TargetHeader, Index: i}
			}
		}
	case y >= v.bodyY && y < v.bodyY+v.bodyRows:
		pos := v.offset + y - v.bodyY
		if pos < v.shown {
			return Target{Kind: TargetRow, Index: pos}
		}
	case v.footerY > 0 && y == v.footerY:
		return Target{Kind: TargetReveal, Index: -1}
	}
	return Target{Kind: TargetNone, Index: -1}
}

// View paints the table into a width x height block: header, rule, the
// visible window of rows and, when more rows exist, the reveal footer.
func (t *Table) View(width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	cols := t.headers.Get()
	rows := t.RenderedRows()

	footer := t.RevealVisible()
	bodyRows := height - 2
	if footer {
		bodyRows--
	}
	if bodyRows < 1 {
		t.view = tableViewport{}
		return ""
	}

	colW := t.columnWidths(cols, rows, width)
	colX := make([]int, len(colW))
	x := 0
	for i, w := range colW {
		colX[i] = x
		x += w + columnGap
	}

	v := &t.view
	v.colX, v.colW = colX, colW
	v.bodyY = 2
	v.bodyRows = bodyRows
	v.shown = len(rows)
	v.offset = max(0, min(v.offset, len(rows)-bodyRows))
	v.footerY = 0

	lines := make([]string, 0, height)
	lines = append(lines, t.headerLine(cols, colW))
	lines = append(lines, tableRuleStyle.Render(strings.Repeat("─", min(width, max(x-columnGap, 1)))))

	if len(rows) == 0 {
		lines = append(lines, emptyStyle.Render("no rows"))
	}
	end := min(v.offset+bodyRows, len(rows))
	for pos := v.offset; pos < end; pos++ {
		lines = append(lines, t.rowLine(cols, colW, rows[pos], pos))
	}

	if footer {
		for len(lines) < height-1 {
			lines = append(lines, "")
		}
		v.footerY = len(lines)
		lines = append(lines, t.footerLine(len(rows)))
	}
	return strings.Join(lines, "\n")
}

func (t *Table) headerLabel(i int, c Column) string {
	label := c.Name
	if i == t.SortedColumnIndex() && c.Sortable {
		if t.SortOrder() == Asc {
			label += " ▲"
		} else {
			label += " ▼"
		}
	}
	return label
}

func hasBar(c Column) bool {
	return c.Type == TypeNumber && c.Domain != nil
}

// columnWidths sizes each column to its widest label or cell and then
// shrinks the widest columns until the table fits.
func (t *Table) columnWidths(cols []Column, rows []RenderedRow, width int) []int {
	w := make([]int, len(cols))
	for i, c := range cols {
		w[i] = runewidth.StringWidth(t.headerLabel(i, c))
		for _, r := range rows {
			if i < len(r.Cells) {
				cell := runewidth.StringWidth(r.Cells[i])
				if hasBar(c) {
					cell += barWidth + 1
				}
				w[i] = max(w[i], cell)
			}
		}
	}

	total := func() int {
		sum := 0
		for _, n := range w {
			sum += n
		}
		return sum + columnGap*max(len(w)-1, 0)
	}
	for total() > width {
		widest := 0
		for i := range w {
			if w[i] > w[widest] {
				widest = i
			}
		}
		if w[widest] <= 3 {
			break
		}
		w[widest]--
	}
	return w
}

func fit(s string, w int, right bool) string {
	s = runewidth.Truncate(s, w, "…")
	if right {
		return runewidth.FillLeft(s, w)
	}
	return runewidth.FillRight(s, w)
}

func (t *Table) headerLine(cols []Column, colW []int) string {
	sorted := t.SortedColumnIndex()
	parts := make([]string, len(cols))
	for i, c := range cols {
		cell := fit(t.headerLabel(i, c), colW[i], c.Type == TypeNumber)
		if i == sorted && c.Sortable {
			parts[i] = tableHeaderSortedStyle.Render(cell)
		} else {
			parts[i] = tableHeaderStyle.Render(cell)
		}
	}
	return strings.Join(parts, strings.Repeat(" ", columnGap))
}

func (t *Table) rowLine(cols []Column, colW []int, r RenderedRow, pos int) string {
	highlighted := r.Selected || pos == t.focus
	parts := make([]string, len(cols))
	for i, c := range cols {
		text := ""
		if i < len(r.Cells) {
			text = r.Cells[i]
		}
		if !hasBar(c) || colW[i] <= barWidth+1 {
			parts[i] = fit(text, colW[i], c.Type == TypeNumber)
			continue
		}
		bar := ""
		if i < len(r.Bars) {
			bar = r.Bars[i]
		}
		parts[i] = renderBar(bar, c.Color, highlighted) + " " +
			fit(text, colW[i]-barWidth-1, true)
	}
	line := strings.Join(parts, strings.Repeat(" ", columnGap))
	switch {
	case r.Selected:
		return tableSelectedStyle.Render(line)
	case pos == t.focus:
		return tableFocusStyle.Render(line)
	}
	return tableCellStyle.Render(line)
}

// renderBar draws a magnitude indicator from a percentage attribute.
// Highlighted rows get a plain bar so the row style is not interrupted.
func renderBar(pct, color string, plain bool) string {
	v, err := strconv.ParseFloat(pct, 64)
	if err != nil {
		return strings.Repeat(" ", barWidth)
	}
	filled := int(math.Round(v / 100 * barWidth))
	full := strings.Repeat("▇", filled)
	empty := strings.Repeat("·", barWidth-filled)
	if plain {
		return full + empty
	}
	style := tableCellStyle.Foreground(resolveColor(color))
	return style.Render(full) + tableBarEmptyStyle.Render(empty)
}

func (t *Table) footerLine(shown int) string {
	total, err := strconv.Atoi(t.tfoot.Attr("data-total"))
	if err != nil {
		total = shown
	}
	more := min(t.Batch(), total-shown)
	return revealStyle.Render(fmt.Sprintf("▾ show %d more (%d of %d)", more, shown, total))
}
