package chart

import (
	"fmt"
	"strconv"

	"github.com/Mr-Dark-debug/covidash/internal/attr"
	"github.com/Mr-Dark-debug/covidash/internal/vtree"
	"github.com/Mr-Dark-debug/covidash/pkg/numfmt"
)

// DefaultBatch is how many rows one reveal adds when no batch is set.
const DefaultBatch = 10

var (
	selectedField  = attr.IntField{Name: "selected", Default: attr.Unset, Min: 0, AllowUnset: true}
	sortIndexField = attr.IntField{Name: "sorted-column-index", Default: attr.Unset, Min: 0, AllowUnset: true}
	sortOrderField = attr.EnumField{Name: "sorted-column-order", Default: string(Asc), Values: []string{string(Asc), string(Desc)}}
	topField       = attr.IntField{Name: "top", Default: attr.Unset, Min: 0, AllowUnset: true}
	batchField     = attr.IntField{Name: "batch", Default: DefaultBatch, Min: 1}
)

// Table is the sortable, paginated table component.
//
// Rows are reconciled by their position in sorted order: after a re-sort
// the same row elements are rebound to different rows. Setting RowKey
// switches to identity keys, in which case row elements follow their rows.
type Table struct {
	*base

	rows    *attr.Property[[]any]
	headers *attr.Property[[]Column]

	// RowKey, when set, keys row elements by row identity instead of
	// position. Keys must be unique.
	RowKey func(row any) string

	root  *vtree.Node
	thead *vtree.Node
	tbody *vtree.Node
	tfoot *vtree.Node

	focus    int
	scroller func(pos int)

	onSelect []func(SelectEvent)
	onSort   []func(SortEvent)

	view tableViewport
}

// NewTable creates a detached table. Call Connect to schedule its first
// render.
func NewTable(opts Options) *Table {
	t := &Table{
		rows:    attr.NewProperty[[]any](nil),
		headers: attr.NewProperty[[]Column](nil),
		root:    vtree.New("table"),
		focus:   -1,
	}
	t.thead = t.root.Append(vtree.New("thead"))
	t.tbody = t.root.Append(vtree.New("tbody"))
	t.tfoot = t.root.Append(vtree.New("tfoot"))
	t.tfoot.SetClass("hidden", true)

	t.base = newBase(opts, []string{
		"rows", "headers", "selected", "sorted-column-index",
		"sorted-column-order", "top", "batch",
	}, t.attributeChanged, t.Render)
	return t
}

func (t *Table) attributeChanged(name string) {
	switch name {
	case "rows":
		raw, ok := t.attrs.Get(name)
		if !ok {
			if !t.rows.Set(nil) {
				return
			}
			break
		}
		changed, err := t.rows.SetJSON(raw)
		if err != nil {
			t.log.Debug("ignoring malformed rows attribute", "err", err)
			return
		}
		if !changed {
			return
		}
	case "headers":
		raw, ok := t.attrs.Get(name)
		if !ok {
			if !t.headers.Set(nil) {
				return
			}
			break
		}
		changed, err := t.headers.SetJSON(raw)
		if err != nil {
			t.log.Debug("ignoring malformed headers attribute", "err", err)
			return
		}
		if !changed {
			return
		}
	}
	t.scheduleRender()
}

// ────────────────────────────────────────────────────────────
// Properties
// ────────────────────────────────────────────────────────────

func (t *Table) Rows() []any {
	return append([]any(nil), t.rows.Get()...)
}

func (t *Table) SetRows(rows []any) {
	if t.rows.Set(append([]any(nil), rows...)) {
		t.scheduleRender()
	}
}

func (t *Table) Headers() []Column {
	return append([]Column(nil), t.headers.Get()...)
}

func (t *Table) SetHeaders(cols []Column) {
	if t.headers.Set(append([]Column(nil), cols...)) {
		t.scheduleRender()
	}
}

// Selected is the unsorted index of the selected row, or -1. An index
// past the end of the current rows reads as -1; the attribute itself is
// kept, so it becomes live again once enough rows arrive.
func (t *Table) Selected() int {
	v := selectedField.Get(t.attrs)
	if v >= len(t.rows.Get()) {
		return attr.Unset
	}
	return v
}

func (t *Table) SetSelected(v int) error {
	return selectedField.Set(t.attrs, v)
}

// SortedColumnIndex is the active sort column, or -1.
func (t *Table) SortedColumnIndex() int {
	return sortIndexField.Get(t.attrs)
}

func (t *Table) SetSortedColumnIndex(v int) error {
	return sortIndexField.Set(t.attrs, v)
}

func (t *Table) SortOrder() Order {
	return Order(sortOrderField.Get(t.attrs))
}

func (t *Table) SetSortOrder(o Order) error {
	return sortOrderField.Set(t.attrs, string(o))
}

// Top is how many sorted rows are shown, or -1 for all of them.
func (t *Table) Top() int {
	return topField.Get(t.attrs)
}

func (t *Table) SetTop(v int) error {
	return topField.Set(t.attrs, v)
}

// Batch is how many rows Reveal adds.
func (t *Table) Batch() int {
	return batchField.Get(t.attrs)
}

func (t *Table) SetBatch(v int) error {
	return batchField.Set(t.attrs, v)
}

// OnSelect registers a selection listener.
func (t *Table) OnSelect(fn func(SelectEvent)) {
	t.onSelect = append(t.onSelect, fn)
}

// OnSort registers a sort listener.
func (t *Table) OnSort(fn func(SortEvent)) {
	t.onSort = append(t.onSort, fn)
}

// SetScroller installs the hook used to bring the selected row into view
// after a render. Without one, scrolling is skipped.
func (t *Table) SetScroller(fn func(pos int)) {
	t.scroller = fn
}

// ────────────────────────────────────────────────────────────
// Interaction
// ────────────────────────────────────────────────────────────

// ClickHeader runs the sort state machine for column i: a new sortable
// column starts in its type's default order, a second click flips it, a
// third switches sorting off. Non-sortable columns ignore clicks.
func (t *Table) ClickHeader(i int) {
	cols := t.headers.Get()
	if i < 0 || i >= len(cols) || !cols[i].Sortable {
		return
	}
	col := cols[i]

	index, order := i, col.defaultOrder()
	if t.SortedColumnIndex() == i {
		if t.SortOrder() == col.defaultOrder() {
			order = col.defaultOrder().opposite()
		} else {
			index, order = attr.Unset, col.defaultOrder()
		}
	}

	// Both values were validated above; the setters cannot fail.
	_ = t.SetSortedColumnIndex(index)
	_ = t.SetSortOrder(order)

	ev := SortEvent{Column: index, Order: order}
	for _, fn := range t.onSort {
		fn(ev)
	}
}

// ClickRow toggles the selection of the row rendered at pos.
func (t *Table) ClickRow(pos int) {
	rows := t.tbody.Select("tr")
	if pos < 0 || pos >= len(rows) {
		return
	}
	sr, ok := rows[pos].Datum.(sortedRow)
	if !ok {
		return
	}

	next := sr.index
	if t.Selected() == sr.index {
		next = attr.Unset
	}
	_ = t.SetSelected(next)

	ev := SelectEvent{Index: next}
	for _, fn := range t.onSelect {
		fn(ev)
	}
}

// Reveal shows Batch more rows.
func (t *Table) Reveal() {
	top := t.Top()
	if top < 0 {
		return
	}
	_ = t.SetTop(top + t.Batch())
}

// RevealVisible reports whether the reveal control is shown.
func (t *Table) RevealVisible() bool {
	return !t.tfoot.HasClass("hidden")
}

// SetFocus highlights the row rendered at pos without selecting it
// (keyboard cursor). -1 clears it.
func (t *Table) SetFocus(pos int) {
	t.focus = pos
	for i, tr := range t.tbody.Select("tr") {
		tr.SetClass("focused", i == pos)
	}
}

// Focus returns the focused row position, or -1.
func (t *Table) Focus() int {
	return t.focus
}

// ────────────────────────────────────────────────────────────
// Render
// ────────────────────────────────────────────────────────────

// Render reconciles header, body and footer with the current state.
func (t *Table) Render() error {
	t.lastErr = t.render()
	return t.lastErr
}

func (t *Table) activeColumn() *Column {
	cols := t.headers.Get()
	i := t.SortedColumnIndex()
	if i < 0 || i >= len(cols) || !cols[i].Sortable {
		return nil
	}
	return &cols[i]
}

// visibleCount is how many sorted rows to render: Top, stretched to
// include the selected row wherever the sort put it.
func visibleCount(sorted []sortedRow, top, selected int) int {
	n := len(sorted)
	if top < 0 || top >= n {
		return n
	}
	count := top
	if selected >= 0 {
		for pos, sr := range sorted {
			if sr.index == selected {
				count = max(count, pos+1)
				break
			}
		}
	}
	return min(count, n)
}

func (t *Table) render() error {
	cols := t.headers.Get()
	sortIdx := t.SortedColumnIndex()
	order := t.SortOrder()
	selected := t.Selected()

	colKeys := make([]string, len(cols))
	for i, c := range cols {
		colKeys[i] = c.Name
	}
	_, err := vtree.Join(t.thead, "th", colKeys, vtree.Handlers{
		Enter: func(string, int) *vtree.Node { return vtree.New("th") },
		Update: func(n *vtree.Node, i int) {
			c := cols[i]
			n.Datum = c
			n.SetText(c.Name)
			n.SetClass("sortable", c.Sortable)
			n.SetClass("number", c.Type == TypeNumber)
			n.SetClass("sorted", i == sortIdx)
			if i == sortIdx {
				n.SetAttr("data-order", string(order))
			} else {
				n.SetAttr("data-order", "")
			}
		},
	})
	if err != nil {
		return fmt.Errorf("rendering table header: %w", err)
	}

	sorted := sortRows(t.rows.Get(), t.activeColumn(), order)
	shown := sorted[:visibleCount(sorted, t.Top(), selected)]

	rowKeys := make([]string, len(shown))
	for pos, sr := range shown {
		if t.RowKey != nil {
			rowKeys[pos] = t.RowKey(sr.row)
		} else {
			rowKeys[pos] = strconv.Itoa(pos)
		}
	}

	selectedPos := -1
	trs, err := vtree.Join(t.tbody, "tr", rowKeys, vtree.Handlers{
		Enter: func(string, int) *vtree.Node { return vtree.New("tr") },
		Update: func(n *vtree.Node, pos int) {
			sr := shown[pos]
			n.Datum = sr
			n.SetAttr("data-index", strconv.Itoa(sr.index))
			n.SetClass("selected", sr.index == selected)
			n.SetClass("focused", pos == t.focus)
			if sr.index == selected {
				selectedPos = pos
			}
			if err := t.renderCells(n, cols, sr.row); err != nil {
				t.log.Error("rendering row cells", "row", sr.index, "err", err)
			}
		},
	})
	if err != nil {
		return fmt.Errorf("rendering table body: %w", err)
	}

	t.renderFooter(len(trs), len(sorted))

	if selectedPos >= 0 && t.scroller != nil {
		t.scroller(selectedPos)
	}
	return nil
}

func (t *Table) renderCells(tr *vtree.Node, cols []Column, row any) error {
	keys := make([]string, len(cols))
	for i, c := range cols {
		keys[i] = c.Name
	}
	_, err := vtree.Join(tr, "td", keys, vtree.Handlers{
		Enter: func(string, int) *vtree.Node { return vtree.New("td") },
		Update: func(n *vtree.Node, i int) {
			c := cols[i]
			v := c.Attr.Value(row)
			n.Datum = v
			n.SetClass("number", c.Type == TypeNumber)
			n.SetText(formatCell(c, v))
			n.SetAttr("color", c.Color)
			if pct, ok := c.Magnitude(v); ok {
				n.SetAttr("bar", strconv.FormatFloat(pct, 'f', 2, 64))
			} else {
				n.SetAttr("bar", "")
			}
		},
	})
	return err
}

func (t *Table) renderFooter(shown, total int) {
	t.tfoot.SetClass("hidden", shown >= total)
	t.tfoot.SetAttr("data-shown", strconv.Itoa(shown))
	t.tfoot.SetAttr("data-total", strconv.Itoa(total))
}

func formatCell(c Column, v any) string {
	if v == nil {
		return ""
	}
	if c.Type == TypeNumber {
		if f, ok := toFloat(v); ok {
			return numfmt.Format(f)
		}
	}
	if f, ok := v.(float64); ok {
		return numfmt.Format(f)
	}
	return stringify(v)
}

// ────────────────────────────────────────────────────────────
// Inspection
// ────────────────────────────────────────────────────────────

// RenderedRow is what one rendered row shows.
type RenderedRow struct {
	Index    int
	Cells    []string
	Bars     []string
	Selected bool
}

// RenderedRows lists the body rows in display order.
func (t *Table) RenderedRows() []RenderedRow {
	trs := t.tbody.Select("tr")
	out := make([]RenderedRow, 0, len(trs))
	for _, tr := range trs {
		sr, _ := tr.Datum.(sortedRow)
		r := RenderedRow{Index: sr.index, Selected: tr.HasClass("selected")}
		for _, td := range tr.Select("td") {
			r.Cells = append(r.Cells, td.Text())
			r.Bars = append(r.Bars, td.Attr("bar"))
		}
		out = append(out, r)
	}
	return out
}

// RowElement returns an opaque handle for the row rendered at pos; two
// handles are equal when they refer to the same retained row element.
func (t *Table) RowElement(pos int) any {
	trs := t.tbody.Select("tr")
	if pos < 0 || pos >= len(trs) {
		return nil
	}
	return trs[pos]
}

// PositionOf returns where the row with unsorted index i is rendered, or -1.
func (t *Table) PositionOf(i int) int {
	for pos, tr := range t.tbody.Select("tr") {
		if sr, ok := tr.Datum.(sortedRow); ok && sr.index == i {
			return pos
		}
	}
	return -1
}

// RowAt returns the row rendered at pos and its unsorted index.
func (t *Table) RowAt(pos int) (row any, index int, ok bool) {
	trs := t.tbody.Select("tr")
	if pos < 0 || pos >= len(trs) {
		return nil, -1, false
	}
	sr, ok := trs[pos].Datum.(sortedRow)
	if !ok {
		return nil, -1, false
	}
	return sr.row, sr.index, true
}
