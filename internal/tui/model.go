package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Mr-Dark-debug/covidash/internal/chart"
	"github.com/Mr-Dark-debug/covidash/internal/database"
	"github.com/Mr-Dark-debug/covidash/internal/logger"
	"github.com/Mr-Dark-debug/covidash/internal/schedule"
	"github.com/Mr-Dark-debug/covidash/internal/summary"
)

const defaultFrameInterval = time.Second / 30

// Options configures the dashboard.
type Options struct {
	// Top is how many table rows show before the reveal control. Zero
	// shows every row.
	Top      int
	Batch    int
	Animated bool
	Legend   bool

	// Refresh is how often the latest snapshot is reloaded. Zero disables
	// reloading.
	Refresh time.Duration

	// Select is a country code restored once the first snapshot loads.
	Select string

	Logger        logger.Logger
	FrameInterval time.Duration
	Now           func() time.Time
}

func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = logger.Discard
	}
	if o.FrameInterval <= 0 {
		o.FrameInterval = defaultFrameInterval
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// ────────────────────────────────────────────────────────────
// Page state
// ────────────────────────────────────────────────────────────

// page is what the chart listeners write to. Every copy of Model that
// bubbletea hands around shares it.
type page struct {
	snapshot *database.Snapshot
	sum      *summary.Summary

	// selected is the selected country code; "" means worldwide.
	selected  string
	sortCol   int
	sortOrder chart.Order

	// pinned stops reloads from replacing a snapshot picked by hand.
	pinned bool

	// deepLink is restored when the first snapshot arrives.
	deepLink string
}

func (p *page) selectIndex(i int) {
	if p.sum == nil || i < 0 || i >= len(p.sum.Countries) {
		p.selected = ""
		return
	}
	p.selected = p.sum.Countries[i].CountryCode
}

// entry returns the statistics and label the pie shows.
func (p *page) entry() (summary.StatisticEntry, string) {
	if p.sum == nil {
		return summary.StatisticEntry{}, "Worldwide"
	}
	if p.selected != "" {
		if c, _, ok := p.sum.Country(p.selected); ok {
			return c.StatisticEntry, c.Country
		}
	}
	return p.sum.Global, "Worldwide"
}

// ────────────────────────────────────────────────────────────
// Model
// ────────────────────────────────────────────────────────────

// Model is the root BubbleTea model for the dashboard.
type Model struct {
	store database.Store
	opts  Options
	log   logger.Logger

	loop  *schedule.Loop
	pie   *chart.Pie
	table *chart.Table
	page  *page

	keys keyMap
	help help.Model

	focus   Pane
	width   int
	height  int
	ticking bool

	showSnapshots bool
	snapshots     []*database.Snapshot
	snapCursor    int

	statusMsg string
	err       error
}

// NewModel creates a dashboard backed by the given store.
func NewModel(store database.Store, opts Options) Model {
	opts = opts.withDefaults()
	log := opts.Logger

	loop := schedule.NewLoop()
	copts := chart.Options{Loop: loop, Logger: log, Now: opts.Now}
	pie := chart.NewPie(copts)
	table := chart.NewTable(copts)

	pie.SetLegend(opts.Legend)
	pie.SetAnimated(opts.Animated)
	if opts.Top > 0 {
		if err := table.SetTop(opts.Top); err != nil {
			log.Warn("ignoring top", "err", err)
		}
	}
	if opts.Batch > 0 {
		if err := table.SetBatch(opts.Batch); err != nil {
			log.Warn("ignoring batch", "err", err)
		}
	}

	p := &page{
		sortCol:   -1,
		sortOrder: chart.Asc,
		deepLink:  strings.ToUpper(strings.TrimPrefix(opts.Select, "#")),
	}

	table.SetScroller(table.ScrollTo)
	table.OnSelect(func(ev chart.SelectEvent) {
		p.selectIndex(ev.Index)
		entry, label := p.entry()
		pie.SetData(summary.PreparePieData(entry))
		log.Debug("selection changed", "country", label)
	})
	table.OnSort(func(ev chart.SortEvent) {
		p.sortCol, p.sortOrder = ev.Column, ev.Order
		log.Debug("sort changed", "column", ev.Column, "order", string(ev.Order))
	})

	pie.Connect()
	table.Connect()

	return Model{
		store:     store,
		opts:      opts,
		log:       log,
		loop:      loop,
		pie:       pie,
		table:     table,
		page:      p,
		keys:      keys,
		help:      newHelp(),
		ticking:   true,
		statusMsg: "Loading snapshot...",
	}
}

// ────────────────────────────────────────────────────────────
// Messages
// ────────────────────────────────────────────────────────────

type frameMsg time.Time
type reloadMsg struct{}

type snapshotLoadedMsg struct {
	snap   *database.Snapshot
	sum    *summary.Summary
	pinned bool
}

type snapshotsListedMsg []*database.Snapshot
type errMsg struct{ err error }

func (e errMsg) Error() string { return e.err.Error() }

// ────────────────────────────────────────────────────────────
// Init
// ────────────────────────────────────────────────────────────

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadLatest(), frameCmd(m.opts.FrameInterval), m.reloadCmd())
}

func frameCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg { return frameMsg(t) })
}

func (m Model) reloadCmd() tea.Cmd {
	if m.opts.Refresh <= 0 {
		return nil
	}
	return tea.Tick(m.opts.Refresh, func(time.Time) tea.Msg { return reloadMsg{} })
}

func (m Model) loadLatest() tea.Cmd {
	return func() tea.Msg {
		snap, err := m.store.LatestSnapshot()
		if errors.Is(err, database.ErrNotFound) {
			return snapshotLoadedMsg{}
		}
		if err != nil {
			return errMsg{err}
		}
		sum, err := snap.Summary()
		if err != nil {
			return errMsg{err}
		}
		return snapshotLoadedMsg{snap: snap, sum: sum}
	}
}

func (m Model) loadSnapshot(id string, pinned bool) tea.Cmd {
	return func() tea.Msg {
		snap, err := m.store.GetSnapshot(id)
		if err != nil {
			return errMsg{err}
		}
		sum, err := snap.Summary()
		if err != nil {
			return errMsg{err}
		}
		return snapshotLoadedMsg{snap: snap, sum: sum, pinned: pinned}
	}
}

func (m Model) listSnapshots() tea.Cmd {
	return func() tea.Msg {
		snaps, err := m.store.ListSnapshots(database.SnapshotFilter{Limit: 100})
		if err != nil {
			return errMsg{err}
		}
		return snapshotsListedMsg(snaps)
	}
}

// ────────────────────────────────────────────────────────────
// Update
// ────────────────────────────────────────────────────────────

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmd := m.update(msg)
	return m, tea.Batch(cmd, m.nextFrame())
}

func (m *Model) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		m.handleMouse(msg)
		return nil

	case frameMsg:
		m.ticking = false
		now := m.opts.Now()
		m.loop.Tick(now)
		m.pie.Advance(now)
		m.table.Advance(now)
		return nil

	case reloadMsg:
		if m.page.pinned {
			return m.reloadCmd()
		}
		return tea.Batch(m.loadLatest(), m.reloadCmd())

	case snapshotLoadedMsg:
		m.applySnapshot(msg)
		return nil

	case snapshotsListedMsg:
		m.snapshots = []*database.Snapshot(msg)
		m.snapCursor = 0
		for i, s := range m.snapshots {
			if m.page.snapshot != nil && s.SnapshotID == m.page.snapshot.SnapshotID {
				m.snapCursor = i
			}
		}
		return nil

	case errMsg:
		m.err = msg.err
		m.statusMsg = fmt.Sprintf("Error: %v", msg.err)
		m.log.Error("dashboard", "err", msg.err)
		return nil
	}

	return nil
}

// nextFrame keeps the frame loop ticking while a render is queued or a
// transition runs.
func (m *Model) nextFrame() tea.Cmd {
	if m.ticking {
		return nil
	}
	if !m.loop.Pending() && !m.pie.Animating() && !m.table.Animating() {
		return nil
	}
	m.ticking = true
	return frameCmd(m.opts.FrameInterval)
}

func (m *Model) applySnapshot(msg snapshotLoadedMsg) {
	if msg.snap == nil {
		m.statusMsg = "No snapshots cached yet. Run covidash fetch or start covidash-daemon."
		return
	}
	if cur := m.page.snapshot; cur != nil && !msg.pinned && !m.page.pinned &&
		cur.SnapshotID == msg.snap.SnapshotID {
		return
	}

	m.page.snapshot = msg.snap
	m.page.sum = msg.sum
	m.page.pinned = msg.pinned
	m.err = nil

	code := m.page.selected
	if m.page.deepLink != "" {
		code, m.page.deepLink = m.page.deepLink, ""
	}

	m.statusMsg = fmt.Sprintf("%d countries", len(msg.sum.Countries))
	m.table.SetHeaders(summary.CountryColumns(msg.sum.Countries))
	m.table.SetRows(summary.Rows(msg.sum.Countries))
	m.selectCountry(code)

	m.log.Info("snapshot loaded", "id", msg.snap.SnapshotID, "countries", len(msg.sum.Countries), "pinned", msg.pinned)
}

// selectCountry selects code in the table ("" for worldwide) without
// going through a click.
func (m *Model) selectCountry(code string) {
	idx := -1
	if code != "" && m.page.sum != nil {
		if _, i, ok := m.page.sum.Country(code); ok {
			idx = i
		} else {
			m.statusMsg = fmt.Sprintf("Unknown country %q", code)
			m.log.Warn("deep link does not match a country", "code", code)
		}
	}
	if err := m.table.SetSelected(idx); err != nil {
		m.log.Error("selecting country", "err", err)
	}
	m.page.selectIndex(idx)
	entry, _ := m.page.entry()
	m.pie.SetData(summary.PreparePieData(entry))
}

// handleKey routes keyboard input based on current mode.
func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, m.keys.Quit) {
		return tea.Quit
	}
	if m.showSnapshots {
		return m.handleSnapshotKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll

	case key.Matches(msg, m.keys.Pane):
		m.focus = (m.focus + 1) % 3

	case key.Matches(msg, m.keys.Up):
		m.moveFocus(-1)

	case key.Matches(msg, m.keys.Down):
		m.moveFocus(1)

	case key.Matches(msg, m.keys.Select):
		if f := m.table.Focus(); f >= 0 {
			m.table.ClickRow(f)
		}

	case key.Matches(msg, m.keys.Clear):
		m.selectCountry("")

	case key.Matches(msg, m.keys.Sort):
		m.table.ClickHeader(int(msg.String()[0] - '1'))

	case key.Matches(msg, m.keys.More):
		m.table.Reveal()

	case key.Matches(msg, m.keys.Legend):
		m.pie.SetLegend(!m.pie.Legend())

	case key.Matches(msg, m.keys.Animate):
		m.pie.SetAnimated(!m.pie.Animated())

	case key.Matches(msg, m.keys.Snapshots):
		m.showSnapshots = true
		return m.listSnapshots()

	case key.Matches(msg, m.keys.Reload):
		m.page.pinned = false
		m.statusMsg = "Reloading..."
		return m.loadLatest()
	}
	return nil
}

// moveFocus moves the keyboard cursor through the rendered rows.
func (m *Model) moveFocus(delta int) {
	n := len(m.table.RenderedRows())
	if n == 0 {
		return
	}
	f := m.table.Focus()
	if f < 0 {
		f = 0
	} else {
		f = clamp(f+delta, 0, n-1)
	}
	m.table.SetFocus(f)
	m.table.ScrollTo(f)
}

// handleMouse maps pointer events onto the pane under the cursor.
func (m *Model) handleMouse(msg tea.MouseMsg) {
	if m.showSnapshots {
		return
	}
	l := m.layout()
	press := msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft

	pc := l.pie.content()
	if pc.contains(msg.X, msg.Y) {
		m.pie.Hover(m.pie.HitTest(msg.X-pc.x, msg.Y-pc.y))
		if press {
			m.focus = PanePie
		}
		return
	}
	m.pie.Hover("")

	tc := l.table.content()
	if !tc.contains(msg.X, msg.Y) {
		return
	}
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		m.table.ScrollBy(-1)
		return
	case tea.MouseButtonWheelDown:
		m.table.ScrollBy(1)
		return
	}
	if !press {
		return
	}

	m.focus = PaneTable
	target := m.table.HitTest(msg.X-tc.x, msg.Y-tc.y)
	switch target.Kind {
	case chart.TargetHeader:
		m.table.ClickHeader(target.Index)
	case chart.TargetRow:
		m.table.SetFocus(target.Index)
		m.table.ClickRow(target.Index)
	case chart.TargetReveal:
		m.table.Reveal()
	}
}

// ────────────────────────────────────────────────────────────
// View
// ────────────────────────────────────────────────────────────

func (m Model) layout() layout {
	return computeLayout(m.width, m.height, lipgloss.Height(renderFooter(&m)), m.focus)
}

func (m Model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	header := renderHeader(&m)
	footer := renderFooter(&m)
	bodyHeight := max(m.height-1-lipgloss.Height(footer), 0)

	var body string
	if m.showSnapshots {
		body = renderSnapshotList(&m, m.width, bodyHeight)
	} else {
		body = m.renderMainLayout(computeLayout(m.width, m.height, lipgloss.Height(footer), m.focus))
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

// renderMainLayout assembles the pie, detail and table panes.
func (m Model) renderMainLayout(l layout) string {
	pie := m.renderPiePanel(l.pie)
	detail := renderDetailPanel(&m, l.detail)
	table := m.renderTablePanel(l.table)

	if l.compact {
		switch m.focus {
		case PanePie:
			return pie
		case PaneDetail:
			return detail
		default:
			return table
		}
	}

	left := lipgloss.JoinVertical(lipgloss.Left, pie, detail)
	return lipgloss.JoinHorizontal(lipgloss.Top, left, table)
}

func (m Model) renderPiePanel(r rect) string {
	_, label := m.page.entry()
	c := r.content()
	var body string
	if m.page.sum == nil {
		body = placeEmpty(c.w, c.h, "No data")
	} else {
		body = m.pie.View(c.w, c.h)
	}
	return renderPanel(label, m.focus == PanePie, r, body)
}

func (m Model) renderTablePanel(r rect) string {
	c := r.content()
	title := "Countries"
	var body string
	if m.page.sum == nil {
		body = placeEmpty(c.w, c.h, "No snapshot loaded")
	} else {
		title = fmt.Sprintf("Countries  %d", len(m.page.sum.Countries))
		body = m.table.View(c.w, c.h)
	}
	return renderPanel(title, m.focus == PaneTable, r, body)
}
