package tui

import "github.com/charmbracelet/lipgloss"

// ────────────────────────────────────────────────────────────
// Palette
// ────────────────────────────────────────────────────────────
//
// Case colours match the pie slices (chart maps "red", "green" and
// "black" onto the same hex values).

var (
	colorSurface = lipgloss.Color("#1c2128")
	colorRule    = lipgloss.Color("#30363d")

	colorText      = lipgloss.Color("#e6edf3")
	colorTextDim   = lipgloss.Color("#8b949e")
	colorTextMuted = lipgloss.Color("#484f58")

	colorAccent    = lipgloss.Color("#58a6ff")
	colorSelection = lipgloss.Color("#1f6feb")
	colorLink      = lipgloss.Color("#d29922")
	colorAlert     = lipgloss.Color("#f85149")

	colorActive    = lipgloss.Color("#f85149")
	colorDeaths    = lipgloss.Color("#8b949e")
	colorRecovered = lipgloss.Color("#3fb950")
)

// ────────────────────────────────────────────────────────────
// Component Styles
// ────────────────────────────────────────────────────────────

// Header bar
var (
	headerBarStyle = lipgloss.NewStyle().
			Background(colorSurface).
			Foreground(colorText).
			Padding(0, 1)

	headerBrandStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorAccent)

	headerSepStyle = lipgloss.NewStyle().
			Foreground(colorTextMuted)

	headerMetaStyle = lipgloss.NewStyle().
			Foreground(colorTextDim)

	headerLabelStyle = lipgloss.NewStyle().
				Foreground(colorText).
				Bold(true)

	headerLinkStyle = lipgloss.NewStyle().
			Foreground(colorLink)
)

// Panel chrome
var (
	panelBorder = lipgloss.Border{Top: "─"}

	panelStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Border(panelBorder, true, false, false, false).
			BorderForeground(colorRule)

	panelActiveStyle = lipgloss.NewStyle().
				Padding(0, 1).
				Border(panelBorder, true, false, false, false).
				BorderForeground(colorAccent)

	panelTitleStyle = lipgloss.NewStyle().
			Foreground(colorAccent).
			Bold(true)

	panelTitleDimStyle = lipgloss.NewStyle().
				Foreground(colorTextMuted).
				Bold(true)
)

// Detail pane
var (
	detailLabelStyle = lipgloss.NewStyle().
				Foreground(colorAccent)

	detailValueStyle = lipgloss.NewStyle().
				Foreground(colorText)

	detailSectionStyle = lipgloss.NewStyle().
				Foreground(colorRule)

	barEmptyStyle = lipgloss.NewStyle().
			Foreground(colorTextMuted)
)

// Footer / status bar
var (
	statusStyle = lipgloss.NewStyle().
			Foreground(colorText).
			Background(colorSurface).
			Padding(0, 1)

	statusErrStyle = lipgloss.NewStyle().
			Foreground(colorAlert).
			Background(colorSurface).
			Padding(0, 1)
)

// Snapshot list
var (
	itemStyle = lipgloss.NewStyle().
			Foreground(colorText).
			Padding(0, 1)

	itemSelectedStyle = lipgloss.NewStyle().
				Background(colorSelection).
				Foreground(colorText).
				Bold(true).
				Padding(0, 1)

	itemPinnedStyle = lipgloss.NewStyle().
			Foreground(colorLink)

	dimStyle = lipgloss.NewStyle().
			Foreground(colorTextDim)

	emptyStateStyle = lipgloss.NewStyle().
			Foreground(colorTextMuted).
			Padding(2, 4)
)
