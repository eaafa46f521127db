package chart

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ────────────────────────────────────────────────────────────
// Palette
// ────────────────────────────────────────────────────────────
//
// Slice and column colours arrive as CSS-ish names from the data layer.
// Named colours are mapped onto the dark palette so "black" stays
// visible on a dark terminal; anything else is handed to lipgloss as is
// (hex or ANSI index).

var namedColors = map[string]lipgloss.Color{
	"black":  lipgloss.Color("#8b949e"),
	"white":  lipgloss.Color("#e6edf3"),
	"red":    lipgloss.Color("#f85149"),
	"green":  lipgloss.Color("#3fb950"),
	"blue":   lipgloss.Color("#58a6ff"),
	"yellow": lipgloss.Color("#d29922"),
	"orange": lipgloss.Color("#db6d28"),
	"purple": lipgloss.Color("#bc8cff"),
	"cyan":   lipgloss.Color("#76e3ea"),
	"gray":   lipgloss.Color("#6e7681"),
	"grey":   lipgloss.Color("#6e7681"),
}

var (
	colorText      = lipgloss.Color("#e6edf3")
	colorTextDim   = lipgloss.Color("#8b949e")
	colorTextMuted = lipgloss.Color("#484f58")
	colorBlue      = lipgloss.Color("#58a6ff")
	colorHighlight = lipgloss.Color("#1f6feb")
	colorFocus     = lipgloss.Color("#1c2128")
)

func resolveColor(name string) lipgloss.Color {
	key := strings.ToLower(strings.TrimSpace(name))
	if c, ok := namedColors[key]; ok {
		return c
	}
	if key == "" {
		return colorTextDim
	}
	return lipgloss.Color(name)
}

// ────────────────────────────────────────────────────────────
// Styles
// ────────────────────────────────────────────────────────────

var (
	legendNameStyle = lipgloss.NewStyle().
			Foreground(colorText)

	legendCountStyle = lipgloss.NewStyle().
				Foreground(colorTextDim)

	tableHeaderStyle = lipgloss.NewStyle().
				Foreground(colorBlue).
				Bold(true)

	tableHeaderSortedStyle = lipgloss.NewStyle().
				Foreground(colorText).
				Bold(true).
				Underline(true)

	tableRuleStyle = lipgloss.NewStyle().
			Foreground(colorTextMuted)

	tableCellStyle = lipgloss.NewStyle().
			Foreground(colorText)

	tableSelectedStyle = lipgloss.NewStyle().
				Background(colorHighlight).
				Foreground(colorText).
				Bold(true)

	tableFocusStyle = lipgloss.NewStyle().
			Background(colorFocus).
			Foreground(colorText)

	tableBarEmptyStyle = lipgloss.NewStyle().
				Foreground(colorTextMuted)

	revealStyle = lipgloss.NewStyle().
			Foreground(colorBlue).
			Bold(true)

	emptyStyle = lipgloss.NewStyle().
			Foreground(colorTextMuted)
)
