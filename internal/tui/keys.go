package tui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
)

type keyMap struct {
	Up        key.Binding
	Down      key.Binding
	Select    key.Binding
	Clear     key.Binding
	Sort      key.Binding
	More      key.Binding
	Legend    key.Binding
	Animate   key.Binding
	Pane      key.Binding
	Snapshots key.Binding
	Reload    key.Binding
	Help      key.Binding
	Quit      key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Select, k.Sort, k.More, k.Snapshots, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Select, k.Clear},
		{k.Sort, k.More, k.Pane},
		{k.Legend, k.Animate, k.Snapshots, k.Reload},
		{k.Help, k.Quit},
	}
}

var keys = keyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("↓/j", "down"),
	),
	Select: key.NewBinding(
		key.WithKeys("enter", " "),
		key.WithHelp("enter", "select"),
	),
	Clear: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "worldwide"),
	),
	Sort: key.NewBinding(
		key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"),
		key.WithHelp("1-9", "sort"),
	),
	More: key.NewBinding(
		key.WithKeys("m"),
		key.WithHelp("m", "more"),
	),
	Legend: key.NewBinding(
		key.WithKeys("l"),
		key.WithHelp("l", "legend"),
	),
	Animate: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "animation"),
	),
	Pane: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "pane"),
	),
	Snapshots: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "snapshots"),
	),
	Reload: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "reload"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

func newHelp() help.Model {
	h := help.New()
	h.Styles.ShortKey = h.Styles.ShortKey.Foreground(colorText).Bold(true)
	h.Styles.ShortDesc = h.Styles.ShortDesc.Foreground(colorTextMuted)
	h.Styles.FullKey = h.Styles.FullKey.Foreground(colorText).Bold(true)
	h.Styles.FullDesc = h.Styles.FullDesc.Foreground(colorTextMuted)
	return h
}
