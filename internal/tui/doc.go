// Package tui is the covidash dashboard.
//
// It wires the two chart components to a snapshot from the cache and to
// the terminal:
//
//	model.go     root model, message routing, frame ticks
//	layout.go    pane geometry shared by View and mouse routing
//	keys.go      key bindings and help
//	theme.go     colours and styles
//	header.go    top bar (selection label, deep link, sort state) and footer
//	detail.go    statistics for the selected country or the world
//	snapshots.go cached snapshot picker
//
// Components never touch the terminal. The model ticks their shared frame
// loop from a tea.Tick while a render is pending or a transition runs, and
// asks each for a View string when bubbletea repaints.
package tui
