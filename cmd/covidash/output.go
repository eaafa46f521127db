package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mattn/go-isatty"

	"github.com/Mr-Dark-debug/covidash/internal/summary"
	"github.com/Mr-Dark-debug/covidash/pkg/numfmt"
)

// useJSON reports whether output should be JSON: when asked for, or when
// stdout is not a terminal.
func useJSON(force bool) bool {
	if force {
		return true
	}
	fd := os.Stdout.Fd()
	return !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd)
}

func printJSON(v any) {
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
}

func decodeJSON(r io.Reader, v any) error {
	return json.NewDecoder(r).Decode(v)
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#58a6ff")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	numberStyle = cellStyle.Align(lipgloss.Right)
)

// printTable prints rows under headers. Columns from firstNumber on are
// right-aligned; -1 aligns none.
func printTable(headers []string, rows [][]string, firstNumber int) {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("#30363d"))).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case firstNumber >= 0 && col >= firstNumber:
				return numberStyle
			default:
				return cellStyle
			}
		})
	fmt.Println(t)
}

func printEntry(e summary.StatisticEntry) {
	rows := [][]string{
		{"Confirmed", numfmt.Format(e.TotalConfirmed), numfmt.Format(e.NewConfirmed)},
		{"Active", numfmt.Format(e.TotalActive()), ""},
		{"Deaths", numfmt.Format(e.TotalDeaths), numfmt.Format(e.NewDeaths)},
		{"Recovered", numfmt.Format(e.TotalRecovered), numfmt.Format(e.NewRecovered)},
	}
	printTable([]string{"", "Total", "New"}, rows, 1)
}
