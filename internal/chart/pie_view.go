package chart

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// pieViewport remembers where the last View placed the disc so pointer
// coordinates can be mapped back to slices.
type pieViewport struct {
	cx, cy float64
	rx, ry float64
}

// polar converts a cell to an angle (clockwise from twelve o'clock) and a
// distance in chart units. Terminal cells are about twice as tall as they
// are wide, so the horizontal radius is doubled.
func (v pieViewport) polar(x, y int) (angle, dist float64, ok bool) {
	if v.rx <= 0 || v.ry <= 0 {
		return 0, 0, false
	}
	dx := (float64(x) + 0.5 - v.cx) / v.rx
	dy := (float64(y) + 0.5 - v.cy) / v.ry
	angle = math.Atan2(dx, -dy)
	if angle < 0 {
		angle += 2 * math.Pi
	}
	return angle, math.Hypot(dx, dy) * pieHoverRadius, true
}

// paintOrder puts exiting slices underneath live ones.
func (p *Pie) paintOrder() []SliceGeometry {
	geo := p.Geometry()
	out := make([]SliceGeometry, 0, len(geo))
	for _, g := range geo {
		if g.Exiting {
			out = append(out, g)
		}
	}
	for _, g := range geo {
		if !g.Exiting {
			out = append(out, g)
		}
	}
	return out
}

// HitTest returns the live slice under cell (x, y) of the last View, or "".
func (p *Pie) HitTest(x, y int) string {
	angle, dist, ok := p.view.polar(x, y)
	if !ok {
		return ""
	}
	hit := ""
	for _, g := range p.paintOrder() {
		if g.Exiting {
			continue
		}
		if dist <= g.Radius && g.Arc.Contains(angle) {
			hit = g.Name
		}
	}
	return hit
}

// View paints the chart into a width x height block: the disc on top, the
// legend (when visible) underneath.
func (p *Pie) View(width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}

	var legend []string
	if p.LegendVisible() {
		legend = p.legendLines(width)
	}

	discRows := height - len(legend)
	if discRows < 3 {
		legend = clipLines(legend, height)
		p.view = pieViewport{}
		return strings.Join(legend, "\n")
	}

	ry := float64(discRows) / 2
	rx := ry * 2
	if rx*2 > float64(width) {
		rx = float64(width) / 2
		ry = rx / 2
	}
	p.view = pieViewport{cx: float64(width) / 2, cy: float64(discRows) / 2, rx: rx, ry: ry}

	order := p.paintOrder()
	lines := make([]string, 0, height)
	for y := 0; y < discRows; y++ {
		var b strings.Builder
		runColor := ""
		runLen := 0
		flush := func() {
			if runLen == 0 {
				return
			}
			if runColor == "" {
				b.WriteString(strings.Repeat(" ", runLen))
			} else {
				b.WriteString(lipgloss.NewStyle().
					Foreground(resolveColor(runColor)).
					Render(strings.Repeat("█", runLen)))
			}
			runLen = 0
		}
		for x := 0; x < width; x++ {
			color := ""
			if angle, dist, ok := p.view.polar(x, y); ok {
				for _, g := range order {
					if dist <= g.Radius && g.Arc.Contains(angle) {
						color = g.Color
						if color == "" {
							color = "gray"
						}
					}
				}
			}
			if color != runColor {
				flush()
				runColor = color
			}
			runLen++
		}
		flush()
		lines = append(lines, b.String())
	}

	lines = append(lines, legend...)
	return strings.Join(lines, "\n")
}

func (p *Pie) legendLines(width int) []string {
	entries := p.LegendEntries()
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		swatch := lipgloss.NewStyle().Foreground(resolveColor(e.Color)).Render("●")
		name := runewidth.Truncate(e.Name, max(width-runewidth.StringWidth(e.Count)-4, 1), "…")
		gap := width - 2 - runewidth.StringWidth(name) - runewidth.StringWidth(e.Count)
		if gap < 1 {
			gap = 1
		}
		lines = append(lines, swatch+" "+legendNameStyle.Render(name)+
			strings.Repeat(" ", gap)+legendCountStyle.Render(e.Count))
	}
	return lines
}

func clipLines(lines []string, n int) []string {
	if len(lines) > n {
		return lines[:n]
	}
	return lines
}
