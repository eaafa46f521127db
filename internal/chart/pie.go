package chart

import (
	"fmt"

	"github.com/Mr-Dark-debug/covidash/internal/attr"
	"github.com/Mr-Dark-debug/covidash/internal/tween"
	"github.com/Mr-Dark-debug/covidash/internal/vtree"
	"github.com/Mr-Dark-debug/covidash/pkg/numfmt"
)

const (
	pieRadius      = 50.0
	pieHoverRadius = 52.0
)

var (
	legendField   = attr.BoolField{Name: "legend", Default: true}
	animatedField = attr.BoolField{Name: "animated", Default: true}
)

// sliceShape is the painted state of one slice node. It lags behind the
// bound Arc while a transition runs.
type sliceShape struct {
	arc    Arc
	radius float64
	color  string
}

// radiusTarget keys hover transitions apart from geometry transitions on
// the same node.
type radiusTarget struct{ n *vtree.Node }

// Pie is the proportional chart component.
type Pie struct {
	*base

	data *attr.Property[[]Slice]

	root   *vtree.Node
	g      *vtree.Node
	legend *vtree.Node
	shapes map[*vtree.Node]*sliceShape

	// prev holds the arcs of the previous render, looked up by position
	// when a slice starts its transition.
	prev    []Arc
	hovered string
	view    pieViewport
}

// NewPie creates a detached pie chart. Call Connect to schedule its first
// render.
func NewPie(opts Options) *Pie {
	p := &Pie{
		data:   attr.NewProperty[[]Slice](nil),
		root:   vtree.New("svg"),
		legend: vtree.New("legend"),
		shapes: make(map[*vtree.Node]*sliceShape),
	}
	p.g = p.root.Append(vtree.New("g"))
	p.root.Append(p.legend)
	p.base = newBase(opts, []string{"data", "legend", "animated"}, p.attributeChanged, p.Render)
	return p
}

func (p *Pie) attributeChanged(name string) {
	if name == "data" {
		raw, ok := p.attrs.Get("data")
		if !ok {
			if p.data.Set(nil) {
				p.scheduleRender()
			}
			return
		}
		changed, err := p.data.SetJSON(raw)
		if err != nil {
			p.log.Debug("ignoring malformed data attribute", "err", err)
			return
		}
		if !changed {
			return
		}
	}
	p.scheduleRender()
}

// Data returns a copy of the current slices.
func (p *Pie) Data() []Slice {
	return append([]Slice(nil), p.data.Get()...)
}

// SetData replaces the slices. An identical collection is a no-op.
func (p *Pie) SetData(slices []Slice) {
	if p.data.Set(append([]Slice(nil), slices...)) {
		p.scheduleRender()
	}
}

func (p *Pie) Legend() bool {
	return legendField.Get(p.attrs)
}

func (p *Pie) SetLegend(v bool) {
	legendField.Set(p.attrs, v)
}

func (p *Pie) Animated() bool {
	return animatedField.Get(p.attrs)
}

func (p *Pie) SetAnimated(v bool) {
	animatedField.Set(p.attrs, v)
}

// Render reconciles the slice and legend nodes with the current data.
// It is idempotent.
func (p *Pie) Render() error {
	p.lastErr = p.render()
	return p.lastErr
}

func (p *Pie) render() error {
	data := p.data.Get()
	arcs := Layout(data)
	keys := make([]string, len(data))
	for i, s := range data {
		keys[i] = s.Name
	}

	animated := p.Animated()
	prev := p.prev

	_, err := vtree.Join(p.g, "path", keys, vtree.Handlers{
		Enter: func(string, int) *vtree.Node {
			n := vtree.New("path")
			p.shapes[n] = &sliceShape{arc: emptyArc, radius: pieRadius}
			return n
		},
		Update: func(n *vtree.Node, i int) {
			s, arc := data[i], arcs[i]
			n.Datum = arc
			n.SetClass("pie-slice", true)
			n.SetAttr("fill", s.Color)
			n.SetAttr("data-count", numfmt.Format(s.Value))
			n.SetAttr("title", fmt.Sprintf("%s: %s", s.Name, numfmt.Format(s.Value)))

			shape := p.shapes[n]
			shape.color = s.Color
			if !animated {
				p.timeline.Cancel(n)
				shape.arc = arc
				return
			}
			from := emptyArc
			if i < len(prev) {
				from = prev[i]
			}
			interp := interpolateArc(from, arc)
			p.transition(n, func(t float64) { shape.arc = interp(t) }, nil)
		},
		Exit: func(n *vtree.Node, remove func()) {
			shape := p.shapes[n]
			finish := func() {
				p.timeline.Cancel(radiusTarget{n})
				delete(p.shapes, n)
				remove()
			}
			if !animated {
				p.timeline.Cancel(n)
				finish()
				return
			}
			interp := interpolateArc(shape.arc, emptyArc)
			p.transition(n, func(t float64) { shape.arc = interp(t) }, finish)
		},
	})
	if err != nil {
		return fmt.Errorf("rendering pie slices: %w", err)
	}
	p.prev = arcs

	p.legend.SetClass("hidden", !p.Legend())
	_, err = vtree.Join(p.legend, "entry", keys, vtree.Handlers{
		Enter: func(string, int) *vtree.Node {
			return vtree.New("entry")
		},
		Update: func(n *vtree.Node, i int) {
			s := data[i]
			n.Datum = s
			n.SetAttr("color", s.Color)
			n.SetAttr("data-count", numfmt.Format(s.Value))
			n.SetText(s.Name + ":")
		},
	})
	if err != nil {
		return fmt.Errorf("rendering pie legend: %w", err)
	}

	if p.hovered != "" && p.slice(p.hovered) == nil {
		p.hovered = ""
	}
	return nil
}

func (p *Pie) slice(name string) *vtree.Node {
	for _, n := range p.g.Select("path") {
		if n.Key == name {
			return n
		}
	}
	return nil
}

// PointerEnter enlarges the named slice. It only affects painting.
func (p *Pie) PointerEnter(name string) {
	if n := p.slice(name); n != nil {
		p.setRadius(n, pieHoverRadius)
	}
}

// PointerLeave restores the named slice's radius.
func (p *Pie) PointerLeave(name string) {
	if n := p.slice(name); n != nil {
		p.setRadius(n, pieRadius)
	}
}

// Hover moves the pointer onto name ("" for none), leaving the slice that
// was hovered before.
func (p *Pie) Hover(name string) {
	if name == p.hovered {
		return
	}
	if p.hovered != "" {
		p.PointerLeave(p.hovered)
	}
	p.hovered = name
	if name != "" {
		p.PointerEnter(name)
	}
}

// Hovered returns the slice under the pointer, if any.
func (p *Pie) Hovered() string {
	return p.hovered
}

func (p *Pie) setRadius(n *vtree.Node, r float64) {
	shape := p.shapes[n]
	if shape == nil {
		return
	}
	target := radiusTarget{n}
	if !p.Animated() {
		p.timeline.Cancel(target)
		shape.radius = r
		return
	}
	interp := tween.Number(shape.radius, r)
	p.transition(target, func(t float64) { shape.radius = interp(t) }, nil)
}

// SliceGeometry is the painted state of one slice.
type SliceGeometry struct {
	Name    string
	Color   string
	Arc     Arc
	Radius  float64
	Exiting bool
}

// Geometry lists every painted slice, exiting ones included, in tree order.
func (p *Pie) Geometry() []SliceGeometry {
	var out []SliceGeometry
	for _, n := range p.g.Children() {
		shape := p.shapes[n]
		if shape == nil {
			continue
		}
		out = append(out, SliceGeometry{
			Name:    n.Key,
			Color:   shape.color,
			Arc:     shape.arc,
			Radius:  shape.radius,
			Exiting: n.Exiting(),
		})
	}
	return out
}

// LegendEntry is one rendered legend line.
type LegendEntry struct {
	Name  string
	Color string
	Count string
}

// LegendEntries lists the legend in display order.
func (p *Pie) LegendEntries() []LegendEntry {
	var out []LegendEntry
	for _, n := range p.legend.Select("entry") {
		out = append(out, LegendEntry{
			Name:  n.Key,
			Color: n.Attr("color"),
			Count: n.Attr("data-count"),
		})
	}
	return out
}

// LegendVisible reports whether the legend is painted.
func (p *Pie) LegendVisible() bool {
	return !p.legend.HasClass("hidden")
}
