package chart

import "math"

// Slice is one named, coloured wedge. Name is the reconciliation key.
type Slice struct {
	Name  string  `json:"name"`
	Color string  `json:"color"`
	Value float64 `json:"value"`
}

// Arc is the angular geometry of a slice. Angles are in radians,
// clockwise from twelve o'clock.
type Arc struct {
	StartAngle float64
	EndAngle   float64
	PadAngle   float64
	Value      float64
	Index      int
}

// Width is the angular extent of the arc.
func (a Arc) Width() float64 {
	return a.EndAngle - a.StartAngle
}

// Contains reports whether angle (in [0, 2π)) falls inside the arc.
func (a Arc) Contains(angle float64) bool {
	if a.EndAngle <= a.StartAngle {
		return false
	}
	return angle >= a.StartAngle && angle < a.EndAngle
}

// emptyArc is where entering slices start and exiting slices end.
var emptyArc = Arc{StartAngle: 0, EndAngle: 2 * math.Pi, PadAngle: 0}

// Layout computes arcs for slices in input order. Each arc's width is its
// share of the total scaled to a full turn. Negative and non-finite values
// count as zero; if everything is zero all arcs are empty.
func Layout(slices []Slice) []Arc {
	arcs := make([]Arc, len(slices))
	var sum float64
	for _, s := range slices {
		sum += sliceValue(s)
	}

	k := 0.0
	if sum > 0 {
		k = 2 * math.Pi / sum
	}

	angle := 0.0
	for i, s := range slices {
		v := sliceValue(s)
		end := angle + v*k
		arcs[i] = Arc{StartAngle: angle, EndAngle: end, Value: v, Index: i}
		angle = end
	}
	return arcs
}

func sliceValue(s Slice) float64 {
	if math.IsNaN(s.Value) || math.IsInf(s.Value, 0) || s.Value < 0 {
		return 0
	}
	return s.Value
}

// interpolateArc blends every angular field of a towards b. At t >= 1 it
// returns b exactly.
func interpolateArc(a, b Arc) func(t float64) Arc {
	return func(t float64) Arc {
		if t >= 1 {
			return b
		}
		return Arc{
			StartAngle: a.StartAngle + (b.StartAngle-a.StartAngle)*t,
			EndAngle:   a.EndAngle + (b.EndAngle-a.EndAngle)*t,
			PadAngle:   a.PadAngle + (b.PadAngle-a.PadAngle)*t,
			Value:      a.Value + (b.Value-a.Value)*t,
			Index:      b.Index,
		}
	}
}
