// Package tween samples interpolations over t in [0,1] and runs them as
// transitions driven by an external frame clock.
package tween

import (
	"math"
	"time"
)

// DefaultDuration matches the usual 250ms chart transition.
const DefaultDuration = 250 * time.Millisecond

// Ease maps linear progress to eased progress; both in [0,1].
type Ease func(t float64) float64

// Linear is the identity ease.
func Linear(t float64) float64 { return t }

// CubicInOut is the symmetric cubic ease.
func CubicInOut(t float64) float64 {
	t *= 2
	if t <= 1 {
		return t * t * t / 2
	}
	t -= 2
	return (t*t*t + 2) / 2
}

// Number interpolates between a and b.
func Number(a, b float64) func(t float64) float64 {
	return func(t float64) float64 {
		return a*(1-t) + b*t
	}
}

// Clamp01 restricts t to [0,1]; NaN becomes 0.
func Clamp01(t float64) float64 {
	if math.IsNaN(t) || t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}
