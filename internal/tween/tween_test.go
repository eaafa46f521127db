package tween

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCubicInOutEndpoints(t *testing.T) {
	assert.Equal(t, 0.0, CubicInOut(0))
	assert.Equal(t, 1.0, CubicInOut(1))
	assert.InDelta(t, 0.5, CubicInOut(0.5), 1e-12)
	assert.Less(t, CubicInOut(0.25), 0.25)
	assert.Greater(t, CubicInOut(0.75), 0.75)
}

func TestNumber(t *testing.T) {
	f := Number(10, 20)
	assert.Equal(t, 10.0, f(0))
	assert.Equal(t, 15.0, f(0.5))
	assert.Equal(t, 20.0, f(1))
}

func TestClamp01(t *testing.T) {
	assert.Equal(t, 0.0, Clamp01(-1))
	assert.Equal(t, 0.0, Clamp01(math.NaN()))
	assert.Equal(t, 1.0, Clamp01(3))
}

func TestTimelineRunsToCompletion(t *testing.T) {
	tl := NewTimeline()
	start := time.Unix(0, 0)
	var steps []float64
	done := 0

	tl.Start("a", &Transition{
		Start:    start,
		Duration: 100 * time.Millisecond,
		Ease:     Linear,
		Step:     func(p float64) { steps = append(steps, p) },
		Done:     func() { done++ },
	})

	assert.True(t, tl.Advance(start.Add(50*time.Millisecond)))
	assert.False(t, tl.Advance(start.Add(150*time.Millisecond)))

	assert.Equal(t, []float64{0.5, 1}, steps)
	assert.Equal(t, 1, done)
	assert.False(t, tl.Active())
}

func TestTimelineSupersedes(t *testing.T) {
	tl := NewTimeline()
	start := time.Unix(0, 0)
	firstDone, secondDone := 0, 0

	tl.Start("a", &Transition{Start: start, Duration: time.Second, Done: func() { firstDone++ }})
	tl.Start("a", &Transition{Start: start, Duration: time.Second, Done: func() { secondDone++ }})

	tl.Advance(start.Add(2 * time.Second))
	assert.Zero(t, firstDone)
	assert.Equal(t, 1, secondDone)
}

func TestTimelineFinish(t *testing.T) {
	tl := NewTimeline()
	last := 0.0
	tl.Start(1, &Transition{Duration: time.Hour, Step: func(p float64) { last = p }})
	tl.Finish()
	assert.Equal(t, 1.0, last)
	assert.False(t, tl.Active())
}
