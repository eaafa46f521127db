package chart

import (
	"time"

	"github.com/Mr-Dark-debug/covidash/internal/schedule"
)

// countingLoop records how often components ask for a frame.
type countingLoop struct {
	*schedule.Loop
	requests int
}

func newCountingLoop() *countingLoop {
	return &countingLoop{Loop: schedule.NewLoop()}
}

func (l *countingLoop) RequestFrame(fn func(time.Time)) schedule.FrameID {
	l.requests++
	return l.Loop.RequestFrame(fn)
}

// fakeClock is a manually advanced clock.
type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2021, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Add(d time.Duration) time.Time {
	c.now = c.now.Add(d)
	return c.now
}

func testOptions(loop *countingLoop, clock *fakeClock) Options {
	return Options{Loop: loop, Now: clock.Now, Duration: 100 * time.Millisecond}
}
