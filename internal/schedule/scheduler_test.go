package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestScheduleCoalescesWithinTick(t *testing.T) {
	loop := NewLoop()
	renders := 0
	s := New(loop, func() { renders++ })

	s.Schedule()
	s.Schedule()
	s.Schedule()

	assert.Equal(t, 1, s.Requests())
	assert.True(t, s.Pending())

	loop.Tick(time.Now())
	assert.Equal(t, 1, renders)
	assert.False(t, s.Pending())

	s.Schedule()
	loop.Tick(time.Now())
	assert.Equal(t, 2, renders)
}

func TestInstancesScheduleIndependently(t *testing.T) {
	loop := NewLoop()
	var a, b int
	sa := New(loop, func() { a++ })
	sb := New(loop, func() { b++ })

	sa.Schedule()
	sb.Schedule()
	sa.Schedule()

	assert.Equal(t, 2, loop.Tick(time.Now()))
	assert.Equal(t, 1, a)
	assert.Equal(t, 1, b)
}

func TestDetachAbandonsPendingRender(t *testing.T) {
	loop := NewLoop()
	renders := 0
	s := New(loop, func() { renders++ })

	s.Schedule()
	s.Detach()
	assert.False(t, s.Attached())
	loop.Tick(time.Now())
	assert.Zero(t, renders)
	assert.False(t, loop.Pending())
	assert.Equal(t, uint64(1), loop.Ticks())

	s.Schedule()
	assert.False(t, s.Pending(), "detached scheduler ignores requests")

	s.Attach()
	loop.Tick(time.Now())
	assert.Equal(t, 1, renders)
}

func TestScheduleDuringTickRunsNextTick(t *testing.T) {
	loop := NewLoop()
	renders := 0
	var s *Scheduler
	s = New(loop, func() {
		renders++
		if renders == 1 {
			s.Schedule()
		}
	})

	s.Schedule()
	loop.Tick(time.Now())
	assert.Equal(t, 1, renders)
	assert.True(t, loop.Pending())

	loop.Tick(time.Now())
	assert.Equal(t, 2, renders)
}
