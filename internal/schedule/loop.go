// Package schedule coalesces render requests onto a shared frame loop.
//
// Everything here runs on one goroutine: the owner of the Loop calls Tick
// once per frame (the TUI does it from its update loop) and every callback
// queued before that tick runs synchronously inside it.
package schedule

import "time"

// FrameID identifies a requested frame callback. Zero is never issued.
type FrameID uint64

// FrameLoop is the animation-frame primitive components schedule on.
type FrameLoop interface {
	RequestFrame(fn func(now time.Time)) FrameID
	CancelFrame(id FrameID)
}

type frame struct {
	id FrameID
	fn func(now time.Time)
}

// Loop is a cooperative frame queue.
type Loop struct {
	next  FrameID
	queue []frame
	ticks uint64
}

// NewLoop returns an empty loop.
func NewLoop() *Loop {
	return &Loop{}
}

func (l *Loop) RequestFrame(fn func(now time.Time)) FrameID {
	l.next++
	l.queue = append(l.queue, frame{id: l.next, fn: fn})
	return l.next
}

func (l *Loop) CancelFrame(id FrameID) {
	for i, f := range l.queue {
		if f.id == id {
			l.queue = append(l.queue[:i], l.queue[i+1:]...)
			return
		}
	}
}

// Pending reports whether any callback waits for the next tick.
func (l *Loop) Pending() bool {
	return len(l.queue) > 0
}

// Ticks returns how many ticks have run.
func (l *Loop) Ticks() uint64 {
	return l.ticks
}

// Tick runs the callbacks queued before it started. Callbacks requested
// while the tick runs are deferred to the next one.
func (l *Loop) Tick(now time.Time) int {
	l.ticks++
	batch := l.queue
	l.queue = nil
	for _, f := range batch {
		f.fn(now)
	}
	return len(batch)
}
