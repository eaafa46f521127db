package schedule

import "time"

// Scheduler requests at most one render per frame for a single component
// instance. Repeated Schedule calls before the frame fires are absorbed.
type Scheduler struct {
	loop     FrameLoop
	render   func()
	pending  FrameID
	attached bool
	requests int
}

// New creates a scheduler that calls render on loop frames. The scheduler
// starts attached.
func New(loop FrameLoop, render func()) *Scheduler {
	return &Scheduler{loop: loop, render: render, attached: true}
}

// Schedule requests a render on the next frame. It is idempotent while a
// request is pending and ignored while detached.
func (s *Scheduler) Schedule() {
	if s == nil || s.loop == nil || !s.attached || s.pending != 0 {
		return
	}
	s.requests++
	s.pending = s.loop.RequestFrame(func(time.Time) {
		s.pending = 0
		s.render()
	})
}

// Pending reports whether a render is queued.
func (s *Scheduler) Pending() bool {
	return s.pending != 0
}

// Requests is the number of frames this scheduler has asked for.
func (s *Scheduler) Requests() int {
	return s.requests
}

// Attach marks the component as connected and schedules its first render.
func (s *Scheduler) Attach() {
	s.attached = true
	s.Schedule()
}

// Detach abandons a pending render without running it.
func (s *Scheduler) Detach() {
	s.attached = false
	if s.pending != 0 {
		s.loop.CancelFrame(s.pending)
		s.pending = 0
	}
}

// Attached reports whether the component is connected.
func (s *Scheduler) Attached() bool {
	return s.attached
}
