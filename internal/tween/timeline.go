package tween

import "time"

// Transition is a running interpolation bound to one target.
type Transition struct {
	Start    time.Time
	Duration time.Duration
	Ease     Ease
	// Step receives eased progress. The final call always gets exactly 1.
	Step func(t float64)
	// Done runs once after the final step. It is skipped when the
	// transition is superseded.
	Done func()
}

// Timeline owns the transitions of one component. Starting a transition
// on a target that already has one replaces it without running the old
// one's Done; the new transition is expected to start from the target's
// current state.
type Timeline struct {
	active map[any]*Transition
	order  []any
}

// NewTimeline returns an idle timeline.
func NewTimeline() *Timeline {
	return &Timeline{active: make(map[any]*Transition)}
}

// Start registers tr for target. A zero Duration completes on the next
// Advance; a nil Ease means CubicInOut.
func (tl *Timeline) Start(target any, tr *Transition) {
	if tr.Ease == nil {
		tr.Ease = CubicInOut
	}
	if _, running := tl.active[target]; !running {
		tl.order = append(tl.order, target)
	}
	tl.active[target] = tr
}

// Cancel drops the transition on target without finishing it.
func (tl *Timeline) Cancel(target any) {
	if _, ok := tl.active[target]; !ok {
		return
	}
	delete(tl.active, target)
	for i, t := range tl.order {
		if t == target {
			tl.order = append(tl.order[:i], tl.order[i+1:]...)
			break
		}
	}
}

// Running reports whether target has an active transition.
func (tl *Timeline) Running(target any) bool {
	_, ok := tl.active[target]
	return ok
}

// Active reports whether any transition is still running.
func (tl *Timeline) Active() bool {
	return len(tl.active) > 0
}

// Advance steps every transition to now and retires finished ones.
// It returns whether anything is still running.
func (tl *Timeline) Advance(now time.Time) bool {
	targets := append([]any(nil), tl.order...)
	for _, target := range targets {
		tr, ok := tl.active[target]
		if !ok {
			continue
		}
		if tr.Start.IsZero() {
			tr.Start = now
		}

		progress := 1.0
		if tr.Duration > 0 {
			progress = Clamp01(float64(now.Sub(tr.Start)) / float64(tr.Duration))
		}

		if progress >= 1 {
			tl.Cancel(target)
			if tr.Step != nil {
				tr.Step(1)
			}
			if tr.Done != nil {
				tr.Done()
			}
			continue
		}
		if tr.Step != nil {
			tr.Step(tr.Ease(progress))
		}
	}
	return tl.Active()
}

// Finish jumps every running transition to its end state.
func (tl *Timeline) Finish() {
	for tl.Active() {
		for _, tr := range tl.active {
			tr.Duration = 0
		}
		tl.Advance(time.Now())
	}
}
