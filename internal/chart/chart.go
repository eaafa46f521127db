// Package chart implements the two dashboard components: a proportional
// (pie) chart and a sortable, paginated table.
//
// Both follow the same contract. State lives in an attribute store
// (internal/attr) whose change callback schedules a render on a shared
// frame loop (internal/schedule). Render reconciles the desired items
// against a retained tree (internal/vtree) and animates geometry changes
// on a per-component tween timeline (internal/tween). Nothing here talks
// to the terminal directly; View paints the current tree into a string.
package chart

import (
	"time"

	"github.com/Mr-Dark-debug/covidash/internal/attr"
	"github.com/Mr-Dark-debug/covidash/internal/logger"
	"github.com/Mr-Dark-debug/covidash/internal/schedule"
	"github.com/Mr-Dark-debug/covidash/internal/tween"
)

// Options wires a component to its environment. The zero value is usable:
// without a Loop renders only happen when Render is called directly.
type Options struct {
	Loop     schedule.FrameLoop
	Logger   logger.Logger
	Now      func() time.Time
	Duration time.Duration
}

func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = logger.Discard
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Duration <= 0 {
		o.Duration = tween.DefaultDuration
	}
	return o
}

// base carries what both components share.
type base struct {
	attrs    *attr.Store
	sched    *schedule.Scheduler
	timeline *tween.Timeline
	log      logger.Logger
	now      func() time.Time
	duration time.Duration
	lastErr  error
}

func newBase(opts Options, observed []string, onChange attr.ChangeFunc, render func() error) *base {
	opts = opts.withDefaults()
	b := &base{
		timeline: tween.NewTimeline(),
		log:      opts.Logger,
		now:      opts.Now,
		duration: opts.Duration,
	}
	b.attrs = attr.NewStore(observed, onChange)
	b.sched = schedule.New(opts.Loop, func() {
		if err := render(); err != nil {
			b.log.Error("render failed", "err", err)
		}
	})
	return b
}

// GetAttribute returns the serialized form of an attribute.
func (b *base) GetAttribute(name string) (string, bool) {
	return b.attrs.Get(name)
}

// SetAttribute is the external, untrusted mutation path. Malformed values
// never fail; they read back as the field's default.
func (b *base) SetAttribute(name, value string) {
	b.attrs.SetAttribute(name, value)
}

// RemoveAttribute clears an attribute, restoring the field's default.
func (b *base) RemoveAttribute(name string) {
	b.attrs.RemoveAttribute(name)
}

// Connect attaches the component and schedules its first render.
func (b *base) Connect() {
	b.sched.Attach()
}

// Disconnect abandons any pending render.
func (b *base) Disconnect() {
	b.sched.Detach()
}

// RenderPending reports whether a scheduled render has not run yet.
func (b *base) RenderPending() bool {
	return b.sched.Pending()
}

// Advance steps running transitions to now and reports whether any are
// still active.
func (b *base) Advance(now time.Time) bool {
	return b.timeline.Advance(now)
}

// Animating reports whether transitions are running.
func (b *base) Animating() bool {
	return b.timeline.Active()
}

// Settle completes every running transition immediately.
func (b *base) Settle() {
	b.timeline.Finish()
}

// Err returns the error of the last render, if any.
func (b *base) Err() error {
	return b.lastErr
}

func (b *base) scheduleRender() {
	b.sched.Schedule()
}

func (b *base) transition(target any, step func(t float64), done func()) {
	b.timeline.Start(target, &tween.Transition{
		Start:    b.now(),
		Duration: b.duration,
		Step:     step,
		Done:     done,
	})
}
