package engine

import (
	"math"
	"time"
)

// EaseFunc maps normalized time [0,1] to normalized progress [0,1].
type EaseFunc func(t float64) float64

// EaseLinear is constant-rate interpolation.
func EaseLinear(t float64) float64 { return t }

// EaseOutCubic decelerates toward the end value.
func EaseOutCubic(t float64) float64 {
	u := 1 - t
	return 1 - u*u*u
}

// tweenKey identifies an animation by its target object and property
// name. Starting a new tween under an existing key cancels and replaces
// the in-flight one.
type tweenKey struct {
	target any
	prop   string
}

type tween struct {
	from, to float64
	start    time.Time
	duration time.Duration
	ease     EaseFunc
	apply    func(v float64)
}

// Tweens is a per-frame interpolation scheduler: each active animation is
// a (target, property, from, to, start, duration, easing) record advanced
// once per rendered frame and removed on completion. It replaces an
// external animation library with something small enough to audit.
type Tweens struct {
	active map[tweenKey]*tween
}

// NewTweens creates an empty scheduler.
func NewTweens() *Tweens {
	return &Tweens{active: make(map[tweenKey]*tween)}
}

// Start schedules an animation of a float property. Last request wins:
// any in-flight tween for the same (target, prop) pair is replaced. A
// non-positive duration applies the end value immediately.
func (s *Tweens) Start(now time.Time, target any, prop string, from, to float64, duration time.Duration, ease EaseFunc, apply func(v float64)) {
	if ease == nil {
		ease = EaseLinear
	}
	if duration <= 0 {
		delete(s.active, tweenKey{target, prop})
		apply(to)
		return
	}
	s.active[tweenKey{target, prop}] = &tween{
		from:     from,
		to:       to,
		start:    now,
		duration: duration,
		ease:     ease,
		apply:    apply,
	}
}

// Cancel drops the tween for a (target, prop) pair without applying
// anything further.
func (s *Tweens) Cancel(target any, prop string) {
	delete(s.active, tweenKey{target, prop})
}

// CancelAll drops every active tween.
func (s *Tweens) CancelAll() {
	s.active = make(map[tweenKey]*tween)
}

// Len returns the number of in-flight tweens.
func (s *Tweens) Len() int {
	return len(s.active)
}

// Update advances every active tween to now, applying interpolated values
// and removing completed animations.
func (s *Tweens) Update(now time.Time) {
	for key, tw := range s.active {
		t := now.Sub(tw.start).Seconds() / tw.duration.Seconds()
		if t >= 1 {
			tw.apply(tw.to)
			delete(s.active, key)
			continue
		}
		if t < 0 {
			t = 0
		}
		v := tw.from + (tw.to-tw.from)*tw.ease(t)
		if math.IsNaN(v) {
			delete(s.active, key)
			continue
		}
		tw.apply(v)
	}
}
