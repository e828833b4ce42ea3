package anim

import "time"

// Easing maps linear progress in [0, 1] to eased progress.
type Easing func(t float64) float64

// Linear is the identity easing.
func Linear(t float64) float64 { return t }

// EaseCubicInOut accelerates through the first half and decelerates
// through the second.
func EaseCubicInOut(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	u := 2*t - 2
	return 1 + u*u*u/2
}

// Tween returns a ticker that reports eased progress to step over duration.
// The clock starts at the first frame, which reports progress 0; the last
// frame reports exactly 1 and ends the ticker.
func Tween(duration time.Duration, ease Easing, step func(progress float64)) Ticker {
	if ease == nil {
		ease = Linear
	}
	var start time.Time
	return func(now time.Time) bool {
		if start.IsZero() {
			start = now
		}
		t := 1.0
		if duration > 0 {
			t = float64(now.Sub(start)) / float64(duration)
		}
		if t >= 1 {
			step(1)
			return false
		}
		step(ease(max(t, 0)))
		return true
	}
}
