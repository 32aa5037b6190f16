package timing

import (
	"sort"
	"time"
)

// TapTempo estimates tempo from a ring buffer of tap timestamps. Unlike the
// reference implementation's TapTempo (a naive mean of intervals), this
// discards any interval greater than 2x the median before averaging, per
// spec.md §4.2 — this is the specification explicitly tightening the
// original's behavior rather than a gap to port verbatim.
type TapTempo struct {
	taps    []time.Time
	maxTaps int
}

// NewTapTempo returns a TapTempo holding at most maxTaps timestamps.
func NewTapTempo(maxTaps int) TapTempo {
	if maxTaps <= 0 {
		maxTaps = 8
	}
	return TapTempo{maxTaps: maxTaps}
}

// Tap records a tap at `at` and returns the estimated BPM plus whether the
// estimate is usable (at least two taps recorded since the last reset).
func (t *TapTempo) Tap(at time.Time) (bpm float64, ok bool) {
	t.taps = append(t.taps, at)
	if len(t.taps) > t.maxTaps {
		t.taps = t.taps[len(t.taps)-t.maxTaps:]
	}
	if len(t.taps) < 2 {
		return 0, false
	}

	intervals := make([]float64, 0, len(t.taps)-1)
	for i := 1; i < len(t.taps); i++ {
		intervals = append(intervals, t.taps[i].Sub(t.taps[i-1]).Seconds())
	}

	median := medianOf(intervals)
	var sum float64
	var n int
	for _, iv := range intervals {
		if iv <= 2*median {
			sum += iv
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	mean := sum / float64(n)
	if mean <= 0 {
		return 0, false
	}
	return clampTempo(60.0 / mean), true
}

// Reset clears accumulated taps.
func (t *TapTempo) Reset() {
	t.taps = t.taps[:0]
}

func medianOf(xs []float64) float64 {
	cp := make([]float64, len(xs))
	copy(cp, xs)
	sort.Float64s(cp)
	n := len(cp)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return cp[n/2]
	}
	return (cp[n/2-1] + cp[n/2]) / 2
}
