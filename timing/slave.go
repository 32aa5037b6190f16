package timing

import "time"

// Tap forwards to the embedded TapTempo and, if the estimate is usable,
// applies it as a tempo change at the current tick.
func (c *Clock) Tap(at time.Time) (bpm float64, ok bool) {
	c.mu.Lock()
	bpm, ok = c.tap.Tap(at)
	c.mu.Unlock()
	if ok {
		c.SetTempo(bpm)
	}
	return bpm, ok
}

// ResetTap clears the tap-tempo ring buffer without affecting the clock.
func (c *Clock) ResetTap() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tap.Reset()
}

// ExternalSlave tracks an incoming MIDI clock stream (0xF8 pulses) and
// drives a Clock's tick advance from the observed pulse period, rather than
// from a locally-owned tempo. It implements a phase-locked estimator with a
// bounded per-beat adjustment so jitter on the master doesn't produce
// audible tempo wobble, per spec.md §4.2.
type ExternalSlave struct {
	clock        *Clock
	lastPulse    time.Time
	periodMicros float64 // rolling estimate of inter-pulse period
	pulseCount   int
	haveEstimate bool
}

// NewExternalSlave builds a slave bound to the given Clock.
func NewExternalSlave(c *Clock) *ExternalSlave {
	return &ExternalSlave{clock: c}
}

// maxAdjustPerBeat bounds how far the period estimate may move per beat
// (24 pulses), preventing a single jittery pulse from causing an audible
// tempo jump. Open question per spec.md §9: behavior under period swings
// >20% is unspecified; this implementation clamps the adjustment and lets
// the estimator converge over subsequent beats rather than snapping.
const maxAdjustPerBeat = 0.05

// Pulse records an incoming 0xF8 clock pulse, updates the rolling period
// estimate, and advances the bound Clock by one tick.
func (s *ExternalSlave) Pulse(at time.Time) {
	defer func() {
		s.lastPulse = at
		s.pulseCount++
		s.clock.Advance(1)
	}()

	if s.lastPulse.IsZero() {
		return
	}
	observed := float64(at.Sub(s.lastPulse).Microseconds())
	if observed <= 0 {
		return
	}
	if !s.haveEstimate {
		s.periodMicros = observed
		s.haveEstimate = true
	} else {
		delta := observed - s.periodMicros
		maxDelta := s.periodMicros * maxAdjustPerBeat / PPQN
		if delta > maxDelta {
			delta = maxDelta
		} else if delta < -maxDelta {
			delta = -maxDelta
		}
		s.periodMicros += delta
	}

	if s.periodMicros > 0 {
		bpm := 60_000_000.0 / (s.periodMicros * PPQN)
		s.clock.SetTempo(bpm)
	}
}

// Start resets the estimator; called on the master's Start/Continue so a
// large period swing right after transport start doesn't get smoothed in
// slowly (per spec.md §9's "reset estimator and resync on next Start").
func (s *ExternalSlave) Start() {
	s.lastPulse = time.Time{}
	s.haveEstimate = false
	s.pulseCount = 0
}
