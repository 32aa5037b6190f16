package timing

import (
	"testing"
	"time"
)

func TestTickToMicrosAtPPQN(t *testing.T) {
	for _, bpm := range []float64{20, 60, 120, 200, 300} {
		c := NewClock(bpm)
		got := c.TickToMicros(PPQN)
		want := int64(60_000_000.0 / bpm)
		diff := got - want
		if diff < -1 || diff > 1 {
			t.Errorf("bpm=%v TickToMicros(24) = %d, want ~%d", bpm, got, want)
		}
	}
}

func TestTempoChangeDoesNotRestampPastEvents(t *testing.T) {
	c := NewClock(120)
	before := []int64{c.TickToMicros(10), c.TickToMicros(14)}

	c.Advance(15)
	c.SetTempo(60)

	after := []int64{c.TickToMicros(10), c.TickToMicros(14)}
	if before[0] != after[0] {
		t.Errorf("tick 10 timestamp changed after tempo change: %d -> %d", before[0], after[0])
	}
	if before[1] != after[1] {
		t.Errorf("tick 14 timestamp changed after tempo change: %d -> %d", before[1], after[1])
	}
}

func TestTempoChangePreservesOrdering(t *testing.T) {
	c := NewClock(120)
	c.Advance(15)
	c.SetTempo(60)

	t10 := c.TickToMicros(10)
	t20 := c.TickToMicros(20)
	t30 := c.TickToMicros(30)
	t40 := c.TickToMicros(40)

	if !(t10 < t20 && t20 < t30 && t30 < t40) {
		t.Fatalf("dispatch timestamps not monotonically increasing: %d %d %d %d", t10, t20, t30, t40)
	}
	spacing1 := t30 - t20
	spacing2 := t40 - t30
	if spacing1 != spacing2 {
		t.Errorf("post-tempo-change spacing not uniform: %d vs %d", spacing1, spacing2)
	}
}

func TestResetZeroesTickOnStop(t *testing.T) {
	c := NewClock(120)
	c.Advance(500)
	c.Stop()
	if got := c.NowTick(); got != 0 {
		t.Errorf("NowTick after Stop = %d, want 0", got)
	}
}

func TestTapTempoDiscardsOutliers(t *testing.T) {
	tap := NewTapTempo(8)
	base := time.Now()
	// Four taps at a steady 500ms interval (120 BPM), with one wildly
	// late outlier interval that must be discarded per spec.md §4.2.
	times := []time.Time{
		base,
		base.Add(500 * time.Millisecond),
		base.Add(1000 * time.Millisecond),
		base.Add(1500 * time.Millisecond),
		base.Add(5000 * time.Millisecond), // outlier: 3.5s gap
	}
	var bpm float64
	var ok bool
	for _, ts := range times {
		bpm, ok = tap.Tap(ts)
	}
	if !ok {
		t.Fatal("expected usable tap estimate")
	}
	if bpm < 119.5 || bpm > 120.5 {
		t.Errorf("tap tempo = %v, want ~120 (outlier should be discarded)", bpm)
	}
}

func TestRampTempoBoundedSegments(t *testing.T) {
	c := NewClock(60)
	c.RampTempo(60, 180, 960) // 10 bars at 4/4
	if got := c.CurrentTempo(); got != 180 {
		t.Errorf("CurrentTempo after ramp = %v, want 180", got)
	}
	if len(c.segments) > 66 {
		t.Errorf("ramp produced %d segments, want <= 64 sub-segments + head", len(c.segments))
	}
}

func TestTicksPerBar(t *testing.T) {
	if got := TicksPerBar(4, 4); got != 96 {
		t.Errorf("TicksPerBar(4,4) = %d, want 96", got)
	}
}
