package sequencer

import (
	"testing"

	"seq/generators"
)

func TestClipLoopForeverWrapsPosition(t *testing.T) {
	gen := generators.NewDrone(1)
	c := NewClip("a", gen, 48)
	c.Queue()
	c.Activate()

	_, end := c.Tick(generators.DefaultContext(), 40)
	if end {
		t.Fatalf("did not expect natural end before loop boundary")
	}
	if c.Position() != 40 {
		t.Fatalf("position = %d, want 40", c.Position())
	}
	_, end = c.Tick(generators.DefaultContext(), 20)
	if end {
		t.Fatalf("LoopForever must never report naturalEnd")
	}
	if c.Position() >= c.LoopEnd {
		t.Fatalf("position %d did not wrap below LoopEnd %d", c.Position(), c.LoopEnd)
	}
}

func TestClipLoopCountStopsAfterNTimes(t *testing.T) {
	gen := generators.NewDrone(1)
	c := NewClip("a", gen, 24)
	c.LoopMode = LoopCount
	c.LoopN = 2
	c.Queue()
	c.Activate()

	var end bool
	for i := 0; i < 3 && !end; i++ {
		_, end = c.Tick(generators.DefaultContext(), 24)
	}
	if !end {
		t.Fatalf("expected clip to naturally end after 2 loops")
	}
	if c.State != Stopped {
		t.Fatalf("state = %v, want Stopped", c.State)
	}
}

func TestClipOneShotStopsAtLength(t *testing.T) {
	gen := generators.NewDrone(1)
	c := NewClip("a", gen, 24)
	c.LoopMode = OneShot
	c.Queue()
	c.Activate()

	_, end := c.Tick(generators.DefaultContext(), 24)
	if !end {
		t.Fatalf("expected OneShot clip to end at its length")
	}
}

func TestClipRequestStopFinishesCurrentLoopThenStops(t *testing.T) {
	gen := generators.NewDrone(1)
	c := NewClip("a", gen, 24)
	c.Queue()
	c.Activate()
	c.RequestStop()
	if c.State != Finishing {
		t.Fatalf("state = %v, want Finishing", c.State)
	}
	_, end := c.Tick(generators.DefaultContext(), 24)
	if !end || c.State != Stopped {
		t.Fatalf("expected clip to stop at the loop boundary after RequestStop")
	}
}

func TestTriggerQueueBeatBoundary(t *testing.T) {
	q := Quantize{Kind: Beat}
	if got := q.Boundary(0); got != 0 {
		t.Errorf("boundary of tick 0 = %d, want 0 (already on boundary)", got)
	}
	if got := q.Boundary(1); got != ticksPerBeat {
		t.Errorf("boundary of tick 1 = %d, want %d", got, ticksPerBeat)
	}
	if got := q.Boundary(ticksPerBeat); got != ticksPerBeat {
		t.Errorf("boundary of tick %d = %d, want %d (on boundary, no skip)", ticksPerBeat, got, ticksPerBeat)
	}
}

func TestTriggerQueueBarBoundary(t *testing.T) {
	q := Quantize{Kind: Bar}
	if got := q.Boundary(1); got != ticksPerBar {
		t.Errorf("boundary of tick 1 = %d, want %d", got, ticksPerBar)
	}
}

func TestTriggerQueueLaterTriggerCancelsEarlierForSameTrack(t *testing.T) {
	tq := NewTriggerQueue()
	tq.Enqueue("clip-a", 0, Quantize{Kind: Bar}, 0)
	tq.Enqueue("clip-b", 0, Quantize{Kind: Bar}, 1)

	pending := tq.Pending()
	if len(pending) != 1 {
		t.Fatalf("expected exactly 1 pending trigger, got %d", len(pending))
	}
	if pending[0].ClipID != "clip-b" {
		t.Errorf("pending trigger = %s, want clip-b (the later one)", pending[0].ClipID)
	}
}

func TestTriggerQueuePollReturnsDueAndKeepsFuture(t *testing.T) {
	tq := NewTriggerQueue()
	tq.Enqueue("clip-a", 0, Quantize{Kind: Bar}, 0) // boundary = 0
	tq.Enqueue("clip-b", 1, Quantize{Kind: Bar}, 1) // boundary = 96

	due := tq.Poll(0)
	if len(due) != 1 || due[0].ClipID != "clip-a" {
		t.Fatalf("expected only clip-a due at tick 0, got %v", due)
	}
	if len(tq.Pending()) != 1 {
		t.Fatalf("expected clip-b to remain pending")
	}
}

func TestTrackMuteDropsEvents(t *testing.T) {
	track := NewTrack(0, "lead", 1)
	clip := NewClip("a", generators.NewDrone(1), 96)
	track.AddClip(clip)
	clip.Queue()
	clip.Activate()
	track.Muted = true

	events, _ := track.Tick(generators.DefaultContext(), 0, 24, false)
	if len(events) != 0 {
		t.Errorf("muted track produced %d events, want 0", len(events))
	}
}

func TestTrackSoloSuppressesNonSoloTracks(t *testing.T) {
	track := NewTrack(0, "lead", 1)
	clip := NewClip("a", generators.NewDrone(1), 96)
	track.AddClip(clip)
	clip.Queue()
	clip.Activate()

	events, _ := track.Tick(generators.DefaultContext(), 0, 24, true /* soloActive elsewhere */)
	if len(events) != 0 {
		t.Errorf("non-solo track produced %d events while another track soloed, want 0", len(events))
	}
}

func TestTrackTransposeClampsToRange(t *testing.T) {
	track := NewTrack(0, "lead", 1)
	track.Transpose = -200
	clip := NewClip("a", generators.NewDrone(1), 96)
	track.AddClip(clip)
	clip.Queue()
	clip.Activate()

	events, _ := track.Tick(generators.DefaultContext(), 0, 24, false)
	for _, e := range events {
		if e.Pitch != 0 {
			t.Errorf("pitch = %d, want clamped to 0 after extreme negative transpose", e.Pitch)
		}
	}
}

func TestTrackVelocityScaleZeroClampsToFloorNotFullVelocity(t *testing.T) {
	track := NewTrack(0, "lead", 1)
	track.VelocityScale = 0
	clip := NewClip("a", generators.NewDrone(1), 96)
	track.AddClip(clip)
	clip.Queue()
	clip.Activate()

	events, _ := track.Tick(generators.DefaultContext(), 0, 24, false)
	for _, e := range events {
		if e.Velocity != 1 {
			t.Errorf("velocity with VelocityScale=0 = %d, want clamped to floor 1", e.Velocity)
		}
	}
}

func TestTrackFadeInRampsVelocityUpAcrossWindow(t *testing.T) {
	track := NewTrack(0, "lead", 1)
	clip := NewClip("a", generators.NewDrone(1), 96)
	track.AddClip(clip)
	clip.Queue()
	clip.Activate()
	track.StartFadeIn(96)

	events, _ := track.Tick(generators.DefaultContext(), 0, 24, false)
	for _, e := range events {
		// Drone's unscaled velocity range is [40, 70]; a fade-in's first tick
		// (ramp factor 0, clamped up to velocity 1) should scale well below
		// that floor.
		if e.Velocity >= 40 {
			t.Errorf("velocity at the start of a fade-in should be scaled down below full velocity, got %d", e.Velocity)
		}
	}

	if track.fadeRemaining != 72 {
		t.Errorf("fadeRemaining after one 24-tick advance of a 96-tick fade = %d, want 72", track.fadeRemaining)
	}
}

func TestTrackClipIDByOffsetWraps(t *testing.T) {
	track := NewTrack(0, "lead", 1)
	a := NewClip("a", nil, 96)
	b := NewClip("b", nil, 96)
	track.AddClip(a)
	track.AddClip(b)

	if got := track.clipIDByOffset(a, 1); got != "b" {
		t.Errorf("offset +1 from a = %s, want b", got)
	}
	if got := track.clipIDByOffset(a, -1); got != "b" {
		t.Errorf("offset -1 from a (wrap) = %s, want b", got)
	}
}
