package arrangement

import (
	"testing"

	"seq/control"
	"seq/generators"
	"seq/scheduler"
	"seq/sequencer"
	"seq/timing"
)

func TestRegistryResolvesTrackAndClipReferences(t *testing.T) {
	clock := timing.NewClock(120)
	sched := scheduler.New(0)
	bus := control.New(0)
	mgr := sequencer.NewTrackManager(clock, sched, bus)
	track := mgr.AddTrack("lead", 1)
	track.AddClip(sequencer.NewClip("verse", generators.NewDrone(1), 96))

	reg := NewRegistry(mgr)

	idx, ok := reg.TrackIndex("lead")
	if !ok || idx != track.Index {
		t.Fatalf("TrackIndex(%q) = %d, %v, want %d, true", "lead", idx, ok, track.Index)
	}
	if _, ok := reg.TrackIndex("missing"); ok {
		t.Errorf("TrackIndex should report ok=false for an unregistered track")
	}

	clipTrack, ok := reg.ClipTrack("verse")
	if !ok || clipTrack != track.Index {
		t.Fatalf("ClipTrack(%q) = %d, %v, want %d, true", "verse", clipTrack, ok, track.Index)
	}
}

func TestHandleSwapPublishesNewRegistry(t *testing.T) {
	mgr := sequencer.NewTrackManager(timing.NewClock(120), scheduler.New(0), control.New(0))
	first := NewRegistry(mgr)
	h := NewHandle(first)
	if h.Current() != first {
		t.Fatalf("Current should return the registry passed to NewHandle")
	}

	mgr.AddTrack("bass", 2)
	second := NewRegistry(mgr)
	h.Swap(second)
	if h.Current() != second {
		t.Errorf("Current should return the most recently swapped-in registry")
	}
}

func TestNewClipIDProducesDistinctValues(t *testing.T) {
	a, b := NewClipID(), NewClipID()
	if a == b {
		t.Errorf("NewClipID returned the same id twice: %q", a)
	}
}
