package scheduler

import (
	"testing"

	"seq/midi"
)

func TestDrainUntilReturnsInTickOrder(t *testing.T) {
	s := New(16)
	s.Schedule(midi.NewNoteOn(30, 0, 60, 100, 0))
	s.Schedule(midi.NewNoteOn(10, 0, 62, 100, 0))
	s.Schedule(midi.NewNoteOn(20, 0, 64, 100, 0))

	due := s.DrainUntil(25)
	if len(due) != 2 {
		t.Fatalf("DrainUntil(25) returned %d events, want 2", len(due))
	}
	if due[0].AbsoluteTick != 10 || due[1].AbsoluteTick != 20 {
		t.Errorf("DrainUntil order = %d, %d; want 10, 20", due[0].AbsoluteTick, due[1].AbsoluteTick)
	}
	if s.Len() != 1 {
		t.Errorf("Len() after partial drain = %d, want 1", s.Len())
	}
}

func TestDrainUntilBreaksTiesBySequence(t *testing.T) {
	s := New(16)
	s.Schedule(midi.NewNoteOn(5, 0, 60, 100, 0))
	s.Schedule(midi.NewNoteOn(5, 0, 61, 100, 0))
	s.Schedule(midi.NewNoteOn(5, 0, 62, 100, 0))

	due := s.DrainUntil(5)
	if len(due) != 3 {
		t.Fatalf("expected 3 events, got %d", len(due))
	}
	for i, se := range due {
		if se.Event.Pitch != uint8(60+i) {
			t.Errorf("event %d pitch = %d, want %d (insertion order preserved for equal ticks)", i, se.Event.Pitch, 60+i)
		}
	}
}

func TestClearTrackOnlyRemovesMatchingTrack(t *testing.T) {
	s := New(16)
	a := midi.NewNoteOn(5, 0, 60, 100, 0)
	a.TrackIndex = 1
	b := midi.NewNoteOn(6, 0, 61, 100, 0)
	b.TrackIndex = 2
	s.Schedule(a)
	s.Schedule(b)

	s.ClearTrack(1)
	due := s.DrainUntil(100)
	if len(due) != 1 {
		t.Fatalf("expected 1 remaining event, got %d", len(due))
	}
	if due[0].Event.TrackIndex != 2 {
		t.Errorf("remaining event track = %d, want 2", due[0].Event.TrackIndex)
	}
}

func TestClearAllEmptiesQueue(t *testing.T) {
	s := New(16)
	s.Schedule(midi.NewNoteOn(5, 0, 60, 100, 0))
	s.Schedule(midi.NewNoteOn(6, 0, 61, 100, 0))
	s.ClearAll()
	if s.Len() != 0 {
		t.Errorf("Len() after ClearAll = %d, want 0", s.Len())
	}
}

func TestCapacityEvictsOldestSameTrackEvent(t *testing.T) {
	s := New(2)
	a := midi.NewNoteOn(1, 0, 60, 100, 0)
	a.TrackIndex = 0
	b := midi.NewNoteOn(2, 0, 61, 100, 0)
	b.TrackIndex = 0
	c := midi.NewNoteOn(3, 0, 62, 100, 0)
	c.TrackIndex = 0

	s.Schedule(a)
	s.Schedule(b)
	s.Schedule(c) // over capacity: should evict a (oldest on track 0)

	if s.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", s.Len())
	}
	if s.EvictedCount() != 1 {
		t.Errorf("EvictedCount() = %d, want 1", s.EvictedCount())
	}
	due := s.DrainUntil(100)
	if len(due) != 2 || due[0].Event.Pitch != 61 {
		t.Errorf("expected surviving events to be pitches 61,62; got %v", due)
	}
}

func TestCapacityEvictsOtherTrackWhenNoSameTrackEvent(t *testing.T) {
	s := New(2)
	a := midi.NewNoteOn(1, 0, 60, 100, 0)
	a.TrackIndex = 0
	b := midi.NewNoteOn(2, 0, 61, 100, 0)
	b.TrackIndex = 1

	s.Schedule(a)
	s.Schedule(b)
	c := midi.NewNoteOn(3, 0, 62, 100, 0)
	c.TrackIndex = 2
	s.Schedule(c)

	if s.EvictedCount() != 1 {
		t.Errorf("EvictedCount() = %d, want 1", s.EvictedCount())
	}
	if s.Len() != 2 {
		t.Errorf("Len() = %d, want 2", s.Len())
	}
}
