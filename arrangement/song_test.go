package arrangement

import (
	"testing"

	"seq/timing"
)

func TestSongPlayerAdvanceEntersFirstSectionOnFirstCall(t *testing.T) {
	sp := NewSongPlayer([]SongSection{{LengthBars: 2}, {LengthBars: 1}})

	var entered []int
	sp.Advance(0, func(sec *SongSection, idx int) { entered = append(entered, idx) })

	if len(entered) != 1 || entered[0] != 0 {
		t.Fatalf("first Advance call should report entering section 0, got %v", entered)
	}
}

func TestSongPlayerAdvanceCrossesSectionBoundary(t *testing.T) {
	sp := NewSongPlayer([]SongSection{{LengthBars: 1}, {LengthBars: 1}})

	var entered []int
	onEnter := func(sec *SongSection, idx int) { entered = append(entered, idx) }
	sp.Advance(0, onEnter)
	sp.Advance(ticksPerBarArr, onEnter)

	if len(entered) != 2 || entered[1] != 1 {
		t.Fatalf("expected to enter section 1 after a full bar, got %v", entered)
	}
	if sp.CurrentSection() == nil {
		t.Fatalf("expected a current section after advancing")
	}
}

func TestSongPlayerHoldsOnLastSectionWithNoLoop(t *testing.T) {
	sp := NewSongPlayer([]SongSection{{LengthBars: 1}})
	sp.Advance(0, nil)
	sp.Advance(ticksPerBarArr, nil)
	sp.Advance(ticksPerBarArr, nil)

	if sp.CurrentSection() == nil {
		t.Fatalf("expected to still have a current section after looping past the end")
	}
}

func TestSongPlayerLoopRegionWrapsToStart(t *testing.T) {
	sp := NewSongPlayer([]SongSection{{LengthBars: 1}, {LengthBars: 1}, {LengthBars: 1}})
	sp.SetLoop(LoopRegion{StartSection: 0, EndSection: 1, Repeats: 0})

	var entered []int
	onEnter := func(sec *SongSection, idx int) { entered = append(entered, idx) }
	sp.Advance(0, onEnter)
	sp.Advance(ticksPerBarArr, onEnter)
	sp.Advance(ticksPerBarArr, onEnter)

	want := []int{0, 1, 0}
	if len(entered) != len(want) {
		t.Fatalf("entered = %v, want %v", entered, want)
	}
	for i := range want {
		if entered[i] != want[i] {
			t.Errorf("entered[%d] = %d, want %d", i, entered[i], want[i])
		}
	}
}

func TestSongPlayerGotoSeeksAtNextBarBoundary(t *testing.T) {
	sp := NewSongPlayer([]SongSection{{LengthBars: 1}, {LengthBars: 1}, {LengthBars: 1}})
	sp.Advance(0, nil)
	sp.Goto(2)
	sp.Advance(ticksPerBarArr, nil)

	if sp.CurrentSection() != &sp.Sections[2] {
		t.Errorf("expected Goto(2) to take effect at the next bar boundary")
	}
}

func TestApplyEntryUpdatesClockTempo(t *testing.T) {
	clock := timing.NewClock(120)
	ApplyEntry(clock, &SongSection{Tempo: 96})
	if got := clock.CurrentTempo(); got != 96 {
		t.Errorf("CurrentTempo after ApplyEntry = %v, want 96", got)
	}
}

func TestApplyEntryIgnoresZeroTempo(t *testing.T) {
	clock := timing.NewClock(120)
	ApplyEntry(clock, &SongSection{})
	if got := clock.CurrentTempo(); got != 120 {
		t.Errorf("CurrentTempo after a zero-tempo entry = %v, want unchanged 120", got)
	}
}
