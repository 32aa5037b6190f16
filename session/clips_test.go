package session

import (
	"testing"

	"seq/config"
	"seq/control"
	"seq/generators"
	"seq/scheduler"
	"seq/sequencer"
	"seq/timing"
)

func newTestTrackManager() *sequencer.TrackManager {
	clock := timing.NewClock(120)
	sched := scheduler.New(0)
	bus := control.New(0)
	return sequencer.NewTrackManager(clock, sched, bus)
}

func TestBuildClipGeneratorSequencedReturnsNotesGenerator(t *testing.T) {
	genReg := generators.NewRegistry()
	cc := config.ClipConfig{
		ID:          "a",
		LengthTicks: 24,
		Notes:       []config.NoteConfig{{Tick: 0, Pitch: 60, Velocity: 100, Duration: 12}},
	}
	g, err := buildClipGenerator(genReg, cc)
	if err != nil {
		t.Fatalf("buildClipGenerator failed: %v", err)
	}
	if _, ok := g.(*generators.NotesGenerator); !ok {
		t.Errorf("got %T, want *generators.NotesGenerator for a Sequenced clip", g)
	}
}

func TestBuildClipGeneratorGeneratedReturnsLiveGenerator(t *testing.T) {
	genReg := generators.NewRegistry()
	cc := config.ClipConfig{
		ID:          "a",
		LengthTicks: 24,
		Generator:   &config.GeneratorConfig{Type: "drone"},
	}
	g, err := buildClipGenerator(genReg, cc)
	if err != nil {
		t.Fatalf("buildClipGenerator failed: %v", err)
	}
	if _, ok := g.(*generators.Drone); !ok {
		t.Errorf("got %T, want *generators.Drone for a Generated clip", g)
	}
}

func TestBuildClipGeneratorHybridReturnsComposite(t *testing.T) {
	genReg := generators.NewRegistry()
	cc := config.ClipConfig{
		ID:          "a",
		LengthTicks: 24,
		Notes:       []config.NoteConfig{{Tick: 0, Pitch: 60, Velocity: 100, Duration: 12}},
		Generator:   &config.GeneratorConfig{Type: "drone"},
	}
	g, err := buildClipGenerator(genReg, cc)
	if err != nil {
		t.Fatalf("buildClipGenerator failed: %v", err)
	}
	if _, ok := g.(*generators.Composite); !ok {
		t.Errorf("got %T, want *generators.Composite for a Hybrid clip", g)
	}
}

func TestBuildTrackAddsImplicitClipWhenNoClipsConfigured(t *testing.T) {
	genReg := generators.NewRegistry()
	mgr := newTestTrackManager()
	tc := config.TrackConfig{
		Name:      "lead",
		Channel:   0,
		Generator: &config.GeneratorConfig{Type: "drone"},
	}
	if err := buildTrack(mgr, genReg, tc, 4); err != nil {
		t.Fatalf("buildTrack failed: %v", err)
	}
	if len(mgr.Tracks[0].Clips) != 1 {
		t.Fatalf("got %d clips, want 1 implicit clip", len(mgr.Tracks[0].Clips))
	}
}
