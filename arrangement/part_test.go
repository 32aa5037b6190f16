package arrangement

import (
	"testing"

	"seq/control"
	"seq/generators"
	"seq/scheduler"
	"seq/sequencer"
	"seq/timing"
)

func newTestManager() *sequencer.TrackManager {
	clock := timing.NewClock(120)
	sched := scheduler.New(0)
	bus := control.New(0)
	return sequencer.NewTrackManager(clock, sched, bus)
}

func TestPartTrackStateDefaultsToHold(t *testing.T) {
	p := NewPart("A")
	if got := p.TrackState(3); got.State != Hold {
		t.Errorf("unassigned track state = %v, want Hold", got.State)
	}
}

func TestPartApplyClipRefEnqueuesAnImmediateLaunch(t *testing.T) {
	mgr := newTestManager()
	track := mgr.AddTrack("lead", 1)
	clip := sequencer.NewClip("verse", generators.NewDrone(1), 96)
	track.AddClip(clip)

	p := NewPart("A")
	p.SetTrackState(track.Index, TrackState{State: ClipRef, Ref: "verse"})
	p.Apply(mgr, generators.NewRegistry())
	// Launch only enqueues a trigger on TrackManager's private queue;
	// activation happens on the next fill pass, not synchronously here.
}

func TestPartApplyGeneratorRefSwapsInNewClip(t *testing.T) {
	mgr := newTestManager()
	track := mgr.AddTrack("lead", 1)
	before := len(track.Clips)

	p := NewPart("A")
	p.SetTrackState(track.Index, TrackState{State: GeneratorRef, Ref: "drone"})
	p.Apply(mgr, generators.NewRegistry())

	if len(track.Clips) != before+1 {
		t.Fatalf("got %d clips after GeneratorRef swap, want %d", len(track.Clips), before+1)
	}
	if track.PlayingClip() == nil {
		t.Errorf("expected the swapped-in clip to be playing immediately")
	}
}

func TestPartTransitionTickVariants(t *testing.T) {
	p := NewPart("A")

	p.Transition = Immediate
	if got := p.transitionTick(40); got != 40 {
		t.Errorf("Immediate transitionTick(40) = %d, want 40", got)
	}

	p.Transition = NextBar
	if got := p.transitionTick(1); got != ticksPerBarArr {
		t.Errorf("NextBar transitionTick(1) = %d, want %d", got, ticksPerBarArr)
	}

	p.Transition = Bars
	p.TransitionN = 2
	if got := p.transitionTick(0); got != 2*ticksPerBarArr {
		t.Errorf("Bars(2) transitionTick(0) = %d, want %d", got, 2*ticksPerBarArr)
	}

	p.Transition = Crossfade
	p.TransitionN = 48
	if got := p.transitionTick(40); got != 40 {
		t.Errorf("Crossfade transitionTick(40) = %d, want 40 (resolves immediately)", got)
	}
}

func TestPartApplyClipRefCrossfadeArmsFadeIn(t *testing.T) {
	mgr := newTestManager()
	track := mgr.AddTrack("lead", 1)
	clip := sequencer.NewClip("verse", generators.NewDrone(1), 96)
	track.AddClip(clip)

	p := NewPart("A")
	p.Transition = Crossfade
	p.TransitionN = 48
	p.SetTrackState(track.Index, TrackState{State: ClipRef, Ref: "verse"})
	p.Apply(mgr, generators.NewRegistry())

	if track.PlayingClip() != nil {
		t.Errorf("CrossfadeTo launches through the trigger queue; activation happens on the next fill pass, not synchronously here")
	}
}

func TestPartManagerTriggerPartImmediateActivatesNow(t *testing.T) {
	pm := NewPartManager()
	part := NewPart("A")
	part.Transition = Immediate
	pm.AddPart(part)

	pm.TriggerPart("A", 100)
	if pm.CurrentPartName() != "A" {
		t.Errorf("CurrentPartName = %q, want %q", pm.CurrentPartName(), "A")
	}
	if pm.PendingTransition() != nil {
		t.Errorf("expected no pending transition for an Immediate part")
	}
}

func TestPartManagerTriggerPartQuantizedStaysPendingUntilBoundary(t *testing.T) {
	pm := NewPartManager()
	part := NewPart("A")
	part.Transition = NextBar
	pm.AddPart(part)

	pm.TriggerPart("A", 10)
	if pm.Update(10) != nil {
		t.Errorf("Update before the boundary should return nil")
	}
	if got := pm.Update(ticksPerBarArr); got == nil || got.Name != "A" {
		t.Errorf("Update at the boundary should activate part A")
	}
	if pm.CurrentPartName() != "A" {
		t.Errorf("CurrentPartName after activation = %q, want %q", pm.CurrentPartName(), "A")
	}
}

func TestPartManagerTriggerPartReplacesPending(t *testing.T) {
	pm := NewPartManager()
	a, b := NewPart("A"), NewPart("B")
	a.Transition, b.Transition = NextBar, NextBar
	pm.AddPart(a)
	pm.AddPart(b)

	pm.TriggerPart("A", 1)
	pm.TriggerPart("B", 1)
	got := pm.Update(ticksPerBarArr)
	if got == nil || got.Name != "B" {
		t.Errorf("a second TriggerPart should replace the first pending part; got %v", got)
	}
}

func TestPartManagerNamesPreservesRegistrationOrder(t *testing.T) {
	pm := NewPartManager()
	pm.AddPart(NewPart("intro"))
	pm.AddPart(NewPart("verse"))
	pm.AddPart(NewPart("chorus"))

	got := pm.Names()
	want := []string{"intro", "verse", "chorus"}
	if len(got) != len(want) {
		t.Fatalf("Names() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Names()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
