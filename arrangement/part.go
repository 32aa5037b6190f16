// Package arrangement implements Part, Scene, and Song per spec.md §3/§4.7
// — the layer that quantizes live state changes (macro actions, clip
// launches, section changes) to musical boundaries. Grounded on
// original_source/src/arrangement/{part,scene,song}.rs, translated from
// the Rust HashMap<usize, T>-keyed structs into Go maps keyed by
// sequencer track index, and from the reference's PartManager::update
// poll-on-tick-advance pattern into the same shape used throughout this
// repo's tick-driven components.
package arrangement

import (
	"seq/generators"
	"seq/sequencer"
)

// TrackClipState names what a Part or Scene does to one track when
// applied, per spec.md §3's Part/Scene data model.
type TrackClipState int

const (
	Empty TrackClipState = iota
	ClipRef
	GeneratorRef
	Stop
	Hold
)

// PartTransition is the quantization a Part's activation waits for,
// per spec.md §3.
type PartTransition int

const (
	Immediate PartTransition = iota
	NextBeat
	NextBar
	Beats
	Bars
	EndOfPhrase
	Crossfade
)

// MacroKind tags a MacroAction variant, per spec.md §3/§4.7.
type MacroKind int

const (
	MacroSetTempo MacroKind = iota
	MacroAdjustTempo
	MacroSetParameter
	MacroMuteTrack
	MacroUnmuteTrack
	MacroSoloTrack
	MacroUnsoloTrack
	MacroSendCC
	MacroSendProgramChange
)

// MacroAction is one of a Part's tempo-set / parameter-set / mute-solo /
// send-MIDI actions, fired at the same boundary as the part transition.
type MacroAction struct {
	Kind       MacroKind
	Tempo      float64
	TrackIndex int
	Param      string
	Value      float64
	Channel    uint8
	Controller uint8
	CCValue    uint8
	Program    uint8
}

// TrackState is one track-index entry of a Part: what to do to that
// track's clip/generator slot, keyed by the sequencer.Track's Index.
type TrackState struct {
	State TrackClipState
	Ref   string // clip ID for ClipRef, generator type name for GeneratorRef
}

// Part is spec.md §3's Part: a whole-track state snapshot with
// transitions, per original_source's Part struct.
type Part struct {
	Name          string
	TrackStates   map[int]TrackState
	Macros        []MacroAction
	Transition    PartTransition
	TransitionN   int // for Beats(n)/Bars(n); ticks for Crossfade(ticks)
	DurationBars  int // 0 = indefinite
	FollowPart    string
}

// NewPart returns an empty Part defaulting to a NextBar transition, per
// original_source/src/arrangement/part.rs's Default impl.
func NewPart(name string) *Part {
	return &Part{
		Name:        name,
		TrackStates: make(map[int]TrackState),
		Transition:  NextBar,
	}
}

// TrackState returns the state for trackIndex, defaulting to Hold (a
// track with no entry is left unchanged), matching the Rust
// unwrap_or(&TrackClipState::Hold).
func (p *Part) TrackState(trackIndex int) TrackState {
	if ts, ok := p.TrackStates[trackIndex]; ok {
		return ts
	}
	return TrackState{State: Hold}
}

// SetTrackState assigns trackIndex's state within this part.
func (p *Part) SetTrackState(trackIndex int, ts TrackState) {
	p.TrackStates[trackIndex] = ts
}

const ticksPerBeatArr = 24
const ticksPerBarArr = 96
const phraseBars = 4

// transitionTick computes the tick a PartTransition resolves to given
// currentTick, per original_source's PartManager::calculate_transition_tick.
// Crossfade resolves like Immediate: original_source's own comment on this
// variant reads "start crossfade immediately", and the fade itself (over
// TransitionN ticks) is something Apply arms on activation, not a delay
// before activation — see DESIGN.md's Open Question decisions.
func (p *Part) transitionTick(currentTick int64) int64 {
	switch p.Transition {
	case Immediate, Crossfade:
		return currentTick
	case NextBeat:
		return ceilMultipleArr(currentTick, ticksPerBeatArr)
	case NextBar:
		return ceilMultipleArr(currentTick, ticksPerBarArr)
	case Beats:
		n := p.TransitionN
		if n <= 0 {
			n = 1
		}
		return currentTick + int64(n)*ticksPerBeatArr
	case Bars:
		n := p.TransitionN
		if n <= 0 {
			n = 1
		}
		return currentTick + int64(n)*ticksPerBarArr
	case EndOfPhrase:
		return ceilMultipleArr(currentTick, phraseBars*ticksPerBarArr)
	}
	return currentTick
}

func ceilMultipleArr(t, m int64) int64 {
	if t%m == 0 {
		return t
	}
	return (t/m + 1) * m
}

// PendingPartTransition is a queued part activation awaiting its
// quantize boundary.
type PendingPartTransition struct {
	Target        string
	ScheduledTick int64
}

// PartManager holds every named Part and the single pending transition,
// grounded on original_source's PartManager (HashMap<String, Part> +
// a Vec<String> order + one Option<PendingTransition>).
type PartManager struct {
	parts      map[string]*Part
	order      []string
	current    string
	pending    *PendingPartTransition
}

// NewPartManager returns an empty PartManager.
func NewPartManager() *PartManager {
	return &PartManager{parts: make(map[string]*Part)}
}

// AddPart registers part, appending to the navigation order if new.
func (m *PartManager) AddPart(part *Part) {
	if _, exists := m.parts[part.Name]; !exists {
		m.order = append(m.order, part.Name)
	}
	m.parts[part.Name] = part
}

// Part returns the named part, or nil.
func (m *PartManager) Part(name string) *Part { return m.parts[name] }

// Names lists every registered part name in registration order, for UI
// and diagnostics.
func (m *PartManager) Names() []string {
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// CurrentPartName returns the name of the currently active part, or "".
func (m *PartManager) CurrentPartName() string { return m.current }

// PendingTransition reports the currently queued transition, if any.
func (m *PartManager) PendingTransition() *PendingPartTransition { return m.pending }

// CancelPending clears any queued transition without activating it.
func (m *PartManager) CancelPending() { m.pending = nil }

// TriggerPart schedules name's activation at its own PartTransition
// boundary relative to currentTick. Only one pending part at a time: a
// new trigger cancels the prior pending one, per spec.md §4.7.
func (m *PartManager) TriggerPart(name string, currentTick int64) bool {
	part, ok := m.parts[name]
	if !ok {
		return false
	}
	scheduled := part.transitionTick(currentTick)
	if scheduled == currentTick {
		m.current = name
		m.pending = nil
	} else {
		m.pending = &PendingPartTransition{Target: name, ScheduledTick: scheduled}
	}
	return true
}

// Update checks whether the pending transition's boundary has been
// reached by currentTick; if so, it activates the part and returns it.
func (m *PartManager) Update(currentTick int64) *Part {
	if m.pending == nil || currentTick < m.pending.ScheduledTick {
		return nil
	}
	target := m.pending.Target
	m.pending = nil
	m.current = target
	return m.parts[target]
}

// Apply runs part's track states against mgr: Stop transitions a track's
// playing clip to Finishing, ClipRef queues and activates a pre-built
// clip by ID, GeneratorRef swaps in a fresh clip wrapping a newly
// constructed generator (resolved by genType through registry), Hold
// leaves the track untouched, Empty also leaves the track untouched (no
// clip assigned to change to). Part.Macros fire at the same boundary as
// this transition per spec.md §4.7, but executing them needs the
// timing.Clock and midi.MidiSink this package doesn't hold a handle on —
// the session package applies p.Macros itself right after calling Apply.
func (p *Part) Apply(mgr *sequencer.TrackManager, registry *generators.Registry) {
	for idx, ts := range p.TrackStates {
		switch ts.State {
		case Stop:
			mgr.Stop(idx)
		case ClipRef:
			if p.Transition == Crossfade {
				mgr.CrossfadeTo(idx, ts.Ref, int64(p.crossfadeTicks()))
			} else {
				mgr.Launch(idx, ts.Ref, sequencer.Quantize{Kind: sequencer.Immediate})
			}
		case GeneratorRef:
			mgr.SwapGenerator(idx, ts.Ref, registry)
		case Hold, Empty:
			// no change.
		}
	}
}

// crossfadeTicks returns the velocity ramp-in duration a Crossfade
// transition arms on activation, defaulting to one bar when TransitionN
// is unset.
func (p *Part) crossfadeTicks() int {
	if p.TransitionN <= 0 {
		return ticksPerBarArr
	}
	return p.TransitionN
}
