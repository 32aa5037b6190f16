// Package generators implements the algorithmic engines that turn musical
// rules and probability into MIDI events: Drone, Arpeggio, Chord, Melody,
// and Drums, per spec.md §4.4. Grounded on the reference implementation's
// generators/mod.rs Generator trait and GeneratorContext, translated from
// a Rust trait object into a Go interface.
package generators

import (
	"seq/midi"
	"seq/music"
)

// Event is a MIDI event a generator produces, stamped relative to the
// context's window start rather than an absolute tick — the caller
// (sequencer.Clip) offsets StartTick by the clip's own absolute position
// before handing events to the scheduler.
type Event struct {
	Pitch         uint8
	Velocity      uint8
	StartTick     int64
	DurationTicks int64
	Channel       uint8
}

// ToMidiEvent converts a generator Event into a midi.Event anchored at
// absolute tick `base + StartTick`, on the given track.
func (e Event) ToMidiEvent(base int64, trackIndex int) midi.Event {
	ev := midi.NewNoteOn(base+e.StartTick, e.Channel, e.Pitch, e.Velocity, e.DurationTicks)
	ev.TrackIndex = trackIndex
	return ev
}

// Context is the window of musical state a Generator.Generate call
// receives, per spec.md §4.4.
type Context struct {
	Tempo          float64
	PPQN           int
	Bar            int64
	Beat           int64
	Tick           int64
	BeatsPerBar    int
	Key            music.Key
	TicksToGenerate int64
	Swing          float64
}

// DefaultContext returns a Context for C major at 120 BPM generating one
// beat, matching the reference implementation's Default impl.
func DefaultContext() Context {
	return Context{
		Tempo:           120,
		PPQN:            24,
		BeatsPerBar:     4,
		Key:             music.NewKey(0, music.Major),
		TicksToGenerate: 24,
	}
}

// TotalTicks returns the absolute tick this context's window starts at.
func (c Context) TotalTicks() int64 {
	return c.Bar*int64(c.BeatsPerBar)*int64(c.PPQN) + c.Beat*int64(c.PPQN) + c.Tick
}

// Scale returns the scale of the context's current key.
func (c Context) Scale() music.Scale { return c.Key.Scale }

// TicksPerBeat returns PPQN (ticks per quarter note).
func (c Context) TicksPerBeat() int64 { return int64(c.PPQN) }

// TicksPerBar returns ticks per bar at the context's time signature.
func (c Context) TicksPerBar() int64 { return int64(c.PPQN) * int64(c.BeatsPerBar) }

// NoteDuration returns the tick length of a note value: 1=whole, 2=half,
// 4=quarter, 8=eighth, etc.
func (c Context) NoteDuration(division int) int64 {
	if division <= 0 {
		division = 4
	}
	return int64(c.PPQN) * 4 / int64(division)
}

// Generator is the common interface every generative engine implements,
// per spec.md §4.4's shared contract (generate/set_param/get_param/reset/
// name/params).
type Generator interface {
	Generate(ctx Context) []Event
	SetParam(name string, value float64)
	GetParam(name string) (float64, bool)
	Reset()
	Name() string
	Params() map[string]float64
}
