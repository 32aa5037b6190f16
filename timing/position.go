package timing

// Position converts between raw ticks and bar/beat coordinates for a given
// time signature. Grounded on the reference implementation's
// SequencerTiming (sequencer/mod.rs), trimmed to the conversions the
// scheduler, trigger queue, and arrangement layer actually need.
type Position struct {
	BeatsPerBar int
	BeatUnit    int
}

// NewPosition returns a Position for the given time signature, defaulting
// to 4/4 if given a non-positive value.
func NewPosition(beatsPerBar, beatUnit int) Position {
	if beatsPerBar <= 0 {
		beatsPerBar = 4
	}
	if beatUnit <= 0 {
		beatUnit = 4
	}
	return Position{BeatsPerBar: beatsPerBar, BeatUnit: beatUnit}
}

// TicksPerBeat is PPQN scaled for the beat unit (e.g. 12 ticks per beat in
// a time signature with an eighth-note beat unit).
func (p Position) TicksPerBeat() int64 {
	return int64(PPQN * 4 / p.BeatUnit)
}

// TicksPerBar is ticks-per-beat times beats-per-bar.
func (p Position) TicksPerBar() int64 {
	return p.TicksPerBeat() * int64(p.BeatsPerBar)
}

// Bar returns the 0-based bar containing tick t.
func (p Position) Bar(t int64) int64 {
	return t / p.TicksPerBar()
}

// Beat returns the 0-based beat-within-bar containing tick t.
func (p Position) Beat(t int64) int64 {
	return (t % p.TicksPerBar()) / p.TicksPerBeat()
}

// NextBeatBoundary returns the next tick that is a multiple of
// TicksPerBeat at or after t.
func (p Position) NextBeatBoundary(t int64) int64 {
	return ceilMultiple(t, p.TicksPerBeat())
}

// NextBarBoundary returns the next tick that is a multiple of TicksPerBar
// at or after t.
func (p Position) NextBarBoundary(t int64) int64 {
	return ceilMultiple(t, p.TicksPerBar())
}

func ceilMultiple(t, m int64) int64 {
	if m <= 0 {
		return t
	}
	if t%m == 0 {
		return t
	}
	return (t/m + 1) * m
}
