// Package sequencer implements the Clip/Track/TrackManager model and the
// trigger queue, per spec.md §4.5 and §4.6. Grounded on the teacher's own
// sequencer package (Track/Device/Manager), generalized from the
// teacher's fixed step-sequencer devices to spec's generator-driven,
// quantized-launch clip model.
package sequencer

import (
	"seq/generators"
)

// State is a Clip's position in its state machine, per spec.md §4.5.
type State int

const (
	Stopped State = iota
	Queued
	Playing
	Finishing
)

func (s State) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Queued:
		return "queued"
	case Playing:
		return "playing"
	case Finishing:
		return "finishing"
	}
	return "unknown"
}

// LoopKind selects how a Clip wraps at its loop boundary, per spec.md §4.5.
type LoopKind int

const (
	LoopForever LoopKind = iota
	LoopCount // wraps N times then transitions to Stopped
	PingPong
	OneShot
)

// Clip is a launchable unit of musical material: either a generator
// producing events live, or (once recorded) a fixed note list. Grounded
// on the teacher's sequencer/pianoroll.go note-list shape and
// sequencer/metropolix.go's pattern-queue state, generalized to the
// quantized clip-launch state machine spec.md §4.5 names.
type Clip struct {
	ID         string
	Generator  generators.Generator
	TrackIndex int

	State State

	Length    int64 // clip length in ticks
	LoopStart int64
	LoopEnd   int64
	LoopMode  LoopKind
	LoopN     int // for LoopCount

	position       int64
	direction      int64 // +1 or -1, used by PingPong
	loopsRemaining int

	// FollowAction implements spec.md §4.6's follow actions,
	// fired when the clip transitions to Stopped naturally (not via an
	// explicit stop request).
	FollowAction FollowAction
}

// NewClip returns a Clip over gen, looping forever across [0, length).
func NewClip(id string, gen generators.Generator, length int64) *Clip {
	return &Clip{
		ID:        id,
		Generator: gen,
		State:     Stopped,
		Length:    length,
		LoopStart: 0,
		LoopEnd:   length,
		LoopMode:  LoopForever,
		direction: 1,
	}
}

// Queue transitions Stopped -> Queued; the trigger queue calls this when
// a trigger for this clip is accepted.
func (c *Clip) Queue() {
	if c.State == Stopped {
		c.State = Queued
	}
}

// Activate transitions Queued -> Playing at a quantize boundary.
func (c *Clip) Activate() {
	if c.State == Queued {
		c.State = Playing
		c.position = 0
		c.direction = 1
		c.loopsRemaining = c.LoopN
		if c.Generator != nil {
			c.Generator.Reset()
		}
	}
}

// RequestStop transitions Playing -> Finishing (finish the current loop)
// per spec.md §4.5; OneShot clips still playing are stopped at once since
// there is no loop to finish.
func (c *Clip) RequestStop() {
	switch c.State {
	case Playing:
		if c.LoopMode == OneShot {
			c.State = Stopped
		} else {
			c.State = Finishing
		}
	case Queued:
		c.State = Stopped
	}
}

// Tick advances the clip by dt ticks and returns the generator events
// produced in that window, each stamped with StartTick relative to the
// window start (the caller offsets by the track's absolute tick).
// Reports naturalEnd = true if the clip transitioned to Stopped on its
// own (for follow-action dispatch) rather than via RequestStop.
func (c *Clip) Tick(ctx generators.Context, dt int64) (events []generators.Event, naturalEnd bool) {
	if c.State != Playing && c.State != Finishing {
		return nil, false
	}
	if c.Generator != nil {
		ctx.TicksToGenerate = dt
		events = c.Generator.Generate(ctx)
	}

	c.position += dt
	// A Finishing clip stops at the loop end before any wrap can hide it.
	if c.State == Finishing && c.position >= c.LoopEnd {
		c.State = Stopped
		return events, true
	}
	switch c.LoopMode {
	case LoopForever:
		if c.LoopEnd > c.LoopStart {
			for c.position >= c.LoopEnd {
				c.position = c.LoopStart + (c.position - c.LoopEnd)
			}
		}
	case LoopCount:
		if c.LoopEnd > c.LoopStart && c.position >= c.LoopEnd {
			c.position = c.LoopStart + (c.position - c.LoopEnd)
			c.loopsRemaining--
			if c.loopsRemaining <= 0 {
				c.State = Stopped
				return events, true
			}
		}
	case PingPong:
		if c.LoopEnd > c.LoopStart {
			for c.position >= c.LoopEnd || c.position < c.LoopStart {
				if c.position >= c.LoopEnd {
					over := c.position - c.LoopEnd
					c.position = c.LoopEnd - over
					c.direction = -1
				} else if c.position < c.LoopStart {
					under := c.LoopStart - c.position
					c.position = c.LoopStart + under
					c.direction = 1
				}
			}
		}
	case OneShot:
		if c.position >= c.Length {
			c.State = Stopped
			return events, true
		}
	}
	return events, false
}

// Position reports the clip's current position in ticks.
func (c *Clip) Position() int64 { return c.position }
