package sequencer

import (
	"seq/generators"
	"seq/midi"
)

// Track owns a set of Clip slots plus the per-track transform pipeline
// spec.md §4.5 names: transpose (then clamp/drop by note range), velocity
// scale (then clamp), swing, channel assignment, and mute/solo. Grounded
// on the teacher's sequencer/track.go (Name/Channel/Muted/Solo, device
// forwarding), generalized from a single fixed Device to a slate of
// launchable Clips.
type Track struct {
	Name    string
	Index   int
	Channel uint8 // 1-16

	Clips []*Clip

	Muted bool
	Solo  bool

	Transpose     int     // semitones, applied before the note-range filter
	VelocityScale float64 // multiplier, applied then clamped to [1, 127]
	Swing         float64 // 0..1, fraction of a tick's worth of 8th-note delay on off-beats
	NoteRangeLow  uint8
	NoteRangeHigh uint8

	fadeRemaining int64 // ticks left in an active crossfade velocity ramp-in
	fadeTotal     int64
}

// NewTrack returns an empty track with a full note range and unity
// velocity scale.
func NewTrack(index int, name string, channel uint8) *Track {
	return &Track{
		Name:          name,
		Index:         index,
		Channel:       channel,
		VelocityScale: 1.0,
		NoteRangeLow:  0,
		NoteRangeHigh: 127,
	}
}

// AddClip appends clip to the track's slate, tagging it with this track's
// index.
func (t *Track) AddClip(c *Clip) {
	c.TrackIndex = t.Index
	t.Clips = append(t.Clips, c)
}

// ClipByID returns the clip with the given ID, or nil.
func (t *Track) ClipByID(id string) *Clip {
	for _, c := range t.Clips {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// PlayingClip returns the track's currently Playing or Finishing clip, if
// any (a track plays at most one clip at a time).
func (t *Track) PlayingClip() *Clip {
	for _, c := range t.Clips {
		if c.State == Playing || c.State == Finishing {
			return c
		}
	}
	return nil
}

// clipIDByOffset returns the ID of the clip offset positions away from
// from in t.Clips, wrapping around the slate, for FollowNext/FollowPrevious.
func (t *Track) clipIDByOffset(from *Clip, offset int) string {
	if len(t.Clips) == 0 {
		return ""
	}
	idx := -1
	for i, c := range t.Clips {
		if c == from {
			idx = i
			break
		}
	}
	if idx == -1 {
		return ""
	}
	n := len(t.Clips)
	next := ((idx+offset)%n + n) % n
	return t.Clips[next].ID
}

// StartFadeIn begins a linear velocity ramp-in lasting ticks ticks,
// applied by Tick on top of VelocityScale. This is the "velocity ramp
// for MIDI" a Crossfade(ticks) PartTransition calls for (spec.md §3):
// since a Track plays at most one clip at a time, it can't overlap an
// outgoing and incoming clip the way an audio crossfade would, so the
// incoming clip instead fades up from near-silence over the window.
func (t *Track) StartFadeIn(ticks int64) {
	if ticks <= 0 {
		t.fadeRemaining, t.fadeTotal = 0, 0
		return
	}
	t.fadeRemaining = ticks
	t.fadeTotal = ticks
}

// fadeMultiplier returns the current ramp-in factor: 1 (no-op) once a
// fade is inactive or complete, climbing from 0 at the fade's first tick
// to 1 across fadeTotal ticks otherwise.
func (t *Track) fadeMultiplier() float64 {
	if t.fadeTotal <= 0 || t.fadeRemaining <= 0 {
		return 1
	}
	return 1 - float64(t.fadeRemaining)/float64(t.fadeTotal)
}

// Tick advances the track's playing clip (if any and not muted-without-solo
// override) by dt ticks, applies the transform pipeline to the resulting
// events, and returns fully-formed midi.Events stamped at absoluteTick +
// each event's StartTick offset.
func (t *Track) Tick(ctx generators.Context, absoluteTick, dt int64, soloActive bool) ([]midi.Event, bool) {
	clip := t.PlayingClip()
	if clip == nil {
		return nil, false
	}
	if soloActive && !t.Solo {
		// Still advance position so the clip doesn't drift once unmuted,
		// but drop the produced events.
		clip.Tick(ctx, dt)
		return nil, false
	}
	if t.Muted {
		clip.Tick(ctx, dt)
		return nil, false
	}

	fade := t.fadeMultiplier()
	genEvents, naturalEnd := clip.Tick(ctx, dt)
	out := make([]midi.Event, 0, len(genEvents))
	for _, ge := range genEvents {
		ge = t.applyTranspose(ge)
		if !t.inRange(ge.Pitch) {
			continue
		}
		ge = t.applyVelocityScale(ge)
		if fade < 1 {
			ge.Velocity = clampVelocity(float64(ge.Velocity) * fade)
		}
		ge.StartTick = t.applySwing(ge.StartTick)

		me := ge.ToMidiEvent(absoluteTick, t.Index)
		me.Channel = t.Channel - 1 // Channel is 1-16; midi.Event.Channel is 0-15
		out = append(out, me)
	}
	if t.fadeRemaining > 0 {
		t.fadeRemaining -= dt
		if t.fadeRemaining < 0 {
			t.fadeRemaining = 0
		}
	}
	return out, naturalEnd
}

func (t *Track) applyTranspose(e generators.Event) generators.Event {
	p := int(e.Pitch) + t.Transpose
	if p < 0 {
		p = 0
	}
	if p > 127 {
		p = 127
	}
	e.Pitch = uint8(p)
	return e
}

func (t *Track) inRange(pitch uint8) bool {
	lo, hi := t.NoteRangeLow, t.NoteRangeHigh
	if lo == 0 && hi == 0 {
		return true
	}
	return pitch >= lo && pitch <= hi
}

// applyVelocityScale scales e's velocity by VelocityScale, per spec.md
// §3's velocity_scale ∈ [0, 2] and §4.5 step 2's "scale velocity by
// velocity_scale (clamp 1..127)". A VelocityScale of 0 is a valid,
// meaningful config value (near-silence), clamped up to the 1..127 floor
// like any other scale factor rather than treated as "leave untouched".
func (t *Track) applyVelocityScale(e generators.Event) generators.Event {
	e.Velocity = clampVelocity(float64(e.Velocity) * t.VelocityScale)
	return e
}

// clampVelocity clamps a scaled velocity to MIDI's 1..127 range (0 is
// reserved for note-off semantics in this model, so the floor is 1, not 0).
func clampVelocity(v float64) uint8 {
	if v < 1 {
		return 1
	}
	if v > 127 {
		return 127
	}
	return uint8(v)
}

// applySwing delays off-beat (odd 8th-note) events by Swing * half an
// 8th-note, per spec.md §4.5's swing definition.
func (t *Track) applySwing(startTick int64) int64 {
	if t.Swing == 0 {
		return startTick
	}
	const eighthNote = ticksPerBeat / 2
	eighthIndex := startTick / eighthNote
	if eighthIndex%2 == 0 {
		return startTick
	}
	delay := int64(t.Swing * float64(eighthNote) / 2)
	return startTick + delay
}
