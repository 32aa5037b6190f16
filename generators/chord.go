package generators

import "math/rand"

// Voicing selects how a chord's pitches are spread across octaves, per
// spec.md §4.4.
type Voicing int

const (
	VoicingClose Voicing = iota
	VoicingOpen
	VoicingDrop2
	VoicingSpread
)

// InversionMode selects how a chord's root position is rotated.
type InversionMode int

const (
	InversionRoot InversionMode = iota
	InversionRandom
	InversionVoiceLed // minimize total movement from the previous chord
	InversionAscending
)

// ProgressionMode selects how successive chord roots are chosen.
type ProgressionMode int

const (
	ProgressionFunctional ProgressionMode = iota // cycles through I-IV-V-vi-ish degrees
	ProgressionRandomInKey
	ProgressionCustom
)

// functionalDegrees is the cycle of scale degrees (0-indexed) a
// ProgressionFunctional walks, grounded on the reference implementation's
// common-practice progression table in chord.rs.
var functionalDegrees = []int{0, 3, 4, 5}

// Chord generates block chords in the current key: a progression of
// roots, each voiced as a triad/seventh/ninth/sus extension and inverted
// per InversionMode.
//
// Grounded on the reference implementation's generators/chord.rs
// Voicing/InversionMode/ProgressionMode and calculate_movement.
type Chord struct {
	extension       string // "triad", "seventh", "ninth", "sus2", "sus4"
	voicing         Voicing
	inversion       InversionMode
	progression     ProgressionMode
	customDegrees   []int
	chordDuration   int64 // ticks per chord
	velocity        float64

	progressIdx  int
	prevVoicing  []int
	rng          *rand.Rand
}

// NewChord returns a Chord generator of the given extension ("triad",
// "seventh", "ninth", "sus2", "sus4").
func NewChord(extension string) *Chord {
	return &Chord{
		extension:     extension,
		voicing:       VoicingClose,
		inversion:     InversionRoot,
		progression:   ProgressionFunctional,
		chordDuration: 24 * 4,
		velocity:      85,
		rng:           rand.New(rand.NewSource(3)),
	}
}

func (c *Chord) Name() string { return "chord" }

func (c *Chord) Reset() {
	c.progressIdx = 0
	c.prevVoicing = nil
}

func (c *Chord) Params() map[string]float64 {
	return map[string]float64{
		"voicing":        float64(c.voicing),
		"inversion":      float64(c.inversion),
		"progression":    float64(c.progression),
		"chord_duration": float64(c.chordDuration),
		"velocity":       c.velocity,
	}
}

func (c *Chord) GetParam(name string) (float64, bool) {
	p, ok := c.Params()[name]
	return p, ok
}

func (c *Chord) SetParam(name string, value float64) {
	switch name {
	case "voicing":
		c.voicing = Voicing(int(value))
	case "inversion":
		c.inversion = InversionMode(int(value))
	case "progression":
		c.progression = ProgressionMode(int(value))
	case "chord_duration":
		c.chordDuration = int64(value)
	case "velocity":
		c.velocity = value
	}
}

// extensionIntervals returns the scale-degree offsets from the chord
// root for the configured extension.
func (c *Chord) extensionIntervals() []int {
	switch c.extension {
	case "seventh":
		return []int{0, 2, 4, 6}
	case "ninth":
		return []int{0, 2, 4, 6, 8}
	case "sus2":
		return []int{0, 1, 4}
	case "sus4":
		return []int{0, 3, 4}
	default: // triad
		return []int{0, 2, 4}
	}
}

func (c *Chord) nextRootDegree() int {
	switch c.progression {
	case ProgressionRandomInKey:
		return c.rng.Intn(7)
	case ProgressionCustom:
		if len(c.customDegrees) == 0 {
			return 0
		}
		d := c.customDegrees[c.progressIdx%len(c.customDegrees)]
		c.progressIdx++
		return d
	default:
		d := functionalDegrees[c.progressIdx%len(functionalDegrees)]
		c.progressIdx++
		return d
	}
}

func (c *Chord) voiceChord(ctx Context, root int) []int {
	intervals := c.extensionIntervals()
	scale := ctx.Scale()
	var pitches []int
	for _, iv := range intervals {
		if p, ok := scale.MidiNoteAt(root+iv+1, 4); ok {
			pitches = append(pitches, p)
		}
	}
	if len(pitches) == 0 {
		return pitches
	}

	switch c.voicing {
	case VoicingOpen:
		if len(pitches) > 1 {
			pitches[1] += 12
		}
	case VoicingDrop2:
		if len(pitches) > 1 {
			idx := len(pitches) - 2
			pitches[idx] -= 12
		}
	case VoicingSpread:
		for i := range pitches {
			pitches[i] += 12 * (i % 2)
		}
	}

	switch c.inversion {
	case InversionAscending:
		sortIntsAsc(pitches)
	case InversionRandom:
		n := c.rng.Intn(len(pitches))
		pitches = rotateOctave(pitches, n)
	case InversionVoiceLed:
		if c.prevVoicing != nil {
			pitches = bestInversion(pitches, c.prevVoicing)
		}
	}
	c.prevVoicing = append([]int(nil), pitches...)
	return pitches
}

func (c *Chord) Generate(ctx Context) []Event {
	root := c.nextRootDegree()
	pitches := c.voiceChord(ctx, root)
	var events []Event
	for _, p := range pitches {
		events = append(events, Event{
			Pitch:         clampByte(p),
			Velocity:      clampByte(int(c.velocity)),
			StartTick:     0,
			DurationTicks: c.chordDuration,
		})
	}
	return events
}

func sortIntsAsc(xs []int) {
	for i := 1; i < len(xs); i++ {
		for j := i; j > 0 && xs[j] < xs[j-1]; j-- {
			xs[j], xs[j-1] = xs[j-1], xs[j]
		}
	}
}

// rotateOctave raises the first n pitches (in original order) by an
// octave, simulating a chord inversion.
func rotateOctave(pitches []int, n int) []int {
	out := append([]int(nil), pitches...)
	for i := 0; i < n && i < len(out); i++ {
		out[i] += 12
	}
	return out
}

// bestInversion tries raising each prefix length 0..len(pitches) by an
// octave and keeps whichever minimizes total absolute movement from
// prev, per the reference implementation's calculate_movement.
func bestInversion(pitches, prev []int) []int {
	best := pitches
	bestCost := movementCost(pitches, prev)
	for n := 1; n <= len(pitches); n++ {
		cand := rotateOctave(pitches, n)
		if cost := movementCost(cand, prev); cost < bestCost {
			bestCost = cost
			best = cand
		}
	}
	return best
}

func movementCost(a, b []int) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	cost := 0
	for i := 0; i < n; i++ {
		d := a[i] - b[i]
		if d < 0 {
			d = -d
		}
		cost += d
	}
	return cost
}
