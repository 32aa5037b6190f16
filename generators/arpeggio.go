package generators

import "math/rand"

// Pattern selects the traversal order an Arpeggio plays its chord tones
// in, per spec.md §4.4.
type Pattern int

const (
	PatternUp Pattern = iota
	PatternDown
	PatternUpDown
	PatternDownUp
	PatternRandom
	PatternOrder // as listed, no reordering
)

// Arpeggio plays a sequence of notes drawn from the current key, cycling
// through them in Pattern order, with an optional Euclidean rhythm gate.
//
// Grounded on the reference implementation's generators/arpeggio.rs
// ArpPattern/build_sequence/next_note/should_play_euclidean.
type Arpeggio struct {
	degrees       []int // scale degrees relative to the key root, ascending
	octaves       int
	pattern       Pattern
	noteDivision  int // 8 = eighth notes, 16 = sixteenths, etc.
	velocity      float64
	gateLength    float64 // fraction of the step duration held
	useEuclidean  bool
	euclideanHits int
	euclideanLen  int

	position  int
	direction int // +1 or -1, used by UpDown/DownUp
	step      int64
	rng       *rand.Rand
}

// NewArpeggio returns an Arpeggio over the given scale degrees (e.g.
// [0,2,4] for a triad) spanning octaves octaves.
func NewArpeggio(degrees []int, octaves int) *Arpeggio {
	if octaves <= 0 {
		octaves = 1
	}
	return &Arpeggio{
		degrees:       append([]int(nil), degrees...),
		octaves:       octaves,
		pattern:       PatternUp,
		noteDivision:  16,
		velocity:      90,
		gateLength:    0.8,
		euclideanHits: 5,
		euclideanLen:  8,
		direction:     1,
		rng:           rand.New(rand.NewSource(2)),
	}
}

func (a *Arpeggio) Name() string { return "arpeggio" }

func (a *Arpeggio) Reset() {
	a.position = 0
	a.direction = 1
	a.step = 0
}

func (a *Arpeggio) Params() map[string]float64 {
	return map[string]float64{
		"octaves":        float64(a.octaves),
		"pattern":        float64(a.pattern),
		"note_division":  float64(a.noteDivision),
		"velocity":       a.velocity,
		"gate_length":    a.gateLength,
		"euclidean_hits": float64(a.euclideanHits),
		"euclidean_len":  float64(a.euclideanLen),
	}
}

func (a *Arpeggio) GetParam(name string) (float64, bool) {
	p, ok := a.Params()[name]
	return p, ok
}

func (a *Arpeggio) SetParam(name string, value float64) {
	switch name {
	case "octaves":
		a.octaves = int(value)
	case "pattern":
		a.pattern = Pattern(int(value))
	case "note_division":
		a.noteDivision = int(value)
	case "velocity":
		a.velocity = value
	case "gate_length":
		a.gateLength = value
	case "euclidean_hits":
		a.euclideanHits = int(value)
	case "euclidean_len":
		a.euclideanLen = int(value)
	case "use_euclidean":
		a.useEuclidean = value != 0
	}
}

// buildSequence expands degrees x octaves into absolute MIDI pitches in
// the current key, ordered per pattern.
func (a *Arpeggio) buildSequence(ctx Context) []int {
	scale := ctx.Scale()
	var notes []int
	for oct := 0; oct < a.octaves; oct++ {
		for _, deg := range a.degrees {
			if p, ok := scale.MidiNoteAt(deg+1, 4+oct); ok {
				notes = append(notes, p)
			}
		}
	}
	if len(notes) == 0 {
		return notes
	}
	switch a.pattern {
	case PatternDown:
		reverseInts(notes)
	case PatternUpDown:
		notes = append(notes, reversedCopy(notes[:len(notes)-1])...)
	case PatternDownUp:
		reverseInts(notes)
		notes = append(notes, reversedCopy(notes[:len(notes)-1])...)
	case PatternRandom:
		a.rng.Shuffle(len(notes), func(i, j int) { notes[i], notes[j] = notes[j], notes[i] })
	}
	return notes
}

func (a *Arpeggio) Generate(ctx Context) []Event {
	seq := a.buildSequence(ctx)
	if len(seq) == 0 {
		return nil
	}
	stepTicks := ctx.NoteDuration(a.noteDivision)
	if stepTicks <= 0 {
		stepTicks = 1
	}
	steps := ctx.TicksToGenerate / stepTicks
	if steps <= 0 {
		steps = 1
	}

	var events []Event
	for s := int64(0); s < steps; s++ {
		tick := s * stepTicks
		if a.useEuclidean && !a.shouldPlayEuclidean(int(a.step + s)) {
			continue
		}
		pitch := seq[a.position%len(seq)]
		a.position++
		events = append(events, Event{
			Pitch:         clampByte(pitch),
			Velocity:      clampByte(int(a.velocity)),
			StartTick:     tick,
			DurationTicks: int64(float64(stepTicks) * a.gateLength),
		})
	}
	a.step += steps
	return events
}

// shouldPlayEuclidean reports whether step index i is a hit in the
// Bjorklund-distributed Euclidean rhythm of euclideanHits onsets spread
// over euclideanLen steps — the same algorithm the reference
// implementation's arpeggio.rs and drums.rs both use.
func (a *Arpeggio) shouldPlayEuclidean(i int) bool {
	pattern := bjorklund(a.euclideanHits, a.euclideanLen)
	if len(pattern) == 0 {
		return true
	}
	return pattern[i%len(pattern)]
}

func reverseInts(xs []int) {
	for i, j := 0, len(xs)-1; i < j; i, j = i+1, j-1 {
		xs[i], xs[j] = xs[j], xs[i]
	}
}

func reversedCopy(xs []int) []int {
	out := make([]int, len(xs))
	for i, v := range xs {
		out[len(xs)-1-i] = v
	}
	return out
}

// bjorklund distributes `hits` onsets as evenly as possible over `length`
// steps (Bjorklund's algorithm / Euclidean rhythms), matching the
// reference implementation's shared helper in arpeggio.rs/drums.rs.
func bjorklund(hits, length int) []bool {
	if length <= 0 {
		return nil
	}
	if hits <= 0 {
		return make([]bool, length)
	}
	if hits >= length {
		pattern := make([]bool, length)
		for i := range pattern {
			pattern[i] = true
		}
		return pattern
	}

	counts := make([][]bool, hits)
	for i := range counts {
		counts[i] = []bool{true}
	}
	remainders := make([][]bool, length-hits)
	for i := range remainders {
		remainders[i] = []bool{false}
	}

	for len(remainders) > 1 {
		n := len(counts)
		if len(remainders) < n {
			n = len(remainders)
		}
		for i := 0; i < n; i++ {
			counts[i] = append(counts[i], remainders[i]...)
		}
		var newRemainders [][]bool
		if len(counts) > n {
			newRemainders = counts[n:]
		}
		counts = counts[:n]
		remainders = append(newRemainders, remainders[n:]...)
		if len(remainders) <= 1 {
			break
		}
	}

	var out []bool
	for _, c := range counts {
		out = append(out, c...)
	}
	for _, r := range remainders {
		out = append(out, r...)
	}
	return out
}
