package generators

import (
	"math"
	"math/rand"
)

// Drone sustains a small set of slowly-evolving voices in the current
// key, occasionally retargeting one voice to a new in-scale pitch.
//
// Grounded on the reference implementation's generators/drone.rs
// ensure_voices/pick_new_note/random_change_delay structure, but with a
// deliberately different voice-leading model: spec.md §4.4 names a
// Gaussian-weighted candidate selection (weight = exp(-|delta|/sigma),
// truncated to candidates within 7 semitones of the voice's current
// pitch) rather than the reference's uniform draw over a hand-ranked
// interval-preference table. This generator implements the spec's model.
type Drone struct {
	voiceCount   int
	sigma        float64 // Gaussian weighting bandwidth, in semitones
	changeChance float64 // probability per call a voice retargets
	minVelocity  float64
	maxVelocity  float64
	sustainTicks int64

	voices []int // current pitch per voice, -1 = unset
	rng    *rand.Rand
}

// NewDrone returns a Drone with voiceCount sustained voices.
func NewDrone(voiceCount int) *Drone {
	if voiceCount <= 0 {
		voiceCount = 3
	}
	d := &Drone{
		voiceCount:   voiceCount,
		sigma:        3.0,
		changeChance: 0.08,
		minVelocity:  40,
		maxVelocity:  70,
		sustainTicks: 24 * 16,
		rng:          rand.New(rand.NewSource(1)),
	}
	d.voices = make([]int, voiceCount)
	for i := range d.voices {
		d.voices[i] = -1
	}
	return d
}

func (d *Drone) Name() string { return "drone" }

func (d *Drone) Reset() {
	for i := range d.voices {
		d.voices[i] = -1
	}
}

func (d *Drone) Params() map[string]float64 {
	return map[string]float64{
		"voice_count":   float64(d.voiceCount),
		"sigma":         d.sigma,
		"change_chance": d.changeChance,
		"min_velocity":  d.minVelocity,
		"max_velocity":  d.maxVelocity,
	}
}

func (d *Drone) GetParam(name string) (float64, bool) {
	p, ok := d.Params()[name]
	return p, ok
}

// SetParam silently ignores unknown names, per spec.md §4.4's shared
// generator contract.
func (d *Drone) SetParam(name string, value float64) {
	switch name {
	case "sigma":
		d.sigma = value
	case "change_chance":
		d.changeChance = value
	case "min_velocity":
		d.minVelocity = value
	case "max_velocity":
		d.maxVelocity = value
	}
}

func (d *Drone) Generate(ctx Context) []Event {
	scale := ctx.Scale()
	d.ensureVoices(scale)

	var events []Event
	for i, pitch := range d.voices {
		if d.rng.Float64() < d.changeChance {
			next := d.weightedNeighbor(scale, pitch)
			d.voices[i] = next
			pitch = next
		}
		vel := d.minVelocity + d.rng.Float64()*(d.maxVelocity-d.minVelocity)
		events = append(events, Event{
			Pitch:         clampByte(pitch),
			Velocity:      clampByte(int(vel)),
			StartTick:     0,
			DurationTicks: d.sustainTicks,
		})
	}
	return events
}

func (d *Drone) ensureVoices(scale interface{ Quantize(int) int }) {
	for i, v := range d.voices {
		if v < 0 {
			// Seed a voice near the middle of the keyboard, on-scale.
			d.voices[i] = scale.Quantize(48 + i*4)
		}
	}
}

// weightedNeighbor draws a replacement pitch for `current` from the
// in-scale candidates within 7 semitones, weighted by
// exp(-|delta|/sigma) — spec.md §4.4's voice-leading model.
func (d *Drone) weightedNeighbor(scale interface{ Contains(int) bool }, current int) int {
	type cand struct {
		pitch  int
		weight float64
	}
	var cands []cand
	var total float64
	for delta := -7; delta <= 7; delta++ {
		if delta == 0 {
			continue
		}
		p := current + delta
		if p < 0 || p > 127 || !scale.Contains(p) {
			continue
		}
		w := math.Exp(-math.Abs(float64(delta)) / d.sigma)
		cands = append(cands, cand{pitch: p, weight: w})
		total += w
	}
	if len(cands) == 0 {
		return current
	}
	r := d.rng.Float64() * total
	for _, c := range cands {
		if r < c.weight {
			return c.pitch
		}
		r -= c.weight
	}
	return cands[len(cands)-1].pitch
}

func clampByte(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 127 {
		return 127
	}
	return uint8(v)
}
