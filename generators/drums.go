package generators

import "math/rand"

// DrumStyle selects the hit pattern a Drums generator produces, per
// spec.md §4.4.
type DrumStyle int

const (
	StyleFourOnFloor DrumStyle = iota
	StyleBreakbeat
	StyleSparse
	StyleBusy
	StyleEuclidean
	StyleRandom
)

// GM percussion note numbers, per the General MIDI drum map — grounded
// on the reference implementation's gm_drums constants in drums.rs.
const (
	GMKick       uint8 = 36
	GMSnare      uint8 = 38
	GMClosedHat  uint8 = 42
	GMOpenHat    uint8 = 46
	GMCrash      uint8 = 49
	GMRide       uint8 = 51
	GMLowTom     uint8 = 45
	GMMidTom     uint8 = 47
	GMHighTom    uint8 = 50
	GMClap       uint8 = 39
)

// Drums generates percussion patterns across a fixed 16-step grid per
// bar, per DrumStyle, with optional ghost notes and timing/velocity
// humanization.
//
// Grounded on the reference implementation's generators/drums.rs style
// table, ghost-note insertion, and humanize jitter.
type Drums struct {
	style            DrumStyle
	stepsPerBar      int
	velocity         float64
	ghostChance      float64
	ghostVelocity    float64
	humanizeTicks    int64
	humanizeVelocity float64
	euclideanHits    int
	fillEveryBars    int
	kit              Kit

	barCount int
	rng      *rand.Rand
}

// SetKit selects the note mapping Generate remaps its GM voices through
// (see kits.go, grounded on the teacher's sequencer/kits.go DrumKit table).
func (d *Drums) SetKit(name string) { d.kit = kitByName(name) }

// NewDrums returns a Drums generator in the given style.
func NewDrums(style DrumStyle) *Drums {
	return &Drums{
		style:            style,
		stepsPerBar:      16,
		velocity:         100,
		ghostChance:      0.15,
		ghostVelocity:    35,
		humanizeTicks:    2,
		humanizeVelocity: 8,
		euclideanHits:    5,
		fillEveryBars:    4,
		kit:              kitByName("gm"),
		rng:              rand.New(rand.NewSource(5)),
	}
}

func (d *Drums) Name() string { return "drums" }

func (d *Drums) Reset() { d.barCount = 0 }

func (d *Drums) Params() map[string]float64 {
	return map[string]float64{
		"style":             float64(d.style),
		"velocity":          d.velocity,
		"ghost_chance":      d.ghostChance,
		"ghost_velocity":    d.ghostVelocity,
		"humanize_ticks":    float64(d.humanizeTicks),
		"humanize_velocity": d.humanizeVelocity,
		"euclidean_hits":    float64(d.euclideanHits),
		"fill_every_bars":   float64(d.fillEveryBars),
		"kit":               float64(kitIndex(d.kit)),
	}
}

func (d *Drums) GetParam(name string) (float64, bool) {
	p, ok := d.Params()[name]
	return p, ok
}

func (d *Drums) SetParam(name string, value float64) {
	switch name {
	case "style":
		d.style = DrumStyle(int(value))
	case "velocity":
		d.velocity = value
	case "ghost_chance":
		d.ghostChance = value
	case "ghost_velocity":
		d.ghostVelocity = value
	case "humanize_ticks":
		d.humanizeTicks = int64(value)
	case "humanize_velocity":
		d.humanizeVelocity = value
	case "euclidean_hits":
		d.euclideanHits = int(value)
	case "fill_every_bars":
		d.fillEveryBars = int(value)
	case "kit":
		names := KitNames()
		i := int(value)
		if i >= 0 && i < len(names) {
			d.SetKit(names[i])
		}
	}
}

// hitMap returns, for each step index, the set of GM notes that should
// sound, for the configured style.
func (d *Drums) hitMap(steps int) map[int][]uint8 {
	hits := make(map[int][]uint8)
	add := func(i int, note uint8) { hits[i] = append(hits[i], note) }

	switch d.style {
	case StyleFourOnFloor:
		for s := 0; s < steps; s += 4 {
			add(s, GMKick)
		}
		for s := 4; s < steps; s += 8 {
			add(s, GMSnare)
		}
		for s := 0; s < steps; s += 2 {
			add(s, GMClosedHat)
		}
	case StyleBreakbeat:
		pattern := []int{0, 6, 10}
		for _, s := range pattern {
			if s < steps {
				add(s, GMKick)
			}
		}
		for _, s := range []int{4, 12} {
			if s < steps {
				add(s, GMSnare)
			}
		}
		for s := 0; s < steps; s++ {
			add(s, GMClosedHat)
		}
	case StyleSparse:
		if steps > 0 {
			add(0, GMKick)
		}
		if steps > 8 {
			add(8, GMSnare)
		}
	case StyleBusy:
		for s := 0; s < steps; s++ {
			add(s, GMClosedHat)
			if s%3 == 0 {
				add(s, GMKick)
			}
			if s%4 == 2 {
				add(s, GMSnare)
			}
		}
	case StyleEuclidean:
		kickPattern := bjorklund(d.euclideanHits, steps)
		for s, on := range kickPattern {
			if on {
				add(s, GMKick)
			}
		}
		for s := 4; s < steps; s += 8 {
			add(s, GMSnare)
		}
	case StyleRandom:
		for s := 0; s < steps; s++ {
			if d.rng.Float64() < 0.2 {
				add(s, GMKick)
			}
			if d.rng.Float64() < 0.15 {
				add(s, GMSnare)
			}
			if d.rng.Float64() < 0.5 {
				add(s, GMClosedHat)
			}
		}
	}
	return hits
}

func (d *Drums) Generate(ctx Context) []Event {
	stepTicks := ctx.NoteDuration(d.stepsPerBar)
	if stepTicks <= 0 {
		stepTicks = 1
	}
	steps := int(ctx.TicksToGenerate / stepTicks)
	if steps <= 0 {
		steps = d.stepsPerBar
	}

	hits := d.hitMap(steps)
	isFillBar := d.fillEveryBars > 0 && (d.barCount+1)%d.fillEveryBars == 0
	d.barCount++

	var events []Event
	for s := 0; s < steps; s++ {
		notes := hits[s]
		if isFillBar && s >= steps-4 {
			notes = append(notes, GMSnare)
		}
		for _, note := range notes {
			vel := d.velocity
			jitterV := (d.rng.Float64()*2 - 1) * d.humanizeVelocity
			jitterT := int64((d.rng.Float64()*2 - 1) * float64(d.humanizeTicks))
			events = append(events, Event{
				Pitch:         d.kit.remap(note),
				Velocity:      clampByte(int(vel + jitterV)),
				StartTick:     int64(s)*stepTicks + jitterT,
				DurationTicks: stepTicks / 2,
			})
		}
		if len(notes) == 0 && d.rng.Float64() < d.ghostChance {
			events = append(events, Event{
				Pitch:         d.kit.remap(GMClosedHat),
				Velocity:      clampByte(int(d.ghostVelocity)),
				StartTick:     int64(s) * stepTicks,
				DurationTicks: stepTicks / 2,
			})
		}
	}
	return events
}
