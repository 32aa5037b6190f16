package generators

import "math/rand"

// MotifTransform selects how a stored motif is reshaped before playback,
// per spec.md §4.4.
type MotifTransform int

const (
	TransformOriginal MotifTransform = iota
	TransformRepeat
	TransformTranspose
	TransformInvert
	TransformRetrograde
	TransformRetroInvert // retrograde + invert combined
)

// Melody generates a phrase by sampling scale-degree steps from a weighted
// interval table, periodically capturing the phrase as a motif and
// replaying transformed variations of it.
//
// Grounded on the reference implementation's generators/melody.rs
// IntervalProbabilities table and motif generation/transformation cycle.
type Melody struct {
	intervalWeights map[int]float64 // scale-degree step -> relative weight
	noteDivision    int
	velocityBase    float64
	velocityJitter  float64
	motifLenSteps   int
	transposeSemis  int

	currentDegree int
	motif         []int // scale degrees captured from the most recent original phrase
	phraseCount   int
	rng           *rand.Rand
}

// NewMelody returns a Melody with a default step-weight table favoring
// small intervals, matching the reference's IntervalProbabilities default.
func NewMelody() *Melody {
	return &Melody{
		intervalWeights: map[int]float64{
			-2: 0.10, -1: 0.25, 0: 0.05, 1: 0.30, 2: 0.20, 3: 0.06, -3: 0.04,
		},
		noteDivision:   8,
		velocityBase:   80,
		velocityJitter: 15,
		motifLenSteps:  8,
		transposeSemis: 2,
		rng:            rand.New(rand.NewSource(4)),
	}
}

func (m *Melody) Name() string { return "melody" }

func (m *Melody) Reset() {
	m.currentDegree = 0
	m.motif = nil
	m.phraseCount = 0
}

func (m *Melody) Params() map[string]float64 {
	return map[string]float64{
		"note_division":   float64(m.noteDivision),
		"velocity_base":   m.velocityBase,
		"velocity_jitter": m.velocityJitter,
		"motif_len_steps": float64(m.motifLenSteps),
		"transpose_semis": float64(m.transposeSemis),
	}
}

func (m *Melody) GetParam(name string) (float64, bool) {
	p, ok := m.Params()[name]
	return p, ok
}

func (m *Melody) SetParam(name string, value float64) {
	switch name {
	case "note_division":
		m.noteDivision = int(value)
	case "velocity_base":
		m.velocityBase = value
	case "velocity_jitter":
		m.velocityJitter = value
	case "motif_len_steps":
		m.motifLenSteps = int(value)
	case "transpose_semis":
		m.transposeSemis = int(value)
	}
}

// nextStep samples a scale-degree delta from the weighted interval table.
func (m *Melody) nextStep() int {
	var total float64
	for _, w := range m.intervalWeights {
		total += w
	}
	r := m.rng.Float64() * total
	for step, w := range m.intervalWeights {
		if r < w {
			return step
		}
		r -= w
	}
	return 0
}

// transformFor picks which transform to apply to the captured motif this
// phrase, cycling through the full set so every transform gets exercised.
func (m *Melody) transformFor(phraseIdx int) MotifTransform {
	if len(m.motif) == 0 {
		return TransformOriginal
	}
	return MotifTransform(phraseIdx % 6)
}

func (m *Melody) applyTransform(t MotifTransform) []int {
	degrees := append([]int(nil), m.motif...)
	switch t {
	case TransformRepeat, TransformOriginal:
		return degrees
	case TransformTranspose:
		for i := range degrees {
			degrees[i] += m.transposeSemis
		}
		return degrees
	case TransformInvert:
		if len(degrees) == 0 {
			return degrees
		}
		axis := degrees[0]
		for i := range degrees {
			degrees[i] = axis - (degrees[i] - axis)
		}
		return degrees
	case TransformRetrograde:
		reverseInts(degrees)
		return degrees
	case TransformRetroInvert:
		reverseInts(degrees)
		if len(degrees) == 0 {
			return degrees
		}
		axis := degrees[0]
		for i := range degrees {
			degrees[i] = axis - (degrees[i] - axis)
		}
		return degrees
	}
	return degrees
}

func (m *Melody) Generate(ctx Context) []Event {
	stepTicks := ctx.NoteDuration(m.noteDivision)
	if stepTicks <= 0 {
		stepTicks = 1
	}
	steps := ctx.TicksToGenerate / stepTicks
	if steps <= 0 {
		steps = 1
	}

	var degrees []int
	transform := m.transformFor(m.phraseCount)
	if len(m.motif) > 0 && transform != TransformOriginal {
		degrees = m.applyTransform(transform)
	} else {
		degrees = make([]int, steps)
		for i := range degrees {
			m.currentDegree += m.nextStep()
			degrees[i] = m.currentDegree
		}
		m.motif = append([]int(nil), degrees...)
	}
	m.phraseCount++

	scale := ctx.Scale()
	var events []Event
	for i, deg := range degrees {
		if int64(i) >= steps {
			break
		}
		pitch := scale.TransposeDegrees(60, deg)
		vel := m.velocityBase + (m.rng.Float64()*2-1)*m.velocityJitter
		events = append(events, Event{
			Pitch:         clampByte(pitch),
			Velocity:      clampByte(int(vel)),
			StartTick:     int64(i) * stepTicks,
			DurationTicks: int64(float64(stepTicks) * 0.9),
		})
	}
	return events
}
