package music

// Key pairs a tonic pitch class with a Scale, and exposes the classic
// relative/parallel/dominant/subdominant derivations a Part macro action can
// use to modulate.
type Key struct {
	Scale Scale
}

// pitchClassNames is the canonical sharps-spelled name for each of the 12
// pitch classes, root 0 = C.
var pitchClassNames = []string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// ParsePitchClass resolves a note name ("C", "F#", ...) to its pitch
// class 0..11, case-sensitive on the sharp to keep the table small (no
// flat spellings); ok is false for anything else.
func ParsePitchClass(name string) (int, bool) {
	for i, n := range pitchClassNames {
		if n == name {
			return i, true
		}
	}
	return 0, false
}

// NewKey builds a Key from a tonic pitch class and scale type.
func NewKey(root int, st ScaleType) Key {
	return Key{Scale: NewScale(root, st)}
}

// Relative returns the relative major/minor: tonic shifts by ±3 semitones
// and the mode flips (major <-> natural minor).
func (k Key) Relative() Key {
	switch k.Scale.Type {
	case Major:
		return NewKey(((k.Scale.Root-3)%12+12)%12, NaturalMinor)
	case NaturalMinor:
		return NewKey((k.Scale.Root+3)%12, Major)
	default:
		return k
	}
}

// Parallel returns the parallel major/minor: same tonic, mode flips.
func (k Key) Parallel() Key {
	switch k.Scale.Type {
	case Major:
		return NewKey(k.Scale.Root, NaturalMinor)
	case NaturalMinor, HarmonicMinor, MelodicMinor:
		return NewKey(k.Scale.Root, Major)
	default:
		return k
	}
}

// Dominant returns the key built on the fifth scale degree, same mode.
func (k Key) Dominant() Key {
	return NewKey((k.Scale.Root+7)%12, k.Scale.Type)
}

// Subdominant returns the key built on the fourth scale degree, same mode.
func (k Key) Subdominant() Key {
	return NewKey((k.Scale.Root+5)%12, k.Scale.Type)
}
