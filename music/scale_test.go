package music

import "testing"

func TestQuantizeAlreadyInScale(t *testing.T) {
	c := NewScale(0, Major)
	if got := c.Quantize(60); got != 60 {
		t.Errorf("Quantize(60) = %d, want 60", got)
	}
}

func TestQuantizeTieBreaksLow(t *testing.T) {
	// C major, pitch 66 (F#) sits equidistant between F(65) and G(67).
	c := NewScale(0, Major)
	if got := c.Quantize(66); got != 65 {
		t.Errorf("Quantize(66) = %d, want 65 (tie breaks low)", got)
	}
}

func TestTransposeDegreesCMajor(t *testing.T) {
	c := NewScale(0, Major)
	// Middle C (60) up 3 scale degrees = F4 (65).
	if got := c.TransposeDegrees(60, 3); got != 65 {
		t.Errorf("TransposeDegrees(60, 3) = %d, want 65", got)
	}
}

func TestTransposeDegreesDMinor(t *testing.T) {
	d := NewScale(2, NaturalMinor)
	// spec.md §8 Example 2: pitch 60 anchors at the interval table's own
	// index 0 (degree 0), not its root-relative 7th-degree position;
	// +3 degrees lands on G4 (67).
	if got := d.TransposeDegrees(60, 3); got != 67 {
		t.Errorf("TransposeDegrees(60, 3) in D minor = %d, want 67", got)
	}
}

func TestDegreeOfRootRelative(t *testing.T) {
	d := NewScale(2, NaturalMinor)
	// 60 (C) is root-relative degree 6 (the scale's own 7th/leading-tone
	// position below the D an octave up), distinct from TransposeDegrees'
	// literal-pitch-class anchoring.
	degree, octave := d.DegreeOf(60)
	if degree != 6 || octave != 4 {
		t.Errorf("DegreeOf(60) in D minor = (%d, %d), want (6, 4)", degree, octave)
	}
}

func TestContainsMidi(t *testing.T) {
	c := NewScale(0, Major)
	for _, p := range []int{60, 62, 64, 65, 67, 69, 71} {
		if !c.Contains(p) {
			t.Errorf("C major should contain %d", p)
		}
	}
	for _, p := range []int{61, 63, 66, 68, 70} {
		if c.Contains(p) {
			t.Errorf("C major should not contain %d", p)
		}
	}
}

func TestMidiNoteAtDegree(t *testing.T) {
	c := NewScale(0, Major)
	note, ok := c.MidiNoteAt(1, 4)
	if !ok || note != 60 {
		t.Errorf("MidiNoteAt(1, 4) = %d, %v, want 60, true", note, ok)
	}
	note, ok = c.MidiNoteAt(5, 4)
	if !ok || note != 67 {
		t.Errorf("MidiNoteAt(5, 4) = %d, %v, want 67, true", note, ok)
	}
}

func TestKeyRelative(t *testing.T) {
	c := NewKey(0, Major)
	rel := c.Relative()
	if rel.Scale.Root != 9 || rel.Scale.Type != NaturalMinor {
		t.Errorf("C major relative = root %d type %v, want root 9 (A) NaturalMinor", rel.Scale.Root, rel.Scale.Type)
	}
}

func TestKeyDominant(t *testing.T) {
	c := NewKey(0, Major)
	dom := c.Dominant()
	if dom.Scale.Root != 7 {
		t.Errorf("C major dominant root = %d, want 7 (G)", dom.Scale.Root)
	}
}

func TestRegistryCustomScale(t *testing.T) {
	r := NewRegistry()
	r.RegisterCustom("hirajoshi", []int{0, 2, 3, 7, 8})
	s, err := r.Scale(0, "hirajoshi")
	if err != nil {
		t.Fatalf("Scale(hirajoshi) error: %v", err)
	}
	if s.Len() != 5 {
		t.Errorf("hirajoshi scale length = %d, want 5", s.Len())
	}
	if _, err := r.Scale(0, "nonexistent"); err == nil {
		t.Error("expected error for unknown scale name")
	}
}

func TestParseScaleType(t *testing.T) {
	st, err := ParseScaleType("dorian")
	if err != nil || st != Dorian {
		t.Errorf("ParseScaleType(dorian) = %v, %v, want Dorian, nil", st, err)
	}
	if _, err := ParseScaleType("bogus"); err == nil {
		t.Error("expected error for unknown scale type name")
	}
}
