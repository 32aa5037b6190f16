package generators

import "sort"

// NotesGenerator replays a fixed, pre-authored note list on loop, giving
// Clip.type == Sequenced content a Generator to sit behind the same
// interface every live engine implements. Grounded on the reference
// implementation's sequencer/clip.rs ClipNote list (Clip::add_note,
// sorted by start_tick) — the list itself lives here rather than on
// sequencer.Clip so a Hybrid clip can hold one NotesGenerator and one
// live engine side by side via Composite.
type NotesGenerator struct {
	notes  []Event
	length int64 // loop length in ticks; 0 = derive from the last note's end
}

// NewNotesGenerator returns a NotesGenerator over notes (copied and
// sorted by StartTick), looping every length ticks.
func NewNotesGenerator(notes []Event, length int64) *NotesGenerator {
	cp := make([]Event, len(notes))
	copy(cp, notes)
	sort.Slice(cp, func(i, j int) bool { return cp[i].StartTick < cp[j].StartTick })
	if length <= 0 {
		for _, n := range cp {
			if end := n.StartTick + n.DurationTicks; end > length {
				length = end
			}
		}
		if length <= 0 {
			length = 96
		}
	}
	return &NotesGenerator{notes: cp, length: length}
}

// Generate returns every note whose StartTick falls within
// [ctx.Tick, ctx.Tick+ctx.TicksToGenerate) modulo the loop length,
// restamped relative to the window start.
func (n *NotesGenerator) Generate(ctx Context) []Event {
	if n.length <= 0 || ctx.TicksToGenerate <= 0 {
		return nil
	}
	var out []Event
	winStart := ctx.Tick % n.length
	winEnd := winStart + ctx.TicksToGenerate
	for _, note := range n.notes {
		t := note.StartTick
		if t >= winStart && t < winEnd {
			ev := note
			ev.StartTick = t - winStart
			out = append(out, ev)
		} else if winEnd > n.length && t < winEnd-n.length {
			ev := note
			ev.StartTick = t + (n.length - winStart)
			out = append(out, ev)
		}
	}
	return out
}

// SetParam/GetParam are no-ops: a static note list has nothing a live
// parameter maps onto.
func (n *NotesGenerator) SetParam(name string, value float64) {}
func (n *NotesGenerator) GetParam(name string) (float64, bool)  { return 0, false }
func (n *NotesGenerator) Reset()                                {}
func (n *NotesGenerator) Name() string                          { return "notes" }
func (n *NotesGenerator) Params() map[string]float64             { return map[string]float64{} }

// Composite merges the output of several Generators into one, giving
// Clip.type == Hybrid content (a static note list plus a live engine) a
// single Generator to hand the clip, per the reference implementation's
// Clip::hybrid (a note list and a generator coexisting on one clip).
// SetParam/GetParam target the first sub-generator that recognizes the
// parameter name; Reset resets all of them.
type Composite struct {
	name string
	subs []Generator
}

// NewComposite returns a Composite over subs, named name for diagnostics.
func NewComposite(name string, subs ...Generator) *Composite {
	return &Composite{name: name, subs: subs}
}

func (c *Composite) Generate(ctx Context) []Event {
	var out []Event
	for _, g := range c.subs {
		out = append(out, g.Generate(ctx)...)
	}
	return out
}

func (c *Composite) SetParam(name string, value float64) {
	for _, g := range c.subs {
		if _, ok := g.GetParam(name); ok {
			g.SetParam(name, value)
			return
		}
	}
}

func (c *Composite) GetParam(name string) (float64, bool) {
	for _, g := range c.subs {
		if v, ok := g.GetParam(name); ok {
			return v, true
		}
	}
	return 0, false
}

func (c *Composite) Reset() {
	for _, g := range c.subs {
		g.Reset()
	}
}

func (c *Composite) Name() string { return c.name }

func (c *Composite) Params() map[string]float64 {
	out := map[string]float64{}
	for _, g := range c.subs {
		for k, v := range g.Params() {
			out[k] = v
		}
	}
	return out
}
