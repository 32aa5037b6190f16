package session

import (
	"seq/config"
	"seq/generators"
	"seq/sequencer"
)

// implicitClipBars is how many bars an auto-launched, clip-less track's
// top-level generator plays before its loop wraps, per spec.md §4.5's
// Clip wrapping a generator — a track-level generator with no explicit
// clips still needs one to own loop bookkeeping.
const implicitClipBars = 4

func buildTrack(mgr *sequencer.TrackManager, genReg *generators.Registry, tc config.TrackConfig, beatsPerBar int) error {
	track := mgr.AddTrack(tc.Name, uint8(tc.Channel+1))
	track.Transpose = tc.Transpose
	if tc.VelocityScale != nil {
		track.VelocityScale = *tc.VelocityScale
	}
	track.Swing = tc.Swing
	if tc.NoteRangeLow != 0 || tc.NoteRangeHigh != 0 {
		track.NoteRangeLow = uint8(tc.NoteRangeLow)
		track.NoteRangeHigh = uint8(tc.NoteRangeHigh)
	}

	for _, cc := range tc.Clips {
		clip, err := buildClip(genReg, cc)
		if err != nil {
			return err
		}
		track.AddClip(clip)
	}

	if len(tc.Clips) == 0 && tc.Generator != nil {
		gen, err := buildGenerator(genReg, tc.Generator)
		if err != nil {
			return err
		}
		length := int64(implicitClipBars * beatsPerBar * 24)
		clip := sequencer.NewClip(track.Name+"-auto", gen, length)
		clip.Queue()
		clip.Activate()
		track.AddClip(clip)
	}
	return nil
}

func buildClip(genReg *generators.Registry, cc config.ClipConfig) (*sequencer.Clip, error) {
	gen, err := buildClipGenerator(genReg, cc)
	if err != nil {
		return nil, err
	}
	clip := sequencer.NewClip(cc.ID, gen, cc.LengthTicks)
	if cc.LoopEnd > 0 {
		clip.LoopStart = cc.LoopStart
		clip.LoopEnd = cc.LoopEnd
	}
	clip.LoopMode = parseLoopMode(cc.LoopMode)
	clip.LoopN = cc.LoopCount
	clip.FollowAction = parseFollowAction(cc.FollowAction)
	return clip, nil
}

// buildClipGenerator implements spec.md §3's three Clip content kinds:
// Sequenced (notes only), Generated (generator only), and Hybrid (both,
// merged via generators.Composite).
func buildClipGenerator(genReg *generators.Registry, cc config.ClipConfig) (generators.Generator, error) {
	var notesGen generators.Generator
	if len(cc.Notes) > 0 {
		notesGen = generators.NewNotesGenerator(convertNotes(cc.Notes), cc.LengthTicks)
	}
	var liveGen generators.Generator
	if cc.Generator != nil {
		g, err := buildGenerator(genReg, cc.Generator)
		if err != nil {
			return nil, err
		}
		liveGen = g
	}
	switch {
	case notesGen != nil && liveGen != nil:
		return generators.NewComposite("hybrid:"+cc.ID, notesGen, liveGen), nil
	case liveGen != nil:
		return liveGen, nil
	case notesGen != nil:
		return notesGen, nil
	}
	return nil, nil
}

func buildGenerator(genReg *generators.Registry, gc *config.GeneratorConfig) (generators.Generator, error) {
	g, err := genReg.Create(gc.Type)
	if err != nil {
		return nil, err
	}
	for name, value := range gc.Params {
		g.SetParam(name, value)
	}
	return g, nil
}

func convertNotes(notes []config.NoteConfig) []generators.Event {
	out := make([]generators.Event, len(notes))
	for i, n := range notes {
		out[i] = generators.Event{
			Pitch:         uint8(n.Pitch),
			Velocity:      uint8(n.Velocity),
			StartTick:     n.Tick,
			DurationTicks: n.Duration,
		}
	}
	return out
}
