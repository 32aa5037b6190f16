package session

import (
	"seq/arrangement"
	"seq/config"
	"seq/errs"
	"seq/midi"
)

func buildParts(cfgs []config.PartConfig, reg *arrangement.Registry) (*arrangement.PartManager, error) {
	pm := arrangement.NewPartManager()
	for _, pc := range cfgs {
		part := arrangement.NewPart(pc.Name)
		part.Transition, part.TransitionN = parseTransition(pc.Transition)
		for _, pt := range pc.Tracks {
			idx, ok := reg.TrackIndex(pt.Track)
			if !ok {
				return nil, errs.Configf("part %q references unknown track %q", pc.Name, pt.Track)
			}
			part.SetTrackState(idx, arrangement.TrackState{
				State: parseTrackClipState(pt.State),
				Ref:   pt.Ref,
			})
		}
		for _, mc := range pc.Macros {
			part.Macros = append(part.Macros, buildMacro(mc, reg))
		}
		pm.AddPart(part)
	}
	return pm, nil
}

func buildScenes(cfgs []config.SceneConfig, reg *arrangement.Registry) (map[string]*arrangement.Scene, error) {
	scenes := make(map[string]*arrangement.Scene, len(cfgs))
	for _, sc := range cfgs {
		scene := arrangement.NewScene(sc.Name)
		scene.LaunchMode, scene.LaunchModeN = parseLaunchMode(sc.LaunchMode)
		scene.FollowAction = parseFollowAction(config.FollowActionConfig{Kind: sc.FollowAction})
		scene.FollowAfterBars = sc.AfterBars
		for _, slot := range sc.Slots {
			idx, ok := reg.TrackIndex(slot.Track)
			if !ok {
				return nil, errs.Configf("scene %q references unknown track %q", sc.Name, slot.Track)
			}
			scene.SetSlot(idx, arrangement.SceneSlot{
				State: parseTrackClipState(slot.State),
				Ref:   slot.Ref,
			})
		}
		scenes[sc.Name] = scene
	}
	return scenes, nil
}

func buildSong(sc *config.SongConfig) *arrangement.SongPlayer {
	if sc == nil {
		return nil
	}
	sections := make([]arrangement.SongSection, len(sc.Sections))
	for i, s := range sc.Sections {
		sceneIndex := s.SceneIndex
		if sceneIndex == 0 && s.PartName == "" {
			sceneIndex = -1
		}
		sections[i] = arrangement.SongSection{
			PartName:   s.PartName,
			LengthBars: s.LengthBars,
			Tempo:      s.Tempo,
			TimeSigNum: s.TimeSigNum,
			TimeSigDen: s.TimeSigDen,
			SceneIndex: sceneIndex,
			LoopPoint:  s.LoopPoint,
		}
	}
	song := arrangement.NewSongPlayer(sections)
	if sc.Loop != nil {
		song.SetLoop(arrangement.LoopRegion{
			StartSection: sc.Loop.StartSection,
			EndSection:   sc.Loop.EndSection,
			Repeats:      sc.Loop.Repeats,
		})
	}
	return song
}

func buildMacro(mc config.MacroActionConfig, reg *arrangement.Registry) arrangement.MacroAction {
	ma := arrangement.MacroAction{
		Kind:  parseMacroKind(mc.Kind),
		Tempo: mc.Tempo,
		Param: mc.Param,
		Value: mc.Value,
	}
	if mc.Track != "" {
		if idx, ok := reg.TrackIndex(mc.Track); ok {
			ma.TrackIndex = idx
		}
	}
	if len(mc.SendBytes) >= 3 && ma.Kind == arrangement.MacroSendCC {
		ma.Channel = uint8(mc.SendBytes[0])
		ma.Controller = uint8(mc.SendBytes[1])
		ma.CCValue = uint8(mc.SendBytes[2])
	}
	if len(mc.SendBytes) >= 2 && ma.Kind == arrangement.MacroSendProgramChange {
		ma.Channel = uint8(mc.SendBytes[0])
		ma.Program = uint8(mc.SendBytes[1])
	}
	return ma
}

// applyPart runs part's track states against the track manager, then
// executes its macros — the two-step split part.go's Apply doc comment
// calls out, since MacroAction execution needs Session's clock and sink,
// which arrangement.Part has no handle on.
func (s *Session) applyPart(part *arrangement.Part) {
	part.Apply(s.Tracks, s.Generators)
	for _, ma := range part.Macros {
		s.applyMacro(ma)
	}
}

func (s *Session) applyMacro(ma arrangement.MacroAction) {
	switch ma.Kind {
	case arrangement.MacroSetTempo:
		s.Clock.SetTempo(ma.Tempo)
	case arrangement.MacroAdjustTempo:
		s.Clock.SetTempo(s.Clock.CurrentTempo() + ma.Tempo)
	case arrangement.MacroSetParameter:
		s.Tracks.SetGeneratorParam(ma.TrackIndex, ma.Param, ma.Value)
	case arrangement.MacroMuteTrack:
		s.Tracks.SetMute(ma.TrackIndex, true)
	case arrangement.MacroUnmuteTrack:
		s.Tracks.SetMute(ma.TrackIndex, false)
	case arrangement.MacroSoloTrack:
		s.Tracks.SetSolo(ma.TrackIndex, true)
	case arrangement.MacroUnsoloTrack:
		s.Tracks.SetSolo(ma.TrackIndex, false)
	case arrangement.MacroSendCC:
		_ = s.Sink.Send(midi.NewCC(0, ma.Channel, ma.Controller, ma.CCValue).Bytes())
	case arrangement.MacroSendProgramChange:
		_ = s.Sink.Send(midi.NewProgramChange(0, ma.Channel, ma.Program).Bytes())
	}
}

// onSongSectionEnter is the SongPlayer.Advance callback: it applies the
// section's tempo override (ApplyEntry does not apply a time signature),
// triggers its part, and launches its scene.
func (s *Session) onSongSectionEnter(sec *arrangement.SongSection, index int) {
	if sec == nil {
		return
	}
	arrangement.ApplyEntry(s.Clock, sec)
	if sec.PartName != "" {
		s.Parts.TriggerPart(sec.PartName, s.Clock.NowTick())
	}
	if sec.SceneIndex >= 0 {
		names := s.sceneNamesInConfigOrder()
		if sec.SceneIndex < len(names) {
			if scene, ok := s.Scenes[names[sec.SceneIndex]]; ok {
				scene.Launch(s.Tracks, s.Generators)
			}
		}
	}
}

// sceneNamesInConfigOrder returns scene names in the order they appeared
// in the song document, since SongSection.SceneIndex indexes that list
// (the map s.Scenes is built from has no inherent order of its own).
func (s *Session) sceneNamesInConfigOrder() []string {
	if s.Config.Scenes == nil {
		return nil
	}
	names := make([]string, len(s.Config.Scenes))
	for i, sc := range s.Config.Scenes {
		names[i] = sc.Name
	}
	return names
}
