package arrangement

import (
	"seq/generators"
	"seq/sequencer"
)

// SceneLaunchMode is the quantization a Scene's launch waits for, per
// original_source/src/arrangement/scene.rs's SceneLaunchMode.
type SceneLaunchMode int

const (
	LaunchImmediate SceneLaunchMode = iota
	LaunchBeat
	LaunchBar
	LaunchBeats
	LaunchBars
)

// SceneSlot is one track-index entry of a Scene: spec.md §3's
// SceneSlot ∈ {Empty, Clip(id), Generator(name), Stop, Hold}.
type SceneSlot struct {
	State TrackClipState
	Ref   string
}

// Scene is spec.md §3/§4.7's Scene: a vector of SceneSlots plus a
// launch-mode and a follow-action triple.
type Scene struct {
	Name           string
	Slots          map[int]SceneSlot
	LaunchMode     SceneLaunchMode
	LaunchModeN    int
	FollowAction   sequencer.FollowAction
	FollowAfterBars int // 0 = loop indefinitely
	Tempo          float64 // 0 = keep current
}

// NewScene returns an empty Scene defaulting to bar-quantized launch.
func NewScene(name string) *Scene {
	return &Scene{Name: name, Slots: make(map[int]SceneSlot), LaunchMode: LaunchBar}
}

// Slot returns trackIndex's slot, defaulting to Empty.
func (s *Scene) Slot(trackIndex int) SceneSlot {
	if slot, ok := s.Slots[trackIndex]; ok {
		return slot
	}
	return SceneSlot{State: Empty}
}

// SetSlot assigns trackIndex's slot within this scene.
func (s *Scene) SetSlot(trackIndex int, slot SceneSlot) {
	s.Slots[trackIndex] = slot
}

func (m SceneLaunchMode) toQuantize(n int) sequencer.Quantize {
	switch m {
	case LaunchImmediate:
		return sequencer.Quantize{Kind: sequencer.Immediate}
	case LaunchBeat:
		return sequencer.Quantize{Kind: sequencer.Beat}
	case LaunchBar:
		return sequencer.Quantize{Kind: sequencer.Bar}
	case LaunchBeats:
		return sequencer.Quantize{Kind: sequencer.Beats, N: n}
	case LaunchBars:
		return sequencer.Quantize{Kind: sequencer.Bars, N: n}
	}
	return sequencer.Quantize{Kind: sequencer.Bar}
}

// Launch is equivalent to launching each non-Hold slot as a clip trigger,
// quantized to the scene's launch mode, per spec.md §4.7: "Scene launch
// is equivalent to launching each non-Hold slot as a clip trigger,
// quantized to the scene's launch mode." GeneratorRef slots swap in a
// fresh generator immediately rather than through the quantized trigger
// queue, matching Part.Apply's GeneratorRef handling — a live-generator
// swap has no queued clip to quantize against. If the scene names a
// tempo, the caller is responsible for posting a
// control.Command{Kind: SetTempo} alongside the launch — this package
// has no handle on timing.Clock, only on the TrackManager's clip-launch
// surface.
func (s *Scene) Launch(mgr *sequencer.TrackManager, registry *generators.Registry) {
	quant := s.LaunchMode.toQuantize(s.LaunchModeN)
	for idx, slot := range s.Slots {
		switch slot.State {
		case Stop:
			mgr.Stop(idx)
		case ClipRef:
			mgr.Launch(idx, slot.Ref, quant)
		case GeneratorRef:
			mgr.SwapGenerator(idx, slot.Ref, registry)
		case Hold, Empty:
			// no-op.
		}
	}
}
