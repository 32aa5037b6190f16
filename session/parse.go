package session

import (
	"strconv"
	"strings"

	"seq/arrangement"
	"seq/config"
	"seq/sequencer"
)

// parseBoundaryN extracts the integer inside a "kind(n)" config string
// such as "beats(3)"; returns 1 if absent or unparseable.
func parseBoundaryN(s string) int {
	open := strings.IndexByte(s, '(')
	shut := strings.IndexByte(s, ')')
	if open < 0 || shut < 0 || shut <= open+1 {
		return 1
	}
	n, err := strconv.Atoi(s[open+1 : shut])
	if err != nil || n <= 0 {
		return 1
	}
	return n
}

func parseLoopMode(s string) sequencer.LoopKind {
	switch s {
	case "count":
		return sequencer.LoopCount
	case "pingpong":
		return sequencer.PingPong
	case "oneshot":
		return sequencer.OneShot
	default:
		return sequencer.LoopForever
	}
}

func parseFollowAction(fc config.FollowActionConfig) sequencer.FollowAction {
	fa := sequencer.FollowAction{Target: fc.Target, TargetB: fc.TargetB, WeightA: fc.Weight}
	switch fc.Kind {
	case "next":
		fa.Kind = sequencer.FollowNext
	case "previous":
		fa.Kind = sequencer.FollowPrevious
	case "first":
		fa.Kind = sequencer.FollowFirst
	case "last":
		fa.Kind = sequencer.FollowLast
	case "random":
		fa.Kind = sequencer.FollowRandom
	case "specific":
		fa.Kind = sequencer.FollowSpecific
	case "either":
		fa.Kind = sequencer.FollowEither
		if fa.WeightA == 0 {
			fa.WeightA = 0.5
		}
	case "again":
		fa.Kind = sequencer.FollowAgain
	default:
		fa.Kind = sequencer.FollowNone
	}
	return fa
}

func parseTrackClipState(s string) arrangement.TrackClipState {
	switch s {
	case "clip":
		return arrangement.ClipRef
	case "generator":
		return arrangement.GeneratorRef
	case "stop":
		return arrangement.Stop
	case "hold":
		return arrangement.Hold
	default:
		return arrangement.Empty
	}
}

func parseTransition(s string) (arrangement.PartTransition, int) {
	switch {
	case s == "" || s == "next_bar":
		return arrangement.NextBar, 0
	case s == "immediate":
		return arrangement.Immediate, 0
	case s == "next_beat":
		return arrangement.NextBeat, 0
	case s == "end_of_phrase":
		return arrangement.EndOfPhrase, 0
	case strings.HasPrefix(s, "beats("):
		return arrangement.Beats, parseBoundaryN(s)
	case strings.HasPrefix(s, "bars("):
		return arrangement.Bars, parseBoundaryN(s)
	case strings.HasPrefix(s, "crossfade("):
		return arrangement.Crossfade, parseBoundaryN(s)
	default:
		return arrangement.NextBar, 0
	}
}

func parseLaunchMode(s string) (arrangement.SceneLaunchMode, int) {
	switch {
	case s == "" || s == "bar":
		return arrangement.LaunchBar, 0
	case s == "immediate":
		return arrangement.LaunchImmediate, 0
	case s == "beat":
		return arrangement.LaunchBeat, 0
	case strings.HasPrefix(s, "beats("):
		return arrangement.LaunchBeats, parseBoundaryN(s)
	case strings.HasPrefix(s, "bars("):
		return arrangement.LaunchBars, parseBoundaryN(s)
	default:
		return arrangement.LaunchBar, 0
	}
}

func parseMacroKind(s string) arrangement.MacroKind {
	switch s {
	case "tempo":
		return arrangement.MacroSetTempo
	case "adjust_tempo":
		return arrangement.MacroAdjustTempo
	case "parameter":
		return arrangement.MacroSetParameter
	case "mute":
		return arrangement.MacroMuteTrack
	case "unmute":
		return arrangement.MacroUnmuteTrack
	case "solo":
		return arrangement.MacroSoloTrack
	case "unsolo":
		return arrangement.MacroUnsoloTrack
	case "send_cc":
		return arrangement.MacroSendCC
	case "send_program_change":
		return arrangement.MacroSendProgramChange
	default:
		return arrangement.MacroSetTempo
	}
}
