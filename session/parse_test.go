package session

import (
	"testing"

	"seq/arrangement"
	"seq/config"
	"seq/sequencer"
)

func TestParseBoundaryNExtractsCount(t *testing.T) {
	if got := parseBoundaryN("beats(3)"); got != 3 {
		t.Errorf("parseBoundaryN(\"beats(3)\") = %d, want 3", got)
	}
	if got := parseBoundaryN("bars()"); got != 1 {
		t.Errorf("parseBoundaryN on an empty parameter should fall back to 1, got %d", got)
	}
	if got := parseBoundaryN("next_bar"); got != 1 {
		t.Errorf("parseBoundaryN on a string with no parens should fall back to 1, got %d", got)
	}
}

func TestParseTransitionVariants(t *testing.T) {
	cases := map[string]arrangement.PartTransition{
		"":              arrangement.NextBar,
		"immediate":     arrangement.Immediate,
		"next_beat":     arrangement.NextBeat,
		"end_of_phrase": arrangement.EndOfPhrase,
		"beats(2)":      arrangement.Beats,
		"bars(4)":       arrangement.Bars,
		"crossfade(48)": arrangement.Crossfade,
	}
	for in, want := range cases {
		got, _ := parseTransition(in)
		if got != want {
			t.Errorf("parseTransition(%q) = %v, want %v", in, got, want)
		}
	}
	if _, n := parseTransition("bars(4)"); n != 4 {
		t.Errorf("parseTransition(\"bars(4)\") n = %d, want 4", n)
	}
	if _, n := parseTransition("crossfade(48)"); n != 48 {
		t.Errorf("parseTransition(\"crossfade(48)\") n = %d, want 48", n)
	}
}

func TestParseLaunchModeVariants(t *testing.T) {
	if got, _ := parseLaunchMode("immediate"); got != arrangement.LaunchImmediate {
		t.Errorf("parseLaunchMode(\"immediate\") = %v, want LaunchImmediate", got)
	}
	if got, n := parseLaunchMode("beats(2)"); got != arrangement.LaunchBeats || n != 2 {
		t.Errorf("parseLaunchMode(\"beats(2)\") = %v, %d, want LaunchBeats, 2", got, n)
	}
}

func TestParseMacroKindVariants(t *testing.T) {
	cases := map[string]arrangement.MacroKind{
		"tempo":               arrangement.MacroSetTempo,
		"adjust_tempo":        arrangement.MacroAdjustTempo,
		"parameter":           arrangement.MacroSetParameter,
		"mute":                arrangement.MacroMuteTrack,
		"unmute":              arrangement.MacroUnmuteTrack,
		"solo":                arrangement.MacroSoloTrack,
		"unsolo":              arrangement.MacroUnsoloTrack,
		"send_cc":             arrangement.MacroSendCC,
		"send_program_change": arrangement.MacroSendProgramChange,
	}
	for in, want := range cases {
		if got := parseMacroKind(in); got != want {
			t.Errorf("parseMacroKind(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestParseTrackClipStateVariants(t *testing.T) {
	cases := map[string]arrangement.TrackClipState{
		"clip":      arrangement.ClipRef,
		"generator": arrangement.GeneratorRef,
		"stop":      arrangement.Stop,
		"hold":      arrangement.Hold,
		"":          arrangement.Empty,
	}
	for in, want := range cases {
		if got := parseTrackClipState(in); got != want {
			t.Errorf("parseTrackClipState(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestParseFollowActionEitherDefaultsWeightToHalf(t *testing.T) {
	fa := parseFollowAction(config.FollowActionConfig{Kind: "either"})
	if fa.Kind != sequencer.FollowEither {
		t.Fatalf("Kind = %v, want FollowEither", fa.Kind)
	}
	if fa.WeightA != 0.5 {
		t.Errorf("WeightA = %v, want 0.5 default", fa.WeightA)
	}
}

func TestParseLoopModeVariants(t *testing.T) {
	cases := map[string]sequencer.LoopKind{
		"count":    sequencer.LoopCount,
		"pingpong": sequencer.PingPong,
		"oneshot":  sequencer.OneShot,
		"":         sequencer.LoopForever,
	}
	for in, want := range cases {
		if got := parseLoopMode(in); got != want {
			t.Errorf("parseLoopMode(%q) = %v, want %v", in, got, want)
		}
	}
}
