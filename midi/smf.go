package midi

import (
	"fmt"
	"os"
	"sort"

	"gitlab.com/gomidi/midi/v2/smf"
)

// ExportSMF renders a set of per-track event lists to a Standard MIDI File,
// per spec.md §6's MIDI File Export. Chunk/track assembly is delegated to
// gitlab.com/gomidi/midi/v2/smf (the DOMAIN STACK's SMF library); only the
// tick bookkeeping (converting absolute ticks to the inter-event delta the
// library's smf.Track.Add expects) is ours.
func ExportSMF(path string, ppqn uint16, tracks [][]Event) error {
	if ppqn == 0 {
		ppqn = 24
	}
	s := smf.New()
	s.TimeFormat = smf.MetricTicks(ppqn)

	for _, evs := range tracks {
		track := buildTrack(evs)
		if err := s.Add(track); err != nil {
			return fmt.Errorf("add track: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	if _, err := s.WriteTo(f); err != nil {
		return fmt.Errorf("write smf: %w", err)
	}
	return nil
}

type stampedMsg struct {
	tick int64
	msg  smf.Message
}

// buildTrack converts absolute-tick events into an smf.Track of
// delta-timed messages, expanding DurationTicks>0 NoteOn events into a
// paired NoteOff.
func buildTrack(evs []Event) smf.Track {
	var flat []stampedMsg
	for _, e := range evs {
		flat = append(flat, stampedMsg{tick: e.Tick, msg: toSMFMessage(e)})
		if e.Kind == NoteOn && e.DurationTicks > 0 {
			off := NewNoteOff(e.Tick+e.DurationTicks, e.Channel, e.Pitch)
			flat = append(flat, stampedMsg{tick: off.Tick, msg: toSMFMessage(off)})
		}
	}
	sort.SliceStable(flat, func(i, j int) bool { return flat[i].tick < flat[j].tick })

	var track smf.Track
	var last int64
	for _, s := range flat {
		delta := s.tick - last
		if delta < 0 {
			delta = 0
		}
		track.Add(uint32(delta), s.msg)
		last = s.tick
	}
	track.Close(0)
	return track
}

func toSMFMessage(e Event) smf.Message {
	switch e.Kind {
	case NoteOn:
		return smf.Message([]byte{StatusNoteOn | (e.Channel & 0x0F), e.Pitch & 0x7F, e.Velocity & 0x7F})
	case NoteOff:
		return smf.Message([]byte{StatusNoteOff | (e.Channel & 0x0F), e.Pitch & 0x7F, 0})
	case CC:
		return smf.Message([]byte{StatusCC | (e.Channel & 0x0F), e.Controller & 0x7F, e.Value & 0x7F})
	case ProgramChange:
		return smf.Message([]byte{StatusProgramChange | (e.Channel & 0x0F), e.Value & 0x7F})
	case PitchBend:
		return smf.Message([]byte{StatusPitchBend | (e.Channel & 0x0F), e.Controller & 0x7F, e.Value & 0x7F})
	}
	return nil
}
