package midi

// Kind tags the variant carried by an Event.
type Kind int

const (
	NoteOn Kind = iota
	NoteOff
	CC
	ProgramChange
	PitchBend
)

// Status bytes for the wire encoding in Bytes().
const (
	StatusNoteOff       byte = 0x80
	StatusNoteOn        byte = 0x90
	StatusCC            byte = 0xB0
	StatusProgramChange byte = 0xC0
	StatusPitchBend     byte = 0xE0
	CCAllNotesOff       byte = 123
	CCAllSoundOff       byte = 120
)

// Event is an in-flight note description stamped in musical ticks, per
// spec.md §3. Events with DurationTicks > 0 are materialized by the
// scheduler as a NoteOn at Tick and a matching NoteOff at Tick+DurationTicks
// — generalizing the teacher's flat {Type, Channel, Note, Velocity} Event
// (which had no timing field of its own and relied on callers tracking
// ticks separately) into the self-contained shape spec.md's scheduler and
// generators expect.
type Event struct {
	Tick          int64
	Channel       uint8 // 0-15
	Kind          Kind
	Pitch         uint8 // NoteOn/NoteOff
	Velocity      uint8 // NoteOn
	Controller    uint8 // CC
	Value         uint8 // CC value, ProgramChange program, or PitchBend MSB
	DurationTicks int64 // >0 for NoteOn events the scheduler pairs with a NoteOff
	TrackIndex    int
}

// NewNoteOn builds a NoteOn event with an implicit matching NoteOff after
// durationTicks.
func NewNoteOn(tick int64, channel, pitch, velocity uint8, durationTicks int64) Event {
	return Event{Tick: tick, Channel: channel, Kind: NoteOn, Pitch: pitch, Velocity: velocity, DurationTicks: durationTicks}
}

// NewNoteOff builds a bare NoteOff event.
func NewNoteOff(tick int64, channel, pitch uint8) Event {
	return Event{Tick: tick, Channel: channel, Kind: NoteOff, Pitch: pitch}
}

// NewCC builds a control-change event.
func NewCC(tick int64, channel, controller, value uint8) Event {
	return Event{Tick: tick, Channel: channel, Kind: CC, Controller: controller, Value: value}
}

// NewProgramChange builds a program-change event.
func NewProgramChange(tick int64, channel, program uint8) Event {
	return Event{Tick: tick, Channel: channel, Kind: ProgramChange, Value: program}
}

// Bytes renders the event's status+data bytes. Callers pair this with an
// absolute timestamp (via the scheduler, or MidiSink.SendAt directly).
func (e Event) Bytes() []byte {
	switch e.Kind {
	case NoteOn:
		return []byte{StatusNoteOn | (e.Channel & 0x0F), e.Pitch & 0x7F, e.Velocity & 0x7F}
	case NoteOff:
		return []byte{StatusNoteOff | (e.Channel & 0x0F), e.Pitch & 0x7F, 0}
	case CC:
		return []byte{StatusCC | (e.Channel & 0x0F), e.Controller & 0x7F, e.Value & 0x7F}
	case ProgramChange:
		return []byte{StatusProgramChange | (e.Channel & 0x0F), e.Value & 0x7F}
	case PitchBend:
		return []byte{StatusPitchBend | (e.Channel & 0x0F), e.Controller & 0x7F, e.Value & 0x7F}
	}
	return nil
}

// AllNotesOff builds the CC 123 "all notes off" housekeeping event for a
// channel, sent on transport Stop per spec.md §5.
func AllNotesOff(tick int64, channel uint8) Event {
	return NewCC(tick, channel, CCAllNotesOff, 0)
}

// ScheduledEvent pairs an Event with the insertion-order tiebreak the
// scheduler's priority queue orders by, per spec.md §3.
type ScheduledEvent struct {
	AbsoluteTick int64
	SequenceNo   uint64
	Event        Event
}

// Less implements the (absolute_tick, sequence_no) total order the
// scheduler's heap is keyed by.
func (a ScheduledEvent) Less(b ScheduledEvent) bool {
	if a.AbsoluteTick != b.AbsoluteTick {
		return a.AbsoluteTick < b.AbsoluteTick
	}
	return a.SequenceNo < b.SequenceNo
}
