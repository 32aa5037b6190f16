// Package control implements the command bus spec.md §5 names: "All
// other threads enqueue through a bounded wait-free MPSC channel that the
// dispatcher drains at the top of each dispatch cycle. Mutations to
// tracks/parts/song are posted as commands on the same channel." In this
// implementation the role spec.md calls "the dispatcher" for track/part/
// song mutation is played by sequencer.TrackManager's fill loop (the
// Generator thread in spec.md §5's table) — scheduler.Dispatcher itself
// only ever touches the scheduler queue and the MIDI sink, never track
// state, so it has nothing to apply a Command to. TrackManager.fill
// drains the Bus first, then ticks tracks, matching "applies them between
// draining events and emitting MIDI."
package control

// Kind tags the variant a Command carries.
type Kind int

const (
	LaunchClip Kind = iota
	StopTrack
	StopTrackImmediate
	SetTempo
	SetKey
	ToggleMute
	ToggleSolo
	SendRaw
)

// Command is a single posted mutation. Only the fields relevant to Kind
// are populated; zero value for the rest.
type Command struct {
	Kind       Kind
	TrackIndex int
	ClipID     string
	QuantKind  int // sequencer.QuantizeKind, kept as int to avoid an import cycle
	QuantN     int
	Tempo      float64
	KeyRoot    int
	ScaleName  string
	RawBytes   []byte
}

// DefaultCapacity is the bus bound New uses for a non-positive capacity.
// It is independent of, and smaller than, the dispatch-thread queue's
// bound (scheduler.DefaultCapacity, 8192).
const DefaultCapacity = 256

// Bus is a bounded multi-producer single-consumer channel of Commands.
// Posting is non-blocking: a full bus drops the command and the caller
// can observe that via the bool return (spec.md §5 calls the channel
// "wait-free", which for a bounded Go channel means callers must not
// block on Post; blocking indefinitely would defeat the dispatch thread's
// no-block guarantee upstream of it).
type Bus struct {
	ch chan Command
}

// New returns a Bus with the given capacity (DefaultCapacity if <= 0).
func New(capacity int) *Bus {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Bus{ch: make(chan Command, capacity)}
}

// Post enqueues cmd without blocking. Returns false if the bus is full,
// in which case the caller (Control, Config-reload, or UI thread per
// spec.md §5's table) is responsible for deciding whether to retry or
// drop.
func (b *Bus) Post(cmd Command) bool {
	select {
	case b.ch <- cmd:
		return true
	default:
		return false
	}
}

// Drain removes and returns every currently-queued command, without
// blocking. Called at the top of the consumer's cycle.
func (b *Bus) Drain() []Command {
	var out []Command
	for {
		select {
		case cmd := <-b.ch:
			out = append(out, cmd)
		default:
			return out
		}
	}
}
