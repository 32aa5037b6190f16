package sequencer

import (
	"sync"

	"github.com/samber/lo"
)

// QuantizeKind selects the boundary a PendingTrigger waits for, per
// spec.md §4.6.
type QuantizeKind int

const (
	Immediate QuantizeKind = iota
	TickQuantize
	Beat
	Bar
	Beats // N beats, N carried in Quantize.N
	Bars  // N bars, N carried in Quantize.N
	Phrase
)

// Quantize pairs a QuantizeKind with the N parameter Beats/Bars need.
type Quantize struct {
	Kind QuantizeKind
	N    int
}

// PhraseLengthBars is the default phrase length used to compute Phrase
// boundaries, per spec.md §4.6.
const PhraseLengthBars = 4

const ticksPerBeat = 24
const ticksPerBar = 96

// Boundary returns the next tick at or after enqueuedAt that satisfies q,
// per spec.md §4.6's worked examples ("if enqueued exactly on a boundary,
// fire on that boundary, do not skip").
func (q Quantize) Boundary(enqueuedAt int64) int64 {
	switch q.Kind {
	case Immediate:
		return enqueuedAt
	case TickQuantize:
		return enqueuedAt
	case Beat:
		return ceilMultiple(enqueuedAt, ticksPerBeat)
	case Bar:
		return ceilMultiple(enqueuedAt, ticksPerBar)
	case Beats:
		n := q.N
		if n <= 0 {
			n = 1
		}
		return ceilMultiple(enqueuedAt, int64(n)*ticksPerBeat)
	case Bars:
		n := q.N
		if n <= 0 {
			n = 1
		}
		return ceilMultiple(enqueuedAt, int64(n)*ticksPerBar)
	case Phrase:
		return ceilMultiple(enqueuedAt, PhraseLengthBars*ticksPerBar)
	}
	return enqueuedAt
}

func ceilMultiple(t, m int64) int64 {
	if m <= 0 {
		return t
	}
	if t%m == 0 {
		return t
	}
	return (t/m + 1) * m
}

// FollowActionKind names the successor rule fired when a clip ends
// naturally, per spec.md §4.6.
type FollowActionKind int

const (
	FollowNone FollowActionKind = iota
	FollowNext
	FollowPrevious
	FollowFirst
	FollowLast
	FollowRandom
	FollowSpecific
	FollowEither
	FollowAgain
)

// FollowAction names the successor clip (or a weighted choice between
// two) to enqueue when a clip stops naturally.
type FollowAction struct {
	Kind     FollowActionKind
	Target   string // for Specific
	TargetB  string // for Either
	WeightA  float64 // for Either: probability of Target over TargetB
}

// PendingTrigger is a queued clip/scene launch awaiting its quantize
// boundary, per spec.md §4.6.
type PendingTrigger struct {
	ClipID       string
	TrackIndex   int
	Quantize     Quantize
	EnqueuedAt   int64
	boundary     int64
}

// TriggerQueue holds PendingTriggers and fires them once their boundary
// is reached or passed. A later trigger for the same track cancels any
// earlier pending trigger for that track, per spec.md §4.6.
type TriggerQueue struct {
	mu      sync.Mutex
	pending []PendingTrigger
}

// NewTriggerQueue returns an empty TriggerQueue.
func NewTriggerQueue() *TriggerQueue { return &TriggerQueue{} }

// Enqueue adds trigger, canceling any prior pending trigger for the same
// track.
func (q *TriggerQueue) Enqueue(clipID string, trackIndex int, quant Quantize, enqueuedAt int64) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.pending = lo.Filter(q.pending, func(p PendingTrigger, _ int) bool {
		return p.TrackIndex != trackIndex
	})
	q.pending = append(q.pending, PendingTrigger{
		ClipID:     clipID,
		TrackIndex: trackIndex,
		Quantize:   quant,
		EnqueuedAt: enqueuedAt,
		boundary:   quant.Boundary(enqueuedAt),
	})
}

// Poll returns, and removes from the queue, every trigger whose boundary
// has been reached or passed by nowTick.
func (q *TriggerQueue) Poll(nowTick int64) []PendingTrigger {
	q.mu.Lock()
	defer q.mu.Unlock()

	due := lo.Filter(q.pending, func(p PendingTrigger, _ int) bool {
		return p.boundary <= nowTick
	})
	q.pending = lo.Filter(q.pending, func(p PendingTrigger, _ int) bool {
		return p.boundary > nowTick
	})
	return due
}

// Pending returns a snapshot of currently-queued triggers, for UI status.
func (q *TriggerQueue) Pending() []PendingTrigger {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]PendingTrigger, len(q.pending))
	copy(out, q.pending)
	return out
}
