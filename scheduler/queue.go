// Package scheduler owns the priority queue of timestamped MIDI events and
// the dispatch loop that emits them through a midi.MidiSink at the right
// instant, per spec.md §4.3. Grounded structurally on the reference
// implementation's sequencer/scheduler.rs (custom Ord over
// (absolute_tick, sequence_no), a min-heap, a bounded ring of pending
// events) but deliberately diverging from its tempo-recalculation
// semantics: this scheduler never pre-computes a wall-clock deadline at
// insertion time. It asks timing.Clock.TickToMicros lazily, at dispatch
// time, so a tempo change recorded after an event is queued changes only
// when the event (still) yet to fire gets dispatched — never events
// already sent.
package scheduler

import (
	"container/heap"
	"fmt"
	"sync"

	"seq/errs"
	"seq/midi"
)

// DefaultCapacity is the minimum queue bound named by spec.md §5
// ("resource bounds... capped queue size >= 8192").
const DefaultCapacity = 8192

// pqueue implements container/heap.Interface over midi.ScheduledEvent,
// ordered by the (AbsoluteTick, SequenceNo) total order.
type pqueue []midi.ScheduledEvent

func (q pqueue) Len() int            { return len(q) }
func (q pqueue) Less(i, j int) bool  { return q[i].Less(q[j]) }
func (q pqueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *pqueue) Push(x interface{}) { *q = append(*q, x.(midi.ScheduledEvent)) }
func (q *pqueue) Pop() interface{} {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}

// Scheduler is a priority queue of timestamped events, safe for concurrent
// use: generator/control threads call Schedule while the dispatch thread
// calls DrainUntil.
type Scheduler struct {
	mu       sync.Mutex
	queue    pqueue
	capacity int
	seq      uint64

	// EvictedCount is a diagnostic counter of events dropped due to the
	// capacity bound, per spec.md §5.
	evictedCount uint64
}

// New returns a Scheduler bounded at capacity events (DefaultCapacity if
// capacity <= 0).
func New(capacity int) *Scheduler {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	s := &Scheduler{capacity: capacity}
	heap.Init(&s.queue)
	return s
}

// Schedule inserts e into the queue, stamped with the next sequence
// number. A NoteOn with DurationTicks > 0 has its matching NoteOff
// inserted into the queue right now too (not synthesized later at
// dispatch), per spec.md §4.3: "Note duration materialization produces
// the paired NoteOff at insertion time, not at dispatch, so that stopping
// a clip can find and cancel pending NoteOffs" via ClearTrack. If the
// queue is at capacity, the oldest queued event belonging to the same
// track is evicted to make room (falling back to the globally oldest
// event if the track has no other events queued), and the eviction
// counter is incremented.
func (s *Scheduler) Schedule(e midi.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.insertLocked(e)
	if e.Kind == midi.NoteOn && e.DurationTicks > 0 {
		off := midi.NewNoteOff(e.Tick+e.DurationTicks, e.Channel, e.Pitch)
		off.TrackIndex = e.TrackIndex
		s.insertLocked(off)
	}
}

func (s *Scheduler) insertLocked(e midi.Event) {
	s.seq++
	se := midi.ScheduledEvent{AbsoluteTick: e.Tick, SequenceNo: s.seq, Event: e}
	if len(s.queue) >= s.capacity {
		s.evictLocked(e.TrackIndex)
	}
	heap.Push(&s.queue, se)
}

// evictLocked removes the oldest (lowest SequenceNo) queued event whose
// TrackIndex matches trackIndex, or the globally oldest event if no
// same-track event is queued.
func (s *Scheduler) evictLocked(trackIndex int) {
	victim := -1
	var victimSeq uint64
	for i, se := range s.queue {
		if se.Event.TrackIndex != trackIndex {
			continue
		}
		if victim == -1 || se.SequenceNo < victimSeq {
			victim = i
			victimSeq = se.SequenceNo
		}
	}
	if victim == -1 {
		for i, se := range s.queue {
			if victim == -1 || se.SequenceNo < victimSeq {
				victim = i
				victimSeq = se.SequenceNo
			}
		}
	}
	if victim == -1 {
		return
	}
	heap.Remove(&s.queue, victim)
	s.evictedCount++
	errs.Diag.Record(errs.RuntimeRecoverable, fmt.Sprintf("scheduler queue at capacity, evicted track=%d event", trackIndex))
}

// EvictedCount reports how many events have been dropped for capacity.
func (s *Scheduler) EvictedCount() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.evictedCount
}

// Len reports the number of events currently queued.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// DrainUntil removes and returns, in (tick, sequence) order, every queued
// event whose AbsoluteTick is <= tick.
func (s *Scheduler) DrainUntil(tick int64) []midi.ScheduledEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	var due []midi.ScheduledEvent
	for len(s.queue) > 0 && s.queue[0].AbsoluteTick <= tick {
		due = append(due, heap.Pop(&s.queue).(midi.ScheduledEvent))
	}
	return due
}

// ClearTrack removes every queued event belonging to trackIndex, per
// spec.md §4.5's clip-launch / stop-track semantics.
func (s *Scheduler) ClearTrack(trackIndex int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := make(pqueue, 0, len(s.queue))
	for _, se := range s.queue {
		if se.Event.TrackIndex != trackIndex {
			kept = append(kept, se)
		}
	}
	s.queue = kept
	heap.Init(&s.queue)
}

// ClearAll empties the queue (transport stop).
func (s *Scheduler) ClearAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue = s.queue[:0]
}
