package scheduler

import (
	"fmt"
	"runtime"
	"time"

	"seq/debug"
	"seq/errs"
	"seq/midi"
	"seq/timing"
)

// DispatchPeriod is the dispatch loop's wake period P, per spec.md §4.3's
// default of 1ms.
const DispatchPeriod = time.Millisecond

// LookaheadTicks bounds how far past NowTick the dispatcher will drain
// events on each cycle; spec.md §4.3 requires lookahead >= P "to absorb
// scheduling jitter". A small lookahead keeps the window in which
// ClearTrack/ClearAll can still cancel an about-to-fire event short,
// which matters for live mute/stop responsiveness.
const LookaheadTicks = 2

// Dispatcher pops due events from a Scheduler in tick order and hands
// their wire bytes to a midi.MidiSink at the wall-clock instant
// timing.Clock says they're due, via SendAt — so the dispatch thread
// itself never blocks waiting on a single event (per spec.md §5: the
// dispatch thread may not block). Grounded on the teacher's
// sequencer/manager.go midiOutputLoop (peek earliest event, compute its
// wall-clock deadline, send), generalized from one queue per device to a
// single shared priority queue and a push-based SendAt instead of a
// blocking per-event timer.Sleep.
type Dispatcher struct {
	sched *Scheduler
	clock *timing.Clock
	sink  midi.MidiSink

	stop chan struct{}
	done chan struct{}
}

// NewDispatcher builds a Dispatcher over sched/clock/sink.
func NewDispatcher(sched *Scheduler, clock *timing.Clock, sink midi.MidiSink) *Dispatcher {
	return &Dispatcher{
		sched: sched,
		clock: clock,
		sink:  sink,
		stop:  make(chan struct{}),
		done:  make(chan struct{}),
	}
}

// Run drains due events and hands them to the sink until Stop is called.
// It locks the OS thread it runs on, matching the teacher's rationale:
// consistent scheduling latency for MIDI timing matters more than
// goroutine mobility. Call it in its own goroutine.
func (d *Dispatcher) Run() {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(d.done)

	ticker := time.NewTicker(DispatchPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-d.stop:
			return
		case <-ticker.C:
			d.cycle()
		}
	}
}

func (d *Dispatcher) cycle() {
	now := d.clock.NowTick()
	due := d.sched.DrainUntil(now + LookaheadTicks)
	for _, se := range due {
		deadlineMicros := d.clock.TickToMicros(se.AbsoluteTick)
		nowMicros := d.clock.TickToMicros(now)
		at := time.Now().Add(time.Duration(deadlineMicros-nowMicros) * time.Microsecond)

		if err := d.sink.SendAt(se.Event.Bytes(), at); err != nil {
			debug.Log("dispatch", "send error track=%d tick=%d: %v", se.Event.TrackIndex, se.AbsoluteTick, err)
			errs.Diag.Record(errs.Resource, fmt.Sprintf("midi send failed track=%d: %v", se.Event.TrackIndex, err))
			continue
		}
		debug.LogEvery(32, "dispatch", "track=%d tick=%d kind=%d pitch=%d", se.Event.TrackIndex, se.AbsoluteTick, se.Event.Kind, se.Event.Pitch)
	}
}

// Stop halts the dispatch loop and waits for Run to return.
func (d *Dispatcher) Stop() {
	close(d.stop)
	<-d.done
}
