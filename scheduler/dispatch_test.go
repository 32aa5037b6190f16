package scheduler

import (
	"testing"
	"time"

	"seq/midi"
	"seq/timing"
)

func TestDispatcherSendsDueEventsOnly(t *testing.T) {
	clock := timing.NewClock(120)
	sched := New(16)
	sink := midi.NewMemorySink()

	sched.Schedule(midi.NewNoteOn(0, 0, 60, 100, 0))
	sched.Schedule(midi.NewNoteOn(1000, 0, 61, 100, 0)) // far in the future

	d := NewDispatcher(sched, clock, sink)
	go d.Run()
	defer d.Stop()

	deadline := time.After(time.Second)
	for {
		if len(sink.Sent()) >= 1 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("timed out waiting for due event to be dispatched")
		case <-time.After(time.Millisecond):
		}
	}

	sent := sink.Sent()
	if len(sent) != 1 {
		t.Fatalf("dispatched %d messages, want exactly 1 (future event must stay queued)", len(sent))
	}
	if sent[0][1] != 60 {
		t.Errorf("dispatched pitch = %d, want 60", sent[0][1])
	}
	if sched.Len() != 1 {
		t.Errorf("scheduler Len() = %d, want 1 (future event still pending)", sched.Len())
	}
}

func TestDispatcherStopIsClean(t *testing.T) {
	clock := timing.NewClock(120)
	sched := New(16)
	sink := midi.NewMemorySink()
	d := NewDispatcher(sched, clock, sink)
	go d.Run()
	d.Stop() // must return promptly without deadlock
}
