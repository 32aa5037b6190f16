package midi

import (
	"testing"
	"time"
)

func TestNoteOnBytes(t *testing.T) {
	e := NewNoteOn(0, 2, 60, 100, 48)
	got := e.Bytes()
	want := []byte{StatusNoteOn | 2, 60, 100}
	if len(got) != len(want) {
		t.Fatalf("Bytes() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Bytes()[%d] = %x, want %x", i, got[i], want[i])
		}
	}
}

func TestAllNotesOffBytes(t *testing.T) {
	e := AllNotesOff(10, 5)
	got := e.Bytes()
	want := []byte{StatusCC | 5, CCAllNotesOff, 0}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Bytes()[%d] = %x, want %x", i, got[i], want[i])
		}
	}
}

func TestScheduledEventOrdersByTickThenSequence(t *testing.T) {
	a := ScheduledEvent{AbsoluteTick: 5, SequenceNo: 2}
	b := ScheduledEvent{AbsoluteTick: 5, SequenceNo: 3}
	c := ScheduledEvent{AbsoluteTick: 6, SequenceNo: 0}

	if !a.Less(b) {
		t.Error("equal-tick event with lower sequence should sort first")
	}
	if b.Less(a) {
		t.Error("equal-tick event with higher sequence should not sort first")
	}
	if !b.Less(c) {
		t.Error("earlier tick should sort before later tick regardless of sequence")
	}
}

func TestMemorySinkRecordsSends(t *testing.T) {
	sink := NewMemorySink()
	e := NewNoteOn(0, 0, 64, 90, 0)
	if err := sink.Send(e.Bytes()); err != nil {
		t.Fatalf("Send: %v", err)
	}
	sent := sink.Sent()
	if len(sent) != 1 {
		t.Fatalf("Sent() len = %d, want 1", len(sent))
	}
	if sent[0][1] != 64 {
		t.Errorf("sent pitch byte = %d, want 64", sent[0][1])
	}
}

func TestMemorySourceDeliversToListener(t *testing.T) {
	src := NewMemorySource()
	received := make(chan []byte, 1)
	stop, err := src.Listen(func(msg []byte, ts time.Time) {
		received <- msg
	})
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer stop()

	src.Inject([]byte{StatusNoteOn, 60, 100})
	select {
	case msg := <-received:
		if len(msg) != 3 || msg[1] != 60 {
			t.Errorf("received %v, want note 60", msg)
		}
	default:
		t.Fatal("listener did not receive injected message")
	}
}
