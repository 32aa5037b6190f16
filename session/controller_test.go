package session

import (
	"testing"
	"time"

	"seq/midi"
)

// fakeController is a minimal midi.Controller test double: it records
// every SetLEDRGB call and lets the test inject PadEvents directly.
type fakeController struct {
	pads  chan midi.PadEvent
	notes chan midi.NoteEvent
	leds  chan [4]int // row, col, muted(1/0 via warning-channel marker), unused
}

func newFakeController() *fakeController {
	return &fakeController{
		pads:  make(chan midi.PadEvent, 8),
		notes: make(chan midi.NoteEvent, 8),
		leds:  make(chan [4]int, 64),
	}
}

func (f *fakeController) ID() string                        { return "fake" }
func (f *fakeController) Type() midi.ControllerType         { return midi.ControllerLaunchpad }
func (f *fakeController) PadEvents() <-chan midi.PadEvent    { return f.pads }
func (f *fakeController) NoteEvents() <-chan midi.NoteEvent  { return f.notes }
func (f *fakeController) SetLED(row, col int, color, channel uint8) error { return nil }
func (f *fakeController) SetLEDRGB(row, col int, rgb [3]uint8, channel uint8) error {
	nonZero := 0
	if rgb != [3]uint8{0, 0, 0} {
		nonZero = 1
	}
	select {
	case f.leds <- [4]int{row, col, nonZero, 0}:
	default:
	}
	return nil
}
func (f *fakeController) ClearLEDs() error { return nil }
func (f *fakeController) Close() error {
	close(f.pads)
	close(f.notes)
	return nil
}

func TestAttachControllerRow0TogglesMute(t *testing.T) {
	sess, err := Build(minimalConfig(), midi.NewMemorySink())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	sess.Start()
	defer sess.Stop()

	ctrl := newFakeController()
	sess.AttachController(ctrl)

	ctrl.pads <- midi.PadEvent{Row: 0, Col: 0, Velocity: 100}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if sess.Tracks.Snapshot()[0].Muted {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("expected track 0 to be muted after a row-0 pad press")
}

func TestAttachControllerRow1TogglesSolo(t *testing.T) {
	sess, err := Build(minimalConfig(), midi.NewMemorySink())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	sess.Start()
	defer sess.Stop()

	ctrl := newFakeController()
	sess.AttachController(ctrl)

	ctrl.pads <- midi.PadEvent{Row: 1, Col: 0, Velocity: 100}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if sess.Tracks.Snapshot()[0].Solo {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("expected track 0 to be solo after a row-1 pad press")
}
