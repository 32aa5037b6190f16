package midi

import (
	"fmt"
	"sync"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // register the platform MIDI driver
)

// Destination describes one MIDI output port, per spec.md §6's
// list_destinations.
type Destination struct {
	Index int
	Name  string
}

// MidiSink is the external interface spec.md §6 defines: Send is the
// short-latency path used only for transport/clock housekeeping; SendAt
// is the timestamped path the dispatcher uses for musical events, letting
// the backend (or, for PortSink, a lightweight internal timer) queue the
// bytes for the instant they're due rather than the dispatch loop
// blocking on each one.
type MidiSink interface {
	Send(msg []byte) error
	SendAt(msg []byte, at time.Time) error
	ListDestinations() ([]Destination, error)
	Close() error
}

// MidiSource delivers raw incoming MIDI bytes (external clock pulses,
// controller input) to a callback, per spec.md §6.
type MidiSource interface {
	Listen(handler func(msg []byte, ts time.Time)) (stop func(), err error)
	Close() error
}

// PortSink is a MidiSink backed by a real output port via
// gitlab.com/gomidi/midi/v2, grounded on the teacher's midi/launchpad.go
// and midi/keyboard.go use of gomidi.SendTo/ListenTo.
type PortSink struct {
	mu   sync.Mutex
	port drivers.Out
	send func(msg gomidi.Message) error
}

// OpenPortSink opens an output port by name (exact or substring match
// against gomidi.GetOutPorts), matching the flag surface of spec.md §6's
// --list-midi / device-name selection.
func OpenPortSink(name string) (*PortSink, error) {
	port, err := findOutPort(name)
	if err != nil {
		return nil, err
	}
	send, err := gomidi.SendTo(port)
	if err != nil {
		return nil, fmt.Errorf("open output port %q: %w", name, err)
	}
	return &PortSink{port: port, send: send}, nil
}

func findOutPort(name string) (drivers.Out, error) {
	ports := gomidi.GetOutPorts()
	for _, p := range ports {
		if p.String() == name {
			return p, nil
		}
	}
	for _, p := range ports {
		if containsFold(p.String(), name) {
			return p, nil
		}
	}
	return nil, fmt.Errorf("no output port matching %q (available: %v)", name, portNames(ports))
}

func findInPort(name string) (drivers.In, error) {
	ports := gomidi.GetInPorts()
	for _, p := range ports {
		if p.String() == name {
			return p, nil
		}
	}
	for _, p := range ports {
		if containsFold(p.String(), name) {
			return p, nil
		}
	}
	return nil, fmt.Errorf("no input port matching %q (available: %v)", name, portNames(ports))
}

func portNames[P fmt.Stringer](ports []P) []string {
	names := make([]string, len(ports))
	for i, p := range ports {
		names[i] = p.String()
	}
	return names
}

func containsFold(haystack, needle string) bool {
	hl, nl := len(haystack), len(needle)
	if nl == 0 || nl > hl {
		return nl == 0
	}
	lower := func(b byte) byte {
		if b >= 'A' && b <= 'Z' {
			return b + 32
		}
		return b
	}
	for i := 0; i+nl <= hl; i++ {
		match := true
		for j := 0; j < nl; j++ {
			if lower(haystack[i+j]) != lower(needle[j]) {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

// Send writes raw MIDI bytes to the port.
func (s *PortSink) Send(msg []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.send == nil {
		return fmt.Errorf("sink closed")
	}
	return s.send(gomidi.Message(msg))
}

// SendAt queues msg to be sent at the wall-clock instant `at`. The
// gomidi/v2 backend has no native scheduled-send primitive, so this
// parks a timer rather than blocking the caller; if `at` has already
// passed, it sends immediately.
func (s *PortSink) SendAt(msg []byte, at time.Time) error {
	delay := time.Until(at)
	if delay <= 0 {
		return s.Send(msg)
	}
	time.AfterFunc(delay, func() { s.Send(msg) })
	return nil
}

// ListDestinations reports available output ports.
func (s *PortSink) ListDestinations() ([]Destination, error) {
	ports := gomidi.GetOutPorts()
	dests := make([]Destination, len(ports))
	for i, p := range ports {
		dests[i] = Destination{Index: i, Name: p.String()}
	}
	return dests, nil
}

// Close releases the underlying output port.
func (s *PortSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.send = nil
	if s.port != nil {
		return s.port.Close()
	}
	return nil
}

// PortSource is a MidiSource backed by a real input port.
type PortSource struct {
	port drivers.In
}

// OpenPortSource opens an input port by name (exact or substring match).
func OpenPortSource(name string) (*PortSource, error) {
	port, err := findInPort(name)
	if err != nil {
		return nil, err
	}
	return &PortSource{port: port}, nil
}

// Listen registers handler for every incoming message on the port.
func (s *PortSource) Listen(handler func(msg []byte, ts time.Time)) (func(), error) {
	stop, err := gomidi.ListenTo(s.port, func(msg gomidi.Message, timestampms int32) {
		handler([]byte(msg), time.Now())
	})
	if err != nil {
		return nil, fmt.Errorf("listen on input port: %w", err)
	}
	return stop, nil
}

// Close releases the underlying input port.
func (s *PortSource) Close() error {
	if s.port != nil {
		return s.port.Close()
	}
	return nil
}

// ListOutputs returns the names of available MIDI output ports, for
// spec.md §6's --list-midi flag.
func ListOutputs() []string {
	return portNames(gomidi.GetOutPorts())
}

// ListInputs returns the names of available MIDI input ports, for
// spec.md §6's --list-sources flag.
func ListInputs() []string {
	return portNames(gomidi.GetInPorts())
}
