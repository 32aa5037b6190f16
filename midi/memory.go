package midi

import (
	"sync"
	"time"
)

// MemorySink is an in-memory MidiSink used by tests, by the export path,
// and as the fallback when no MIDI output is opened, to inspect
// dispatched bytes without a real MIDI backend.
type MemorySink struct {
	mu     sync.Mutex
	closed bool
	sent   [][]byte
}

// NewMemorySink returns an empty MemorySink.
func NewMemorySink() *MemorySink { return &MemorySink{} }

// Send records msg.
func (m *MemorySink) Send(msg []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	cp := make([]byte, len(msg))
	copy(cp, msg)
	m.sent = append(m.sent, cp)
	return nil
}

// SendAt records msg once `at` arrives (immediately if already past).
func (m *MemorySink) SendAt(msg []byte, at time.Time) error {
	delay := time.Until(at)
	if delay <= 0 {
		return m.Send(msg)
	}
	time.AfterFunc(delay, func() { m.Send(msg) })
	return nil
}

// ListDestinations reports a single synthetic in-memory destination.
func (m *MemorySink) ListDestinations() ([]Destination, error) {
	return []Destination{{Index: 0, Name: "memory"}}, nil
}

// Close marks the sink closed; further Send calls are no-ops but don't error.
func (m *MemorySink) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Sent returns a copy of all messages sent so far.
func (m *MemorySink) Sent() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]byte, len(m.sent))
	copy(out, m.sent)
	return out
}

// MemorySource is an in-memory MidiSource that tests drive with Inject.
type MemorySource struct {
	mu      sync.Mutex
	handler func(msg []byte, ts time.Time)
}

// NewMemorySource returns an unconnected MemorySource.
func NewMemorySource() *MemorySource { return &MemorySource{} }

// Listen registers handler; only one listener is supported at a time.
func (m *MemorySource) Listen(handler func(msg []byte, ts time.Time)) (func(), error) {
	m.mu.Lock()
	m.handler = handler
	m.mu.Unlock()
	return func() {
		m.mu.Lock()
		m.handler = nil
		m.mu.Unlock()
	}, nil
}

// Inject delivers msg to the current listener, if any, timestamped now.
func (m *MemorySource) Inject(msg []byte) {
	m.mu.Lock()
	h := m.handler
	m.mu.Unlock()
	if h != nil {
		h(msg, time.Now())
	}
}

// Close is a no-op for MemorySource.
func (m *MemorySource) Close() error { return nil }
