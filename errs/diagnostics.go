package errs

import "sync/atomic"

// Diagnostics is the lock-free (atomic-counter) diagnostic surface spec.md
// §7 names: "The dispatch thread never surfaces errors upward; it records
// them in a lock-free diagnostic channel consumed by the UI... Runtime
// anomalies appear in a status line (rolling last-message plus monotonic
// counters per error kind)." One package-level Diag is shared by every
// hot-path caller (the dispatch loop, the fill loop); the UI thread polls
// Snapshot() on its own render cadence rather than blocking on a channel.
type Diagnostics struct {
	counts  [4]atomic.Uint64
	lastMu  chan struct{} // 1-buffered mutex substitute: never blocks a writer
	last    atomic.Value  // string
}

// Diag is the process-wide diagnostic sink. Every package that can only
// fail on a hot path records here instead of returning an error upward.
var Diag = NewDiagnostics()

// NewDiagnostics returns an empty Diagnostics, for tests that want an
// isolated instance instead of the shared Diag.
func NewDiagnostics() *Diagnostics {
	d := &Diagnostics{lastMu: make(chan struct{}, 1)}
	d.lastMu <- struct{}{}
	d.last.Store("")
	return d
}

// Record increments level's counter and updates the rolling last-message,
// without blocking: the lastMu token is a 1-buffered channel acting as a
// try-lock, so a writer that loses the race simply skips updating the
// message text this time rather than waiting.
func (d *Diagnostics) Record(level Level, message string) {
	d.counts[level].Add(1)
	select {
	case <-d.lastMu:
		d.last.Store(level.String() + ": " + message)
		d.lastMu <- struct{}{}
	default:
	}
}

// Snapshot reports the current counters and the last recorded message,
// for the UI's status line.
func (d *Diagnostics) Snapshot() (counts [4]uint64, lastMessage string) {
	for i := range d.counts {
		counts[i] = d.counts[i].Load()
	}
	if s, ok := d.last.Load().(string); ok {
		lastMessage = s
	}
	return counts, lastMessage
}
