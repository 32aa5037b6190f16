package sequencer

import (
	"math/rand"
	"sync"
	"time"

	"github.com/samber/lo"

	"seq/control"
	"seq/generators"
	"seq/midi"
	"seq/scheduler"
	"seq/timing"
)

// fillPeriod is how often the manager tops up the scheduler queue, matching
// the teacher's queueManagerLoop cadence (sequencer/manager.go ticks every
// 50ms).
const fillPeriod = 50 * time.Millisecond

// fillHorizonTicks bounds how far ahead of the playhead clips are
// generated and scheduled in one pass.
const fillHorizonTicks = int64(96) // one bar at 24 PPQN, 4/4

// TrackManager orchestrates every Track's Clip playback against a shared
// timing.Clock, filling scheduler.Scheduler ahead of the playhead and
// resolving trigger-queue boundaries and follow-actions. Grounded on the
// teacher's Manager.queueManagerLoop/midiOutputLoop split (a fill loop that
// tops up a horizon, decoupled from a separate dispatch loop that the
// scheduler.Dispatcher now owns), generalized from fixed step-sequencer
// devices to generator-driven Clips.
type TrackManager struct {
	mu     sync.Mutex
	Tracks []*Track

	clock    *timing.Clock
	sched    *scheduler.Scheduler
	triggers *TriggerQueue
	bus      *control.Bus
	ctxTmpl  generators.Context
	lastFill int64

	rng *rand.Rand

	stop chan struct{}
	done chan struct{}
}

// NewTrackManager wires tracks to clock and sched, both of which must
// already be running/owned by the caller (a MasterClock or ExternalSlave
// for clock, a scheduler.Dispatcher reading from sched). bus is the
// control.Bus the Control/Config-reload/UI threads post Commands to; this
// manager's fill loop plays the "dispatcher" role spec.md §5 assigns to
// command draining (see control package doc).
func NewTrackManager(clock *timing.Clock, sched *scheduler.Scheduler, bus *control.Bus) *TrackManager {
	return &TrackManager{
		clock:    clock,
		sched:    sched,
		triggers: NewTriggerQueue(),
		bus:      bus,
		ctxTmpl:  generators.DefaultContext(),
		rng:      rand.New(rand.NewSource(1)),
	}
}

// AddTrack appends a new track and returns it.
func (m *TrackManager) AddTrack(name string, channel uint8) *Track {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := NewTrack(len(m.Tracks), name, channel)
	m.Tracks = append(m.Tracks, t)
	return t
}

// SetContextTemplate updates the musical key/tempo/time-signature every
// generator's Context draws from.
func (m *TrackManager) SetContextTemplate(ctx generators.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ctxTmpl = ctx
}

// Launch enqueues clipID on trackIndex to start at quant's next boundary,
// per spec.md §4.6.
func (m *TrackManager) Launch(trackIndex int, clipID string, quant Quantize) {
	m.triggers.Enqueue(clipID, trackIndex, quant, m.clock.NowTick())
}

// Stop requests the playing clip on trackIndex finish its current loop and
// stop, per spec.md §4.5's graceful stop.
func (m *TrackManager) Stop(trackIndex int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if trackIndex < 0 || trackIndex >= len(m.Tracks) {
		return
	}
	if c := m.Tracks[trackIndex].PlayingClip(); c != nil {
		c.RequestStop()
	}
}

// CrossfadeTo cuts trackIndex's playing clip immediately, clearing any
// pending NoteOffs, arms a fadeTicks-long velocity ramp-in on the track,
// and launches clipID right away so the ramp starts covering it from its
// first tick. Grounded on original_source/src/arrangement/part.rs's
// Crossfade(duration) variant, for a PartTransition whose activation
// should fade the incoming clip up rather than cut straight in — see
// Track.StartFadeIn for why this is a sequential fade-in rather than a
// true overlapping crossfade.
func (m *TrackManager) CrossfadeTo(trackIndex int, clipID string, fadeTicks int64) {
	m.mu.Lock()
	if trackIndex < 0 || trackIndex >= len(m.Tracks) {
		m.mu.Unlock()
		return
	}
	track := m.Tracks[trackIndex]
	if c := track.PlayingClip(); c != nil {
		c.State = Stopped
	}
	m.sched.ClearTrack(trackIndex)
	track.StartFadeIn(fadeTicks)
	m.mu.Unlock()

	m.Launch(trackIndex, clipID, Quantize{Kind: Immediate})
}

// StopImmediate cuts a track's playing clip now, clearing any pending
// scheduled NoteOffs so no stuck notes remain.
func (m *TrackManager) StopImmediate(trackIndex int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if trackIndex < 0 || trackIndex >= len(m.Tracks) {
		return
	}
	if c := m.Tracks[trackIndex].PlayingClip(); c != nil {
		c.State = Stopped
	}
	m.sched.ClearTrack(trackIndex)
}

// SetMute sets trackIndex's mute flag directly, for arrangement Macro
// actions (MacroMuteTrack/MacroUnmuteTrack) that need an explicit value
// rather than control.ToggleMute's flip.
func (m *TrackManager) SetMute(trackIndex int, muted bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if trackIndex >= 0 && trackIndex < len(m.Tracks) {
		m.Tracks[trackIndex].Muted = muted
	}
}

// SetSolo sets trackIndex's solo flag directly, for MacroSoloTrack/
// MacroUnsoloTrack.
func (m *TrackManager) SetSolo(trackIndex int, solo bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if trackIndex >= 0 && trackIndex < len(m.Tracks) {
		m.Tracks[trackIndex].Solo = solo
	}
}

// SetGeneratorParam forwards to the playing clip's generator on
// trackIndex, for MacroSetParameter.
func (m *TrackManager) SetGeneratorParam(trackIndex int, param string, value float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if trackIndex < 0 || trackIndex >= len(m.Tracks) {
		return
	}
	if c := m.Tracks[trackIndex].PlayingClip(); c != nil && c.Generator != nil {
		c.Generator.SetParam(param, value)
	}
}

// Bounce renders every track's currently-playing clip offline for bars
// bars from tick 0, independent of the live clock/scheduler, for
// spec.md §6's "render a song document to a Standard MIDI File without
// opening a MIDI output" export path. Grounded on fill's own
// ctx/Track.Tick loop, generalized from advancing against the real
// clock's NowTick in fillHorizonTicks-sized steps to iterating a fixed
// tick range in one pass; a bounce never reaches a clip's natural end
// within a session-length render the way live playback's onClipEnded
// does, so follow-actions are intentionally not resolved here.
func (m *TrackManager) Bounce(bars int) [][]midi.Event {
	m.mu.Lock()
	defer m.mu.Unlock()

	ticksPerBar := int64(m.ctxTmpl.BeatsPerBar) * int64(m.ctxTmpl.PPQN)
	total := int64(bars) * ticksPerBar
	if total <= 0 {
		return nil
	}

	ctx := m.ctxTmpl
	soloActive := lo.SomeBy(m.Tracks, func(t *Track) bool { return t.Solo })

	out := make([][]midi.Event, len(m.Tracks))
	for from := int64(0); from < total; from += fillHorizonTicks {
		dt := fillHorizonTicks
		if from+dt > total {
			dt = total - from
		}
		ctx.Tick = from
		for i, t := range m.Tracks {
			events, _ := t.Tick(ctx, from, dt, soloActive)
			out[i] = append(out[i], events...)
		}
	}
	return out
}

// swapGeneratorClipBars is how many bars an ad-hoc generator clip built by
// SwapGenerator plays before its loop wraps, matching the implicit-clip
// default session.buildTrack uses for a track with no explicit clips.
const swapGeneratorClipBars = 4

// SwapGenerator replaces trackIndex's playing clip with a fresh,
// immediately-activated clip wrapping a newly constructed genType
// generator, for a Part's GeneratorRef track state (spec.md §3's Part
// data model names a generator-type-name slot, distinct from ClipRef's
// pre-built clip ID). registry resolves genType; the caller (the
// arrangement package has no generators.Registry of its own) supplies it.
func (m *TrackManager) SwapGenerator(trackIndex int, genType string, registry *generators.Registry) error {
	gen, err := registry.Create(genType)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if trackIndex < 0 || trackIndex >= len(m.Tracks) {
		return nil
	}
	track := m.Tracks[trackIndex]

	if prev := track.PlayingClip(); prev != nil {
		prev.State = Stopped
		m.sched.ClearTrack(track.Index)
	}

	length := int64(swapGeneratorClipBars*m.ctxTmpl.BeatsPerBar) * int64(m.ctxTmpl.PPQN)
	clip := NewClip(track.Name+":"+genType, gen, length)
	clip.Queue()
	clip.Activate()
	track.AddClip(clip)
	return nil
}

// TrackSnapshot is a read-only copy of one track's display state, for
// status views that must not race the fill loop's field mutations.
type TrackSnapshot struct {
	Name      string
	Channel   uint8
	Muted     bool
	Solo      bool
	ClipID    string
	ClipState State
}

// Snapshot returns a point-in-time copy of every track's display state.
func (m *TrackManager) Snapshot() []TrackSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]TrackSnapshot, len(m.Tracks))
	for i, t := range m.Tracks {
		s := TrackSnapshot{Name: t.Name, Channel: t.Channel, Muted: t.Muted, Solo: t.Solo}
		if c := t.PlayingClip(); c != nil {
			s.ClipID = c.ID
			s.ClipState = c.State
		}
		out[i] = s
	}
	return out
}

// Start begins the fill loop.
func (m *TrackManager) Start() {
	m.mu.Lock()
	if m.stop != nil {
		m.mu.Unlock()
		return
	}
	m.stop = make(chan struct{})
	m.done = make(chan struct{})
	m.lastFill = m.clock.NowTick()
	m.mu.Unlock()

	go m.fillLoop()
}

// StopLoop halts the fill loop.
func (m *TrackManager) StopLoop() {
	m.mu.Lock()
	stop, done := m.stop, m.done
	m.stop = nil
	m.mu.Unlock()
	if stop == nil {
		return
	}
	close(stop)
	<-done
}

func (m *TrackManager) fillLoop() {
	defer close(m.done)
	ticker := time.NewTicker(fillPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			m.fill()
		}
	}
}

// fill activates due triggers and advances every track's playing clip up
// to the fill horizon, scheduling the resulting events.
func (m *TrackManager) fill() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock.NowTick()
	target := now + fillHorizonTicks

	if m.bus != nil {
		for _, cmd := range m.bus.Drain() {
			m.applyCommandLocked(cmd, now)
		}
	}

	for _, trig := range m.triggers.Poll(now) {
		if trig.TrackIndex < 0 || trig.TrackIndex >= len(m.Tracks) {
			continue
		}
		track := m.Tracks[trig.TrackIndex]
		if prev := track.PlayingClip(); prev != nil && prev.ID != trig.ClipID {
			prev.State = Stopped
			m.sched.ClearTrack(track.Index)
		}
		if c := track.ClipByID(trig.ClipID); c != nil {
			c.Queue()
			c.Activate()
		}
	}

	soloActive := lo.SomeBy(m.Tracks, func(t *Track) bool { return t.Solo })

	from := m.lastFill
	if from < now {
		from = now
	}
	dt := target - from
	if dt <= 0 {
		return
	}

	ctx := m.ctxTmpl
	ctx.Tempo = m.clock.CurrentTempo()
	ctx.Tick = from

	for _, t := range m.Tracks {
		ended := t.PlayingClip()
		events, naturalEnd := t.Tick(ctx, from, dt, soloActive)
		for _, e := range events {
			m.sched.Schedule(e)
		}
		if naturalEnd && ended != nil {
			m.onClipEnded(t, ended)
		}
	}
	m.lastFill = target
}

// applyCommandLocked applies one drained control.Command. Called with
// m.mu held, at the top of fill(), before triggers are polled or tracks
// are ticked — spec.md §5's "applies them between draining events and
// emitting MIDI" ordering.
func (m *TrackManager) applyCommandLocked(cmd control.Command, now int64) {
	switch cmd.Kind {
	case control.LaunchClip:
		m.triggers.Enqueue(cmd.ClipID, cmd.TrackIndex, Quantize{Kind: QuantizeKind(cmd.QuantKind), N: cmd.QuantN}, now)
	case control.StopTrack:
		if cmd.TrackIndex >= 0 && cmd.TrackIndex < len(m.Tracks) {
			if c := m.Tracks[cmd.TrackIndex].PlayingClip(); c != nil {
				c.RequestStop()
			}
		}
	case control.StopTrackImmediate:
		if cmd.TrackIndex >= 0 && cmd.TrackIndex < len(m.Tracks) {
			if c := m.Tracks[cmd.TrackIndex].PlayingClip(); c != nil {
				c.State = Stopped
			}
			m.sched.ClearTrack(cmd.TrackIndex)
		}
	case control.SetTempo:
		m.clock.SetTempo(cmd.Tempo)
	case control.ToggleMute:
		if cmd.TrackIndex >= 0 && cmd.TrackIndex < len(m.Tracks) {
			m.Tracks[cmd.TrackIndex].Muted = !m.Tracks[cmd.TrackIndex].Muted
		}
	case control.ToggleSolo:
		if cmd.TrackIndex >= 0 && cmd.TrackIndex < len(m.Tracks) {
			m.Tracks[cmd.TrackIndex].Solo = !m.Tracks[cmd.TrackIndex].Solo
		}
	}
}

// onClipEnded resolves ended's FollowAction and enqueues its successor
// immediately (follow actions are not quantized: the clip already ended
// on a loop boundary), per spec.md §4.6.
func (m *TrackManager) onClipEnded(t *Track, ended *Clip) {
	next := m.resolveFollow(t, ended)
	if next == "" {
		return
	}
	if c := t.ClipByID(next); c != nil {
		c.Queue()
		c.Activate()
	}
}

func (m *TrackManager) resolveFollow(t *Track, from *Clip) string {
	fa := from.FollowAction
	switch fa.Kind {
	case FollowNone:
		return ""
	case FollowAgain:
		return from.ID
	case FollowNext:
		return t.clipIDByOffset(from, 1)
	case FollowPrevious:
		return t.clipIDByOffset(from, -1)
	case FollowFirst:
		if len(t.Clips) > 0 {
			return t.Clips[0].ID
		}
	case FollowLast:
		if len(t.Clips) > 0 {
			return t.Clips[len(t.Clips)-1].ID
		}
	case FollowRandom:
		if len(t.Clips) > 0 {
			return t.Clips[m.rng.Intn(len(t.Clips))].ID
		}
	case FollowSpecific:
		return fa.Target
	case FollowEither:
		if m.rng.Float64() < fa.WeightA {
			return fa.Target
		}
		return fa.TargetB
	}
	return ""
}
