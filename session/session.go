// Package session wires a validated config.Config into the live object
// graph spec.md's components describe: a timing.Clock driven by a
// timing.MasterClock, a scheduler.Scheduler fed by a scheduler.Dispatcher,
// a sequencer.TrackManager holding every Track/Clip, and the
// arrangement.PartManager/Scene/SongPlayer layer on top of it. Grounded on
// the teacher's sequencer/manager.go + main.go session-construction code
// (open a device, build a Manager, start its loops), generalized from one
// hardcoded device/track pair into a full song document's worth of
// tracks, clips, generators, parts, scenes, and song sections.
package session

import (
	"time"

	"seq/arrangement"
	"seq/config"
	"seq/control"
	"seq/debug"
	"seq/errs"
	"seq/generators"
	"seq/midi"
	"seq/music"
	"seq/scheduler"
	"seq/sequencer"
	"seq/timing"
)

// arrangementPeriod is how often the Part/Song driver loop polls for
// boundary crossings, matching sequencer.TrackManager's own fill cadence
// so a part transition and the clip launches it triggers land in the
// same fill cycle.
const arrangementPeriod = 50 * time.Millisecond

// Session is the complete running instance of one song document: every
// object spec.md's component list names, already wired together.
type Session struct {
	Config *config.Config

	Clock      *timing.Clock
	Master     *timing.MasterClock
	Scheduler  *scheduler.Scheduler
	Dispatcher *scheduler.Dispatcher
	Bus        *control.Bus
	Sink       midi.MidiSink
	Tracks     *sequencer.TrackManager
	Generators *generators.Registry

	Parts  *arrangement.PartManager
	Scenes map[string]*arrangement.Scene
	Song   *arrangement.SongPlayer
	Reg    *arrangement.Handle

	stop chan struct{}
	done chan struct{}
}

// Build constructs a Session from cfg, sending MIDI through sink. cfg is
// re-validated here (Configuration errors must fail before any runtime
// thread starts, per spec.md §7) even if the caller already validated it
// via config.Load, since Build can be called directly on a
// hand-constructed *config.Config.
func Build(cfg *config.Config, sink midi.MidiSink) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	key, err := resolveKey(cfg)
	if err != nil {
		return nil, err
	}

	clock := timing.NewClock(cfg.Tempo)
	sched := scheduler.New(0)
	bus := control.New(0)
	mgr := sequencer.NewTrackManager(clock, sched, bus)

	beatsPerBar := cfg.TimeSignature[0]
	if beatsPerBar <= 0 {
		beatsPerBar = 4
	}
	ctx := generators.DefaultContext()
	ctx.Key = key
	ctx.Tempo = cfg.Tempo
	ctx.BeatsPerBar = beatsPerBar
	mgr.SetContextTemplate(ctx)

	genReg := generators.NewRegistry()

	for _, tc := range cfg.Tracks {
		if err := buildTrack(mgr, genReg, tc, beatsPerBar); err != nil {
			return nil, errs.Wrapf(errs.Configuration, err, "building track %q", tc.Name)
		}
	}

	reg := arrangement.NewRegistry(mgr)
	handle := arrangement.NewHandle(reg)

	parts, err := buildParts(cfg.Parts, reg)
	if err != nil {
		return nil, err
	}
	scenes, err := buildScenes(cfg.Scenes, reg)
	if err != nil {
		return nil, err
	}
	song := buildSong(cfg.Song)

	disp := scheduler.NewDispatcher(sched, clock, sink)
	master := timing.NewMasterClock(clock, sink)

	return &Session{
		Config:     cfg,
		Clock:      clock,
		Master:     master,
		Scheduler:  sched,
		Dispatcher: disp,
		Bus:        bus,
		Sink:       sink,
		Tracks:     mgr,
		Generators: genReg,
		Parts:      parts,
		Scenes:     scenes,
		Song:       song,
		Reg:        handle,
	}, nil
}

func resolveKey(cfg *config.Config) (music.Key, error) {
	keyName := cfg.Key
	if keyName == "" {
		keyName = "C"
	}
	root, ok := music.ParsePitchClass(keyName)
	if !ok {
		return music.Key{}, errs.Configf("unknown key %q", keyName)
	}
	scaleName := cfg.Scale
	if scaleName == "" {
		scaleName = "major"
	}
	reg := music.NewRegistry()
	scale, err := reg.Scale(root, scaleName)
	if err != nil {
		return music.Key{}, errs.Wrapf(errs.Configuration, err, "resolving scale %q", scaleName)
	}
	return music.Key{Scale: scale}, nil
}

// Start brings every thread up: the master clock's real-time tick
// advance, the dispatch loop, the track manager's fill loop, and this
// package's own arrangement driver loop.
func (s *Session) Start() {
	debug.Log("session", "starting: %d tracks, %d parts, %d scenes", len(s.Tracks.Tracks), len(s.Parts.Names()), len(s.Scenes))
	s.Master.Start()
	go s.Dispatcher.Run()
	s.Tracks.Start()

	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	go s.arrangementLoop()
}

// Stop halts every thread in reverse start order and sends an all-notes-off
// housekeeping message on every track's channel, per spec.md §5's
// transport-stop contract.
func (s *Session) Stop() {
	if s.stop != nil {
		close(s.stop)
		<-s.done
	}
	s.Tracks.StopLoop()
	s.Dispatcher.Stop()
	s.Master.Stop()
	s.Scheduler.ClearAll()

	for _, t := range s.Tracks.Tracks {
		_ = s.Sink.Send(midi.AllNotesOff(0, t.Channel-1).Bytes())
	}
}

func (s *Session) arrangementLoop() {
	defer close(s.done)
	ticker := time.NewTicker(arrangementPeriod)
	defer ticker.Stop()

	var lastSongTick int64 = s.Clock.NowTick()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			now := s.Clock.NowTick()

			if part := s.Parts.Update(now); part != nil {
				s.applyPart(part)
			}

			if s.Song != nil {
				dt := now - lastSongTick
				if dt > 0 {
					s.Song.Advance(dt, s.onSongSectionEnter)
					lastSongTick = now
				}
			}
		}
	}
}

