package arrangement

import (
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"seq/sequencer"
)

// Registry is the central lookup spec.md §9 requires: "All references are
// indirect via string/integer keys resolved against a central registry,
// never direct owning pointers. This keeps hot-reload tractable: swap the
// registry atomically at a bar boundary; stale references surface as
// lookup failures and are treated as Hold." Config-layer structs
// (PartConfig, SceneConfig, ...) name tracks by name and clips/generators
// by id/type-name string; Registry turns those strings into the live
// *sequencer.Track a Part/Scene applies against, without either side
// holding a pointer into the other's lifetime.
type Registry struct {
	trackIndexByName map[string]int
	clipTrackByID    map[string]int
}

// NewRegistry builds a Registry snapshot from mgr's current tracks/clips.
// Grounded on spec.md §9's registry design note; a fresh Registry is
// built by the config-reload thread and swapped into the active Handle
// atomically, never mutated in place once published.
func NewRegistry(mgr *sequencer.TrackManager) *Registry {
	r := &Registry{
		trackIndexByName: make(map[string]int, len(mgr.Tracks)),
		clipTrackByID:    make(map[string]int),
	}
	for _, t := range mgr.Tracks {
		r.trackIndexByName[t.Name] = t.Index
		for _, c := range t.Clips {
			r.clipTrackByID[c.ID] = t.Index
		}
	}
	return r
}

// TrackIndex resolves a track name to its index. ok is false for a stale
// or unknown reference (the caller's contract per spec.md §9 is to treat
// that as Hold, not an error).
func (r *Registry) TrackIndex(name string) (idx int, ok bool) {
	idx, ok = r.trackIndexByName[name]
	return idx, ok
}

// ClipTrack resolves a clip id to the index of the track that owns it.
func (r *Registry) ClipTrack(clipID string) (idx int, ok bool) {
	idx, ok = r.clipTrackByID[clipID]
	return idx, ok
}

// TrackNames lists every registered track name, for diagnostics/UI.
func (r *Registry) TrackNames() []string {
	return lo.Keys(r.trackIndexByName)
}

// Handle holds the currently-published Registry behind an atomic pointer,
// letting the dispatch/fill-loop side read a consistent snapshot while
// the config-reload thread builds and publishes the next one. Swap is the
// only mutation; readers never block on it.
type Handle struct {
	ptr atomic.Pointer[Registry]
}

// NewHandle returns a Handle already holding initial.
func NewHandle(initial *Registry) *Handle {
	h := &Handle{}
	h.ptr.Store(initial)
	return h
}

// Current returns the currently-published Registry.
func (h *Handle) Current() *Registry { return h.ptr.Load() }

// Swap atomically publishes next as the current Registry, per spec.md
// §9's "swap the registry atomically at a bar boundary". The caller
// (config-reload consumer in the fill loop) is responsible for calling
// this only once the bar boundary has actually been reached; Handle
// itself has no notion of musical time.
func (h *Handle) Swap(next *Registry) { h.ptr.Store(next) }

// NewClipID returns a fresh unique clip identifier for clips created at
// runtime (e.g. a freshly recorded loop) that have no config-assigned id.
// Id generation, not storage, is where this repo's Clip.ID (a plain string, matching spec.md §3's opaque id) meets
// google/uuid: a fresh id is always a valid UUID string, but any
// config-supplied id string is accepted too.
func NewClipID() string { return uuid.New().String() }
