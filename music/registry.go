package music

import (
	"fmt"
	"sync"
)

// Registry holds custom scale definitions registered at session load time,
// resolved by name alongside the built-in ScaleType set. Grounded on the
// reference implementation's ScaleRegistry.
type Registry struct {
	mu      sync.RWMutex
	customs map[string][]int
}

// NewRegistry returns an empty custom-scale registry.
func NewRegistry() *Registry {
	return &Registry{customs: make(map[string][]int)}
}

// RegisterCustom adds (or replaces) a named custom scale definition.
func (r *Registry) RegisterCustom(name string, intervals []int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := make([]int, len(intervals))
	copy(cp, intervals)
	r.customs[name] = cp
}

// Scale resolves a scale name against the built-ins first, then the custom
// registry, building a Scale rooted at root.
func (r *Registry) Scale(root int, name string) (Scale, error) {
	if st, err := ParseScaleType(name); err == nil {
		return NewScale(root, st), nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	iv, ok := r.customs[name]
	if !ok {
		return Scale{}, fmt.Errorf("music: unknown scale %q", name)
	}
	return NewCustomScale(root, iv), nil
}

// AvailableScales lists built-in names plus any registered custom names.
func (r *Registry) AvailableScales() []string {
	names := make([]string, 0, len(scaleNames)+len(r.customs))
	for _, n := range scaleNames {
		if n != "custom" {
			names = append(names, n)
		}
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for n := range r.customs {
		names = append(names, n)
	}
	return names
}
