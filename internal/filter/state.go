package filter

import (
	"sync"

	"github.com/paulmach/orb/geojson"
)

// Bounds is the raw numeric input from a panel or CLI flag, before the
// catalog tolerance is attached.
type Bounds struct {
	Min *float64
	Max *float64
}

// State is the single-writer container for the current filter selection.
// Apply, SetSpatial and ClearSpatial mutate it; everything else reads
// through Snapshot.
type State struct {
	mu  sync.RWMutex
	cat Catalog
	sum Summary
}

func NewState(cat Catalog) *State {
	return &State{cat: cat, sum: NewSummary()}
}

// Apply replaces the categorical and numeric selections wholesale. The
// spatial selection survives until explicitly cleared. Selected values are
// collapsed to canonical labels before being stored; ranges pick up the
// catalog tolerance for their metric.
func (s *State) Apply(categorical map[string][]string, numeric map[string]Bounds) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := NewSummary()
	next.Spatial = s.sum.Spatial

	for _, g := range s.cat.Groups {
		next.Categorical[g.Name] = g.Canonicalize(categorical[g.Name])
	}
	for _, m := range s.cat.Metrics {
		b, ok := numeric[m.Name]
		if !ok || (b.Min == nil && b.Max == nil) {
			continue
		}
		next.Numeric[m.Name] = &Range{Min: b.Min, Max: b.Max, Tol: m.Tolerance}
	}
	s.sum = next
}

func (s *State) SetSpatial(g *geojson.Geometry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sum.Spatial = g
}

func (s *State) ClearSpatial() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sum.Spatial = nil
}

// Snapshot returns a deep copy of the current selection.
func (s *State) Snapshot() Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sum.Clone()
}

func (s *State) Catalog() Catalog {
	return s.cat
}
