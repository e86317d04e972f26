package filter

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Range is a numeric filter restriction. Min and Max are independently
// nullable; Tol is the server-side fuzzy boundary tolerance, never negative.
type Range struct {
	Min *float64 `json:"min"`
	Max *float64 `json:"max"`
	Tol float64  `json:"tol"`
}

// Summary is a snapshot of the user's current filter selection. Categorical
// values are always canonical labels. A nil Range means the metric is
// unrestricted; a nil Spatial means no drawn selection.
type Summary struct {
	Categorical map[string][]string
	Numeric     map[string]*Range
	Spatial     *geojson.Geometry
}

// NewSummary returns the all-empty default selection.
func NewSummary() Summary {
	return Summary{
		Categorical: map[string][]string{
			GroupMaterial:   {},
			GroupMovement:   {},
			GroupConfidence: {},
		},
		Numeric: map[string]*Range{
			MetricPGA:   nil,
			MetricPGV:   nil,
			MetricPSA03: nil,
			MetricMMI:   nil,
			MetricRain:  nil,
		},
		Spatial: nil,
	}
}

// Clone deep-copies the summary so readers never share backing storage
// with the live state.
func (s Summary) Clone() Summary {
	out := Summary{
		Categorical: make(map[string][]string, len(s.Categorical)),
		Numeric:     make(map[string]*Range, len(s.Numeric)),
	}
	for k, v := range s.Categorical {
		cp := make([]string, len(v))
		copy(cp, v)
		out.Categorical[k] = cp
	}
	for k, r := range s.Numeric {
		if r == nil {
			out.Numeric[k] = nil
			continue
		}
		cp := Range{Tol: r.Tol}
		if r.Min != nil {
			v := *r.Min
			cp.Min = &v
		}
		if r.Max != nil {
			v := *r.Max
			cp.Max = &v
		}
		out.Numeric[k] = &cp
	}
	if s.Spatial != nil {
		out.Spatial = geojson.NewGeometry(orb.Clone(s.Spatial.Geometry()))
	}
	return out
}
