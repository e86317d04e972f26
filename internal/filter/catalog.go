// Package filter holds the canonical filter state for the landslide viewer
// and the translations from that state to tile queries and job payloads.
package filter

import "strings"

const (
	GroupMaterial   = "material"
	GroupMovement   = "movement"
	GroupConfidence = "confidence"
)

const (
	MetricPGA   = "pga"
	MetricPGV   = "pgv"
	MetricPSA03 = "psa03"
	MetricMMI   = "mmi"
	MetricRain  = "rain"
)

// Option is one selectable value in a categorical group. MatchValues lists
// alternate spellings found in source inventories; they collapse to Label.
type Option struct {
	Label       string
	MatchValues []string
}

type Group struct {
	Name         string
	SummaryLabel string
	Options      []Option
}

// Metric describes one numeric filter dimension. A range equal to
// [Floor, Ceiling] is fully open and treated as unfiltered.
type Metric struct {
	Name      string
	Label     string
	Unit      string
	Tolerance float64
	Floor     float64
	Ceiling   float64
}

type Catalog struct {
	Groups  []Group
	Metrics []Metric
}

// DefaultCatalog mirrors the published viewer filter configuration.
func DefaultCatalog() Catalog {
	return Catalog{
		Groups: []Group{
			{
				Name:         GroupMaterial,
				SummaryLabel: "Material",
				Options: []Option{
					{Label: "Debris"},
					{Label: "Earth"},
					{Label: "Rock"},
					{Label: "Complex"},
					{Label: "Water"},
					{Label: "Submarine"},
				},
			},
			{
				Name:         GroupMovement,
				SummaryLabel: "Movement",
				Options: []Option{
					{Label: "Flow"},
					{Label: "Complex"},
					{Label: "Slide"},
					{Label: "Slide-Rotational"},
					{Label: "Slide-Translational"},
					{Label: "Avalanche", MatchValues: []string{"Avalance", "Avalanche"}},
					{Label: "Flood"},
					{Label: "Deformation"},
					{Label: "Topple", MatchValues: []string{"Topple", "Toppple"}},
					{Label: "Spread"},
					{Label: "Submarine"},
				},
			},
			{
				Name:         GroupConfidence,
				SummaryLabel: "Confidence",
				Options: []Option{
					{Label: "High"},
					{Label: "Medium"},
					{Label: "Low"},
				},
			},
		},
		Metrics: []Metric{
			{Name: MetricPGA, Label: "PGA (%g)", Unit: "%g", Tolerance: 0.1, Floor: 0, Ceiling: 150},
			{Name: MetricPGV, Label: "PGV (cm/s)", Unit: "cm/s", Tolerance: 0.1, Floor: 0, Ceiling: 150},
			{Name: MetricPSA03, Label: "PSA 0.3s (%g)", Unit: "%g", Tolerance: 0.1, Floor: 0, Ceiling: 300},
			{Name: MetricMMI, Label: "MMI", Unit: "", Tolerance: 0.05, Floor: 1, Ceiling: 10},
			{Name: MetricRain, Label: "Annual rain (mm)", Unit: "mm", Tolerance: 0.1, Floor: 0, Ceiling: 10000},
		},
	}
}

func (c Catalog) Group(name string) (Group, bool) {
	for _, g := range c.Groups {
		if g.Name == name {
			return g, true
		}
	}
	return Group{}, false
}

func (c Catalog) Metric(name string) (Metric, bool) {
	for _, m := range c.Metrics {
		if m.Name == name {
			return m, true
		}
	}
	return Metric{}, false
}

// Canonicalize maps selected values (canonical labels or accepted alternate
// spellings) to deduplicated canonical labels in catalog option order.
// Values matching no option are dropped.
func (g Group) Canonicalize(selected []string) []string {
	out := []string{}
	if len(selected) == 0 {
		return out
	}
	allowed := make(map[string]struct{}, len(selected))
	for _, s := range selected {
		allowed[strings.TrimSpace(s)] = struct{}{}
	}
	for _, opt := range g.Options {
		names := append([]string{opt.Label}, opt.MatchValues...)
		for _, n := range names {
			if _, ok := allowed[strings.TrimSpace(n)]; ok {
				out = append(out, opt.Label)
				break
			}
		}
	}
	return out
}
