package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/paulmach/orb/geojson"
	"github.com/spf13/cobra"

	"github.com/cascadia-hazards/landslide-viewer/internal/core/config"
	"github.com/cascadia-hazards/landslide-viewer/internal/filter"
)

type app struct {
	cfg config.Config
	log *slog.Logger

	materials   []string
	movements   []string
	confidences []string
	ranges      map[string]*string
	selection   string
}

func (a *app) registerFilterFlags(root *cobra.Command) {
	pf := root.PersistentFlags()
	pf.StringSliceVar(&a.materials, "material", nil, "material class filter (repeatable)")
	pf.StringSliceVar(&a.movements, "movement", nil, "movement type filter (repeatable)")
	pf.StringSliceVar(&a.confidences, "confidence", nil, "mapping confidence filter (repeatable)")

	a.ranges = map[string]*string{}
	for _, m := range filter.DefaultCatalog().Metrics {
		v := ""
		a.ranges[m.Name] = &v
		pf.StringVar(a.ranges[m.Name], m.Name, "", fmt.Sprintf("%s range as min:max, either side open", m.Label))
	}

	pf.StringVar(&a.selection, "selection", "", "path to a GeoJSON polygon spatial selection")
}

// buildState assembles the filter state from the CLI flags, the same way
// the panel's Apply action would.
func (a *app) buildState() (*filter.State, error) {
	st := filter.NewState(filter.DefaultCatalog())

	numeric := map[string]filter.Bounds{}
	for name, raw := range a.ranges {
		if raw == nil || *raw == "" {
			continue
		}
		b, err := parseBounds(*raw)
		if err != nil {
			return nil, fmt.Errorf("--%s: %w", name, err)
		}
		numeric[name] = b
	}

	st.Apply(map[string][]string{
		filter.GroupMaterial:   a.materials,
		filter.GroupMovement:   a.movements,
		filter.GroupConfidence: a.confidences,
	}, numeric)

	if a.selection != "" {
		buf, err := os.ReadFile(a.selection)
		if err != nil {
			return nil, fmt.Errorf("read selection: %w", err)
		}
		geom, err := geojson.UnmarshalGeometry(buf)
		if err != nil {
			return nil, fmt.Errorf("parse selection: %w", err)
		}
		st.SetSpatial(geom)
	}
	return st, nil
}

// parseBounds reads "min:max"; an empty side leaves that bound open.
func parseBounds(raw string) (filter.Bounds, error) {
	parts := strings.SplitN(raw, ":", 2)
	if len(parts) != 2 {
		return filter.Bounds{}, fmt.Errorf("expected min:max, got %q", raw)
	}
	var b filter.Bounds
	if s := strings.TrimSpace(parts[0]); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return filter.Bounds{}, fmt.Errorf("min: %w", err)
		}
		b.Min = &v
	}
	if s := strings.TrimSpace(parts[1]); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return filter.Bounds{}, fmt.Errorf("max: %w", err)
		}
		b.Max = &v
	}
	if b.Min == nil && b.Max == nil {
		return filter.Bounds{}, fmt.Errorf("at least one bound is required")
	}
	return b, nil
}
