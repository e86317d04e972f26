package filter

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

var ErrInvalidInput = errors.New("invalid filter summary")

// Payload is the flat filters object sent to the count/download job API.
// Bounds are null when a metric is unrestricted; tolerances default to 0;
// the categorical arrays are never null.
type Payload struct {
	Materials   []string `json:"materials"`
	Movements   []string `json:"movements"`
	Confidences []string `json:"confidences"`

	PGAMin   *float64 `json:"pga_min"`
	PGAMax   *float64 `json:"pga_max"`
	PGVMin   *float64 `json:"pgv_min"`
	PGVMax   *float64 `json:"pgv_max"`
	PSA03Min *float64 `json:"psa03_min"`
	PSA03Max *float64 `json:"psa03_max"`
	MMIMin   *float64 `json:"mmi_min"`
	MMIMax   *float64 `json:"mmi_max"`
	RainMin  *float64 `json:"rain_min"`
	RainMax  *float64 `json:"rain_max"`

	TolPGA   float64 `json:"tol_pga"`
	TolPGV   float64 `json:"tol_pgv"`
	TolPSA03 float64 `json:"tol_psa03"`
	TolMMI   float64 `json:"tol_mmi"`
	TolRain  float64 `json:"tol_rain"`

	SelectionGeoJSON *geojson.Geometry `json:"selection_geojson"`
}

// effectiveRange normalizes one metric's restriction: canonical tolerance
// handling plus the fully-open rule (min at or below the floor and max at
// or above the ceiling means no filter).
func effectiveRange(m Metric, r *Range) (minV, maxV *float64, tol float64) {
	if r == nil {
		return nil, nil, 0
	}
	openLow := r.Min == nil || *r.Min <= m.Floor
	openHigh := r.Max == nil || *r.Max >= m.Ceiling
	if openLow && openHigh {
		return nil, nil, 0
	}
	if r.Min != nil {
		v := *r.Min
		minV = &v
	}
	if r.Max != nil {
		v := *r.Max
		maxV = &v
	}
	tol = r.Tol
	if tol < 0 {
		tol = 0
	}
	return minV, maxV, tol
}

// TileQuery derives the vector-tile query string for a summary snapshot.
// The ts cache-buster is the only time-dependent key; everything else is a
// pure function of the summary.
func TileQuery(cat Catalog, sum *Summary, now time.Time) (string, error) {
	if sum == nil {
		return "", ErrInvalidInput
	}

	qp := url.Values{}

	setCat := func(key, group string) {
		g, ok := cat.Group(group)
		if !ok {
			return
		}
		labels := g.Canonicalize(sum.Categorical[group])
		if len(labels) > 0 {
			qp.Set(key, strings.Join(labels, ","))
		}
	}
	setCat("materials", GroupMaterial)
	setCat("movements", GroupMovement)
	setCat("confidences", GroupConfidence)

	for _, m := range cat.Metrics {
		minV, maxV, tol := effectiveRange(m, sum.Numeric[m.Name])
		if minV == nil && maxV == nil {
			continue
		}
		if minV != nil {
			qp.Set(m.Name+"_min", formatFloat(*minV))
		}
		if maxV != nil {
			qp.Set(m.Name+"_max", formatFloat(*maxV))
		}
		qp.Set("tol_"+m.Name, formatFloat(tol))
	}

	qp.Set("ts", strconv.FormatInt(now.UnixMilli(), 10))
	return qp.Encode(), nil
}

// TileURL builds a tile source URL template for the given function or table
// source, with {z}/{x}/{y} placeholders left for the map layer.
func TileURL(base, source, query string) string {
	return fmt.Sprintf("%s/%s/{z}/{x}/{y}?%s", strings.TrimRight(base, "/"), source, query)
}

// JobPayload derives the backend filters payload for a summary snapshot.
// Deterministic: the same snapshot always yields a deep-equal payload.
func JobPayload(cat Catalog, sum *Summary) (Payload, error) {
	if sum == nil {
		return Payload{}, ErrInvalidInput
	}

	p := Payload{
		Materials:   []string{},
		Movements:   []string{},
		Confidences: []string{},
	}

	if g, ok := cat.Group(GroupMaterial); ok {
		p.Materials = g.Canonicalize(sum.Categorical[GroupMaterial])
	}
	if g, ok := cat.Group(GroupMovement); ok {
		p.Movements = g.Canonicalize(sum.Categorical[GroupMovement])
	}
	if g, ok := cat.Group(GroupConfidence); ok {
		p.Confidences = g.Canonicalize(sum.Categorical[GroupConfidence])
	}

	for _, m := range cat.Metrics {
		minV, maxV, tol := effectiveRange(m, sum.Numeric[m.Name])
		switch m.Name {
		case MetricPGA:
			p.PGAMin, p.PGAMax, p.TolPGA = minV, maxV, tol
		case MetricPGV:
			p.PGVMin, p.PGVMax, p.TolPGV = minV, maxV, tol
		case MetricPSA03:
			p.PSA03Min, p.PSA03Max, p.TolPSA03 = minV, maxV, tol
		case MetricMMI:
			p.MMIMin, p.MMIMax, p.TolMMI = minV, maxV, tol
		case MetricRain:
			p.RainMin, p.RainMax, p.TolRain = minV, maxV, tol
		}
	}

	p.SelectionGeoJSON = sum.Spatial
	return p, nil
}

// Describe renders the active filters as human-readable lines for the
// download confirmation view.
func Describe(cat Catalog, sum *Summary) []string {
	if sum == nil {
		return nil
	}

	var lines []string

	for _, g := range cat.Groups {
		labels := g.Canonicalize(sum.Categorical[g.Name])
		if len(labels) > 0 {
			lines = append(lines, fmt.Sprintf("%s: %s", g.SummaryLabel, strings.Join(labels, ", ")))
		}
	}

	for _, m := range cat.Metrics {
		minV, maxV, _ := effectiveRange(m, sum.Numeric[m.Name])
		if minV == nil && maxV == nil {
			continue
		}
		lo, hi := "–", "–"
		if minV != nil {
			lo = formatFloat(*minV)
		}
		if maxV != nil {
			hi = formatFloat(*maxV)
		}
		lines = append(lines, fmt.Sprintf("%s: %s – %s", strings.ToUpper(m.Name), lo, hi))
	}

	if sum.Spatial != nil {
		if poly, ok := sum.Spatial.Geometry().(orb.Polygon); ok && len(poly) > 0 {
			b := poly.Bound()
			lines = append(lines, fmt.Sprintf("Spatial: Polygon (%.3f, %.3f → %.3f, %.3f)",
				b.Min[0], b.Min[1], b.Max[0], b.Max[1]))
		} else {
			lines = append(lines, "Spatial: Polygon selection")
		}
	}

	if len(lines) == 0 {
		return []string{"No filters applied (all landslides)."}
	}
	return lines
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
