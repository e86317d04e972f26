package jobstub

import (
	"math"

	"github.com/cascadia-hazards/landslide-viewer/internal/filter"
)

// size of the simulated inventory
const datasetSize = 48211

// simulateCount produces a plausible, deterministic match count for a
// filters payload: each restriction shrinks the simulated result set.
func simulateCount(p filter.Payload) int64 {
	frac := 1.0

	if n := len(p.Materials); n > 0 {
		frac *= float64(n) / 6
	}
	if n := len(p.Movements); n > 0 {
		frac *= float64(n) / 11
	}
	if n := len(p.Confidences); n > 0 {
		frac *= float64(n) / 3
	}

	ranges := [][2]*float64{
		{p.PGAMin, p.PGAMax},
		{p.PGVMin, p.PGVMax},
		{p.PSA03Min, p.PSA03Max},
		{p.MMIMin, p.MMIMax},
		{p.RainMin, p.RainMax},
	}
	for _, r := range ranges {
		if r[0] != nil || r[1] != nil {
			frac *= 0.6
		}
	}

	if p.SelectionGeoJSON != nil {
		frac *= 0.25
	}

	return int64(math.Round(datasetSize * frac))
}
