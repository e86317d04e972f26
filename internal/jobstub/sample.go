package jobstub

import "github.com/cascadia-hazards/landslide-viewer/internal/details"

// sample feature records served by the details endpoint
var sampleDetails = map[string]details.Record{
	"wa_dnr|12843": {
		Found:    true,
		Source:   "wa_dnr",
		ViewerID: "12843",
		Properties: map[string]any{
			"material":   "Debris",
			"movement":   "Flow",
			"confidence": "High",
			"pga":        34.2,
			"pgv":        18.7,
			"psa03":      61.0,
			"mmi":        7.1,
			"rain":       2310.5,
		},
	},
	"or_dogami|5517": {
		Found:    true,
		Source:   "or_dogami",
		ViewerID: "5517",
		Properties: map[string]any{
			"material":   "Rock",
			"movement":   "Slide-Rotational",
			"confidence": "Medium",
			"pga":        21.8,
			"pgv":        9.4,
			"psa03":      40.2,
			"mmi":        6.2,
			"rain":       1784.0,
		},
	},
}

const exportBody = `{"type":"FeatureCollection","features":[{"type":"Feature","geometry":{"type":"Point","coordinates":[-122.67,45.52]},"properties":{"material":"Debris","movement":"Flow","confidence":"High"}}]}`
