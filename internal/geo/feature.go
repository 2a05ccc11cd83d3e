package geo

// Feature pairs a resolved geometry with NOTAM properties for GeoJSON
// output. The geometry may be nil when resolution produced no result and
// the caller asked to keep unmatched records.
type Feature struct {
	Type       string         `json:"type"`
	Geometry   *Geometry      `json:"geometry"`
	Properties map[string]any `json:"properties,omitempty"`
}

// FeatureCollection is the top-level GeoJSON output of the CLI.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// NewFeature builds a GeoJSON feature.
func NewFeature(g *Geometry, props map[string]any) Feature {
	return Feature{Type: "Feature", Geometry: g, Properties: props}
}

// NewFeatureCollection builds a GeoJSON feature collection.
func NewFeatureCollection(features []Feature) FeatureCollection {
	if features == nil {
		features = []Feature{}
	}
	return FeatureCollection{Type: "FeatureCollection", Features: features}
}
