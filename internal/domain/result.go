package domain

import (
	"github.com/couchcryptid/firefront/internal/geometry"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// MeteoSource identifies the hourly wind source in response metadata.
const MeteoSource = "open-meteo:forecast"

// Front is the fire perimeter, in lon/lat, after a number of hours.
type Front struct {
	Hour     int
	Geometry orb.MultiPolygon
}

// Meta carries the resolved inputs and any recovered provider failures.
type Meta struct {
	RunID                 string        `json:"run_id,omitempty"`
	UseDEM                bool          `json:"use_dem"`
	UseMeteo              bool          `json:"use_meteo"`
	MeteoSource           string        `json:"meteo_source"`
	SlopeTanUsed          float64       `json:"slope_tan_used"`
	AccumulationEffective bool          `json:"accumulation_effective"`
	SlopeFromDEMMean      *float64      `json:"slope_from_dem_mean,omitempty"`
	SlopeFromDEMP90       *float64      `json:"slope_from_dem_p90,omitempty"`
	NPointsDEM            *int          `json:"n_points_dem,omitempty"`
	GridDEM               []int         `json:"grid_dem,omitempty"`
	MeteoPreview          []WindPreview `json:"meteo_preview,omitempty"`
	DEMError              string        `json:"dem_error,omitempty"`
	MeteoError            string        `json:"meteo_error,omitempty"`
}

// Result is the ordered front sequence of one run.
type Result struct {
	Fronts []Front
	Meta   Meta
}

// FeatureCollection is the GeoJSON response body with a foreign "meta" member.
type FeatureCollection struct {
	Type     string             `json:"type"`
	Features []*geojson.Feature `json:"features"`
	Meta     Meta               `json:"meta"`
}

// FeatureCollection renders one feature per hour, in hour order.
func (r Result) FeatureCollection() FeatureCollection {
	features := make([]*geojson.Feature, 0, len(r.Fronts))
	for _, f := range r.Fronts {
		feature := geojson.NewFeature(geometry.ToGeoJSON(f.Geometry))
		feature.Properties["hour"] = f.Hour
		features = append(features, feature)
	}
	return FeatureCollection{
		Type:     "FeatureCollection",
		Features: features,
		Meta:     r.Meta,
	}
}

// SelfCheckReport is the outcome of the built-in growth sanity check.
type SelfCheckReport struct {
	AreaIncreasing bool      `json:"area_increasing"`
	Nested         bool      `json:"nested"`
	AreasM2        []float64 `json:"areas_m2"`
}

// Passed reports whether both invariants hold.
func (r SelfCheckReport) Passed() bool {
	return r.AreaIncreasing && r.Nested
}
