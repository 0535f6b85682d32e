package domain

import (
	"context"
	"time"

	"github.com/paulmach/orb"
)

// LatLon is a WGS-84 coordinate in the order elevation services expect.
type LatLon struct {
	Lat float64
	Lon float64
}

// ElevationProvider returns terrain heights for a batch of points. Points
// without data come back as NaN; the result has the same length as points.
type ElevationProvider interface {
	Elevations(ctx context.Context, points []LatLon) ([]float64, error)
}

// SlopeEstimate summarizes terrain slope inside a perimeter.
type SlopeEstimate struct {
	Mean    float64 `json:"mean"`
	P90     float64 `json:"p90"`
	NPoints int     `json:"n_points"`
	Grid    [2]int  `json:"grid"` // [rows (latitude), cols (longitude)]
}

// SlopeEstimator derives a slope estimate for a geographic perimeter.
type SlopeEstimator interface {
	EstimateSlope(ctx context.Context, perimeter orb.MultiPolygon) (SlopeEstimate, error)
}

// WindPreview is one diagnostic row of an hourly wind series.
type WindPreview struct {
	Time    time.Time `json:"t"`
	SpeedMS float64   `json:"ws_ms"`
	FromDeg float64   `json:"wd_deg"`
}

// WindSeries holds per-hour wind aligned to the current hour. Directions use
// the meteorological "from" convention.
type WindSeries struct {
	Speeds     []float64
	Directions []float64
	Preview    []WindPreview
}

// WindProvider supplies hourly wind for a location.
type WindProvider interface {
	HourlyWind(ctx context.Context, lat, lon float64, hours int, timezone string) (WindSeries, error)
}
