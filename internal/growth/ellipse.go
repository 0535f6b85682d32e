// Package growth implements the anisotropic fire-front growth operator and
// the empirical model that turns wind and slope into its ellipse.
package growth

import "math"

// Ellipse describes one growth step: semi-axes in meters and the major-axis
// orientation in mathematical degrees (counter-clockwise from east).
type Ellipse struct {
	A        float64 `json:"a_m"`
	B        float64 `json:"b_m"`
	AngleDeg float64 `json:"angle_deg"`
}

// Degenerate reports whether the ellipse produces no growth.
func (e Ellipse) Degenerate() bool {
	return e.A <= 0 || e.B <= 0
}

// Scaled returns the ellipse with both semi-axes multiplied by f.
func (e Ellipse) Scaled(f float64) Ellipse {
	return Ellipse{A: e.A * f, B: e.B * f, AngleDeg: e.AngleDeg}
}

// SpreadModel maps wind and slope to a growth ellipse.
type SpreadModel struct {
	WindCoeff  float64
	SlopeCoeff float64
}

const (
	maxWindMS     = 25.0
	forwardFactor = 1.7
	flankFactor   = 0.7
	minSemiAxis   = 0.5
)

// DefaultSpreadModel returns the calibrated coefficients.
func DefaultSpreadModel() SpreadModel {
	return SpreadModel{WindCoeff: 0.6, SlopeCoeff: 0.4}
}

// RateOfSpread returns the edge advance speed in m/s.
func (m SpreadModel) RateOfSpread(windMS, baseROSMS, slopeTan float64) float64 {
	wind := math.Max(math.Min(windMS, maxWindMS), 0)
	return baseROSMS * (1 + m.WindCoeff*wind/10) * (1 + m.SlopeCoeff*math.Max(slopeTan, 0))
}

// ComputeEllipse returns the growth ellipse for a step of dtHours. The wind
// direction follows the meteorological convention (where it blows from).
func (m SpreadModel) ComputeEllipse(dtHours, windMS, windFromDeg, baseROSMS, slopeTan float64) Ellipse {
	dist := m.RateOfSpread(windMS, baseROSMS, slopeTan) * dtHours * 3600
	return Ellipse{
		A:        math.Max(dist*forwardFactor, minSemiAxis),
		B:        math.Max(dist*flankFactor, minSemiAxis),
		AngleDeg: CompassToMath(WindFromToTowards(windFromDeg)),
	}
}

// WindFromToTowards converts a "from" bearing to the bearing the wind blows towards.
func WindFromToTowards(fromDeg float64) float64 {
	return math.Mod(math.Mod(fromDeg+180, 360)+360, 360)
}

// CompassToMath converts a compass bearing (clockwise from north) to a
// mathematical angle (counter-clockwise from east).
func CompassToMath(bearingDeg float64) float64 {
	return 90 - bearingDeg
}
