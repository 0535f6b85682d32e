package domain

import (
	"encoding/json"

	"github.com/paulmach/orb"
)

// Request defaults.
const (
	DefaultHours     = 12
	DefaultWindMS    = 6.0
	DefaultWindDeg   = 0.0
	DefaultBaseROSMS = 0.02
	DefaultSlopeTan  = 0.05
)

// SimulationRequest is the wire form of a simulation, shared by the HTTP API
// and the Kafka source topic. Omitted numeric fields take the defaults above.
// Hours may be sent as any JSON number and is truncated toward zero. Wind
// speed is not range checked here; the spread model clamps it.
type SimulationRequest struct {
	ID         string          `json:"id,omitempty" validate:"omitempty,max=128"`
	Perimeter  json.RawMessage `json:"perimeter" validate:"required"`
	Hours      *float64        `json:"hours,omitempty" validate:"omitempty,gte=1,lt=241"`
	WindMS     *float64        `json:"wind_ms,omitempty"`
	WindDeg    *float64        `json:"wind_deg,omitempty"`
	BaseROSMS  *float64        `json:"base_ros_ms,omitempty" validate:"omitempty,gte=0"`
	SlopeTan   *float64        `json:"slope_tan,omitempty"`
	Accumulate Flag            `json:"accumulate,omitempty"`
	UseDEM     Flag            `json:"use_dem,omitempty"`
	UseMeteo   Flag            `json:"use_meteo,omitempty"`
}

// SimulationConfig is a fully resolved simulation run.
type SimulationConfig struct {
	RunID       string
	Perimeter   orb.MultiPolygon // geographic, lon/lat
	Hours       int
	WindMS      float64
	WindFromDeg float64
	BaseROSMS   float64
	SlopeTan    float64
	Accumulate  bool
	UseDEM      bool
	UseMeteo    bool
}

// Config applies defaults and attaches the decoded perimeter.
func (r SimulationRequest) Config(perimeter orb.MultiPolygon) SimulationConfig {
	return SimulationConfig{
		RunID:       r.ID,
		Perimeter:   perimeter,
		Hours:       int(valueOr(r.Hours, DefaultHours)),
		WindMS:      valueOr(r.WindMS, DefaultWindMS),
		WindFromDeg: valueOr(r.WindDeg, DefaultWindDeg),
		BaseROSMS:   valueOr(r.BaseROSMS, DefaultBaseROSMS),
		SlopeTan:    valueOr(r.SlopeTan, DefaultSlopeTan),
		Accumulate:  bool(r.Accumulate),
		UseDEM:      bool(r.UseDEM),
		UseMeteo:    bool(r.UseMeteo),
	}
}

func valueOr[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}
