package simulation

import (
	"context"
	"fmt"

	"github.com/couchcryptid/firefront/internal/domain"
	"github.com/couchcryptid/firefront/internal/geometry"
	"github.com/couchcryptid/firefront/internal/projection"
	"github.com/paulmach/orb"
)

const selfCheckHours = 4

// SelfCheckPerimeter is the square grown by SelfCheck, in lon/lat.
func SelfCheckPerimeter() orb.MultiPolygon {
	return orb.MultiPolygon{{{
		{1.4, 43.6}, {1.406, 43.6}, {1.406, 43.6045}, {1.4, 43.6045}, {1.4, 43.6},
	}}}
}

// SelfCheck grows a fixed square for four hours without wind or slope and
// verifies that every front is strictly larger than, and contains, the one
// before it. Areas are planar square meters.
func (s *Simulator) SelfCheck(ctx context.Context) (domain.SelfCheckReport, error) {
	perimeter, err := geometry.Normalize(SelfCheckPerimeter())
	if err != nil {
		return domain.SelfCheckReport{}, fmt.Errorf("self-check perimeter: %w", err)
	}
	base, err := geometry.Clean(projection.MultiPolygonToPlanar(perimeter), s.opts.Clean)
	if err != nil {
		return domain.SelfCheckReport{}, fmt.Errorf("self-check perimeter: %w", err)
	}

	cfg := domain.SimulationConfig{
		Hours:      selfCheckHours,
		BaseROSMS:  domain.DefaultBaseROSMS,
		Accumulate: true,
	}
	fronts, _, err := s.grow(ctx, base, cfg, 0, nil)
	if err != nil {
		return domain.SelfCheckReport{}, fmt.Errorf("self-check growth: %w", err)
	}

	report := domain.SelfCheckReport{
		AreaIncreasing: true,
		Nested:         true,
		AreasM2:        make([]float64, len(fronts)),
	}
	for i, f := range fronts {
		report.AreasM2[i] = geometry.Area(f)
		if i == 0 {
			continue
		}
		if report.AreasM2[i] <= report.AreasM2[i-1] {
			report.AreaIncreasing = false
		}
		within, err := geometry.Within(fronts[i-1], f)
		if err != nil {
			return domain.SelfCheckReport{}, fmt.Errorf("self-check nesting: %w", err)
		}
		if !within {
			report.Nested = false
		}
	}

	s.logger.Info("self-check complete",
		"passed", report.Passed(),
		"area_increasing", report.AreaIncreasing,
		"nested", report.Nested,
	)
	return report, nil
}
