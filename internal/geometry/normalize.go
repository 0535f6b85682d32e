package geometry

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/paulmach/orb/simplify"
)

// CleanOptions controls the post-growth cleanup.
type CleanOptions struct {
	// Grid is the snapping cell size in planar units. Zero disables snapping.
	Grid float64
	// MinArea is the smallest part kept when the shape splits into several.
	MinArea float64
	// SimplifyTolerance enables Douglas-Peucker simplification when > 0.
	SimplifyTolerance float64
}

// DefaultCleanOptions suppresses the floating-point noise left by repeated
// buffering of shapes expressed in meters.
func DefaultCleanOptions() CleanOptions {
	return CleanOptions{Grid: 0.2, MinArea: 5.0}
}

// Normalize repairs an input perimeter and merges its non-empty parts.
func Normalize(mp orb.MultiPolygon) (orb.MultiPolygon, error) {
	valid, err := MakeValid(mp)
	if err != nil {
		return nil, fmt.Errorf("normalize: %w: %w", ErrInvalidGeometry, err)
	}

	parts := make(orb.MultiPolygon, 0, len(valid))
	for _, p := range valid {
		if len(p) > 0 && planar.Area(p) > 0 {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return nil, fmt.Errorf("normalize: %w", ErrEmptyGeometry)
	}
	if len(parts) == 1 {
		return parts, nil
	}
	return Union(parts)
}

// Clean repairs, snaps and filters a grown front.
func Clean(mp orb.MultiPolygon, opts CleanOptions) (orb.MultiPolygon, error) {
	g, err := MakeValid(mp)
	if err != nil {
		return nil, fmt.Errorf("clean: repair: %w", err)
	}

	if opts.Grid > 0 {
		g, err = MakeValid(SnapToGrid(g, opts.Grid))
		if err != nil {
			return nil, fmt.Errorf("clean: snap: %w", err)
		}
	}

	if opts.SimplifyTolerance > 0 {
		g, err = MakeValid(Simplify(g, opts.SimplifyTolerance))
		if err != nil {
			return nil, fmt.Errorf("clean: simplify: %w", err)
		}
	}

	if len(g) > 1 {
		parts := make(orb.MultiPolygon, 0, len(g))
		for _, p := range g {
			if planar.Area(p) >= opts.MinArea {
				parts = append(parts, p)
			}
		}
		if len(parts) == 0 {
			parts = orb.MultiPolygon{Largest(g)}
		}
		g, err = Union(parts)
		if err != nil {
			return nil, fmt.Errorf("clean: merge parts: %w", err)
		}
	}

	if len(g) == 0 {
		return nil, fmt.Errorf("clean: %w", ErrEmptyGeometry)
	}
	return g, nil
}

// SnapToGrid rounds every coordinate to the nearest multiple of grid and
// drops rings that collapse. The result may be invalid and should be
// passed through MakeValid.
func SnapToGrid(mp orb.MultiPolygon, grid float64) orb.MultiPolygon {
	out := make(orb.MultiPolygon, 0, len(mp))
	for _, p := range mp {
		if len(p) == 0 {
			continue
		}
		outer := snapRing(p[0], grid)
		if distinctPoints(outer) < 3 {
			continue
		}
		snapped := orb.Polygon{outer}
		for _, hole := range p[1:] {
			if r := snapRing(hole, grid); distinctPoints(r) >= 3 {
				snapped = append(snapped, r)
			}
		}
		out = append(out, snapped)
	}
	return out
}

func snapRing(r orb.Ring, grid float64) orb.Ring {
	ring := make(orb.Ring, 0, len(r)+1)
	for _, pt := range r {
		s := orb.Point{snap(pt[0], grid), snap(pt[1], grid)}
		if len(ring) > 0 && ring[len(ring)-1] == s {
			continue
		}
		ring = append(ring, s)
	}
	return closeRing(ring)
}

// Simplify applies Douglas-Peucker to every ring. Like SnapToGrid it does not
// repair, so topology is restored by a following MakeValid.
func Simplify(mp orb.MultiPolygon, tolerance float64) orb.MultiPolygon {
	simplified, ok := simplify.DouglasPeucker(tolerance).Simplify(mp.Clone()).(orb.MultiPolygon)
	if !ok {
		return orb.MultiPolygon{}
	}
	out := make(orb.MultiPolygon, 0, len(simplified))
	for _, p := range simplified {
		if len(p) == 0 || distinctPoints(p[0]) < 3 {
			continue
		}
		kept := orb.Polygon{p[0]}
		for _, hole := range p[1:] {
			if distinctPoints(hole) >= 3 {
				kept = append(kept, hole)
			}
		}
		out = append(out, kept)
	}
	return out
}

func snap(v, grid float64) float64 {
	return math.Round(v/grid) * grid
}

func closeRing(r orb.Ring) orb.Ring {
	if len(r) > 0 && r[0] != r[len(r)-1] {
		r = append(r, r[0])
	}
	return r
}
