package geometry

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// withinTolerance is the uncovered area, relative to the inner shape, that
// Within still accepts as round-off from the boolean engine.
const withinTolerance = 1e-9

// Area returns the planar area of the shape.
func Area(mp orb.MultiPolygon) float64 {
	return planar.Area(mp)
}

// Centroid returns the area-weighted centroid of the shape.
func Centroid(mp orb.MultiPolygon) orb.Point {
	c, _ := planar.CentroidArea(mp)
	return c
}

// Largest returns the part with the greatest area.
func Largest(mp orb.MultiPolygon) orb.Polygon {
	var (
		best     orb.Polygon
		bestArea = -1.0
	)
	for _, p := range mp {
		if a := planar.Area(p); a > bestArea {
			best, bestArea = p, a
		}
	}
	return best
}

// Within reports whether inner is covered by outer.
func Within(inner, outer orb.MultiPolygon) (bool, error) {
	innerArea := Area(inner)
	if innerArea == 0 {
		return true, nil
	}
	rest, err := Difference(inner, outer)
	if err != nil {
		return false, err
	}
	return Area(rest) <= withinTolerance*math.Max(innerArea, 1), nil
}

// ContainsStrict reports whether pt lies in the interior of mp. Points on
// any ring, hole boundaries included, are not contained.
func ContainsStrict(mp orb.MultiPolygon, pt orb.Point) bool {
	if !planar.MultiPolygonContains(mp, pt) {
		return false
	}
	for _, p := range mp {
		for _, r := range p {
			for i := 1; i < len(r); i++ {
				if onSegment(r[i-1], r[i], pt) {
					return false
				}
			}
		}
	}
	return true
}

func onSegment(a, b, p orb.Point) bool {
	dx, dy := b[0]-a[0], b[1]-a[1]
	length := math.Hypot(dx, dy)
	if length == 0 {
		return p == a
	}
	if math.Abs(cross(a, b, p)) > 1e-12*length*math.Max(1, math.Hypot(p[0], p[1])) {
		return false
	}
	dot := (p[0]-a[0])*dx + (p[1]-a[1])*dy
	return dot >= 0 && dot <= length*length
}
