package geometry

import (
	"math"
	"sort"

	"github.com/paulmach/orb"
)

// DefaultQuadSegs is the number of segments used per quarter circle.
const DefaultQuadSegs = 16

// Buffer grows a shape by radius with round joins and caps. The disk is
// approximated by a regular polygon with 4*quadSegs vertices. A non-positive
// radius only repairs the shape.
func Buffer(mp orb.MultiPolygon, radius float64, quadSegs int) (orb.MultiPolygon, error) {
	if radius <= 0 {
		return MakeValid(mp)
	}
	if quadSegs < 1 {
		quadSegs = DefaultQuadSegs
	}

	disk := diskOffsets(radius, quadSegs)
	shapes := []orb.MultiPolygon{mp}
	for _, p := range mp {
		for _, r := range p {
			for i := 1; i < len(r); i++ {
				if r[i-1] == r[i] {
					continue
				}
				shapes = append(shapes, orb.MultiPolygon{{capsule(r[i-1], r[i], disk)}})
			}
		}
	}
	return Union(shapes...)
}

func diskOffsets(radius float64, quadSegs int) []orb.Point {
	n := 4 * quadSegs
	pts := make([]orb.Point, n)
	for k := 0; k < n; k++ {
		theta := 2 * math.Pi * float64(k) / float64(n)
		pts[k] = orb.Point{radius * math.Cos(theta), radius * math.Sin(theta)}
	}
	return pts
}

// capsule is the Minkowski sum of segment ab with the disk polygon.
func capsule(a, b orb.Point, disk []orb.Point) orb.Ring {
	pts := make([]orb.Point, 0, 2*len(disk))
	for _, d := range disk {
		pts = append(pts,
			orb.Point{a[0] + d[0], a[1] + d[1]},
			orb.Point{b[0] + d[0], b[1] + d[1]},
		)
	}
	return convexHull(pts)
}

// convexHull returns the closed counter-clockwise hull of pts using the
// monotone chain algorithm.
func convexHull(pts []orb.Point) orb.Ring {
	sort.Slice(pts, func(i, j int) bool {
		if pts[i][0] != pts[j][0] {
			return pts[i][0] < pts[j][0]
		}
		return pts[i][1] < pts[j][1]
	})

	hull := make([]orb.Point, 0, len(pts)+1)
	for _, p := range pts {
		for len(hull) >= 2 && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	lower := len(hull) + 1
	for i := len(pts) - 2; i >= 0; i-- {
		p := pts[i]
		for len(hull) >= lower && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	// The last point equals the first, which closes the ring.
	return orb.Ring(hull)
}

func cross(o, a, b orb.Point) float64 {
	return (a[0]-o[0])*(b[1]-o[1]) - (a[1]-o[1])*(b[0]-o[0])
}
