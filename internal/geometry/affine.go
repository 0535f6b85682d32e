package geometry

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
)

// Rotate returns a copy of mp rotated counter-clockwise by angleDeg about origin.
func Rotate(mp orb.MultiPolygon, angleDeg float64, origin orb.Point) orb.MultiPolygon {
	sin, cos := math.Sincos(angleDeg * math.Pi / 180)
	return project.MultiPolygon(mp.Clone(), func(p orb.Point) orb.Point {
		dx, dy := p[0]-origin[0], p[1]-origin[1]
		return orb.Point{
			origin[0] + dx*cos - dy*sin,
			origin[1] + dx*sin + dy*cos,
		}
	})
}

// Scale returns a copy of mp scaled by (fx, fy) about origin.
func Scale(mp orb.MultiPolygon, fx, fy float64, origin orb.Point) orb.MultiPolygon {
	return project.MultiPolygon(mp.Clone(), func(p orb.Point) orb.Point {
		return orb.Point{
			origin[0] + (p[0]-origin[0])*fx,
			origin[1] + (p[1]-origin[1])*fy,
		}
	})
}
