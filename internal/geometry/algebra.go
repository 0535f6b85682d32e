package geometry

import (
	"fmt"

	"github.com/engelsjk/polygol"
	"github.com/paulmach/orb"
)

// MakeValid rebuilds a shape through a self-union. Overlapping parts are
// merged, self-intersecting rings are split, and rings are reoriented.
func MakeValid(mp orb.MultiPolygon) (orb.MultiPolygon, error) {
	return Union(mp)
}

// Union merges all parts of all given shapes.
func Union(shapes ...orb.MultiPolygon) (orb.MultiPolygon, error) {
	geoms := make([]polygol.Geom, 0, len(shapes))
	for _, mp := range shapes {
		geoms = append(geoms, polygonGeoms(mp)...)
	}
	if len(geoms) == 0 {
		return orb.MultiPolygon{}, nil
	}

	out, err := polygol.Union(geoms[0], geoms[1:]...)
	if err != nil {
		return nil, fmt.Errorf("union: %w", err)
	}
	return fromGeom(out), nil
}

// Difference returns the part of a not covered by b.
func Difference(a, b orb.MultiPolygon) (orb.MultiPolygon, error) {
	subject := toGeom(a)
	if len(subject) == 0 {
		return orb.MultiPolygon{}, nil
	}
	clips := polygonGeoms(b)
	if len(clips) == 0 {
		return MakeValid(a)
	}

	out, err := polygol.Difference(subject, clips...)
	if err != nil {
		return nil, fmt.Errorf("difference: %w", err)
	}
	return fromGeom(out), nil
}

// polygonGeoms splits a shape into one polygol geometry per polygon, so
// parts that overlap each other are unioned rather than treated as one
// self-overlapping multipolygon.
func polygonGeoms(mp orb.MultiPolygon) []polygol.Geom {
	geoms := make([]polygol.Geom, 0, len(mp))
	for _, p := range mp {
		if g := toGeom(orb.MultiPolygon{p}); len(g) > 0 {
			geoms = append(geoms, g)
		}
	}
	return geoms
}

func toGeom(mp orb.MultiPolygon) polygol.Geom {
	geom := make(polygol.Geom, 0, len(mp))
	for _, p := range mp {
		if len(p) == 0 || distinctPoints(p[0]) < 3 {
			continue
		}
		poly := make([][][]float64, 0, len(p))
		for _, r := range p {
			if distinctPoints(r) < 3 {
				continue
			}
			ring := make([][]float64, len(r))
			for i, pt := range r {
				ring[i] = []float64{pt[0], pt[1]}
			}
			poly = append(poly, ring)
		}
		geom = append(geom, poly)
	}
	return geom
}

func fromGeom(geom polygol.Geom) orb.MultiPolygon {
	mp := make(orb.MultiPolygon, 0, len(geom))
	for _, poly := range geom {
		p := make(orb.Polygon, 0, len(poly))
		for _, ring := range poly {
			r := make(orb.Ring, 0, len(ring)+1)
			for _, c := range ring {
				r = append(r, orb.Point{c[0], c[1]})
			}
			if len(r) > 0 && r[0] != r[len(r)-1] {
				r = append(r, r[0])
			}
			if distinctPoints(r) < 3 {
				continue
			}
			p = append(p, r)
		}
		if len(p) > 0 {
			mp = append(mp, p)
		}
	}
	return mp
}

// distinctPoints counts ring vertices, ignoring the closing point and
// consecutive duplicates.
func distinctPoints(r orb.Ring) int {
	n := 0
	for i, pt := range r {
		if i > 0 && pt == r[i-1] {
			continue
		}
		n++
	}
	if n > 1 && r[0] == r[len(r)-1] {
		n--
	}
	return n
}
