package growth

import (
	"fmt"

	"github.com/couchcryptid/firefront/internal/geometry"
	"github.com/paulmach/orb"
)

// Expand returns the Minkowski sum of a planar shape with the ellipse.
//
// The ellipse is reduced to a unit disk: the shape is rotated about its
// centroid so the major axis lies on x, scaled by (1/a, 1/b), buffered by one
// unit, then scaled and rotated back. The centroid is the fixed point of the
// whole chain. A degenerate ellipse returns the shape unchanged.
func Expand(mp orb.MultiPolygon, e Ellipse) (orb.MultiPolygon, error) {
	if e.Degenerate() {
		return mp, nil
	}
	if len(mp) == 0 {
		return nil, fmt.Errorf("expand: %w", geometry.ErrEmptyGeometry)
	}

	c := geometry.Centroid(mp)
	g := geometry.Rotate(mp, -e.AngleDeg, c)
	g = geometry.Scale(g, 1/e.A, 1/e.B, c)

	g, err := geometry.Buffer(g, 1, geometry.DefaultQuadSegs)
	if err != nil {
		return nil, fmt.Errorf("expand: %w", err)
	}

	g = geometry.Scale(g, e.A, e.B, c)
	g = geometry.Rotate(g, e.AngleDeg, c)

	g, err = geometry.MakeValid(g)
	if err != nil {
		return nil, fmt.Errorf("expand: repair: %w", err)
	}
	return g, nil
}
