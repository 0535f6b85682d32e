// Package geometry is the planar-geometry algebra used by the fire-front
// engine: validity repair, union and difference, round-joined isotropic
// buffering, affine transforms about an arbitrary origin, grid snapping,
// simplification and measurement, plus the Normalize/Clean steps that keep
// the hourly growth loop numerically stable.
//
// # Representation
//
// Every shape is an [orb.MultiPolygon]. A single polygon is a one-part
// multipolygon, so callers never branch on the shape kind. GeoJSON Polygon
// and MultiPolygon inputs are both accepted at the boundary ([FromGeoJSON])
// and collapsed into this one representation.
//
// # Boolean operations
//
// Union and difference delegate to polygol (a Go port of polygon-clipping).
// A union of a shape with itself rebuilds its rings, which resolves
// self-intersections and wrong ring orientation; this is how [MakeValid]
// works and it plays the role of a zero-width buffer.
//
// # Buffering
//
// [Buffer] computes the Minkowski sum of a shape with a regular polygon
// approximating a disk. The sum equals the union of the shape with one
// capsule per boundary edge (the convex hull of the disk placed at both edge
// endpoints), which only requires union and a convex hull.
package geometry
