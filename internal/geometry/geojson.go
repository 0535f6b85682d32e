package geometry

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// FromGeoJSON decodes a GeoJSON Polygon or MultiPolygon, bare or wrapped in
// a Feature, into a multipolygon.
func FromGeoJSON(raw []byte) (orb.MultiPolygon, error) {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidGeometry, err)
	}

	var g orb.Geometry
	switch probe.Type {
	case "Feature":
		f, err := geojson.UnmarshalFeature(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidGeometry, err)
		}
		g = f.Geometry
	default:
		geom, err := geojson.UnmarshalGeometry(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidGeometry, err)
		}
		g = geom.Geometry()
	}

	var mp orb.MultiPolygon
	switch v := g.(type) {
	case orb.Polygon:
		mp = orb.MultiPolygon{v}
	case orb.MultiPolygon:
		mp = v
	default:
		return nil, fmt.Errorf("%w: expected Polygon or MultiPolygon, got %q", ErrInvalidGeometry, probe.Type)
	}

	if err := checkCoordinates(mp); err != nil {
		return nil, err
	}
	return mp, nil
}

// ToGeoJSON returns the boundary form of a shape: a Polygon when it has one
// part, a MultiPolygon otherwise.
func ToGeoJSON(mp orb.MultiPolygon) orb.Geometry {
	if len(mp) == 1 {
		return mp[0]
	}
	return mp
}

func checkCoordinates(mp orb.MultiPolygon) error {
	if len(mp) == 0 {
		return fmt.Errorf("%w: no polygons", ErrInvalidGeometry)
	}
	for _, p := range mp {
		if len(p) == 0 {
			return fmt.Errorf("%w: polygon without rings", ErrInvalidGeometry)
		}
		for _, r := range p {
			if len(r) < 3 {
				return fmt.Errorf("%w: ring with %d positions", ErrInvalidGeometry, len(r))
			}
			for _, pt := range r {
				if math.IsNaN(pt[0]) || math.IsNaN(pt[1]) || math.IsInf(pt[0], 0) || math.IsInf(pt[1], 0) {
					return fmt.Errorf("%w: non-finite coordinate", ErrInvalidGeometry)
				}
			}
		}
	}
	return nil
}
