// Package projection converts between WGS-84 longitude/latitude and a planar
// spherical Web Mercator system in meters, so growth distances can be applied
// with Euclidean geometry.
package projection

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
)

const (
	// EarthRadius is the sphere radius of the Web Mercator projection, in meters.
	EarthRadius = 6378137.0

	// MaxLatitude bounds latitudes before projection to keep y finite near the poles.
	MaxLatitude = 85.05112878
)

// ToPlanar projects a geographic coordinate to planar meters.
func ToPlanar(lon, lat float64) (x, y float64) {
	lat = math.Max(math.Min(lat, MaxLatitude), -MaxLatitude)
	x = EarthRadius * radians(lon)
	y = EarthRadius * math.Log(math.Tan(math.Pi/4+radians(lat)/2))
	return x, y
}

// ToGeographic is the exact inverse of ToPlanar.
func ToGeographic(x, y float64) (lon, lat float64) {
	lon = degrees(x / EarthRadius)
	lat = degrees(2*math.Atan(math.Exp(y/EarthRadius)) - math.Pi/2)
	return lon, lat
}

// ToPlanarAll projects equal-length longitude and latitude sequences.
// Extra values in the longer slice are ignored.
func ToPlanarAll(lons, lats []float64) (xs, ys []float64) {
	n := min(len(lons), len(lats))
	xs = make([]float64, n)
	ys = make([]float64, n)
	for i := 0; i < n; i++ {
		xs[i], ys[i] = ToPlanar(lons[i], lats[i])
	}
	return xs, ys
}

// ToGeographicAll unprojects equal-length x and y sequences.
func ToGeographicAll(xs, ys []float64) (lons, lats []float64) {
	n := min(len(xs), len(ys))
	lons = make([]float64, n)
	lats = make([]float64, n)
	for i := 0; i < n; i++ {
		lons[i], lats[i] = ToGeographic(xs[i], ys[i])
	}
	return lons, lats
}

// PlanarProjection and GeographicProjection adapt the transforms to orb so
// whole geometries can be walked with orb/project.
var (
	PlanarProjection orb.Projection = func(p orb.Point) orb.Point {
		x, y := ToPlanar(p[0], p[1])
		return orb.Point{x, y}
	}
	GeographicProjection orb.Projection = func(p orb.Point) orb.Point {
		lon, lat := ToGeographic(p[0], p[1])
		return orb.Point{lon, lat}
	}
)

// MultiPolygonToPlanar returns a projected copy of a geographic multipolygon.
func MultiPolygonToPlanar(mp orb.MultiPolygon) orb.MultiPolygon {
	return project.MultiPolygon(mp.Clone(), PlanarProjection)
}

// MultiPolygonToGeographic returns an unprojected copy of a planar multipolygon.
func MultiPolygonToGeographic(mp orb.MultiPolygon) orb.MultiPolygon {
	return project.MultiPolygon(mp.Clone(), GeographicProjection)
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }

func degrees(rad float64) float64 { return rad * 180 / math.Pi }
