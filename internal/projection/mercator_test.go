package projection

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToPlanar_KnownValues(t *testing.T) {
	x, y := ToPlanar(0, 0)
	assert.InDelta(t, 0, x, 1e-9)
	assert.InDelta(t, 0, y, 1e-9)

	x, _ = ToPlanar(180, 0)
	assert.InDelta(t, math.Pi*EarthRadius, x, 1e-6)

	// At the clamp latitude the y extent matches the x extent (square world).
	_, y = ToPlanar(0, MaxLatitude)
	assert.InDelta(t, math.Pi*EarthRadius, y, 1.0)
}

func TestToPlanar_ClampsLatitude(t *testing.T) {
	_, yMax := ToPlanar(0, MaxLatitude)
	_, yPole := ToPlanar(0, 90)
	_, ySouth := ToPlanar(0, -90)

	assert.False(t, math.IsInf(yPole, 0))
	assert.InDelta(t, yMax, yPole, 1e-6)
	assert.InDelta(t, -yMax, ySouth, 1e-6)
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		lon, lat float64
	}{
		{"origin", 0, 0},
		{"toulouse", 1.4, 43.6},
		{"southern hemisphere", -70.65, -33.45},
		{"high latitude", 25.0, 84.9},
		{"antimeridian", 179.999, -12.5},
		{"near south clamp", -45, -85.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y := ToPlanar(tt.lon, tt.lat)
			lon, lat := ToGeographic(x, y)
			assert.InDelta(t, tt.lon, lon, 1e-6)
			assert.InDelta(t, tt.lat, lat, 1e-6)
		})
	}
}

func TestVectorized(t *testing.T) {
	lons := []float64{1.4, 1.406, 1.406}
	lats := []float64{43.6, 43.6, 43.6045}

	xs, ys := ToPlanarAll(lons, lats)
	require.Len(t, xs, 3)
	require.Len(t, ys, 3)

	for i := range lons {
		x, y := ToPlanar(lons[i], lats[i])
		assert.Equal(t, x, xs[i])
		assert.Equal(t, y, ys[i])
	}

	backLons, backLats := ToGeographicAll(xs, ys)
	for i := range lons {
		assert.InDelta(t, lons[i], backLons[i], 1e-9)
		assert.InDelta(t, lats[i], backLats[i], 1e-9)
	}
}

func TestMultiPolygonProjection_DoesNotMutateInput(t *testing.T) {
	geo := orb.MultiPolygon{{{{1.4, 43.6}, {1.406, 43.6}, {1.406, 43.6045}, {1.4, 43.6045}, {1.4, 43.6}}}}

	planar := MultiPolygonToPlanar(geo)
	assert.Equal(t, 1.4, geo[0][0][0][0], "input must be left untouched")
	assert.Greater(t, planar[0][0][0][0], 1000.0)

	back := MultiPolygonToGeographic(planar)
	for i, p := range geo[0][0] {
		assert.InDelta(t, p[0], back[0][0][i][0], 1e-9)
		assert.InDelta(t, p[1], back[0][0][i][1], 1e-9)
	}
}
