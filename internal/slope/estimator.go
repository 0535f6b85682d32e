// Package slope estimates terrain slope inside a perimeter from sampled
// elevations.
package slope

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/couchcryptid/firefront/internal/domain"
	"github.com/couchcryptid/firefront/internal/geometry"
	"github.com/paulmach/orb"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"
)

// ErrNoData is returned when no grid point inside the perimeter has a
// finite elevation and slope.
var ErrNoData = errors.New("no valid DEM points inside polygon")

// Options controls grid sizing and request batching.
type Options struct {
	TargetSpacingM float64
	MaxPoints      int
	BatchSize      int
	Concurrency    int
}

// DefaultOptions returns the sampling parameters used by the service.
func DefaultOptions() Options {
	return Options{
		TargetSpacingM: 300,
		MaxPoints:      400,
		BatchSize:      100,
		Concurrency:    4,
	}
}

// Estimator samples a regular lon/lat grid over the perimeter bounds and
// summarizes the slope tangent at the points strictly inside it.
type Estimator struct {
	provider domain.ElevationProvider
	opts     Options
	logger   *slog.Logger
}

// NewEstimator creates an estimator backed by the given elevation provider.
func NewEstimator(provider domain.ElevationProvider, opts Options, logger *slog.Logger) *Estimator {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultOptions().BatchSize
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	return &Estimator{provider: provider, opts: opts, logger: logger}
}

// EstimateSlope returns the mean and 90th percentile slope tangent of the
// perimeter, which must be in lon/lat.
func (e *Estimator) EstimateSlope(ctx context.Context, perimeter orb.MultiPolygon) (domain.SlopeEstimate, error) {
	bound := perimeter.Bound()
	latC := (bound.Min.Lat() + bound.Max.Lat()) / 2
	mLon, mLat := MetersPerDegree(latC)

	widthM := math.Max((bound.Max.Lon()-bound.Min.Lon())*mLon, 1)
	heightM := math.Max((bound.Max.Lat()-bound.Min.Lat())*mLat, 1)
	nx, ny := GridSize(widthM, heightM, e.opts.TargetSpacingM, e.opts.MaxPoints)

	lons := linspace(bound.Min.Lon(), bound.Max.Lon(), nx)
	lats := linspace(bound.Min.Lat(), bound.Max.Lat(), ny)

	points := make([]domain.LatLon, 0, nx*ny)
	for _, lat := range lats {
		for _, lon := range lons {
			points = append(points, domain.LatLon{Lat: lat, Lon: lon})
		}
	}

	e.logger.Debug("sampling elevation grid", "nx", nx, "ny", ny, "points", len(points))

	z, err := e.fetch(ctx, points)
	if err != nil {
		return domain.SlopeEstimate{}, err
	}

	dx := 1.0
	if nx > 1 {
		dx = (lons[1] - lons[0]) * mLon
	}
	dy := 1.0
	if ny > 1 {
		dy = (lats[1] - lats[0]) * mLat
	}
	dzdy, dzdx := gradient(z, nx, ny, dx, dy)

	var vals []float64
	for j, lat := range lats {
		for i, lon := range lons {
			k := j*nx + i
			s := math.Hypot(dzdx[k], dzdy[k])
			if math.IsNaN(s) || math.IsInf(s, 0) || math.IsNaN(z[k]) || math.IsInf(z[k], 0) {
				continue
			}
			if !geometry.ContainsStrict(perimeter, orb.Point{lon, lat}) {
				continue
			}
			vals = append(vals, s)
		}
	}
	if len(vals) == 0 {
		return domain.SlopeEstimate{}, ErrNoData
	}

	return domain.SlopeEstimate{
		Mean:    stat.Mean(vals, nil),
		P90:     percentile(vals, 90),
		NPoints: nx * ny,
		Grid:    [2]int{ny, nx},
	}, nil
}

// fetch queries elevations in fixed-size batches with bounded concurrency.
// Each batch writes its own slice window, so completion order is irrelevant.
func (e *Estimator) fetch(ctx context.Context, points []domain.LatLon) ([]float64, error) {
	z := make([]float64, len(points))
	for i := range z {
		z[i] = math.NaN()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Concurrency)
	for start := 0; start < len(points); start += e.opts.BatchSize {
		end := min(start+e.opts.BatchSize, len(points))
		g.Go(func() error {
			heights, err := e.provider.Elevations(gctx, points[start:end])
			if err != nil {
				return fmt.Errorf("elevation batch %d-%d: %w", start, end, err)
			}
			copy(z[start:end], heights)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return z, nil
}

// MetersPerDegree returns the WGS-84 length of one degree of longitude and of
// latitude at the given latitude.
func MetersPerDegree(latDeg float64) (lon, lat float64) {
	r := latDeg * math.Pi / 180
	lat = 111132.92 - 559.82*math.Cos(2*r) + 1.175*math.Cos(4*r)
	lon = 111412.84*math.Cos(r) - 93.5*math.Cos(3*r)
	return lon, lat
}

// GridSize picks the sample grid dimensions for an extent in meters. Both
// dimensions are at least 3; while the point count exceeds maxPoints both are
// shrunk by 10%.
func GridSize(widthM, heightM, spacingM float64, maxPoints int) (nx, ny int) {
	nx = max(3, int(math.RoundToEven(widthM/spacingM))+1)
	ny = max(3, int(math.RoundToEven(heightM/spacingM))+1)
	for nx*ny > maxPoints && (nx > 3 || ny > 3) {
		nx = max(3, int(float64(nx)*0.9))
		ny = max(3, int(float64(ny)*0.9))
	}
	return nx, ny
}

func linspace(start, stop float64, n int) []float64 {
	out := make([]float64, n)
	if n == 1 {
		out[0] = start
		return out
	}
	step := (stop - start) / float64(n-1)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	out[n-1] = stop
	return out
}

// gradient returns the partial derivatives of a row-major ny×nx field along
// rows (y) and columns (x): central differences inside, one-sided at edges.
// NaN inputs propagate to their neighbours.
func gradient(z []float64, nx, ny int, dx, dy float64) (dzdy, dzdx []float64) {
	dzdx = make([]float64, len(z))
	dzdy = make([]float64, len(z))
	at := func(j, i int) float64 { return z[j*nx+i] }

	for j := range ny {
		for i := range nx {
			k := j*nx + i
			switch {
			case nx < 2:
				dzdx[k] = 0
			case i == 0:
				dzdx[k] = (at(j, 1) - at(j, 0)) / dx
			case i == nx-1:
				dzdx[k] = (at(j, nx-1) - at(j, nx-2)) / dx
			default:
				dzdx[k] = (at(j, i+1) - at(j, i-1)) / (2 * dx)
			}
			switch {
			case ny < 2:
				dzdy[k] = 0
			case j == 0:
				dzdy[k] = (at(1, i) - at(0, i)) / dy
			case j == ny-1:
				dzdy[k] = (at(ny-1, i) - at(ny-2, i)) / dy
			default:
				dzdy[k] = (at(j+1, i) - at(j-1, i)) / (2 * dy)
			}
		}
	}
	return dzdy, dzdx
}

// percentile uses linear interpolation between closest ranks.
func percentile(vals []float64, p float64) float64 {
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	pos := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := min(lo+1, len(sorted)-1)
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}
