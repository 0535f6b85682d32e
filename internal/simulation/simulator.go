// Package simulation orchestrates a fire-front run: perimeter repair, optional
// terrain and weather lookups with graceful fallback, and hour-by-hour growth
// in planar meters.
package simulation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/firefront/internal/domain"
	"github.com/couchcryptid/firefront/internal/geometry"
	"github.com/couchcryptid/firefront/internal/growth"
	"github.com/couchcryptid/firefront/internal/observability"
	"github.com/couchcryptid/firefront/internal/projection"
	"github.com/google/uuid"
	"github.com/paulmach/orb"
)

// Growth modes, also used as metric labels.
const (
	ModeConstant   = "constant"
	ModeAccumulate = "accumulate"
	ModeVariable   = "variable"
)

const previewLen = 6

var (
	errNoElevationProvider = errors.New("elevation provider not configured")
	errNoWindProvider      = errors.New("wind provider not configured")
)

// Options tunes the orchestrator.
type Options struct {
	Timezone string
	Model    growth.SpreadModel
	Clean    geometry.CleanOptions
}

// DefaultOptions returns the service defaults.
func DefaultOptions() Options {
	return Options{
		Timezone: "Europe/Paris",
		Model:    growth.DefaultSpreadModel(),
		Clean:    geometry.DefaultCleanOptions(),
	}
}

// Simulator runs simulations. Providers may be nil; a run that asks for a
// missing provider records the fallback in its metadata.
type Simulator struct {
	slope   domain.SlopeEstimator
	wind    domain.WindProvider
	opts    Options
	metrics *observability.Metrics
	logger  *slog.Logger
}

// New creates a Simulator.
func New(slope domain.SlopeEstimator, wind domain.WindProvider, opts Options, metrics *observability.Metrics, logger *slog.Logger) *Simulator {
	return &Simulator{
		slope:   slope,
		wind:    wind,
		opts:    opts,
		metrics: metrics,
		logger:  logger,
	}
}

// Run executes one simulation and returns one front per hour, in lon/lat.
func (s *Simulator) Run(ctx context.Context, cfg domain.SimulationConfig) (domain.Result, error) {
	start := time.Now()
	runID := cfg.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	logger := s.logger.With("run_id", runID)

	mode := ModeConstant
	fronts, meta, err := s.run(ctx, cfg, logger, &mode)
	outcome := "success"
	switch {
	case errors.Is(err, geometry.ErrInvalidGeometry), errors.Is(err, geometry.ErrEmptyGeometry):
		outcome = "invalid"
	case err != nil:
		outcome = "error"
	}
	s.metrics.Simulations.WithLabelValues(mode, outcome).Inc()
	s.metrics.SimulationDuration.WithLabelValues(mode).Observe(time.Since(start).Seconds())
	if err != nil {
		logger.Warn("simulation failed", "mode", mode, "error", err)
		return domain.Result{}, err
	}

	s.metrics.FrontsProduced.Add(float64(len(fronts)))
	meta.RunID = runID
	logger.Info("simulation complete",
		"mode", mode,
		"hours", cfg.Hours,
		"slope_tan_used", meta.SlopeTanUsed,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return domain.Result{Fronts: fronts, Meta: meta}, nil
}

func (s *Simulator) run(ctx context.Context, cfg domain.SimulationConfig, logger *slog.Logger, mode *string) ([]domain.Front, domain.Meta, error) {
	perimeter, err := geometry.Normalize(cfg.Perimeter)
	if err != nil {
		return nil, domain.Meta{}, fmt.Errorf("normalize perimeter: %w", err)
	}

	meta := domain.Meta{
		UseDEM:       cfg.UseDEM,
		UseMeteo:     cfg.UseMeteo,
		MeteoSource:  domain.MeteoSource,
		SlopeTanUsed: cfg.SlopeTan,
	}
	if cfg.UseDEM {
		s.resolveSlope(ctx, perimeter, &meta, logger)
	}
	var series *domain.WindSeries
	if cfg.UseMeteo {
		series = s.resolveWind(ctx, perimeter, cfg.Hours, &meta, logger)
	}

	base, err := geometry.Clean(projection.MultiPolygonToPlanar(perimeter), s.opts.Clean)
	if err != nil {
		return nil, domain.Meta{}, fmt.Errorf("clean projected perimeter: %w", err)
	}

	planar, m, err := s.grow(ctx, base, cfg, meta.SlopeTanUsed, series)
	*mode = m
	if err != nil {
		return nil, domain.Meta{}, err
	}
	meta.AccumulationEffective = m != ModeConstant

	fronts := make([]domain.Front, len(planar))
	for i, g := range planar {
		fronts[i] = domain.Front{Hour: i + 1, Geometry: projection.MultiPolygonToGeographic(g)}
	}
	return fronts, meta, nil
}

// grow produces the planar fronts for hours 1..cfg.Hours and reports the mode used.
func (s *Simulator) grow(ctx context.Context, base orb.MultiPolygon, cfg domain.SimulationConfig, slopeTan float64, series *domain.WindSeries) ([]orb.MultiPolygon, string, error) {
	fronts := make([]orb.MultiPolygon, 0, cfg.Hours)

	if series != nil {
		cur := base
		for h := 1; h <= cfg.Hours; h++ {
			if err := ctx.Err(); err != nil {
				return nil, ModeVariable, err
			}
			e := s.opts.Model.ComputeEllipse(1, sample(series.Speeds, h-1), sample(series.Directions, h-1), cfg.BaseROSMS, slopeTan)
			next, err := s.step(cur, e, h)
			if err != nil {
				return nil, ModeVariable, err
			}
			fronts = append(fronts, next)
			cur = next
		}
		return fronts, ModeVariable, nil
	}

	e := s.opts.Model.ComputeEllipse(1, cfg.WindMS, cfg.WindFromDeg, cfg.BaseROSMS, slopeTan)
	if cfg.Accumulate {
		cur := base
		for h := 1; h <= cfg.Hours; h++ {
			if err := ctx.Err(); err != nil {
				return nil, ModeAccumulate, err
			}
			next, err := s.step(cur, e, h)
			if err != nil {
				return nil, ModeAccumulate, err
			}
			fronts = append(fronts, next)
			cur = next
		}
		return fronts, ModeAccumulate, nil
	}

	for h := 1; h <= cfg.Hours; h++ {
		if err := ctx.Err(); err != nil {
			return nil, ModeConstant, err
		}
		next, err := s.FrontAt(base, e, h)
		if err != nil {
			return nil, ModeConstant, err
		}
		fronts = append(fronts, next)
	}
	return fronts, ModeConstant, nil
}

// FrontAt grows a planar base perimeter by the one-hour ellipse scaled to h
// hours in a single expansion. It depends only on its arguments, so any hour
// can be recomputed on its own.
func (s *Simulator) FrontAt(base orb.MultiPolygon, hourly growth.Ellipse, h int) (orb.MultiPolygon, error) {
	return s.step(base, hourly.Scaled(float64(h)), h)
}

func (s *Simulator) step(cur orb.MultiPolygon, e growth.Ellipse, h int) (orb.MultiPolygon, error) {
	grown, err := growth.Expand(cur, e)
	if err != nil {
		return nil, fmt.Errorf("hour %d: %w", h, err)
	}
	grown, err = geometry.Clean(grown, s.opts.Clean)
	if err != nil {
		return nil, fmt.Errorf("hour %d: clean: %w", h, err)
	}
	return grown, nil
}

func (s *Simulator) resolveSlope(ctx context.Context, perimeter orb.MultiPolygon, meta *domain.Meta, logger *slog.Logger) {
	if s.slope == nil {
		s.fallback("opentopo", errNoElevationProvider, &meta.DEMError, logger)
		return
	}
	est, err := s.slope.EstimateSlope(ctx, perimeter)
	if err != nil {
		s.fallback("opentopo", err, &meta.DEMError, logger)
		return
	}
	meta.SlopeTanUsed = est.Mean
	meta.SlopeFromDEMMean = &est.Mean
	meta.SlopeFromDEMP90 = &est.P90
	meta.NPointsDEM = &est.NPoints
	meta.GridDEM = []int{est.Grid[0], est.Grid[1]}
}

func (s *Simulator) resolveWind(ctx context.Context, perimeter orb.MultiPolygon, hours int, meta *domain.Meta, logger *slog.Logger) *domain.WindSeries {
	if s.wind == nil {
		s.fallback("openmeteo", errNoWindProvider, &meta.MeteoError, logger)
		return nil
	}
	c := geometry.Centroid(perimeter)
	series, err := s.wind.HourlyWind(ctx, c.Lat(), c.Lon(), hours, s.opts.Timezone)
	if err != nil {
		s.fallback("openmeteo", err, &meta.MeteoError, logger)
		return nil
	}
	if len(series.Speeds) == 0 || len(series.Directions) == 0 {
		return nil
	}
	meta.MeteoPreview = series.Preview[:min(previewLen, len(series.Preview))]
	return &series
}

func (s *Simulator) fallback(provider string, err error, field *string, logger *slog.Logger) {
	*field = err.Error()
	s.metrics.ProviderFallbacks.WithLabelValues(provider).Inc()
	logger.Warn("provider unavailable, using request parameters", "provider", provider, "error", err)
}

// sample returns vals[i], or the last value when the series is short.
func sample(vals []float64, i int) float64 {
	if i < len(vals) {
		return vals[i]
	}
	return vals[len(vals)-1]
}
