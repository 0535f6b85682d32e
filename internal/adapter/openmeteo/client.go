// Package openmeteo fetches hourly 10 m wind forecasts from Open-Meteo.
package openmeteo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/couchcryptid/firefront/internal/domain"
	"github.com/couchcryptid/firefront/internal/observability"
	"github.com/jonboulle/clockwork"
	"github.com/sony/gobreaker"
)

const providerName = "openmeteo"

// DefaultURL is the public forecast endpoint.
const DefaultURL = "https://api.open-meteo.com/v1/forecast"

// ErrMissingHourly is returned when the response lacks the hourly arrays.
var ErrMissingHourly = errors.New("open-meteo hourly data missing")

// Timestamps come back without an offset when a timezone is requested.
var timeLayouts = []string{
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02T15:04Z07:00",
}

// Client implements domain.WindProvider using the Open-Meteo forecast API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	clock      clockwork.Clock
	circuit    *gobreaker.CircuitBreaker
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates an Open-Meteo client. A nil clock uses real time.
func NewClient(baseURL string, timeout time.Duration, clock clockwork.Clock, metrics *observability.Metrics, logger *slog.Logger) *Client {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		clock:   clock,
		circuit: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:         providerName,
			MaxRequests:  1,
			Interval:     time.Minute,
			Timeout:      30 * time.Second,
			IsSuccessful: func(err error) bool {
				// Calls abandoned by the caller say nothing about upstream health.
				return err == nil || errors.Is(err, context.Canceled)
			},
		}),
		metrics: metrics,
		logger:  logger,
	}
}

// HourlyWind returns exactly hours samples of wind speed (m/s) and
// meteorological direction, starting at the current hour in timezone.
func (c *Client) HourlyWind(ctx context.Context, lat, lon float64, hours int, timezone string) (domain.WindSeries, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return domain.WindSeries{}, fmt.Errorf("load timezone %q: %w", timezone, err)
	}

	params := url.Values{
		"latitude":        {fmt.Sprintf("%.5f", lat)},
		"longitude":       {fmt.Sprintf("%.5f", lon)},
		"hourly":          {"wind_speed_10m,wind_direction_10m"},
		"wind_speed_unit": {"ms"},
		"timezone":        {timezone},
	}

	start := time.Now()
	result, err := c.circuit.Execute(func() (interface{}, error) {
		return c.doRequest(ctx, c.baseURL+"?"+params.Encode())
	})
	c.metrics.ProviderDuration.WithLabelValues(providerName).Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.ProviderRequests.WithLabelValues(providerName, "error").Inc()
		c.logger.Warn("open-meteo request failed", "lat", lat, "lon", lon, "error", err)
		return domain.WindSeries{}, err
	}
	c.metrics.ProviderRequests.WithLabelValues(providerName, "success").Inc()

	return align(result.(hourly), c.clock.Now(), loc, hours)
}

func (c *Client) doRequest(ctx context.Context, fullURL string) (hourly, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return hourly{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return hourly{}, fmt.Errorf("open-meteo request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return hourly{}, fmt.Errorf("open-meteo API error: status %d: %s", resp.StatusCode, body)
	}

	var decoded response
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return hourly{}, fmt.Errorf("decode response: %w", err)
	}
	h := decoded.Hourly
	if len(h.Time) == 0 || len(h.WindSpeed) == 0 || len(h.WindDirection) == 0 {
		return hourly{}, ErrMissingHourly
	}
	return h, nil
}

// align picks the samples starting at the first timestamp at or after the
// current hour and pads or truncates them to exactly hours entries.
func align(h hourly, now time.Time, loc *time.Location, hours int) (domain.WindSeries, error) {
	times := make([]time.Time, len(h.Time))
	for i, raw := range h.Time {
		t, err := parseTimestamp(raw, loc)
		if err != nil {
			return domain.WindSeries{}, err
		}
		times[i] = t
	}

	now = now.In(loc)
	hour := time.Date(now.Year(), now.Month(), now.Day(), now.Hour(), 0, 0, 0, loc)
	idx := 0
	for i, t := range times {
		if !t.Before(hour) {
			idx = i
			break
		}
	}

	speeds := fillNulls(h.WindSpeed)
	dirs := fillNulls(h.WindDirection)

	series := domain.WindSeries{
		Speeds:     window(speeds, idx, hours),
		Directions: window(dirs, idx, hours),
		Preview:    make([]domain.WindPreview, hours),
	}
	for i := range hours {
		var t time.Time
		if idx+i < len(times) {
			t = times[idx+i]
		} else {
			t = times[len(times)-1].Add(time.Duration(idx+i-len(times)+1) * time.Hour)
		}
		series.Preview[i] = domain.WindPreview{
			Time:    t,
			SpeedMS: series.Speeds[i],
			FromDeg: series.Directions[i],
		}
	}
	return series, nil
}

func parseTimestamp(raw string, loc *time.Location) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range timeLayouts {
		var (
			t   time.Time
			err error
		)
		if strings.Contains(layout, "Z07") {
			t, err = time.Parse(layout, raw)
		} else {
			t, err = time.ParseInLocation(layout, raw, loc)
		}
		if err == nil {
			return t.In(loc), nil
		}
	}
	return time.Time{}, fmt.Errorf("parse open-meteo timestamp %q", raw)
}

// fillNulls replaces missing samples with the previous value, or 0 at the start.
func fillNulls(vals []*float64) []float64 {
	out := make([]float64, len(vals))
	prev := 0.0
	for i, v := range vals {
		if v != nil {
			prev = *v
		}
		out[i] = prev
	}
	return out
}

// window returns vals[idx:idx+n], padded with the last value (0 if empty).
func window(vals []float64, idx, n int) []float64 {
	out := make([]float64, 0, n)
	if idx < len(vals) {
		out = append(out, vals[idx:min(idx+n, len(vals))]...)
	}
	last := 0.0
	if len(out) > 0 {
		last = out[len(out)-1]
	}
	for len(out) < n {
		out = append(out, last)
	}
	return out
}

// Open-Meteo API response types.

type response struct {
	Hourly hourly `json:"hourly"`
}

type hourly struct {
	Time          []string   `json:"time"`
	WindSpeed     []*float64 `json:"wind_speed_10m"`
	WindDirection []*float64 `json:"wind_direction_10m"`
}
