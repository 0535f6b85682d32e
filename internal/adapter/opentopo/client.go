// Package opentopo queries terrain elevations from an OpenTopoData server.
package opentopo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/couchcryptid/firefront/internal/domain"
	"github.com/couchcryptid/firefront/internal/observability"
	"github.com/sony/gobreaker"
)

const providerName = "opentopo"

// DefaultURL is the public EU-DEM 25 m dataset endpoint.
const DefaultURL = "https://api.opentopodata.org/v1/eudem25m"

// ErrBadStatus is returned when the API answers with a non-OK status field.
var ErrBadStatus = errors.New("opentopodata status not OK")

// Client implements domain.ElevationProvider using the OpenTopoData API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	circuit    *gobreaker.CircuitBreaker
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates an OpenTopoData client for the given dataset URL.
func NewClient(baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
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

// Elevations looks up one bilinear-interpolated elevation per point. Points
// outside the dataset come back as NaN.
func (c *Client) Elevations(ctx context.Context, points []domain.LatLon) ([]float64, error) {
	locs := make([]string, len(points))
	for i, p := range points {
		locs[i] = fmt.Sprintf("%.6f,%.6f", p.Lat, p.Lon)
	}
	body, err := json.Marshal(request{
		Locations:     strings.Join(locs, "|"),
		Interpolation: "bilinear",
	})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	start := time.Now()
	result, err := c.circuit.Execute(func() (interface{}, error) {
		return c.doRequest(ctx, body)
	})
	c.metrics.ProviderDuration.WithLabelValues(providerName).Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.ProviderRequests.WithLabelValues(providerName, "error").Inc()
		c.logger.Warn("opentopodata request failed", "points", len(points), "error", err)
		return nil, err
	}
	c.metrics.ProviderRequests.WithLabelValues(providerName, "success").Inc()

	results := result.([]elevationResult)
	out := make([]float64, len(points))
	for i := range out {
		out[i] = math.NaN()
		if i < len(results) && results[i].Elevation != nil {
			out[i] = *results[i].Elevation
		}
	}
	return out, nil
}

func (c *Client) doRequest(ctx context.Context, body []byte) ([]elevationResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("opentopodata request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("opentopodata API error: status %d: %s", resp.StatusCode, msg)
	}

	var decoded response
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if decoded.Status != "OK" {
		return nil, fmt.Errorf("%w: %q", ErrBadStatus, decoded.Status)
	}
	return decoded.Results, nil
}

// OpenTopoData API request and response types.

type request struct {
	Locations     string `json:"locations"`
	Interpolation string `json:"interpolation"`
}

type response struct {
	Status  string            `json:"status"`
	Results []elevationResult `json:"results"`
}

type elevationResult struct {
	Elevation *float64 `json:"elevation"`
}
