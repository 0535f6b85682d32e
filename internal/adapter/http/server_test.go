package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	httpadapter "github.com/couchcryptid/firefront/internal/adapter/http"
	"github.com/couchcryptid/firefront/internal/domain"
	"github.com/couchcryptid/firefront/internal/geometry"
	"github.com/couchcryptid/firefront/internal/observability"
	"github.com/couchcryptid/firefront/internal/simulation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const squarePerimeter = `{"type":"Polygon","coordinates":[[[1.4,43.6],[1.406,43.6],[1.406,43.6045],[1.4,43.6045],[1.4,43.6]]]}`

type mockReadiness struct {
	err error
}

func (m *mockReadiness) CheckReadiness(_ context.Context) error { return m.err }

type failingSimulator struct {
	err error
}

func (f failingSimulator) Run(context.Context, domain.SimulationConfig) (domain.Result, error) {
	return domain.Result{}, f.err
}

func (f failingSimulator) SelfCheck(context.Context) (domain.SelfCheckReport, error) {
	return domain.SelfCheckReport{}, f.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(readyErr error) *httpadapter.Server {
	sim := simulation.New(nil, nil, simulation.DefaultOptions(), observability.NewMetricsForTesting(), testLogger())
	return httpadapter.NewServer(":0", sim, &mockReadiness{err: readyErr}, testLogger())
}

func post(srv http.Handler, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/simulate", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	srv.ServeHTTP(rec, req)
	return rec
}

func TestHealthzReturns200(t *testing.T) {
	srv := newTestServer(nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestReadyzReturns503WhenNotReady(t *testing.T) {
	srv := newTestServer(fmt.Errorf("not ready yet"))
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "not ready", body["status"])
	assert.Equal(t, "not ready yet", body["error"])
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestSimulateReturnsFeatureCollection(t *testing.T) {
	srv := newTestServer(nil)

	rec := post(srv, `{"id":"t-1","perimeter":`+squarePerimeter+`,"hours":3,"wind_ms":5,"wind_deg":270,"accumulate":"on"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body struct {
		Type     string `json:"type"`
		Features []struct {
			Type       string         `json:"type"`
			Properties map[string]any `json:"properties"`
			Geometry   struct {
				Type string `json:"type"`
			} `json:"geometry"`
		} `json:"features"`
		Meta map[string]any `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	assert.Equal(t, "FeatureCollection", body.Type)
	require.Len(t, body.Features, 3)
	for i, f := range body.Features {
		assert.Equal(t, "Feature", f.Type)
		assert.InDelta(t, i+1, f.Properties["hour"], 0)
		assert.Equal(t, "Polygon", f.Geometry.Type)
	}
	assert.Equal(t, "t-1", body.Meta["run_id"])
	assert.Equal(t, true, body.Meta["accumulation_effective"])
	assert.Equal(t, false, body.Meta["use_dem"])
	assert.Equal(t, "open-meteo:forecast", body.Meta["meteo_source"])
	assert.InDelta(t, 0.05, body.Meta["slope_tan_used"], 1e-12)
}

func TestSimulateBadRequests(t *testing.T) {
	srv := newTestServer(nil)
	tests := []struct {
		name string
		body string
	}{
		{"missing perimeter", `{"hours":2}`},
		{"invalid geometry", `{"perimeter":{"type":"LineString","coordinates":[[0,0],[1,1]]}}`},
		{"bad flag", `{"perimeter":` + squarePerimeter + `,"use_meteo":"perhaps"}`},
		{"hours out of range", `{"perimeter":` + squarePerimeter + `,"hours":500}`},
		{"not json", `hello`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(srv, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestSimulateErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"empty geometry", fmt.Errorf("hour 2: %w", geometry.ErrEmptyGeometry), http.StatusUnprocessableEntity},
		{"invalid geometry", fmt.Errorf("normalize: %w", geometry.ErrInvalidGeometry), http.StatusBadRequest},
		{"internal", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httpadapter.NewServer(":0", failingSimulator{err: tt.err}, &mockReadiness{}, testLogger())
			rec := post(srv, `{"perimeter":`+squarePerimeter+`}`)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestSelfTestEndpoint(t *testing.T) {
	srv := newTestServer(nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/selftest", nil)

	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var report domain.SelfCheckReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.True(t, report.AreaIncreasing)
	assert.True(t, report.Nested)
	assert.Len(t, report.AreasM2, 4)
}

func TestSimulateRejectsGet(t *testing.T) {
	srv := newTestServer(nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/simulate", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
