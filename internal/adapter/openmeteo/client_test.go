package openmeteo

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/couchcryptid/firefront/internal/observability"
	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTZ = "Europe/Paris"

func paris(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(testTZ)
	require.NoError(t, err)
	return loc
}

func testClient(baseURL string, clock clockwork.Clock) *Client {
	return NewClient(baseURL, 5*time.Second, clock, observability.NewMetricsForTesting(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func serve(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

const fiveHours = `{"hourly":{
	"time":["2026-07-01T10:00","2026-07-01T11:00","2026-07-01T12:00","2026-07-01T13:00","2026-07-01T14:00"],
	"wind_speed_10m":[1,2,3,4,5],
	"wind_direction_10m":[10,20,30,40,50]}}`

func TestClient_HourlyWind_RequestParameters(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "43.60000", q.Get("latitude"))
		assert.Equal(t, "1.40300", q.Get("longitude"))
		assert.Equal(t, "wind_speed_10m,wind_direction_10m", q.Get("hourly"))
		assert.Equal(t, "ms", q.Get("wind_speed_unit"))
		assert.Equal(t, testTZ, q.Get("timezone"))
		_, _ = w.Write([]byte(fiveHours))
	}))
	defer srv.Close()

	clock := clockwork.NewFakeClockAt(time.Date(2026, 7, 1, 10, 0, 0, 0, paris(t)))
	_, err := testClient(srv.URL, clock).HourlyWind(context.Background(), 43.6, 1.403, 2, testTZ)
	require.NoError(t, err)
}

func TestClient_HourlyWind_AlignsToCurrentHour(t *testing.T) {
	srv := serve(t, fiveHours)
	// 11:40 local truncates to 11:00, the second sample.
	clock := clockwork.NewFakeClockAt(time.Date(2026, 7, 1, 11, 40, 0, 0, paris(t)))

	series, err := testClient(srv.URL, clock).HourlyWind(context.Background(), 43.6, 1.4, 3, testTZ)
	require.NoError(t, err)

	assert.Equal(t, []float64{2, 3, 4}, series.Speeds)
	assert.Equal(t, []float64{20, 30, 40}, series.Directions)
	require.Len(t, series.Preview, 3)
	assert.True(t, series.Preview[0].Time.Equal(time.Date(2026, 7, 1, 11, 0, 0, 0, paris(t))))
	assert.Equal(t, 2.0, series.Preview[0].SpeedMS)
	assert.Equal(t, 20.0, series.Preview[0].FromDeg)
}

func TestClient_HourlyWind_UTCClockConvertedToZone(t *testing.T) {
	srv := serve(t, fiveHours)
	// 10:15 UTC is 12:15 in Paris during summer time.
	clock := clockwork.NewFakeClockAt(time.Date(2026, 7, 1, 10, 15, 0, 0, time.UTC))

	series, err := testClient(srv.URL, clock).HourlyWind(context.Background(), 43.6, 1.4, 2, testTZ)
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 4}, series.Speeds)
}

func TestClient_HourlyWind_PadsWithLastValue(t *testing.T) {
	srv := serve(t, fiveHours)
	clock := clockwork.NewFakeClockAt(time.Date(2026, 7, 1, 13, 0, 0, 0, paris(t)))

	series, err := testClient(srv.URL, clock).HourlyWind(context.Background(), 43.6, 1.4, 4, testTZ)
	require.NoError(t, err)

	if diff := cmp.Diff([]float64{4, 5, 5, 5}, series.Speeds); diff != "" {
		t.Errorf("speeds mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []float64{40, 50, 50, 50}, series.Directions)
	require.Len(t, series.Preview, 4)
	assert.True(t, series.Preview[3].Time.Equal(time.Date(2026, 7, 1, 16, 0, 0, 0, paris(t))))
}

func TestClient_HourlyWind_FutureClockFallsBackToFirstSample(t *testing.T) {
	srv := serve(t, fiveHours)
	clock := clockwork.NewFakeClockAt(time.Date(2026, 8, 1, 0, 0, 0, 0, paris(t)))

	series, err := testClient(srv.URL, clock).HourlyWind(context.Background(), 43.6, 1.4, 2, testTZ)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2}, series.Speeds)
}

func TestClient_HourlyWind_NullSamplesRepeatPrevious(t *testing.T) {
	srv := serve(t, `{"hourly":{
		"time":["2026-07-01T10:00","2026-07-01T11:00","2026-07-01T12:00"],
		"wind_speed_10m":[null,3,null],
		"wind_direction_10m":[90,null,180]}}`)
	clock := clockwork.NewFakeClockAt(time.Date(2026, 7, 1, 10, 0, 0, 0, paris(t)))

	series, err := testClient(srv.URL, clock).HourlyWind(context.Background(), 43.6, 1.4, 3, testTZ)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 3, 3}, series.Speeds)
	assert.Equal(t, []float64{90, 90, 180}, series.Directions)
}

func TestClient_HourlyWind_OffsetTimestamps(t *testing.T) {
	srv := serve(t, `{"hourly":{
		"time":["2026-07-01T08:00Z","2026-07-01T09:00Z"],
		"wind_speed_10m":[7,8],
		"wind_direction_10m":[0,0]}}`)
	// 09:00Z is 11:00 in Paris.
	clock := clockwork.NewFakeClockAt(time.Date(2026, 7, 1, 11, 5, 0, 0, paris(t)))

	series, err := testClient(srv.URL, clock).HourlyWind(context.Background(), 43.6, 1.4, 1, testTZ)
	require.NoError(t, err)
	assert.Equal(t, []float64{8}, series.Speeds)
	assert.Equal(t, paris(t).String(), series.Preview[0].Time.Location().String())
}

func TestClient_HourlyWind_MissingHourly(t *testing.T) {
	srv := serve(t, `{"hourly":{"time":[],"wind_speed_10m":[],"wind_direction_10m":[]}}`)

	_, err := testClient(srv.URL, clockwork.NewFakeClock()).HourlyWind(context.Background(), 43.6, 1.4, 3, testTZ)
	assert.ErrorIs(t, err, ErrMissingHourly)
}

func TestClient_HourlyWind_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":true,"reason":"bad timezone"}`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL, clockwork.NewFakeClock()).HourlyWind(context.Background(), 43.6, 1.4, 3, testTZ)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
}

func TestClient_HourlyWind_UnknownTimezone(t *testing.T) {
	_, err := testClient("http://127.0.0.1:0", clockwork.NewFakeClock()).
		HourlyWind(context.Background(), 43.6, 1.4, 3, "Mars/Olympus")
	require.Error(t, err)
}

func TestWindow(t *testing.T) {
	assert.Equal(t, []float64{0, 0}, window(nil, 0, 2))
	assert.Equal(t, []float64{3, 3}, window([]float64{1, 3}, 1, 2))
	assert.Equal(t, []float64{0, 0}, window([]float64{1, 3}, 5, 2))
}

func TestClient_HourlyWind_CancelledCallsDoNotTripBreaker(t *testing.T) {
	srv := serve(t, fiveHours)
	clock := clockwork.NewFakeClockAt(time.Date(2026, 7, 1, 10, 0, 0, 0, paris(t)))
	c := testClient(srv.URL, clock)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for range 10 {
		_, err := c.HourlyWind(ctx, 43.6, 1.4, 3, testTZ)
		require.ErrorIs(t, err, context.Canceled)
	}

	got, err := c.HourlyWind(context.Background(), 43.6, 1.4, 3, testTZ)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3}, got.Speeds)
}
