//go:build smoke

package opentopo

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/couchcryptid/firefront/internal/domain"
	"github.com/couchcryptid/firefront/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests hit the public OpenTopoData API.
// Run with: go test -tags=smoke ./internal/adapter/opentopo/ -v -count=1

func TestSmoke_Elevations(t *testing.T) {
	c := NewClient(DefaultURL, 20*time.Second, observability.NewMetricsForTesting(), slog.New(slog.NewTextHandler(io.Discard, nil)))

	got, err := c.Elevations(context.Background(), []domain.LatLon{{Lat: 43.6045, Lon: 1.444}})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.InDelta(t, 150, got[0], 100, "Toulouse sits around 150 m")
}
