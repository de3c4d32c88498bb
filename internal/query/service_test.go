package query_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/flood-claims-service/internal/domain"
	"github.com/couchcryptid/flood-claims-service/internal/observability"
	"github.com/couchcryptid/flood-claims-service/internal/query"
)

func newService(summaries []domain.GaugeClaimsSummary) *query.Service {
	return query.NewService(summaries, slog.Default(), observability.NewMetricsForTesting())
}

func TestService_Query(t *testing.T) {
	d1 := time.Date(2020, 5, 1, 0, 0, 0, 0, time.UTC)
	summaries := []domain.GaugeClaimsSummary{
		{
			GaugeID:      "03431500",
			Dates:        []time.Time{d1},
			ClaimCounts:  []int{4},
			DischargeCfs: 52000,
			Centroid:     &domain.Geo{Lat: 36.15, Lon: -86.75},
		},
	}
	svc := newService(summaries)

	res, err := svc.Query(context.Background(), query.Request{
		Target:        domain.Geo{Lat: 36.1627, Lon: -86.7816},
		MaxDistanceKm: 50,
	})
	require.NoError(t, err)

	require.Len(t, res.Gauges, 1)
	assert.Equal(t, "03431500", res.Gauges[0].GaugeID)
	require.Len(t, res.Events, 1)
	assert.Equal(t, 4, res.Events[0].ClaimCount)
	assert.Equal(t, res.Gauges[0].DistanceKm, res.Events[0].DistanceKm)
}

func TestService_Query_NoGaugesFound(t *testing.T) {
	svc := newService([]domain.GaugeClaimsSummary{
		{GaugeID: "far", Centroid: &domain.Geo{Lat: -40, Lon: 120}},
	})

	res, err := svc.Query(context.Background(), query.Request{
		Target:        domain.Geo{Lat: 36.15, Lon: -86.75},
		MaxDistanceKm: 50,
	})
	require.NoError(t, err)
	assert.Empty(t, res.Gauges)
	assert.Empty(t, res.Events)
}

func TestService_CheckReadiness(t *testing.T) {
	t.Run("ready with summaries", func(t *testing.T) {
		svc := newService([]domain.GaugeClaimsSummary{{GaugeID: "g"}})
		assert.NoError(t, svc.CheckReadiness(context.Background()))
	})

	t.Run("not ready when empty", func(t *testing.T) {
		svc := newService(nil)
		assert.Error(t, svc.CheckReadiness(context.Background()))
	})
}
