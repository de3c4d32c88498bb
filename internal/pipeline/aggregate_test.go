package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/flood-claims-service/internal/domain"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func claimOn(id string, lon, lat float64, date time.Time) domain.ClaimPoint {
	return domain.ClaimPoint{ID: id, Lon: lon, Lat: lat, LossDate: date}
}

func TestAggregateByDate(t *testing.T) {
	t.Run("groups and sorts ascending", func(t *testing.T) {
		claims := []domain.ClaimPoint{
			claimOn("a", 0, 0, day(2020, 5, 3)),
			claimOn("b", 0, 0, day(2020, 5, 1)),
			claimOn("c", 0, 0, day(2020, 5, 3)),
			claimOn("d", 0, 0, day(2020, 5, 2)),
			claimOn("e", 0, 0, day(2020, 5, 3)),
		}

		dates, counts := AggregateByDate(claims)

		assert.Equal(t, []time.Time{day(2020, 5, 1), day(2020, 5, 2), day(2020, 5, 3)}, dates)
		assert.Equal(t, []int{1, 1, 3}, counts)
	})

	t.Run("empty input yields empty parallel slices", func(t *testing.T) {
		dates, counts := AggregateByDate(nil)
		assert.NotNil(t, dates)
		assert.NotNil(t, counts)
		assert.Empty(t, dates)
		assert.Empty(t, counts)
	})

	t.Run("count preserving", func(t *testing.T) {
		claims := []domain.ClaimPoint{
			claimOn("a", 0, 0, day(2019, 1, 1)),
			claimOn("b", 0, 0, day(2019, 1, 1)),
			claimOn("c", 0, 0, day(2021, 7, 9)),
		}

		dates, counts := AggregateByDate(claims)
		require.Len(t, counts, len(dates))

		total := 0
		for _, c := range counts {
			total += c
		}
		assert.Equal(t, len(claims), total)
	})

	t.Run("deterministic for identical inputs", func(t *testing.T) {
		claims := []domain.ClaimPoint{
			claimOn("a", 0, 0, day(2020, 2, 2)),
			claimOn("b", 0, 0, day(2020, 1, 1)),
		}

		d1, c1 := AggregateByDate(claims)
		d2, c2 := AggregateByDate(claims)
		assert.Equal(t, d1, d2)
		assert.Equal(t, c1, c2)
	})
}
