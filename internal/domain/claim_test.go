package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClaimRecord(t *testing.T) {
	t.Run("valid record", func(t *testing.T) {
		c, err := ParseClaimRecord("c-1", "-86.75", "36.15", "2020-05-01")
		require.NoError(t, err)
		assert.Equal(t, "c-1", c.ID)
		assert.Equal(t, -86.75, c.Lon)
		assert.Equal(t, 36.15, c.Lat)
		assert.Equal(t, time.Date(2020, 5, 1, 0, 0, 0, 0, time.UTC), c.LossDate)
	})

	t.Run("time of day discarded", func(t *testing.T) {
		c, err := ParseClaimRecord("c-2", "-86.75", "36.15", "2020-05-01T14:33:00Z")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2020, 5, 1, 0, 0, 0, 0, time.UTC), c.LossDate)
	})

	tests := []struct {
		name           string
		lon, lat, date string
		wantErr        string
	}{
		{"garbage longitude", "east", "36.15", "2020-05-01", "longitude"},
		{"longitude out of range", "-186.75", "36.15", "2020-05-01", "longitude"},
		{"latitude out of range", "-86.75", "96.15", "2020-05-01", "latitude"},
		{"empty latitude", "-86.75", "", "2020-05-01", "latitude"},
		{"garbage date", "-86.75", "36.15", "sometime in May", "loss date"},
		{"empty date", "-86.75", "36.15", "", "loss date"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseClaimRecord("c-bad", tt.lon, tt.lat, tt.date)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseLossDate_Layouts(t *testing.T) {
	want := time.Date(2020, 5, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		in   string
	}{
		{"date only", "2020-05-01"},
		{"rfc3339", "2020-05-01T09:30:00Z"},
		{"timestamp", "2020-05-01 09:30:00"},
		{"us slashes", "05/01/2020"},
		{"surrounding whitespace", "  2020-05-01  "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLossDate(tt.in)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestDateOnly_NormalizesZone(t *testing.T) {
	loc := time.FixedZone("CDT", -5*3600)
	in := time.Date(2020, 5, 1, 23, 30, 0, 0, loc) // 2020-05-02 04:30 UTC
	assert.Equal(t, time.Date(2020, 5, 2, 0, 0, 0, 0, time.UTC), DateOnly(in))
}
