package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ClaimPoint is a single flood-insurance claim pinned to a coordinate and a
// calendar date of loss. Instances are produced only by ParseClaimRecord, so
// a ClaimPoint in flight always carries valid coordinates and a valid date.
type ClaimPoint struct {
	ID       string
	Lon      float64
	Lat      float64
	LossDate time.Time // UTC midnight of the calendar date of loss
}

// lossDateLayouts covers the date encodings seen in NFIP claim exports.
// RFC3339 and the space-separated variant appear when upstream tooling has
// round-tripped the column through a timestamp type.
var lossDateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"01/02/2006",
}

var errEmptyField = errors.New("empty field")

// ParseClaimRecord builds a ClaimPoint from raw column values. A record with
// an unparsable or out-of-range coordinate or an unparsable date is rejected;
// callers drop it and continue (ingestion-local error, never fatal).
func ParseClaimRecord(id, lon, lat, lossDate string) (ClaimPoint, error) {
	lonV, err := parseCoordinate(lon, -180, 180)
	if err != nil {
		return ClaimPoint{}, fmt.Errorf("claim %q: longitude: %w", id, err)
	}
	latV, err := parseCoordinate(lat, -90, 90)
	if err != nil {
		return ClaimPoint{}, fmt.Errorf("claim %q: latitude: %w", id, err)
	}
	day, err := ParseLossDate(lossDate)
	if err != nil {
		return ClaimPoint{}, fmt.Errorf("claim %q: loss date: %w", id, err)
	}
	return ClaimPoint{ID: id, Lon: lonV, Lat: latV, LossDate: day}, nil
}

// ParseLossDate parses a loss-date string and truncates it to the UTC
// calendar date. Time-of-day, if present, is discarded before grouping.
func ParseLossDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errEmptyField
	}
	for _, layout := range lossDateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return DateOnly(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// DateOnly returns the UTC midnight of t's calendar date in UTC.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func parseCoordinate(s string, minVal, maxVal float64) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errEmptyField
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %q: %w", s, err)
	}
	if v < minVal || v > maxVal {
		return 0, fmt.Errorf("value %g outside [%g, %g]", v, minVal, maxVal)
	}
	return v, nil
}
