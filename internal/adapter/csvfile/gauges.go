package csvfile

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/couchcryptid/flood-claims-service/internal/domain"
	"github.com/couchcryptid/flood-claims-service/internal/observability"
)

// footprintRecord is the typed on-disk schema for gauge footprints, replacing
// the stringified array-in-text-cell encoding of the legacy export.
type footprintRecord struct {
	GaugeID          string    `json:"gauge_id"`
	Longitudes       []float64 `json:"longitudes"`
	Latitudes        []float64 `json:"latitudes"`
	DischargeCfs     float64   `json:"discharge_cfs"`
	DrainageAreaSqMi float64   `json:"drainage_area_sqmi"`
}

// ReadFootprints reads gauge footprints from a JSON array file. A record
// whose longitude/latitude arrays disagree in length is skipped — fatal for
// that record only, never for the batch.
func ReadFootprints(path string, logger *slog.Logger, metrics *observability.Metrics) ([]domain.GaugeFootprint, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open footprints json: %w", err)
	}

	var records []footprintRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse footprints json: %w", err)
	}

	footprints := make([]domain.GaugeFootprint, 0, len(records))
	for i, rec := range records {
		f, err := domain.NewGaugeFootprint(rec.GaugeID, rec.Longitudes, rec.Latitudes, rec.DischargeCfs, rec.DrainageAreaSqMi)
		if err != nil {
			logger.Warn("invalid footprint skipped", "index", i, "error", err)
			metrics.FootprintsSkipped.Inc()
			continue
		}
		footprints = append(footprints, f)
		metrics.FootprintsIngested.Inc()
	}

	logger.Info("footprints ingested", "path", path, "accepted", len(footprints))
	return footprints, nil
}
