// Command genfixtures generates deterministic claims CSV and gauge footprint
// JSON fixtures for the test suites. It runs the actual join pipeline over the
// generated data and prints per-gauge stats so test assertions can be written
// against real pipeline behavior.
//
// Usage:
//
//	go run ./cmd/genfixtures \
//	  -claims-out data/goodClaims.csv \
//	  -gauges-out data/gauge_footprints.json
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/flood-claims-service/internal/domain"
	"github.com/couchcryptid/flood-claims-service/internal/observability"
	"github.com/couchcryptid/flood-claims-service/internal/pipeline"
)

// Fixtures center on the Cumberland River basin around Nashville.
const (
	centerLat = 36.15
	centerLon = -86.75
	seed      = 20100501
)

var floodStart = time.Date(2010, time.May, 1, 0, 0, 0, 0, time.UTC)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	claimsOut := flag.String("claims-out", "", "output path for the claims CSV fixture")
	gaugesOut := flag.String("gauges-out", "", "output path for the gauge footprints JSON fixture")
	claimCount := flag.Int("claims", 500, "number of claim rows to generate")
	gaugeCount := flag.Int("gauges", 12, "number of gauge footprints to generate")
	flag.Parse()

	if *claimsOut == "" || *gaugesOut == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -claims-out, -gauges-out")
	}

	// Fixed clock for reproducible generated_at stamps in the stats run.
	domain.SetClock(clockwork.NewFakeClockAt(
		time.Date(2024, time.April, 27, 6, 0, 0, 0, time.UTC),
	))
	defer domain.SetClock(nil)

	rng := rand.New(rand.NewSource(seed))

	claims := generateClaims(rng, *claimCount)
	footprints := generateFootprints(rng, *gaugeCount)

	if err := writeClaimsCSV(*claimsOut, claims); err != nil {
		return fmt.Errorf("writing claims fixture: %w", err)
	}
	log.Printf("wrote claims fixture: %s (%d rows)", *claimsOut, len(claims))

	if err := writeFootprintsJSON(*gaugesOut, footprints); err != nil {
		return fmt.Errorf("writing gauges fixture: %w", err)
	}
	log.Printf("wrote gauges fixture: %s (%d footprints)", *gaugesOut, len(footprints))

	return printStats(claims, footprints)
}

func generateClaims(rng *rand.Rand, n int) []domain.ClaimPoint {
	claims := make([]domain.ClaimPoint, n)
	for i := range claims {
		// Cluster claims within roughly a degree of the basin center.
		lat := centerLat + rng.NormFloat64()*0.3
		lon := centerLon + rng.NormFloat64()*0.3
		// Losses spread over the two weeks after the flood crest.
		lossDate := floodStart.AddDate(0, 0, rng.Intn(14))
		claims[i] = domain.ClaimPoint{
			ID:       fmt.Sprintf("claim-%04d", i+1),
			Lon:      lon,
			Lat:      lat,
			LossDate: lossDate,
		}
	}
	return claims
}

func generateFootprints(rng *rand.Rand, n int) []domain.GaugeFootprint {
	footprints := make([]domain.GaugeFootprint, n)
	for i := range footprints {
		cLat := centerLat + rng.NormFloat64()*0.5
		cLon := centerLon + rng.NormFloat64()*0.5
		vertices := 3 + rng.Intn(6)
		lons := make([]float64, vertices)
		lats := make([]float64, vertices)
		for v := range lons {
			lons[v] = cLon + rng.NormFloat64()*0.05
			lats[v] = cLat + rng.NormFloat64()*0.05
		}
		f, err := domain.NewGaugeFootprint(
			fmt.Sprintf("usgs-%07d", 3400000+i*1000+rng.Intn(999)),
			lons, lats,
			float64(500+rng.Intn(5000)),
			10+rng.Float64()*200,
		)
		if err != nil {
			panic(err) // lengths always match here
		}
		footprints[i] = f
	}
	return footprints
}

func writeClaimsCSV(path string, claims []domain.ClaimPoint) error {
	var b strings.Builder
	b.WriteString("id;longitude;latitude;dateOfLoss\n")
	for _, c := range claims {
		fmt.Fprintf(&b, "%s;%g;%g;%s\n", c.ID, c.Lon, c.Lat, c.LossDate.Format(time.DateOnly))
	}
	return writeFile(path, []byte(b.String()))
}

func writeFootprintsJSON(path string, footprints []domain.GaugeFootprint) error {
	type record struct {
		GaugeID          string    `json:"gauge_id"`
		Longitudes       []float64 `json:"longitudes"`
		Latitudes        []float64 `json:"latitudes"`
		DischargeCfs     float64   `json:"discharge_cfs"`
		DrainageAreaSqMi float64   `json:"drainage_area_sqmi"`
	}
	records := make([]record, len(footprints))
	for i, f := range footprints {
		records[i] = record{
			GaugeID:          f.GaugeID,
			Longitudes:       f.Lons,
			Latitudes:        f.Lats,
			DischargeCfs:     f.DischargeCfs,
			DrainageAreaSqMi: f.DrainageAreaSqMi,
		}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}
	return writeFile(path, append(data, '\n'))
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// printStats runs the real join pipeline and reports per-gauge counts.
func printStats(claims []domain.ClaimPoint, footprints []domain.GaugeFootprint) error {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	p := pipeline.New(logger, observability.NewMetricsForTesting(), pipeline.DefaultRadiusKm, 0)

	summaries, err := p.Run(context.Background(), claims, footprints)
	if err != nil {
		return err
	}

	fmt.Println("\n=== Stats for updating test assertions ===")
	total := 0
	for _, s := range summaries {
		fmt.Printf("%s: claims=%d, dates=%d, discharge=%g cfs\n",
			s.GaugeID, s.TotalClaims(), len(s.Dates), s.DischargeCfs)
		total += s.TotalClaims()
	}
	fmt.Printf("Total matched claims (with cross-gauge overlap): %d\n", total)
	return nil
}
