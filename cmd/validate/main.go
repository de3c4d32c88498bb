// Command validate performs integrity checks on the fixture inputs and the
// persisted summaries: it re-runs the join over the input files, compares the
// result against what the store holds, and verifies the summary invariants
// hold on both sides.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -claims data/goodClaims.csv \
//	  -gauges data/gauge_footprints.json
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/couchcryptid/flood-claims-service/internal/adapter/csvfile"
	"github.com/couchcryptid/flood-claims-service/internal/adapter/postgres"
	"github.com/couchcryptid/flood-claims-service/internal/config"
	"github.com/couchcryptid/flood-claims-service/internal/domain"
	"github.com/couchcryptid/flood-claims-service/internal/observability"
	"github.com/couchcryptid/flood-claims-service/internal/pipeline"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	claimsPath := flag.String("claims", "", "path to the claims CSV")
	gaugesPath := flag.String("gauges", "", "path to the gauge footprints JSON")
	skipStore := flag.Bool("skip-store", false, "skip the Postgres comparison phase")
	flag.Parse()

	if *claimsPath == "" || *gaugesPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*claimsPath, *gaugesPath, *skipStore); code != 0 {
		os.Exit(code)
	}
}

func run(claimsPath, gaugesPath string, skipStore bool) int {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	metrics := observability.NewMetricsForTesting()

	ctx := context.Background()

	claims, err := csvfile.ReadClaims(claimsPath, logger, metrics)
	if err != nil {
		fmt.Fprintf(os.Stderr, "reading claims: %v\n", err)
		return 1
	}
	footprints, err := csvfile.ReadFootprints(gaugesPath, logger, metrics)
	if err != nil {
		fmt.Fprintf(os.Stderr, "reading footprints: %v\n", err)
		return 1
	}

	p := pipeline.New(logger, metrics, pipeline.DefaultRadiusKm, 0)
	computed, err := p.Run(ctx, claims, footprints)
	if err != nil {
		fmt.Fprintf(os.Stderr, "running pipeline: %v\n", err)
		return 1
	}

	phases := []*phase{
		checkInputs(claims, footprints),
		checkInvariants("computed summaries", computed),
	}

	if !skipStore {
		stored, ph := loadStored(ctx, logger, metrics)
		if ph != nil {
			phases = append(phases, ph)
		} else {
			phases = append(phases,
				checkInvariants("stored summaries", stored),
				compareStored(computed, stored),
			)
		}
	}

	failed := 0
	for _, ph := range phases {
		status := "PASS"
		if !ph.passed() {
			status = "FAIL"
			failed++
		}
		fmt.Printf("[%s] %s\n", status, ph.name)
		for _, e := range ph.errors {
			fmt.Printf("       %s\n", e)
		}
	}
	if failed > 0 {
		fmt.Printf("\n%d of %d phases failed\n", failed, len(phases))
		return 1
	}
	fmt.Printf("\nall %d phases passed\n", len(phases))
	return 0
}

func checkInputs(claims []domain.ClaimPoint, footprints []domain.GaugeFootprint) *phase {
	ph := &phase{name: "input files"}
	if len(claims) == 0 {
		ph.errorf("no claims loaded")
	}
	if len(footprints) == 0 {
		ph.errorf("no footprints loaded")
	}
	seen := map[string]bool{}
	for _, f := range footprints {
		if seen[f.GaugeID] {
			ph.errorf("duplicate gauge ID %s", f.GaugeID)
		}
		seen[f.GaugeID] = true
	}
	return ph
}

func checkInvariants(name string, summaries []domain.GaugeClaimsSummary) *phase {
	ph := &phase{name: name}
	for _, s := range summaries {
		if err := s.Validate(); err != nil {
			ph.errorf("%s: %v", s.GaugeID, err)
			continue
		}
		for i := 1; i < len(s.Dates); i++ {
			if !s.Dates[i-1].Before(s.Dates[i]) {
				ph.errorf("%s: dates not strictly ascending at index %d", s.GaugeID, i)
			}
		}
		for i, c := range s.ClaimCounts {
			if c <= 0 {
				ph.errorf("%s: non-positive claim count %d on %s", s.GaugeID, c, s.Dates[i].Format(time.DateOnly))
			}
		}
	}
	return ph
}

func loadStored(ctx context.Context, logger *slog.Logger, metrics *observability.Metrics) ([]domain.GaugeClaimsSummary, *phase) {
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		return nil, &phase{name: "store connection", errors: []string{err.Error()}}
	}
	store, err := postgres.New(ctx, cfg.PostgresDSN, logger, metrics)
	if err != nil {
		return nil, &phase{name: "store connection", errors: []string{err.Error()}}
	}
	defer store.Close()

	stored, err := store.LoadAll(ctx)
	if err != nil {
		return nil, &phase{name: "store connection", errors: []string{err.Error()}}
	}
	return stored, nil
}

func compareStored(computed, stored []domain.GaugeClaimsSummary) *phase {
	ph := &phase{name: "store matches recomputation"}

	byID := make(map[string]domain.GaugeClaimsSummary, len(stored))
	for _, s := range stored {
		byID[s.GaugeID] = s
	}
	for _, c := range computed {
		s, ok := byID[c.GaugeID]
		if !ok {
			ph.errorf("%s: missing from store", c.GaugeID)
			continue
		}
		if c.TotalClaims() != s.TotalClaims() {
			ph.errorf("%s: claim total mismatch, computed=%d stored=%d", c.GaugeID, c.TotalClaims(), s.TotalClaims())
		}
		if len(c.Dates) != len(s.Dates) {
			ph.errorf("%s: date count mismatch, computed=%d stored=%d", c.GaugeID, len(c.Dates), len(s.Dates))
		}
	}
	if len(stored) != len(computed) {
		ph.errorf("summary count mismatch, computed=%d stored=%d", len(computed), len(stored))
	}
	return ph
}
