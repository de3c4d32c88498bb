// Package csvfile holds the file-based ingestion collaborators: the
// semicolon-delimited NFIP claims export and the gauge-footprint JSON. Both
// are thin wrappers that validate per record and hand the core clean domain
// values; a bad record is dropped with a warning, never a fatal error.
package csvfile

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/couchcryptid/flood-claims-service/internal/domain"
	"github.com/couchcryptid/flood-claims-service/internal/observability"
)

// ReadClaims reads a claims CSV (semicolon-delimited, as produced by the
// upstream extraction) and returns the valid claims. Required columns are
// longitude, latitude, and dateOfLoss; an id column is used when present and
// the row number stands in otherwise. Extra columns are ignored.
func ReadClaims(path string, logger *slog.Logger, metrics *observability.Metrics) ([]domain.ClaimPoint, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open claims csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(bufio.NewReader(f))
	r.Comma = ';'
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read claims header: %w", err)
	}
	col := headerIndex(header)

	lonCol, ok := col["longitude"]
	if !ok {
		return nil, fmt.Errorf("claims csv missing longitude column")
	}
	latCol, ok := col["latitude"]
	if !ok {
		return nil, fmt.Errorf("claims csv missing latitude column")
	}
	dateCol, ok := col["dateOfLoss"]
	if !ok {
		return nil, fmt.Errorf("claims csv missing dateOfLoss column")
	}
	idCol, hasID := col["id"]

	var claims []domain.ClaimPoint
	for row := 1; ; row++ {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Malformed line: drop the row, keep the batch going.
			logger.Warn("unreadable claims row, skipping", "row", row, "error", err)
			metrics.ClaimsDropped.Inc()
			continue
		}

		id := "row-" + strconv.Itoa(row)
		if hasID && idCol < len(record) {
			if v := strings.TrimSpace(record[idCol]); v != "" {
				id = v
			}
		}

		claim, err := domain.ParseClaimRecord(id, field(record, lonCol), field(record, latCol), field(record, dateCol))
		if err != nil {
			logger.Warn("invalid claim dropped", "row", row, "error", err)
			metrics.ClaimsDropped.Inc()
			continue
		}
		claims = append(claims, claim)
		metrics.ClaimsIngested.Inc()
	}

	logger.Info("claims ingested", "path", path, "accepted", len(claims))
	return claims, nil
}

// headerIndex maps trimmed column names to positions, tolerating a UTF-8 BOM
// on the first cell.
func headerIndex(header []string) map[string]int {
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.TrimSpace(h)] = i
	}
	return col
}

func field(record []string, i int) string {
	if i >= len(record) {
		return ""
	}
	return record[i]
}
