package pipeline

import (
	"sort"
	"time"

	"github.com/couchcryptid/flood-claims-service/internal/domain"
)

// AggregateByDate groups matched claims by calendar date and returns parallel
// (dates, counts) slices sorted ascending by date. The ordering is
// deterministic for identical input sets and downstream timeline merging
// depends on it. Zero claims yields two empty slices, never nil, so every
// footprint still produces a well-formed summary.
func AggregateByDate(claims []domain.ClaimPoint) ([]time.Time, []int) {
	byDate := make(map[time.Time]int, len(claims))
	for _, c := range claims {
		byDate[c.LossDate]++
	}

	dates := make([]time.Time, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	counts := make([]int, len(dates))
	for i, d := range dates {
		counts[i] = byDate[d]
	}
	return dates, counts
}
